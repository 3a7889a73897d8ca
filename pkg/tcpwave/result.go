package tcpwave

import (
	"strconv"

	"github.com/samvad-hq/tcpwave-connector/pkg/httpclient"
)

// Envelope status values.
const (
	StatusSuccess = "Success"
	StatusFailure = "Failure"
)

// ResultKind identifies which variant a Result holds.
type ResultKind int

const (
	// KindStructured is a 200 response with a JSON body.
	KindStructured ResultKind = iota + 1
	// KindText is a 200 response with a text/plain body.
	KindText
	// KindFailure is a non-200 response or a 200 with an unsupported content type.
	KindFailure
	// KindRaw is an untouched 200 transport response from a health check.
	KindRaw
)

func (k ResultKind) String() string {
	switch k {
	case KindStructured:
		return "structured"
	case KindText:
		return "text"
	case KindFailure:
		return "failure"
	case KindRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// FailureReason explains a Failure result.
type FailureReason string

const (
	ReasonHTTPStatus             FailureReason = "http_status"
	ReasonUnsupportedContentType FailureReason = "unsupported_content_type"
)

// Result is the normalized outcome of one completed HTTP exchange.
type Result struct {
	Kind ResultKind

	// Data holds the decoded JSON value (KindStructured) or the text body (KindText).
	Data any

	// VendorStatus is the "status" field found in a JSON body, if any. It never
	// changes the envelope status.
	VendorStatus string

	Reason FailureReason
	// StatusCode is the HTTP status code as a string, set for ReasonHTTPStatus.
	StatusCode  string
	Response    string
	ContentType string
	// Detail is a short human-readable summary of an HTML error page.
	Detail string
	Raw    []byte

	// Transport is set only for KindRaw.
	Transport httpclient.Response
}

// Status returns the envelope status for the result.
func (r *Result) Status() string {
	if r == nil || r.Kind == KindFailure {
		return StatusFailure
	}
	return StatusSuccess
}

// Succeeded reports whether the envelope status is Success.
func (r *Result) Succeeded() bool {
	return r.Status() == StatusSuccess
}

// Healthy reports whether a health check reached the server with a 200.
func (r *Result) Healthy() bool {
	return r != nil && r.Kind == KindRaw
}

// Envelope renders the uniform status/data dictionary handed back to callers.
func (r *Result) Envelope() map[string]any {
	if r == nil {
		return map[string]any{"status": StatusFailure}
	}

	switch r.Kind {
	case KindStructured:
		env := map[string]any{"status": StatusSuccess, "data": r.Data}
		if r.VendorStatus != "" {
			env["vendor_status"] = r.VendorStatus
		}
		return env
	case KindText:
		return map[string]any{"status": StatusSuccess, "data": r.Data}
	case KindRaw:
		env := map[string]any{"status": StatusSuccess}
		if r.Transport != nil {
			env["status_code"] = strconv.Itoa(r.Transport.StatusCode())
		}
		return env
	default:
		if r.Reason == ReasonUnsupportedContentType {
			return map[string]any{"status": StatusFailure, "data": string(r.Raw)}
		}
		env := map[string]any{
			"status":      StatusFailure,
			"status_code": r.StatusCode,
			"response":    r.Response,
		}
		if r.Detail != "" {
			env["detail"] = r.Detail
		}
		return env
	}
}
