package tcpwave

import (
	"errors"
	"fmt"
)

// ErrorKind classifies connector errors.
type ErrorKind string

const (
	// KindInitialization indicates missing or malformed connection configuration.
	KindInitialization ErrorKind = "initialization"

	// KindTransport indicates a network or TLS failure before any HTTP response.
	KindTransport ErrorKind = "transport"

	// KindNormalization indicates the response could not be interpreted.
	KindNormalization ErrorKind = "normalization"

	// KindUnknownOperation indicates an operation name with no handler.
	KindUnknownOperation ErrorKind = "unknown_operation"

	// KindMissingParameter indicates a required operation parameter was absent or empty.
	KindMissingParameter ErrorKind = "missing_parameter"

	// KindInvalidRequest indicates a malformed call, such as an empty endpoint path.
	KindInvalidRequest ErrorKind = "invalid_request"
)

// Error is the single error type returned by the connector.
type Error struct {
	Kind ErrorKind

	// Op is the operation being executed, if any.
	Op string

	Message string

	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, msg)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsKind reports whether err is a connector Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind == kind
	}
	return false
}

func newError(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// annotate attaches the operation name to err, converting foreign errors into
// normalization errors so callers only ever see *Error.
func annotate(op string, err error) error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		out := *ce
		if out.Op == "" {
			out.Op = op
		}
		return &out
	}
	return &Error{Kind: KindNormalization, Op: op, Message: "operation failed", Cause: err}
}
