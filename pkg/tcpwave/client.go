package tcpwave

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/samvad-hq/tcpwave-connector/pkg/httpclient"
)

// Client issues single REST calls against one TCPWave server and normalizes
// the responses. A Client is cheap and meant to be built per invocation.
type Client struct {
	cfg     Config
	baseURL string
	headers map[string]string
	http    httpclient.Client
	log     Logger
}

// Option customizes a Client.
type Option func(*clientOptions)

type clientOptions struct {
	http httpclient.Client
	log  Logger
}

// WithHTTPClient overrides the transport used by the Client.
func WithHTTPClient(c httpclient.Client) Option {
	return func(o *clientOptions) { o.http = c }
}

// WithLogger sets the logger used by the Client.
func WithLogger(l Logger) Option {
	return func(o *clientOptions) { o.log = l }
}

func buildOptions(opts []Option) clientOptions {
	var o clientOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	o.log = ensureLogger(o.log)
	return o
}

// NewClient validates cfg and prepares the base URL and default headers.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	o := buildOptions(opts)

	cfg = cfg.normalize()
	if err := cfg.Validate(); err != nil {
		o.log.ErrorObj("tcpwave client initialization failed", "tcpwave_init_error", map[string]any{
			"host":  cfg.Host,
			"error": err.Error(),
		})
		return nil, err
	}

	if o.http == nil {
		o.http = httpclient.NewRestyClient(httpclient.Options{
			Timeout:   cfg.RequestTimeout(),
			VerifyTLS: cfg.VerifySSL,
		})
	}

	c := &Client{
		cfg:     cfg,
		baseURL: cfg.BaseURL(),
		headers: map[string]string{SessionTokenHeader: cfg.SessionToken},
		http:    o.http,
		log:     o.log,
	}
	c.log.InfoObj("tcpwave client initialized", "tcpwave_client", map[string]any{
		"base_url":   c.baseURL,
		"verify_ssl": cfg.VerifySSL,
	})
	return c, nil
}

// CallRequest describes one call. Path must already be rendered.
type CallRequest struct {
	Path    string
	Method  string
	Headers map[string]string
	Body    any
	// HealthCheck returns the untouched transport response on a 200 instead
	// of decoding the body.
	HealthCheck bool
}

// Call issues exactly one HTTP request. Non-200 responses are returned as
// Failure results; only transport and decoding faults are errors.
func (c *Client) Call(ctx context.Context, req CallRequest) (*Result, error) {
	if c == nil || c.http == nil {
		return nil, newError(KindInitialization, "client is not initialized", nil)
	}
	if strings.TrimSpace(req.Path) == "" {
		return nil, newError(KindInvalidRequest, "endpoint path is empty", nil)
	}
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}

	url := c.baseURL + req.Path
	c.log.DebugObj("tcpwave request", "tcpwave_request", map[string]any{
		"method":        method,
		"url":           url,
		"extra_headers": headerNames(req.Headers),
	})

	resp, err := c.http.Do(ctx, httpclient.Request{
		Method:  method,
		URL:     url,
		Headers: c.mergeHeaders(req.Headers),
		Body:    req.Body,
	})
	if err != nil {
		c.log.ErrorObj("tcpwave request failed", "tcpwave_transport_error", map[string]any{
			"method": method,
			"url":    url,
			"error":  err.Error(),
		})
		return nil, newError(KindTransport, fmt.Sprintf("%s %s", method, url), err)
	}

	return c.normalize(resp, req.HealthCheck)
}

func (c *Client) normalize(resp httpclient.Response, healthCheck bool) (*Result, error) {
	status := resp.StatusCode()
	body := resp.Body()
	contentType := resp.Header().Get("Content-Type")

	if status != http.StatusOK {
		detail := summarizeErrorPage(contentType, body)
		c.log.ErrorObj("tcpwave responded with failure", "tcpwave_response_error", map[string]any{
			"status_code": status,
			"detail":      detail,
		})
		return &Result{
			Kind:        KindFailure,
			Reason:      ReasonHTTPStatus,
			StatusCode:  strconv.Itoa(status),
			Response:    string(body),
			ContentType: contentType,
			Detail:      detail,
			Raw:         body,
		}, nil
	}

	if healthCheck {
		return &Result{Kind: KindRaw, Transport: resp, ContentType: contentType, Raw: body}, nil
	}

	mediaType := strings.ToLower(contentType)
	switch {
	case strings.Contains(mediaType, "application/json"):
		data, err := decodeJSON(body)
		if err != nil {
			c.log.ErrorObj("tcpwave response decode failed", "tcpwave_decode_error", map[string]any{
				"content_type": contentType,
				"error":        err.Error(),
			})
			return nil, newError(KindNormalization, "decode json response", err)
		}
		c.log.DebugObj("tcpwave json response", "tcpwave_response", map[string]any{"status_code": status})
		return &Result{
			Kind:         KindStructured,
			Data:         data,
			VendorStatus: vendorStatus(data),
			ContentType:  contentType,
			Raw:          body,
		}, nil
	case strings.Contains(mediaType, "text/plain"):
		c.log.DebugObj("tcpwave text response", "tcpwave_response", map[string]any{"status_code": status})
		return &Result{Kind: KindText, Data: string(body), ContentType: contentType, Raw: body}, nil
	default:
		c.log.ErrorObj("tcpwave unknown content type", "tcpwave_response_error", map[string]any{
			"content_type": contentType,
		})
		return &Result{
			Kind:        KindFailure,
			Reason:      ReasonUnsupportedContentType,
			ContentType: contentType,
			Raw:         body,
		}, nil
	}
}

// mergeHeaders returns a copy of the default headers overlaid with extra.
// Header names compare case-insensitively, so an override replaces the
// default whatever its spelling.
func (c *Client) mergeHeaders(extra map[string]string) map[string]string {
	out := make(map[string]string, len(c.headers)+len(extra))
	for k, v := range c.headers {
		out[k] = v
	}
	for k, v := range extra {
		for existing := range out {
			if existing != k && strings.EqualFold(existing, k) {
				delete(out, existing)
			}
		}
		out[k] = v
	}
	return out
}

func decodeJSON(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var data any
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after json value")
	}
	return data, nil
}

func vendorStatus(data any) string {
	m, ok := data.(map[string]any)
	if !ok {
		return ""
	}
	v, ok := m["status"]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// headerNames lists header keys only, so token values never reach the logs.
func headerNames(h map[string]string) []string {
	if len(h) == 0 {
		return nil
	}
	names := make([]string, 0, len(h))
	for k := range h {
		names = append(names, k)
	}
	return names
}
