package tcpwave

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(configFor(t, srv))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func respond(contentType string, status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestClientCallJSONSuccess(t *testing.T) {
	client := newTestClient(t, respond("application/json", http.StatusOK, `{"foo": "bar"}`))

	res, err := client.Call(context.Background(), CallRequest{Path: "/tims/rest/x"})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if res.Kind != KindStructured || !res.Succeeded() {
		t.Fatalf("unexpected result %#v", res)
	}
	want := map[string]any{"status": "Success", "data": map[string]any{"foo": "bar"}}
	if got := res.Envelope(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Envelope() = %#v, want %#v", got, want)
	}
}

func TestClientCallJSONKeepsVendorStatusSeparate(t *testing.T) {
	client := newTestClient(t, respond("application/json; charset=utf-8", http.StatusOK, `{"foo": "bar", "status": "ERROR"}`))

	res, err := client.Call(context.Background(), CallRequest{Path: "/tims/rest/x"})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	env := res.Envelope()
	if env["status"] != StatusSuccess {
		t.Fatalf("envelope status = %v, want Success", env["status"])
	}
	if env["vendor_status"] != "ERROR" || res.VendorStatus != "ERROR" {
		t.Fatalf("vendor status not preserved: %#v", env)
	}
	data := res.Data.(map[string]any)
	if data["status"] != "ERROR" || data["foo"] != "bar" {
		t.Fatalf("data altered: %#v", data)
	}
}

func TestClientCallJSONArray(t *testing.T) {
	client := newTestClient(t, respond("application/json", http.StatusOK, `[{"id": 1}]`))

	res, err := client.Call(context.Background(), CallRequest{Path: "/tims/rest/x"})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if _, ok := res.Data.([]any); !ok || res.VendorStatus != "" {
		t.Fatalf("unexpected result %#v", res)
	}
}

func TestClientCallPlainText(t *testing.T) {
	client := newTestClient(t, respond("text/plain", http.StatusOK, "true"))

	res, err := client.Call(context.Background(), CallRequest{Path: "/tims/rest/x"})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	want := map[string]any{"status": "Success", "data": "true"}
	if got := res.Envelope(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Envelope() = %#v, want %#v", got, want)
	}
}

func TestClientCallUnsupportedContentTypeIsFailure(t *testing.T) {
	client := newTestClient(t, respond("text/csv", http.StatusOK, "a,b\n1,2"))

	res, err := client.Call(context.Background(), CallRequest{Path: "/tims/rest/x"})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if res.Kind != KindFailure || res.Reason != ReasonUnsupportedContentType {
		t.Fatalf("unexpected result %#v", res)
	}
	want := map[string]any{"status": "Failure", "data": "a,b\n1,2"}
	if got := res.Envelope(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Envelope() = %#v, want %#v", got, want)
	}
}

func TestClientCallMissingContentTypeIsFailure(t *testing.T) {
	stub := &stubHTTPClient{resp: stubResponse{status: http.StatusOK, body: []byte("raw")}}
	client, err := NewClient(stubConfig, WithHTTPClient(stub))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	res, err := client.Call(context.Background(), CallRequest{Path: "/tims/rest/x"})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if res.Succeeded() || string(res.Raw) != "raw" {
		t.Fatalf("unexpected result %#v", res)
	}
}

func TestClientCallNon200IsFailureNotError(t *testing.T) {
	client := newTestClient(t, respond("application/json", http.StatusNotFound, `{"message":"not here"}`))

	res, err := client.Call(context.Background(), CallRequest{Path: "/tims/rest/x"})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	want := map[string]any{"status": "Failure", "status_code": "404", "response": `{"message":"not here"}`}
	if got := res.Envelope(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Envelope() = %#v, want %#v", got, want)
	}
}

func TestClientCallSummarizesHTMLErrorPage(t *testing.T) {
	page := `<html><head><title>HTTP Status 500</title></head><body><h1>Internal Server Error</h1></body></html>`
	client := newTestClient(t, respond("text/html", http.StatusInternalServerError, page))

	res, err := client.Call(context.Background(), CallRequest{Path: "/tims/rest/x"})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if res.Detail != "HTTP Status 500: Internal Server Error" {
		t.Fatalf("Detail = %q", res.Detail)
	}
	if res.Response != page {
		t.Fatalf("response body should be kept verbatim")
	}
}

func TestClientCallMalformedJSONIsNormalizationError(t *testing.T) {
	client := newTestClient(t, respond("application/json", http.StatusOK, `{"foo":`))

	res, err := client.Call(context.Background(), CallRequest{Path: "/tims/rest/x"})
	if res != nil {
		t.Fatalf("expected no partial result, got %#v", res)
	}
	if !IsKind(err, KindNormalization) {
		t.Fatalf("expected normalization error, got %v", err)
	}
}

func TestClientCallTrailingJSONIsNormalizationError(t *testing.T) {
	client := newTestClient(t, respond("application/json", http.StatusOK, `{"a":1} {"b":2}`))

	if _, err := client.Call(context.Background(), CallRequest{Path: "/tims/rest/x"}); !IsKind(err, KindNormalization) {
		t.Fatalf("expected normalization error, got %v", err)
	}
}

func TestClientCallTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	cfg := configFor(t, srv)
	srv.Close()

	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	res, err := client.Call(context.Background(), CallRequest{Path: "/tims/rest/x"})
	if res != nil || !IsKind(err, KindTransport) {
		t.Fatalf("expected transport error, got res=%v err=%v", res, err)
	}
}

func TestClientCallWrapsTransportCause(t *testing.T) {
	cause := errors.New("connection refused")
	client, err := NewClient(stubConfig, WithHTTPClient(&stubHTTPClient{err: cause}))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = client.Call(context.Background(), CallRequest{Path: "/tims/rest/x"})
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestClientCallRejectsEmptyPath(t *testing.T) {
	stub := &stubHTTPClient{}
	client, err := NewClient(stubConfig, WithHTTPClient(stub))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.Call(context.Background(), CallRequest{Path: " "}); !IsKind(err, KindInvalidRequest) {
		t.Fatalf("expected invalid request error, got %v", err)
	}
	if len(stub.requests) != 0 {
		t.Fatalf("no request should be sent")
	}
}

func TestClientCallHeaders(t *testing.T) {
	stub := &stubHTTPClient{resp: stubResponse{status: http.StatusOK, header: http.Header{"Content-Type": {"text/plain"}}}}
	client, err := NewClient(stubConfig, WithHTTPClient(stub))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = client.Call(context.Background(), CallRequest{
		Path:   "/tims/rest/x",
		Method: "post",
		Headers: map[string]string{
			"X-Extra":          "1",
			SessionTokenHeader: "override",
		},
	})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if _, err := client.Call(context.Background(), CallRequest{Path: "/tims/rest/y"}); err != nil {
		t.Fatalf("second Call: %v", err)
	}

	first, second := stub.requests[0], stub.requests[1]
	if first.Method != http.MethodPost || first.URL != "https://tims.example.com:8443/tims/rest/x" {
		t.Fatalf("unexpected first request %#v", first)
	}
	if first.Headers["X-Extra"] != "1" || first.Headers[SessionTokenHeader] != "override" {
		t.Fatalf("extra headers should win: %#v", first.Headers)
	}
	if second.Method != http.MethodGet {
		t.Fatalf("method should default to GET, got %s", second.Method)
	}
	if _, ok := second.Headers["X-Extra"]; ok || second.Headers[SessionTokenHeader] != "token-123" {
		t.Fatalf("extra headers leaked into later call: %#v", second.Headers)
	}
}

func TestClientSendsSessionToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get(SessionTokenHeader); got != "token-123" {
			t.Errorf("session token header = %q", got)
		}
		if r.URL.Path != "/tims/rest/logcat/list" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	if _, err := client.Call(context.Background(), CallRequest{Path: EndpointLogcatList.Path}); err != nil {
		t.Fatalf("Call: %v", err)
	}
}

func TestClientHealthCheckReturnsRawResponse(t *testing.T) {
	client := newTestClient(t, respond("text/csv", http.StatusOK, "not-parsed"))

	res, err := client.Call(context.Background(), CallRequest{Path: EndpointLogcatList.Path, HealthCheck: true})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if res.Kind != KindRaw || !res.Healthy() || res.Transport == nil {
		t.Fatalf("expected raw result, got %#v", res)
	}
	if res.Transport.StatusCode() != http.StatusOK || string(res.Transport.Body()) != "not-parsed" {
		t.Fatalf("transport response altered")
	}
}

func TestCallLowerCaseHeaderOverrideAlwaysWins(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Values(SessionTokenHeader); len(got) != 1 || got[0] != "override" {
			t.Errorf("session token header = %v", got)
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	})

	for i := 0; i < 50; i++ {
		_, err := client.Call(context.Background(), CallRequest{
			Path:    "/tims/rest/x",
			Headers: map[string]string{"tims-session-token": "override"},
		})
		if err != nil {
			t.Fatalf("Call: %v", err)
		}
	}
}

func TestMergeHeadersReplacesDefaultCaseInsensitively(t *testing.T) {
	stub := &stubHTTPClient{resp: stubResponse{status: http.StatusOK, header: http.Header{"Content-Type": {"text/plain"}}}}
	client, err := NewClient(stubConfig, WithHTTPClient(stub))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.Call(context.Background(), CallRequest{
		Path:    "/tims/rest/x",
		Headers: map[string]string{"tims-session-token": "override"},
	}); err != nil {
		t.Fatalf("Call: %v", err)
	}

	want := map[string]string{"tims-session-token": "override"}
	if got := stub.requests[0].Headers; !reflect.DeepEqual(got, want) {
		t.Fatalf("headers = %#v, want %#v", got, want)
	}
}
