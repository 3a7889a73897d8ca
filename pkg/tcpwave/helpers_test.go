package tcpwave

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/samvad-hq/tcpwave-connector/pkg/httpclient"
)

// configFor points a Config at an httptest server.
func configFor(t *testing.T, srv *httptest.Server) Config {
	t.Helper()
	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("parse server port: %v", err)
	}
	return Config{
		Host:         u.Scheme + "://" + u.Hostname(),
		Port:         port,
		SessionToken: "token-123",
	}
}

// stubResponse implements httpclient.Response.
type stubResponse struct {
	status int
	body   []byte
	header http.Header
}

func (s stubResponse) Body() []byte        { return s.body }
func (s stubResponse) StatusCode() int     { return s.status }
func (s stubResponse) Header() http.Header { return s.header }

// stubHTTPClient records requests and returns a preset response.
type stubHTTPClient struct {
	resp     httpclient.Response
	err      error
	requests []httpclient.Request
}

func (s *stubHTTPClient) Do(_ context.Context, req httpclient.Request) (httpclient.Response, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

var stubConfig = Config{
	Host:         "tims.example.com",
	Port:         8443,
	Protocol:     ProtocolHTTPS,
	SessionToken: "token-123",
}
