package tcpwave

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name   string
		op     string
		params map[string]any
		want   OperationRequest
	}{
		{
			name:   "object details",
			op:     "get_object_details_by_ipaddress",
			params: map[string]any{"ip_address": "10.1.1.5"},
			want:   ObjectDetailsRequest{IPAddress: "10.1.1.5"},
		},
		{
			name:   "network details trims input",
			op:     " get_network_details_by_ipaddress ",
			params: map[string]any{"ip_address": " 10.1.1.0 "},
			want:   NetworkDetailsRequest{IPAddress: "10.1.1.0"},
		},
		{
			name:   "existence check",
			op:     "check_object_exists",
			params: map[string]any{"ip_address": "10.1.1.5", "organization_name": "Acme"},
			want:   ObjectExistsRequest{IPAddress: "10.1.1.5", OrganizationName: "Acme"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseRequest(tc.op, tc.params)
			if err != nil {
				t.Fatalf("ParseRequest: %v", err)
			}
			if got != tc.want {
				t.Fatalf("ParseRequest() = %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestParseRequestErrors(t *testing.T) {
	tests := []struct {
		name   string
		op     string
		params map[string]any
		kind   ErrorKind
	}{
		{name: "unknown operation", op: "delete_everything", kind: KindUnknownOperation},
		{name: "empty operation", op: "", kind: KindUnknownOperation},
		{name: "missing ip", op: string(OpGetObjectDetails), params: map[string]any{}, kind: KindMissingParameter},
		{name: "nil params", op: string(OpGetNetworkDetails), kind: KindMissingParameter},
		{name: "missing organization", op: string(OpCheckObjectExists), params: map[string]any{"ip_address": "1.1.1.1"}, kind: KindMissingParameter},
		{name: "blank ip", op: string(OpGetObjectDetails), params: map[string]any{"ip_address": "   "}, kind: KindMissingParameter},
		{name: "non string ip", op: string(OpGetObjectDetails), params: map[string]any{"ip_address": []string{"a"}}, kind: KindInvalidRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseRequest(tc.op, tc.params)
			if !IsKind(err, tc.kind) {
				t.Fatalf("expected %s error, got %v", tc.kind, err)
			}
		})
	}
}

func TestParseRequestNamesMissingParameters(t *testing.T) {
	_, err := ParseRequest(string(OpCheckObjectExists), nil)
	var ce *Error
	if !errors.As(err, &ce) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if ce.Op != string(OpCheckObjectExists) {
		t.Fatalf("Op = %q", ce.Op)
	}
	if ce.Message != "missing required parameter(s): ip_address, organization_name" {
		t.Fatalf("Message = %q", ce.Message)
	}
}

func TestExecuteRendersEndpoints(t *testing.T) {
	tests := []struct {
		name string
		req  OperationRequest
		want string
	}{
		{
			name: "object details",
			req:  ObjectDetailsRequest{IPAddress: "10.1.1.5"},
			want: "/tims/rest/home/getObjectDetails?ipAddress=10.1.1.5",
		},
		{
			name: "network details",
			req:  &NetworkDetailsRequest{IPAddress: "10.1.1.5"},
			want: "/tims/rest/home/getNetworkDetails/10.1.1.5",
		},
		{
			name: "existence check",
			req:  ObjectExistsRequest{IPAddress: "10.1.1.5", OrganizationName: "Internal"},
			want: "/tims/rest/object/checkObjectExists?address=10.1.1.5&organization_name=Internal",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotURI string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotURI = r.RequestURI
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"ok": true}`))
			}))
			defer srv.Close()

			res, err := Execute(context.Background(), configFor(t, srv), tc.req)
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if !res.Succeeded() {
				t.Fatalf("expected success, got %#v", res)
			}
			if gotURI != tc.want {
				t.Fatalf("request uri = %q, want %q", gotURI, tc.want)
			}
		})
	}
}

func TestExecuteAnnotatesErrors(t *testing.T) {
	_, err := Execute(context.Background(), Config{}, ObjectDetailsRequest{IPAddress: "1.1.1.1"})
	var ce *Error
	if !errors.As(err, &ce) || ce.Kind != KindInitialization || ce.Op != string(OpGetObjectDetails) {
		t.Fatalf("unexpected error %#v", err)
	}

	_, err = Execute(context.Background(), stubConfig, ObjectExistsRequest{IPAddress: "1.1.1.1"})
	if !IsKind(err, KindMissingParameter) {
		t.Fatalf("expected missing parameter error, got %v", err)
	}

	_, err = Execute(context.Background(), stubConfig, nil)
	if !IsKind(err, KindInvalidRequest) {
		t.Fatalf("expected invalid request error, got %v", err)
	}
}

func TestOperationsListing(t *testing.T) {
	ops := Operations()
	if len(ops) != 3 {
		t.Fatalf("expected 3 operations, got %d", len(ops))
	}
	for _, info := range ops {
		if _, err := ParseRequest(string(info.Name), nil); IsKind(err, KindUnknownOperation) {
			t.Fatalf("listed operation %s is not dispatchable", info.Name)
		}
		if len(info.Parameters) == 0 {
			t.Fatalf("operation %s lists no parameters", info.Name)
		}
	}
}

func TestCheckHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != EndpointLogcatList.Path {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	res, err := CheckHealth(context.Background(), configFor(t, srv))
	if err != nil {
		t.Fatalf("CheckHealth: %v", err)
	}
	if !res.Healthy() {
		t.Fatalf("expected healthy result, got %#v", res)
	}
}

func TestCheckHealthNon200IsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	res, err := CheckHealth(context.Background(), configFor(t, srv))
	if err != nil {
		t.Fatalf("CheckHealth: %v", err)
	}
	if res.Healthy() || res.StatusCode != "401" {
		t.Fatalf("expected failure result, got %#v", res)
	}
}
