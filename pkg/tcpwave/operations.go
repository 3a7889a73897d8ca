package tcpwave

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
)

// Operation is the public name of a connector operation.
type Operation string

const (
	OpGetObjectDetails  Operation = "get_object_details_by_ipaddress"
	OpCheckObjectExists Operation = "check_object_exists"
	OpGetNetworkDetails Operation = "get_network_details_by_ipaddress"
)

// OperationRequest is implemented only by the request types of this package.
type OperationRequest interface {
	Operation() Operation
	sealed()
}

// ObjectDetailsRequest looks up the TIMS objects bound to an IP address.
type ObjectDetailsRequest struct {
	IPAddress string `param:"ip_address" validate:"required"`
}

// NetworkDetailsRequest looks up the network containing an IP address.
type NetworkDetailsRequest struct {
	IPAddress string `param:"ip_address" validate:"required"`
}

// ObjectExistsRequest checks whether an object exists for an address within an organization.
type ObjectExistsRequest struct {
	IPAddress        string `param:"ip_address" validate:"required"`
	OrganizationName string `param:"organization_name" validate:"required"`
}

func (ObjectDetailsRequest) Operation() Operation  { return OpGetObjectDetails }
func (NetworkDetailsRequest) Operation() Operation { return OpGetNetworkDetails }
func (ObjectExistsRequest) Operation() Operation   { return OpCheckObjectExists }

func (ObjectDetailsRequest) sealed()  {}
func (NetworkDetailsRequest) sealed() {}
func (ObjectExistsRequest) sealed()   {}

// OperationInfo describes an operation for listings.
type OperationInfo struct {
	Name        Operation `json:"name"`
	Description string    `json:"description"`
	Method      string    `json:"method"`
	Path        string    `json:"path"`
	Parameters  []string  `json:"parameters"`
}

// Operations returns the list of available operations.
func Operations() []OperationInfo {
	infos := []struct {
		op   Operation
		desc string
		ep   Endpoint
	}{
		{OpGetObjectDetails, "Retrieve the TIMS objects bound to an IP address", EndpointObjectDetails},
		{OpCheckObjectExists, "Check whether an object exists for an IP address in an organization", EndpointCheckObjectExists},
		{OpGetNetworkDetails, "Retrieve the network an IP address belongs to", EndpointNetworkDetails},
	}

	out := make([]OperationInfo, 0, len(infos))
	for _, i := range infos {
		out = append(out, OperationInfo{
			Name:        i.op,
			Description: i.desc,
			Method:      i.ep.Method,
			Path:        i.ep.Path,
			Parameters:  i.ep.Placeholders(),
		})
	}
	return out
}

var requestValidate = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("param"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// ParseRequest turns an operation name and loosely typed parameters into a
// typed request.
func ParseRequest(name string, params map[string]any) (OperationRequest, error) {
	op := Operation(strings.TrimSpace(name))

	var (
		req OperationRequest
		err error
	)
	switch op {
	case OpGetObjectDetails:
		var r ObjectDetailsRequest
		r.IPAddress, err = paramString(params, ParamIPAddress)
		req = r
	case OpGetNetworkDetails:
		var r NetworkDetailsRequest
		r.IPAddress, err = paramString(params, ParamIPAddress)
		req = r
	case OpCheckObjectExists:
		var r ObjectExistsRequest
		if r.IPAddress, err = paramString(params, ParamIPAddress); err == nil {
			r.OrganizationName, err = paramString(params, ParamOrganizationName)
		}
		req = r
	default:
		return nil, &Error{Kind: KindUnknownOperation, Op: string(op), Message: "unknown operation"}
	}
	if err != nil {
		return nil, annotate(string(op), err)
	}
	if err := validateRequest(req); err != nil {
		return nil, annotate(string(op), err)
	}
	return req, nil
}

func paramString(params map[string]any, key string) (string, error) {
	raw, ok := params[key]
	if !ok || raw == nil {
		return "", nil
	}
	s, err := cast.ToStringE(raw)
	if err != nil {
		return "", newError(KindInvalidRequest, fmt.Sprintf("parameter %q must be a string", key), err)
	}
	return strings.TrimSpace(s), nil
}

func validateRequest(req OperationRequest) error {
	if err := requestValidate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			names := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				names = append(names, fe.Field())
			}
			return newError(KindMissingParameter, "missing required parameter(s): "+strings.Join(names, ", "), nil)
		}
		return newError(KindInvalidRequest, "invalid request", err)
	}
	return nil
}

// route maps a typed request onto its endpoint and placeholder values.
func route(req OperationRequest) (Endpoint, map[string]string, bool) {
	switch r := req.(type) {
	case ObjectDetailsRequest:
		return EndpointObjectDetails, map[string]string{ParamIPAddress: r.IPAddress}, true
	case NetworkDetailsRequest:
		return EndpointNetworkDetails, map[string]string{ParamIPAddress: r.IPAddress}, true
	case ObjectExistsRequest:
		return EndpointCheckObjectExists, map[string]string{
			ParamIPAddress:        r.IPAddress,
			ParamOrganizationName: r.OrganizationName,
		}, true
	case *ObjectDetailsRequest:
		if r != nil {
			return route(*r)
		}
	case *NetworkDetailsRequest:
		if r != nil {
			return route(*r)
		}
	case *ObjectExistsRequest:
		if r != nil {
			return route(*r)
		}
	}
	return Endpoint{}, nil, false
}

// Execute builds a fresh Client for cfg, renders the request's endpoint and
// performs the call. Every error is a *Error annotated with the operation.
func Execute(ctx context.Context, cfg Config, req OperationRequest, opts ...Option) (*Result, error) {
	ep, values, ok := route(req)
	if !ok {
		return nil, newError(KindInvalidRequest, fmt.Sprintf("unsupported request type %T", req), nil)
	}
	op := string(req.Operation())

	o := buildOptions(opts)
	client, err := NewClient(cfg, opts...)
	if err != nil {
		return nil, annotate(op, err)
	}

	path, err := ep.Render(values)
	if err != nil {
		return nil, annotate(op, err)
	}
	o.log.DebugObj("requesting tcpwave endpoint", "tcpwave_operation", map[string]any{
		"operation": op,
		"endpoint":  path,
	})

	res, err := client.Call(ctx, CallRequest{Path: path, Method: ep.Method})
	if err != nil {
		return nil, annotate(op, err)
	}
	return res, nil
}

// CheckHealth probes the logcat listing endpoint. A nil error means the server
// was reached; Result.Healthy reports whether it answered 200.
func CheckHealth(ctx context.Context, cfg Config, opts ...Option) (*Result, error) {
	client, err := NewClient(cfg, opts...)
	if err != nil {
		return nil, annotate("check_health", err)
	}
	res, err := client.Call(ctx, CallRequest{
		Path:        EndpointLogcatList.Path,
		Method:      EndpointLogcatList.Method,
		HealthCheck: true,
	})
	if err != nil {
		return nil, annotate("check_health", err)
	}
	return res, nil
}
