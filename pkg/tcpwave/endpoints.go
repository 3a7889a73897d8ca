package tcpwave

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// APIPrefix is the root of every TCPWave REST path.
const APIPrefix = "/tims/rest"

// Placeholder names used by endpoint templates.
const (
	ParamIPAddress        = "ip_address"
	ParamOrganizationName = "organization_name"
)

// Endpoint is a named REST path template with an HTTP method.
type Endpoint struct {
	Name   string
	Path   string
	Method string
}

var (
	EndpointLogcatList = Endpoint{
		Name:   "logcat_list",
		Path:   APIPrefix + "/logcat/list",
		Method: http.MethodGet,
	}
	EndpointNetworkDetails = Endpoint{
		Name:   "network_details_by_ip",
		Path:   APIPrefix + "/home/getNetworkDetails/{ip_address}",
		Method: http.MethodGet,
	}
	EndpointObjectDetails = Endpoint{
		Name:   "object_details_by_ip",
		Path:   APIPrefix + "/home/getObjectDetails?ipAddress={ip_address}",
		Method: http.MethodGet,
	}
	EndpointCheckObjectExists = Endpoint{
		Name:   "check_object_exists",
		Path:   APIPrefix + "/object/checkObjectExists?address={ip_address}&organization_name={organization_name}",
		Method: http.MethodGet,
	}
)

// Placeholders lists the placeholder names referenced by the template, in order.
func (e Endpoint) Placeholders() []string {
	var names []string
	rest := e.Path
	for {
		start := strings.IndexByte(rest, '{')
		if start < 0 {
			return names
		}
		end := strings.IndexByte(rest[start:], '}')
		if end < 0 {
			return names
		}
		names = append(names, rest[start+1:start+end])
		rest = rest[start+end+1:]
	}
}

// Render substitutes every placeholder with its URL-encoded value. Values in
// the path are segment-escaped; values after '?' are query-escaped.
func (e Endpoint) Render(values map[string]string) (string, error) {
	var b strings.Builder
	b.Grow(len(e.Path))

	inQuery := false
	rest := e.Path
	for {
		start := strings.IndexByte(rest, '{')
		if start < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[start:], '}')
		if end < 0 {
			return "", newError(KindInvalidRequest, fmt.Sprintf("endpoint %s has an unterminated placeholder", e.Name), nil)
		}
		literal := rest[:start]
		if strings.IndexByte(literal, '?') >= 0 {
			inQuery = true
		}
		b.WriteString(literal)

		name := rest[start+1 : start+end]
		val, ok := values[name]
		if !ok || strings.TrimSpace(val) == "" {
			return "", newError(KindMissingParameter, fmt.Sprintf("missing required parameter %q for endpoint %s", name, e.Name), nil)
		}
		if inQuery {
			b.WriteString(url.QueryEscape(val))
		} else {
			b.WriteString(url.PathEscape(val))
		}
		rest = rest[start+end+1:]
	}

	return b.String(), nil
}
