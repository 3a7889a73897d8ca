package tcpwave

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
)

// SessionTokenHeader carries the pre-issued TIMS session token on every request.
const SessionTokenHeader = "TIMS-Session-Token"

const (
	ProtocolHTTP  = "http"
	ProtocolHTTPS = "https"
)

// Keys of the host framework's configuration dictionary.
const (
	ConfigHostKey           = "host"
	ConfigPortKey           = "port"
	ConfigProtocolKey       = "protocol"
	ConfigSessionTokenKey   = "tims_session_token"
	ConfigVerifySSLKey      = "verify_ssl"
	ConfigTimeoutSecondsKey = "timeout_seconds"
)

// Config holds the connection settings for one TCPWave server.
type Config struct {
	Host         string `validate:"required"`
	Port         int    `validate:"min=1,max=65535"`
	Protocol     string
	SessionToken string `validate:"required"`
	VerifySSL    bool
	// Timeout bounds a single request; zero means no deadline.
	Timeout time.Duration `validate:"gte=0"`
}

var validate = validator.New()

// ConfigFromMap builds a Config from a loosely typed configuration dictionary,
// coercing values such as a string port.
func ConfigFromMap(raw map[string]any) (Config, error) {
	if raw == nil {
		return Config{}, newError(KindInitialization, "configuration is empty", nil)
	}

	var cfg Config
	var err error

	if cfg.Host, err = cast.ToStringE(raw[ConfigHostKey]); err != nil {
		return Config{}, newError(KindInitialization, "invalid host", err)
	}
	if v, ok := raw[ConfigPortKey]; ok && v != nil {
		if cfg.Port, err = cast.ToIntE(v); err != nil {
			return Config{}, newError(KindInitialization, "invalid port", err)
		}
	}
	if cfg.Protocol, err = cast.ToStringE(raw[ConfigProtocolKey]); err != nil {
		return Config{}, newError(KindInitialization, "invalid protocol", err)
	}
	if cfg.SessionToken, err = cast.ToStringE(raw[ConfigSessionTokenKey]); err != nil {
		return Config{}, newError(KindInitialization, "invalid tims_session_token", err)
	}
	if v, ok := raw[ConfigVerifySSLKey]; ok && v != nil {
		if cfg.VerifySSL, err = cast.ToBoolE(v); err != nil {
			return Config{}, newError(KindInitialization, "invalid verify_ssl", err)
		}
	}
	if v, ok := raw[ConfigTimeoutSecondsKey]; ok && v != nil {
		secs, err := cast.ToIntE(v)
		if err != nil {
			return Config{}, newError(KindInitialization, "invalid timeout_seconds", err)
		}
		cfg.Timeout = time.Duration(secs) * time.Second
	}

	return cfg.normalize(), nil
}

// Validate reports configuration problems as an initialization error.
func (c Config) Validate() error {
	c = c.normalize()
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return newError(KindInitialization, "invalid configuration: "+strings.Join(fields, ", "), nil)
		}
		return newError(KindInitialization, "invalid configuration", err)
	}
	if hasScheme(c.Host) {
		return nil
	}
	switch c.Protocol {
	case ProtocolHTTP, ProtocolHTTPS:
		return nil
	case "":
		return newError(KindInitialization, "invalid configuration: protocol is required when host has no scheme", nil)
	default:
		return newError(KindInitialization, fmt.Sprintf("invalid configuration: unsupported protocol %q", c.Protocol), nil)
	}
}

// BaseURL returns the absolute URL prefix for all endpoints. A scheme already
// present on the host wins over Protocol.
func (c Config) BaseURL() string {
	c = c.normalize()
	host := strings.TrimRight(c.Host, "/")
	port := strconv.Itoa(c.Port)
	if hasScheme(host) {
		return host + ":" + port
	}
	return c.Protocol + "://" + host + ":" + port
}

// RequestTimeout returns the per-request timeout, zero when none is configured.
func (c Config) RequestTimeout() time.Duration {
	if c.Timeout <= 0 {
		return 0
	}
	return c.Timeout
}

func (c Config) normalize() Config {
	c.Host = strings.TrimSpace(c.Host)
	c.Protocol = strings.ToLower(strings.TrimSpace(c.Protocol))
	c.SessionToken = strings.TrimSpace(c.SessionToken)
	return c
}

func hasScheme(host string) bool {
	lower := strings.ToLower(host)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
