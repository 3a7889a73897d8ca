package tcpwave

import "context"

// Connector is the host-facing entry point: operations are addressed by name
// and parameters arrive as a loosely typed map.
type Connector struct {
	opts []Option
	log  Logger
}

// NewConnector returns a Connector whose clients are built with opts.
func NewConnector(opts ...Option) *Connector {
	return &Connector{
		opts: opts,
		log:  buildOptions(opts).log,
	}
}

// Execute runs the named operation against the server described by cfg.
func (c *Connector) Execute(ctx context.Context, cfg Config, operation string, params map[string]any) (*Result, error) {
	req, err := ParseRequest(operation, params)
	if err != nil {
		c.log.ErrorObj("tcpwave operation rejected", "tcpwave_operation_error", map[string]any{
			"operation": operation,
			"error":     err.Error(),
		})
		return nil, err
	}

	res, err := Execute(ctx, cfg, req, c.opts...)
	if err != nil {
		c.log.ErrorObj("tcpwave operation failed", "tcpwave_operation_error", map[string]any{
			"operation": operation,
			"error":     err.Error(),
		})
		return nil, err
	}
	return res, nil
}

// CheckHealth probes the server described by cfg.
func (c *Connector) CheckHealth(ctx context.Context, cfg Config) (*Result, error) {
	res, err := CheckHealth(ctx, cfg, c.opts...)
	if err != nil {
		c.log.ErrorObj("tcpwave health check failed", "tcpwave_health_error", map[string]any{
			"error": err.Error(),
		})
		return nil, err
	}
	return res, nil
}
