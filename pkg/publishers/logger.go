package publishers

import "github.com/samvad-hq/tcpwave-connector/pkg/tcpwave"

// Logger is the connector's logging surface; publishers log delivery outcomes through it.
type Logger = tcpwave.Logger

func ensureLogger(log Logger) Logger {
	if log == nil {
		return tcpwave.NopLogger{}
	}
	return log
}
