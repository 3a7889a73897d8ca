package publishers

import (
	"time"

	"github.com/samvad-hq/tcpwave-connector/pkg/tcpwave"
)

// Event represents the payload published downstream after an operation completes.
type Event struct {
	Operation   string         `json:"operation"`
	Status      string         `json:"status"`
	StatusCode  string         `json:"status_code,omitempty"`
	Envelope    map[string]any `json:"envelope"`
	TCPWaveHost string         `json:"tcpwave_host"`
	CollectedAt time.Time      `json:"collected_at"`
}

// NewEvent constructs an Event for the given operation result.
func NewEvent(operation, host string, res *tcpwave.Result) Event {
	env := res.Envelope()
	evt := Event{
		Operation:   operation,
		Status:      res.Status(),
		Envelope:    env,
		TCPWaveHost: host,
		CollectedAt: time.Now().UTC(),
	}
	if code, ok := env["status_code"].(string); ok {
		evt.StatusCode = code
	}
	return evt
}
