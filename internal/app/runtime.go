package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/tcpwave-connector/internal/config"
	"github.com/samvad-hq/tcpwave-connector/internal/logger"
	"github.com/samvad-hq/tcpwave-connector/internal/storage"
	"github.com/samvad-hq/tcpwave-connector/pkg/publishers"
	"github.com/samvad-hq/tcpwave-connector/pkg/tcpwave"
)

// Runtime wires the connector to the invocation journal and result sinks.
// Every call is journaled and fanned out; neither step alters what the
// caller receives.
type Runtime struct {
	cfg       *config.Config
	connector *tcpwave.Connector
	fanout    *publishers.Fanout
	store     storage.Store
	log       logger.Logger
}

// NewRuntime builds a runtime from the loaded configuration. Extra connector
// options are appended after the logger option.
func NewRuntime(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...tcpwave.Option) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	fanout, err := buildFanout(ctx, cfg.PublishersFile, log)
	if err != nil {
		return nil, err
	}

	storeOpts := storage.Options{
		EntryTTL:        cfg.JournalTTL,
		CleanupInterval: cfg.JournalCleanup,
	}
	store, err := storage.NewStore(cfg.JournalType, cfg.JournalPath, storeOpts)
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init journal: %w", err)
	}
	log.DebugObj("journal initialized", "journal_config", map[string]any{
		"type":                     cfg.JournalType,
		"path":                     cfg.JournalPath,
		"entry_ttl_seconds":        int(cfg.JournalTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.JournalCleanup.Seconds()),
	})

	connOpts := append([]tcpwave.Option{tcpwave.WithLogger(log)}, opts...)

	return &Runtime{
		cfg:       cfg,
		connector: tcpwave.NewConnector(connOpts...),
		fanout:    fanout,
		store:     store,
		log:       log,
	}, nil
}

func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if path == "" {
		return publishers.NewFanout(nil), nil
	}

	publisherReg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabled := publisherReg.Enabled()
	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.DebugObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubClients), nil
}

// Execute runs a named operation.
func (r *Runtime) Execute(ctx context.Context, operation string, params map[string]any) (*tcpwave.Result, error) {
	if r == nil || r.connector == nil {
		return nil, fmt.Errorf("runtime is not initialized")
	}
	return r.invoke(ctx, operation, func(tw tcpwave.Config) (*tcpwave.Result, error) {
		return r.connector.Execute(ctx, tw, operation, params)
	})
}

// CheckHealth probes the configured server.
func (r *Runtime) CheckHealth(ctx context.Context) (*tcpwave.Result, error) {
	if r == nil || r.connector == nil {
		return nil, fmt.Errorf("runtime is not initialized")
	}
	return r.invoke(ctx, "check_health", func(tw tcpwave.Config) (*tcpwave.Result, error) {
		return r.connector.CheckHealth(ctx, tw)
	})
}

func (r *Runtime) invoke(ctx context.Context, operation string, call func(tcpwave.Config) (*tcpwave.Result, error)) (*tcpwave.Result, error) {
	start := time.Now()

	tw, err := r.cfg.TCPWave()
	var res *tcpwave.Result
	if err == nil {
		res, err = call(tw)
	}
	elapsed := time.Since(start)

	r.journal(operation, res, err, elapsed)
	if res != nil {
		r.publish(ctx, publishers.NewEvent(operation, tw.BaseURL(), res))
	}
	return res, err
}

func (r *Runtime) journal(operation string, res *tcpwave.Result, callErr error, elapsed time.Duration) {
	entry := storage.Entry{
		Operation:  operation,
		DurationMs: elapsed.Milliseconds(),
	}
	if callErr != nil {
		entry.Status = tcpwave.StatusFailure
		entry.Error = callErr.Error()
		var ce *tcpwave.Error
		if errors.As(callErr, &ce) {
			entry.ErrorKind = string(ce.Kind)
		}
	} else {
		entry.Status = res.Status()
		if code, ok := res.Envelope()["status_code"].(string); ok {
			entry.StatusCode = code
		}
	}

	if err := r.store.Record(entry); err != nil {
		r.log.WarnObj("journal record failed", "journal_error", map[string]any{
			"operation": operation,
			"error":     err.Error(),
		})
	}
}

func (r *Runtime) publish(ctx context.Context, evt publishers.Event) {
	if r.fanout.Size() == 0 {
		return
	}
	delivered, err := r.fanout.Publish(ctx, evt)
	if err != nil {
		r.log.ErrorObj("result publish failed", "publish_error", map[string]any{
			"operation": evt.Operation,
			"delivered": delivered,
			"error":     err.Error(),
		})
		return
	}
	r.log.DebugObj("result published", "publish_meta", map[string]any{
		"operation": evt.Operation,
		"delivered": delivered,
	})
}

// History returns the most recent journaled invocations, newest first.
func (r *Runtime) History(limit int) ([]storage.Entry, error) {
	if r == nil || r.store == nil {
		return nil, fmt.Errorf("runtime is not initialized")
	}
	return r.store.Recent(limit)
}

// Close releases sinks and the journal.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if err := r.fanout.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close publishers: %w", err))
	}
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close journal: %w", err))
		}
	}
	return errors.Join(errs...)
}
