package client

import (
	"errors"
	"log/slog"

	"github.com/indigo-web/hclient/config"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

type options struct {
	cfg        *config.Config
	logger     *slog.Logger
	tracer     trace.Tracer
	registerer prometheus.Registerer
}

// Option configures a Session.
type Option func(*options) error

// WithConfig replaces the default limits and buffer sizes. The config is validated.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.New("config must not be nil")
		}

		if err := config.Validate(cfg); err != nil {
			return err
		}

		o.cfg = cfg
		return nil
	}
}

// WithLogger sets the logger. slog.Default() is used otherwise.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}

		o.logger = logger
		return nil
	}
}

// WithTracer sets the tracer every exchange is reported to. Passing nil leaves the
// no-op tracer in place.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		if tracer != nil {
			o.tracer = tracer
		}

		return nil
	}
}

// WithMetrics registers the session collectors on the registerer. Sessions without it
// don't collect metrics at all.
func WithMetrics(registerer prometheus.Registerer) Option {
	return func(o *options) error {
		if registerer == nil {
			return errors.New("metrics registerer must not be nil")
		}

		o.registerer = registerer
		return nil
	}
}
