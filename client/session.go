package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/indigo-web/hclient/config"
	"github.com/indigo-web/hclient/http"
	"github.com/indigo-web/hclient/internal/protocol/http1"
	"github.com/indigo-web/hclient/internal/transport"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var (
	// ErrUnusable is returned by every Send after the stream was left in an unknown state,
	// e.g. a response was malformed or the connection failed mid-message.
	ErrUnusable = errors.New("session is unusable")

	errConnectionClosed = errors.New("previous response was delimited by the connection close")
)

type deadliner interface {
	SetDeadline(time.Time) error
}

// wire remembers whether anything was written, as requests rejected before that leave
// the stream intact.
type wire struct {
	transport.Client
	dirty bool
}

func (w *wire) Write(b []byte) error {
	w.dirty = true
	return w.Client.Write(b)
}

// Session exchanges messages sequentially over a single connection. It is not safe for
// concurrent use.
type Session struct {
	conn       io.ReadWriter
	wire       *wire
	serializer *http1.Serializer
	parser     *http1.Parser
	logger     *slog.Logger
	tracer     trace.Tracer
	metrics    *metrics
	previous   *http.Response
	err        error
}

// New wraps an already established connection. If the connection implements
// SetDeadline, context deadlines are applied to it.
func New(conn io.ReadWriter, opts ...Option) (*Session, error) {
	o := &options{
		cfg:    config.Default(),
		logger: slog.Default(),
		tracer: noop.NewTracerProvider().Tracer("hclient"),
	}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("applying session option: %w", err)
		}
	}

	var m *metrics
	if o.registerer != nil {
		var err error
		if m, err = newMetrics(o.registerer); err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
	}

	w := &wire{Client: transport.NewClient(conn, make([]byte, o.cfg.NET.ReadBufferSize))}

	return &Session{
		conn:       conn,
		wire:       w,
		serializer: http1.NewSerializer(o.cfg, o.logger),
		parser:     http1.NewParser(o.cfg, w),
		logger:     o.logger,
		tracer:     o.tracer,
		metrics:    m,
	}, nil
}

// Send writes the request and reads the response head. The body of the response is read
// lazily, so it must be consumed before the next Send, otherwise it's discarded.
func (s *Session) Send(ctx context.Context, request *http.Request) (*http.Response, error) {
	ctx, span := s.tracer.Start(ctx, request.Method.String(),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", request.Method.String()),
			attribute.String("server.address", request.Authority),
			attribute.String("url.path", request.Path),
		),
	)
	defer span.End()

	start := time.Now()
	response, err := s.send(ctx, request)
	took := time.Since(start)
	s.metrics.observe(request.Method, response, took)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Debug("exchange failed",
			slog.String("method", request.Method.String()),
			slog.String("target", request.Target()),
			slog.String("error", err.Error()),
		)

		return nil, err
	}

	span.SetAttributes(
		attribute.Int("http.response.status_code", int(response.Code)),
		attribute.String("http.response.framing", response.Framing.String()),
	)
	s.logger.Debug("exchange",
		slog.String("method", request.Method.String()),
		slog.String("target", request.Target()),
		slog.Int("code", int(response.Code)),
		slog.String("framing", response.Framing.String()),
		slog.Duration("took", took),
	)

	return response, nil
}

func (s *Session) send(ctx context.Context, request *http.Request) (*http.Response, error) {
	if s.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnusable, s.err)
	}

	if err := s.release(); err != nil {
		return nil, s.fail(err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if conn, ok := s.conn.(deadliner); ok {
		// the zero value clears the deadline left by the previous exchange
		deadline, _ := ctx.Deadline()
		if err := conn.SetDeadline(deadline); err != nil {
			return nil, fmt.Errorf("setting deadline: %w", err)
		}
	}

	s.wire.dirty = false
	if err := s.serializer.Write(request, s.wire); err != nil {
		if !s.wire.dirty {
			return nil, err
		}

		return nil, s.fail(err)
	}

	response, err := s.parser.Parse(request.Method)
	if err != nil {
		return nil, s.fail(err)
	}

	s.previous = response
	return response, nil
}

// release drains the body of the previous response, so the stream points at the next one.
func (s *Session) release() error {
	previous := s.previous
	if previous == nil {
		return nil
	}

	s.previous = nil
	if err := previous.Body.Discard(); err != nil {
		return fmt.Errorf("discarding previous body: %w", err)
	}

	if previous.Framing.Kind == http.UntilClose {
		return errConnectionClosed
	}

	return nil
}

func (s *Session) fail(err error) error {
	s.err = err
	return err
}
