package logbridge

import (
	stderrs "errors"
	"fmt"

	"github.com/Station-Manager/errors"
)

// Panics carrying these errors are termination requests: Handle lets them
// through unmodified instead of reporting them.
var (
	ErrInterrupt = stderrs.New("logbridge: interrupt requested")
	ErrExit      = stderrs.New("logbridge: exit requested")
)

// IsTermination reports whether err is, or wraps, a termination request.
func IsTermination(err error) bool {
	return stderrs.Is(err, ErrInterrupt) || stderrs.Is(err, ErrExit)
}

// Handler routes records of the source facility to a Backend, translating
// the record level to a backend tag and the logger name to a tier.
//
// A Handler is safe for concurrent use. Handle runs on the caller's
// goroutine and never panics, except to propagate a termination request.
type Handler struct {
	backend   Backend
	checker   LevelChecker
	resolver  *Resolver
	formatter Formatter
	report    ErrorReporter
	metrics   Metrics
}

// Option configures a Handler.
type Option func(*Handler) error

// WithFormatter replaces the message formatter.
func WithFormatter(f Formatter) Option {
	return func(h *Handler) error {
		if f != nil {
			h.formatter = f
		}
		return nil
	}
}

// WithFormat uses a TemplateFormatter built from format and datefmt.
func WithFormat(format, datefmt string) Option {
	return func(h *Handler) error {
		f, err := NewTemplateFormatter(format, datefmt)
		if err != nil {
			return err
		}
		h.formatter = f
		return nil
	}
}

// WithErrorReporter replaces the handler failure side channel.
func WithErrorReporter(r ErrorReporter) Option {
	return func(h *Handler) error {
		if r != nil {
			h.report = r
		}
		return nil
	}
}

// WithMetrics records outcomes of every handled record.
func WithMetrics(m Metrics) Option {
	return func(h *Handler) error {
		if m != nil {
			h.metrics = m
		}
		return nil
	}
}

// NewHandler returns a handler writing to backend with the given severity
// configuration. The configuration is copied; later changes to it have no
// effect.
func NewHandler(backend Backend, severity SeverityConfig, opts ...Option) (*Handler, error) {
	const op errors.Op = "logbridge.NewHandler"
	if backend == nil {
		return nil, errors.New(op).Msg(errMsgNilBackend)
	}
	if err := validateSeverity(severity); err != nil {
		return nil, err
	}

	h := &Handler{
		backend:  backend,
		resolver: NewResolver(severity),
		report:   NewStderrReporter(),
		metrics:  NopMetrics{},
	}
	h.checker, _ = backend.(LevelChecker)

	for _, opt := range opts {
		if err := opt(h); err != nil {
			return nil, errors.New(op).Err(err).Msg(errMsgConfigInvalid)
		}
	}
	if h.formatter == nil {
		// BasicFormat always compiles.
		h.formatter, _ = NewTemplateFormatter(BasicFormat, DefaultDateFormat)
	}
	return h, nil
}

// Configure builds a handler from cfg, registers it with reg and, when
// cfg.Level is set and reg supports it, sets the output level of reg.
func Configure(reg Registry, backend Backend, cfg Config, opts ...Option) (*Handler, error) {
	const op errors.Op = "logbridge.Configure"
	if reg == nil {
		return nil, errors.New(op).Msg(errMsgNilRegistry)
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	opts = append([]Option{WithFormat(cfg.Format, cfg.DateFormat)}, opts...)
	h, err := NewHandler(backend, cfg.Severity, opts...)
	if err != nil {
		return nil, err
	}

	reg.AddSink(h)
	if setter, ok := reg.(LevelSetter); ok && cfg.Level != LevelNotSet {
		setter.SetLevel(cfg.Level)
	}
	return h, nil
}

// Resolver returns the severity resolver of h.
func (h *Handler) Resolver() *Resolver {
	return h.resolver
}

// Handle writes rec to the backend unless it is dropped. Failures are
// reported through the error reporter and never reach the caller.
func (h *Handler) Handle(rec Record) {
	defer func() {
		v := recover()
		if v == nil {
			return
		}
		if err, ok := v.(error); ok && IsTermination(err) {
			panic(v)
		}
		h.fail(rec, fmt.Errorf("logbridge: panic while handling record: %v", v))
	}()

	if err := h.handle(rec); err != nil {
		h.fail(rec, err)
	}
}

func (h *Handler) handle(rec Record) error {
	tier := h.resolver.Resolve(rec.Name)
	if tier <= 0 {
		h.metrics.RecordDropped(DropSuppressed)
		return nil
	}

	tag := MapLevel(rec.Level)
	if !tag.Valid() {
		h.metrics.RecordDropped(DropUnmapped)
		return nil
	}

	// Do not format the message if it won't be logged.
	if h.checker != nil && !h.checker.CheckLevel(tag, tier) {
		h.metrics.RecordDropped(DropFiltered)
		return nil
	}

	msg, err := h.formatter.Format(rec)
	if err != nil {
		return fmt.Errorf("formatting record: %w", err)
	}

	if err = h.backend.Log(escapePercent(msg), rec.Location, tag, tier); err != nil {
		return fmt.Errorf("writing to backend: %w", err)
	}
	h.metrics.RecordWritten(tag, tier)
	return nil
}

func (h *Handler) fail(rec Record, err error) {
	h.metrics.RecordFailed()
	h.report(rec, err)
}
