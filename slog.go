package logbridge

import (
	"context"
	"log/slog"
	"runtime"
	"strings"
)

// LoggerKey is the attribute key that names the logger of a SlogHandler:
// slog.New(h).With(LoggerKey, "app.request") logs as "app.request".
const LoggerKey = "logger"

// SlogHandler feeds log/slog records into a Handler. Attributes are
// appended to the message as key=value pairs.
type SlogHandler struct {
	h      *Handler
	name   string
	attrs  string
	prefix string
}

var _ slog.Handler = (*SlogHandler)(nil)

// NewSlogHandler returns a slog.Handler logging as name through h.
func NewSlogHandler(h *Handler, name string) *SlogHandler {
	return &SlogHandler{h: h, name: name}
}

// Enabled applies the handler drops up front, so slog skips building
// records nobody will write.
func (s *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	tier := s.h.resolver.Resolve(s.name)
	if tier <= 0 {
		return false
	}
	tag := MapLevel(FromSlogLevel(level))
	if !tag.Valid() {
		return false
	}
	if s.h.checker != nil {
		return s.h.checker.CheckLevel(tag, tier)
	}
	return true
}

func (s *SlogHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder
	sb.WriteString(r.Message)
	sb.WriteString(s.attrs)
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&sb, s.prefix, a)
		return true
	})

	rec := Record{
		Name:    s.name,
		Level:   FromSlogLevel(r.Level),
		Message: sb.String(),
		Time:    r.Time,
	}
	if r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		rec.Location = Location{File: frame.File, Function: frame.Function, Line: frame.Line}
	}
	s.h.Handle(rec)
	return nil
}

func (s *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return s
	}
	c := *s
	var sb strings.Builder
	sb.WriteString(s.attrs)
	for _, a := range attrs {
		if s.prefix == emptyString && a.Key == LoggerKey {
			c.name = a.Value.Resolve().String()
			continue
		}
		appendAttr(&sb, s.prefix, a)
	}
	c.attrs = sb.String()
	return &c
}

func (s *SlogHandler) WithGroup(name string) slog.Handler {
	if name == emptyString {
		return s
	}
	c := *s
	c.prefix = s.prefix + name + string(separator)
	return &c
}

func appendAttr(sb *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		if a.Key != emptyString {
			prefix += a.Key + string(separator)
		}
		for _, ga := range a.Value.Group() {
			appendAttr(sb, prefix, ga)
		}
		return
	}
	sb.WriteByte(' ')
	sb.WriteString(prefix)
	sb.WriteString(a.Key)
	sb.WriteByte('=')
	sb.WriteString(a.Value.String())
}
