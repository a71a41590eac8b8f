package logbridge

import (
	stderrs "errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

type entry struct {
	msg  string
	loc  Location
	tag  Tag
	tier int
}

// recordingBackend records every Log call.
type recordingBackend struct {
	mu      sync.Mutex
	entries []entry
	err     error
	panicV  any
}

func (b *recordingBackend) Log(msg string, loc Location, tag Tag, tier int) error {
	if b.panicV != nil {
		panic(b.panicV)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, entry{msg: msg, loc: loc, tag: tag, tier: tier})
	return b.err
}

func (b *recordingBackend) written() []entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]entry(nil), b.entries...)
}

// checkingBackend also answers level checks through a mask.
type checkingBackend struct {
	recordingBackend
	mask   Mask
	checks atomic.Int32
}

func (b *checkingBackend) CheckLevel(tag Tag, tier int) bool {
	b.checks.Inc()
	return b.mask.Allows(tag, tier)
}

type countingFormatter struct {
	calls atomic.Int32
	err   error
}

func (f *countingFormatter) Format(rec Record) (string, error) {
	f.calls.Inc()
	if f.err != nil {
		return "", f.err
	}
	return rec.GetMessage(), nil
}

type reported struct {
	mu     sync.Mutex
	errors []error
}

func (r *reported) reporter() ErrorReporter {
	return func(_ Record, err error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.errors = append(r.errors, err)
	}
}

func (r *reported) all() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errors...)
}

func newTestHandler(t *testing.T, backend Backend, severity SeverityConfig, opts ...Option) *Handler {
	t.Helper()
	h, err := NewHandler(backend, severity, opts...)
	require.NoError(t, err)
	return h
}

func TestNewHandler(t *testing.T) {
	t.Run("nil backend", func(t *testing.T) {
		_, err := NewHandler(nil, Scalar(1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), errMsgNilBackend)
	})

	t.Run("invalid severity", func(t *testing.T) {
		_, err := NewHandler(&recordingBackend{}, Scalar(7))
		require.Error(t, err)
		assert.Contains(t, err.Error(), errMsgSeverity)
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := NewHandler(&recordingBackend{}, Scalar(1), WithFormat("{{.Name", ""))
		require.Error(t, err)
	})

	t.Run("severity is copied", func(t *testing.T) {
		cfg := SeverityConfig{"app": 2}
		h := newTestHandler(t, &recordingBackend{}, cfg)
		cfg["app"] = 4
		assert.Equal(t, 2, h.Resolver().Resolve("app"))
	})
}

func TestHandler_RootLogger(t *testing.T) {
	backend := &recordingBackend{}
	h := newTestHandler(t, backend, Scalar(1))

	loc := Location{File: "main.go", Function: "main.run", Line: 42}
	h.Handle(Record{Name: "", Level: LevelInfo, Message: "hello", Location: loc})

	entries := backend.written()
	require.Len(t, entries, 1)
	assert.Equal(t, TagInfo, entries[0].tag)
	assert.Equal(t, 1, entries[0].tier)
	assert.Equal(t, loc, entries[0].loc)
	assert.Equal(t, "root: hello", entries[0].msg)
}

func TestHandler_SeverityInheritance(t *testing.T) {
	backend := &recordingBackend{}
	h := newTestHandler(t, backend, Mapping(map[string]int{"app.request": 3, "app": 4, "": 1}))

	h.Handle(Record{Name: "app.request.get", Level: LevelWarning, Message: "slow"})

	entries := backend.written()
	require.Len(t, entries, 1)
	assert.Equal(t, TagWarning, entries[0].tag)
	assert.Equal(t, 3, entries[0].tier)
}

func TestHandler_Levels(t *testing.T) {
	tests := []struct {
		level Level
		tag   Tag
	}{
		{LevelDebug, TagDebug},
		{LevelInfo, TagInfo},
		{LevelWarning, TagWarning},
		{LevelError, TagError},
		{LevelFatal, TagFatal},
		{25, TagInfo},
		{100, TagFatal},
	}
	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			backend := &recordingBackend{}
			h := newTestHandler(t, backend, Scalar(2))
			h.Handle(Record{Name: "foo.bar", Level: tt.level, Message: "m"})

			entries := backend.written()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.tag, entries[0].tag)
			assert.Equal(t, 2, entries[0].tier)
		})
	}
}

func TestHandler_Drops(t *testing.T) {
	t.Run("tier zero skips formatting", func(t *testing.T) {
		backend := &checkingBackend{mask: MustParseMask(DefaultMask)}
		formatter := &countingFormatter{}
		h := newTestHandler(t, backend, Mapping(map[string]int{"db.sql": 0, "": 1}), WithFormatter(formatter))

		for _, level := range []Level{LevelDebug, LevelInfo, LevelFatal, 100} {
			h.Handle(Record{Name: "db.sql", Level: level, Message: "ignored %s", Args: []any{"x"}})
		}
		assert.Empty(t, backend.written())
		assert.Equal(t, int32(0), formatter.calls.Load())
		assert.Equal(t, int32(0), backend.checks.Load())
	})

	t.Run("no root severity", func(t *testing.T) {
		backend := &recordingBackend{}
		h := newTestHandler(t, backend, Mapping(map[string]int{}))
		h.Handle(Record{Name: "", Level: LevelInfo, Message: "m"})
		h.Handle(Record{Name: "foo.bar", Level: LevelInfo, Message: "m"})
		assert.Empty(t, backend.written())
	})

	t.Run("levels below debug", func(t *testing.T) {
		backend := &recordingBackend{}
		formatter := &countingFormatter{}
		h := newTestHandler(t, backend, Scalar(4), WithFormatter(formatter))
		for _, level := range []Level{-1, 0, LevelDebug - 1} {
			h.Handle(Record{Level: level, Message: "m"})
		}
		assert.Empty(t, backend.written())
		assert.Equal(t, int32(0), formatter.calls.Load())
	})

	t.Run("backend level check", func(t *testing.T) {
		backend := &checkingBackend{mask: MustParseMask("F1E1W2I3")}
		formatter := &countingFormatter{}
		h := newTestHandler(t, backend, Mapping(map[string]int{"app": 2, "": 3}), WithFormatter(formatter))

		h.Handle(Record{Name: "app", Level: LevelInfo, Message: "filtered"})
		h.Handle(Record{Name: "app", Level: LevelDebug, Message: "filtered"})
		h.Handle(Record{Name: "app", Level: LevelWarning, Message: "written"})
		h.Handle(Record{Name: "rpc", Level: LevelInfo, Message: "written"})

		entries := backend.written()
		require.Len(t, entries, 2)
		assert.Equal(t, TagWarning, entries[0].tag)
		assert.Equal(t, 2, entries[0].tier)
		assert.Equal(t, TagInfo, entries[1].tag)
		assert.Equal(t, 3, entries[1].tier)
		assert.Equal(t, int32(2), formatter.calls.Load())
		assert.Equal(t, int32(4), backend.checks.Load())
	})
}

func TestHandler_Messages(t *testing.T) {
	tests := []struct {
		name    string
		message string
		args    []any
		want    string
	}{
		{"params", `"%s %s"`, []any{"hello", "world"}, `"hello world"`},
		{"percent sign", `"100%"`, nil, `"100%%"`},
		{"percent sign and params", `"100%% %s %s"`, []any{"hello", "world"}, `"100%% hello world"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &recordingBackend{}
			h := newTestHandler(t, backend, Scalar(1), WithFormat("{{.Message}}", ""))
			h.Handle(Record{Level: LevelInfo, Message: tt.message, Args: tt.args})

			entries := backend.written()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.want, entries[0].msg)
			assert.Equal(t, unescapePercent(tt.want), unescapePercent(entries[0].msg))
		})
	}
}

func TestHandler_Failures(t *testing.T) {
	t.Run("backend error is reported", func(t *testing.T) {
		backend := &recordingBackend{err: stderrs.New("disk full")}
		var rep reported
		h := newTestHandler(t, backend, Scalar(1), WithErrorReporter(rep.reporter()))

		assert.NotPanics(t, func() {
			h.Handle(Record{Level: LevelError, Message: "m"})
		})
		errs := rep.all()
		require.Len(t, errs, 1)
		assert.ErrorContains(t, errs[0], "disk full")
	})

	t.Run("formatter error is reported", func(t *testing.T) {
		backend := &recordingBackend{}
		var rep reported
		h := newTestHandler(t, backend, Scalar(1),
			WithFormatter(&countingFormatter{err: stderrs.New("bad template")}),
			WithErrorReporter(rep.reporter()))

		h.Handle(Record{Level: LevelError, Message: "m"})
		assert.Empty(t, backend.written())
		require.Len(t, rep.all(), 1)
	})

	t.Run("panic is reported", func(t *testing.T) {
		backend := &recordingBackend{panicV: "boom"}
		var rep reported
		h := newTestHandler(t, backend, Scalar(1), WithErrorReporter(rep.reporter()))

		assert.NotPanics(t, func() {
			h.Handle(Record{Level: LevelError, Message: "m"})
		})
		errs := rep.all()
		require.Len(t, errs, 1)
		assert.ErrorContains(t, errs[0], "boom")
	})

	t.Run("exit request propagates", func(t *testing.T) {
		backend := &recordingBackend{panicV: ErrExit}
		var rep reported
		h := newTestHandler(t, backend, Scalar(1), WithErrorReporter(rep.reporter()))

		assert.PanicsWithValue(t, ErrExit, func() {
			h.Handle(Record{Level: LevelError, Message: "m"})
		})
		assert.Empty(t, rep.all())
	})

	t.Run("wrapped interrupt propagates", func(t *testing.T) {
		interrupt := fmt.Errorf("signal: %w", ErrInterrupt)
		backend := &recordingBackend{panicV: interrupt}
		h := newTestHandler(t, backend, Scalar(1), WithErrorReporter((&reported{}).reporter()))

		assert.PanicsWithError(t, interrupt.Error(), func() {
			h.Handle(Record{Level: LevelError, Message: "m"})
		})
	})
}

func TestIsTermination(t *testing.T) {
	assert.True(t, IsTermination(ErrExit))
	assert.True(t, IsTermination(fmt.Errorf("x: %w", ErrInterrupt)))
	assert.False(t, IsTermination(stderrs.New("other")))
	assert.False(t, IsTermination(nil))
}

type fakeRegistry struct {
	sinks []Sink
	level Level
}

func (r *fakeRegistry) AddSink(s Sink)       { r.sinks = append(r.sinks, s) }
func (r *fakeRegistry) SetLevel(level Level) { r.level = level }

func TestConfigure(t *testing.T) {
	t.Run("registers and sets level", func(t *testing.T) {
		reg := &fakeRegistry{}
		backend := &recordingBackend{}
		cfg := DefaultConfig()
		cfg.Severity = Mapping(map[string]int{"app": 4, "": 1})
		cfg.Level = LevelDebug
		cfg.Format = "{{.Name}} {{.LevelName}}: {{.Message}}"

		h, err := Configure(reg, backend, cfg)
		require.NoError(t, err)
		require.Len(t, reg.sinks, 1)
		assert.Same(t, h, reg.sinks[0])
		assert.Equal(t, LevelDebug, reg.level)

		reg.sinks[0].Handle(Record{Name: "app.server", Level: LevelInfo, Message: "up"})
		entries := backend.written()
		require.Len(t, entries, 1)
		assert.Equal(t, "app.server INFO: up", entries[0].msg)
		assert.Equal(t, 4, entries[0].tier)
	})

	t.Run("level not set", func(t *testing.T) {
		reg := &fakeRegistry{level: LevelWarning}
		_, err := Configure(reg, &recordingBackend{}, DefaultConfig())
		require.NoError(t, err)
		assert.Equal(t, LevelWarning, reg.level)
	})

	t.Run("nil registry", func(t *testing.T) {
		_, err := Configure(nil, &recordingBackend{}, DefaultConfig())
		require.Error(t, err)
		assert.Contains(t, err.Error(), errMsgNilRegistry)
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Severity = SeverityConfig{"app.": 2}
		reg := &fakeRegistry{}
		_, err := Configure(reg, &recordingBackend{}, cfg)
		require.Error(t, err)
		assert.Empty(t, reg.sinks)
	})
}

func TestHandler_Concurrent(t *testing.T) {
	backend := &recordingBackend{}
	h := newTestHandler(t, backend, Mapping(map[string]int{"app": 4, "": 1}))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				h.Handle(Record{Name: "app.worker", Level: LevelInfo, Message: "job %d/%d", Args: []any{id, j}})
			}
		}(i)
	}
	wg.Wait()

	entries := backend.written()
	assert.Len(t, entries, 500)
	for _, e := range entries {
		assert.Equal(t, 4, e.tier)
	}
}
