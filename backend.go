package logbridge

import (
	stderrs "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Station-Manager/errors"
	"github.com/Station-Manager/types"
	"github.com/Station-Manager/utils"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ErrBackendClosed is returned by Log on a backend that is not initialized
// or has been closed.
var ErrBackendClosed = stderrs.New("logbridge: backend is closed")

const defaultShutdownTimeout = time.Second

// ZerologBackend is a DbgLog style backend writing (tag, tier) entries as
// zerolog events. An entry is recorded when its tag passes the zerolog
// output level and its tier passes the mask.
type ZerologBackend struct {
	WorkingDir    string
	LoggingConfig *types.LoggingConfig
	// Mask in DbgLog notation; DefaultMask when empty.
	Mask string

	logger        atomic.Pointer[zerolog.Logger]
	mask          atomic.Pointer[Mask]
	fileWriter    *lumberjack.Logger
	isInitialized atomic.Bool
	initOnce      sync.Once
	initErr       error
	mu            sync.RWMutex
	wg            sync.WaitGroup
	activeOps     atomic.Int32
}

// NewWriterBackend returns an initialized backend writing JSON events to w.
func NewWriterBackend(w io.Writer, mask Mask) *ZerologBackend {
	b := &ZerologBackend{Mask: mask.String()}
	b.initOnce.Do(func() {
		logger := zerolog.New(w).Level(zerolog.TraceLevel)
		b.logger.Store(&logger)
		b.mask.Store(&mask)
		b.isInitialized.Store(true)
	})
	return b
}

// Initialize sets up the writers configured in LoggingConfig. It is safe to
// call more than once; later calls return the result of the first one.
func (b *ZerologBackend) Initialize() error {
	const op errors.Op = "logbridge.ZerologBackend.Initialize"
	if b == nil {
		return errors.New(op).Msg(errMsgNilService)
	}
	if b.LoggingConfig == nil {
		return errors.New(op).Msg(errMsgAppCfgNotSet)
	}

	b.initOnce.Do(func() {
		b.initErr = b.initialize(op)
	})
	return b.initErr
}

func (b *ZerologBackend) initialize(op errors.Op) error {
	if err := validatorInstance().Struct(b.LoggingConfig); err != nil {
		return errors.New(op).Err(err).Msg(errMsgConfigInvalid)
	}

	level, err := parseLevel(b.LoggingConfig.Level)
	if err != nil {
		return errors.New(op).Err(err).Msg(errMsgOutputLevel)
	}

	maskStr := b.Mask
	if maskStr == emptyString {
		maskStr = DefaultMask
	}
	mask, err := ParseMask(maskStr)
	if err != nil {
		return err
	}

	if b.LoggingConfig.FileLogging || !b.LoggingConfig.ConsoleLogging {
		if b.WorkingDir == emptyString {
			return errors.New(op).Msg(errMsgWorkingDir)
		}
		dir := filepath.Join(b.WorkingDir, b.LoggingConfig.RelLogFileDir)
		if err = os.MkdirAll(dir, os.ModePerm); err != nil {
			return errors.New(op).Err(err).Msg("Failed to create logs directory.")
		}
	}

	exeName, err := utils.ExecName(true)
	if err != nil {
		return errors.New(op).Err(err).Msg("Failed to get executable name.")
	}

	writers := b.initializeWriters(exeName)
	if len(writers) == 0 {
		return errors.New(op).Msg(errMsgNoChannels)
	}

	logger := zerolog.New(io.MultiWriter(writers...)).Level(level)
	if b.LoggingConfig.WithTimestamp {
		logger = logger.With().Timestamp().Logger()
	}

	b.logger.Store(&logger)
	b.mask.Store(&mask)
	b.isInitialized.Store(true)
	return nil
}

// Close waits for in-flight writes, bounded by ShutdownTimeoutMS, and
// releases the log file. It's safe to call Close multiple times.
func (b *ZerologBackend) Close() error {
	if b == nil {
		return nil
	}

	b.mu.Lock()
	if !b.isInitialized.Load() {
		b.mu.Unlock()
		return nil
	}
	b.isInitialized.Store(false)
	b.mu.Unlock()

	timeout := defaultShutdownTimeout
	warn := false
	if b.LoggingConfig != nil {
		if b.LoggingConfig.ShutdownTimeoutMS > 0 {
			timeout = time.Duration(b.LoggingConfig.ShutdownTimeoutMS) * time.Millisecond
		}
		warn = b.LoggingConfig.ShutdownTimeoutWarning
	}

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		if logger := b.logger.Load(); logger != nil && warn {
			logger.Warn().
				Int32("active_operations", b.activeOps.Load()).
				Dur("timeout", timeout).
				Msg("Backend shutdown timeout exceeded")
		}
	}

	b.logger.Store(nil)
	if b.fileWriter != nil {
		if err := b.fileWriter.Close(); err != nil {
			return fmt.Errorf("closing log file: %w", err)
		}
	}
	return nil
}

// SetMask replaces the mask; s uses DbgLog notation.
func (b *ZerologBackend) SetMask(s string) error {
	mask, err := ParseMask(s)
	if err != nil {
		return err
	}
	b.mask.Store(&mask)
	return nil
}

// CurrentMask returns the mask in effect.
func (b *ZerologBackend) CurrentMask() Mask {
	if m := b.mask.Load(); m != nil {
		return *m
	}
	return Mask{}
}

// CheckLevel reports whether (tag, tier) would be recorded.
func (b *ZerologBackend) CheckLevel(tag Tag, tier int) bool {
	if b == nil || !b.isInitialized.Load() {
		return false
	}
	logger := b.logger.Load()
	if logger == nil {
		return false
	}
	return b.enabled(logger, tag, tier)
}

func (b *ZerologBackend) enabled(logger *zerolog.Logger, tag Tag, tier int) bool {
	if !tag.Valid() || logger.GetLevel() > zerologLevel(tag) {
		return false
	}
	return b.CurrentMask().Allows(tag, tier)
}

// Log writes msg, a template without operands, at (tag, tier). Entries
// rejected by the level or the mask are silently skipped. FATAL entries do
// not terminate the process.
func (b *ZerologBackend) Log(msg string, loc Location, tag Tag, tier int) error {
	if b == nil {
		return ErrBackendClosed
	}
	if !tag.Valid() {
		return fmt.Errorf("logbridge: invalid backend tag %d", tag)
	}

	b.mu.RLock()
	if !b.isInitialized.Load() {
		b.mu.RUnlock()
		return ErrBackendClosed
	}
	logger := b.logger.Load()
	if logger == nil {
		b.mu.RUnlock()
		return ErrBackendClosed
	}
	b.activeOps.Inc()
	b.wg.Add(1)
	b.mu.RUnlock()

	defer func() {
		b.activeOps.Dec()
		b.wg.Done()
	}()

	if !b.enabled(logger, tag, tier) {
		return nil
	}

	e := logger.WithLevel(zerologLevel(tag)).
		Int("severity", tier).
		Str("code", tag.Code(tier))
	if caller := loc.String(); caller != emptyString {
		e = e.Str(zerolog.CallerFieldName, caller)
	}
	if loc.Function != emptyString {
		e = e.Str("func", loc.Function)
	}
	e.Msg(unescapePercent(msg))
	return nil
}
