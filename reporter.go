package logbridge

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// ErrorReporter receives records whose handling failed together with the
// failure. It must not panic.
type ErrorReporter func(rec Record, err error)

// NewStderrReporter reports failures on standard error.
func NewStderrReporter() ErrorReporter {
	return NewWriterReporter(zerolog.ConsoleWriter{Out: os.Stderr})
}

// NewWriterReporter reports failures as zerolog events written to w.
func NewWriterReporter(w io.Writer) ErrorReporter {
	logger := zerolog.New(w).With().Timestamp().Str("service", ServiceName).Logger()
	return func(rec Record, err error) {
		e := logger.Error().
			Str("logger", rec.DisplayName()).
			Int("level_no", int(rec.Level)).
			Str("template", rec.Message)
		if loc := rec.Location.String(); loc != emptyString {
			e = e.Str(zerolog.CallerFieldName, loc)
		}
		errorFields(e, err).Msg("logbridge: handler failed")
	}
}
