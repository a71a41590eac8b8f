package logbridge

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

func (b *ZerologBackend) initializeRollingFileLogger(exeName string) *lumberjack.Logger {
	if exeName == emptyString {
		exeName = "app"
	}

	path := filepath.Join(b.WorkingDir, b.LoggingConfig.RelLogFileDir, exeName+".log")

	return &lumberjack.Logger{
		Filename:   path,
		MaxBackups: b.LoggingConfig.LogFileMaxBackups,
		MaxAge:     b.LoggingConfig.LogFileMaxAgeDays,
		MaxSize:    b.LoggingConfig.LogFileMaxSizeMB,
		Compress:   b.LoggingConfig.LogFileCompress,
	}
}

func (b *ZerologBackend) initializeWriters(exeName string) []io.Writer {
	var writers []io.Writer

	// If both writers are disabled, enable the file writer
	if !b.LoggingConfig.ConsoleLogging && !b.LoggingConfig.FileLogging {
		b.LoggingConfig.FileLogging = true
	}
	if b.LoggingConfig.FileLogging {
		b.fileWriter = b.initializeRollingFileLogger(exeName)
		writers = append(writers, b.fileWriter)
	}
	if b.LoggingConfig.ConsoleLogging {
		timeFormat := b.LoggingConfig.ConsoleTimeFormat
		if timeFormat == emptyString {
			timeFormat = time.RFC3339
		}
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stderr,
			NoColor:    b.LoggingConfig.ConsoleNoColor,
			TimeFormat: timeFormat,
		})
	}

	return writers
}
