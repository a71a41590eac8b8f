// Package logbridge routes records of a hierarchical, numerically levelled
// logging facility into a DbgLog style backend addressed by (level,
// severity) pairs.
//
// Two pieces do the translation:
//   - MapLevel maps a numeric level onto one of the backend tags DBG, INFO,
//     WARN, ERR and FATAL by bands ten levels wide; anything above the FATAL
//     band is FATAL, anything below the DEBUG band is dropped.
//   - Resolver maps a dotted logger name onto a severity tier (1-4, 0 drops)
//     using the longest configured prefix made of whole name segments. The
//     result is cached per name.
//
// Handler composes both and writes at most one backend entry per record. It
// formats the message only after the backend agreed to record the pair, and
// never lets failures reach the logging caller.
//
// Typical usage
//
//	backend := &logbridge.ZerologBackend{WorkingDir: dir, LoggingConfig: &cfg}
//	if err := backend.Initialize(); err != nil { panic(err) }
//	defer backend.Close()
//
//	h, err := logbridge.NewHandler(backend, logbridge.Mapping(map[string]int{
//		"app":         4,
//		"app.request": 3,
//		"db.sql":      0,
//		"":            1,
//	}))
//	if err != nil { panic(err) }
//	slog.SetDefault(slog.New(logbridge.NewSlogHandler(h, "app")))
package logbridge
