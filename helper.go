package logbridge

import (
	stderrs "errors"
	"strings"

	smerrors "github.com/Station-Manager/errors"
	"github.com/rs/zerolog"
)

// parseLevel parses a string output level into a zerolog.Level.
// Returns zerolog.NoLevel and an error if parsing fails.
func parseLevel(level string) (zerolog.Level, error) {
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.NoLevel, err
	}
	return l, nil
}

// zerologLevel returns the zerolog level a backend tag is written at.
func zerologLevel(tag Tag) zerolog.Level {
	switch tag {
	case TagDebug:
		return zerolog.DebugLevel
	case TagInfo:
		return zerolog.InfoLevel
	case TagWarning:
		return zerolog.WarnLevel
	case TagError:
		return zerolog.ErrorLevel
	case TagFatal:
		return zerolog.FatalLevel
	}
	return zerolog.NoLevel
}

// buildErrorChain walks an error's cause chain and returns:
//   - chain: outermost -> innermost error messages
//   - ops: operation identifiers for DetailedError links ("" if not available)
//   - root: the innermost error message
//   - rootOp: the innermost operation identifier if available
//
// DetailedError.Cause() is preferred over errors.Unwrap. Depth and repeated
// messages are bounded to avoid cycles.
func buildErrorChain(err error) (chain []string, ops []string, root string, rootOp string) {
	const maxDepth = 50
	visited := 0
	seen := map[string]bool{}

	for err != nil && visited < maxDepth {
		visited++

		// Only a direct DetailedError is unpacked here; wrappers around one
		// stay in the chain as their own links.
		if dErr, ok := err.(*smerrors.DetailedError); ok && dErr != nil {
			chain = append(chain, dErr.Error())
			ops = append(ops, string(dErr.Op()))
			err = dErr.Cause()
			continue
		}

		msg := err.Error()
		if seen[msg] {
			break
		}
		seen[msg] = true
		chain = append(chain, msg)
		ops = append(ops, emptyString)
		err = stderrs.Unwrap(err)
	}

	if len(chain) > 0 {
		root = chain[len(chain)-1]
	}
	if len(ops) > 0 {
		rootOp = ops[len(ops)-1]
	}
	return
}

// joinChain returns a single string for the error chain separated by " -> ".
func joinChain(chain []string) string {
	if len(chain) == 0 {
		return emptyString
	}
	return strings.Join(chain, " -> ")
}

// errorFields adds the error chain enrichment to e.
func errorFields(e *zerolog.Event, err error) *zerolog.Event {
	e = e.Err(err)
	chain, ops, root, rootOp := buildErrorChain(err)
	if len(chain) == 0 {
		return e
	}
	e = e.Strs("error_chain", chain).
		Str("error_root", root).
		Str("error_history", joinChain(chain)).
		Strs("error_ops", ops)
	if rootOp != emptyString {
		e = e.Str("error_root_op", rootOp)
	}
	return e
}
