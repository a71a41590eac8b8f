package logbridge

import (
	"fmt"
	"strconv"
	"time"
)

// Location is the call site of a log record.
type Location struct {
	File     string
	Function string
	Line     int
}

func (l Location) String() string {
	if l.File == emptyString {
		return emptyString
	}
	return l.File + ":" + strconv.Itoa(l.Line)
}

// Record is a log record dispatched by the source facility. Message is a
// printf-style template when Args is non-empty and a literal otherwise.
type Record struct {
	Name     string
	Level    Level
	Message  string
	Args     []any
	Location Location
	Time     time.Time
}

// GetMessage returns the message with any deferred arguments interpolated.
func (r Record) GetMessage() string {
	if len(r.Args) == 0 {
		return r.Message
	}
	return fmt.Sprintf(r.Message, r.Args...)
}

// DisplayName returns the logger name, "root" for the root logger.
func (r Record) DisplayName() string {
	if r.Name == emptyString {
		return rootName
	}
	return r.Name
}
