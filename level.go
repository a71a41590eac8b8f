package logbridge

import (
	"log/slog"
	"strconv"
	"strings"
)

// Level is a numeric level of the source logging facility. Named levels are
// anchors of bands ten levels wide; any value inside a band behaves like its
// anchor.
type Level int

const (
	LevelNotSet  Level = 0
	LevelDebug   Level = 10
	LevelInfo    Level = 20
	LevelWarning Level = 30
	LevelError   Level = 40
	LevelFatal   Level = 50
)

const bandWidth = 10

func (l Level) String() string {
	switch l {
	case LevelNotSet:
		return "NOTSET"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	}
	return "Level " + strconv.Itoa(int(l))
}

// band returns floor(l/10)*10, also for negative levels.
func (l Level) band() Level {
	b := l / bandWidth
	if l < 0 && l%bandWidth != 0 {
		b--
	}
	return b * bandWidth
}

// FromSlogLevel converts a log/slog level onto the source scale:
// Debug -> 10, Info -> 20, Warn -> 30, Error -> 40, and 12 -> 50.
func FromSlogLevel(l slog.Level) Level {
	return LevelInfo + Level(int(l)*bandWidth/4)
}

// Tag is a backend level.
type Tag uint8

const (
	TagNone Tag = iota
	TagDebug
	TagInfo
	TagWarning
	TagError
	TagFatal
)

var tagNames = [...]string{
	TagNone:    emptyString,
	TagDebug:   "DBG",
	TagInfo:    "INFO",
	TagWarning: "WARN",
	TagError:   "ERR",
	TagFatal:   "FATAL",
}

var tagLetters = [...]byte{
	TagDebug:   'D',
	TagInfo:    'I',
	TagWarning: 'W',
	TagError:   'E',
	TagFatal:   'F',
}

// Tags lists the valid backend tags in ascending order.
var Tags = []Tag{TagDebug, TagInfo, TagWarning, TagError, TagFatal}

func (t Tag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return emptyString
}

// Valid reports whether t is one of the five backend tags.
func (t Tag) Valid() bool {
	return t >= TagDebug && t <= TagFatal
}

// Letter returns the single letter DbgLog uses for t in masks and codes.
func (t Tag) Letter() byte {
	if !t.Valid() {
		return 0
	}
	return tagLetters[t]
}

// Code returns the DbgLog code of a (tag, tier) pair, e.g. "I4".
func (t Tag) Code(tier int) string {
	if !t.Valid() {
		return emptyString
	}
	return string(t.Letter()) + strconv.Itoa(tier)
}

// ParseTag parses a tag name ("DBG", "info", ...) or its letter.
func ParseTag(s string) (Tag, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, t := range Tags {
		if s == t.String() || (len(s) == 1 && s[0] == t.Letter()) {
			return t, true
		}
	}
	return TagNone, false
}

var bandTags = map[Level]Tag{
	LevelDebug:   TagDebug,
	LevelInfo:    TagInfo,
	LevelWarning: TagWarning,
	LevelError:   TagError,
	LevelFatal:   TagFatal,
}

// MapLevel maps a source level onto a backend tag by band membership.
// Levels above the FATAL band collapse to TagFatal; levels below the DEBUG
// band map to TagNone and are not logged.
func MapLevel(level Level) Tag {
	if tag, ok := bandTags[level.band()]; ok {
		return tag
	}
	if level > LevelFatal {
		return TagFatal
	}
	return TagNone
}
