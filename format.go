package logbridge

import (
	"strings"
	"sync"
	"text/template"

	"github.com/Station-Manager/errors"
)

// TemplateFormatter renders records through a text/template. The template
// sees the fields of formatData; Time is formatted with the date format.
type TemplateFormatter struct {
	tmpl    *template.Template
	datefmt string
}

type formatData struct {
	Name      string
	Level     int
	LevelName string
	Message   string
	Time      string
	File      string
	Function  string
	Line      int
}

var builderPool = sync.Pool{
	New: func() interface{} {
		return new(strings.Builder)
	},
}

// NewTemplateFormatter compiles format. Empty arguments select BasicFormat
// and DefaultDateFormat.
func NewTemplateFormatter(format, datefmt string) (*TemplateFormatter, error) {
	const op errors.Op = "logbridge.NewTemplateFormatter"
	if format == emptyString {
		format = BasicFormat
	}
	if datefmt == emptyString {
		datefmt = DefaultDateFormat
	}
	tmpl, err := template.New("record").Option("missingkey=error").Parse(format)
	if err != nil {
		return nil, errors.New(op).Err(err).Msg(errMsgTemplate)
	}
	return &TemplateFormatter{tmpl: tmpl, datefmt: datefmt}, nil
}

func (f *TemplateFormatter) Format(rec Record) (string, error) {
	data := formatData{
		Name:      rec.DisplayName(),
		Level:     int(rec.Level),
		LevelName: rec.Level.String(),
		Message:   rec.GetMessage(),
		File:      rec.Location.File,
		Function:  rec.Location.Function,
		Line:      rec.Location.Line,
	}
	if !rec.Time.IsZero() {
		data.Time = rec.Time.Format(f.datefmt)
	}

	buf := builderPool.Get().(*strings.Builder)
	buf.Reset()
	defer builderPool.Put(buf)

	if err := f.tmpl.Execute(buf, data); err != nil {
		return emptyString, err
	}
	return buf.String(), nil
}

// escapePercent keeps the backend from interpolating an already formatted
// message.
func escapePercent(msg string) string {
	return strings.ReplaceAll(msg, "%", "%%")
}

// unescapePercent is the inverse of escapePercent.
func unescapePercent(msg string) string {
	return strings.ReplaceAll(msg, "%%", "%")
}
