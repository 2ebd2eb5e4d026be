package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/agentlens/agentlens/internal/interfaces"
)

// Logger is re-exported so callers can write logging.Logger without also
// importing internal/interfaces.
type Logger = interfaces.Logger

// Field is re-exported for the same reason.
type Field = interfaces.Field

// StdoutLogger is a small structured logger that prints JSON lines.
// It implements interfaces.Logger.
type StdoutLogger struct {
	component string
	base      []interfaces.Field
	out       io.Writer
}

// NewStdoutLogger creates a StdoutLogger. component is optional and is
// included on every entry.
func NewStdoutLogger(component string) *StdoutLogger {
	return &StdoutLogger{component: component, out: os.Stdout}
}

// WithWriter redirects output, for example to stderr when stdout carries a
// report. It returns the same logger for chaining at construction time.
func (s *StdoutLogger) WithWriter(w io.Writer) *StdoutLogger {
	s.out = w
	return s
}

func (s *StdoutLogger) log(level string, msg string, fields ...interfaces.Field) {
	type outEntry struct {
		Level     string         `json:"level"`
		Msg       string         `json:"msg"`
		Component string         `json:"component,omitempty"`
		Time      string         `json:"time"`
		Fields    map[string]any `json:"fields,omitempty"`
	}
	m := make(map[string]any, len(s.base)+len(fields))
	for _, f := range s.base {
		m[f.Key] = f.Value
	}
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	entry := outEntry{
		Level:     level,
		Msg:       msg,
		Component: s.component,
		Time:      time.Now().UTC().Format(time.RFC3339),
		Fields:    m,
	}
	enc, err := json.Marshal(entry)
	if err != nil {
		// Fall back to plain formatting if a field value cannot be marshaled.
		fmt.Fprintf(s.out, "%s %s %v\n", level, msg, m)
		return
	}
	fmt.Fprintln(s.out, string(enc))
}

func (s *StdoutLogger) Debug(msg string, fields ...interfaces.Field) {
	s.log("debug", msg, fields...)
}

func (s *StdoutLogger) Info(msg string, fields ...interfaces.Field) {
	s.log("info", msg, fields...)
}

func (s *StdoutLogger) Warn(msg string, fields ...interfaces.Field) {
	s.log("warn", msg, fields...)
}

func (s *StdoutLogger) Error(msg string, fields ...interfaces.Field) {
	s.log("error", msg, fields...)
}

// With returns a child logger carrying the given persistent fields. A
// "component" field overrides the component name instead of duplicating it.
func (s *StdoutLogger) With(fields ...interfaces.Field) interfaces.Logger {
	child := &StdoutLogger{component: s.component, out: s.out}
	child.base = append(child.base, s.base...)
	for _, f := range fields {
		if f.Key == "component" {
			if str, ok := f.Value.(string); ok {
				child.component = str
				continue
			}
		}
		child.base = append(child.base, f)
	}
	return child
}

// NopLogger discards everything. Useful as a default in tests and in
// constructors that tolerate a nil logger.
type NopLogger struct{}

func (NopLogger) Debug(string, ...interfaces.Field) {}
func (NopLogger) Info(string, ...interfaces.Field)  {}
func (NopLogger) Warn(string, ...interfaces.Field)  {}
func (NopLogger) Error(string, ...interfaces.Field) {}
func (n NopLogger) With(...interfaces.Field) interfaces.Logger {
	return n
}
