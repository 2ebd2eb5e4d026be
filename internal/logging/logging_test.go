package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/agentlens/agentlens/internal/interfaces"
)

func TestStdoutLoggerEmitsJSONLines(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStdoutLogger("scan").WithWriter(&buf)

	logger.Info("fetch complete",
		Field{Key: "url", Value: "http://example.test/"},
		Field{Key: "status", Value: 200})

	line := strings.TrimSpace(buf.String())
	var entry struct {
		Level     string         `json:"level"`
		Msg       string         `json:"msg"`
		Component string         `json:"component"`
		Time      string         `json:"time"`
		Fields    map[string]any `json:"fields"`
	}
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("output is not a JSON line: %q: %v", line, err)
	}
	if entry.Level != "info" || entry.Msg != "fetch complete" || entry.Component != "scan" {
		t.Fatalf("entry wrong: %+v", entry)
	}
	if entry.Fields["url"] != "http://example.test/" {
		t.Fatalf("fields wrong: %+v", entry.Fields)
	}
	if entry.Time == "" {
		t.Fatal("timestamp missing")
	}
}

func TestWithCarriesPersistentFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewStdoutLogger("scan").WithWriter(&buf)

	child := base.With(Field{Key: "job_id", Value: "j-1"})
	child.Warn("slow page")

	var entry struct {
		Fields map[string]any `json:"fields"`
	}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry.Fields["job_id"] != "j-1" {
		t.Fatalf("persistent field lost: %+v", entry.Fields)
	}
}

func TestWithComponentOverride(t *testing.T) {
	var buf bytes.Buffer
	base := NewStdoutLogger("server").WithWriter(&buf)

	child := base.With(Field{Key: "component", Value: "jobs"})
	child.Info("started")

	var entry struct {
		Component string         `json:"component"`
		Fields    map[string]any `json:"fields"`
	}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry.Component != "jobs" {
		t.Fatalf("component not overridden: %q", entry.Component)
	}
	if _, dup := entry.Fields["component"]; dup {
		t.Fatal("component duplicated into fields")
	}
}

func TestNopLoggerIsSafe(t *testing.T) {
	var logger interfaces.Logger = NopLogger{}
	logger = logger.With(Field{Key: "k", Value: "v"})
	logger.Debug("ignored")
	logger.Error("ignored")
}
