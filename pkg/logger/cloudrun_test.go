package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
)

func TestCloudRunHandlerWritesSeverityAndData(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCloudRunHandlerTo(&buf, slog.LevelInfo)).With("request_id", "r1")

	log.Warn("import aborted", "error", errors.New("boom"), "created", 2)

	var event map[string]any
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("output is not json: %v (%s)", err, buf.String())
	}
	if event["severity"] != "WARNING" {
		t.Fatalf("severity = %v, want WARNING", event["severity"])
	}
	if event["message"] != "import aborted" {
		t.Fatalf("message = %v", event["message"])
	}
	data, ok := event["data"].(map[string]any)
	if !ok {
		t.Fatalf("missing data payload: %v", event)
	}
	if data["request_id"] != "r1" || data["error"] != "boom" || data["created"] != float64(2) {
		t.Fatalf("unexpected data payload: %v", data)
	}
}

func TestCloudRunHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCloudRunHandlerTo(&buf, slog.LevelWarn))

	log.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing written below level, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"bogus": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
