package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestLoggerVerboseWritesDebug(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, true)

	l.Debug("calling provider", map[string]interface{}{"model": "claude-sonnet-4"})

	out := buf.String()
	if !strings.Contains(out, "calling provider") {
		t.Fatalf("missing message in %q", out)
	}
	if !strings.Contains(out, "claude-sonnet-4") {
		t.Fatalf("missing field in %q", out)
	}
}

func TestLoggerQuietSuppressesDebugAndInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, false)

	l.Debug("hidden", nil)
	l.Info("hidden", nil)
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}

	l.Error("retrieval failed", errors.New("boom"), nil)
	if !strings.Contains(buf.String(), "boom") {
		t.Fatalf("error not logged: %q", buf.String())
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Debug("x", nil)
	l.Info("x", nil)
	l.Warn("x", nil)
	l.Error("x", errors.New("y"), nil)
}
