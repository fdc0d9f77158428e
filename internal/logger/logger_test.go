package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestDebugGatedByVerbose(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	SetVerbose(false)
	Debug("hidden %d", 1)
	if buf.Len() != 0 {
		t.Errorf("expected no output with verbose off, got %q", buf.String())
	}

	SetVerbose(true)
	defer SetVerbose(false)
	Debug("shown %d", 2)
	if !strings.Contains(buf.String(), "[DEBUG] shown 2") {
		t.Errorf("expected debug output, got %q", buf.String())
	}
}

func TestWarnAlwaysPrints(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	SetVerbose(false)
	Warn("cache write failed: %s", "disk full")
	if !strings.Contains(buf.String(), "[WARN] cache write failed: disk full") {
		t.Errorf("expected warn output, got %q", buf.String())
	}
}

func TestErrorAlwaysPrints(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	SetVerbose(false)
	Error("boom")
	if !strings.Contains(buf.String(), "[ERROR] boom") {
		t.Errorf("expected error output, got %q", buf.String())
	}
}
