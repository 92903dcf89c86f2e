package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestDebugRespectsVerbose(t *testing.T) {
	var buf bytes.Buffer
	l := New(false, &buf)

	l.Debug("hidden %d", 1)
	if buf.Len() != 0 {
		t.Fatalf("debug output written while not verbose: %q", buf.String())
	}

	l.SetVerbose(true)
	l.Debug("shown %d", 2)
	if !strings.Contains(buf.String(), "[DEBUG] ") || !strings.Contains(buf.String(), "shown 2") {
		t.Errorf("expected debug line, got %q", buf.String())
	}
}

func TestLevelPrefixes(t *testing.T) {
	var buf bytes.Buffer
	l := New(false, &buf)

	l.Warn("b")
	l.Error("c")

	out := buf.String()
	for _, prefix := range []string{"[WARN]  ", "[ERROR] "} {
		if !strings.Contains(out, prefix) {
			t.Errorf("output missing %q: %q", prefix, out)
		}
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	orig := defaultLogger
	defer func() { defaultLogger = orig }()

	var buf bytes.Buffer
	defaultLogger = New(false, &buf)

	Debug("before verbose")
	SetVerbose(true)
	Debug("through default")
	Warn("careful")
	Error("broken")

	out := buf.String()
	if strings.Contains(out, "before verbose") {
		t.Errorf("debug line written before SetVerbose: %q", out)
	}
	for _, want := range []string{"through default", "careful", "broken"} {
		if !strings.Contains(out, want) {
			t.Errorf("default logger output missing %q: %q", want, out)
		}
	}
}
