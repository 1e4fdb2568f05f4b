package logger

import (
	"bytes"
	"os"
	"testing"
)

// capture redirects logger output to a buffer and restores defaults
// when the test finishes.
func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestVerboseToggle(t *testing.T) {
	capture(t)

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose to be false initially")
	}

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected verbose to be true after SetVerbose(true)")
	}
}

func TestDebug(t *testing.T) {
	buf := capture(t)

	SetVerbose(false)
	Debug("hidden")
	if buf.Len() > 0 {
		t.Error("expected no output when verbose is disabled")
	}

	SetVerbose(true)
	Debug("indexed %d chunks", 7)
	if got := buf.String(); got != "[DEBUG] indexed 7 chunks\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestInfoAndWarn(t *testing.T) {
	buf := capture(t)
	SetVerbose(true)

	Info("retrieved %d results", 6)
	Warn("retrying embed call")

	want := "[INFO] retrieved 6 results\n[WARN] retrying embed call\n"
	if got := buf.String(); got != want {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestSection(t *testing.T) {
	buf := capture(t)
	SetVerbose(true)

	Section("Ingestion")
	if got := buf.String(); got != "\n=== Ingestion ===\n" {
		t.Errorf("unexpected section output: %q", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	capture(t)

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(n int) {
			SetVerbose(true)
			Debug("worker %d", n)
			IsVerbose()
			SetVerbose(false)
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}
	// Passes if the race detector stays quiet
}
