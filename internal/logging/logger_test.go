package logging_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"captiond/internal/logging"
)

func TestConsoleFormatIncludesComponentPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logging.NewComponentLogger(logger, "pipeline").Info("stage started",
		logging.String(logging.FieldStage, "transcribe"),
		logging.Int("segments", 3),
	)

	line := buf.String()
	if !strings.Contains(line, "INFO pipeline: stage started") {
		t.Fatalf("unexpected console line: %q", line)
	}
	if !strings.Contains(line, "stage=transcribe") || !strings.Contains(line, "segments=3") {
		t.Fatalf("missing attrs in line: %q", line)
	}
}

func TestConsoleFormatQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Warn("probe failed", logging.Error(errors.New("exit status 1")))
	if !strings.Contains(buf.String(), `error="exit status 1"`) {
		t.Fatalf("expected quoted error value, got %q", buf.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "warn", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("hidden")
	logger.Warn("visible")
	if strings.Contains(buf.String(), "hidden") {
		t.Fatal("info record should be filtered at warn level")
	}
	if !strings.Contains(buf.String(), "visible") {
		t.Fatal("warn record should pass at warn level")
	}
}

func TestUnsupportedFormatRejected(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
