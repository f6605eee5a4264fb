package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"captiond/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrValidation, "format", "render", "bad color", base)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatal("expected wrapped base error to survive")
	}
	if !strings.Contains(err.Error(), "format: render: bad color") {
		t.Fatalf("unexpected detail: %v", err)
	}
}

func TestWrapDefaultsToExternalTool(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !services.IsExternalTool(err) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %v", err)
	}
}

func TestClassifyPromotesDeadline(t *testing.T) {
	err := services.Classify("burn-in", "ffmpeg", fmt.Errorf("run: %w", context.DeadlineExceeded))
	if !services.IsTimeout(err) {
		t.Fatalf("expected timeout marker, got %v", err)
	}
	if !services.IsExternalTool(err) {
		t.Fatal("timeout should also classify as external tool failure")
	}
}

func TestClassifyPlainFailure(t *testing.T) {
	err := services.Classify("probe", "ffprobe", errors.New("exit status 1"))
	if services.IsTimeout(err) {
		t.Fatalf("plain failure should not classify as timeout: %v", err)
	}
	if !services.IsExternalTool(err) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
}

func TestClassifyNil(t *testing.T) {
	if err := services.Classify("probe", "ffprobe", nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
