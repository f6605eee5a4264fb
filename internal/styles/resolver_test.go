package styles_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"captiond/internal/services"
	"captiond/internal/styles"
)

func TestLoadEmbeddedPresets(t *testing.T) {
	resolver, err := styles.Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	for _, id := range []string{"default", "professional", "minimal", "cinema"} {
		if !resolver.Has(id) {
			t.Fatalf("missing embedded preset %q (have %v)", id, resolver.IDs())
		}
	}
}

func TestResolveMergesPresetOntoDefaults(t *testing.T) {
	resolver, err := styles.Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	style, err := resolver.Resolve("professional", nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if style.FontFamily != "Helvetica" || style.FontSize != 28 {
		t.Fatalf("preset fields not applied: %+v", style)
	}
	// Fields the preset does not set keep the model defaults.
	if style.Alignment != "center" || style.MaxLines != 2 {
		t.Fatalf("defaults lost in merge: %+v", style)
	}
}

func TestResolveUnknownPresetFallsBackToDefaults(t *testing.T) {
	resolver, err := styles.Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	style, err := resolver.Resolve("no-such-preset", nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if style.FontFamily != "Arial" || style.FontSize != 24 {
		t.Fatalf("expected default style, got %+v", style)
	}
}

func TestResolveAppliesOverridesLast(t *testing.T) {
	resolver, err := styles.Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	style, err := resolver.Resolve("professional", map[string]any{
		"font_size": 36,
		"position":  "top",
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if style.FontSize != 36 || style.Position != "top" {
		t.Fatalf("overrides not applied: %+v", style)
	}
	if style.FontFamily != "Helvetica" {
		t.Fatalf("preset field lost: %+v", style)
	}
}

func TestResolveValidatesMergedResult(t *testing.T) {
	resolver, err := styles.Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := resolver.Resolve("default", map[string]any{"font_color": "white"}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := resolver.Resolve("default", map[string]any{"no_such_field": 1}); err == nil {
		t.Fatal("expected error for unknown override field")
	}
}

func TestLoadRejectsInvalidPresetFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "styles.toml")
	content := "[styles.broken]\nfont_color = \"red\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write presets: %v", err)
	}
	if _, err := styles.Load(path); err == nil {
		t.Fatal("expected error for preset violating style invariants")
	}
}

func TestLoadUserFileReplacesEmbedded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "styles.toml")
	content := "[styles.custom]\nfont_size = 30\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write presets: %v", err)
	}
	resolver, err := styles.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !resolver.Has("custom") || resolver.Has("professional") {
		t.Fatalf("user file should replace embedded presets: %v", resolver.IDs())
	}
}
