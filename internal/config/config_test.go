package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	cfg.Highlight = "test phrase"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config should validate, got: %v", err)
	}
}

func TestValidateBounds(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty highlight", func(c *Config) { c.Highlight = "   " }},
		{"width too small", func(c *Config) { c.Width = 100 }},
		{"width too large", func(c *Config) { c.Width = 5000 }},
		{"height too small", func(c *Config) { c.Height = 0 }},
		{"fps zero", func(c *Config) { c.FPS = 0 }},
		{"fps too high", func(c *Config) { c.FPS = 120 }},
		{"duration too short", func(c *Config) { c.Duration = 0.5 }},
		{"duration too long", func(c *Config) { c.Duration = 90 }},
		{"unknown blur mode", func(c *Config) { c.BlurMode = "motion" }},
		{"negative blur radius", func(c *Config) { c.BlurRadius = -1 }},
		{"inverted line range", func(c *Config) { c.MinLines = 10; c.MaxLines = 5 }},
		{"zero frames per snippet", func(c *Config) { c.FramesPerSnippet = 0 }},
		{"zero pool size", func(c *Config) { c.PoolSize = 0 }},
		{"bad highlight color", func(c *Config) { c.HighlightColor = "yellow" }},
		{"short hex color", func(c *Config) { c.TextColor = "#fff" }},
		{"non-hex color", func(c *Config) { c.BackgroundColor = "#gggggg" }},
		{"zero spread", func(c *Config) { c.VerticalSpread = 0 }},
		{"huge font ratio", func(c *Config) { c.FontSizeRatio = 0.9 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			cfg.Highlight = "test phrase"
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Expected validation error for %q, got nil", tc.name)
			}
		})
	}
}

func TestApplyDensity(t *testing.T) {
	cases := []struct {
		density  int
		minLines int
		maxLines int
		spread   float64
		ratio    float64
	}{
		{1, 10, 12, 1.5, 0.06},
		{2, 12, 16, 1.3, 0.05},
		{3, 14, 20, 1.1, 0.04},
	}

	for _, tc := range cases {
		cfg := &Config{}
		cfg.ApplyDensity(tc.density)
		if cfg.MinLines != tc.minLines || cfg.MaxLines != tc.maxLines {
			t.Errorf("Density %d: lines [%d, %d], want [%d, %d]",
				tc.density, cfg.MinLines, cfg.MaxLines, tc.minLines, tc.maxLines)
		}
		if cfg.VerticalSpread != tc.spread {
			t.Errorf("Density %d: spread %f, want %f", tc.density, cfg.VerticalSpread, tc.spread)
		}
		if cfg.FontSizeRatio != tc.ratio {
			t.Errorf("Density %d: font ratio %f, want %f", tc.density, cfg.FontSizeRatio, tc.ratio)
		}
	}
}

func TestApplyDensityKeepsExplicitLines(t *testing.T) {
	cfg := &Config{MinLines: 7, MaxLines: 12}
	cfg.ApplyDensity(3)
	if cfg.MinLines != 7 || cfg.MaxLines != 12 {
		t.Errorf("Explicit line range was overwritten: [%d, %d]", cfg.MinLines, cfg.MaxLines)
	}
}

func TestTotalFrames(t *testing.T) {
	cfg := &Config{FPS: 10, Duration: 5}
	if got := cfg.TotalFrames(); got != 50 {
		t.Errorf("TotalFrames = %d, want 50", got)
	}

	cfg = &Config{FPS: 30, Duration: 2.5}
	if got := cfg.TotalFrames(); got != 75 {
		t.Errorf("TotalFrames = %d, want 75", got)
	}
}

func TestPresetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "preset.yaml")

	cfg := Default()
	cfg.Highlight = "round trip"
	cfg.Width = 512
	cfg.BlurMode = "gaussian"
	cfg.Seed = 42

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Highlight != cfg.Highlight {
		t.Errorf("Highlight = %q, want %q", loaded.Highlight, cfg.Highlight)
	}
	if loaded.Width != cfg.Width {
		t.Errorf("Width = %d, want %d", loaded.Width, cfg.Width)
	}
	if loaded.BlurMode != cfg.BlurMode {
		t.Errorf("BlurMode = %q, want %q", loaded.BlurMode, cfg.BlurMode)
	}
	if loaded.Seed != cfg.Seed {
		t.Errorf("Seed = %d, want %d", loaded.Seed, cfg.Seed)
	}
}

func TestLoadPartialPresetKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partial.yaml")
	content := "highlight: partial test\nwidth: 800\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Width != 800 {
		t.Errorf("Width = %d, want 800", loaded.Width)
	}
	// Fields absent from the preset keep their defaults.
	if loaded.FPS != 10 {
		t.Errorf("FPS = %d, want default 10", loaded.FPS)
	}
	if loaded.BlurMode != "radial" {
		t.Errorf("BlurMode = %q, want default radial", loaded.BlurMode)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Expected error for missing preset file")
	}
}
