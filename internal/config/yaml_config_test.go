package config

import (
	"os"
	"path/filepath"
	"testing"

	"tagmaker/internal/keywords"
	"tagmaker/internal/models"
)

func writeRulesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadRulesConfigMissingFile(t *testing.T) {
	cfg, err := LoadRulesConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadRulesConfig() error = %v", err)
	}
	if cfg != nil {
		t.Fatalf("LoadRulesConfig() = %+v, want nil", cfg)
	}

	// A nil config falls back to the built-in lists.
	if got := cfg.Excluded(); len(got) != len(keywords.DefaultExcludedSubstrings) {
		t.Errorf("Excluded() = %v, want defaults", got)
	}
	if got := cfg.Blocked(); len(got) != len(keywords.DefaultBlocked) {
		t.Errorf("Blocked() has %d entries, want %d", len(got), len(keywords.DefaultBlocked))
	}
	if got := cfg.Substitutions(); got != nil {
		t.Errorf("Substitutions() = %v, want nil", got)
	}

	s := Settings{TagMode: models.TagModeAppend}
	if got := cfg.Apply(s); got != s {
		t.Errorf("Apply() = %+v, want unchanged", got)
	}
}

func TestLoadRulesConfig(t *testing.T) {
	path := writeRulesFile(t, `
excluded_substrings:
  - camera
  - watermark
seed_blocked:
  - Untitled
seed_substitutions:
  - original: nyc
    replacement: New York
settings:
  tag_mode: replace
  minimum_keywords_for_fullkw: 3
  process_featured_image_only: true
`)

	cfg, err := LoadRulesConfig(path)
	if err != nil {
		t.Fatalf("LoadRulesConfig() error = %v", err)
	}

	if got := cfg.Excluded(); len(got) != 2 || got[1] != "watermark" {
		t.Errorf("Excluded() = %v", got)
	}
	if got := cfg.Blocked(); len(got) != 1 || got[0] != "Untitled" {
		t.Errorf("Blocked() = %v", got)
	}
	want := keywords.Substitution{Original: "nyc", Replacement: "New York"}
	if got := cfg.Substitutions(); len(got) != 1 || got[0] != want {
		t.Errorf("Substitutions() = %v", got)
	}

	base := Settings{
		TagMode:                  models.TagModeAppend,
		AutoProcessOnSave:        true,
		MinimumKeywordsForFullKW: 5,
	}
	got := cfg.Apply(base)
	wantSettings := Settings{
		TagMode:                  models.TagModeReplace,
		AutoProcessOnSave:        true,
		MinimumKeywordsForFullKW: 3,
		ProcessFeaturedImageOnly: true,
	}
	if got != wantSettings {
		t.Errorf("Apply() = %+v, want %+v", got, wantSettings)
	}
}

func TestLoadRulesConfigEmptyListsUseDefaults(t *testing.T) {
	path := writeRulesFile(t, "excluded_substrings: []\n")

	cfg, err := LoadRulesConfig(path)
	if err != nil {
		t.Fatalf("LoadRulesConfig() error = %v", err)
	}
	if got := cfg.Excluded(); len(got) != len(keywords.DefaultExcludedSubstrings) {
		t.Errorf("Excluded() = %v, want defaults", got)
	}
}

func TestLoadRulesConfigInvalidYAML(t *testing.T) {
	path := writeRulesFile(t, "excluded_substrings: [camera\n")

	if _, err := LoadRulesConfig(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestApplyIgnoresNegativeMinimum(t *testing.T) {
	n := -1
	cfg := &RulesConfig{Settings: &SettingsOverride{MinimumKeywordsForFullKW: &n}}

	got := cfg.Apply(Settings{MinimumKeywordsForFullKW: 5})
	if got.MinimumKeywordsForFullKW != 5 {
		t.Errorf("MinimumKeywordsForFullKW = %d, want 5", got.MinimumKeywordsForFullKW)
	}
}
