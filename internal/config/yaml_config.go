package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"tagmaker/internal/keywords"
)

// RulesConfig represents the structure of the rules YAML file.
// Lists that are easier to manage in a file than in env vars.
type RulesConfig struct {
	// ExcludedSubstrings replaces the built-in list when non-empty.
	ExcludedSubstrings []string `yaml:"excluded_substrings"`
	// SeedBlocked replaces the built-in blocked list used on first install.
	SeedBlocked []string `yaml:"seed_blocked"`
	// SeedSubstitutions are inserted on first install.
	SeedSubstitutions []keywords.Substitution `yaml:"seed_substitutions"`
	Settings          *SettingsOverride       `yaml:"settings,omitempty"`
}

// SettingsOverride overrides environment settings field by field.
type SettingsOverride struct {
	TagMode                  *string `yaml:"tag_mode"`
	AutoProcessOnSave        *bool   `yaml:"auto_process_on_save"`
	MinimumKeywordsForFullKW *int    `yaml:"minimum_keywords_for_fullkw"`
	ProcessFeaturedImageOnly *bool   `yaml:"process_featured_image_only"`
	DebugLogging             *bool   `yaml:"debug_logging"`
}

// LoadRulesConfig loads the rules file at path.
// Returns nil without error if the file doesn't exist.
func LoadRulesConfig(path string) (*RulesConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Rules file is optional
			return nil, nil
		}
		return nil, err
	}

	var cfg RulesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Excluded returns the excluded substrings to filter with.
func (r *RulesConfig) Excluded() []string {
	if r == nil || len(r.ExcludedSubstrings) == 0 {
		return keywords.DefaultExcludedSubstrings
	}
	return r.ExcludedSubstrings
}

// Blocked returns the blocked keywords seeded on first install.
func (r *RulesConfig) Blocked() []string {
	if r == nil || len(r.SeedBlocked) == 0 {
		return keywords.DefaultBlocked
	}
	return r.SeedBlocked
}

// Substitutions returns the substitutions seeded on first install.
func (r *RulesConfig) Substitutions() []keywords.Substitution {
	if r == nil {
		return nil
	}
	return r.SeedSubstitutions
}

// Apply overlays the file's settings onto s.
func (r *RulesConfig) Apply(s Settings) Settings {
	if r == nil || r.Settings == nil {
		return s
	}
	o := r.Settings
	if o.TagMode != nil {
		s.TagMode = NormalizeTagMode(*o.TagMode)
	}
	if o.AutoProcessOnSave != nil {
		s.AutoProcessOnSave = *o.AutoProcessOnSave
	}
	if o.MinimumKeywordsForFullKW != nil && *o.MinimumKeywordsForFullKW >= 0 {
		s.MinimumKeywordsForFullKW = *o.MinimumKeywordsForFullKW
	}
	if o.ProcessFeaturedImageOnly != nil {
		s.ProcessFeaturedImageOnly = *o.ProcessFeaturedImageOnly
	}
	if o.DebugLogging != nil {
		s.DebugLogging = *o.DebugLogging
	}
	return s
}
