package seed

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yml
var builtinPresets []byte

// Options sizes a seeding run.
type Options struct {
	Users            int     `yaml:"users"`
	PostsPerUser     int     `yaml:"posts_per_user"`
	FollowsPerUser   int     `yaml:"follows_per_user"`
	ReactionsPerPost int     `yaml:"reactions_per_post"`
	RepliesPerPost   int     `yaml:"replies_per_post"`
	ImageRatio       float64 `yaml:"image_ratio"`
	// RandomSeed makes a run reproducible. Zero picks a time-based seed.
	RandomSeed int64 `yaml:"random_seed"`
}

// Validate rejects option sets the seeder cannot satisfy.
func (o Options) Validate() error {
	if o.Users < 1 {
		return fmt.Errorf("users must be at least 1, got %d", o.Users)
	}
	if o.PostsPerUser < 0 || o.FollowsPerUser < 0 || o.ReactionsPerPost < 0 || o.RepliesPerPost < 0 {
		return fmt.Errorf("counts must not be negative")
	}
	if o.ImageRatio < 0 || o.ImageRatio > 1 {
		return fmt.Errorf("image_ratio must be between 0 and 1, got %v", o.ImageRatio)
	}
	return nil
}

// ParsePresets decodes a YAML document mapping preset names to Options.
func ParsePresets(raw []byte) (map[string]Options, error) {
	presets := map[string]Options{}
	if err := yaml.Unmarshal(raw, &presets); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	for name, opts := range presets {
		if err := opts.Validate(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
	}
	return presets, nil
}

// LoadPresets returns the built-in presets, overlaid with the presets in
// path when path is not empty.
func LoadPresets(path string) (map[string]Options, error) {
	presets, err := ParsePresets(builtinPresets)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return presets, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets file: %w", err)
	}
	extra, err := ParsePresets(raw)
	if err != nil {
		return nil, err
	}
	for name, opts := range extra {
		presets[name] = opts
	}
	return presets, nil
}

// PresetNames lists preset names in a stable order for usage output.
func PresetNames(presets map[string]Options) []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
