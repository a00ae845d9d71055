package io

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sezyil/tiktok-otonom/internal/model"
)

// ProfileYAMLRepository loads automation profiles from YAML files.
type ProfileYAMLRepository struct {
	fs fs.FS
}

// NewProfileYAMLRepository creates a new YAML profile repository.
func NewProfileYAMLRepository(filesystem fs.FS) *ProfileYAMLRepository {
	return &ProfileYAMLRepository{fs: filesystem}
}

// GetProfile loads an automation profile from a YAML file and returns a
// validated domain model.
func (r *ProfileYAMLRepository) GetProfile(ctx context.Context, path string) (model.AutomationProfile, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return model.AutomationProfile{}, fmt.Errorf("reading profile file: %w", err)
	}

	if ctx.Err() != nil {
		return model.AutomationProfile{}, ctx.Err()
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return model.AutomationProfile{}, fmt.Errorf("parsing YAML: %w", err)
	}

	profile := p.toModel()
	if err := profile.Validate(); err != nil {
		return model.AutomationProfile{}, fmt.Errorf("invalid profile: %w", err)
	}

	return profile, nil
}

// Profile represents the YAML structure for an automation profile.
type Profile struct {
	Pacing PacingConfig `yaml:"pacing"`
	WarmUp WarmUpConfig `yaml:"warm_up"`
}

// PacingConfig represents the YAML structure for step pacing.
type PacingConfig struct {
	SettleMin time.Duration `yaml:"settle_min"`
	SettleMax time.Duration `yaml:"settle_max"`
}

// WarmUpConfig represents the YAML structure for warm-up behavior.
type WarmUpConfig struct {
	Iterations         int      `yaml:"iterations"`
	LikeProbability    float64  `yaml:"like_probability"`
	CommentProbability float64  `yaml:"comment_probability"`
	CommentPhrases     []string `yaml:"comment_phrases"`
}

func (p Profile) toModel() model.AutomationProfile {
	return model.AutomationProfile{
		SettleMin:          p.Pacing.SettleMin,
		SettleMax:          p.Pacing.SettleMax,
		WarmUpIterations:   p.WarmUp.Iterations,
		LikeProbability:    p.WarmUp.LikeProbability,
		CommentProbability: p.WarmUp.CommentProbability,
		CommentPhrases:     p.WarmUp.CommentPhrases,
	}
}
