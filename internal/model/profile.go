package model

import (
	"fmt"
	"time"
)

// AutomationProfile is the tunable pacing and behavior configuration for the
// automation flows. The randomized settle delays and action probabilities are
// an anti-correlation measure, not a performance knob.
type AutomationProfile struct {
	SettleMin          time.Duration
	SettleMax          time.Duration
	WarmUpIterations   int
	LikeProbability    float64
	CommentProbability float64
	CommentPhrases     []string
}

// Validate validates the automation profile.
func (p *AutomationProfile) Validate() error {
	if p.SettleMin < 0 || p.SettleMax < 0 {
		return fmt.Errorf("settle delays must not be negative: %w", ErrNotValid)
	}
	if p.SettleMax < p.SettleMin {
		return fmt.Errorf("settle max must be >= settle min: %w", ErrNotValid)
	}
	if p.WarmUpIterations < 0 {
		return fmt.Errorf("warm-up iterations must not be negative: %w", ErrNotValid)
	}
	if p.LikeProbability < 0 || p.LikeProbability > 1 {
		return fmt.Errorf("like probability must be within [0,1]: %w", ErrNotValid)
	}
	if p.CommentProbability < 0 || p.CommentProbability > 1 {
		return fmt.Errorf("comment probability must be within [0,1]: %w", ErrNotValid)
	}
	return nil
}
