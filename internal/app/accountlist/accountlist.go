package accountlist

import (
	"context"
	"fmt"

	"github.com/sezyil/tiktok-otonom/internal/log"
	"github.com/sezyil/tiktok-otonom/internal/model"
	"github.com/sezyil/tiktok-otonom/internal/storage"
)

// ServiceConfig is the configuration for the account list service.
type ServiceConfig struct {
	Repository storage.AccountRepository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service lists managed accounts with optional filtering.
type Service struct {
	repo   storage.AccountRepository
	logger log.Logger
}

// NewService creates a new account list service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the list request parameters.
type Request struct {
	// StatusFilter is an optional filter to only show accounts with this status.
	StatusFilter *model.AccountStatus
	// CategoryFilter is an optional filter on the content category.
	CategoryFilter string
}

// Run lists all accounts, optionally filtered.
func (s *Service) Run(ctx context.Context, req Request) ([]model.Account, error) {
	accounts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list accounts: %w", err)
	}

	if req.StatusFilter != nil || req.CategoryFilter != "" {
		filtered := make([]model.Account, 0, len(accounts))
		for _, a := range accounts {
			if req.StatusFilter != nil && a.Status != *req.StatusFilter {
				continue
			}
			if req.CategoryFilter != "" && a.Category != req.CategoryFilter {
				continue
			}
			filtered = append(filtered, a)
		}
		accounts = filtered
	}

	s.logger.Debugf("found %d accounts", len(accounts))
	return accounts, nil
}
