package accountcreate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/sezyil/tiktok-otonom/internal/log"
	"github.com/sezyil/tiktok-otonom/internal/model"
	"github.com/sezyil/tiktok-otonom/internal/storage"
)

// ServiceConfig is the configuration for the account create service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.AccountCreate"})
	return nil
}

// Service registers accounts into the managed set.
type Service struct {
	repo   storage.AccountRepository
	logger log.Logger
}

// NewService creates a new account create service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the account create request parameters.
type Request struct {
	Username string
	Email    string
	Password string
	Category string
	Proxy    *model.Proxy
	// Active creates the account directly schedulable, skipping signup.
	Active bool
}

// Run validates and stores the account.
func (s *Service) Run(ctx context.Context, req Request) (*model.Account, error) {
	status := model.AccountStatusInactive
	if req.Active {
		status = model.AccountStatusActive
	}

	account := model.Account{
		ID:        ulid.Make().String(),
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Category:  req.Category,
		Status:    status,
		Proxy:     req.Proxy,
		CreatedAt: time.Now().UTC(),
	}

	if err := account.Validate(); err != nil {
		return nil, fmt.Errorf("invalid account: %w", err)
	}

	_, err := s.repo.GetAccountByUsername(ctx, account.Username)
	if err == nil {
		return nil, fmt.Errorf("account with username %q already exists: %w", account.Username, model.ErrAlreadyExists)
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("could not check username uniqueness: %w", err)
	}

	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("could not save account: %w", err)
	}

	s.logger.Infof("Created account: %s (%s)", account.Username, account.ID)

	return &account, nil
}
