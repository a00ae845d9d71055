package model

import (
	"fmt"
	"time"
)

// AccountStatus represents the lifecycle status of a managed account.
type AccountStatus string

const (
	// AccountStatusInactive indicates the account exists but is not scheduled.
	AccountStatusInactive AccountStatus = "inactive"
	// AccountStatusActive indicates the account is eligible for automation.
	AccountStatusActive AccountStatus = "active"
	// AccountStatusLocked indicates the account needs manual intervention
	// (verification demanded by the platform or risk threshold crossed).
	AccountStatusLocked AccountStatus = "locked"
	// AccountStatusBanned indicates the platform banned the account.
	AccountStatusBanned AccountStatus = "banned"
)

// Proxy is the proxy endpoint an account's sessions are scoped to.
type Proxy struct {
	Host     string
	Port     int
	Username string
	Password string
}

// Addr returns the proxy server address in host:port form.
func (p Proxy) Addr() string {
	return fmt.Sprintf("%s:%d", p.Host, p.Port)
}

// Account represents a managed social media account.
//
// Password is an opaque secret handle: it is typed into the login form and
// must never reach logs or API responses.
type Account struct {
	ID           string
	Username     string
	Email        string
	Password     string
	Category     string
	Status       AccountStatus
	RiskScore    int
	Proxy        *Proxy
	CreatedAt    time.Time
	LastActivity time.Time
}

// Validate validates the account fields required for automation.
func (a *Account) Validate() error {
	if a.Username == "" {
		return fmt.Errorf("username is required: %w", ErrNotValid)
	}
	if a.Email == "" {
		return fmt.Errorf("email is required: %w", ErrNotValid)
	}
	if a.Password == "" {
		return fmt.Errorf("password is required: %w", ErrNotValid)
	}
	if a.Proxy != nil {
		if a.Proxy.Host == "" {
			return fmt.Errorf("proxy host is required: %w", ErrNotValid)
		}
		if a.Proxy.Port <= 0 || a.Proxy.Port > 65535 {
			return fmt.Errorf("proxy port %d out of range: %w", a.Proxy.Port, ErrNotValid)
		}
	}
	return nil
}

// Schedulable reports whether new automation tasks may run for the account.
func (a *Account) Schedulable() bool {
	return a.Status == AccountStatusActive
}

// AccountStats holds the profile counters scraped after a successful login.
type AccountStats struct {
	Followers int
	Following int
	Likes     int
}
