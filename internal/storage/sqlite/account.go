package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sezyil/tiktok-otonom/internal/model"
)

const accountColumns = `
	id, username, email, password, category, status, risk_score,
	proxy_host, proxy_port, proxy_username, proxy_password,
	created_at, last_activity
`

// CreateAccount creates a new account in the repository.
func (r *Repository) CreateAccount(ctx context.Context, a model.Account) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("invalid account: %w", err)
	}

	var proxyHost, proxyUser, proxyPass *string
	var proxyPort *int
	if a.Proxy != nil {
		proxyHost = &a.Proxy.Host
		proxyPort = &a.Proxy.Port
		proxyUser = &a.Proxy.Username
		proxyPass = &a.Proxy.Password
	}

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		a.ID,
		a.Username,
		a.Email,
		a.Password,
		a.Category,
		a.Status,
		a.RiskScore,
		proxyHost,
		proxyPort,
		proxyUser,
		proxyPass,
		a.CreatedAt.Unix(),
		a.LastActivity.Unix(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: accounts.") {
			return fmt.Errorf("account already exists: %w", model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert account: %w", err)
	}

	r.logger.Debugf("Created account in repository: %s", a.ID)
	return nil
}

// GetAccount retrieves an account by ID.
func (r *Repository) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`

	account, err := r.scanOneAccount(ctx, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query account: %w", err)
	}

	return account, nil
}

// GetAccountByUsername retrieves an account by username.
func (r *Repository) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username = ?`

	account, err := r.scanOneAccount(ctx, query, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account with username %s: %w", username, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query account: %w", err)
	}

	return account, nil
}

// ListAccounts returns all accounts, newest first.
func (r *Repository) ListAccounts(ctx context.Context) ([]model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("could not query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		account, err := r.scanAccountRow(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return accounts, nil
}

// UpdateAccount updates an existing account.
func (r *Repository) UpdateAccount(ctx context.Context, a model.Account) error {
	var proxyHost, proxyUser, proxyPass *string
	var proxyPort *int
	if a.Proxy != nil {
		proxyHost = &a.Proxy.Host
		proxyPort = &a.Proxy.Port
		proxyUser = &a.Proxy.Username
		proxyPass = &a.Proxy.Password
	}

	query := `
		UPDATE accounts
		SET
			username = ?,
			email = ?,
			password = ?,
			category = ?,
			status = ?,
			risk_score = ?,
			proxy_host = ?,
			proxy_port = ?,
			proxy_username = ?,
			proxy_password = ?,
			last_activity = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		a.Username,
		a.Email,
		a.Password,
		a.Category,
		a.Status,
		a.RiskScore,
		proxyHost,
		proxyPort,
		proxyUser,
		proxyPass,
		a.LastActivity.Unix(),
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("could not update account: %w", err)
	}

	if err := requireRowAffected(result, a.ID); err != nil {
		return err
	}

	r.logger.Debugf("Updated account in repository: %s", a.ID)
	return nil
}

// DeleteAccount deletes an account.
func (r *Repository) DeleteAccount(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("could not delete account: %w", err)
	}

	if err := requireRowAffected(result, id); err != nil {
		return err
	}

	r.logger.Debugf("Deleted account from repository: %s", id)
	return nil
}

// UpdateRiskAndActivity atomically applies a risk delta (clamped at zero) and
// stamps the last activity time, returning the new score.
func (r *Repository) UpdateRiskAndActivity(ctx context.Context, id string, riskDelta int, at time.Time) (int, error) {
	query := `
		UPDATE accounts
		SET risk_score = MAX(0, risk_score + ?), last_activity = ?
		WHERE id = ?
		RETURNING risk_score
	`

	var score int
	err := r.db.QueryRowContext(ctx, query, riskDelta, at.Unix(), id).Scan(&score)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("account %s: %w", id, model.ErrNotFound)
		}
		return 0, fmt.Errorf("could not update risk score: %w", err)
	}

	return score, nil
}

// SetAccountStatus transitions the account lifecycle status.
func (r *Repository) SetAccountStatus(ctx context.Context, id string, status model.AccountStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE accounts SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("could not update account status: %w", err)
	}

	if err := requireRowAffected(result, id); err != nil {
		return err
	}

	r.logger.Debugf("Set account %s status to %s", id, status)
	return nil
}

func (r *Repository) scanOneAccount(ctx context.Context, query string, arg any) (*model.Account, error) {
	row := r.db.QueryRowContext(ctx, query, arg)
	account, err := r.scanAccountRow(row)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *Repository) scanAccountRow(s scanner) (model.Account, error) {
	var a model.Account
	var proxyHost, proxyUser, proxyPass sql.NullString
	var proxyPort sql.NullInt64
	var createdAt, lastActivity int64

	err := s.Scan(
		&a.ID,
		&a.Username,
		&a.Email,
		&a.Password,
		&a.Category,
		&a.Status,
		&a.RiskScore,
		&proxyHost,
		&proxyPort,
		&proxyUser,
		&proxyPass,
		&createdAt,
		&lastActivity,
	)
	if err != nil {
		return model.Account{}, err
	}

	if proxyHost.Valid {
		a.Proxy = &model.Proxy{
			Host:     proxyHost.String,
			Port:     int(proxyPort.Int64),
			Username: proxyUser.String,
			Password: proxyPass.String,
		}
	}

	a.CreatedAt = timeFromUnix(createdAt)
	a.LastActivity = timeFromUnix(lastActivity)

	return a, nil
}

func requireRowAffected(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", id, model.ErrNotFound)
	}
	return nil
}

func timeFromUnix(unix int64) time.Time { return time.Unix(unix, 0).UTC() }
