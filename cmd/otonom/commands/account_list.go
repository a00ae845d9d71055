package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/kingpin/v2"

	"github.com/sezyil/tiktok-otonom/internal/app/accountlist"
	"github.com/sezyil/tiktok-otonom/internal/model"
	"github.com/sezyil/tiktok-otonom/internal/printer"
	"github.com/sezyil/tiktok-otonom/internal/storage/sqlite"
)

type AccountListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	statusFilter   string
	categoryFilter string
	format         string
}

// NewAccountListCommand returns the account list command.
func NewAccountListCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *AccountListCommand {
	c := &AccountListCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("list", "List managed accounts.")
	c.Cmd.Flag("status", "Filter by status (inactive, active, locked, banned).").StringVar(&c.statusFilter)
	c.Cmd.Flag("category", "Filter by content category.").StringVar(&c.categoryFilter)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c AccountListCommand) Name() string { return c.Cmd.FullCommand() }

func (c AccountListCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	// Parse status filter if provided.
	var statusFilter *model.AccountStatus
	if c.statusFilter != "" {
		status := model.AccountStatus(strings.ToLower(c.statusFilter))
		switch status {
		case model.AccountStatusInactive, model.AccountStatusActive, model.AccountStatusLocked, model.AccountStatusBanned:
			statusFilter = &status
		default:
			return fmt.Errorf("invalid status filter: %s (must be: inactive, active, locked, banned)", c.statusFilter)
		}
	}

	// Initialize storage (SQLite).
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBPath,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}
	defer repo.Close()

	svc, err := accountlist.NewService(accountlist.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	accounts, err := svc.Run(ctx, accountlist.Request{
		StatusFilter:   statusFilter,
		CategoryFilter: c.categoryFilter,
	})
	if err != nil {
		return fmt.Errorf("could not list accounts: %w", err)
	}

	// Print output.
	var p printer.Printer
	switch c.format {
	case "json":
		p = printer.NewJSONPrinter(c.rootCmd.Stdout)
	default: // table
		p = printer.NewTablePrinter(c.rootCmd.Stdout)
	}

	if err := p.PrintAccountList(accounts); err != nil {
		return fmt.Errorf("could not print list: %w", err)
	}

	return nil
}
