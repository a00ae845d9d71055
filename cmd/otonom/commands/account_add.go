package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/sezyil/tiktok-otonom/internal/app/accountcreate"
	"github.com/sezyil/tiktok-otonom/internal/app/enqueue"
	"github.com/sezyil/tiktok-otonom/internal/model"
	"github.com/sezyil/tiktok-otonom/internal/storage/sqlite"
)

type AccountAddCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	// Required flags.
	username string
	email    string
	password string

	category string
	active   bool
	register bool

	// Proxy flags.
	proxyHost     string
	proxyPort     int
	proxyUsername string
	proxyPassword string
}

// NewAccountAddCommand returns the account add command.
func NewAccountAddCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *AccountAddCommand {
	c := &AccountAddCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("add", "Register a managed account.")

	// Required flags.
	c.Cmd.Flag("username", "Account username.").Short('u').Required().StringVar(&c.username)
	c.Cmd.Flag("email", "Account email.").Required().StringVar(&c.email)
	c.Cmd.Flag("password", "Account password.").Required().StringVar(&c.password)

	c.Cmd.Flag("category", "Content category of the account.").StringVar(&c.category)
	c.Cmd.Flag("active", "Mark the account schedulable right away (skip signup).").BoolVar(&c.active)
	c.Cmd.Flag("register", "Enqueue a signup task so the dispatcher registers the account.").BoolVar(&c.register)

	// Proxy flags.
	c.Cmd.Flag("proxy-host", "Proxy host the account's sessions go through.").StringVar(&c.proxyHost)
	c.Cmd.Flag("proxy-port", "Proxy port.").IntVar(&c.proxyPort)
	c.Cmd.Flag("proxy-username", "Proxy username.").StringVar(&c.proxyUsername)
	c.Cmd.Flag("proxy-password", "Proxy password.").StringVar(&c.proxyPassword)

	return c
}

func (c AccountAddCommand) Name() string { return c.Cmd.FullCommand() }

func (c AccountAddCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	// Initialize storage (SQLite).
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBPath,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}
	defer repo.Close()

	svc, err := accountcreate.NewService(accountcreate.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	req := accountcreate.Request{
		Username: c.username,
		Email:    c.email,
		Password: c.password,
		Category: c.category,
		Active:   c.active,
	}
	if c.proxyHost != "" {
		req.Proxy = &model.Proxy{
			Host:     c.proxyHost,
			Port:     c.proxyPort,
			Username: c.proxyUsername,
			Password: c.proxyPassword,
		}
	}

	account, err := svc.Run(ctx, req)
	if err != nil {
		return fmt.Errorf("could not create account: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Account registered!\n")
	fmt.Fprintf(c.rootCmd.Stdout, "  ID:       %s\n", account.ID)
	fmt.Fprintf(c.rootCmd.Stdout, "  Username: %s\n", account.Username)
	fmt.Fprintf(c.rootCmd.Stdout, "  Status:   %s\n", account.Status)

	if c.register {
		enqSvc, err := enqueue.NewService(enqueue.ServiceConfig{
			Tasks:    repo,
			Accounts: repo,
			Logger:   logger,
		})
		if err != nil {
			return fmt.Errorf("could not create service: %w", err)
		}

		task, err := enqSvc.Run(ctx, enqueue.Request{
			AccountID: account.ID,
			Type:      model.TaskTypeSignup,
		})
		if err != nil {
			return fmt.Errorf("could not enqueue signup task: %w", err)
		}

		fmt.Fprintf(c.rootCmd.Stdout, "  Signup task: %s\n", task.ID)
	}

	return nil
}
