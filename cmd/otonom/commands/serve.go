package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"

	"github.com/sezyil/tiktok-otonom/internal/api"
	"github.com/sezyil/tiktok-otonom/internal/app/accountcreate"
	"github.com/sezyil/tiktok-otonom/internal/app/accountlist"
	"github.com/sezyil/tiktok-otonom/internal/app/enqueue"
	"github.com/sezyil/tiktok-otonom/internal/app/tasklist"
	"github.com/sezyil/tiktok-otonom/internal/automation"
	"github.com/sezyil/tiktok-otonom/internal/browser"
	"github.com/sezyil/tiktok-otonom/internal/browser/fake"
	"github.com/sezyil/tiktok-otonom/internal/browser/playwright"
	"github.com/sezyil/tiktok-otonom/internal/scheduler"
	storageio "github.com/sezyil/tiktok-otonom/internal/storage/io"
	"github.com/sezyil/tiktok-otonom/internal/storage/sqlite"
)

type ServeCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	listenAddr  string
	engine      string
	headless    bool
	install     bool
	profilePath string

	poolCapacity int
	interval     time.Duration
	batchSize    int
	flowTimeout  time.Duration
}

// NewServeCommand returns the serve command.
func NewServeCommand(rootCmd *RootCommand, app *kingpin.Application) *ServeCommand {
	c := &ServeCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("serve", "Run the API server and the task dispatcher.")

	c.Cmd.Flag("listen", "Address the HTTP API listens on.").Default(":8080").StringVar(&c.listenAddr)
	c.Cmd.Flag("engine", "Browser engine (playwright, fake).").Default("playwright").EnumVar(&c.engine, "playwright", "fake")
	c.Cmd.Flag("headless", "Run the browser headless.").Default("true").BoolVar(&c.headless)
	c.Cmd.Flag("install-browsers", "Install playwright browsers on startup.").BoolVar(&c.install)
	c.Cmd.Flag("profile", "Path to the automation profile YAML file.").StringVar(&c.profilePath)

	c.Cmd.Flag("pool-capacity", "Maximum concurrent browser sessions.").Default("5").IntVar(&c.poolCapacity)
	c.Cmd.Flag("interval", "Dispatcher poll interval.").Default("30m").DurationVar(&c.interval)
	c.Cmd.Flag("batch-size", "Maximum tasks picked up per poll.").Default("5").IntVar(&c.batchSize)
	c.Cmd.Flag("flow-timeout", "Hard wall-clock budget per session.").Default("10m").DurationVar(&c.flowTimeout)

	return c
}

func (c ServeCommand) Name() string { return c.Cmd.FullCommand() }

func (c ServeCommand) Run(ctx context.Context) error {
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

	// Automation profile.
	profile := automation.DefaultProfile()
	if c.profilePath != "" {
		profileRepo := storageio.NewProfileYAMLRepository(os.DirFS(filepath.Dir(c.profilePath)))
		profile, err = profileRepo.GetProfile(ctx, filepath.Base(c.profilePath))
		if err != nil {
			return fmt.Errorf("could not load automation profile: %w", err)
		}
	}

	// Browser engine and session pool.
	var engine browser.Engine
	switch c.engine {
	case "playwright":
		engine, err = playwright.NewEngine(playwright.EngineConfig{
			Headless: c.headless,
			Install:  c.install,
			Logger:   logger,
		})
	case "fake":
		engine, err = fake.NewEngine(fake.EngineConfig{})
	}
	if err != nil {
		return fmt.Errorf("could not create browser engine: %w", err)
	}

	pool, err := browser.NewPool(ctx, browser.PoolConfig{
		Engine:   engine,
		Capacity: c.poolCapacity,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("could not create session pool: %w", err)
	}

	// Flow runner.
	runner, err := automation.NewRunner(automation.RunnerConfig{
		Profile: profile,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("could not create flow runner: %w", err)
	}

	// Dispatcher.
	dispatcher, err := scheduler.NewDispatcher(scheduler.DispatcherConfig{
		Tasks:       repo,
		Accounts:    repo,
		Pool:        pool,
		Runner:      runner,
		Logger:      logger,
		Interval:    c.interval,
		BatchSize:   c.batchSize,
		FlowTimeout: c.flowTimeout,
	})
	if err != nil {
		return fmt.Errorf("could not create dispatcher: %w", err)
	}

	// App services.
	accountCreateSvc, err := accountcreate.NewService(accountcreate.ServiceConfig{Repository: repo, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}
	accountListSvc, err := accountlist.NewService(accountlist.ServiceConfig{Repository: repo, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}
	enqueueSvc, err := enqueue.NewService(enqueue.ServiceConfig{Tasks: repo, Accounts: repo, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}
	taskListSvc, err := tasklist.NewService(tasklist.ServiceConfig{Repository: repo, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	apiServer, err := api.NewServer(api.ServerConfig{
		AccountCreate: accountCreateSvc,
		AccountList:   accountListSvc,
		Enqueue:       enqueueSvc,
		TaskList:      taskListSvc,
		Accounts:      repo,
		Tasks:         repo,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("could not create API server: %w", err)
	}

	var g run.Group

	// Dispatcher loop.
	{
		dispatcherCtx, dispatcherCancel := context.WithCancel(ctx)

		g.Add(
			func() error {
				err := dispatcher.Run(dispatcherCtx)
				if err != nil && dispatcherCtx.Err() == nil {
					return fmt.Errorf("dispatcher failed: %w", err)
				}
				return nil
			},
			func(_ error) {
				dispatcherCancel()
			},
		)
	}

	// HTTP API server.
	{
		server := &http.Server{
			Addr:         c.listenAddr,
			Handler:      apiServer,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		}

		g.Add(
			func() error {
				logger.Infof("HTTP API listening on %s", c.listenAddr)
				err := server.ListenAndServe()
				if err != nil && err != http.ErrServerClosed {
					return fmt.Errorf("HTTP server failed: %w", err)
				}
				return nil
			},
			func(_ error) {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					logger.Errorf("Could not shut down HTTP server: %v", err)
				}
			},
		)
	}

	err = g.Run()

	// Drain sessions and stop the browser.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if poolErr := pool.Shutdown(shutdownCtx); poolErr != nil {
		logger.Errorf("Could not shut down session pool: %v", poolErr)
	}

	return err
}
