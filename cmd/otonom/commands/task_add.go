package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/sezyil/tiktok-otonom/internal/app/enqueue"
	"github.com/sezyil/tiktok-otonom/internal/model"
	"github.com/sezyil/tiktok-otonom/internal/storage/sqlite"
)

type TaskAddCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	// Required flags.
	accountID string
	taskType  string

	// Post flags.
	videoPath string
	caption   string
	hashtags  string

	// Warm-up flags.
	iterations int
}

// NewTaskAddCommand returns the task add command.
func NewTaskAddCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *TaskAddCommand {
	c := &TaskAddCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("add", "Enqueue an automation task.")

	// Required flags.
	c.Cmd.Flag("account", "Account id the task runs on.").Short('a').Required().StringVar(&c.accountID)
	c.Cmd.Flag("type", "Task type (signup, login, post, warm_up).").Required().EnumVar(&c.taskType, "signup", "login", "post", "warm_up")

	// Post flags.
	c.Cmd.Flag("video", "Path to the video file (required for post tasks).").StringVar(&c.videoPath)
	c.Cmd.Flag("caption", "Video caption.").StringVar(&c.caption)
	c.Cmd.Flag("hashtags", "Video hashtags.").StringVar(&c.hashtags)

	// Warm-up flags.
	c.Cmd.Flag("iterations", "Warm-up feed iterations.").IntVar(&c.iterations)

	return c
}

func (c TaskAddCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskAddCommand) Run(ctx context.Context) error {
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

	svc, err := enqueue.NewService(enqueue.ServiceConfig{
		Tasks:    repo,
		Accounts: repo,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	task, err := svc.Run(ctx, enqueue.Request{
		AccountID: c.accountID,
		Type:      model.TaskType(c.taskType),
		Payload: model.TaskPayload{
			VideoPath:        c.videoPath,
			Caption:          c.caption,
			Hashtags:         c.hashtags,
			WarmUpIterations: c.iterations,
		},
	})
	if err != nil {
		return fmt.Errorf("could not enqueue task: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Task enqueued!\n")
	fmt.Fprintf(c.rootCmd.Stdout, "  ID:      %s\n", task.ID)
	fmt.Fprintf(c.rootCmd.Stdout, "  Type:    %s\n", task.Type)
	fmt.Fprintf(c.rootCmd.Stdout, "  Account: %s\n", task.AccountID)

	return nil
}
