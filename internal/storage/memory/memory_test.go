package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sezyil/tiktok-otonom/internal/model"
	"github.com/sezyil/tiktok-otonom/internal/storage/memory"
)

func testAccount(id, username string) model.Account {
	return model.Account{
		ID:        id,
		Username:  username,
		Email:     username + "@example.com",
		Password:  "s3cret",
		Status:    model.AccountStatusActive,
		CreatedAt: time.Now().UTC(),
	}
}

func TestRepositoryAccounts(t *testing.T) {
	ctx := context.Background()

	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(t, err)

	account := testAccount("acc1", "creator01")

	// Create and get back.
	require.NoError(t, repo.CreateAccount(ctx, account))

	got, err := repo.GetAccount(ctx, "acc1")
	require.NoError(t, err)
	assert.Equal(t, account.Username, got.Username)

	got, err = repo.GetAccountByUsername(ctx, "creator01")
	require.NoError(t, err)
	assert.Equal(t, "acc1", got.ID)

	// Duplicates rejected.
	err = repo.CreateAccount(ctx, account)
	assert.ErrorIs(t, err, model.ErrAlreadyExists)

	// Missing accounts.
	_, err = repo.GetAccount(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)

	// Update.
	account.Category = "fitness"
	require.NoError(t, repo.UpdateAccount(ctx, account))
	got, err = repo.GetAccount(ctx, "acc1")
	require.NoError(t, err)
	assert.Equal(t, "fitness", got.Category)

	// List.
	require.NoError(t, repo.CreateAccount(ctx, testAccount("acc2", "creator02")))
	accounts, err := repo.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)

	// Delete.
	require.NoError(t, repo.DeleteAccount(ctx, "acc2"))
	_, err = repo.GetAccount(ctx, "acc2")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestRepositoryRiskAndStatus(t *testing.T) {
	ctx := context.Background()

	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(t, err)

	require.NoError(t, repo.CreateAccount(ctx, testAccount("acc1", "creator01")))

	now := time.Now().UTC()

	// Risk accumulates.
	score, err := repo.UpdateRiskAndActivity(ctx, "acc1", 25, now)
	require.NoError(t, err)
	assert.Equal(t, 25, score)

	score, err = repo.UpdateRiskAndActivity(ctx, "acc1", 5, now)
	require.NoError(t, err)
	assert.Equal(t, 30, score)

	// Decay clamps at zero.
	score, err = repo.UpdateRiskAndActivity(ctx, "acc1", -100, now)
	require.NoError(t, err)
	assert.Equal(t, 0, score)

	// Activity stamped.
	got, err := repo.GetAccount(ctx, "acc1")
	require.NoError(t, err)
	assert.False(t, got.LastActivity.IsZero())

	// Status transition.
	require.NoError(t, repo.SetAccountStatus(ctx, "acc1", model.AccountStatusLocked))
	got, err = repo.GetAccount(ctx, "acc1")
	require.NoError(t, err)
	assert.Equal(t, model.AccountStatusLocked, got.Status)
}

func TestRepositoryTasks(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(t, err)

	require.NoError(t, repo.CreateAccount(ctx, testAccount("acc1", "creator01")))

	task := model.Task{
		ID:        "task1",
		AccountID: "acc1",
		Type:      model.TaskTypeLogin,
		Status:    model.TaskStatusPending,
		CreatedAt: now,
	}
	require.NoError(t, repo.CreateTask(ctx, task))

	got, err := repo.GetTask(ctx, "task1")
	require.NoError(t, err)
	assert.Equal(t, model.TaskTypeLogin, got.Type)

	// Status transition with reason.
	completedAt := now.Add(time.Minute)
	require.NoError(t, repo.SetTaskStatus(ctx, "task1", model.TaskStatusFailed, &completedAt, "timeout"))
	got, err = repo.GetTask(ctx, "task1")
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusFailed, got.Status)
	assert.Equal(t, "timeout", got.Reason)
	require.NotNil(t, got.CompletedAt)

	// Requeue resets to pending and counts the attempt.
	notBefore := now.Add(5 * time.Minute)
	require.NoError(t, repo.RequeueTask(ctx, "task1", notBefore))
	got, err = repo.GetTask(ctx, "task1")
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusPending, got.Status)
	assert.Equal(t, 1, got.Attempts)
	assert.Nil(t, got.CompletedAt)

	// Deleting the account cascades to its tasks.
	require.NoError(t, repo.DeleteAccount(ctx, "acc1"))
	_, err = repo.GetTask(ctx, "task1")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestRepositoryListPendingTasks(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(t, err)

	require.NoError(t, repo.CreateAccount(ctx, testAccount("acc1", "creator01")))

	mkTask := func(id string, createdAt time.Time, status model.TaskStatus, notBefore time.Time) model.Task {
		return model.Task{
			ID:        id,
			AccountID: "acc1",
			Type:      model.TaskTypeLogin,
			Status:    status,
			NotBefore: notBefore,
			CreatedAt: createdAt,
		}
	}

	require.NoError(t, repo.CreateTask(ctx, mkTask("newest", now, model.TaskStatusPending, time.Time{})))
	require.NoError(t, repo.CreateTask(ctx, mkTask("oldest", now.Add(-2*time.Hour), model.TaskStatusPending, time.Time{})))
	require.NoError(t, repo.CreateTask(ctx, mkTask("middle", now.Add(-1*time.Hour), model.TaskStatusPending, time.Time{})))
	require.NoError(t, repo.CreateTask(ctx, mkTask("deferred", now.Add(-3*time.Hour), model.TaskStatusPending, now.Add(time.Hour))))
	require.NoError(t, repo.CreateTask(ctx, mkTask("done", now.Add(-4*time.Hour), model.TaskStatusCompleted, time.Time{})))

	// Oldest first, deferred and terminal excluded.
	tasks, err := repo.ListPendingTasks(ctx, 10, now)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "oldest", tasks[0].ID)
	assert.Equal(t, "middle", tasks[1].ID)
	assert.Equal(t, "newest", tasks[2].ID)

	// Limit respected.
	tasks, err = repo.ListPendingTasks(ctx, 2, now)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "oldest", tasks[0].ID)
}
