package tasklist_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sezyil/tiktok-otonom/internal/app/tasklist"
	"github.com/sezyil/tiktok-otonom/internal/model"
	"github.com/sezyil/tiktok-otonom/internal/storage/storagemock"
)

func TestServiceRun(t *testing.T) {
	stored := []model.Task{
		{ID: "task1", AccountID: "acc1", Type: model.TaskTypeLogin, Status: model.TaskStatusPending},
		{ID: "task2", AccountID: "acc1", Type: model.TaskTypePost, Status: model.TaskStatusCompleted},
		{ID: "task3", AccountID: "acc2", Type: model.TaskTypeWarmUp, Status: model.TaskStatusPending},
	}

	pending := model.TaskStatusPending

	tests := map[string]struct {
		req    tasklist.Request
		expIDs []string
	}{
		"No filter returns everything": {
			req:    tasklist.Request{},
			expIDs: []string{"task1", "task2", "task3"},
		},

		"Status filter": {
			req:    tasklist.Request{StatusFilter: &pending},
			expIDs: []string{"task1", "task3"},
		},

		"Account filter": {
			req:    tasklist.Request{AccountID: "acc1"},
			expIDs: []string{"task1", "task2"},
		},

		"Combined filters": {
			req:    tasklist.Request{StatusFilter: &pending, AccountID: "acc2"},
			expIDs: []string{"task3"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			repo := &storagemock.MockTaskRepository{}
			repo.On("ListTasks", mock.Anything).Return(stored, nil)

			svc, err := tasklist.NewService(tasklist.ServiceConfig{Repository: repo})
			require.NoError(t, err)

			tasks, err := svc.Run(context.Background(), tt.req)
			require.NoError(t, err)

			ids := make([]string, 0, len(tasks))
			for _, task := range tasks {
				ids = append(ids, task.ID)
			}
			assert.Equal(t, tt.expIDs, ids)
		})
	}
}
