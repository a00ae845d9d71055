package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sezyil/tiktok-otonom/internal/model"
)

func TestTaskValidate(t *testing.T) {
	tests := map[string]struct {
		task   model.Task
		expErr bool
	}{
		"Valid login task": {
			task: model.Task{AccountID: "acc1", Type: model.TaskTypeLogin},
		},

		"Valid warm-up task": {
			task: model.Task{AccountID: "acc1", Type: model.TaskTypeWarmUp},
		},

		"Valid post task with video": {
			task: model.Task{
				AccountID: "acc1",
				Type:      model.TaskTypePost,
				Payload:   model.TaskPayload{VideoPath: "/videos/clip.mp4"},
			},
		},

		"Post task without video is invalid": {
			task:   model.Task{AccountID: "acc1", Type: model.TaskTypePost},
			expErr: true,
		},

		"Missing account id is invalid": {
			task:   model.Task{Type: model.TaskTypeLogin},
			expErr: true,
		},

		"Unknown task type is invalid": {
			task:   model.Task{AccountID: "acc1", Type: "dance"},
			expErr: true,
		},

		"Negative warm-up iterations is invalid": {
			task: model.Task{
				AccountID: "acc1",
				Type:      model.TaskTypeWarmUp,
				Payload:   model.TaskPayload{WarmUpIterations: -1},
			},
			expErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.task.Validate()

			if tt.expErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrNotValid)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestTaskEligible(t *testing.T) {
	now := time.Now()

	tests := map[string]struct {
		task model.Task
		exp  bool
	}{
		"Pending task without deferral is eligible": {
			task: model.Task{Status: model.TaskStatusPending},
			exp:  true,
		},

		"Pending task with past deferral is eligible": {
			task: model.Task{Status: model.TaskStatusPending, NotBefore: now.Add(-1 * time.Minute)},
			exp:  true,
		},

		"Pending task deferred into the future is not eligible": {
			task: model.Task{Status: model.TaskStatusPending, NotBefore: now.Add(1 * time.Minute)},
			exp:  false,
		},

		"Processing task is not eligible": {
			task: model.Task{Status: model.TaskStatusProcessing},
			exp:  false,
		},

		"Completed task is not eligible": {
			task: model.Task{Status: model.TaskStatusCompleted},
			exp:  false,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.exp, tt.task.Eligible(now))
		})
	}
}

func TestTaskTerminal(t *testing.T) {
	assert.False(t, (&model.Task{Status: model.TaskStatusPending}).Terminal())
	assert.False(t, (&model.Task{Status: model.TaskStatusProcessing}).Terminal())
	assert.True(t, (&model.Task{Status: model.TaskStatusCompleted}).Terminal())
	assert.True(t, (&model.Task{Status: model.TaskStatusFailed}).Terminal())
}
