package accountlist_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sezyil/tiktok-otonom/internal/app/accountlist"
	"github.com/sezyil/tiktok-otonom/internal/model"
	"github.com/sezyil/tiktok-otonom/internal/storage/storagemock"
)

func TestServiceRun(t *testing.T) {
	stored := []model.Account{
		{ID: "acc1", Username: "creator01", Category: "fitness", Status: model.AccountStatusActive},
		{ID: "acc2", Username: "creator02", Category: "cooking", Status: model.AccountStatusActive},
		{ID: "acc3", Username: "creator03", Category: "fitness", Status: model.AccountStatusLocked},
	}

	active := model.AccountStatusActive

	tests := map[string]struct {
		req    accountlist.Request
		expIDs []string
	}{
		"No filter returns everything": {
			req:    accountlist.Request{},
			expIDs: []string{"acc1", "acc2", "acc3"},
		},

		"Status filter": {
			req:    accountlist.Request{StatusFilter: &active},
			expIDs: []string{"acc1", "acc2"},
		},

		"Category filter": {
			req:    accountlist.Request{CategoryFilter: "fitness"},
			expIDs: []string{"acc1", "acc3"},
		},

		"Combined filters": {
			req:    accountlist.Request{StatusFilter: &active, CategoryFilter: "fitness"},
			expIDs: []string{"acc1"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			repo := &storagemock.MockAccountRepository{}
			repo.On("ListAccounts", mock.Anything).Return(stored, nil)

			svc, err := accountlist.NewService(accountlist.ServiceConfig{Repository: repo})
			require.NoError(t, err)

			accounts, err := svc.Run(context.Background(), tt.req)
			require.NoError(t, err)

			ids := make([]string, 0, len(accounts))
			for _, a := range accounts {
				ids = append(ids, a.ID)
			}
			assert.Equal(t, tt.expIDs, ids)
		})
	}
}
