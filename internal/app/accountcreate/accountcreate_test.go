package accountcreate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sezyil/tiktok-otonom/internal/app/accountcreate"
	"github.com/sezyil/tiktok-otonom/internal/model"
	"github.com/sezyil/tiktok-otonom/internal/storage/storagemock"
)

func TestNewService(t *testing.T) {
	tests := map[string]struct {
		cfg    accountcreate.ServiceConfig
		expErr bool
		errMsg string
	}{
		"Valid config": {
			cfg: accountcreate.ServiceConfig{
				Repository: &storagemock.MockAccountRepository{},
			},
		},

		"Missing repository returns error": {
			cfg:    accountcreate.ServiceConfig{},
			expErr: true,
			errMsg: "repository is required",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			svc, err := accountcreate.NewService(tt.cfg)

			if tt.expErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Nil(t, svc)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

func TestServiceRun(t *testing.T) {
	tests := map[string]struct {
		req        accountcreate.Request
		setupMocks func(repo *storagemock.MockAccountRepository)
		expErr     error
		check      func(t *testing.T, account *model.Account)
	}{
		"Successful creation defaults to inactive": {
			req: accountcreate.Request{
				Username: "creator01",
				Email:    "creator01@example.com",
				Password: "s3cret",
			},
			setupMocks: func(repo *storagemock.MockAccountRepository) {
				repo.On("GetAccountByUsername", mock.Anything, "creator01").
					Return((*model.Account)(nil), model.ErrNotFound)
				repo.On("CreateAccount", mock.Anything, mock.MatchedBy(func(a model.Account) bool {
					return a.Username == "creator01" && a.ID != ""
				})).Return(nil)
			},
			check: func(t *testing.T, account *model.Account) {
				assert.Equal(t, model.AccountStatusInactive, account.Status)
				assert.NotEmpty(t, account.ID)
				assert.False(t, account.CreatedAt.IsZero())
			},
		},

		"Active flag creates a schedulable account": {
			req: accountcreate.Request{
				Username: "creator01",
				Email:    "creator01@example.com",
				Password: "s3cret",
				Active:   true,
			},
			setupMocks: func(repo *storagemock.MockAccountRepository) {
				repo.On("GetAccountByUsername", mock.Anything, "creator01").
					Return((*model.Account)(nil), model.ErrNotFound)
				repo.On("CreateAccount", mock.Anything, mock.Anything).Return(nil)
			},
			check: func(t *testing.T, account *model.Account) {
				assert.Equal(t, model.AccountStatusActive, account.Status)
				assert.True(t, account.Schedulable())
			},
		},

		"Invalid account is rejected before storage": {
			req: accountcreate.Request{
				Username: "creator01",
			},
			setupMocks: func(repo *storagemock.MockAccountRepository) {},
			expErr:     model.ErrNotValid,
		},

		"Duplicate username is rejected": {
			req: accountcreate.Request{
				Username: "creator01",
				Email:    "creator01@example.com",
				Password: "s3cret",
			},
			setupMocks: func(repo *storagemock.MockAccountRepository) {
				repo.On("GetAccountByUsername", mock.Anything, "creator01").
					Return(&model.Account{ID: "existing"}, nil)
			},
			expErr: model.ErrAlreadyExists,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			repo := &storagemock.MockAccountRepository{}
			tt.setupMocks(repo)

			svc, err := accountcreate.NewService(accountcreate.ServiceConfig{Repository: repo})
			require.NoError(t, err)

			account, err := svc.Run(context.Background(), tt.req)

			if tt.expErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.expErr))
			} else {
				require.NoError(t, err)
				tt.check(t, account)
			}
			repo.AssertExpectations(t)
		})
	}
}
