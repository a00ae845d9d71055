package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sezyil/tiktok-otonom/internal/model"
)

func TestAccountValidate(t *testing.T) {
	tests := map[string]struct {
		account model.Account
		expErr  bool
	}{
		"Valid account without proxy": {
			account: model.Account{
				Username: "creator01",
				Email:    "creator01@example.com",
				Password: "s3cret",
			},
		},

		"Valid account with proxy": {
			account: model.Account{
				Username: "creator01",
				Email:    "creator01@example.com",
				Password: "s3cret",
				Proxy:    &model.Proxy{Host: "10.0.0.1", Port: 8080},
			},
		},

		"Missing username is invalid": {
			account: model.Account{
				Email:    "creator01@example.com",
				Password: "s3cret",
			},
			expErr: true,
		},

		"Missing email is invalid": {
			account: model.Account{
				Username: "creator01",
				Password: "s3cret",
			},
			expErr: true,
		},

		"Missing password is invalid": {
			account: model.Account{
				Username: "creator01",
				Email:    "creator01@example.com",
			},
			expErr: true,
		},

		"Proxy without host is invalid": {
			account: model.Account{
				Username: "creator01",
				Email:    "creator01@example.com",
				Password: "s3cret",
				Proxy:    &model.Proxy{Port: 8080},
			},
			expErr: true,
		},

		"Proxy port out of range is invalid": {
			account: model.Account{
				Username: "creator01",
				Email:    "creator01@example.com",
				Password: "s3cret",
				Proxy:    &model.Proxy{Host: "10.0.0.1", Port: 70000},
			},
			expErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.account.Validate()

			if tt.expErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrNotValid)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAccountSchedulable(t *testing.T) {
	tests := map[string]struct {
		status model.AccountStatus
		exp    bool
	}{
		"Active accounts are schedulable":       {status: model.AccountStatusActive, exp: true},
		"Inactive accounts are not schedulable": {status: model.AccountStatusInactive, exp: false},
		"Locked accounts are not schedulable":   {status: model.AccountStatusLocked, exp: false},
		"Banned accounts are not schedulable":   {status: model.AccountStatusBanned, exp: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			account := model.Account{Status: tt.status}
			assert.Equal(t, tt.exp, account.Schedulable())
		})
	}
}

func TestProxyAddr(t *testing.T) {
	proxy := model.Proxy{Host: "10.0.0.1", Port: 8080, Username: "u", Password: "p"}
	assert.Equal(t, "10.0.0.1:8080", proxy.Addr())
}

func TestAccountStatuses(t *testing.T) {
	// Guard the wire values, they are persisted.
	assert.Equal(t, model.AccountStatus("inactive"), model.AccountStatusInactive)
	assert.Equal(t, model.AccountStatus("active"), model.AccountStatusActive)
	assert.Equal(t, model.AccountStatus("locked"), model.AccountStatusLocked)
	assert.Equal(t, model.AccountStatus("banned"), model.AccountStatusBanned)
}

func TestAutomationProfileValidate(t *testing.T) {
	tests := map[string]struct {
		profile model.AutomationProfile
		expErr  bool
	}{
		"Valid profile": {
			profile: model.AutomationProfile{
				SettleMin:          1 * time.Second,
				SettleMax:          3 * time.Second,
				WarmUpIterations:   5,
				LikeProbability:    0.5,
				CommentProbability: 0.2,
			},
		},

		"Settle max below min is invalid": {
			profile: model.AutomationProfile{SettleMin: 3 * time.Second, SettleMax: 1 * time.Second},
			expErr:  true,
		},

		"Negative settle is invalid": {
			profile: model.AutomationProfile{SettleMin: -1 * time.Second},
			expErr:  true,
		},

		"Probability above one is invalid": {
			profile: model.AutomationProfile{LikeProbability: 1.5},
			expErr:  true,
		},

		"Negative iterations is invalid": {
			profile: model.AutomationProfile{WarmUpIterations: -1},
			expErr:  true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.profile.Validate()

			if tt.expErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrNotValid)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
