// Package storagemock provides testify mocks for the storage repositories.
package storagemock

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sezyil/tiktok-otonom/internal/model"
)

// MockAccountRepository is a mock implementation of storage.AccountRepository.
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) CreateAccount(ctx context.Context, a model.Account) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAccountRepository) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	args := m.Called(ctx, id)
	account, _ := args.Get(0).(*model.Account)
	return account, args.Error(1)
}

func (m *MockAccountRepository) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	args := m.Called(ctx, username)
	account, _ := args.Get(0).(*model.Account)
	return account, args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context) ([]model.Account, error) {
	args := m.Called(ctx)
	accounts, _ := args.Get(0).([]model.Account)
	return accounts, args.Error(1)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, a model.Account) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAccountRepository) DeleteAccount(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateRiskAndActivity(ctx context.Context, id string, riskDelta int, at time.Time) (int, error) {
	args := m.Called(ctx, id, riskDelta, at)
	return args.Int(0), args.Error(1)
}

func (m *MockAccountRepository) SetAccountStatus(ctx context.Context, id string, status model.AccountStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// MockTaskRepository is a mock implementation of storage.TaskRepository.
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) CreateTask(ctx context.Context, t model.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) GetTask(ctx context.Context, id string) (*model.Task, error) {
	args := m.Called(ctx, id)
	task, _ := args.Get(0).(*model.Task)
	return task, args.Error(1)
}

func (m *MockTaskRepository) ListTasks(ctx context.Context) ([]model.Task, error) {
	args := m.Called(ctx)
	tasks, _ := args.Get(0).([]model.Task)
	return tasks, args.Error(1)
}

func (m *MockTaskRepository) ListPendingTasks(ctx context.Context, limit int, now time.Time) ([]model.Task, error) {
	args := m.Called(ctx, limit, now)
	tasks, _ := args.Get(0).([]model.Task)
	return tasks, args.Error(1)
}

func (m *MockTaskRepository) SetTaskStatus(ctx context.Context, id string, status model.TaskStatus, completedAt *time.Time, reason string) error {
	args := m.Called(ctx, id, status, completedAt, reason)
	return args.Error(0)
}

func (m *MockTaskRepository) RequeueTask(ctx context.Context, id string, notBefore time.Time) error {
	args := m.Called(ctx, id, notBefore)
	return args.Error(0)
}
