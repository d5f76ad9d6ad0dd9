package mocks

import (
	"context"

	"ecocoach/internal/model"
	"ecocoach/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) AppendCarbonLog(ctx context.Context, in model.LedgerAppend, apply repository.ProgressFunc) (*model.User, error) {
	args := m.Called(ctx, in, apply)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockLedgerRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockLedgerRepository) ListCarbonLog(ctx context.Context, userID int64, limit int) ([]model.CarbonLogEntry, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CarbonLogEntry), args.Error(1)
}

type MockLeaderboardNotifier struct {
	mock.Mock
}

func (m *MockLeaderboardNotifier) Notify() {
	m.Called()
}
