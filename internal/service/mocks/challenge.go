package mocks

import (
	"context"
	"time"

	"ecocoach/internal/model"
	"ecocoach/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockChallengeRepository struct {
	mock.Mock
}

func (m *MockChallengeRepository) AppendCarbonLog(ctx context.Context, in model.LedgerAppend, apply repository.ProgressFunc) (*model.User, error) {
	args := m.Called(ctx, in, apply)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockChallengeRepository) GetChallengeBinding(ctx context.Context, date time.Time) (*model.ChallengeBinding, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ChallengeBinding), args.Error(1)
}

func (m *MockChallengeRepository) BindChallengeIfAbsent(ctx context.Context, date time.Time, challengeID int, now time.Time) (*model.ChallengeBinding, error) {
	args := m.Called(ctx, date, challengeID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ChallengeBinding), args.Error(1)
}

func (m *MockChallengeRepository) ListChallengeBindings(ctx context.Context, from, to time.Time) ([]*model.ChallengeBinding, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ChallengeBinding), args.Error(1)
}
