package mocks

import (
	"context"
	"time"

	"ecocoach/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockReminderRepository struct {
	mock.Mock
}

func (m *MockReminderRepository) CreateReminder(ctx context.Context, username string, reminder *model.Reminder) error {
	args := m.Called(ctx, username, reminder)
	return args.Error(0)
}

func (m *MockReminderRepository) GetReminder(ctx context.Context, id uuid.UUID) (*model.Reminder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reminder), args.Error(1)
}

func (m *MockReminderRepository) ListRemindersByUser(ctx context.Context, username string, onlyEnabled bool) ([]*model.Reminder, error) {
	args := m.Called(ctx, username, onlyEnabled)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Reminder), args.Error(1)
}

func (m *MockReminderRepository) ListEnabledReminders(ctx context.Context) ([]*model.Reminder, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Reminder), args.Error(1)
}

func (m *MockReminderRepository) SetReminderEnabled(ctx context.Context, id uuid.UUID, enabled bool) (*model.Reminder, error) {
	args := m.Called(ctx, id, enabled)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reminder), args.Error(1)
}

func (m *MockReminderRepository) MarkReminderFired(ctx context.Context, id uuid.UUID, version int64, at time.Time) (bool, error) {
	args := m.Called(ctx, id, version, at)
	return args.Bool(0), args.Error(1)
}
