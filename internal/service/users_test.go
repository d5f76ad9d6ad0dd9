package service

import (
	"context"
	"testing"
	"time"

	"ecocoach/internal/apperror"
	"ecocoach/internal/model"
	"ecocoach/internal/repository"
	"ecocoach/internal/service/mocks"
	"ecocoach/pkg/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserService_Register(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	repo := &mocks.MockUserRepository{}
	service := NewUserService(repo, clock.NewMock(now))

	repo.On("UpsertUser", mock.Anything, "alice", "alice@example.com", now).
		Return(&model.User{ID: 1, Username: "alice", Email: "alice@example.com"}, nil)

	u, err := service.Register(context.Background(), " alice ", " alice@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)

	_, err = service.Register(context.Background(), "", "")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	repo.AssertExpectations(t)
}

func TestUserService_Stats(t *testing.T) {
	repo := &mocks.MockUserRepository{}
	service := NewUserService(repo, clock.Real{})

	repo.On("GetUserByUsername", mock.Anything, "alice").
		Return(&model.User{Username: "alice", Progress: model.Progress{TotalCarbonSaved: 3, Streak: 2, LongestStreak: 4}}, nil)
	repo.On("GetUserByUsername", mock.Anything, "ghost").
		Return(nil, repository.ErrNotFound)
	repo.On("GetUserByUsername", mock.Anything, "broken").
		Return(nil, assert.AnError)

	u, err := service.Stats(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 4, u.LongestStreak)

	u, err = service.Stats(context.Background(), "  alice\t")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = service.Stats(context.Background(), "   ")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = service.Stats(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, `user "ghost" not found`, err.Error())

	_, err = service.Stats(context.Background(), "broken")
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, apperror.CodeInternal, apperror.Code(err))
}
