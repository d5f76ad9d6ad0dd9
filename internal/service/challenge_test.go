package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ecocoach/internal/apperror"
	"ecocoach/internal/catalog"
	"ecocoach/internal/model"
	"ecocoach/internal/repository"
	"ecocoach/internal/service/mocks"
	"ecocoach/pkg/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestChallengeService_Today(t *testing.T) {
	now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		date        *time.Time
		loc         *time.Location
		mockSetup   func(repo *mocks.MockChallengeRepository)
		expectedID  int
		expectedDay string
		expectedErr error
	}{
		{
			name: "Existing binding is returned",
			mockSetup: func(repo *mocks.MockChallengeRepository) {
				repo.On("GetChallengeBinding", mock.Anything, day(t, "2026-10-19")).
					Return(&model.ChallengeBinding{Date: day(t, "2026-10-19"), ChallengeID: 2}, nil)
			},
			expectedID:  2,
			expectedDay: "2026-10-19",
		},
		{
			name: "Missing binding picks by ordinal",
			mockSetup: func(repo *mocks.MockChallengeRepository) {
				repo.On("GetChallengeBinding", mock.Anything, day(t, "2026-10-19")).
					Return(nil, repository.ErrNotFound)
				repo.On("BindChallengeIfAbsent", mock.Anything, day(t, "2026-10-19"), 4, now).
					Return(&model.ChallengeBinding{Date: day(t, "2026-10-19"), ChallengeID: 4}, nil)
			},
			expectedID:  4,
			expectedDay: "2026-10-19",
		},
		{
			name: "Lost race returns the winner",
			mockSetup: func(repo *mocks.MockChallengeRepository) {
				repo.On("GetChallengeBinding", mock.Anything, day(t, "2026-10-19")).
					Return(nil, repository.ErrNotFound)
				repo.On("BindChallengeIfAbsent", mock.Anything, day(t, "2026-10-19"), 4, now).
					Return(&model.ChallengeBinding{Date: day(t, "2026-10-19"), ChallengeID: 1}, nil)
			},
			expectedID:  1,
			expectedDay: "2026-10-19",
		},
		{
			name: "Explicit date",
			date: func() *time.Time { d := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC); return &d }(),
			mockSetup: func(repo *mocks.MockChallengeRepository) {
				repo.On("GetChallengeBinding", mock.Anything, day(t, "2026-10-20")).
					Return(nil, repository.ErrNotFound)
				repo.On("BindChallengeIfAbsent", mock.Anything, day(t, "2026-10-20"), 5, now).
					Return(&model.ChallengeBinding{Date: day(t, "2026-10-20"), ChallengeID: 5}, nil)
			},
			expectedID:  5,
			expectedDay: "2026-10-20",
		},
		{
			name: "Calendar day follows the configured location",
			loc:  time.FixedZone("UTC-12", -12*60*60),
			mockSetup: func(repo *mocks.MockChallengeRepository) {
				repo.On("GetChallengeBinding", mock.Anything, day(t, "2026-10-18")).
					Return(&model.ChallengeBinding{Date: day(t, "2026-10-18"), ChallengeID: 3}, nil)
			},
			expectedID:  3,
			expectedDay: "2026-10-18",
		},
		{
			name: "Bound id missing from catalog",
			mockSetup: func(repo *mocks.MockChallengeRepository) {
				repo.On("GetChallengeBinding", mock.Anything, day(t, "2026-10-19")).
					Return(&model.ChallengeBinding{Date: day(t, "2026-10-19"), ChallengeID: 42}, nil)
			},
			expectedErr: ErrUnknownChallenge,
		},
		{
			name: "Store failure",
			mockSetup: func(repo *mocks.MockChallengeRepository) {
				repo.On("GetChallengeBinding", mock.Anything, day(t, "2026-10-19")).
					Return(nil, assert.AnError)
			},
			expectedErr: assert.AnError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockChallengeRepository{}
			tt.mockSetup(repo)

			service := NewChallengeService(repo, catalog.Default(), clock.NewMock(now), tt.loc, nil)

			got, err := service.Today(context.Background(), tt.date)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				repo.AssertExpectations(t)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedID, got.Challenge.ID)
			assert.Equal(t, tt.expectedDay, model.FormatDate(got.Date))
			repo.AssertExpectations(t)
		})
	}
}

func TestChallengeService_Today_Deterministic(t *testing.T) {
	repo := &mocks.MockChallengeRepository{}
	binding := &model.ChallengeBinding{Date: day(t, "2026-10-19"), ChallengeID: 4}

	repo.On("GetChallengeBinding", mock.Anything, day(t, "2026-10-19")).
		Return(nil, repository.ErrNotFound).Once()
	repo.On("BindChallengeIfAbsent", mock.Anything, day(t, "2026-10-19"), 4, mock.Anything).
		Return(binding, nil).Once()
	repo.On("GetChallengeBinding", mock.Anything, day(t, "2026-10-19")).
		Return(binding, nil)

	clk := clock.NewMock(time.Date(2026, 10, 19, 0, 0, 1, 0, time.UTC))
	service := NewChallengeService(repo, catalog.Default(), clk, time.UTC, nil)

	first, err := service.Today(context.Background(), nil)
	require.NoError(t, err)

	clk.Advance(23 * time.Hour)
	second, err := service.Today(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	repo.AssertExpectations(t)
}

func TestChallengeService_Today_CatalogReordered(t *testing.T) {
	repo, err := repository.New(repository.Config{Driver: repository.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	ctx := context.Background()
	clk := clock.NewMock(time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC))

	before, err := NewChallengeService(repo, catalog.Default(), clk, time.UTC, nil).Today(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 4, before.Challenge.ID)

	entries := catalog.Default().Entries()
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	reordered, err := catalog.New(entries)
	require.NoError(t, err)
	require.NotEqual(t, 4, reordered.Select(day(t, "2026-10-19")).ID)

	service := NewChallengeService(repo, reordered, clk, time.UTC, nil)

	after, err := service.Today(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, before.Challenge, after.Challenge)
	assert.Equal(t, "2026-10-19", model.FormatDate(after.Date))

	next := day(t, "2026-10-20")
	fresh, err := service.Today(ctx, &next)
	require.NoError(t, err)
	assert.Equal(t, reordered.Select(next).ID, fresh.Challenge.ID)
}

func TestChallengeService_Complete(t *testing.T) {
	now := time.Date(2026, 10, 19, 18, 30, 0, 0, time.UTC)
	today := day(t, "2026-10-19")

	tests := []struct {
		name        string
		username    string
		mockSetup   func(repo *mocks.MockChallengeRepository, notifier *mocks.MockLeaderboardNotifier)
		expectedErr error
		expectCode  string
		check       func(t *testing.T, c *model.Completion)
	}{
		{
			name:     "Credits challenge points",
			username: "alice",
			mockSetup: func(repo *mocks.MockChallengeRepository, notifier *mocks.MockLeaderboardNotifier) {
				repo.On("GetChallengeBinding", mock.Anything, today).
					Return(&model.ChallengeBinding{Date: today, ChallengeID: 2}, nil)
				repo.On("AppendCarbonLog", mock.Anything, mock.MatchedBy(func(in model.LedgerAppend) bool {
					return in.Username == "alice" &&
						in.Amount == 10 &&
						in.Activity == "Challenge: Plant a Tree" &&
						in.ActivityDate.Equal(today) &&
						in.ChallengeID != nil && *in.ChallengeID == 2
				}), mock.Anything).
					Run(func(args mock.Arguments) {
						apply := args.Get(2).(repository.ProgressFunc)
						p := apply(model.Progress{})
						assert.Equal(t, 1, p.Streak)
						assert.Equal(t, 10.0, p.TotalCarbonSaved)
					}).
					Return(&model.User{Username: "alice", Progress: model.Progress{TotalCarbonSaved: 10, Streak: 1}}, nil)
				notifier.On("Notify").Return().Once()
			},
			check: func(t *testing.T, c *model.Completion) {
				assert.Equal(t, "alice", c.Username)
				assert.Equal(t, 2, c.Challenge.ID)
				assert.Equal(t, 10.0, c.Progress.TotalCarbonSaved)
				assert.Equal(t, 1, c.Progress.Streak)
			},
		},
		{
			name:     "Second completion conflicts",
			username: "alice",
			mockSetup: func(repo *mocks.MockChallengeRepository, notifier *mocks.MockLeaderboardNotifier) {
				repo.On("GetChallengeBinding", mock.Anything, today).
					Return(&model.ChallengeBinding{Date: today, ChallengeID: 2}, nil)
				repo.On("AppendCarbonLog", mock.Anything, mock.Anything, mock.Anything).
					Return(nil, repository.ErrAlreadyCompleted)
			},
			expectedErr: apperror.ErrConflict,
			expectCode:  apperror.CodeAlreadyCompleted,
		},
		{
			name:     "Empty username",
			username: "  ",
			mockSetup: func(repo *mocks.MockChallengeRepository, notifier *mocks.MockLeaderboardNotifier) {
			},
			expectedErr: apperror.ErrInvalidInput,
			expectCode:  apperror.CodeInvalidInput,
		},
		{
			name:     "Store failure",
			username: "alice",
			mockSetup: func(repo *mocks.MockChallengeRepository, notifier *mocks.MockLeaderboardNotifier) {
				repo.On("GetChallengeBinding", mock.Anything, today).
					Return(&model.ChallengeBinding{Date: today, ChallengeID: 2}, nil)
				repo.On("AppendCarbonLog", mock.Anything, mock.Anything, mock.Anything).
					Return(nil, assert.AnError)
			},
			expectedErr: assert.AnError,
			expectCode:  apperror.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockChallengeRepository{}
			notifier := &mocks.MockLeaderboardNotifier{}
			tt.mockSetup(repo, notifier)

			service := NewChallengeService(repo, catalog.Default(), clock.NewMock(now), time.UTC, notifier)

			got, err := service.Complete(context.Background(), tt.username)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Equal(t, tt.expectCode, apperror.Code(err))
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				tt.check(t, got)
			}

			repo.AssertExpectations(t)
			notifier.AssertExpectations(t)
		})
	}
}

func TestChallengeService_ChallengeHistory(t *testing.T) {
	clk := clock.NewMock(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC))

	t.Run("Resolves bindings", func(t *testing.T) {
		repo := &mocks.MockChallengeRepository{}
		repo.On("ListChallengeBindings", mock.Anything, day(t, "2026-10-01"), day(t, "2026-10-02")).
			Return([]*model.ChallengeBinding{
				{Date: day(t, "2026-10-01"), ChallengeID: 1},
				{Date: day(t, "2026-10-02"), ChallengeID: 3},
			}, nil)

		service := NewChallengeService(repo, catalog.Default(), clk, time.UTC, nil)
		got, err := service.ChallengeHistory(context.Background(), day(t, "2026-10-01"), day(t, "2026-10-02"))
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Use Public Transport", got[0].Challenge.Title)
		assert.Equal(t, "Reduce Meat", got[1].Challenge.Title)
		repo.AssertExpectations(t)
	})

	t.Run("Rejects reversed range", func(t *testing.T) {
		service := NewChallengeService(&mocks.MockChallengeRepository{}, catalog.Default(), clk, time.UTC, nil)
		_, err := service.ChallengeHistory(context.Background(), day(t, "2026-10-02"), day(t, "2026-10-01"))
		assert.Equal(t, apperror.CodeInvalidDate, apperror.Code(err))
	})

	t.Run("Rejects ranges over a year", func(t *testing.T) {
		service := NewChallengeService(&mocks.MockChallengeRepository{}, catalog.Default(), clk, time.UTC, nil)
		_, err := service.ChallengeHistory(context.Background(), day(t, "2025-01-01"), day(t, "2026-01-02"))
		assert.True(t, errors.Is(err, apperror.ErrInvalidInput))
	})
}
