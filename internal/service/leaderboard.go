package service

import (
	"context"
	"fmt"

	"ecocoach/internal/apperror"
	"ecocoach/internal/model"
)

type LeaderboardService struct {
	repo UserRepository
}

func NewLeaderboardService(repo UserRepository) *LeaderboardService {
	return &LeaderboardService{
		repo: repo,
	}
}

// Top reads the n best users from the store on every call.
func (s *LeaderboardService) Top(ctx context.Context, n int) ([]model.LeaderboardEntry, error) {
	if n < 1 || n > MaxLeaderboardSize {
		return nil, apperror.InvalidInput(apperror.CodeInvalidLimit, "limit", fmt.Sprintf("limit must be between 1 and %d", MaxLeaderboardSize))
	}

	users, err := s.repo.GetTopUsers(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", err)
	}

	entries := make([]model.LeaderboardEntry, len(users))
	for i, u := range users {
		entries[i] = model.LeaderboardEntry{
			Rank:             i + 1,
			Username:         u.Username,
			TotalCarbonSaved: u.TotalCarbonSaved,
			Streak:           u.Streak,
			LastActivityDate: u.LastActivityDate,
		}
	}

	return entries, nil
}
