package service

import (
	"context"
	"fmt"
	"strings"

	"ecocoach/internal/model"
	"ecocoach/pkg/clock"
)

type UserService struct {
	repo  UserRepository
	clock clock.Clock
}

func NewUserService(repo UserRepository, clk clock.Clock) *UserService {
	return &UserService{
		repo:  repo,
		clock: clk,
	}
}

// Register creates username if it is new. A non-empty email replaces the
// stored one.
func (s *UserService) Register(ctx context.Context, username, email string) (*model.User, error) {
	username, err := validateUsername(username)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.UpsertUser(ctx, username, strings.TrimSpace(email), s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

func (s *UserService) Stats(ctx context.Context, username string) (*model.User, error) {
	username, err := validateUsername(username)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, userNotFound(username, err)
	}
	return user, nil
}
