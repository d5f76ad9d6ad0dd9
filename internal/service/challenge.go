package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecocoach/internal/apperror"
	"ecocoach/internal/catalog"
	"ecocoach/internal/model"
	"ecocoach/internal/repository"
	"ecocoach/pkg/clock"
)

type ChallengeService struct {
	repo     ChallengeRepository
	catalog  *catalog.Catalog
	clock    clock.Clock
	loc      *time.Location
	notifier LeaderboardNotifier
}

func NewChallengeService(
	repo ChallengeRepository,
	cat *catalog.Catalog,
	clk clock.Clock,
	loc *time.Location,
	notifier LeaderboardNotifier,
) *ChallengeService {
	if loc == nil {
		loc = time.UTC
	}
	return &ChallengeService{
		repo:     repo,
		catalog:  cat,
		clock:    clk,
		loc:      loc,
		notifier: notifier,
	}
}

// Today returns the challenge bound to date, binding one if the date has
// none yet. A nil date means the current day in the service location.
func (s *ChallengeService) Today(ctx context.Context, date *time.Time) (*model.ChallengeOfDay, error) {
	day := model.DateOf(s.clock.Now(), s.loc)
	if date != nil {
		day = model.DateOf(*date, time.UTC)
	}

	binding, err := s.bind(ctx, day)
	if err != nil {
		return nil, err
	}

	return s.resolve(binding)
}

func (s *ChallengeService) bind(ctx context.Context, day time.Time) (*model.ChallengeBinding, error) {
	binding, err := s.repo.GetChallengeBinding(ctx, day)
	if err == nil {
		return binding, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to get challenge binding: %w", err)
	}

	pick := s.catalog.Select(day)
	binding, err = s.repo.BindChallengeIfAbsent(ctx, day, pick.ID, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to bind challenge: %w", err)
	}

	return binding, nil
}

func (s *ChallengeService) resolve(binding *model.ChallengeBinding) (*model.ChallengeOfDay, error) {
	challenge, ok := s.catalog.ByID(binding.ChallengeID)
	if !ok {
		return nil, fmt.Errorf("%w: id %d on %s", ErrUnknownChallenge, binding.ChallengeID, model.FormatDate(binding.Date))
	}

	return &model.ChallengeOfDay{
		Date:      binding.Date,
		Challenge: challenge,
	}, nil
}

// Complete credits username with today's challenge points. Each user can
// complete one challenge per day.
func (s *ChallengeService) Complete(ctx context.Context, username string) (*model.Completion, error) {
	username, err := validateUsername(username)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	day := model.DateOf(now, s.loc)

	today, err := s.Today(ctx, &day)
	if err != nil {
		return nil, err
	}

	amount := float64(today.Challenge.Points)
	challengeID := today.Challenge.ID

	user, err := s.repo.AppendCarbonLog(ctx, model.LedgerAppend{
		Username:     username,
		Amount:       amount,
		Activity:     "Challenge: " + today.Challenge.Title,
		ActivityDate: today.Date,
		LoggedAt:     now,
		ChallengeID:  &challengeID,
	}, func(p model.Progress) model.Progress {
		return p.Apply(amount, today.Date)
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyCompleted) {
			return nil, apperror.Conflict(apperror.CodeAlreadyCompleted, "today's challenge is already completed")
		}
		return nil, fmt.Errorf("failed to complete challenge: %w", err)
	}

	if s.notifier != nil {
		s.notifier.Notify()
	}

	return &model.Completion{
		Username:  user.Username,
		Date:      today.Date,
		Challenge: today.Challenge,
		Progress:  user.Progress,
	}, nil
}

// ChallengeHistory lists the bound challenges between from and to inclusive.
func (s *ChallengeService) ChallengeHistory(ctx context.Context, from, to time.Time) ([]*model.ChallengeOfDay, error) {
	from = model.DateOf(from, time.UTC)
	to = model.DateOf(to, time.UTC)

	span := model.DaysBetween(from, to)
	if span < 0 {
		return nil, apperror.InvalidInput(apperror.CodeInvalidDate, "from", "from must not be after to")
	}
	if span >= MaxHistoryDays {
		return nil, apperror.InvalidInput(apperror.CodeInvalidDate, "to", fmt.Sprintf("range must not exceed %d days", MaxHistoryDays))
	}

	bindings, err := s.repo.ListChallengeBindings(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenge bindings: %w", err)
	}

	out := make([]*model.ChallengeOfDay, 0, len(bindings))
	for _, b := range bindings {
		c, err := s.resolve(b)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	return out, nil
}
