package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"ecocoach/internal/apperror"
	"ecocoach/internal/model"
	"ecocoach/internal/repository"
	"ecocoach/pkg/clock"
	"ecocoach/pkg/logger"

	"go.uber.org/zap"
)

const maxDescriptionLength = 500

type LedgerService struct {
	repo     LedgerRepository
	clock    clock.Clock
	loc      *time.Location
	notifier LeaderboardNotifier
}

func NewLedgerService(repo LedgerRepository, clk clock.Clock, loc *time.Location, notifier LeaderboardNotifier) *LedgerService {
	if loc == nil {
		loc = time.UTC
	}
	return &LedgerService{
		repo:     repo,
		clock:    clk,
		loc:      loc,
		notifier: notifier,
	}
}

// LogActivity appends amount to username's ledger and returns the updated
// summary. The activity day is at's calendar day in the service location;
// a nil at means now.
func (s *LedgerService) LogActivity(ctx context.Context, username string, amount float64, description string, at *time.Time) (*model.User, error) {
	username, err := validateUsername(username)
	if err != nil {
		return nil, err
	}

	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, apperror.InvalidInput(apperror.CodeInvalidAmount, "amount", "amount must be a finite number")
	}
	if amount < 0 {
		return nil, apperror.InvalidInput(apperror.CodeInvalidAmount, "amount", "amount must not be negative")
	}
	if amount > MaxActivityAmount {
		return nil, apperror.InvalidInput(apperror.CodeInvalidAmount, "amount", fmt.Sprintf("amount must not exceed %g", MaxActivityAmount))
	}

	description = strings.TrimSpace(description)
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return nil, apperror.InvalidInput(apperror.CodeInvalidInput, "description", "description is too long")
	}

	loggedAt := s.clock.Now()
	if at != nil {
		loggedAt = at.UTC()
	}
	day := model.DateOf(loggedAt, s.loc)

	user, err := s.repo.AppendCarbonLog(ctx, model.LedgerAppend{
		Username:     username,
		Amount:       amount,
		Activity:     description,
		ActivityDate: day,
		LoggedAt:     loggedAt,
	}, func(p model.Progress) model.Progress {
		return p.Apply(amount, day)
	})
	if err != nil {
		if errors.Is(err, repository.ErrTotalOverflow) {
			return nil, apperror.InvalidInput(apperror.CodeInvalidAmount, "amount", "amount would push the total out of range")
		}
		return nil, fmt.Errorf("failed to append carbon log: %w", err)
	}

	logger.Logger().Debug("carbon logged",
		zap.String("username", username),
		zap.Float64("amount", amount),
		zap.String("activity_date", model.FormatDate(day)),
		zap.Int("streak", user.Streak))

	if s.notifier != nil {
		s.notifier.Notify()
	}

	return user, nil
}

// History returns username's ledger entries newest first. A zero limit
// means DefaultHistoryLimit.
func (s *LedgerService) History(ctx context.Context, username string, limit int) ([]model.CarbonLogEntry, error) {
	if limit == 0 {
		limit = DefaultHistoryLimit
	}
	if limit < 1 || limit > MaxHistoryLimit {
		return nil, apperror.InvalidInput(apperror.CodeInvalidLimit, "limit", fmt.Sprintf("limit must be between 1 and %d", MaxHistoryLimit))
	}

	username, err := validateUsername(username)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, userNotFound(username, err)
	}

	entries, err := s.repo.ListCarbonLog(ctx, user.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list carbon log: %w", err)
	}

	return entries, nil
}

// Audit compares the stored summary with one recomputed from the full
// ledger.
func (s *LedgerService) Audit(ctx context.Context, username string) (*model.Audit, error) {
	username, err := validateUsername(username)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, userNotFound(username, err)
	}

	entries, err := s.repo.ListCarbonLog(ctx, user.ID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list carbon log: %w", err)
	}

	derived := model.FoldLedger(entries)
	audit := &model.Audit{
		Username:   user.Username,
		Stored:     user.Progress,
		Derived:    derived,
		Entries:    len(entries),
		Consistent: derived.Matches(user.Progress),
	}

	if !audit.Consistent {
		logger.Logger().Warn("stored progress differs from ledger",
			zap.String("username", user.Username),
			zap.Float64("stored_total", user.TotalCarbonSaved),
			zap.Float64("derived_total", derived.TotalCarbonSaved),
			zap.Int("stored_streak", user.Streak),
			zap.Int("derived_streak", derived.Streak))
	}

	return audit, nil
}

