package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"ecocoach/internal/apperror"
	"ecocoach/internal/model"
	"ecocoach/internal/repository"
	"ecocoach/pkg/clock"
	"ecocoach/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReminderService struct {
	repo  ReminderRepository
	clock clock.Clock
}

func NewReminderService(repo ReminderRepository, clk clock.Clock) *ReminderService {
	return &ReminderService{
		repo:  repo,
		clock: clk,
	}
}

func (s *ReminderService) Create(ctx context.Context, username, habit, frequency string) (*model.Reminder, error) {
	username, err := validateUsername(username)
	if err != nil {
		return nil, err
	}

	habit = strings.TrimSpace(habit)
	if habit == "" {
		return nil, apperror.InvalidInput(apperror.CodeInvalidInput, "habit", "habit is required")
	}
	if utf8.RuneCountInString(habit) > MaxHabitLength {
		return nil, apperror.InvalidInput(apperror.CodeInvalidInput, "habit", fmt.Sprintf("habit must be at most %d characters", MaxHabitLength))
	}

	freq, err := model.ParseFrequency(frequency)
	if err != nil {
		return nil, apperror.InvalidInput(apperror.CodeInvalidFrequency, "frequency", fmt.Sprintf("frequency %q is not one of hourly, daily, weekly", frequency))
	}

	reminder := &model.Reminder{
		ID:        uuid.New(),
		Habit:     habit,
		Frequency: freq,
		Enabled:   true,
		CreatedAt: s.clock.Now(),
	}

	if err := s.repo.CreateReminder(ctx, username, reminder); err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}

	return reminder, nil
}

func (s *ReminderService) List(ctx context.Context, username string, onlyEnabled bool) ([]*model.Reminder, error) {
	username, err := validateUsername(username)
	if err != nil {
		return nil, err
	}

	reminders, err := s.repo.ListRemindersByUser(ctx, username, onlyEnabled)
	if err != nil {
		return nil, userNotFound(username, err)
	}
	return reminders, nil
}

func (s *ReminderService) Toggle(ctx context.Context, id string, enabled bool) (*model.Reminder, error) {
	reminderID, err := parseReminderID(id)
	if err != nil {
		return nil, err
	}

	reminder, err := s.repo.SetReminderEnabled(ctx, reminderID, enabled)
	if err != nil {
		return nil, reminderNotFound(id, err)
	}
	return reminder, nil
}

func (s *ReminderService) Status(ctx context.Context, id string) (*model.ReminderStatus, error) {
	reminder, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	return &model.ReminderStatus{
		Reminder:  reminder,
		Due:       reminder.IsDue(s.clock.Now()),
		NextDueAt: reminder.NextDueAt(),
	}, nil
}

// Fire marks the reminder as sent if it is due now. It reports false when
// the reminder is not due or a concurrent Fire won.
func (s *ReminderService) Fire(ctx context.Context, id string) (*model.Reminder, bool, error) {
	reminder, err := s.get(ctx, id)
	if err != nil {
		return nil, false, err
	}

	now := s.clock.Now()
	if !reminder.IsDue(now) {
		return reminder, false, nil
	}

	fired, err := s.repo.MarkReminderFired(ctx, reminder.ID, reminder.Version, now)
	if err != nil {
		return nil, false, fmt.Errorf("failed to fire reminder: %w", err)
	}

	if !fired {
		logger.Logger().Debug("reminder fire lost race", zap.String("reminder_id", id))

		current, err := s.get(ctx, id)
		if err != nil {
			return nil, false, err
		}
		return current, false, nil
	}

	reminder.LastReminded = &now
	reminder.Version++

	return reminder, true, nil
}

// Due lists every reminder due now.
func (s *ReminderService) Due(ctx context.Context) ([]*model.Reminder, error) {
	reminders, err := s.repo.ListEnabledReminders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}

	now := s.clock.Now()
	due := make([]*model.Reminder, 0, len(reminders))
	for _, r := range reminders {
		if r.IsDue(now) {
			due = append(due, r)
		}
	}

	return due, nil
}

func (s *ReminderService) get(ctx context.Context, id string) (*model.Reminder, error) {
	reminderID, err := parseReminderID(id)
	if err != nil {
		return nil, err
	}

	reminder, err := s.repo.GetReminder(ctx, reminderID)
	if err != nil {
		return nil, reminderNotFound(id, err)
	}
	return reminder, nil
}

// Malformed ids cannot name a stored reminder.
func parseReminderID(id string) (uuid.UUID, error) {
	reminderID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, apperror.NotFound("reminder", id)
	}
	return reminderID, nil
}

func reminderNotFound(id string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound("reminder", id)
	}
	return err
}
