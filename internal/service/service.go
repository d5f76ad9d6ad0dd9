package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"ecocoach/internal/apperror"
	"ecocoach/internal/model"
	"ecocoach/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrUnknownChallenge = errors.New("bound challenge is not in the catalog")
)

const (
	DefaultLeaderboardSize = 10
	MaxLeaderboardSize     = 100

	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500

	MaxHabitLength    = 200
	MaxUsernameLength = 64

	// MaxActivityAmount caps a single ledger entry in kg of CO2.
	MaxActivityAmount = 1e6

	MaxHistoryDays = 366
)

type Service struct {
	*ChallengeService
	*LedgerService
	*LeaderboardService
	*UserService
	*ReminderService
}

func NewService(
	challengeService *ChallengeService,
	ledgerService *LedgerService,
	leaderboardService *LeaderboardService,
	userService *UserService,
	reminderService *ReminderService,
) *Service {
	return &Service{
		ChallengeService:   challengeService,
		LedgerService:      ledgerService,
		LeaderboardService: leaderboardService,
		UserService:        userService,
		ReminderService:    reminderService,
	}
}

type ChallengeServiceI interface {
	Today(ctx context.Context, date *time.Time) (*model.ChallengeOfDay, error)
	Complete(ctx context.Context, username string) (*model.Completion, error)
	ChallengeHistory(ctx context.Context, from, to time.Time) ([]*model.ChallengeOfDay, error)
}

type LedgerServiceI interface {
	LogActivity(ctx context.Context, username string, amount float64, description string, at *time.Time) (*model.User, error)
	History(ctx context.Context, username string, limit int) ([]model.CarbonLogEntry, error)
	Audit(ctx context.Context, username string) (*model.Audit, error)
}

type LeaderboardServiceI interface {
	Top(ctx context.Context, n int) ([]model.LeaderboardEntry, error)
}

type UserServiceI interface {
	Register(ctx context.Context, username, email string) (*model.User, error)
	Stats(ctx context.Context, username string) (*model.User, error)
}

type ReminderServiceI interface {
	Create(ctx context.Context, username, habit, frequency string) (*model.Reminder, error)
	List(ctx context.Context, username string, onlyEnabled bool) ([]*model.Reminder, error)
	Toggle(ctx context.Context, id string, enabled bool) (*model.Reminder, error)
	Status(ctx context.Context, id string) (*model.ReminderStatus, error)
	Fire(ctx context.Context, id string) (*model.Reminder, bool, error)
	Due(ctx context.Context) ([]*model.Reminder, error)
}

// LeaderboardNotifier is told after every committed change to user totals.
type LeaderboardNotifier interface {
	Notify()
}

type LedgerAppender interface {
	AppendCarbonLog(ctx context.Context, in model.LedgerAppend, apply repository.ProgressFunc) (*model.User, error)
}

type ChallengeRepository interface {
	LedgerAppender
	GetChallengeBinding(ctx context.Context, date time.Time) (*model.ChallengeBinding, error)
	BindChallengeIfAbsent(ctx context.Context, date time.Time, challengeID int, now time.Time) (*model.ChallengeBinding, error)
	ListChallengeBindings(ctx context.Context, from, to time.Time) ([]*model.ChallengeBinding, error)
}

type LedgerRepository interface {
	LedgerAppender
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	ListCarbonLog(ctx context.Context, userID int64, limit int) ([]model.CarbonLogEntry, error)
}

type UserRepository interface {
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	UpsertUser(ctx context.Context, username, email string, now time.Time) (*model.User, error)
	GetTopUsers(ctx context.Context, limit int) ([]*model.User, error)
}

type ReminderRepository interface {
	CreateReminder(ctx context.Context, username string, reminder *model.Reminder) error
	GetReminder(ctx context.Context, id uuid.UUID) (*model.Reminder, error)
	ListRemindersByUser(ctx context.Context, username string, onlyEnabled bool) ([]*model.Reminder, error)
	ListEnabledReminders(ctx context.Context) ([]*model.Reminder, error)
	SetReminderEnabled(ctx context.Context, id uuid.UUID, enabled bool) (*model.Reminder, error)
	MarkReminderFired(ctx context.Context, id uuid.UUID, version int64, at time.Time) (bool, error)
}

// validateUsername normalizes username for both lookups and writes.
func validateUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", apperror.InvalidInput(apperror.CodeInvalidInput, "username", "username is required")
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return "", apperror.InvalidInput(apperror.CodeInvalidInput, "username", "username is too long")
	}
	return username, nil
}

func userNotFound(username string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound("user", username)
	}
	return err
}
