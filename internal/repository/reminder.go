package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ecocoach/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Reminder struct {
	ID           uuid.UUID  `db:"id"`
	UserID       int64      `db:"user_id"`
	Username     string     `db:"username"`
	Habit        string     `db:"habit"`
	Frequency    string     `db:"frequency"`
	Enabled      bool       `db:"enabled"`
	LastReminded *time.Time `db:"last_reminded"`
	Version      int64      `db:"version"`
	CreatedAt    time.Time  `db:"created_at"`
}

func (r *Reminder) toModel() *model.Reminder {
	return &model.Reminder{
		ID:           r.ID,
		UserID:       r.UserID,
		Username:     r.Username,
		Habit:        r.Habit,
		Frequency:    model.Frequency(r.Frequency),
		Enabled:      r.Enabled,
		LastReminded: r.LastReminded,
		Version:      r.Version,
		CreatedAt:    r.CreatedAt,
	}
}

func (r *Repository) selectReminders() squirrel.SelectBuilder {
	return r.sq.
		Select(
			"rm.id",
			"rm.user_id",
			"u.username",
			"rm.habit",
			"rm.frequency",
			"rm.enabled",
			"rm.last_reminded",
			"rm.version",
			"rm.created_at",
		).
		From("reminders rm").
		Join("users u ON u.id = rm.user_id")
}

func (r *Repository) getReminder(ctx context.Context, q queryer, id uuid.UUID) (*model.Reminder, error) {
	query, args, err := r.selectReminders().
		Where(squirrel.Eq{"rm.id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var row Reminder
	if err := q.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return row.toModel(), nil
}

func (r *Repository) GetReminder(ctx context.Context, id uuid.UUID) (*model.Reminder, error) {
	return r.getReminder(ctx, r.db, id)
}

// CreateReminder stores reminder for username, creating the user if unseen.
// UserID and Username are filled in on success.
func (r *Repository) CreateReminder(ctx context.Context, username string, reminder *model.Reminder) error {
	return r.transact(ctx, func(tx *sqlx.Tx) error {
		if err := r.ensureUserWithTx(ctx, tx, username, reminder.CreatedAt); err != nil {
			return err
		}

		user, err := r.getUserWithTx(ctx, tx, username, false)
		if err != nil {
			return err
		}

		query, args, err := r.sq.
			Insert("reminders").
			SetMap(map[string]interface{}{
				"id":            reminder.ID,
				"user_id":       user.ID,
				"habit":         reminder.Habit,
				"frequency":     string(reminder.Frequency),
				"enabled":       reminder.Enabled,
				"last_reminded": reminder.LastReminded,
				"version":       0,
				"created_at":    reminder.CreatedAt.UTC(),
			}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build reminder insert query: %w", err)
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert reminder: %w", err)
		}

		reminder.UserID = user.ID
		reminder.Username = user.Username
		reminder.Version = 0
		return nil
	})
}

func (r *Repository) ListRemindersByUser(ctx context.Context, username string, onlyEnabled bool) ([]*model.Reminder, error) {
	if _, err := r.GetUserByUsername(ctx, username); err != nil {
		return nil, err
	}

	q := r.selectReminders().
		Where(squirrel.Eq{"u.username": username}).
		OrderBy("rm.created_at ASC", "rm.id ASC")
	if onlyEnabled {
		q = q.Where(squirrel.Eq{"rm.enabled": true})
	}

	return r.listReminders(ctx, q)
}

func (r *Repository) ListEnabledReminders(ctx context.Context) ([]*model.Reminder, error) {
	q := r.selectReminders().
		Where(squirrel.Eq{"rm.enabled": true}).
		OrderBy("rm.created_at ASC", "rm.id ASC")

	return r.listReminders(ctx, q)
}

func (r *Repository) listReminders(ctx context.Context, q squirrel.SelectBuilder) ([]*model.Reminder, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var rows []Reminder
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}

	out := make([]*model.Reminder, len(rows))
	for i := range rows {
		out[i] = rows[i].toModel()
	}

	return out, nil
}

func (r *Repository) SetReminderEnabled(ctx context.Context, id uuid.UUID, enabled bool) (*model.Reminder, error) {
	var out *model.Reminder

	err := r.transact(ctx, func(tx *sqlx.Tx) error {
		query, args, err := r.sq.
			Update("reminders").
			Set("enabled", enabled).
			Set("version", squirrel.Expr("version + 1")).
			Where(squirrel.Eq{"id": id}).
			ToSql()
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrNotFound
		}

		reminder, err := r.getReminder(ctx, tx, id)
		if err != nil {
			return err
		}
		out = reminder
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// MarkReminderFired sets last_reminded if the row is still enabled and at the
// version the caller read. It reports false when another writer got there
// first.
func (r *Repository) MarkReminderFired(ctx context.Context, id uuid.UUID, version int64, at time.Time) (bool, error) {
	query, args, err := r.sq.
		Update("reminders").
		Set("last_reminded", at.UTC()).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{
			"id":      id,
			"version": version,
			"enabled": true,
		}).
		ToSql()
	if err != nil {
		return false, err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to mark reminder fired: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows == 1, nil
}
