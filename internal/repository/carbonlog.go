package repository

import (
	"context"
	"fmt"
	"time"

	"ecocoach/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// ProgressFunc computes a user's new summary from the locked current one.
type ProgressFunc func(current model.Progress) model.Progress

type CarbonLog struct {
	ID           int64     `db:"id"`
	UserID       int64     `db:"user_id"`
	Amount       float64   `db:"amount"`
	Activity     string    `db:"activity"`
	ActivityDate string    `db:"activity_date"`
	LoggedAt     time.Time `db:"logged_at"`
}

func (c *CarbonLog) toModel() (model.CarbonLogEntry, error) {
	d, err := model.ParseDate(c.ActivityDate)
	if err != nil {
		return model.CarbonLogEntry{}, fmt.Errorf("carbon log %d has malformed activity_date: %w", c.ID, err)
	}

	return model.CarbonLogEntry{
		ID:           c.ID,
		UserID:       c.UserID,
		Amount:       c.Amount,
		Activity:     c.Activity,
		ActivityDate: d,
		LoggedAt:     c.LoggedAt,
	}, nil
}

// AppendCarbonLog appends one ledger entry and stores the summary returned by
// apply, all in one transaction holding the user's row lock. A summary whose
// total is not finite rolls everything back with ErrTotalOverflow. With a
// ChallengeID the append also records the day's completion and fails with
// ErrAlreadyCompleted when one exists.
func (r *Repository) AppendCarbonLog(ctx context.Context, in model.LedgerAppend, apply ProgressFunc) (*model.User, error) {
	var out *model.User

	err := r.transact(ctx, func(tx *sqlx.Tx) error {
		if err := r.ensureUserWithTx(ctx, tx, in.Username, in.LoggedAt); err != nil {
			return err
		}

		user, err := r.getUserWithTx(ctx, tx, in.Username, true)
		if err != nil {
			return err
		}

		if in.ChallengeID != nil {
			if err := r.insertCompletionWithTx(ctx, tx, user.ID, *in.ChallengeID, in.ActivityDate, in.LoggedAt); err != nil {
				return err
			}
		}

		query, args, err := r.sq.
			Insert("carbon_log").
			SetMap(map[string]interface{}{
				"user_id":       user.ID,
				"amount":        in.Amount,
				"activity":      in.Activity,
				"activity_date": model.FormatDate(in.ActivityDate),
				"logged_at":     in.LoggedAt.UTC(),
			}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build carbon log insert query: %w", err)
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert carbon log: %w", err)
		}

		next := apply(user.Progress)
		if !next.Finite() {
			return ErrTotalOverflow
		}
		user.Progress = next

		if err := r.updateProgressWithTx(ctx, tx, user.ID, user.Progress); err != nil {
			return err
		}

		out = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *Repository) insertCompletionWithTx(ctx context.Context, tx *sqlx.Tx, userID int64, challengeID int, date, at time.Time) error {
	query, args, err := r.sq.
		Insert("user_challenges").
		SetMap(map[string]interface{}{
			"user_id":      userID,
			"date":         model.FormatDate(date),
			"challenge_id": challengeID,
			"completed_at": at.UTC(),
		}).
		Suffix("ON CONFLICT (user_id, date) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build completion insert query: %w", err)
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert completion: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrAlreadyCompleted
	}

	return nil
}

// ListCarbonLog returns a user's entries newest first. A limit of zero
// returns the whole ledger oldest first, which is the order FoldLedger needs.
func (r *Repository) ListCarbonLog(ctx context.Context, userID int64, limit int) ([]model.CarbonLogEntry, error) {
	q := r.sq.
		Select("id", "user_id", "amount", "activity", "activity_date", "logged_at").
		From("carbon_log").
		Where(squirrel.Eq{"user_id": userID})

	if limit > 0 {
		q = q.OrderBy("id DESC").Limit(uint64(limit))
	} else {
		q = q.OrderBy("id ASC")
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var rows []CarbonLog
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list carbon log: %w", err)
	}

	entries := make([]model.CarbonLogEntry, len(rows))
	for i := range rows {
		e, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		entries[i] = e
	}

	return entries, nil
}
