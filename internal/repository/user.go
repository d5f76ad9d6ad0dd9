package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ecocoach/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type User struct {
	ID               int64          `db:"id"`
	Username         string         `db:"username"`
	Email            string         `db:"email"`
	TotalCarbonSaved float64        `db:"total_carbon_saved"`
	Streak           int            `db:"streak"`
	LongestStreak    int            `db:"longest_streak"`
	LastActivityDate sql.NullString `db:"last_activity_date"`
	CreatedAt        time.Time      `db:"created_at"`
}

var userColumns = []string{
	"id",
	"username",
	"email",
	"total_carbon_saved",
	"streak",
	"longest_streak",
	"last_activity_date",
	"created_at",
}

func (u *User) toModel() (*model.User, error) {
	out := &model.User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		Progress: model.Progress{
			TotalCarbonSaved: u.TotalCarbonSaved,
			Streak:           u.Streak,
			LongestStreak:    u.LongestStreak,
		},
	}

	if u.LastActivityDate.Valid {
		d, err := model.ParseDate(u.LastActivityDate.String)
		if err != nil {
			return nil, fmt.Errorf("user %d has malformed last_activity_date: %w", u.ID, err)
		}
		out.LastActivityDate = &d
	}

	return out, nil
}

func nullDate(d *time.Time) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: model.FormatDate(*d), Valid: true}
}

// ensureUserWithTx creates the user row if it is missing. Concurrent callers
// for the same username converge on one row.
func (r *Repository) ensureUserWithTx(ctx context.Context, tx *sqlx.Tx, username string, now time.Time) error {
	query, args, err := r.sq.
		Insert("users").
		SetMap(map[string]interface{}{
			"username":   username,
			"email":      "",
			"created_at": now.UTC(),
		}).
		Suffix("ON CONFLICT (username) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build user insert query: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

func (r *Repository) getUserWithTx(ctx context.Context, tx *sqlx.Tx, username string, lock bool) (*model.User, error) {
	q := r.sq.
		Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"username": username})
	if lock {
		q = r.forUpdate(q)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var user User
	err = tx.GetContext(ctx, &user, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return user.toModel()
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	query, args, err := r.sq.
		Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"username": username}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var user User
	err = r.db.GetContext(ctx, &user, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return user.toModel()
}

// UpsertUser creates the user if needed and sets a non-empty email.
func (r *Repository) UpsertUser(ctx context.Context, username, email string, now time.Time) (*model.User, error) {
	var out *model.User

	err := r.transact(ctx, func(tx *sqlx.Tx) error {
		if err := r.ensureUserWithTx(ctx, tx, username, now); err != nil {
			return err
		}

		if email != "" {
			query, args, err := r.sq.
				Update("users").
				Set("email", email).
				Where(squirrel.Eq{"username": username}).
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build email update query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("failed to update email: %w", err)
			}
		}

		user, err := r.getUserWithTx(ctx, tx, username, false)
		if err != nil {
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

func (r *Repository) updateProgressWithTx(ctx context.Context, tx *sqlx.Tx, userID int64, p model.Progress) error {
	query, args, err := r.sq.
		Update("users").
		SetMap(map[string]interface{}{
			"total_carbon_saved": p.TotalCarbonSaved,
			"streak":             p.Streak,
			"longest_streak":     p.LongestStreak,
			"last_activity_date": nullDate(p.LastActivityDate),
		}).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build progress update query: %w", err)
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// GetTopUsers ranks by total descending, then earliest last activity, then
// username. Users who never logged sort after active users with equal totals.
func (r *Repository) GetTopUsers(ctx context.Context, limit int) ([]*model.User, error) {
	query, args, err := r.sq.
		Select(userColumns...).
		From("users").
		OrderBy(
			"total_carbon_saved DESC",
			"CASE WHEN last_activity_date IS NULL THEN 1 ELSE 0 END",
			"last_activity_date ASC",
			"username ASC",
		).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", err)
	}

	userList := make([]*model.User, len(users))
	for i := range users {
		u, err := users[i].toModel()
		if err != nil {
			return nil, err
		}
		userList[i] = u
	}

	return userList, nil
}
