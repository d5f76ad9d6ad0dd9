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

type ChallengeOfDay struct {
	Date        string    `db:"date"`
	ChallengeID int       `db:"challenge_id"`
	CreatedAt   time.Time `db:"created_at"`
}

func (c *ChallengeOfDay) toModel() (*model.ChallengeBinding, error) {
	d, err := model.ParseDate(c.Date)
	if err != nil {
		return nil, fmt.Errorf("challenge_of_day has malformed date %q: %w", c.Date, err)
	}
	return &model.ChallengeBinding{
		Date:        d,
		ChallengeID: c.ChallengeID,
		CreatedAt:   c.CreatedAt,
	}, nil
}

type queryer interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

func (r *Repository) getChallengeBinding(ctx context.Context, q queryer, date time.Time) (*model.ChallengeBinding, error) {
	query, args, err := r.sq.
		Select("date", "challenge_id", "created_at").
		From("challenge_of_day").
		Where(squirrel.Eq{"date": model.FormatDate(date)}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var row ChallengeOfDay
	if err := q.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return row.toModel()
}

func (r *Repository) GetChallengeBinding(ctx context.Context, date time.Time) (*model.ChallengeBinding, error) {
	return r.getChallengeBinding(ctx, r.db, date)
}

// BindChallengeIfAbsent inserts the binding for date unless one exists and
// returns whichever binding is committed. The first insert wins.
func (r *Repository) BindChallengeIfAbsent(ctx context.Context, date time.Time, challengeID int, now time.Time) (*model.ChallengeBinding, error) {
	var out *model.ChallengeBinding

	err := r.transact(ctx, func(tx *sqlx.Tx) error {
		query, args, err := r.sq.
			Insert("challenge_of_day").
			SetMap(map[string]interface{}{
				"date":         model.FormatDate(date),
				"challenge_id": challengeID,
				"created_at":   now.UTC(),
			}).
			Suffix("ON CONFLICT (date) DO NOTHING").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build challenge binding insert query: %w", err)
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert challenge binding: %w", err)
		}

		binding, err := r.getChallengeBinding(ctx, tx, date)
		if err != nil {
			return err
		}
		out = binding
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *Repository) ListChallengeBindings(ctx context.Context, from, to time.Time) ([]*model.ChallengeBinding, error) {
	query, args, err := r.sq.
		Select("date", "challenge_id", "created_at").
		From("challenge_of_day").
		Where(squirrel.And{
			squirrel.GtOrEq{"date": model.FormatDate(from)},
			squirrel.LtOrEq{"date": model.FormatDate(to)},
		}).
		OrderBy("date ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []ChallengeOfDay
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list challenge bindings: %w", err)
	}

	out := make([]*model.ChallengeBinding, len(rows))
	for i := range rows {
		b, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		out[i] = b
	}

	return out, nil
}
