package repository

import (
	"context"
	"fmt"
	"time"

	"ecocoach/pkg/logger"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyCompleted = errors.New("challenge already completed")
	ErrTotalOverflow    = errors.New("carbon total out of range")
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	maxTxAttempts = 5
	retryBackoff  = 10 * time.Millisecond
)

type Repository struct {
	db     *sqlx.DB
	driver string
	sq     squirrel.StatementBuilderType
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) Transaction(ctx context.Context, t func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	err = t(tx)
	if err != nil {
		txErr := tx.Rollback()
		if txErr != nil {
			return errors.Wrapf(err, "rollback error: %v", txErr)
		}
		return err
	}
	return tx.Commit()
}

// transact runs t in a transaction, retrying when the store reports a
// serialization failure, deadlock or busy database.
func (r *Repository) transact(ctx context.Context, t func(tx *sqlx.Tx) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = r.Transaction(ctx, t)
		if err == nil || !isRetryable(err) {
			return err
		}

		logger.Logger().Debug("retrying transaction after conflict",
			zap.Int("attempt", attempt),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}
	return err
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return true
		}
		return false
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return true
		}
	}

	return false
}

// forUpdate locks the selected rows on Postgres. SQLite already serializes
// writers.
func (r *Repository) forUpdate(q squirrel.SelectBuilder) squirrel.SelectBuilder {
	if r.driver == DriverPostgres {
		return q.Suffix("FOR UPDATE")
	}
	return q
}

type Config struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	Path     string `mapstructure:"path"`
}

func New(cfg Config) (*Repository, error) {
	var (
		db  *sqlx.DB
		err error
	)

	driver := cfg.Driver
	if driver == "" {
		driver = DriverPostgres
	}

	switch driver {
	case DriverPostgres:
		db, err = sqlx.Connect("pgx", cfg.GetDatabaseURL())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
	case DriverSQLite:
		db, err = sqlx.Connect("sqlite", cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		// One connection keeps ":memory:" databases alive and serializes
		// writers.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	r := &Repository{
		db:     db,
		driver: driver,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(placeholderFor(driver)),
	}

	if err := r.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Logger().Info("Connected to database successfully", zap.String("driver", driver))

	return r, nil
}

func placeholderFor(driver string) squirrel.PlaceholderFormat {
	if driver == DriverPostgres {
		return squirrel.Dollar
	}
	return squirrel.Question
}

func (c *Config) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
	)
}
