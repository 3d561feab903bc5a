package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"expensetracker/internal/core"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// SQLRepository implements Store on database/sql.
type SQLRepository struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

var _ Store = (*SQLRepository)(nil)

// Option customises a SQLRepository.
type Option func(*SQLRepository)

// WithClock overrides the clock used to stamp creation dates.
func WithClock(now func() time.Time) Option {
	return func(r *SQLRepository) { r.now = now }
}

// Open connects to databaseURL, applies pending migrations and returns a
// ready repository.
func Open(ctx context.Context, databaseURL string, opts ...Option) (*SQLRepository, error) {
	d, err := ParseDatabaseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	if d.Name == DialectSQLite {
		if err := os.MkdirAll(filepath.Dir(d.DSN), 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := openDB(ctx, d)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(d); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLRepository{db: db, dialect: d, now: time.Now}
	for _, opt := range opts {
		opt(repo)
	}
	return repo, nil
}

// NewSQLiteRepository opens a SQLite database file.
func NewSQLiteRepository(ctx context.Context, dbPath string, opts ...Option) (*SQLRepository, error) {
	return Open(ctx, "sqlite://"+dbPath, opts...)
}

func openDB(ctx context.Context, d Dialect) (*sql.DB, error) {
	db, err := sql.Open(d.Driver, d.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", d.Name, err)
	}

	if d.Name == DialectSQLite {
		// One writer at a time; WAL lets readers proceed concurrently.
		db.SetMaxOpenConns(1)
		for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				db.Close()
				return nil, fmt.Errorf("%s: %w", pragma, err)
			}
		}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

func (r *SQLRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Dialect reports which database the repository talks to.
func (r *SQLRepository) Dialect() Dialect {
	return r.dialect
}

func (r *SQLRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return storageErr("ping", err)
	}
	return nil
}

func (r *SQLRepository) ListAll(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+expenseColumns+" FROM expenses ORDER BY id")
	if err != nil {
		return nil, storageErr("list expenses", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, storageErr("scan expense", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list expenses", err)
	}
	return out, nil
}

func (r *SQLRepository) Get(ctx context.Context, id int64) (core.Expense, bool, error) {
	e, err := r.get(ctx, r.db, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, false, nil
	}
	if err != nil {
		return core.Expense{}, false, storageErr("get expense", err)
	}
	return e, true, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *SQLRepository) get(ctx context.Context, q queryRower, id int64) (core.Expense, error) {
	row := q.QueryRowContext(ctx, r.dialect.Rebind("SELECT "+expenseColumns+" FROM expenses WHERE id = ?"), id)
	return scanExpense(row)
}

func (r *SQLRepository) Create(ctx context.Context, in core.ExpenseInput) (core.Expense, error) {
	e, err := core.NewExpense(in, r.now())
	if err != nil {
		return core.Expense{}, err
	}
	row := rowFromExpense(e)

	err = r.withTx(ctx, func(tx *sql.Tx) error {
		q := r.dialect.Rebind(`INSERT INTO expenses (title, amount_cents, due_date, creation_date)
			VALUES (?, ?, ?, ?) RETURNING id`)
		return tx.QueryRowContext(ctx, q, row.Title, row.AmountCents, row.DueDate, row.CreationDate).Scan(&e.ID)
	})
	if err != nil {
		return core.Expense{}, storageErr("create expense", err)
	}

	slog.DebugContext(ctx, "Expense saved",
		"id", e.ID,
		"title", e.Title,
		"amount_cents", e.Amount.Cents,
		"dialect", r.dialect.Name)
	return e, nil
}

func (r *SQLRepository) Update(ctx context.Context, id int64, in core.ExpenseInput) (core.Expense, error) {
	if err := in.Validate(); err != nil {
		return core.Expense{}, err
	}

	var updated core.Expense
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		current, err := r.get(ctx, tx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
		}
		if err != nil {
			return err
		}
		if err := current.Apply(in); err != nil {
			return err
		}

		row := rowFromExpense(current)
		q := r.dialect.Rebind("UPDATE expenses SET title = ?, amount_cents = ?, due_date = ? WHERE id = ?")
		if _, err := tx.ExecContext(ctx, q, row.Title, row.AmountCents, row.DueDate, id); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		return core.Expense{}, storageErr("update expense", err)
	}
	return updated, nil
}

func (r *SQLRepository) Delete(ctx context.Context, id int64) error {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, r.dialect.Rebind("DELETE FROM expenses WHERE id = ?"), id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return storageErr("delete expense", err)
	}
	return nil
}

// withTx runs fn in a transaction committed before returning.
func (r *SQLRepository) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// storageErr wraps driver failures in core.ErrStorage. Domain errors pass
// through untouched.
func storageErr(op string, err error) error {
	if errors.Is(err, core.ErrNotFound) || errors.Is(err, core.ErrValidation) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, core.ErrStorage, err)
}
