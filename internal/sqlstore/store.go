// Package sqlstore is a booking and account source over database/sql, for SQLite
// and PostgreSQL.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/saldo/internal/balance"
	"github.com/cleared-dev/saldo/internal/model"
	"github.com/cleared-dev/saldo/internal/selector"
)

const dayFormat = "2006-01-02"

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store reads bookings and accounts from a SQL database.
type Store struct {
	db      *sql.DB
	q       querier
	dialect Dialect
	logger  *zap.Logger
}

var (
	_ balance.Source      = (*Store)(nil)
	_ balance.Lister      = (*Store)(nil)
	_ balance.Snapshotter = (*Store)(nil)
)

// Open connects to the database and pings it.
func Open(ctx context.Context, dialectName, dsn string, logger *zap.Logger) (*Store, error) {
	d, err := DialectFor(dialectName)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", d.Name, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging %s database: %w", d.Name, err)
	}
	return New(db, d, logger), nil
}

// New wraps an open database handle.
func New(db *sql.DB, d Dialect, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, q: db, dialect: d, logger: logger.With(zap.String("dialect", d.Name))}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the tables when missing and seeds the account type vocabulary.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.q.ExecContext(ctx, s.dialect.Schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	query := "INSERT INTO account_types (name) VALUES (" + s.dialect.Placeholder(1) + ") ON CONFLICT (name) DO NOTHING"
	for _, name := range model.AccountTypeNames {
		if _, err := s.q.ExecContext(ctx, query, string(name)); err != nil {
			return fmt.Errorf("seeding account type %s: %w", name, err)
		}
	}
	return nil
}

// Snapshot runs fn against a single read transaction so that every sum it takes sees
// the same bookings.
func (s *Store) Snapshot(ctx context.Context, fn func(balance.Source) error) (err error) {
	tx, err := s.db.BeginTx(ctx, s.dialect.TxOptions)
	if err != nil {
		return fmt.Errorf("beginning snapshot: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("ending snapshot: %w", cerr)
		}
	}()

	return fn(&Store{db: s.db, q: tx, dialect: s.dialect, logger: s.logger})
}

// Sum implements balance.Source.
func (s *Store) Sum(ctx context.Context, side balance.Side, accountID int64, f selector.Filter) (decimal.Decimal, error) {
	where, args := s.where(side, accountID, f)
	query := fmt.Sprintf("SELECT %s FROM bookings WHERE %s", s.dialect.SumAmount, where)

	var total decimal.Decimal
	if err := s.q.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("summing %s bookings: %w", side, err)
	}
	if s.dialect.SumScale != 0 {
		total = total.Shift(s.dialect.SumScale)
	}

	s.logger.Debug("sum", zap.String("query", query), zap.Any("args", args), zap.String("total", total.String()))
	return total, nil
}

// Bookings implements balance.Lister.
func (s *Store) Bookings(ctx context.Context, side balance.Side, accountID int64, f selector.Filter) ([]model.Booking, error) {
	where, args := s.where(side, accountID, f)
	query := fmt.Sprintf(
		"SELECT id, value_date, amount, credit_account_id, debit_account_id, title FROM bookings WHERE %s ORDER BY %s, id",
		where, s.dialect.Day)

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing %s bookings: %w", side, err)
	}
	defer rows.Close()

	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing %s bookings: %w", side, err)
	}
	return out, nil
}

// GetBooking returns a booking by ID.
func (s *Store) GetBooking(ctx context.Context, id int64) (model.Booking, bool, error) {
	query := "SELECT id, value_date, amount, credit_account_id, debit_account_id, title FROM bookings WHERE id = " + s.dialect.Placeholder(1)
	b, err := scanBooking(s.q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, false, nil
	}
	if err != nil {
		return model.Booking{}, false, err
	}
	return b, true, nil
}

// InsertBooking stores b. A zero ID lets the database assign one.
func (s *Store) InsertBooking(ctx context.Context, b model.Booking) (int64, error) {
	ph := s.dialect.Placeholder
	args := []any{model.Day(b.ValueDate).Format(dayFormat), b.Amount, b.CreditAccountID, b.DebitAccountID, b.Title}
	cols := "value_date, amount, credit_account_id, debit_account_id, title"
	if b.ID != 0 {
		cols = "id, " + cols
		args = append([]any{b.ID}, args...)
	}

	values := ""
	for i := range args {
		if i > 0 {
			values += ", "
		}
		values += ph(i + 1)
	}

	query := fmt.Sprintf("INSERT INTO bookings (%s) VALUES (%s) RETURNING id", cols, values)
	var id int64
	if err := s.q.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("inserting booking: %w", err)
	}
	return id, nil
}

func (s *Store) where(side balance.Side, accountID int64, f selector.Filter) (string, []any) {
	col := "credit_account_id"
	if side == balance.Debit {
		col = "debit_account_id"
	}
	cond, args := f.SQL(s.dialect.Day, func(n int) string { return s.dialect.Placeholder(n + 1) })
	return fmt.Sprintf("%s = %s AND %s", col, s.dialect.Placeholder(1), cond), append([]any{accountID}, args...)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBooking(row scanner) (model.Booking, error) {
	var (
		b    model.Booking
		date time.Time
	)
	if err := row.Scan(&b.ID, &date, &b.Amount, &b.CreditAccountID, &b.DebitAccountID, &b.Title); err != nil {
		return model.Booking{}, fmt.Errorf("scanning booking: %w", err)
	}
	b.ValueDate = model.Day(date)
	return b, nil
}
