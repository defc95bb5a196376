// Package balance computes turnover and saldo of accounts over a selector.
package balance

import (
	"context"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/saldo/internal/accounts"
	"github.com/cleared-dev/saldo/internal/model"
	"github.com/cleared-dev/saldo/internal/selector"
)

// Side picks which booking column an account is matched against.
type Side int

const (
	Credit Side = iota
	Debit
)

func (s Side) String() string {
	if s == Debit {
		return "debit"
	}
	return "credit"
}

// Source sums booking amounts for one side of an account.
type Source interface {
	// Sum returns the total amount of bookings whose credit (or debit) account is
	// accountID and which match f. No matching bookings sum to zero.
	Sum(ctx context.Context, side Side, accountID int64, f selector.Filter) (decimal.Decimal, error)
}

// Lister is implemented by sources that can return the matching bookings themselves.
type Lister interface {
	Bookings(ctx context.Context, side Side, accountID int64, f selector.Filter) ([]model.Booking, error)
}

// Snapshotter is implemented by sources that can pin a consistent view of the
// bookings for the duration of fn.
type Snapshotter interface {
	Snapshot(ctx context.Context, fn func(Source) error) error
}

// Turnover holds the credit and debit sums of an account.
type Turnover struct {
	Credit decimal.Decimal
	Debit  decimal.Decimal
}

// Result is a turnover together with the saldo derived from it.
type Result struct {
	Turnover Turnover
	Saldo    decimal.Decimal
}

// Engine computes turnover and saldo against a booking source.
type Engine struct {
	source Source
	logger *zap.Logger
}

// NewEngine creates an Engine. A nil logger discards log output.
func NewEngine(source Source, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{source: source, logger: logger}
}

// Turnover returns the credit and debit sums of acct over sel.
func (e *Engine) Turnover(ctx context.Context, acct model.Account, sel selector.Selector, inclusive bool) (Turnover, error) {
	f, err := prepare(acct, sel, inclusive)
	if err != nil {
		return Turnover{}, err
	}
	return e.turnover(ctx, e.source, acct, f)
}

// Saldo returns the signed balance of acct over sel: debit minus credit for asset
// accounts, credit minus debit for all others.
func (e *Engine) Saldo(ctx context.Context, acct model.Account, sel selector.Selector, inclusive bool) (decimal.Decimal, error) {
	t, err := e.Turnover(ctx, acct, sel, inclusive)
	if err != nil {
		return decimal.Zero, err
	}
	return SignedSaldo(acct, t), nil
}

// Balance returns turnover and saldo read from a single snapshot when the source
// supports one.
func (e *Engine) Balance(ctx context.Context, acct model.Account, sel selector.Selector, inclusive bool) (Result, error) {
	f, err := prepare(acct, sel, inclusive)
	if err != nil {
		return Result{}, err
	}

	var res Result
	run := func(src Source) error {
		t, err := e.turnover(ctx, src, acct, f)
		if err != nil {
			return err
		}
		res = Result{Turnover: t, Saldo: SignedSaldo(acct, t)}
		return nil
	}

	if snap, ok := e.source.(Snapshotter); ok {
		if err := snap.Snapshot(ctx, run); err != nil {
			return Result{}, err
		}
		return res, nil
	}
	if err := run(e.source); err != nil {
		return Result{}, err
	}
	return res, nil
}

// Line is one row of an overview.
type Line struct {
	Account model.Account
	Saldo   decimal.Decimal
}

func (l Line) String() string {
	return fmt.Sprintf("%s: %s", l.Account, l.Saldo.StringFixed(2))
}

// Overview returns the saldo of every account over sel, in code order.
func (e *Engine) Overview(ctx context.Context, accts []model.Account, sel selector.Selector) ([]Line, error) {
	sorted := slices.Clone(accts)
	accounts.SortByCode(sorted)

	lines := make([]Line, 0, len(sorted))
	for _, a := range sorted {
		s, err := e.Saldo(ctx, a, sel, true)
		if err != nil {
			return nil, fmt.Errorf("saldo of %s: %w", a, err)
		}
		lines = append(lines, Line{Account: a, Saldo: s})
	}
	return lines, nil
}

// Bookings returns the bookings touching acct that match sel, ordered by value date
// then ID. The source must implement Lister.
func (e *Engine) Bookings(ctx context.Context, acct model.Account, sel selector.Selector, inclusive bool) ([]model.Booking, error) {
	lister, ok := e.source.(Lister)
	if !ok {
		return nil, fmt.Errorf("booking source %T cannot list bookings", e.source)
	}
	f, err := prepare(acct, sel, inclusive)
	if err != nil {
		return nil, err
	}

	credits, err := lister.Bookings(ctx, Credit, acct.ID, f)
	if err != nil {
		return nil, fmt.Errorf("listing credit bookings: %w", err)
	}
	debits, err := lister.Bookings(ctx, Debit, acct.ID, f)
	if err != nil {
		return nil, fmt.Errorf("listing debit bookings: %w", err)
	}

	out := append(credits, debits...)
	slices.SortFunc(out, func(a, b model.Booking) int {
		switch {
		case a.Before(b):
			return -1
		case b.Before(a):
			return 1
		}
		return 0
	})
	// A booking crediting and debiting the same account shows up once.
	return slices.CompactFunc(out, func(a, b model.Booking) bool { return a.ID == b.ID }), nil
}

// SignedSaldo applies the sign convention of acct to a turnover.
func SignedSaldo(acct model.Account, t Turnover) decimal.Decimal {
	amount := t.Debit.Sub(t.Credit)
	if accounts.IsAsset(acct) {
		return amount
	}
	return amount.Neg()
}

func prepare(acct model.Account, sel selector.Selector, inclusive bool) (selector.Filter, error) {
	if err := acct.Validate(); err != nil {
		return selector.Filter{}, err
	}
	f, err := selector.Resolve(sel, inclusive)
	if err != nil {
		return selector.Filter{}, fmt.Errorf("resolving %s: %w", sel, err)
	}
	return f, nil
}

func (e *Engine) turnover(ctx context.Context, src Source, acct model.Account, f selector.Filter) (Turnover, error) {
	credit, err := src.Sum(ctx, Credit, acct.ID, f)
	if err != nil {
		return Turnover{}, fmt.Errorf("summing credit bookings of %s: %w", acct, err)
	}
	debit, err := src.Sum(ctx, Debit, acct.ID, f)
	if err != nil {
		return Turnover{}, fmt.Errorf("summing debit bookings of %s: %w", acct, err)
	}

	e.logger.Debug("turnover",
		zap.String("account", acct.Code),
		zap.Stringer("filter", f),
		zap.String("credit", credit.String()),
		zap.String("debit", debit.String()),
	)
	return Turnover{Credit: credit, Debit: debit}, nil
}
