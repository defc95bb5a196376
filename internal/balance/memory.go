package balance

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/saldo/internal/model"
	"github.com/cleared-dev/saldo/internal/selector"
)

// Bookings is an in-memory booking source.
type Bookings []model.Booking

var (
	_ Source = Bookings(nil)
	_ Lister = Bookings(nil)
)

// Sum implements Source.
func (bs Bookings) Sum(_ context.Context, side Side, accountID int64, f selector.Filter) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, b := range bs {
		if onSide(b, side, accountID) && f.Match(b) {
			total = total.Add(b.Amount)
		}
	}
	return total, nil
}

// Bookings implements Lister.
func (bs Bookings) Bookings(_ context.Context, side Side, accountID int64, f selector.Filter) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range bs {
		if onSide(b, side, accountID) && f.Match(b) {
			out = append(out, b)
		}
	}
	return out, nil
}

func onSide(b model.Booking, side Side, accountID int64) bool {
	if side == Debit {
		return b.DebitAccountID == accountID
	}
	return b.CreditAccountID == accountID
}
