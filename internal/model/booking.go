package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Booking is one double-entry posting: Amount moves from the credit account to the
// debit account on ValueDate. Bookings are immutable once recorded.
type Booking struct {
	ID              int64
	ValueDate       time.Time
	Amount          decimal.Decimal
	CreditAccountID int64
	DebitAccountID  int64
	Title           string
}

// Day returns the value date truncated to a UTC calendar day.
func (b Booking) Day() time.Time {
	return Day(b.ValueDate)
}

// Before orders bookings by value date, then ID.
func (b Booking) Before(other Booking) bool {
	d, o := b.Day(), other.Day()
	if !d.Equal(o) {
		return d.Before(o)
	}
	return b.ID < other.ID
}

// Day drops the time of day, keeping the calendar date as seen in t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
