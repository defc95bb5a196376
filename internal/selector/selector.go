// Package selector turns a caller's choice of bookings (as of a date, within a date
// range, as of a booking, between two bookings) into a Filter over value dates and
// booking IDs.
package selector

import (
	"errors"
	"fmt"
	"time"

	"github.com/cleared-dev/saldo/internal/model"
)

// Kind tags the variant held by a Selector.
type Kind int

const (
	KindNone Kind = iota
	KindDate
	KindDateRange
	KindBooking
	KindBookingRange
)

func (k Kind) String() string {
	switch k {
	case KindDate:
		return "date"
	case KindDateRange:
		return "date range"
	case KindBooking:
		return "booking"
	case KindBookingRange:
		return "booking range"
	default:
		return "none"
	}
}

var (
	// ErrEmptySelector is returned when resolving the zero Selector.
	ErrEmptySelector = errors.New("empty selector")
	// ErrInvalidSelectorOrdering is matched by every OrderingError.
	ErrInvalidSelectorOrdering = errors.New("selector first is after last")
)

// OrderingError reports a range whose first end sorts after its last end.
type OrderingError struct {
	Kind  Kind
	First string
	Last  string
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("%s: %s: %s > %s", e.Kind, ErrInvalidSelectorOrdering, e.First, e.Last)
}

func (e *OrderingError) Is(target error) bool {
	return target == ErrInvalidSelectorOrdering
}

// Selector picks the bookings a turnover or saldo is computed over. Build one with
// Date, DateRange, Booking or BookingRange.
type Selector struct {
	kind        Kind
	first, last time.Time
	firstB      model.Booking
	lastB       model.Booking
}

// Date selects every booking up to d.
func Date(d time.Time) Selector {
	return Selector{kind: KindDate, first: model.Day(d), last: model.Day(d)}
}

// Today is Date(time.Now()).
func Today() Selector {
	return Date(time.Now())
}

// DateRange selects bookings valued between first and last, both days included.
func DateRange(first, last time.Time) Selector {
	return Selector{kind: KindDateRange, first: model.Day(first), last: model.Day(last)}
}

// Booking selects every booking up to and including b, ordered by value date then ID.
func Booking(b model.Booking) Selector {
	return Selector{kind: KindBooking, firstB: b, lastB: b}
}

// BookingRange selects the bookings from first to last, ordered by value date then ID.
func BookingRange(first, last model.Booking) Selector {
	return Selector{kind: KindBookingRange, firstB: first, lastB: last}
}

// Kind reports which variant s holds.
func (s Selector) Kind() Kind {
	return s.kind
}

func (s Selector) String() string {
	switch s.kind {
	case KindDate:
		return "as of " + formatDay(s.first)
	case KindDateRange:
		return formatDay(s.first) + ".." + formatDay(s.last)
	case KindBooking:
		return fmt.Sprintf("as of booking %d", s.firstB.ID)
	case KindBookingRange:
		return fmt.Sprintf("bookings %d..%d", s.firstB.ID, s.lastB.ID)
	default:
		return "none"
	}
}

// Validate checks that range selectors are not reversed.
func (s Selector) Validate() error {
	switch s.kind {
	case KindNone:
		return ErrEmptySelector
	case KindDateRange:
		if s.first.After(s.last) {
			return &OrderingError{Kind: s.kind, First: formatDay(s.first), Last: formatDay(s.last)}
		}
	case KindBookingRange:
		if s.lastB.Before(s.firstB) {
			return &OrderingError{Kind: s.kind, First: bookingKey(s.firstB), Last: bookingKey(s.lastB)}
		}
	}
	return nil
}

const dayFormat = "2006-01-02"

func formatDay(t time.Time) string {
	return t.Format(dayFormat)
}

func bookingKey(b model.Booking) string {
	return fmt.Sprintf("%s#%d", formatDay(b.Day()), b.ID)
}
