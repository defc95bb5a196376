package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/saldo/internal/selector"
)

const dateFormat = "2006-01-02"

// selectorFlags are the flags choosing which bookings a computation covers.
type selectorFlags struct {
	date        string
	from, to    string
	booking     int64
	fromBooking int64
	toBooking   int64
	exclusive   bool
}

// register adds the selector flags to cmd. --exclusive is offered only when the
// command honours it.
func (f *selectorFlags) register(cmd *cobra.Command, exclusive bool) {
	fl := cmd.Flags()
	fl.StringVar(&f.date, "date", "", "bookings valued up to this day (YYYY-MM-DD, default today)")
	fl.StringVar(&f.from, "from", "", "first day of a date range")
	fl.StringVar(&f.to, "to", "", "last day of a date range")
	fl.Int64Var(&f.booking, "booking", 0, "bookings up to this booking ID")
	fl.Int64Var(&f.fromBooking, "from-booking", 0, "first booking ID of a booking range")
	fl.Int64Var(&f.toBooking, "to-booking", 0, "last booking ID of a booking range")
	if exclusive {
		fl.BoolVar(&f.exclusive, "exclusive", false, "leave out the boundary day or bookings")
	}

	cmd.MarkFlagsRequiredTogether("from", "to")
	cmd.MarkFlagsRequiredTogether("from-booking", "to-booking")
	cmd.MarkFlagsMutuallyExclusive("date", "from", "booking", "from-booking")
	cmd.MarkFlagsMutuallyExclusive("date", "to", "booking", "to-booking")
}

// selector builds the chosen selector, looking booking IDs up in p.
func (f *selectorFlags) selector(ctx context.Context, p *project) (selector.Selector, error) {
	switch {
	case f.from != "":
		first, err := parseDay(f.from)
		if err != nil {
			return selector.Selector{}, err
		}
		last, err := parseDay(f.to)
		if err != nil {
			return selector.Selector{}, err
		}
		return selector.DateRange(first, last), nil

	case f.booking != 0:
		b, err := p.booking(ctx, f.booking)
		if err != nil {
			return selector.Selector{}, err
		}
		return selector.Booking(b), nil

	case f.fromBooking != 0:
		first, err := p.booking(ctx, f.fromBooking)
		if err != nil {
			return selector.Selector{}, err
		}
		last, err := p.booking(ctx, f.toBooking)
		if err != nil {
			return selector.Selector{}, err
		}
		return selector.BookingRange(first, last), nil

	case f.date != "":
		d, err := parseDay(f.date)
		if err != nil {
			return selector.Selector{}, err
		}
		return selector.Date(d), nil
	}
	return selector.Today(), nil
}

func (f *selectorFlags) inclusive() bool {
	return !f.exclusive
}

func parseDay(s string) (time.Time, error) {
	d, err := time.Parse(dateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return d, nil
}
