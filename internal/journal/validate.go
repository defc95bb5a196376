package journal

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/saldo/internal/model"
)

// ValidationError describes a single integrity violation in a booking file.
type ValidationError struct {
	Rule      int
	BookingID int64
	Message   string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("rule %d [booking %d]: %s", e.Rule, e.BookingID, e.Message)
}

// AccountChecker tests whether an account ID exists in the chart of accounts.
type AccountChecker interface {
	Exists(id int64) bool
}

var hundred = decimal.NewFromInt(100)

// ValidateBookings checks the integrity rules a booking file must satisfy before it
// can serve as a booking source:
//
//  1. IDs are positive and strictly increasing in file order.
//  2. Both accounts exist.
//  3. Credit and debit accounts differ.
//  4. Amounts are non-negative with at most 2 decimal places.
func ValidateBookings(bookings []model.Booking, accounts AccountChecker) []ValidationError {
	var errs []ValidationError

	var prevID int64
	for _, b := range bookings {
		if b.ID <= prevID {
			errs = append(errs, ValidationError{
				Rule:      1,
				BookingID: b.ID,
				Message:   fmt.Sprintf("id not greater than previous id %d", prevID),
			})
		}
		if b.ID > prevID {
			prevID = b.ID
		}
		errs = append(errs, ValidateBooking(b, accounts)...)
	}

	return errs
}

// ValidateBooking checks rules 2 to 4 on a single booking, whose ID may not be
// assigned yet.
func ValidateBooking(b model.Booking, accounts AccountChecker) []ValidationError {
	var errs []ValidationError

	for _, acctID := range []int64{b.CreditAccountID, b.DebitAccountID} {
		if !accounts.Exists(acctID) {
			errs = append(errs, ValidationError{
				Rule:      2,
				BookingID: b.ID,
				Message:   fmt.Sprintf("unknown account %d", acctID),
			})
		}
	}

	if b.CreditAccountID == b.DebitAccountID {
		errs = append(errs, ValidationError{
			Rule:      3,
			BookingID: b.ID,
			Message:   fmt.Sprintf("credit and debit account are both %d", b.CreditAccountID),
		})
	}

	if b.Amount.IsNegative() {
		errs = append(errs, ValidationError{
			Rule:      4,
			BookingID: b.ID,
			Message:   fmt.Sprintf("negative amount %s", b.Amount),
		})
	} else if cents := b.Amount.Mul(hundred); !cents.Equal(cents.Floor()) {
		errs = append(errs, ValidationError{
			Rule:      4,
			BookingID: b.ID,
			Message:   fmt.Sprintf("amount %s has more than 2 decimal places", b.Amount),
		})
	}

	return errs
}

// Check joins validation errors into one error, or returns nil when there are none.
func Check(verrs []ValidationError) error {
	if len(verrs) == 0 {
		return nil
	}
	msgs := make([]string, len(verrs))
	for i, ve := range verrs {
		msgs[i] = ve.Error()
	}
	return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
}
