package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/saldo/internal/model"
)

// Header is the CSV header for bookings.csv.
const Header = "id,value_date,amount,credit_account_id,debit_account_id,title"

const (
	numFields   = 6
	dateFormat  = "2006-01-02"
	colID       = 0
	colDate     = 1
	colAmount   = 2
	colCreditID = 3
	colDebitID  = 4
	colTitle    = 5
)

// ReadBookings reads all bookings from a bookings.csv reader.
func ReadBookings(r io.Reader) ([]model.Booking, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading bookings CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var bookings []model.Booking
	for i, rec := range records[1:] {
		b, err := UnmarshalBooking(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

// WriteBookings writes bookings to a bookings.csv writer (including header).
func WriteBookings(w io.Writer, bookings []model.Booking) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, b := range bookings {
		if err := cw.Write(MarshalBooking(b)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// AppendBookings appends bookings to an existing bookings.csv writer (no header).
func AppendBookings(w io.Writer, bookings []model.Booking) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	for i, b := range bookings {
		if err := cw.Write(MarshalBooking(b)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	return cw.Error()
}

// MarshalBooking converts a Booking to a CSV row.
func MarshalBooking(b model.Booking) []string {
	row := make([]string, numFields)
	row[colID] = strconv.FormatInt(b.ID, 10)
	row[colDate] = b.ValueDate.Format(dateFormat)
	row[colAmount] = b.Amount.StringFixed(2)
	row[colCreditID] = strconv.FormatInt(b.CreditAccountID, 10)
	row[colDebitID] = strconv.FormatInt(b.DebitAccountID, 10)
	row[colTitle] = b.Title
	return row
}

// UnmarshalBooking converts a CSV row to a Booking.
func UnmarshalBooking(record []string) (model.Booking, error) {
	if len(record) != numFields {
		return model.Booking{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	id, err := strconv.ParseInt(record[colID], 10, 64)
	if err != nil {
		return model.Booking{}, fmt.Errorf("parsing id %q: %w", record[colID], err)
	}

	date, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return model.Booking{}, fmt.Errorf("parsing value_date %q: %w", record[colDate], err)
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Booking{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	creditID, err := strconv.ParseInt(record[colCreditID], 10, 64)
	if err != nil {
		return model.Booking{}, fmt.Errorf("parsing credit_account_id %q: %w", record[colCreditID], err)
	}

	debitID, err := strconv.ParseInt(record[colDebitID], 10, 64)
	if err != nil {
		return model.Booking{}, fmt.Errorf("parsing debit_account_id %q: %w", record[colDebitID], err)
	}

	return model.Booking{
		ID:              id,
		ValueDate:       date,
		Amount:          amount,
		CreditAccountID: creditID,
		DebitAccountID:  debitID,
		Title:           record[colTitle],
	}, nil
}
