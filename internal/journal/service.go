package journal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/saldo/internal/balance"
	"github.com/cleared-dev/saldo/internal/model"
	"github.com/cleared-dev/saldo/internal/selector"
)

// FileName is the booking file under a project root.
const FileName = "bookings.csv"

// Service is a booking source backed by bookings.csv.
type Service struct {
	root     string
	accounts AccountChecker

	mu       sync.RWMutex
	bookings balance.Bookings
}

var (
	_ balance.Source = (*Service)(nil)
	_ balance.Lister = (*Service)(nil)
)

// NewService creates an empty journal Service rooted at root.
func NewService(root string, accounts AccountChecker) *Service {
	return &Service{root: root, accounts: accounts}
}

// Load reads and validates root/bookings.csv. A missing file is an empty journal.
func Load(root string, accounts AccountChecker) (*Service, error) {
	s := NewService(root, accounts)

	f, err := os.Open(s.path())
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening bookings %s: %w", s.path(), err)
	}
	defer f.Close()

	bookings, err := ReadBookings(f)
	if err != nil {
		return nil, fmt.Errorf("reading bookings %s: %w", s.path(), err)
	}
	if err := Check(ValidateBookings(bookings, accounts)); err != nil {
		return nil, err
	}
	s.bookings = bookings
	return s, nil
}

// All returns every booking in file order.
func (s *Service) All() []model.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.bookings)
}

// Get returns a booking by ID.
func (s *Service) Get(id int64) (model.Booking, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.bookings {
		if b.ID == id {
			return b, true
		}
	}
	return model.Booking{}, false
}

// Sum implements balance.Source.
func (s *Service) Sum(ctx context.Context, side balance.Side, accountID int64, f selector.Filter) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bookings.Sum(ctx, side, accountID, f)
}

// Bookings implements balance.Lister.
func (s *Service) Bookings(ctx context.Context, side balance.Side, accountID int64, f selector.Filter) ([]model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bookings.Bookings(ctx, side, accountID, f)
}

// AppendParams holds the fields of a new booking.
type AppendParams struct {
	ValueDate     time.Time
	Amount        decimal.Decimal
	CreditAccount int64
	DebitAccount  int64
	Title         string
}

// Append assigns the next booking ID, validates the booking against the journal and
// appends it to bookings.csv.
func (s *Service) Append(params AppendParams) (model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var nextID int64 = 1
	if n := len(s.bookings); n > 0 {
		nextID = s.bookings[n-1].ID + 1
	}

	b := model.Booking{
		ID:              nextID,
		ValueDate:       model.Day(params.ValueDate),
		Amount:          params.Amount,
		CreditAccountID: params.CreditAccount,
		DebitAccountID:  params.DebitAccount,
		Title:           params.Title,
	}
	if err := Check(ValidateBookings([]model.Booking{b}, s.accounts)); err != nil {
		return model.Booking{}, err
	}

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return model.Booking{}, fmt.Errorf("creating journal dir: %w", err)
	}

	isNew := false
	if _, err := os.Stat(s.path()); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(s.path(), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return model.Booking{}, fmt.Errorf("opening bookings: %w", err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, Header); err != nil {
			return model.Booking{}, fmt.Errorf("writing header: %w", err)
		}
	}

	if err := AppendBookings(f, []model.Booking{b}); err != nil {
		return model.Booking{}, fmt.Errorf("appending booking: %w", err)
	}

	s.bookings = append(s.bookings, b)
	return b, nil
}

// Save writes the whole journal to bookings.csv, replacing the file.
func (s *Service) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("creating journal dir: %w", err)
	}
	f, err := os.Create(s.path())
	if err != nil {
		return fmt.Errorf("creating bookings: %w", err)
	}
	defer f.Close()

	if err := WriteBookings(f, s.bookings); err != nil {
		return fmt.Errorf("writing bookings: %w", err)
	}
	return nil
}

func (s *Service) path() string {
	return filepath.Join(s.root, FileName)
}
