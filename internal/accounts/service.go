package accounts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cleared-dev/saldo/internal/model"
)

// ErrAccountNotFound is returned by lookups that must resolve to an account.
var ErrAccountNotFound = errors.New("account not found")

// Taggable is the optional tagging capability of the chart of accounts. A Service
// has it only when one was attached at construction.
type Taggable interface {
	FindByTag(ctx context.Context, tag string) (model.Account, bool, error)
	TagCollection(ctx context.Context) ([]string, error)
}

// Service provides in-memory lookup over the chart of accounts. Accounts are always
// handed out in code order.
type Service struct {
	accounts  []model.Account
	byID      map[int64]model.Account
	byCode    map[string]model.Account
	groupings []model.AccountGroupingType
	tagging   Taggable
}

// Option configures a Service.
type Option func(*Service)

// WithGroupingTypes attaches the grouping types the accounts may reference.
func WithGroupingTypes(groups []model.AccountGroupingType) Option {
	return func(s *Service) {
		s.groupings = slices.Clone(groups)
		slices.SortFunc(s.groupings, func(a, b model.AccountGroupingType) int {
			return strings.Compare(a.Code, b.Code)
		})
	}
}

// NewService creates a Service from a slice of accounts.
func NewService(accounts []model.Account, opts ...Option) *Service {
	sorted := slices.Clone(accounts)
	SortByCode(sorted)

	byID := make(map[int64]model.Account, len(sorted))
	byCode := make(map[string]model.Account, len(sorted))
	for _, a := range sorted {
		byID[a.ID] = a
		byCode[a.Code] = a
	}
	s := &Service{accounts: sorted, byID: byID, byCode: byCode}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SortByCode orders accounts by code, ascending.
func SortByCode(accounts []model.Account) {
	slices.SortStableFunc(accounts, func(a, b model.Account) int {
		return strings.Compare(a.Code, b.Code)
	})
}

// Load reads accounts/chart-of-accounts.csv, and accounts/grouping-types.csv when
// present, from a project root.
func Load(root string) (*Service, error) {
	path := filepath.Join(root, "accounts", "chart-of-accounts.csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening chart of accounts: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading chart of accounts: %w", err)
	}

	groups, err := loadGroupingTypes(filepath.Join(root, "accounts", "grouping-types.csv"))
	if err != nil {
		return nil, err
	}
	return NewService(accts, WithGroupingTypes(groups)), nil
}

func loadGroupingTypes(path string) ([]model.AccountGroupingType, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening grouping types: %w", err)
	}
	defer f.Close()

	groups, err := ReadGroupingTypes(f)
	if err != nil {
		return nil, fmt.Errorf("reading grouping types: %w", err)
	}
	return groups, nil
}

// AttachTagging gives the service its tagging capability.
func (s *Service) AttachTagging(t Taggable) {
	s.tagging = t
}

// Tagging returns the tagging capability, if one is attached.
func (s *Service) Tagging() (Taggable, bool) {
	return s.tagging, s.tagging != nil
}

// All returns all accounts in code order.
func (s *Service) All() []model.Account {
	return s.accounts
}

// Get returns an account by ID.
func (s *Service) Get(id int64) (model.Account, bool) {
	a, ok := s.byID[id]
	return a, ok
}

// GetByCode returns an account by code.
func (s *Service) GetByCode(code string) (model.Account, bool) {
	a, ok := s.byCode[code]
	return a, ok
}

// MustGetByCode is GetByCode returning ErrAccountNotFound for unknown codes.
func (s *Service) MustGetByCode(code string) (model.Account, error) {
	a, ok := s.byCode[code]
	if !ok {
		return model.Account{}, fmt.Errorf("%w: code %q", ErrAccountNotFound, code)
	}
	return a, nil
}

// Exists reports whether an account ID exists.
func (s *Service) Exists(id int64) bool {
	_, ok := s.byID[id]
	return ok
}

// ByType returns all accounts whose type is one of names.
func (s *Service) ByType(names ...model.AccountTypeName) []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if slices.Contains(names, a.Type.Name) {
			result = append(result, a)
		}
	}
	return result
}

// ByGroupingType returns all accounts in the grouping type with the given ID.
func (s *Service) ByGroupingType(groupingID int64) []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if a.GroupingTypeID == groupingID {
			result = append(result, a)
		}
	}
	return result
}

// GroupingTypes returns the known grouping types in code order.
func (s *Service) GroupingTypes() []model.AccountGroupingType {
	return s.groupings
}

// Validate checks every account for required fields and duplicate codes.
func (s *Service) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(s.accounts))
	for _, a := range s.accounts {
		if err := a.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("account %d: %w", a.ID, err))
		}
		if a.Code != "" && seen[a.Code] {
			errs = append(errs, fmt.Errorf("account %d: duplicate code %q", a.ID, a.Code))
		}
		seen[a.Code] = true
	}
	return errors.Join(errs...)
}

// Save writes the chart of accounts (and grouping types, if any) under root/accounts.
func (s *Service) Save(root string) error {
	dir := filepath.Join(root, "accounts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating accounts dir: %w", err)
	}

	path := filepath.Join(dir, "chart-of-accounts.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart of accounts file: %w", err)
	}
	defer f.Close()

	if err := WriteAccounts(f, s.accounts); err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}

	if len(s.groupings) == 0 {
		return nil
	}
	gf, err := os.Create(filepath.Join(dir, "grouping-types.csv"))
	if err != nil {
		return fmt.Errorf("creating grouping types file: %w", err)
	}
	defer gf.Close()

	if err := WriteGroupingTypes(gf, s.groupings); err != nil {
		return fmt.Errorf("writing grouping types: %w", err)
	}
	return nil
}
