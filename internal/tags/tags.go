// Package tags attaches free-form tags to accounts and resolves a tag back to the
// one account carrying it.
package tags

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/cleared-dev/saldo/internal/accounts"
	"github.com/cleared-dev/saldo/internal/model"
)

// ErrAmbiguousTag is matched by every *AmbiguousTagError.
var ErrAmbiguousTag = errors.New("ambiguous tag")

// AmbiguousTagError reports a tag carried by more than one account.
type AmbiguousTagError struct {
	Tag   string
	Count int
}

func (e *AmbiguousTagError) Error() string {
	return fmt.Sprintf("Given tag '%s' is ambiguous, found %d records", e.Tag, e.Count)
}

func (e *AmbiguousTagError) Is(target error) bool {
	return target == ErrAmbiguousTag
}

// Source stores which accounts carry which tags.
type Source interface {
	// TaggedWith returns the IDs of the accounts carrying tag, ascending.
	TaggedWith(ctx context.Context, tag string) ([]int64, error)
	// TagsInUse returns every tag carried by at least one account, sorted.
	TagsInUse(ctx context.Context) ([]string, error)
	// TagsOf returns the tags of one account, sorted.
	TagsOf(ctx context.Context, accountID int64) ([]string, error)
	Tag(ctx context.Context, accountID int64, tags ...string) error
	Untag(ctx context.Context, accountID int64, tags ...string) error
}

// Lookup resolves account IDs and codes.
type Lookup interface {
	Get(id int64) (model.Account, bool)
	GetByCode(code string) (model.Account, bool)
}

var defaultTags = []string{
	"invoice:debit",
	"invoice:earnings",
	"invoice:credit",
	"invoice:costs",
	"vat:credit",
	"vat:debit",
}

// DefaultTags returns the tags every chart is expected to assign.
func DefaultTags() []string {
	return slices.Clone(defaultTags)
}

// Resolver finds accounts by tag.
type Resolver struct {
	source   Source
	accounts Lookup
}

var _ accounts.Taggable = (*Resolver)(nil)

// NewResolver creates a Resolver over source. Tagged IDs missing from accts are
// ignored.
func NewResolver(source Source, accts Lookup) *Resolver {
	return &Resolver{source: source, accounts: accts}
}

// Source returns the underlying tag source.
func (r *Resolver) Source() Source {
	return r.source
}

// FindByTag returns the single account carrying tag. It reports false when no
// account does and an *AmbiguousTagError when several do.
func (r *Resolver) FindByTag(ctx context.Context, tag string) (model.Account, bool, error) {
	tagged, err := r.Tagged(ctx, tag)
	if err != nil {
		return model.Account{}, false, err
	}
	switch len(tagged) {
	case 0:
		return model.Account{}, false, nil
	case 1:
		return tagged[0], true, nil
	}
	return model.Account{}, false, &AmbiguousTagError{Tag: tag, Count: len(tagged)}
}

// Tagged returns every account carrying tag, in code order.
func (r *Resolver) Tagged(ctx context.Context, tag string) ([]model.Account, error) {
	ids, err := r.source.TaggedWith(ctx, tag)
	if err != nil {
		return nil, fmt.Errorf("looking up tag %q: %w", tag, err)
	}
	var out []model.Account
	for _, id := range ids {
		if a, ok := r.accounts.Get(id); ok {
			out = append(out, a)
		}
	}
	accounts.SortByCode(out)
	return out, nil
}

// TagCollection returns the default tags followed by every other tag in use.
func (r *Resolver) TagCollection(ctx context.Context) ([]string, error) {
	inUse, err := r.source.TagsInUse(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	out := DefaultTags()
	for _, t := range inUse {
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out, nil
}

// TagByCode tags the account with the given code.
func (r *Resolver) TagByCode(ctx context.Context, code string, tags ...string) error {
	a, ok := r.accounts.GetByCode(code)
	if !ok {
		return fmt.Errorf("account %s: %w", code, accounts.ErrAccountNotFound)
	}
	return r.source.Tag(ctx, a.ID, tags...)
}

// Seed applies a code-to-tags mapping such as accounts.DefaultTagging. Codes
// missing from the chart are skipped.
func Seed(ctx context.Context, src Source, accts Lookup, tagging map[string][]string) error {
	codes := make([]string, 0, len(tagging))
	for code := range tagging {
		codes = append(codes, code)
	}
	slices.Sort(codes)

	for _, code := range codes {
		a, ok := accts.GetByCode(code)
		if !ok {
			continue
		}
		if err := src.Tag(ctx, a.ID, tagging[code]...); err != nil {
			return fmt.Errorf("tagging %s: %w", a, err)
		}
	}
	return nil
}
