package selector

import (
	"fmt"
	"strings"
	"time"

	"github.com/cleared-dev/saldo/internal/model"
)

// Field is a booking attribute a Cond compares against.
type Field int

const (
	// FieldDay is the calendar day of the value date.
	FieldDay Field = iota
	// FieldID is the booking ID.
	FieldID
)

func (f Field) String() string {
	if f == FieldID {
		return "id"
	}
	return "day"
}

// Op is a comparison operator.
type Op string

const (
	OpEq Op = "="
	OpLt Op = "<"
	OpLe Op = "<="
	OpGt Op = ">"
	OpGe Op = ">="
)

// Cond compares one booking field against a bound value. Day conditions bind a
// time.Time truncated to the day, ID conditions an int64.
type Cond struct {
	Field Field
	Op    Op
	Day   time.Time
	ID    int64
}

// Value returns the bound value.
func (c Cond) Value() any {
	if c.Field == FieldID {
		return c.ID
	}
	return c.Day
}

// Term is a conjunction of conditions.
type Term []Cond

// Filter is a disjunction of terms. A booking matches when any term matches.
type Filter struct {
	Terms []Term
}

func dayCond(op Op, d time.Time) Cond {
	return Cond{Field: FieldDay, Op: op, Day: model.Day(d)}
}

func idCond(op Op, id int64) Cond {
	return Cond{Field: FieldID, Op: op, ID: id}
}

// Match reports whether b satisfies the filter.
func (f Filter) Match(b model.Booking) bool {
	for _, term := range f.Terms {
		if term.match(b) {
			return true
		}
	}
	return false
}

func (t Term) match(b model.Booking) bool {
	for _, c := range t {
		if !c.match(b) {
			return false
		}
	}
	return true
}

func (c Cond) match(b model.Booking) bool {
	var cmp int
	if c.Field == FieldID {
		cmp = compareInt(b.ID, c.ID)
	} else {
		cmp = b.Day().Compare(c.Day)
	}
	switch c.Op {
	case OpEq:
		return cmp == 0
	case OpLt:
		return cmp < 0
	case OpLe:
		return cmp <= 0
	case OpGt:
		return cmp > 0
	case OpGe:
		return cmp >= 0
	}
	return false
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Bindings returns the bound values in the order their conditions appear.
func (f Filter) Bindings() []any {
	var out []any
	for _, term := range f.Terms {
		for _, c := range term {
			out = append(out, c.Value())
		}
	}
	return out
}

// SQL renders the filter as a WHERE fragment. day is the SQL expression yielding the
// value date as YYYY-MM-DD, placeholder renders the n-th (1-based) bind parameter.
// Day bindings are passed as YYYY-MM-DD strings.
func (f Filter) SQL(day string, placeholder func(n int) string) (string, []any) {
	var (
		terms []string
		args  []any
	)
	for _, term := range f.Terms {
		conds := make([]string, 0, len(term))
		for _, c := range term {
			col := "id"
			if c.Field == FieldDay {
				col = day
				args = append(args, formatDay(c.Day))
			} else {
				args = append(args, c.ID)
			}
			conds = append(conds, fmt.Sprintf("%s %s %s", col, c.Op, placeholder(len(args))))
		}
		terms = append(terms, "("+strings.Join(conds, " AND ")+")")
	}
	if len(terms) == 0 {
		return "1 = 0", nil
	}
	return "(" + strings.Join(terms, " OR ") + ")", args
}

func (f Filter) String() string {
	where, args := f.SQL("day", func(int) string { return "?" })
	for _, v := range args {
		where = strings.Replace(where, "?", fmt.Sprint(v), 1)
	}
	return where
}
