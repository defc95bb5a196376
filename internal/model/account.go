package model

import (
	"errors"
	"fmt"
)

// AccountTypeName is one entry of the fixed account type vocabulary.
type AccountTypeName string

const (
	CurrentAssets  AccountTypeName = "current_assets"
	CapitalAssets  AccountTypeName = "capital_assets"
	Costs          AccountTypeName = "costs"
	OutsideCapital AccountTypeName = "outside_capital"
	EquityCapital  AccountTypeName = "equity_capital"
	Earnings       AccountTypeName = "earnings"
)

// AccountTypeNames lists the known vocabulary in chart order.
var AccountTypeNames = []AccountTypeName{
	CurrentAssets,
	CapitalAssets,
	OutsideCapital,
	EquityCapital,
	Costs,
	Earnings,
}

// AccountType classifies accounts in the chart of accounts.
type AccountType struct {
	ID   int64
	Name AccountTypeName
}

// IsZero reports whether no type has been assigned.
func (t AccountType) IsZero() bool {
	return t.Name == ""
}

// HolderRef points at the external entity owning an account (a person, a company).
type HolderRef struct {
	Type string
	ID   int64
}

// IsZero reports whether the account has no holder.
func (h HolderRef) IsZero() bool {
	return h.Type == "" && h.ID == 0
}

// Account is one entry of the chart of accounts.
type Account struct {
	ID             int64
	Code           string
	Title          string
	ParentID       int64 // 0 = top-level
	Type           AccountType
	GroupingTypeID int64 // 0 = ungrouped
	Holder         HolderRef
}

func (a Account) String() string {
	return fmt.Sprintf("%s (%s)", a.Title, a.Code)
}

// ErrMissingRequiredField is matched by every MissingFieldError.
var ErrMissingRequiredField = errors.New("missing required field")

// MissingFieldError reports a required attribute left empty.
type MissingFieldError struct {
	Entity string
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Entity, ErrMissingRequiredField, e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingRequiredField
}

// Validate checks that code, title and account type are present.
func (a Account) Validate() error {
	switch {
	case a.Code == "":
		return &MissingFieldError{Entity: "account", Field: "code"}
	case a.Title == "":
		return &MissingFieldError{Entity: "account", Field: "title"}
	case a.Type.IsZero():
		return &MissingFieldError{Entity: "account", Field: "account_type"}
	}
	return nil
}
