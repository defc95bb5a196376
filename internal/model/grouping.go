package model

import "fmt"

// AccountGroupingType is an optional reporting group accounts can belong to.
type AccountGroupingType struct {
	ID   int64
	Code string
	Name string
}

func (g AccountGroupingType) String() string {
	return fmt.Sprintf("%s (%s)", g.Name, g.Code)
}

// SelectLabel is the label used in pick lists: "(code) name".
func (g AccountGroupingType) SelectLabel() string {
	return fmt.Sprintf("(%s) %s", g.Code, g.Name)
}

// Validate checks that code and name are present.
func (g AccountGroupingType) Validate() error {
	if g.Code == "" {
		return &MissingFieldError{Entity: "account grouping type", Field: "code"}
	}
	if g.Name == "" {
		return &MissingFieldError{Entity: "account grouping type", Field: "name"}
	}
	return nil
}
