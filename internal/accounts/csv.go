package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/cleared-dev/saldo/internal/model"
)

const (
	numFields    = 8
	colID        = 0
	colCode      = 1
	colTitle     = 2
	colType      = 3
	colParent    = 4
	colGrouping  = 5
	colHolderTyp = 6
	colHolderID  = 7

	numGroupingFields = 3
)

// ReadAccounts reads chart-of-accounts.csv.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes chart-of-accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"account_id", "code", "title", "account_type", "parent_id", "grouping_type_id", "holder_type", "holder_id"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colID] = strconv.FormatInt(acct.ID, 10)
	row[colCode] = acct.Code
	row[colTitle] = acct.Title
	row[colType] = string(acct.Type.Name)
	row[colParent] = optionalID(acct.ParentID)
	row[colGrouping] = optionalID(acct.GroupingTypeID)
	if !acct.Holder.IsZero() {
		row[colHolderTyp] = acct.Holder.Type
		row[colHolderID] = strconv.FormatInt(acct.Holder.ID, 10)
	}
	return row
}

// UnmarshalAccount converts a CSV row to an Account. Required fields are not
// checked here; see model.Account.Validate.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	id, err := strconv.ParseInt(record[colID], 10, 64)
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing account_id %q: %w", record[colID], err)
	}

	parentID, err := parseOptionalID("parent_id", record[colParent])
	if err != nil {
		return model.Account{}, err
	}
	groupingID, err := parseOptionalID("grouping_type_id", record[colGrouping])
	if err != nil {
		return model.Account{}, err
	}
	holderID, err := parseOptionalID("holder_id", record[colHolderID])
	if err != nil {
		return model.Account{}, err
	}

	return model.Account{
		ID:             id,
		Code:           record[colCode],
		Title:          record[colTitle],
		Type:           model.AccountType{Name: model.AccountTypeName(record[colType])},
		ParentID:       parentID,
		GroupingTypeID: groupingID,
		Holder:         model.HolderRef{Type: record[colHolderTyp], ID: holderID},
	}, nil
}

// ReadGroupingTypes reads grouping-types.csv (id,code,name).
func ReadGroupingTypes(r io.Reader) ([]model.AccountGroupingType, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numGroupingFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading grouping types CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var groups []model.AccountGroupingType
	for i, rec := range records[1:] {
		id, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing id %q: %w", i+2, rec[0], err)
		}
		groups = append(groups, model.AccountGroupingType{ID: id, Code: rec[1], Name: rec[2]})
	}
	return groups, nil
}

// WriteGroupingTypes writes grouping-types.csv.
func WriteGroupingTypes(w io.Writer, groups []model.AccountGroupingType) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"id", "code", "name"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, g := range groups {
		if err := cw.Write([]string{strconv.FormatInt(g.ID, 10), g.Code, g.Name}); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

func optionalID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func parseOptionalID(field, s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s %q: %w", field, s, err)
	}
	return id, nil
}
