package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cleared-dev/saldo/internal/accounts"
	"github.com/cleared-dev/saldo/internal/model"
)

const accountColumns = `a.id, a.code, a.title, a.parent_id, t.id, t.name, a.account_grouping_type_id, a.holder_type, a.holder_id`

// Accounts returns the chart of accounts ordered by code.
func (s *Store) Accounts(ctx context.Context) ([]model.Account, error) {
	query := `SELECT ` + accountColumns + `
		FROM accounts a
		JOIN account_types t ON t.id = a.account_type_id
		ORDER BY a.code`

	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	defer rows.Close()

	var out []model.Account
	for rows.Next() {
		var (
			a                model.Account
			parent, grouping sql.NullInt64
			holderType       sql.NullString
			holderID         sql.NullInt64
			typeID           int64
			typeName         string
		)
		if err := rows.Scan(&a.ID, &a.Code, &a.Title, &parent, &typeID, &typeName, &grouping, &holderType, &holderID); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		a.ParentID = parent.Int64
		a.Type = model.AccountType{ID: typeID, Name: model.AccountTypeName(typeName)}
		a.GroupingTypeID = grouping.Int64
		a.Holder = model.HolderRef{Type: holderType.String, ID: holderID.Int64}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}

	// The query already orders by code; collation differences between databases
	// must not leak out.
	accounts.SortByCode(out)
	return out, nil
}

// InsertAccount stores a valid account. Its type is looked up by name.
func (s *Store) InsertAccount(ctx context.Context, a model.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	ph := s.dialect.Placeholder
	query := fmt.Sprintf(`INSERT INTO accounts
		(id, code, title, parent_id, account_type_id, account_grouping_type_id, holder_type, holder_id)
		VALUES (%s, %s, %s, %s, (SELECT id FROM account_types WHERE name = %s), %s, %s, %s)`,
		ph(1), ph(2), ph(3), ph(4), ph(5), ph(6), ph(7), ph(8))

	_, err := s.q.ExecContext(ctx, query,
		a.ID, a.Code, a.Title,
		nullID(a.ParentID),
		string(a.Type.Name),
		nullID(a.GroupingTypeID),
		sql.NullString{String: a.Holder.Type, Valid: a.Holder.Type != ""},
		nullID(a.Holder.ID),
	)
	if err != nil {
		return fmt.Errorf("inserting account %s: %w", a, err)
	}
	return nil
}

// GroupingTypes returns all account grouping types ordered by code.
func (s *Store) GroupingTypes(ctx context.Context) ([]model.AccountGroupingType, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id, code, name FROM account_grouping_types ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("querying grouping types: %w", err)
	}
	defer rows.Close()

	var out []model.AccountGroupingType
	for rows.Next() {
		var g model.AccountGroupingType
		if err := rows.Scan(&g.ID, &g.Code, &g.Name); err != nil {
			return nil, fmt.Errorf("scanning grouping type: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// InsertGroupingType stores a valid grouping type.
func (s *Store) InsertGroupingType(ctx context.Context, g model.AccountGroupingType) error {
	if err := g.Validate(); err != nil {
		return err
	}
	ph := s.dialect.Placeholder
	query := fmt.Sprintf(`INSERT INTO account_grouping_types (id, code, name) VALUES (%s, %s, %s)`, ph(1), ph(2), ph(3))
	if _, err := s.q.ExecContext(ctx, query, g.ID, g.Code, g.Name); err != nil {
		return fmt.Errorf("inserting grouping type %s: %w", g, err)
	}
	return nil
}

// LoadService builds an account service from the database.
func (s *Store) LoadService(ctx context.Context) (*accounts.Service, error) {
	accts, err := s.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	groups, err := s.GroupingTypes(ctx)
	if err != nil {
		return nil, err
	}
	return accounts.NewService(accts, accounts.WithGroupingTypes(groups)), nil
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}
