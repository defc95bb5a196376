package sqlstore

import (
	"database/sql"
	_ "embed"
	"fmt"
	"strconv"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "github.com/mattn/go-sqlite3"    // registers the "sqlite3" driver
)

var (
	//go:embed schema_sqlite.sql
	sqliteSchema string
	//go:embed schema_postgres.sql
	postgresSchema string
)

// Dialect holds what differs between the supported databases.
type Dialect struct {
	Name   string
	Driver string
	// Day is the expression truncating value_date to a YYYY-MM-DD calendar day.
	Day string
	// SumAmount totals the amount column. SQLite sums integer cents to stay exact.
	SumAmount string
	// SumScale is the decimal exponent of SumAmount's result.
	SumScale int32
	Schema   string
	// TxOptions used for snapshot reads; nil means the driver default.
	TxOptions   *sql.TxOptions
	placeholder func(n int) string
}

var (
	SQLite = Dialect{
		Name:        "sqlite",
		Driver:      "sqlite3",
		Day:         "date(value_date)",
		SumAmount:   "COALESCE(SUM(CAST(ROUND(amount * 100) AS INTEGER)), 0)",
		SumScale:    -2,
		Schema:      sqliteSchema,
		placeholder: func(int) string { return "?" },
	}
	Postgres = Dialect{
		Name:      "postgres",
		Driver:    "pgx",
		Day:       "value_date::date",
		SumAmount: "COALESCE(SUM(amount), 0)",
		Schema:    postgresSchema,
		TxOptions: &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true},
		placeholder: func(n int) string {
			return "$" + strconv.Itoa(n)
		},
	}
)

// DialectFor returns the dialect registered under name.
func DialectFor(name string) (Dialect, error) {
	switch name {
	case SQLite.Name, "sqlite3":
		return SQLite, nil
	case Postgres.Name, "postgresql", "pgx":
		return Postgres, nil
	}
	return Dialect{}, fmt.Errorf("unknown SQL dialect %q", name)
}

// Placeholder renders the n-th (1-based) bind parameter.
func (d Dialect) Placeholder(n int) string {
	return d.placeholder(n)
}
