package accounts

import "github.com/cleared-dev/saldo/internal/model"

// ChartNames lists the charts DefaultChart knows by name.
func ChartNames() []string {
	return []string{"kmu"}
}

// DefaultChart returns the default chart of accounts by name. Unknown names get the
// kmu chart.
func DefaultChart(name string) []model.Account {
	switch name {
	case "kmu":
		return kmuChart()
	default:
		return kmuChart()
	}
}

// DefaultTagging maps account codes of the default chart to their seed tags.
func DefaultTagging(name string) map[string][]string {
	switch name {
	case "kmu":
		return kmuTagging()
	default:
		return kmuTagging()
	}
}

func kmuTagging() map[string][]string {
	return map[string][]string{
		"1100": {"invoice:debit"},
		"1170": {"vat:credit"},
		"2000": {"invoice:credit"},
		"2200": {"vat:debit"},
		"3200": {"invoice:earnings"},
		"4200": {"invoice:costs"},
	}
}

func kmuChart() []model.Account {
	typ := func(n model.AccountTypeName) model.AccountType { return model.AccountType{Name: n} }
	return []model.Account{
		{ID: 1, Code: "1000", Title: "Cash", Type: typ(model.CurrentAssets)},
		{ID: 2, Code: "1020", Title: "Bank", Type: typ(model.CurrentAssets)},
		{ID: 3, Code: "1100", Title: "Accounts Receivable", Type: typ(model.CurrentAssets)},
		{ID: 4, Code: "1170", Title: "Input VAT", Type: typ(model.CurrentAssets)},
		{ID: 5, Code: "1500", Title: "Machinery", Type: typ(model.CapitalAssets)},
		{ID: 6, Code: "1520", Title: "Office Equipment", Type: typ(model.CapitalAssets)},
		{ID: 7, Code: "2000", Title: "Accounts Payable", Type: typ(model.OutsideCapital)},
		{ID: 8, Code: "2200", Title: "VAT Payable", Type: typ(model.OutsideCapital)},
		{ID: 9, Code: "2800", Title: "Share Capital", Type: typ(model.EquityCapital)},
		{ID: 10, Code: "2900", Title: "Retained Earnings", Type: typ(model.EquityCapital)},
		{ID: 11, Code: "3200", Title: "Sales Revenue", Type: typ(model.Earnings)},
		{ID: 12, Code: "3400", Title: "Service Revenue", Type: typ(model.Earnings)},
		{ID: 13, Code: "4200", Title: "Cost of Goods", Type: typ(model.Costs)},
		{ID: 14, Code: "6000", Title: "Rent", Type: typ(model.Costs)},
		{ID: 15, Code: "6500", Title: "Office Expenses", Type: typ(model.Costs)},
	}
}
