package accounts

import "github.com/cleared-dev/saldo/internal/model"

// Asset and balance-sheet membership are defined independently: costs accounts are
// debit-positive like assets but belong to profit and loss, not the balance sheet.
var (
	assetTypes = map[model.AccountTypeName]bool{
		model.CurrentAssets: true,
		model.CapitalAssets: true,
		model.Costs:         true,
	}
	balanceTypes = map[model.AccountTypeName]bool{
		model.CurrentAssets:  true,
		model.CapitalAssets:  true,
		model.OutsideCapital: true,
		model.EquityCapital:  true,
	}
)

// IsAsset reports whether the account is debit-positive.
func IsAsset(acct model.Account) bool {
	return assetTypes[acct.Type.Name]
}

// IsLiability reports whether the account is credit-positive.
func IsLiability(acct model.Account) bool {
	return !IsAsset(acct)
}

// IsBalanceAccount reports whether the account appears on the balance sheet.
func IsBalanceAccount(acct model.Account) bool {
	return balanceTypes[acct.Type.Name]
}

// IsProfitAccount reports whether the account belongs to profit and loss.
func IsProfitAccount(acct model.Account) bool {
	return !IsBalanceAccount(acct)
}
