package wallet

import "stabilisha/internal/ledger"

// DefaultKESPerUSD is the conversion rate used when no FX source is wired.
const DefaultKESPerUSD = 145.0

type Summary struct {
	BalanceKES     float64 `json:"balance_kes"`
	BalanceUSD     float64 `json:"balance_usd"`
	PendingBalance float64 `json:"pending_balance"`
	TotalEarnings  float64 `json:"total_earnings"`
	TotalSpent     float64 `json:"total_spent"`
}

// BuildSummary derives wallet balances from the payment ledger and lifetime
// SACCO debits. Only settled ledger records exist, so the pending balance is
// always zero until a pending-settlement source is added.
func BuildSummary(payments []ledger.Payment, totalDebits, kesPerUSD float64) Summary {
	if kesPerUSD <= 0 {
		kesPerUSD = DefaultKESPerUSD
	}

	var earned float64
	for _, p := range payments {
		earned += p.Amount
	}

	balance := earned - totalDebits
	return Summary{
		BalanceKES:    balance,
		BalanceUSD:    balance / kesPerUSD,
		TotalEarnings: earned,
		TotalSpent:    totalDebits,
	}
}
