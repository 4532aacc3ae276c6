package Analytics

import "github.com/shopspring/decimal"

// Balance returns what the debtor owes: credits and interest minus payments and
// discounts. Disputed entries are ignored. A negative result means the dealer owes the farmer.
func Balance(entries []LedgerEntry) decimal.Decimal {
	balance := decimal.Zero
	for _, entry := range entries {
		if !entry.counts() {
			continue
		}
		switch {
		case entry.Kind.IsDebit():
			balance = balance.Add(entry.amount())
		case entry.Kind.IsSettlement():
			balance = balance.Sub(entry.amount())
		}
	}
	return balance
}
