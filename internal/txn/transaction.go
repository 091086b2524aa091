package txn

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one candidate transaction extracted from a statement.
// Sign convention: negative amount = debit/expense, positive = credit/income.
type Transaction struct {
	Date          time.Time
	Description   string
	Amount        decimal.Decimal
	Category      string
	Payee         string
	Merchant      string
	Location      string
	Confidence    float32 // 0..1
	Tags          []string
	RawSourceLine string
}

// Valid reports whether the candidate satisfies the acceptance invariant:
// non-zero amount, parseable date, non-empty description.
func (t Transaction) Valid() bool {
	return !t.Amount.IsZero() && !t.Date.IsZero() && t.Description != ""
}

// Analysis is the optional narrative the completion service produces
// alongside the transaction list.
type Analysis struct {
	Summary   string
	Insights  []string
	Anomalies []string
}
