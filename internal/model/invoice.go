package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice represents one billed transaction for a company.
// This is a pure domain model with no database-specific dependencies or tags.
// Records are immutable once loaded; derived values (days-to-pay, lateness)
// live in the kpi package, never here.
type Invoice struct {
	ID         string          `json:"id"`
	Reference  string          `json:"reference"`
	Company    string          `json:"company"`
	IssuedAt   time.Time       `json:"issued_at"`
	Amount     decimal.Decimal `json:"amount"`
	PaidAt     *time.Time      `json:"paid_at,omitempty"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Paid reports whether a payment date has been recorded for the invoice.
func (i Invoice) Paid() bool {
	return i.PaidAt != nil && !i.PaidAt.IsZero()
}
