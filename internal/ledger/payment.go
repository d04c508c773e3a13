package ledger

import "time"

// Sentinels for optional payer metadata the provider may omit. Downstream
// consumers (dashboard table, receipt mail) rely on every field being set.
const (
	UnknownName  = "Unknown"
	UnknownPhone = "N/A"
)

// StatusSuccess is the only lifecycle status this pipeline produces; failed
// or reversed charges never reach the ledger.
const StatusSuccess = "success"

// Payment is one normalized, settled charge as delivered by Paystack.
// Records are append-only: once stored under a reference they are never
// mutated or deleted.
type Payment struct {
	ID              int64     `json:"id"`
	Reference       string    `json:"reference"`
	TransactionCode string    `json:"transaction_code"`
	Amount          float64   `json:"amount"` // major currency units
	Currency        string    `json:"currency"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	Phone           string    `json:"phone"`
	Channel         string    `json:"channel"`
	PaidAt          time.Time `json:"paid_at"`
	Status          string    `json:"status"`
}
