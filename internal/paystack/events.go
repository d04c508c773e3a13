package paystack

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"stabilisha/internal/ledger"
)

// EventChargeSuccess is the only event type that produces a ledger record.
// Every other type is acknowledged and dropped.
const EventChargeSuccess = "charge.success"

// minorUnitFactor converts Paystack amounts (kobo / cents) to major units.
const minorUnitFactor = 100

// Event is the provider's webhook envelope. Data is only meaningful for
// charge events; other event types reuse the same outer shape.
type Event struct {
	Event string    `json:"event"`
	Data  EventData `json:"data"`
}

type EventData struct {
	Reference string          `json:"reference"`
	ID        json.Number     `json:"id"`
	Amount    int64           `json:"amount"` // minor currency units
	Currency  string          `json:"currency"`
	Customer  EventCustomer   `json:"customer"`
	Metadata  *EventMetadata  `json:"metadata"`
	Channel   string          `json:"channel"`
	PaidAt    string          `json:"paid_at"`
	Status    string          `json:"status"`
}

type EventCustomer struct {
	Email string `json:"email"`
}

type EventMetadata struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// ParseEvent decodes the raw webhook body. Parsing happens after signature
// verification, never before.
func ParseEvent(body []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("decode webhook event: %w", err)
	}
	return &ev, nil
}

func (e *Event) IsChargeSuccess() bool {
	return e.Event == EventChargeSuccess
}

// NormalizePayment maps a charge.success envelope into a Payment record.
// receivedAt stands in for paid_at when the provider omits it or sends
// something unparseable; the identity fields (reference, amount, customer
// email) have no such fallback and fail normalization instead.
func NormalizePayment(e *Event, receivedAt time.Time) (*ledger.Payment, error) {
	d := e.Data

	reference := strings.TrimSpace(d.Reference)
	if reference == "" {
		return nil, fmt.Errorf("charge event has no reference")
	}
	email := strings.TrimSpace(d.Customer.Email)
	if email == "" {
		return nil, fmt.Errorf("charge %s has no customer email", reference)
	}
	if d.Amount < 0 {
		return nil, fmt.Errorf("charge %s has negative amount %d", reference, d.Amount)
	}

	name := ledger.UnknownName
	phone := ledger.UnknownPhone
	if d.Metadata != nil {
		if v := strings.TrimSpace(d.Metadata.Name); v != "" {
			name = v
		}
		if v := strings.TrimSpace(d.Metadata.Phone); v != "" {
			phone = v
		}
	}

	paidAt := receivedAt
	if raw := strings.TrimSpace(d.PaidAt); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			paidAt = t
		}
	}

	return &ledger.Payment{
		Reference:       reference,
		TransactionCode: d.ID.String(),
		Amount:          float64(d.Amount) / minorUnitFactor,
		Currency:        d.Currency,
		Email:           email,
		Name:            name,
		Phone:           phone,
		Channel:         d.Channel,
		PaidAt:          paidAt,
		Status:          ledger.StatusSuccess,
	}, nil
}
