package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stabilisha/internal/auth"
	"stabilisha/internal/chatbot"
	"stabilisha/internal/insurance"
	"stabilisha/internal/ledger"
	"stabilisha/internal/paystack"
	"stabilisha/internal/ratelimiter"
	"stabilisha/internal/sacco"
	"stabilisha/internal/users"

	"go.uber.org/zap"
)

const testSecret = "sk_test_1234"

func newTestApplication(t *testing.T) *application {
	t.Helper()

	saccoStore, err := sacco.NewStore("test-salt")
	if err != nil {
		t.Fatal(err)
	}

	return &application{
		config: config{
			addr: ":0",
			env:  "test",
			paystack: paystackConfig{
				secret: testSecret,
			},
			rateLimiter: ratelimiter.Config{Enabled: false},
		},
		logger:        zap.NewNop().Sugar(),
		ledger:        ledger.NewMemoryStore(),
		users:         users.NewMemoryStore(),
		sacco:         saccoStore,
		claims:        insurance.NewClaimStore(),
		chatbot:       chatbot.New(),
		authenticator: auth.NewJWTAuthenticator("test-secret", "test-refresh-secret", "Stabilisha", "Stabilisha", time.Hour, time.Hour),
	}
}

func chargeSuccessBody(reference string, amount int64) []byte {
	return fmt.Appendf(nil, `{
		"event": "charge.success",
		"data": {
			"reference": %q,
			"id": 302961,
			"amount": %d,
			"currency": "KES",
			"customer": {"email": "worker@example.com"},
			"metadata": {"name": "Jane Wanjiku", "phone": "0712345678"},
			"channel": "mobile_money",
			"paid_at": "2026-08-01T10:30:00Z",
			"status": "success"
		}
	}`, reference, amount)
}

func deliver(t *testing.T, mux http.Handler, body []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/v1/paystack/webhook", strings.NewReader(string(body)))
	if signature != "" {
		req.Header.Set("x-paystack-signature", signature)
	}

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func listTransactions(t *testing.T, mux http.Handler) []ledger.Payment {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/v1/transactions", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("GET /v1/transactions: got status %d, want %d", rr.Code, http.StatusOK)
	}

	var envelope struct {
		Data struct {
			Transactions []ledger.Payment `json:"transactions"`
			Count        int              `json:"count"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding transactions response: %v", err)
	}
	if envelope.Data.Count != len(envelope.Data.Transactions) {
		t.Errorf("count %d does not match %d transactions", envelope.Data.Count, len(envelope.Data.Transactions))
	}
	return envelope.Data.Transactions
}

func TestWebhookRecordsSignedCharge(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	body := chargeSuccessBody("r1", 200)
	rr := deliver(t, mux, body, paystack.Signature(testSecret, body))

	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	got := listTransactions(t, mux)
	if len(got) != 1 {
		t.Fatalf("got %d transactions, want 1", len(got))
	}

	p := got[0]
	if p.Reference != "r1" {
		t.Errorf("reference = %q, want %q", p.Reference, "r1")
	}
	if p.Amount != 2.00 {
		t.Errorf("amount = %v, want 2.00", p.Amount)
	}
	if p.Currency != "KES" {
		t.Errorf("currency = %q, want KES", p.Currency)
	}
	if p.Status != ledger.StatusSuccess {
		t.Errorf("status = %q, want %q", p.Status, ledger.StatusSuccess)
	}
	if p.Name != "Jane Wanjiku" || p.Phone != "0712345678" {
		t.Errorf("customer = %q/%q, want metadata values", p.Name, p.Phone)
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	body := chargeSuccessBody("r1", 200)

	rr := deliver(t, mux, body, "deadbeef")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want %d", rr.Code, http.StatusUnauthorized)
	}

	rr = deliver(t, mux, body, "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("missing signature: got status %d, want %d", rr.Code, http.StatusUnauthorized)
	}

	if got := listTransactions(t, mux); len(got) != 0 {
		t.Fatalf("rejected delivery reached the ledger: %d records", len(got))
	}
}

func TestWebhookFailsClosedWithoutSecret(t *testing.T) {
	app := newTestApplication(t)
	app.config.paystack.secret = ""
	mux := app.mount()

	body := chargeSuccessBody("r1", 200)
	// Even a signature computed with an empty key must not pass.
	rr := deliver(t, mux, body, paystack.Signature("", body))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestWebhookIgnoresOtherEvents(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	body := []byte(`{"event": "charge.failed", "data": {"reference": "r2", "amount": 500, "status": "failed"}}`)
	rr := deliver(t, mux, body, paystack.Signature(testSecret, body))

	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", rr.Code, http.StatusOK)
	}

	var ack map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&ack); err != nil {
		t.Fatal(err)
	}
	if ack["outcome"] != "ignored" {
		t.Errorf("outcome = %q, want ignored", ack["outcome"])
	}

	if got := listTransactions(t, mux); len(got) != 0 {
		t.Fatalf("ignored event reached the ledger: %d records", len(got))
	}
}

func TestWebhookAcknowledgesMalformedBody(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	for _, body := range [][]byte{
		[]byte(`{not json`),
		[]byte(`{"event": "charge.success", "data": {"amount": 200}}`), // no reference
	} {
		rr := deliver(t, mux, body, paystack.Signature(testSecret, body))
		if rr.Code != http.StatusOK {
			t.Fatalf("body %q: got status %d, want %d", body, rr.Code, http.StatusOK)
		}

		var ack map[string]string
		if err := json.NewDecoder(rr.Body).Decode(&ack); err != nil {
			t.Fatal(err)
		}
		if ack["outcome"] != "malformed" {
			t.Errorf("body %q: outcome = %q, want malformed", body, ack["outcome"])
		}
	}

	if got := listTransactions(t, mux); len(got) != 0 {
		t.Fatalf("malformed delivery reached the ledger: %d records", len(got))
	}
}

func TestWebhookDuplicateDeliveryKeepsFirstRecord(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	first := chargeSuccessBody("r1", 200)
	if rr := deliver(t, mux, first, paystack.Signature(testSecret, first)); rr.Code != http.StatusOK {
		t.Fatalf("first delivery: got status %d", rr.Code)
	}

	// Paystack retries carry the same reference; the amount differing is the
	// retry being stale, not a new payment.
	retry := chargeSuccessBody("r1", 9900)
	rr := deliver(t, mux, retry, paystack.Signature(testSecret, retry))
	if rr.Code != http.StatusOK {
		t.Fatalf("retry: got status %d", rr.Code)
	}

	var ack map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&ack); err != nil {
		t.Fatal(err)
	}
	if ack["outcome"] != "duplicate" {
		t.Errorf("outcome = %q, want duplicate", ack["outcome"])
	}

	got := listTransactions(t, mux)
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	if got[0].Amount != 2.00 {
		t.Errorf("amount = %v, want the first delivery's 2.00", got[0].Amount)
	}
}

func TestTransactionsNewestFirst(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	for i, paidAt := range []string{
		"2026-08-01T08:00:00Z",
		"2026-08-03T08:00:00Z",
		"2026-08-02T08:00:00Z",
	} {
		body := fmt.Appendf(nil, `{
			"event": "charge.success",
			"data": {
				"reference": "ref-%d",
				"amount": 1000,
				"currency": "KES",
				"customer": {"email": "worker@example.com"},
				"paid_at": %q,
				"status": "success"
			}
		}`, i, paidAt)
		if rr := deliver(t, mux, body, paystack.Signature(testSecret, body)); rr.Code != http.StatusOK {
			t.Fatalf("delivery %d: got status %d", i, rr.Code)
		}
	}

	got := listTransactions(t, mux)
	wantOrder := []string{"ref-1", "ref-2", "ref-0"}
	if len(got) != len(wantOrder) {
		t.Fatalf("got %d records, want %d", len(got), len(wantOrder))
	}
	for i, want := range wantOrder {
		if got[i].Reference != want {
			t.Errorf("position %d: reference = %q, want %q", i, got[i].Reference, want)
		}
	}
}

type faultyLedger struct{}

func (faultyLedger) Append(context.Context, *ledger.Payment) (*ledger.Payment, bool, error) {
	return nil, false, errors.New("connection reset")
}

func (faultyLedger) ListRecent(context.Context, int) ([]ledger.Payment, error) {
	return nil, errors.New("connection reset")
}

func TestWebhookStorageFaultIsRetryable(t *testing.T) {
	app := newTestApplication(t)
	app.ledger = faultyLedger{}
	mux := app.mount()

	body := chargeSuccessBody("r1", 200)
	rr := deliver(t, mux, body, paystack.Signature(testSecret, body))

	// A 5xx tells Paystack to retry the delivery.
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("got status %d, want %d", rr.Code, http.StatusInternalServerError)
	}
}

func TestWebhookMetadataPlaceholders(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	body := []byte(`{
		"event": "charge.success",
		"data": {
			"reference": "bare",
			"amount": 1250,
			"currency": "KES",
			"customer": {"email": "worker@example.com"},
			"paid_at": "2026-08-01T10:30:00Z",
			"status": "success"
		}
	}`)
	if rr := deliver(t, mux, body, paystack.Signature(testSecret, body)); rr.Code != http.StatusOK {
		t.Fatalf("got status %d", rr.Code)
	}

	got := listTransactions(t, mux)
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	if got[0].Name != ledger.UnknownName {
		t.Errorf("name = %q, want %q", got[0].Name, ledger.UnknownName)
	}
	if got[0].Phone != ledger.UnknownPhone {
		t.Errorf("phone = %q, want %q", got[0].Phone, ledger.UnknownPhone)
	}
	if got[0].Amount != 12.50 {
		t.Errorf("amount = %v, want 12.50", got[0].Amount)
	}
	if !got[0].PaidAt.Equal(time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC)) {
		t.Errorf("paid_at = %v, want the provider timestamp", got[0].PaidAt)
	}
}
