package main

import (
	"expvar"
	"io"
	"net/http"
	"time"

	"stabilisha/internal/ledger"
	"stabilisha/internal/mailer"
	"stabilisha/internal/paystack"
)

// Ingestion outcomes, published under /v1/debug/vars. The webhook answers 200
// for everything past the signature check, so these counters (plus the
// structured logs) are how operators tell recorded, duplicate, ignored and
// malformed deliveries apart.
var (
	webhookRecorded  = expvar.NewInt("webhook_recorded")
	webhookDuplicate = expvar.NewInt("webhook_duplicate")
	webhookIgnored   = expvar.NewInt("webhook_ignored")
	webhookMalformed = expvar.NewInt("webhook_malformed")
	webhookRejected  = expvar.NewInt("webhook_rejected")
)

// paystackWebhookHandler godoc
//
//	@Summary		Paystack webhook receiver
//	@Description	Verifies the x-paystack-signature HMAC over the raw body, records charge.success events in the payment ledger and acknowledges everything else.
//	@Tags			payments
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	map[string]any	"acknowledged (recorded, duplicate, ignored or malformed)"
//	@Failure		401	{object}	ErrorResponse	"signature verification failed"
//	@Failure		500	{object}	ErrorResponse	"ledger fault"
//	@Router			/paystack/webhook [post]
func (app *application) paystackWebhookHandler(w http.ResponseWriter, r *http.Request) {
	// The signature covers the exact bytes Paystack sent; read them before
	// any JSON decoding touches the body.
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1_048_578))
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	signature := r.Header.Get("x-paystack-signature")
	if !paystack.VerifySignature(app.config.paystack.secret, body, signature) {
		webhookRejected.Add(1)
		app.logger.Warnw("webhook rejected",
			"outcome", "rejected",
			"remote", r.RemoteAddr,
			"has_signature", signature != "",
		)
		writeJSONError(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	// Past this point the caller is Paystack, and Paystack retries on
	// non-2xx. Everything except a storage fault is acknowledged.
	ev, err := paystack.ParseEvent(body)
	if err != nil {
		webhookMalformed.Add(1)
		app.logger.Errorw("webhook body unparseable", "outcome", "malformed", "error", err.Error())
		app.acknowledge(w, r, "malformed")
		return
	}

	if !ev.IsChargeSuccess() {
		webhookIgnored.Add(1)
		app.logger.Infow("webhook event ignored", "outcome", "ignored", "event", ev.Event)
		app.acknowledge(w, r, "ignored")
		return
	}

	payment, err := paystack.NormalizePayment(ev, time.Now())
	if err != nil {
		webhookMalformed.Add(1)
		app.logger.Errorw("charge event failed normalization", "outcome", "malformed", "error", err.Error())
		app.acknowledge(w, r, "malformed")
		return
	}

	stored, created, err := app.ledger.Append(r.Context(), payment)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if !created {
		webhookDuplicate.Add(1)
		app.logger.Infow("duplicate webhook delivery",
			"outcome", "duplicate",
			"reference", stored.Reference,
		)
		app.acknowledge(w, r, "duplicate")
		return
	}

	webhookRecorded.Add(1)
	app.logger.Infow("payment recorded",
		"outcome", "recorded",
		"reference", stored.Reference,
		"amount", stored.Amount,
		"currency", stored.Currency,
		"channel", stored.Channel,
	)

	app.sendReceipt(stored)

	app.acknowledge(w, r, "recorded")
}

func (app *application) acknowledge(w http.ResponseWriter, r *http.Request, outcome string) {
	if err := writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "outcome": outcome}); err != nil {
		app.logger.Errorw("writing webhook ack", "error", err.Error())
	}
}

// sendReceipt mails the payer a receipt, best effort: a mail failure never
// affects the webhook response, the payment is already in the ledger.
func (app *application) sendReceipt(p *ledger.Payment) {
	if app.mailer == nil || p.Email == "" {
		return
	}

	payment := *p
	go func() {
		status, err := app.mailer.Send(mailer.PaymentReceiptTemplate, payment.Name, payment.Email, payment)
		if err != nil {
			app.logger.Errorw("sending payment receipt", "reference", payment.Reference, "error", err.Error())
			return
		}
		app.logger.Infow("payment receipt sent", "reference", payment.Reference, "status code", status)
	}()
}
