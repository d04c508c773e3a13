package main

import (
	"net/http"

	"stabilisha/internal/ledger"
	"stabilisha/internal/params"
	"stabilisha/internal/wallet"
)

// walletHandler godoc
//
//	@Summary		Wallet overview
//	@Description	Balances derived from the payment ledger and SACCO debits, plus recent transactions.
//	@Tags			wallet
//	@Produce		json
//	@Success		200	{object}	map[string]any	"Envelope: { data: { wallet, transactions } }"
//	@Failure		401	{object}	ErrorResponse	"Unauthorized"
//	@Failure		500	{object}	ErrorResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/wallet [get]
func (app *application) walletHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	payments, err := app.ledger.ListRecent(r.Context(), ledger.DefaultListLimit)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	summary := wallet.BuildSummary(payments, app.sacco.TotalFor(user.ID), wallet.DefaultKESPerUSD)

	pg := params.ParsePagination(r.URL.Query())
	recent := payments
	if len(recent) > pg.Limit {
		recent = recent[:pg.Limit]
	}
	if recent == nil {
		recent = []ledger.Payment{}
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]any{
		"wallet":       summary,
		"transactions": recent,
	}); err != nil {
		app.internalServerError(w, r, err)
	}
}
