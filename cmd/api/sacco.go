package main

import (
	"errors"
	"fmt"
	"net/http"

	"stabilisha/internal/ledger"
	"stabilisha/internal/sacco"
	"stabilisha/internal/wallet"
)

// saccoOverviewHandler godoc
//
//	@Summary		SACCO account overview
//	@Tags			sacco
//	@Produce		json
//	@Success		200	{object}	map[string]any	"Envelope: { data: { sacco } }"
//	@Failure		401	{object}	ErrorResponse	"Unauthorized"
//	@Security		ApiKeyAuth
//	@Router			/sacco [get]
func (app *application) saccoOverviewHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	account, err := app.sacco.GetOrCreate(user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]any{"sacco": account}); err != nil {
		app.internalServerError(w, r, err)
	}
}

type ContributePayload struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// saccoContributeHandler godoc
//
//	@Summary		Contribute to the SACCO
//	@Description	Moves funds from the wallet into the member's SACCO account and issues a receipt.
//	@Tags			sacco
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		ContributePayload	true	"Contribution amount"
//	@Success		201		{object}	map[string]any		"Envelope: { data: { contribution, account } }"
//	@Failure		400		{object}	ErrorResponse		"Invalid amount or insufficient balance"
//	@Failure		401		{object}	ErrorResponse		"Unauthorized"
//	@Security		ApiKeyAuth
//	@Router			/sacco/contribute [post]
func (app *application) saccoContributeHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload ContributePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	// The wallet must cover the contribution.
	payments, err := app.ledger.ListRecent(r.Context(), ledger.DefaultListLimit)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	summary := wallet.BuildSummary(payments, app.sacco.TotalFor(user.ID), wallet.DefaultKESPerUSD)
	if summary.BalanceKES < payload.Amount {
		app.badRequestResponse(w, r, fmt.Errorf("insufficient balance: have %.2f, need %.2f", summary.BalanceKES, payload.Amount))
		return
	}

	contribution, err := app.sacco.Contribute(user.ID, payload.Amount)
	if err != nil {
		switch {
		case errors.Is(err, sacco.ErrInvalidAmount):
			app.badRequestResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	account, err := app.sacco.GetOrCreate(user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.logger.Infow("sacco contribution recorded",
		"user_id", user.ID,
		"amount", payload.Amount,
		"receipt", contribution.ReceiptNo,
	)

	if err := app.jsonResponse(w, http.StatusCreated, map[string]any{
		"contribution": contribution,
		"account":      account,
	}); err != nil {
		app.internalServerError(w, r, err)
	}
}
