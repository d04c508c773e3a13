package main

import (
	"net/http"

	"stabilisha/internal/ledger"
	"stabilisha/internal/params"
)

// listTransactionsHandler godoc
//
//	@Summary		List recorded payments
//	@Description	Returns ledger records newest first. Consumed by the admin transactions table.
//	@Tags			payments
//	@Produce		json
//	@Param			limit	query		int				false	"Max records to return (default 15, max 100)"
//	@Success		200		{object}	map[string]any	"Envelope: { data: { transactions, count } }"
//	@Failure		500		{object}	ErrorResponse	"Internal Server Error"
//	@Router			/transactions [get]
func (app *application) listTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	pg := params.ParsePagination(r.URL.Query())

	transactions, err := app.ledger.ListRecent(r.Context(), pg.Limit)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	// Keep the empty case an empty array, not null, for the table renderer.
	if transactions == nil {
		transactions = []ledger.Payment{}
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]any{
		"transactions": transactions,
		"count":        len(transactions),
	}); err != nil {
		app.internalServerError(w, r, err)
	}
}
