package main

import (
	"net/http"
	"time"

	"stabilisha/internal/credit"
	"stabilisha/internal/ledger"
	"stabilisha/internal/users"
	"stabilisha/internal/wallet"
)

// defaultAvgRating stands in until gig reviews feed the scorer.
const defaultAvgRating = 4.5

// creditProfile assembles the scorer input from what the platform knows
// about the worker today: the payment ledger and the SACCO account. Each
// recorded payment counts as one completed gig.
func (app *application) creditProfile(r *http.Request, userID int64, createdAt time.Time) (credit.Profile, error) {
	payments, err := app.ledger.ListRecent(r.Context(), ledger.DefaultListLimit)
	if err != nil {
		return credit.Profile{}, err
	}

	contributions := app.sacco.TotalFor(userID)
	summary := wallet.BuildSummary(payments, contributions, wallet.DefaultKESPerUSD)

	daysActive := int(time.Since(createdAt).Hours() / 24)
	if daysActive < 0 {
		daysActive = 0
	}

	return credit.Profile{
		TotalEarnings:      summary.TotalEarnings,
		WalletBalance:      summary.BalanceKES,
		CompletedGigs:      len(payments),
		AvgRating:          defaultAvgRating,
		DaysActive:         daysActive,
		SaccoContributions: contributions,
	}, nil
}

// creditScoreHandler godoc
//
//	@Summary		Credit score
//	@Description	Rule-based score on the 300-850 band with factor breakdown and loan eligibility. Workers only.
//	@Tags			credit
//	@Produce		json
//	@Success		200	{object}	map[string]any	"Envelope: { data: { credit_score } }"
//	@Failure		401	{object}	ErrorResponse	"Unauthorized"
//	@Failure		403	{object}	ErrorResponse	"Only workers have credit scores"
//	@Security		ApiKeyAuth
//	@Router			/credit-score [get]
func (app *application) creditScoreHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	if user.UserType != users.TypeWorker {
		app.logger.Warnw("credit score requested by non-worker", "user_id", user.ID)
		app.forbiddenResponse(w, r)
		return
	}

	profile, err := app.creditProfile(r, user.ID, user.CreatedAt)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	score := credit.Calculate(profile)

	if err := app.jsonResponse(w, http.StatusOK, map[string]any{
		"credit_score":    score,
		"last_calculated": time.Now(),
	}); err != nil {
		app.internalServerError(w, r, err)
	}
}
