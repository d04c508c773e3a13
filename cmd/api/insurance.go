package main

import (
	"errors"
	"net/http"

	"stabilisha/internal/insurance"
)

// insuranceCoversHandler godoc
//
//	@Summary		Insurance cover catalog
//	@Tags			insurance
//	@Produce		json
//	@Success		200	{object}	map[string]any	"Envelope: { data: { covers } }"
//	@Failure		401	{object}	ErrorResponse	"Unauthorized"
//	@Security		ApiKeyAuth
//	@Router			/insurance [get]
func (app *application) insuranceCoversHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.jsonResponse(w, http.StatusOK, map[string]any{
		"covers": insurance.Covers(),
	}); err != nil {
		app.internalServerError(w, r, err)
	}
}

type ClaimPayload struct {
	CoverID        string  `json:"cover_id" validate:"required"`
	ClaimType      string  `json:"claim_type" validate:"required,max=50"`
	Amount         float64 `json:"amount" validate:"required,gt=0"`
	Description    string  `json:"description" validate:"required,max=2000"`
	GeotaggedImage string  `json:"geotagged_image" validate:"omitempty,url"`
}

// createClaimHandler godoc
//
//	@Summary		Submit an insurance claim
//	@Tags			insurance
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		ClaimPayload	true	"Claim details"
//	@Success		201		{object}	map[string]any	"Envelope: { data: { claim } }"
//	@Failure		400		{object}	ErrorResponse	"Missing required fields"
//	@Failure		401		{object}	ErrorResponse	"Unauthorized"
//	@Security		ApiKeyAuth
//	@Router			/insurance/claims [post]
func (app *application) createClaimHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload ClaimPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	claim, err := app.claims.Submit(
		user.ID,
		payload.CoverID,
		payload.ClaimType,
		payload.Amount,
		payload.Description,
		payload.GeotaggedImage,
	)
	if err != nil {
		switch {
		case errors.Is(err, insurance.ErrUnknownCover):
			app.badRequestResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.logger.Infow("insurance claim submitted",
		"user_id", user.ID,
		"claim_id", claim.ID,
		"cover", claim.CoverID,
		"amount", claim.Amount,
	)

	if err := app.jsonResponse(w, http.StatusCreated, map[string]any{"claim": claim}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listClaimsHandler godoc
//
//	@Summary		List the member's claims
//	@Tags			insurance
//	@Produce		json
//	@Success		200	{object}	map[string]any	"Envelope: { data: { claims } }"
//	@Failure		401	{object}	ErrorResponse	"Unauthorized"
//	@Security		ApiKeyAuth
//	@Router			/insurance/claims [get]
func (app *application) listClaimsHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	claims := app.claims.ListByUser(user.ID)
	if claims == nil {
		claims = []insurance.Claim{}
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]any{"claims": claims}); err != nil {
		app.internalServerError(w, r, err)
	}
}
