package main

import (
	"net/http"

	"stabilisha/internal/chatbot"
	"stabilisha/internal/credit"
	"stabilisha/internal/users"
)

type ChatbotPayload struct {
	Message string `json:"message" validate:"required,max=1000"`
}

// chatbotHandler godoc
//
//	@Summary		Financial assistant
//	@Description	Rule-based replies grounded in the worker's ledger, score and SACCO numbers.
//	@Tags			chatbot
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		ChatbotPayload	true	"User message"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	ErrorResponse	"Message is required"
//	@Failure		401		{object}	ErrorResponse	"Unauthorized"
//	@Security		ApiKeyAuth
//	@Router			/chatbot [post]
func (app *application) chatbotHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload ChatbotPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := chatbot.Context{}
	if user.UserType == users.TypeWorker {
		profile, err := app.creditProfile(r, user.ID, user.CreatedAt)
		if err != nil {
			app.internalServerError(w, r, err)
			return
		}
		score := credit.Calculate(profile)

		ctx.TotalEarnings = profile.TotalEarnings
		ctx.CreditScore = score.Score
		ctx.GigConsistency = score.Factors.GigConsistency
	}

	reply := app.chatbot.Reply(payload.Message, ctx)

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{"response": reply}); err != nil {
		app.internalServerError(w, r, err)
	}
}
