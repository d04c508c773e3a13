package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"stabilisha/internal/paystack"
)

func registerUser(t *testing.T, mux http.Handler, email, userType string) {
	t.Helper()

	body := fmt.Sprintf(`{
		"full_name": "Jane Wanjiku",
		"email": %q,
		"phone": "0712345678",
		"location": "Nairobi",
		"user_type": %q,
		"password": "correct-horse"
	}`, email, userType)

	req := httptest.NewRequest(http.MethodPost, "/v1/authentication/user", strings.NewReader(body))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("register: got status %d: %s", rr.Code, rr.Body.String())
	}
}

func loginUser(t *testing.T, mux http.Handler, email, password string) (TokenResponse, int) {
	t.Helper()

	body := fmt.Sprintf(`{"email": %q, "password": %q}`, email, password)
	req := httptest.NewRequest(http.MethodPost, "/v1/authentication/token", strings.NewReader(body))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	var envelope struct {
		Data TokenResponse `json:"data"`
	}
	if rr.Code == http.StatusOK {
		if err := json.NewDecoder(rr.Body).Decode(&envelope); err != nil {
			t.Fatalf("decoding token response: %v", err)
		}
	}
	return envelope.Data, rr.Code
}

func TestRegisterAndLogin(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	registerUser(t, mux, "jane@example.com", "worker")

	if _, code := loginUser(t, mux, "jane@example.com", "wrong-password"); code != http.StatusUnauthorized {
		t.Errorf("wrong password: got status %d, want %d", code, http.StatusUnauthorized)
	}
	if _, code := loginUser(t, mux, "nobody@example.com", "correct-horse"); code != http.StatusUnauthorized {
		t.Errorf("unknown email: got status %d, want %d", code, http.StatusUnauthorized)
	}

	tokens, code := loginUser(t, mux, "jane@example.com", "correct-horse")
	if code != http.StatusOK {
		t.Fatalf("login: got status %d", code)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatal("login returned empty tokens")
	}
	if tokens.UserType != "worker" {
		t.Errorf("user_type = %q, want worker", tokens.UserType)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	registerUser(t, mux, "jane@example.com", "worker")

	body := `{
		"full_name": "Jane Again",
		"email": "JANE@example.com",
		"phone": "0712345678",
		"user_type": "worker",
		"password": "correct-horse"
	}`
	req := httptest.NewRequest(http.MethodPost, "/v1/authentication/user", strings.NewReader(body))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("duplicate email: got status %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestRegisterValidatesPayload(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	cases := map[string]string{
		"bad phone":      `{"full_name": "J", "email": "j@example.com", "phone": "12345", "user_type": "worker", "password": "correct-horse"}`,
		"bad user type":  `{"full_name": "J", "email": "j@example.com", "phone": "0712345678", "user_type": "admin", "password": "correct-horse"}`,
		"short password": `{"full_name": "J", "email": "j@example.com", "phone": "0712345678", "user_type": "worker", "password": "short"}`,
	}

	for name, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/v1/authentication/user", strings.NewReader(body))
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: got status %d, want %d", name, rr.Code, http.StatusBadRequest)
		}
	}
}

func TestDashboardRequiresBearerToken(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	for _, path := range []string{"/v1/wallet", "/v1/credit-score", "/v1/sacco/", "/v1/insurance/"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s without token: got status %d, want %d", path, rr.Code, http.StatusUnauthorized)
		}
	}
}

func TestCreditScoreWorkersOnly(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	registerUser(t, mux, "client@example.com", "client")
	tokens, code := loginUser(t, mux, "client@example.com", "correct-horse")
	if code != http.StatusOK {
		t.Fatalf("login: got status %d", code)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/credit-score", nil)
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("client credit score: got status %d, want %d", rr.Code, http.StatusForbidden)
	}
}

func TestWorkerDashboardFlow(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	registerUser(t, mux, "jane@example.com", "worker")
	tokens, code := loginUser(t, mux, "jane@example.com", "correct-horse")
	if code != http.StatusOK {
		t.Fatalf("login: got status %d", code)
	}

	// Feed the ledger so the wallet and score have something to work with.
	body := chargeSuccessBody("gig-1", 250000)
	if rr := deliver(t, mux, body, paystack.Signature(testSecret, body)); rr.Code != http.StatusOK {
		t.Fatalf("webhook: got status %d", rr.Code)
	}

	authedGet := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)
		return rr
	}

	rr := authedGet("/v1/wallet")
	if rr.Code != http.StatusOK {
		t.Fatalf("wallet: got status %d: %s", rr.Code, rr.Body.String())
	}
	var walletResp struct {
		Data struct {
			Wallet struct {
				BalanceKES    float64 `json:"balance_kes"`
				TotalEarnings float64 `json:"total_earnings"`
			} `json:"wallet"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&walletResp); err != nil {
		t.Fatal(err)
	}
	if walletResp.Data.Wallet.TotalEarnings != 2500.00 {
		t.Errorf("total_earnings = %v, want 2500.00", walletResp.Data.Wallet.TotalEarnings)
	}

	rr = authedGet("/v1/credit-score")
	if rr.Code != http.StatusOK {
		t.Fatalf("credit score: got status %d: %s", rr.Code, rr.Body.String())
	}
	var scoreResp struct {
		Data struct {
			CreditScore struct {
				Score int `json:"score"`
			} `json:"credit_score"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&scoreResp); err != nil {
		t.Fatal(err)
	}
	if scoreResp.Data.CreditScore.Score < 300 || scoreResp.Data.CreditScore.Score > 850 {
		t.Errorf("score = %d, want within [300, 850]", scoreResp.Data.CreditScore.Score)
	}

	// Contribute part of the balance to the SACCO.
	contribute := `{"amount": 500}`
	req := httptest.NewRequest(http.MethodPost, "/v1/sacco/contribute", strings.NewReader(contribute))
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("sacco contribute: got status %d: %s", rr.Code, rr.Body.String())
	}

	// More than the remaining balance must bounce.
	over := `{"amount": 99999}`
	req = httptest.NewRequest(http.MethodPost, "/v1/sacco/contribute", strings.NewReader(over))
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("overdrawn contribution: got status %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
