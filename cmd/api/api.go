package main

import (
	"context"
	"errors"
	"expvar"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stabilisha/internal/auth"
	"stabilisha/internal/chatbot"
	"stabilisha/internal/insurance"
	"stabilisha/internal/ledger"
	"stabilisha/internal/mailer"
	"stabilisha/internal/ratelimiter"
	"stabilisha/internal/sacco"
	"stabilisha/internal/users"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type application struct {
	config        config
	logger        *zap.SugaredLogger
	ledger        ledger.Store
	users         users.Store
	sacco         *sacco.Store
	claims        *insurance.ClaimStore
	chatbot       *chatbot.Responder
	mailer        mailer.Client // nil disables receipt mail
	authenticator auth.Authenticator
	rateLimiter   ratelimiter.Limiter
}

type config struct {
	addr        string
	env         string
	frontendURL string
	paystack    paystackConfig
	db          dbConfig
	mail        mailConfig
	auth        authConfig
	rateLimiter ratelimiter.Config
}

type paystackConfig struct {
	// secret signs every webhook body. Empty means signature checks fail
	// closed: nothing gets ingested until the secret is configured.
	secret string
}

type dbConfig struct {
	addr        string
	maxConns    int32
	maxIdleTime string
}

type mailConfig struct {
	fromEmail string
	mailtrap  mailTrapConfig
}

type mailTrapConfig struct {
	apiKey string
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}

type tokenConfig struct {
	secret          string
	refreshSecret   string
	accessTokenExp  time.Duration
	refreshTokenExp time.Duration
	iss             string
}

type basicConfig struct {
	user string
	pass string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "x-paystack-signature"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(app.RateLimiterMiddleware)

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		// Provider-facing: Paystack signs these calls itself, no session.
		r.Post("/paystack/webhook", app.paystackWebhookHandler)

		// Consumed by the admin transactions table.
		r.Get("/transactions", app.listTransactionsHandler)

		r.Route("/authentication", func(r chi.Router) {
			r.Post("/user", app.registerUserHandler)
			r.Post("/token", app.createTokenHandler)
		})

		// Dashboard APIs, all behind a bearer token.
		r.Group(func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)

			r.Get("/wallet", app.walletHandler)
			r.Get("/credit-score", app.creditScoreHandler)
			r.Post("/chatbot", app.chatbotHandler)

			r.Route("/sacco", func(r chi.Router) {
				r.Get("/", app.saccoOverviewHandler)
				r.Post("/contribute", app.saccoContributeHandler)
			})

			r.Route("/insurance", func(r chi.Router) {
				r.Get("/", app.insuranceCoversHandler)
				r.Get("/claims", app.listClaimsHandler)
				r.Post("/claims", app.createClaimHandler)
			})
		})
	})

	return r
}

func (app *application) run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
