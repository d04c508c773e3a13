package main

import (
	"expvar"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"time"

	"stabilisha/internal/auth"
	"stabilisha/internal/chatbot"
	"stabilisha/internal/db"
	"stabilisha/internal/insurance"
	"stabilisha/internal/ledger"
	"stabilisha/internal/mailer"
	"stabilisha/internal/ratelimiter"
	"stabilisha/internal/sacco"
	"stabilisha/internal/users"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoadRateLimiterConfig retrieves rate limiter settings from environment variables
func LoadRateLimiterConfig() ratelimiter.Config {
	defaultRequests := 200
	defaultEnabled := false

	requestsPerTimeFrame := defaultRequests
	if val, exists := os.LookupEnv("RATELIMITER_REQUESTS_COUNT"); exists {
		if parsedVal, err := strconv.Atoi(val); err == nil {
			requestsPerTimeFrame = parsedVal
		} else {
			fmt.Println("Invalid RATELIMITER_REQUESTS_COUNT, defaulting to", defaultRequests)
		}
	}

	enabled := defaultEnabled
	if val, exists := os.LookupEnv("RATE_LIMITER_ENABLED"); exists {
		if parsedVal, err := strconv.ParseBool(val); err == nil {
			enabled = parsedVal
		} else {
			fmt.Println("Invalid RATE_LIMITER_ENABLED, defaulting to", defaultEnabled)
		}
	}

	return ratelimiter.Config{
		RequestsPerTimeFrame: requestsPerTimeFrame,
		TimeFrame:            5 * time.Second,
		Enabled:              enabled,
	}
}

// NewLogger creates a new zap logger with color.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)

	level := zapcore.InfoLevel

	core := zapcore.NewCore(consoleEncoder, zapcore.NewMultiWriteSyncer(zapcore.AddSync(os.Stdout)), level)

	logger := zap.New(core)

	return logger.Sugar(), nil
}

var version = "0.3.0"

func envOr(key, fallback string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return fallback
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading configuration from the environment")
	}

	maxConns := int32(10)
	if val, exists := os.LookupEnv("DB_MAX_CONNS"); exists {
		parsedVal, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("Invalid value for DB_MAX_CONNS: %v", err)
		}
		maxConns = int32(parsedVal)
	}

	cfg := config{
		addr:        envOr("ADDR", ":8080"),
		env:         envOr("ENV", "development"),
		frontendURL: os.Getenv("FRONTEND_URL"),
		paystack: paystackConfig{
			secret: os.Getenv("PAYSTACK_SECRET_KEY"),
		},
		db: dbConfig{
			addr:        os.Getenv("DB_ADDR"),
			maxConns:    maxConns,
			maxIdleTime: envOr("DB_MAX_IDLE_TIME", "15m"),
		},
		mail: mailConfig{
			fromEmail: os.Getenv("MAIL_FROM_EMAIL"),
			mailtrap: mailTrapConfig{
				apiKey: os.Getenv("MAILTRAP_API_KEY"),
			},
		},
		auth: authConfig{
			basic: basicConfig{
				user: os.Getenv("AUTH_BASIC_USER"),
				pass: os.Getenv("AUTH_BASIC_PASS"),
			},
			token: tokenConfig{
				secret:          os.Getenv("AUTH_TOKEN_SECRET"),
				refreshSecret:   os.Getenv("AUTH_TOKEN_REFRESH_SECRET"),
				accessTokenExp:  time.Hour * 24 * 3, // 3 days
				refreshTokenExp: time.Hour * 24 * 9, // 9 days
				iss:             "Stabilisha",
			},
		},
		rateLimiter: LoadRateLimiterConfig(),
	}

	logger, err := NewLogger()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		return
	}
	defer logger.Sync()

	if cfg.paystack.secret == "" {
		logger.Warn("PAYSTACK_SECRET_KEY is not set: every webhook delivery will be rejected")
	}

	// Stores. With DB_ADDR set, payments and users live in Postgres;
	// without it the service runs entirely in memory, which is how the
	// local dashboard and the handler tests run.
	var (
		ledgerStore ledger.Store
		userStore   users.Store
	)
	if cfg.db.addr != "" {
		pool, err := db.New(cfg.db.addr, cfg.db.maxConns, cfg.db.maxIdleTime)
		if err != nil {
			logger.Fatal(err)
		}
		defer pool.Close()
		logger.Info("database connection pool established")

		ledgerStore = ledger.NewPostgresStore(pool)
		userStore = users.NewPostgresStore(pool)

		expvar.Publish("database", expvar.Func(func() any {
			stat := pool.Stat()
			return map[string]any{
				"total_conns":    stat.TotalConns(),
				"idle_conns":     stat.IdleConns(),
				"acquired_conns": stat.AcquiredConns(),
				"acquire_count":  stat.AcquireCount(),
			}
		}))
	} else {
		memLedger := ledger.NewMemoryStore()
		ledgerStore = memLedger
		userStore = users.NewMemoryStore()
		logger.Warn("DB_ADDR is not set, using in-memory stores")

		expvar.Publish("ledger_size", expvar.Func(func() any {
			return memLedger.Len()
		}))
	}

	saccoStore, err := sacco.NewStore(envOr("SACCO_RECEIPT_SALT", "stabilisha-sacco"))
	if err != nil {
		logger.Fatal(err)
	}

	// Receipt mail is optional: without an API key the webhook pipeline
	// still records payments, it just skips the email.
	var mailClient mailer.Client
	if cfg.mail.mailtrap.apiKey != "" {
		mailClient, err = mailer.NewMailTrapClient(cfg.mail.mailtrap.apiKey, cfg.mail.fromEmail)
		if err != nil {
			logger.Fatal(err)
		}
	} else {
		logger.Warn("MAILTRAP_API_KEY is not set, payment receipts disabled")
	}

	rateLimiter := ratelimiter.NewFixedWindowLimiter(
		cfg.rateLimiter.RequestsPerTimeFrame,
		cfg.rateLimiter.TimeFrame,
	)

	jwtAuthenticator := auth.NewJWTAuthenticator(
		cfg.auth.token.secret,
		cfg.auth.token.refreshSecret,
		cfg.auth.token.iss,
		cfg.auth.token.iss,
		cfg.auth.token.accessTokenExp,
		cfg.auth.token.refreshTokenExp,
	)

	app := &application{
		config:        cfg,
		logger:        logger,
		ledger:        ledgerStore,
		users:         userStore,
		sacco:         saccoStore,
		claims:        insurance.NewClaimStore(),
		chatbot:       chatbot.New(),
		mailer:        mailClient,
		authenticator: jwtAuthenticator,
		rateLimiter:   rateLimiter,
	}

	// Metrics collected at http://localhost:8080/v1/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.mount()

	logger.Fatal(app.run(mux))
}
