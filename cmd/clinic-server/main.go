package main

import (
	"context"
	crypto_rand "crypto/rand"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clinic/clinic/internal/config"
	"github.com/clinic/clinic/internal/domain/dentist"
	"github.com/clinic/clinic/internal/domain/legacy"
	"github.com/clinic/clinic/internal/domain/patient"
	"github.com/clinic/clinic/internal/domain/questionnaire"
	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/internal/platform/hipaa"
	"github.com/clinic/clinic/internal/platform/middleware"
)

const (
	version     = "0.1.0"
	tokenIssuer = "clinic"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "clinic-server",
		Short:        "Dental clinic records API server",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(riskCmd())
	rootCmd.AddCommand(dentistCmd())
	rootCmd.AddCommand(kioskTokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the clinic API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg != nil && cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// app holds the services shared by the server and the CLI commands.
type app struct {
	cfg    *config.Config
	pool   *pgxpool.Pool
	logger zerolog.Logger
	jwt    auth.JWTConfig
	tokens *auth.TokenIssuer

	patients       *patient.Service
	dentists       *dentist.Service
	questionnaires *questionnaire.Service
	legacy         *legacy.Service
}

// loadApp reads and validates configuration, opens the pool and builds the
// service graph. The caller closes a.pool.
func loadApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := newLogger(cfg)

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, err
	}

	a, err := buildApp(cfg, pool, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return a, nil
}

func buildApp(cfg *config.Config, pool *pgxpool.Pool, logger zerolog.Logger) (*app, error) {
	cipher, err := hipaa.NewFieldCipher(hipaa.CipherConfig{Key: cfg.EncryptionKey}, logger)
	if err != nil {
		return nil, err
	}
	boundary := hipaa.NewBoundary(cipher)

	signingKey, generated, err := resolveSigningKey(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}
	if generated {
		logger.Warn().Msg("JWT_SECRET not set; using a random signing key, tokens will not survive a restart")
	}
	jwtCfg := auth.JWTConfig{SigningKey: signingKey, Issuer: tokenIssuer, Skipper: auth.AuthSkipper}

	legacySvc := legacy.NewService(
		legacy.NewRepo(pool, boundary),
		db.Transactor(pool),
		legacy.ReadOptions{Retries: cfg.LegacyReadRetries, Interval: cfg.LegacyReadInterval},
		logger,
	)

	return &app{
		cfg:            cfg,
		pool:           pool,
		logger:         logger,
		jwt:            jwtCfg,
		tokens:         authIssuer(signingKey, cfg.JWTTTL),
		patients:       patient.NewService(patient.NewRepo(pool, boundary, cipher)),
		dentists:       dentist.NewService(dentist.NewRepo(pool, boundary, cipher)),
		questionnaires: questionnaire.NewService(questionnaire.NewRepo(pool, boundary), legacySvc, logger),
		legacy:         legacySvc,
	}, nil
}

// resolveSigningKey uses secret when set, otherwise a random 32-byte key.
// The second return value is true when the key was generated.
func resolveSigningKey(secret string) ([]byte, bool, error) {
	if secret != "" {
		return []byte(secret), false, nil
	}
	key := make([]byte, 32)
	if _, err := crypto_rand.Read(key); err != nil {
		return nil, false, fmt.Errorf("generate random signing key: %w", err)
	}
	return key, true, nil
}

func authIssuer(key []byte, ttl time.Duration) *auth.TokenIssuer {
	return auth.NewTokenIssuer(auth.JWTConfig{SigningKey: key, Issuer: tokenIssuer}, ttl)
}

func (a *app) routes(e *echo.Echo) {
	cfg := a.cfg

	e.Use(middleware.Recovery(a.logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(a.logger))
	e.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  cfg.CORSOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders:  []string{echo.HeaderAuthorization, echo.HeaderContentType, middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader, questionnaire.LegacySyncHeader},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	if cfg.RateLimitRPS > 0 {
		e.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimitRPS,
			BurstSize:         cfg.RateLimitBurst,
			IdleTTL:           10 * time.Minute,
		}))
	}

	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware(a.jwt))
	} else {
		e.Use(auth.JWTMiddleware(a.jwt))
	}
	e.Use(middleware.AccessAudit(hipaa.NewAccessLog(a.pool), a.logger))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/health/db", db.HealthHandler(a.pool))

	api := e.Group("/api/v1")
	dentist.NewHandler(a.dentists, a.tokens).
		WithLoginMiddleware(middleware.RateLimit(middleware.LoginRateLimitConfig())).
		RegisterRoutes(api)
	patient.NewHandler(a.patients).RegisterRoutes(api)
	questionnaire.NewHandler(a.questionnaires).RegisterRoutes(api)
	legacy.NewHandler(a.legacy).RegisterRoutes(api)
}

func runServer() error {
	a, err := loadApp(context.Background())
	if err != nil {
		logger := newLogger(nil)
		logger.Fatal().Err(err).Msg("failed to start")
	}
	defer a.pool.Close()
	logger := a.logger
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	a.routes(e)

	// Graceful shutdown
	go func() {
		addr := ":" + a.cfg.Port
		logger.Info().Str("addr", addr).Str("env", a.cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
