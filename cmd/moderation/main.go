package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"moderation/internal/config"
	"moderation/internal/jwtsigner"
	"moderation/internal/notify"
	"moderation/internal/observability/logging"
	"moderation/internal/observability/metrics"
	impl "moderation/internal/service/impl"
	"moderation/internal/store"
	httpx "moderation/internal/transport/http"
	"moderation/pkg/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger is not configured yet
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(logging.Config{
		ServiceName: cfg.AppName,
		Environment: cfg.Environment,
		Version:     cfg.AppVersion,
		Level:       cfg.LogLevel,
	})
	slog.SetDefault(logger)
	logger.Info("starting service")

	// 1) DB
	gdb, err := db.OpenGorm(db.Config{
		DSN:             cfg.DatabaseURL,
		LogSQL:          cfg.DBLogSQL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLife,
	})
	if err != nil {
		logger.Error("gorm open", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close(gdb) }()

	st := store.New(gdb)
	if cfg.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := st.AutoMigrate(ctx)
		cancel()
		if err != nil {
			logger.Error("automigrate", "error", err)
			os.Exit(1)
		}
	}

	// 2) Services
	signer, err := jwtsigner.New(cfg.Algorithm, cfg.SecretKey, cfg.AppName)
	if err != nil {
		logger.Error("token signer", "error", err)
		os.Exit(1)
	}
	pw := impl.NewPasswordServiceBcrypt(cfg.BcryptCost)
	ts := impl.NewTokenService(signer, cfg.AccessTokenTTL)
	as := impl.NewAuthServiceImpl(st, pw, ts)

	notifier := notify.NewWebhookNotifier(notify.Config{URL: cfg.WebhookURL, Timeout: cfg.NotifyTimeout})
	if cfg.WebhookURL == "" {
		logger.Warn("N8N_WEBHOOK_URL is empty, approved drafts will not be forwarded")
	}
	ms := impl.NewModerationServiceImpl(st, notifier)

	metrics.MustRegister(cfg.AppName)

	// 3) HTTP router
	mux := httpx.NewRouter(as, ms, httpx.Options{
		APIPrefix:      cfg.APIPrefix,
		CORSOrigins:    cfg.CORSOrigins,
		LoginRateLimit: cfg.LoginRateLimit,
		TrustProxy:     cfg.TrustProxy,
		AppName:        cfg.AppName,
		AppVersion:     cfg.AppVersion,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("moderation service listening", "addr", srv.Addr, "api_prefix", cfg.APIPrefix, "algorithm", signer.Algorithm())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown", "error", err)
		}
	}

	// let in-flight webhook deliveries finish
	notifier.Wait()
	logger.Info("stopped")
}
