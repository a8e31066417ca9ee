package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weddingplan/internal/billing"
	"weddingplan/internal/config"
	"weddingplan/internal/controller"
	"weddingplan/internal/database"
	"weddingplan/internal/feedback"
	"weddingplan/internal/mirror"
	"weddingplan/internal/partner"
	"weddingplan/internal/planner"
	"weddingplan/internal/queue"
	"weddingplan/internal/repository"
	"weddingplan/internal/routes"
	"weddingplan/internal/store"
	"weddingplan/internal/templates"
	"weddingplan/internal/worker"
	"weddingplan/pkg/logger"

	"github.com/gin-gonic/gin"
)

const laneBuffer = 256

func main() {
	ctx := context.Background()
	cfg := config.Get()
	logger.SetLevel(cfg.LogLevel)

	// The local store is the only hard dependency
	local, closeLocal, err := openLocal(ctx, cfg)
	if err != nil {
		logger.Error(ctx, "Local store not available; exiting", "backend", cfg.LocalStore, "error", err)
		os.Exit(1)
	}
	defer closeLocal()

	catalog, err := templates.Default()
	if err != nil {
		logger.Error(ctx, "Template catalog invalid; exiting", "error", err)
		os.Exit(1)
	}

	probes := map[string]controller.Probe{"local": local.Ping}

	var (
		remote    mirror.Remote
		publisher mirror.Publisher
		pending   *worker.Pending
		premium   billing.Premium
		profiles  partner.Profiles
	)
	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	if db := openRemote(ctx, cfg); db != nil {
		defer db.Close()
		repo := repository.New(db)
		remote, premium, profiles = repo, repo, repo
		probes["postgres"] = repo.Ping

		// Reads keep local records until their queued write is applied
		pending = worker.NewPending(worker.DefaultPendingTTL)
		applier := pending.Track(worker.ReplicaApplier{Replica: repo})
		if len(cfg.KafkaBrokers) > 0 {
			queue.EnsureTopic(ctx, cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaPartitions)
			kp := queue.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
			defer kp.Close()
			publisher = kp
			// Consumes the mirror topic and writes to Postgres
			go worker.Run(workerCtx, cfg.KafkaBrokers, cfg.KafkaTopic, applier)
		} else {
			lanes := worker.NewLanes(cfg.MirrorLanes, laneBuffer, applier)
			defer lanes.Close()
			publisher = lanes
			logger.Info(ctx, "Mirror writes applied in process", "lanes", cfg.MirrorLanes)
		}
	} else {
		logger.Info(ctx, "Remote mirror not configured; running local only")
	}

	h := &controller.Handler{
		Mirror:  mirror.New(remote, publisher).WithPending(pending),
		Planner: planner.New(catalog, planner.WithUpcomingDays(cfg.UpcomingDays)),
		Partner: partner.New(profiles),
		Billing: billing.New(billing.Config{
			SecretKey:     cfg.StripeSecretKey,
			WebhookSecret: cfg.StripeWebhookSecret,
			PriceID:       cfg.StripePriceID,
		}, premium),
		Feedback: feedback.New(cfg.FeedbackURL, cfg.FeedbackProjectID, cfg.FeedbackTimeout),
		Probes:   probes,
	}

	gin.SetMode(gin.ReleaseMode)
	server := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: routes.Router(h, routes.Options{
			Local:       local,
			JWTSecret:   cfg.JWTSecret,
			PremiumGate: cfg.PremiumGate,
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	go func() {
		logger.Info(ctx, "HTTP server listening", "port", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Server shutdown error", "error", err)
	}
	logger.Info(ctx, "Server stopped")
}

func openLocal(ctx context.Context, cfg *config.Config) (store.Backend, func() error, error) {
	switch cfg.LocalStore {
	case config.StoreSQLite:
		b, err := store.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return b, b.Close, nil
	case config.StoreRedis:
		b, err := store.OpenRedis(ctx, cfg.RedisURL, cfg.RedisPoolSize)
		if err != nil {
			return nil, nil, err
		}
		return b, b.Close, nil
	case config.StoreMemory:
		logger.Warn(ctx, "Using in-memory local store; data is lost on restart")
		return store.NewMemoryBackend(), func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("unknown LOCAL_STORE %q", cfg.LocalStore)
}

// openRemote returns nil when Postgres is not configured or not usable; the
// server then runs local only.
func openRemote(ctx context.Context, cfg *config.Config) *sql.DB {
	if !cfg.RemoteConfigured() {
		return nil
	}
	db, err := database.Open(ctx, cfg.DatabaseURL, cfg.DBPoolSize)
	if err != nil {
		logger.Warn(ctx, "Postgres unavailable; remote mirror disabled", "error", err)
		return nil
	}
	if err := database.EnsureSchema(ctx, db); err != nil {
		logger.Warn(ctx, "Schema creation failed; remote mirror disabled", "error", err)
		db.Close()
		return nil
	}
	return db
}
