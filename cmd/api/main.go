package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/safar/go-storefront/internal/api"
	"github.com/safar/go-storefront/internal/checkout"
	"github.com/safar/go-storefront/internal/config"
	"github.com/safar/go-storefront/internal/database"
	"github.com/safar/go-storefront/internal/logger"
	"github.com/safar/go-storefront/internal/session"
	"github.com/safar/go-storefront/internal/storage"
	"github.com/safar/go-storefront/internal/store"
	"go.uber.org/zap"
)

const redisKeyPrefix = "storefront:"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Init logger: %v", err)
	}
	defer zl.Sync()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	kv, closeKV, err := openStorage(cfg)
	if err != nil {
		zl.Fatal("Open storage", zap.String("backend", cfg.Storage.Backend), zap.Error(err))
	}
	defer closeKV()
	zl.Info("Storage ready", zap.String("backend", cfg.Storage.Backend))

	sessions := session.NewManager(store.NewSessionStore(kv), session.Config{
		Credentials: session.Credentials{
			Username: cfg.Admin.Username,
			Password: cfg.Admin.Password,
			Email:    cfg.Admin.Email,
		},
		Duration:        cfg.Session.Duration,
		IdleTimeout:     cfg.Session.IdleTimeout,
		ActivitySignals: cfg.Session.ActivitySignals,
	},
		session.WithLogger(zl.Named("session")),
		session.WithNotifier(func(n session.Notice) {
			zl.Info("Admin signed out",
				zap.String("reason", n.Reason),
				zap.String("username", n.User.Username),
				zap.Time("at", n.At))
		}),
	)
	defer sessions.Close()

	var limiter *api.RateLimiter
	if cfg.Session.LoginRatePerMin > 0 {
		limiter = api.NewRateLimiter(cfg.Session.LoginRatePerMin, cfg.Session.LoginRateBurst)
	}

	srv := api.NewServer(api.Deps{
		KV:           kv,
		Sessions:     sessions,
		Checkout:     checkout.NewService(kv, cfg.Cart.Pricing(), cfg.Cart.MaxQuantity, zl.Named("checkout")),
		Tokens:       api.NewTokenIssuer(cfg.Session.TokenSecret),
		Pricing:      cfg.Cart.Pricing(),
		MaxQuantity:  cfg.Cart.MaxQuantity,
		LoginLimiter: limiter,
		Logger:       zl,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zl.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("Server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	zl.Info("Shutting down gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		zl.Error("Shutdown error", zap.Error(err))
	}
	zl.Info("Server shutdown complete")
}

func openStorage(cfg *config.Config) (storage.KV, func(), error) {
	switch cfg.Storage.Backend {
	case config.StoragePostgres:
		db, err := database.NewConnection(&cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewPostgresKV(db), func() { db.Close() }, nil

	case config.StorageRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client, err := storage.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewRedisKV(client, redisKeyPrefix, cfg.Redis.KeyTTL), func() { client.Close() }, nil

	default:
		return storage.NewMemoryKV(), func() {}, nil
	}
}
