// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/QuagHug/pet-service/internal/config"
	"github.com/QuagHug/pet-service/internal/domain/ports/adapter"
	pg "github.com/QuagHug/pet-service/internal/infra/db/postgres"
	"github.com/QuagHug/pet-service/internal/infra/logging"
	"github.com/QuagHug/pet-service/internal/infra/momo"
	red "github.com/QuagHug/pet-service/internal/infra/redis"
	"github.com/QuagHug/pet-service/internal/infra/sched"
	"github.com/QuagHug/pet-service/internal/infra/stripecheckout"
	"github.com/QuagHug/pet-service/internal/infra/web"
	"github.com/QuagHug/pet-service/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, looser checks)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("developer mode enabled")
	}

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()

	// ---- Redis (optional; cache, locks and rate limits degrade without it) ----
	var (
		cache       *red.Cache
		locker      *red.RedisLocker
		rateLimiter *red.RateLimiter
	)
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connect failed")
		}
		defer redisClient.Close()
		cache = red.NewCache(redisClient)
		locker = red.NewLocker(redisClient)
		rateLimiter = red.NewRateLimiter(redisClient)
	} else {
		logger.Warn().Msg("redis not configured; caching, locking and rate limiting disabled")
	}

	// ---- Repositories ----
	userRepo := pg.NewUserRepo(pool)
	orderRepo := pg.NewOrderRepo(pool)
	recordRepo := pg.NewPaymentRecordRepo(pool)
	favoriteRepo := pg.NewFavoriteRepo(pool)
	providerRepo := pg.NewProviderRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Payment gateways ----
	momoGateway := momo.NewGateway(momo.Config{
		Endpoint:    cfg.Payment.Momo.Endpoint,
		PartnerCode: cfg.Payment.Momo.PartnerCode,
		AccessKey:   cfg.Payment.Momo.AccessKey,
		SecretKey:   cfg.Payment.Momo.SecretKey,
		PartnerName: cfg.Payment.Momo.PartnerName,
		StoreID:     cfg.Payment.Momo.StoreID,
		RedirectURL: cfg.Payment.Momo.RedirectURL,
		IPNURL:      cfg.Payment.Momo.IPNURL,
		RequestType: cfg.Payment.Momo.RequestType,
		Timeout:     cfg.Payment.Momo.Timeout,
	}, logger)

	var stripeGateway *stripecheckout.Gateway
	if cfg.Payment.Stripe.SecretKey != "" {
		stripeGateway = stripecheckout.NewGateway(cfg.Payment.Stripe, logger)
	} else {
		logger.Warn().Msg("stripe not configured; card payments disabled")
	}

	// ---- Use cases ----
	// Optional adapters are assigned only when configured so the use cases
	// see a true nil interface, not a typed nil.
	var cardGateway adapter.CardGateway
	if stripeGateway != nil {
		cardGateway = stripeGateway
	}
	membershipUC := usecase.NewMembershipUseCase(
		userRepo, orderRepo, recordRepo,
		momoGateway, cardGateway, txManager,
		cfg.Membership.PriceVND, cfg.Membership.DurationDays, cfg.Membership.OrderInfo,
		logger,
	)
	userUC := usecase.NewUserUseCase(userRepo, favoriteRepo, providerRepo, logger)

	var dirCache adapter.Cache
	if cache != nil {
		dirCache = cache
	}
	directoryUC := usecase.NewDirectoryUseCase(providerRepo, dirCache, txManager, logger)

	// ---- HTTP server ----
	auth := web.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	var stripeVer web.StripeVerifier
	if stripeGateway != nil {
		stripeVer = stripeGateway
	}
	var limiter adapter.RateLimiter
	if rateLimiter != nil {
		limiter = rateLimiter
	}
	srv := web.NewServer(membershipUC, userUC, directoryUC, auth, momoGateway, stripeVer, limiter, cfg.Client.BaseURL, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Background workers ----
	var schedLocker adapter.Locker
	if locker != nil {
		schedLocker = locker
	}
	expiryWorker := sched.NewExpiryWorker(cfg.Scheduler.ExpiryInterval, membershipUC, schedLocker, logger)
	go func() { _ = expiryWorker.Run(ctx) }()

	reconciler := sched.NewOrderReconciler(
		membershipUC, orderRepo, momoGateway, schedLocker,
		cfg.Scheduler.ReconcileInterval, cfg.Scheduler.ReconcileStaleAfter,
		logger,
	)
	go func() { _ = reconciler.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
}
