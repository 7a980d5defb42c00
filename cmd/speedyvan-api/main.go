// README: Entry point; loads config, wires pricing, maps and storage, starts the HTTP server.
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

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"speedyvan/internal/ai"
	"speedyvan/internal/config"
	httptransport "speedyvan/internal/http"
	"speedyvan/internal/infra"
	"speedyvan/internal/maps"
	"speedyvan/internal/metrics"
	"speedyvan/internal/modules/pricing"
	"speedyvan/internal/service"
	"speedyvan/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := infra.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	tariff := pricing.DefaultConfig()
	if err := tariff.Validate(); err != nil {
		return err
	}

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		return err
	}
	defer dbPool.Close()
	if err := infra.Migrate(ctx, dbPool, migrations.FS); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics.Register(reg)

	gen, closeGen, err := ai.NewGenerator(ctx, cfg.AI)
	if err != nil {
		return err
	}
	defer closeGen()

	opts := []pricing.ServiceOption{
		pricing.WithStore(pricing.NewStore(dbPool)),
		pricing.WithLogger(logger),
	}
	if gen != nil {
		opts = append(opts, pricing.WithRemote(
			pricing.NewRemoteQuoter(gen, tariff, pricing.WithRemoteTimeout(cfg.AI.Timeout)),
		))
		logger.Info("remote pricing enabled", zap.String("provider", gen.Name()))
	} else {
		logger.Info("remote pricing disabled; using deterministic calculator")
	}
	pricingSvc := pricing.NewService(tariff, opts...)

	var distance maps.DistanceProvider
	var geocoder maps.Geocoder
	if cfg.Maps.APIKey != "" {
		routes, err := maps.NewRouteService(cfg.Maps.APIKey)
		if err != nil {
			return err
		}
		distance = routes

		redisClient := infra.NewRedis(cfg.Redis.Addr)
		defer redisClient.Close()
		if err := infra.PingRedis(ctx, redisClient); err != nil {
			logger.Warn("distance cache disabled", zap.Error(err))
		} else {
			distance = maps.NewCachedDistance(routes, redisClient, cfg.Maps.CacheTTL, logger)
		}

		geo, err := maps.NewGeocodeService(cfg.Maps.APIKey)
		if err != nil {
			return err
		}
		geocoder = geo
	} else {
		logger.Warn("GOOGLE_MAPS_API_KEY not set; distances will price as zero")
	}

	var verifier infra.TokenVerifier
	if cfg.Firebase.ProjectID != "" {
		verifier, err = infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
		if err != nil {
			return err
		}
	} else {
		logger.Warn("SV_FIREBASE_PROJECT_ID not set; admin routes disabled")
	}

	handler := httptransport.NewServer(httptransport.ServerDeps{
		Planner:  service.NewQuotePlanner(pricingSvc, distance, geocoder, logger),
		Pricing:  pricingSvc,
		Verifier: verifier,
		Gatherer: reg,
		Logger:   logger,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler.Routes()}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", cfg.HTTP.Addr), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("shutting down")
	return server.Shutdown(shutdownCtx)
}
