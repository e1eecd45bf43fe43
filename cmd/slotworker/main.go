package main

import (
	"context"
	"crypto/tls"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/xidik12/MiyZapis-sub005/internal/availability"
	"github.com/xidik12/MiyZapis-sub005/internal/booking"
	appconfig "github.com/xidik12/MiyZapis-sub005/internal/config"
	"github.com/xidik12/MiyZapis-sub005/internal/notify"
	"github.com/xidik12/MiyZapis-sub005/internal/observability/metrics"
	"github.com/xidik12/MiyZapis-sub005/internal/schedule"
	"github.com/xidik12/MiyZapis-sub005/pkg/logging"
)

// slotworker runs the periodic batch jobs: availability generation out to
// the rolling horizon and the pending-payment expiry sweep.
func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting slot worker",
		"env", cfg.Env,
		"horizon_weeks", cfg.HorizonWeeks,
		"generate_every", cfg.SlotWorkerEvery,
		"sweep_every", cfg.ExpirySweepEvery,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres unreachable", "error", err)
		os.Exit(1)
	}

	redisOpts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() { _ = redisClient.Close() }()

	registry := prometheus.NewRegistry()
	bookingMetrics := metrics.NewBookingMetrics(registry)
	slotMetrics := metrics.NewSlotMetrics(registry)

	scheduleStore := schedule.NewStore(redisClient)
	availabilityStore := availability.NewStore(pool)
	bookingStore := booking.NewStore(pool)

	generator := availability.NewGenerator(scheduleStore, availabilityStore, nil, logger, slotMetrics)
	refresh := availability.NewRefreshWorker(scheduleStore, generator, cfg.HorizonWeeks, logger)
	expiry := booking.NewExpiryWorker(bookingStore, cfg.PaymentTimeout,
		notify.NewLogSink(logger), logger, bookingMetrics)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		refresh.Run(ctx, cfg.SlotWorkerEvery)
	}()
	go func() {
		defer wg.Done()
		expiry.Run(ctx, cfg.ExpirySweepEvery)
	}()

	<-ctx.Done()
	logger.Info("shutting down slot worker...")
	wg.Wait()
	logger.Info("slot worker stopped")
}
