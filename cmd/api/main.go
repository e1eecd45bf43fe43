package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/xidik12/MiyZapis-sub005/internal/api/router"
	"github.com/xidik12/MiyZapis-sub005/internal/availability"
	"github.com/xidik12/MiyZapis-sub005/internal/booking"
	appconfig "github.com/xidik12/MiyZapis-sub005/internal/config"
	"github.com/xidik12/MiyZapis-sub005/internal/http/handlers"
	"github.com/xidik12/MiyZapis-sub005/internal/notify"
	"github.com/xidik12/MiyZapis-sub005/internal/observability/metrics"
	"github.com/xidik12/MiyZapis-sub005/internal/payments"
	"github.com/xidik12/MiyZapis-sub005/internal/schedule"
	"github.com/xidik12/MiyZapis-sub005/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting booking API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

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

	// Metrics registry with process/go collectors plus domain metrics.
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	bookingMetrics := metrics.NewBookingMetrics(registry)
	slotMetrics := metrics.NewSlotMetrics(registry)

	// Stores.
	scheduleStore := schedule.NewStore(redisClient)
	availabilityStore := availability.NewStore(pool)
	bookingStore := booking.NewStore(pool)
	walletStore := payments.NewWalletStore(pool)

	// Payment gateways behind one method-routing front.
	gateway := payments.NewMultiGateway(
		payments.NewWalletGateway(walletStore, logger),
		payments.NewPayPalGateway(cfg.PayPalBaseURL, logger),
		payments.NewCoinbaseGateway(cfg.CoinbaseBaseURL, logger),
		payments.NewFakeGateway(logger),
		cfg.AllowFakePayments,
	)

	// Notification fanout: structured log always, email when configured.
	sinks := []notify.Sink{notify.NewLogSink(logger)}
	if sender := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sender != nil {
		if emailSink := notify.NewEmailSink(sender, cfg.OpsNotifyEmail, logger); emailSink != nil {
			sinks = append(sinks, emailSink)
		}
	}
	sink := notify.NewFanoutSink(logger, sinks...)

	// Engine.
	admission := booking.NewAdmissionController(bookingStore, availabilityStore,
		cfg.PaymentTimeout, logger, bookingMetrics)
	lifecycle := booking.NewLifecycle(bookingStore, gateway, sink,
		cfg.DefaultCancellationWindow,
		schedule.NewWindowPolicy(scheduleStore, cfg.DefaultCancellationWindow),
		logger, bookingMetrics)
	generator := availability.NewGenerator(scheduleStore, availabilityStore,
		nil, logger, slotMetrics)

	r := router.New(&router.Config{
		Logger: logger,
		Availability: handlers.NewAvailabilityHandler(generator, availabilityStore,
			scheduleStore, cfg.HorizonWeeks, cfg.PaymentTimeout, logger),
		Bookings:           handlers.NewBookingHandler(admission, lifecycle, bookingStore, logger),
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		BookingRateLimit:   5,
		BookingRateBurst:   10,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
