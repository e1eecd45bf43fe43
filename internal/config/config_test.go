package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("AVAILABILITY_HORIZON_WEEKS", "")
	t.Setenv("PAYMENT_TIMEOUT", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.HorizonWeeks != 4 {
		t.Fatalf("expected default horizon of 4 weeks, got %d", cfg.HorizonWeeks)
	}
	if cfg.PaymentTimeout != 15*time.Minute {
		t.Fatalf("expected default payment timeout, got %s", cfg.PaymentTimeout)
	}
	if cfg.DefaultCancellationWindow != 24*time.Hour {
		t.Fatalf("expected default cancellation window, got %s", cfg.DefaultCancellationWindow)
	}
	if cfg.AllowFakePayments {
		t.Fatal("expected fake payments disabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PAYMENT_TIMEOUT", "5m")
	t.Setenv("AVAILABILITY_HORIZON_WEEKS", "2")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	cfg := Load()
	if cfg.PaymentTimeout != 5*time.Minute {
		t.Fatalf("expected overridden payment timeout, got %s", cfg.PaymentTimeout)
	}
	if cfg.HorizonWeeks != 2 {
		t.Fatalf("expected overridden horizon, got %d", cfg.HorizonWeeks)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected CORS origins: %v", cfg.CORSAllowedOrigins)
	}
}
