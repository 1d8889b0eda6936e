package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ProsperBaseURL != "https://api.prosper.com/v1/" {
		t.Fatalf("ProsperBaseURL = %s", cfg.ProsperBaseURL)
	}
	if cfg.InvestInterval != 300*time.Second {
		t.Fatalf("InvestInterval = %v", cfg.InvestInterval)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Fatalf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	if !cfg.DryRun {
		t.Fatalf("dry run should default to true")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PROSPER_USERNAME", "  lender01@1.stg ")
	t.Setenv("PROSPER_PASSWORD", "Password23")
	t.Setenv("PROSPER_BASE_URL", "https://api.stg.circleone.com/v1/")
	t.Setenv("INVEST_INTERVAL", "60")
	t.Setenv("DRY_RUN", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ProsperUsername != "lender01@1.stg" {
		t.Fatalf("ProsperUsername = %q", cfg.ProsperUsername)
	}
	if cfg.ProsperPassword != "Password23" {
		t.Fatalf("ProsperPassword not loaded")
	}
	if cfg.ProsperBaseURL != "https://api.stg.circleone.com/v1/" {
		t.Fatalf("ProsperBaseURL = %s", cfg.ProsperBaseURL)
	}
	if cfg.InvestInterval != time.Minute {
		t.Fatalf("InvestInterval = %v", cfg.InvestInterval)
	}
	if cfg.DryRun {
		t.Fatalf("expected dry run disabled")
	}
}

func TestLoadRejectsNonPositiveInterval(t *testing.T) {
	t.Setenv("INVEST_INTERVAL", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero invest_interval")
	}
}

func TestRedactedHidesPassword(t *testing.T) {
	cfg := Config{ProsperUsername: "u", ProsperPassword: "p"}
	red := cfg.Redacted()
	if red.ProsperPassword == "p" {
		t.Fatalf("password not redacted")
	}
	if cfg.ProsperPassword != "p" {
		t.Fatalf("original config mutated")
	}
}
