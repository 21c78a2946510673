package config

import (
	"testing"
	"time"

	"github.com/coachfolio/portfolio"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got, want := cfg.Addr, ":8080"; got != want {
		t.Errorf("Addr = %q, want %q", got, want)
	}
	if got, want := cfg.Backend, BackendMemory; got != want {
		t.Errorf("Backend = %q, want %q", got, want)
	}
	if got, want := cfg.SessionTTL, 24*time.Hour; got != want {
		t.Errorf("SessionTTL = %v, want %v", got, want)
	}
	cash, err := cfg.Cash()
	if err != nil {
		t.Fatalf("Cash() error = %v", err)
	}
	if want := portfolio.USD(100000); !cash.Equal(want) {
		t.Errorf("Cash() = %v, want %v", cash, want)
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("COACH_STARTING_CASH", "2500.50")
	t.Setenv("COACH_CURRENCY", "EUR")
	t.Setenv("COACH_SESSION_BACKEND", "redis")
	t.Setenv("QUOTE_TTL", "5m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cash, _ := cfg.Cash()
	if want := portfolio.EUR(2500.50); !cash.Equal(want) {
		t.Errorf("Cash() = %v, want %v", cash, want)
	}
	if got, want := cfg.QuoteTTL, 5*time.Minute; got != want {
		t.Errorf("QuoteTTL = %v, want %v", got, want)
	}
}

func TestLoad_Invalid(t *testing.T) {
	testCases := map[string]string{
		"COACH_SESSION_BACKEND": "postgres",
		"COACH_STARTING_CASH":   "-10",
		"COACH_SESSION_TTL":     "tomorrow",
	}
	for key, value := range testCases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%q succeeded, want an error", key, value)
			}
		})
	}
}
