package config

import (
	"testing"
	"time"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("PULSE_DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error when PULSE_DATABASE_URL is unset")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PULSE_DATABASE_URL", "postgres://localhost/pulse")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.RetentionWindow != 30*24*time.Hour {
		t.Errorf("RetentionWindow = %v, want 720h", cfg.RetentionWindow)
	}
	if cfg.SweepInterval != time.Hour {
		t.Errorf("SweepInterval = %v, want 1h", cfg.SweepInterval)
	}
	if cfg.ArchiveInterval != 0 {
		t.Errorf("ArchiveInterval = %v, want 0", cfg.ArchiveInterval)
	}
	if cfg.ArchiveS3Region != "us-east-1" {
		t.Errorf("ArchiveS3Region = %q, want us-east-1", cfg.ArchiveS3Region)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PULSE_DATABASE_URL", "postgres://localhost/pulse")
	t.Setenv("PULSE_HTTP_ADDR", ":9000")
	t.Setenv("PULSE_RETENTION_WINDOW", "168h")
	t.Setenv("PULSE_SWEEP_INTERVAL", "30m")
	t.Setenv("PULSE_NATS_URL", "nats://localhost:4222")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9000" {
		t.Errorf("HTTPAddr = %q, want :9000", cfg.HTTPAddr)
	}
	if cfg.RetentionWindow != 168*time.Hour {
		t.Errorf("RetentionWindow = %v, want 168h", cfg.RetentionWindow)
	}
	if cfg.SweepInterval != 30*time.Minute {
		t.Errorf("SweepInterval = %v, want 30m", cfg.SweepInterval)
	}
	if cfg.NATSURL != "nats://localhost:4222" {
		t.Errorf("NATSURL = %q", cfg.NATSURL)
	}
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("PULSE_DATABASE_URL", "postgres://localhost/pulse")
	t.Setenv("PULSE_SWEEP_INTERVAL", "often")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid PULSE_SWEEP_INTERVAL")
	}
}
