package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	DatabaseURL string // PULSE_DATABASE_URL (required)
	HTTPAddr    string // PULSE_HTTP_ADDR (default ":8080")
	NATSURL     string // PULSE_NATS_URL (optional, empty = no bus publishing)
	AuthToken   string // PULSE_AUTH_TOKEN (optional, static bearer token; empty = disabled)
	JWTSecret   string // PULSE_JWT_SECRET (optional, enables JWT identity; empty = header identity)
	RolesFile   string // PULSE_ROLES_FILE (optional TOML role directory for audience resolution)

	// Retention settings
	RetentionWindow time.Duration // PULSE_RETENTION_WINDOW (default 720h = 30 days)
	SweepInterval   time.Duration // PULSE_SWEEP_INTERVAL (default 1h; 0 = external scheduler only)

	// Event archive settings
	ArchiveInterval   time.Duration // PULSE_ARCHIVE_INTERVAL (default 0 = disabled)
	ArchiveTenants    []string      // PULSE_ARCHIVE_TENANTS (comma-separated tenant IDs to archive)
	ArchiveS3Bucket   string        // PULSE_ARCHIVE_S3_BUCKET (enables S3 when set)
	ArchiveS3Endpoint string        // PULSE_ARCHIVE_S3_ENDPOINT (custom endpoint for MinIO)
	ArchiveS3Region   string        // PULSE_ARCHIVE_S3_REGION (default "us-east-1")
	ArchiveS3Prefix   string        // PULSE_ARCHIVE_S3_PREFIX (default "pulse/events")
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:       os.Getenv("PULSE_DATABASE_URL"),
		HTTPAddr:          envOrDefault("PULSE_HTTP_ADDR", ":8080"),
		NATSURL:           os.Getenv("PULSE_NATS_URL"),
		AuthToken:         os.Getenv("PULSE_AUTH_TOKEN"),
		JWTSecret:         os.Getenv("PULSE_JWT_SECRET"),
		RolesFile:         os.Getenv("PULSE_ROLES_FILE"),
		ArchiveS3Bucket:   os.Getenv("PULSE_ARCHIVE_S3_BUCKET"),
		ArchiveS3Endpoint: os.Getenv("PULSE_ARCHIVE_S3_ENDPOINT"),
		ArchiveS3Region:   envOrDefault("PULSE_ARCHIVE_S3_REGION", "us-east-1"),
		ArchiveS3Prefix:   envOrDefault("PULSE_ARCHIVE_S3_PREFIX", "pulse/events"),
	}
	if v := os.Getenv("PULSE_ARCHIVE_TENANTS"); v != "" {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				c.ArchiveTenants = append(c.ArchiveTenants, t)
			}
		}
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("PULSE_DATABASE_URL is required")
	}

	var err error
	if c.RetentionWindow, err = durationEnv("PULSE_RETENTION_WINDOW", 30*24*time.Hour); err != nil {
		return nil, err
	}
	if c.SweepInterval, err = durationEnv("PULSE_SWEEP_INTERVAL", time.Hour); err != nil {
		return nil, err
	}
	if c.ArchiveInterval, err = durationEnv("PULSE_ARCHIVE_INTERVAL", 0); err != nil {
		return nil, err
	}

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
