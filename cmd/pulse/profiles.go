package main

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

// ProfilesConfig holds all named profiles and tracks which one is active.
type ProfilesConfig struct {
	Active   string             `toml:"active"`
	Profiles map[string]Profile `toml:"profiles"`
}

// Profile is a named server and identity combination.
type Profile struct {
	URL      string `toml:"url"`
	Token    string `toml:"token,omitempty"`
	TenantID string `toml:"tenant_id,omitempty"`
	UserID   string `toml:"user_id,omitempty"`
}

func profileConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".local", "state", "pulse")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "profiles.toml"), nil
}

func loadProfilesConfig() (ProfilesConfig, error) {
	path, err := profileConfigPath()
	if err != nil {
		return ProfilesConfig{}, err
	}
	var cfg ProfilesConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return ProfilesConfig{Profiles: map[string]Profile{}}, nil
		}
		return ProfilesConfig{}, err
	}
	if cfg.Profiles == nil {
		cfg.Profiles = map[string]Profile{}
	}
	return cfg, nil
}

func saveProfilesConfig(cfg ProfilesConfig) error {
	path, err := profileConfigPath()
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// Cached active profile values, loaded once per process.
var (
	profileOnce    sync.Once
	cachedURL      string
	cachedToken    string
	cachedTenantID string
	cachedUserID   string
)

func loadActiveProfileOnce() {
	profileOnce.Do(func() {
		cfg, err := loadProfilesConfig()
		if err != nil || cfg.Active == "" {
			return
		}
		p, ok := cfg.Profiles[cfg.Active]
		if !ok {
			return
		}
		cachedURL = p.URL
		cachedToken = p.Token
		cachedTenantID = p.TenantID
		cachedUserID = p.UserID
	})
}

func activeProfileURL() string {
	loadActiveProfileOnce()
	return cachedURL
}

func activeProfileToken() string {
	loadActiveProfileOnce()
	return cachedToken
}

func activeProfileTenant() string {
	loadActiveProfileOnce()
	return cachedTenantID
}

func activeProfileUser() string {
	loadActiveProfileOnce()
	return cachedUserID
}
