package config

import (
	"os"
	"path/filepath"
)

// Environment variables consulted before the config file.
const (
	EnvToken     = "MINERU_API_TOKEN"
	EnvTokenAlt  = "MINERU_API_KEY"
	EnvOutputDir = "MINERU_OUTPUT_DIR"
)

// DefaultOutputDir is used when neither environment nor config set one.
const DefaultOutputDir = "output"

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".config", "mineru", "config.json"), nil
}

// Resolver resolves credentials and output defaults, consulting the
// environment first and the persisted store second.
type Resolver struct {
	Store  Store
	Getenv func(string) string
}

// NewResolver builds a resolver backed by the process environment.
func NewResolver(store Store) Resolver {
	return Resolver{Store: store, Getenv: os.Getenv}
}

// Token returns the first configured API token, or empty when unset.
func (r Resolver) Token() (string, error) {
	if token := r.Getenv(EnvToken); token != "" {
		return token, nil
	}
	if token := r.Getenv(EnvTokenAlt); token != "" {
		return token, nil
	}

	cfg, err := r.Store.Load()
	if err != nil {
		return "", err
	}

	return cfg.Token, nil
}

// OutputDir returns the default root for downloaded results.
func (r Resolver) OutputDir() (string, error) {
	if dir := r.Getenv(EnvOutputDir); dir != "" {
		return dir, nil
	}

	cfg, err := r.Store.Load()
	if err != nil {
		return "", err
	}
	if cfg.OutputDir != "" {
		return cfg.OutputDir, nil
	}

	return DefaultOutputDir, nil
}

// SaveToken persists a new token, preserving other settings.
func (r Resolver) SaveToken(token string) error {
	cfg, err := r.Store.Load()
	if err != nil {
		return err
	}

	cfg.Token = token
	return r.Store.Save(cfg)
}
