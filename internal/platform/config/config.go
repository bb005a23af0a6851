// Copyright (c) 2026 Refera. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (session resolver, authorizer)
    via constructors. Business logic never reads the process environment
    directly; the platform-admin identity in particular reaches the
    authorization layer only through this struct.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Refera API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Store (Redis) — session registry and presence
	RedisURL string `env:"REDIS_URL,required"`

	// PlatformAdminEmail is the single distinguished identity that bypasses
	// per-agency membership checks. Lower-cased at load time so every
	// comparison downstream is already normalized.
	PlatformAdminEmail string `env:"PLATFORM_ADMIN_EMAIL,required"`

	// Cryptographic keys for session artifact signing
	SessionPrivKeyPath string `env:"SESSION_PRIVATE_KEY_PATH,required"`
	SessionPubKeyPath  string `env:"SESSION_PUBLIC_KEY_PATH,required"`

	// External identity provider (ID token verification)
	IdentityIssuer     string `env:"IDENTITY_ISSUER,required"`
	IdentityPubKeyPath string `env:"IDENTITY_PUBLIC_KEY_PATH,required"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	// Normalize once here so no comparison site has to remember to.
	cfg.PlatformAdminEmail = strings.ToLower(strings.TrimSpace(cfg.PlatformAdminEmail))

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the explicitly whitelisted CORS origins beyond the
// platform's own subdomains.
func (c *Config) AllowedOrigins() []string {
	if c.ExtraOrigins == "" {
		return nil
	}

	origins := strings.Split(c.ExtraOrigins, ",")
	for i, origin := range origins {
		origins[i] = strings.TrimSpace(origin)
	}
	return origins
}
