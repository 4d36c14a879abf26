// Copyright (C) 2026 TinyFedi Project
//
// This file is part of fedcore.
//
// fedcore is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// fedcore is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with fedcore.  If not, see <https://www.gnu.org/licenses/>.

// Package config loads the server's YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tinyfedi/fedcore/pkg/version"
)

// Config is the whole server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Actor    ActorConfig    `yaml:"actor"`
	Security SecurityConfig `yaml:"security"`
	Storage  StorageConfig  `yaml:"storage"`
	Policy   PolicyConfig   `yaml:"policy"`
	Timeouts TimeoutConfig  `yaml:"timeouts"`
}

// ServerConfig names this server on the network.
type ServerConfig struct {
	// Domain is the public hostname other servers reach us on.
	Domain string `yaml:"domain"`
	Scheme string `yaml:"scheme"`
	// Listen is the local bind address.
	Listen    string `yaml:"listen"`
	UserAgent string `yaml:"userAgent"`
}

// ActorConfig describes the single local actor.
type ActorConfig struct {
	Username string `yaml:"username"`
	Name     string `yaml:"name"`
	Summary  string `yaml:"summary"`
	// Namespace is the path prefix federation endpoints live under.
	Namespace string `yaml:"namespace"`
}

// SecurityConfig locates the actor's RSA keypair.
type SecurityConfig struct {
	PrivateKeyFile string `yaml:"privateKeyFile"`
	PublicKeyFile  string `yaml:"publicKeyFile"`
}

// StorageConfig locates the blob store.
type StorageConfig struct {
	DataDir string `yaml:"dataDir"`
}

// PolicyConfig holds the operator-facing federation policy.
type PolicyConfig struct {
	AutoAcceptFollows bool          `yaml:"autoAcceptFollows"`
	RequireDigest     bool          `yaml:"requireDigest"`
	RequireDate       bool          `yaml:"requireDate"`
	MaxClockSkew      time.Duration `yaml:"maxClockSkew"`
	KeyCacheTTL       time.Duration `yaml:"keyCacheTTL"`
}

// TimeoutConfig bounds outbound requests. Resolution is short; inbox
// delivery gets longer because remote servers process on receipt.
type TimeoutConfig struct {
	Resolve time.Duration `yaml:"resolve"`
	Deliver time.Duration `yaml:"deliver"`
}

// Default returns the configuration used when a field is not set.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Scheme:    "https",
			Listen:    ":8024",
			UserAgent: version.DefaultUserAgent,
		},
		Actor: ActorConfig{
			Username:  "blog",
			Namespace: "activitypub",
		},
		Security: SecurityConfig{
			PrivateKeyFile: "keys/private.pem",
			PublicKeyFile:  "keys/public.pem",
		},
		Storage: StorageConfig{
			DataDir: "data",
		},
		Policy: PolicyConfig{
			AutoAcceptFollows: true,
			MaxClockSkew:      300 * time.Second,
			KeyCacheTTL:       time.Hour,
		},
		Timeouts: TimeoutConfig{
			Resolve: 10 * time.Second,
			Deliver: 30 * time.Second,
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Domain == "" {
		return fmt.Errorf("server.domain must be set")
	}
	if c.Actor.Username == "" {
		return fmt.Errorf("actor.username must be set")
	}
	if c.Server.Scheme != "http" && c.Server.Scheme != "https" {
		return fmt.Errorf("server.scheme must be http or https, got %q", c.Server.Scheme)
	}
	return nil
}

// BaseURL is the root all federation URLs hang off:
// scheme://domain/namespace.
func (c *Config) BaseURL() string {
	return c.Server.Scheme + "://" + c.Server.Domain + "/" + c.Actor.Namespace
}

// ActorID is the local actor's document URL.
func (c *Config) ActorID() string {
	return c.BaseURL() + "/actor"
}

// KeyID is the id remote servers resolve to our public key.
func (c *Config) KeyID() string {
	return c.ActorID() + "#main-key"
}
