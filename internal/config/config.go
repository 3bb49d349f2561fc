// Package config loads client configuration from YAML with environment
// overrides.
//
// A configuration file looks like:
//
//	server: https://shop.example.com
//	account: shop
//	auth:
//	  mode: password
//	  user: admin
//	  secret: s3cret
//	timeout: 30s
//	rate_limit:
//	  rps: 5
//	  burst: 2
//	dump:
//	  dir: ./dumps
//	  secret_keys: [password, token]
//	  index: ./dumps/catalog.db
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/apiwrapper/auth"
	"github.com/roach88/apiwrapper/dump"
	"github.com/roach88/apiwrapper/transport"
)

// Environment variables that override file values.
const (
	EnvServer  = "STOREKEEPER_API_URL"
	EnvAccount = "STOREKEEPER_API_ACCOUNT"
	EnvUser    = "STOREKEEPER_API_USER"
	EnvSecret  = "STOREKEEPER_API_SECRET"
	EnvDumpDir = "STOREKEEPER_DUMP_DIR"
)

// Auth modes accepted in auth.mode.
const (
	ModeAnonymous = "anonymous"
	ModePassword  = "password"
	ModeHash      = "hash"
	ModeAPIKey    = "apikey"
)

// Config is the client configuration.
type Config struct {
	Server     string        `yaml:"server"`
	Account    string        `yaml:"account"`
	Auth       AuthConfig    `yaml:"auth"`
	ClientName string        `yaml:"client_name,omitempty"`
	Timeout    time.Duration `yaml:"timeout,omitempty"`
	RateLimit  RateLimit     `yaml:"rate_limit,omitempty"`
	Dump       DumpConfig    `yaml:"dump,omitempty"`
}

// AuthConfig selects how calls authenticate. An empty mode is anonymous.
type AuthConfig struct {
	Mode   string `yaml:"mode"`
	User   string `yaml:"user,omitempty"`
	Secret string `yaml:"secret,omitempty"` // password, hash or API key
}

// RateLimit bounds outgoing calls. Zero RPS disables limiting.
type RateLimit struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// DumpConfig enables call recording.
type DumpConfig struct {
	Dir        string   `yaml:"dir"`
	SecretKeys []string `yaml:"secret_keys,omitempty"`
	Index      string   `yaml:"index,omitempty"` // catalog database path
}

// Load reads path, applies environment overrides and validates the result.
// Unknown fields are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML, applies environment overrides and validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if len(bytes.TrimSpace(data)) > 0 {
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// FromEnv builds a configuration from the environment alone.
func FromEnv() (*Config, error) {
	return Parse(nil)
}

// ApplyEnv overrides fields with the non-empty environment variables.
func (c *Config) ApplyEnv() {
	override := func(dst *string, name string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	override(&c.Server, EnvServer)
	override(&c.Account, EnvAccount)
	override(&c.Auth.User, EnvUser)
	override(&c.Auth.Secret, EnvSecret)
	override(&c.Dump.Dir, EnvDumpDir)
}

// Validate reports every problem of the configuration at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Server == "" {
		errs = append(errs, fmt.Errorf("server is required (or set %s)", EnvServer))
	}
	if c.Account == "" {
		errs = append(errs, fmt.Errorf("account is required (or set %s)", EnvAccount))
	}
	switch c.Auth.Mode {
	case "", ModeAnonymous:
	case ModePassword, ModeHash, ModeAPIKey:
		if c.Auth.Secret == "" {
			errs = append(errs, fmt.Errorf("auth.secret is required for mode %q", c.Auth.Mode))
		}
		if c.Auth.Mode != ModeAPIKey && c.Auth.User == "" {
			errs = append(errs, fmt.Errorf("auth.user is required for mode %q", c.Auth.Mode))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown auth mode %q", c.Auth.Mode))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must be non-negative, got %s", c.Timeout))
	}
	if c.RateLimit.RPS < 0 {
		errs = append(errs, errors.New("rate_limit.rps must be non-negative"))
	}
	if c.Dump.Index != "" && c.Dump.Dir == "" {
		errs = append(errs, errors.New("dump.index needs dump.dir"))
	}
	return errors.Join(errs...)
}

// NewAuth builds the Auth descriptor for the configured mode.
func (c *Config) NewAuth() *auth.Auth {
	a := auth.New(nil, nil)
	a.SetClientName(c.ClientName)
	switch c.Auth.Mode {
	case ModePassword:
		a.SetUser(c.Account, c.Auth.User)
		a.SetPassword(c.Auth.Secret)
	case ModeHash:
		a.SetUser(c.Account, c.Auth.User)
		a.SetHash(c.Auth.Secret)
	case ModeAPIKey:
		a.SetAccount(c.Account)
		if c.Auth.User != "" {
			a.SetUser(c.Account, c.Auth.User)
		}
		a.SetAPIKey(c.Auth.Secret)
	default:
		a.SetAccount(c.Account)
		a.SetAnonymous()
	}
	return a
}

// NewTransport builds the HTTP transport.
func (c *Config) NewTransport(logger *slog.Logger) *transport.FullJSON {
	opts := []transport.Option{transport.WithRateLimit(c.RateLimit.RPS, c.RateLimit.Burst)}
	if c.Timeout > 0 {
		opts = append(opts, transport.WithTimeout(c.Timeout))
	}
	if logger != nil {
		opts = append(opts, transport.WithLogger(logger))
	}
	return transport.NewFullJSON(c.Server, opts...)
}

// DumpOptions returns the writer options for the dump section.
func (c *Config) DumpOptions() []dump.Option {
	var opts []dump.Option
	if len(c.Dump.SecretKeys) > 0 {
		opts = append(opts, dump.WithSecretKeys(c.Dump.SecretKeys...))
	}
	return opts
}
