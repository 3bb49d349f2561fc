package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/apiwrapper/auth"
)

// clearEnv unsets every override for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{EnvServer, EnvAccount, EnvUser, EnvSecret, EnvDumpDir} {
		t.Setenv(name, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Full(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server: https://shop.example.com
account: shop
auth:
  mode: password
  user: admin
  secret: s3cret
client_name: tests
timeout: 5s
rate_limit:
  rps: 2
  burst: 3
dump:
  dir: ./dumps
  secret_keys: [password, token]
  index: ./dumps/catalog.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com", cfg.Server)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, RateLimit{RPS: 2, Burst: 3}, cfg.RateLimit)
	assert.Equal(t, []string{"password", "token"}, cfg.Dump.SecretKeys)
	assert.Len(t, cfg.DumpOptions(), 1)

	a := cfg.NewAuth()
	assert.True(t, a.IsValid())
	assert.Equal(t, auth.ModePassword, a.Mode())
	assert.Equal(t, "admin", a.User())
	assert.Equal(t, "tests", a.ClientName())
	assert.Equal(t, "s3cret", a.Fields()[auth.FieldPassword])

	tr := cfg.NewTransport(nil)
	assert.Equal(t, "https://shop.example.com", tr.Server())
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "server: x\naccount: y\nsevrer: typo\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sevrer")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestParse_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvServer, "https://env.example.com")
	t.Setenv(EnvSecret, "from-env")
	t.Setenv(EnvDumpDir, "/tmp/dumps")

	cfg, err := Parse([]byte("server: https://file.example.com\naccount: shop\nauth:\n  mode: apikey\n"))
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.Server)
	assert.Equal(t, "from-env", cfg.Auth.Secret)
	assert.Equal(t, "/tmp/dumps", cfg.Dump.Dir)

	a := cfg.NewAuth()
	assert.Equal(t, auth.ModeAPIKey, a.Mode())
	assert.Equal(t, "shop", a.Account())
}

func TestFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvServer, "https://env.example.com")
	t.Setenv(EnvAccount, "shop")

	cfg, err := FromEnv()
	require.NoError(t, err)

	a := cfg.NewAuth()
	assert.True(t, a.IsValid())
	assert.Equal(t, auth.RightsAnonymous, a.Rights())
	assert.Equal(t, auth.DefaultClientName, a.ClientName())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr []string
	}{
		{
			name: "valid anonymous",
			cfg:  Config{Server: "s", Account: "a"},
		},
		{
			name:    "missing server and account",
			cfg:     Config{},
			wantErr: []string{"server is required", "account is required"},
		},
		{
			name:    "unknown mode",
			cfg:     Config{Server: "s", Account: "a", Auth: AuthConfig{Mode: "oauth"}},
			wantErr: []string{`unknown auth mode "oauth"`},
		},
		{
			name:    "password without secret or user",
			cfg:     Config{Server: "s", Account: "a", Auth: AuthConfig{Mode: ModePassword}},
			wantErr: []string{"auth.secret is required", "auth.user is required"},
		},
		{
			name:    "negative timeout",
			cfg:     Config{Server: "s", Account: "a", Timeout: -time.Second},
			wantErr: []string{"timeout must be non-negative"},
		},
		{
			name:    "index without dir",
			cfg:     Config{Server: "s", Account: "a", Dump: DumpConfig{Index: "c.db"}},
			wantErr: []string{"dump.index needs dump.dir"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}
