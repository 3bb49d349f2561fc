package testutil

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Environment variables that point tests at a live API.
const (
	EnvAPIURL     = "STOREKEEPER_API_URL"
	EnvAPIAccount = "STOREKEEPER_API_ACCOUNT"
)

// EnvFile is the file LoadEnvFile reads by default.
const EnvFile = ".env.test.local"

// LoadEnvFile reads KEY=VALUE lines from path into the process environment.
// Variables that are already set win. A missing file is not an error.
// Blank lines and lines starting with # are skipped; values may be quoted.
func LoadEnvFile(path string) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// SkipIfNotSetUp loads EnvFile from the module root and the working
// directory, then skips the test unless every variable in vars is set.
func SkipIfNotSetUp(t testing.TB, vars ...string) {
	t.Helper()

	for _, dir := range []string{".", moduleRoot()} {
		if err := LoadEnvFile(filepath.Join(dir, EnvFile)); err != nil {
			t.Fatalf("load %s: %v", EnvFile, err)
		}
	}

	var missing []string
	for _, v := range vars {
		if os.Getenv(v) == "" {
			missing = append(missing, v)
		}
	}
	if len(missing) > 0 {
		t.Skipf("set %s (or add them to %s) to run this test", strings.Join(missing, ", "), EnvFile)
	}
}

// AnonymousEnv skips the test unless a live API is configured and returns
// its server URL and account.
func AnonymousEnv(t testing.TB) (server, account string) {
	t.Helper()
	SkipIfNotSetUp(t, EnvAPIURL, EnvAPIAccount)
	return os.Getenv(EnvAPIURL), os.Getenv(EnvAPIAccount)
}

// moduleRoot walks up from the working directory to the nearest go.mod.
func moduleRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "."
		}
		dir = parent
	}
}
