package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facebookfortune84/agentic-workforce/internal/registry"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsWhenNothingPersisted(t *testing.T) {
	t.Setenv(EnvURL, "")
	t.Setenv(EnvAPIKey, "")
	dir := t.TempDir()

	ep, err := Load(Options{
		FilePath: filepath.Join(dir, "missing.yaml"),
		EnvFile:  filepath.Join(dir, "missing.env"),
	})
	require.NoError(t, err)
	assert.Equal(t, registry.Endpoint{BaseURL: DefaultURL, APIKey: DefaultAPIKey}, ep)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", "url: https://file.example\napi_key: file-key\n")
	envPath := writeFile(t, dir, ".env", "ARSENAL_URL=https://dotenv.example\n")

	t.Setenv(EnvURL, "")
	t.Setenv(EnvAPIKey, "")
	ep, err := Load(Options{FilePath: cfgPath, EnvFile: envPath})
	require.NoError(t, err)
	assert.Equal(t, "https://dotenv.example", ep.BaseURL)
	assert.Equal(t, "file-key", ep.APIKey)

	t.Setenv(EnvAPIKey, "env-key")
	ep, err = Load(Options{FilePath: cfgPath, EnvFile: envPath})
	require.NoError(t, err)
	assert.Equal(t, "env-key", ep.APIKey)

	ep, err = Load(Options{FilePath: cfgPath, EnvFile: envPath, URL: "https://flag.example", APIKey: " flag-key "})
	require.NoError(t, err)
	assert.Equal(t, registry.Endpoint{BaseURL: "https://flag.example", APIKey: "flag-key"}, ep)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", "url: [unterminated\n")

	_, err := Load(Options{FilePath: cfgPath, EnvFile: filepath.Join(dir, "none.env")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLiveSnapshots(t *testing.T) {
	live := NewLive(registry.Endpoint{BaseURL: "https://a.example", APIKey: "a"})
	snapshot := live.Endpoint()

	live.Set(registry.Endpoint{BaseURL: " https://b.example ", APIKey: "b"})

	assert.Equal(t, "https://a.example", snapshot.BaseURL)
	assert.Equal(t, "https://b.example", live.Endpoint().BaseURL)
}

func TestLiveConcurrentAccess(t *testing.T) {
	live := NewLive(registry.Endpoint{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			live.Set(registry.Endpoint{BaseURL: "https://x.example"})
		}()
		go func() {
			defer wg.Done()
			_ = live.Endpoint()
		}()
	}
	wg.Wait()
	assert.Equal(t, "https://x.example", live.Endpoint().BaseURL)
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("ARSENAL_TEST_INT", "12")
	t.Setenv("ARSENAL_TEST_BAD", "twelve")
	t.Setenv("ARSENAL_TEST_BOOL", "true")
	t.Setenv("ARSENAL_TEST_STR", "  value ")

	assert.Equal(t, 12, EnvOrInt("ARSENAL_TEST_INT", 3))
	assert.Equal(t, 3, EnvOrInt("ARSENAL_TEST_BAD", 3))
	assert.True(t, EnvOrBool("ARSENAL_TEST_BOOL", false))
	assert.False(t, EnvOrBool("ARSENAL_TEST_BAD", false))
	assert.Equal(t, "value", EnvOr("ARSENAL_TEST_STR", "x"))
	assert.Equal(t, "x", EnvOr("ARSENAL_TEST_UNSET", "x"))
	assert.Equal(t, 12*time.Second, EnvOrSeconds("ARSENAL_TEST_INT", time.Second))
	assert.Equal(t, time.Second, EnvOrSeconds("ARSENAL_TEST_BAD", time.Second))
}

func TestSaveRoundTripsThroughLoad(t *testing.T) {
	t.Setenv(EnvURL, "")
	t.Setenv(EnvAPIKey, "")
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	want := registry.Endpoint{BaseURL: "https://fleet.example", APIKey: "saved-key"}
	require.NoError(t, Save(path, want))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := Load(Options{FilePath: path, EnvFile: filepath.Join(dir, "missing.env")})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
