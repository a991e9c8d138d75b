// Package config resolves the registry endpoint at startup and holds the
// live value the operator may replace while the client runs.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/facebookfortune84/agentic-workforce/internal/registry"
)

const (
	EnvURL    = "ARSENAL_URL"
	EnvAPIKey = "ARSENAL_API_KEY"

	DefaultURL    = "http://127.0.0.1:8000"
	DefaultAPIKey = ""

	defaultEnvFile = ".env"
)

// Options selects the sources Load consults. Zero values pick defaults.
type Options struct {
	FilePath string
	EnvFile  string
	// Explicit overrides, typically from flags.
	URL    string
	APIKey string
}

// DefaultPath is $XDG_CONFIG_HOME/arsenal/config.yaml or the platform
// equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return filepath.Join(".", "arsenal.yaml")
	}
	return filepath.Join(dir, "arsenal", "config.yaml")
}

// Load resolves the endpoint with precedence: overrides, process
// environment, .env file, YAML file, built-in defaults. Missing files are
// skipped; a malformed file is an error.
func Load(opts Options) (registry.Endpoint, error) {
	ep := registry.Endpoint{BaseURL: DefaultURL, APIKey: DefaultAPIKey}

	path := strings.TrimSpace(opts.FilePath)
	if path == "" {
		path = DefaultPath()
	}
	fromFile, err := readFile(path)
	if err != nil {
		return registry.Endpoint{}, err
	}
	overlay(&ep, fromFile.BaseURL, fromFile.APIKey)

	envFile := strings.TrimSpace(opts.EnvFile)
	if envFile == "" {
		envFile = defaultEnvFile
	}
	dotenv, err := godotenv.Read(envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return registry.Endpoint{}, fmt.Errorf("read env file %s: %w", envFile, err)
	}
	overlay(&ep, dotenv[EnvURL], dotenv[EnvAPIKey])

	overlay(&ep, os.Getenv(EnvURL), os.Getenv(EnvAPIKey))
	overlay(&ep, opts.URL, opts.APIKey)
	return ep, nil
}

func readFile(path string) (registry.Endpoint, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return registry.Endpoint{}, nil
	}
	if err != nil {
		return registry.Endpoint{}, fmt.Errorf("read config %s: %w", path, err)
	}
	var ep registry.Endpoint
	if err := yaml.Unmarshal(raw, &ep); err != nil {
		return registry.Endpoint{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return ep, nil
}

// Save persists ep as YAML at path, creating the parent directory. The file
// holds the API key, so it is written owner-only.
func Save(path string, ep registry.Endpoint) error {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultPath()
	}
	raw, err := yaml.Marshal(ep)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

func overlay(ep *registry.Endpoint, url, key string) {
	if value := strings.TrimSpace(url); value != "" {
		ep.BaseURL = value
	}
	if value := strings.TrimSpace(key); value != "" {
		ep.APIKey = value
	}
}

// Live is the shared, replaceable endpoint. Readers get value snapshots.
type Live struct {
	mu sync.RWMutex
	ep registry.Endpoint
}

func NewLive(ep registry.Endpoint) *Live {
	return &Live{ep: ep}
}

func (l *Live) Endpoint() registry.Endpoint {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ep
}

func (l *Live) Set(ep registry.Endpoint) {
	l.mu.Lock()
	l.ep = registry.Endpoint{
		BaseURL: strings.TrimSpace(ep.BaseURL),
		APIKey:  strings.TrimSpace(ep.APIKey),
	}
	l.mu.Unlock()
}
