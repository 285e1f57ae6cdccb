// Package config loads searchbot configuration from defaults, an optional
// JSON config file, and SEARCHBOT_* environment variables, in that order
// of increasing precedence.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	API     APIConfig
	Storage StorageConfig
	Server  ServerConfig
}

type APIConfig struct {
	// BaseURL of the research backend. The default is a placeholder host;
	// point it at a loopback address for local development.
	BaseURL string
	// EnableLiveSearch forces live mode even off loopback.
	EnableLiveSearch bool
}

type StorageConfig struct {
	DataDir string
}

type ServerConfig struct {
	// Port for the localhost API shell started by `searchbot serve`.
	Port int
}

func defaults() Config {
	return Config{
		API: APIConfig{
			BaseURL:          "https://api.searchbot-placeholder.com/v1",
			EnableLiveSearch: false,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Server: ServerConfig{
			Port: 4680,
		},
	}
}

// LiveSearchEnabled reports whether the resolver should attempt the live
// backend: either explicitly enabled, or the base URL targets loopback
// (auto-enabled for local development).
func (a APIConfig) LiveSearchEnabled() bool {
	if a.EnableLiveSearch {
		return true
	}
	return strings.Contains(a.BaseURL, "localhost") || strings.Contains(a.BaseURL, "127.0.0.1")
}

// Load reads configuration from the config file and environment.
// Environment variables (SEARCHBOT_*) override file values.
func Load() (Config, error) {
	return loadWith(configFilePath())
}

func loadWith(path string) (Config, error) {
	cfg := defaults()

	if err := applyFile(&cfg, path); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return Config{}, fmt.Errorf("invalid server port %d", cfg.Server.Port)
	}
	return cfg, nil
}

// fileConfig mirrors the JSON config file; absent fields keep defaults.
type fileConfig struct {
	APIBaseURL       *string `json:"apiBaseUrl"`
	EnableLiveSearch *bool   `json:"enableLiveSearch"`
	DataDir          *string `json:"dataDir"`
	Port             *int    `json:"port"`
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if fc.APIBaseURL != nil {
		cfg.API.BaseURL = *fc.APIBaseURL
	}
	if fc.EnableLiveSearch != nil {
		cfg.API.EnableLiveSearch = *fc.EnableLiveSearch
	}
	if fc.DataDir != nil {
		cfg.Storage.DataDir = *fc.DataDir
	}
	if fc.Port != nil {
		cfg.Server.Port = *fc.Port
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SEARCHBOT_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("SEARCHBOT_ENABLE_LIVE_SEARCH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.API.EnableLiveSearch = b
		}
	}
	if v := os.Getenv("SEARCHBOT_DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("SEARCHBOT_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
}

func defaultDataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		} else {
			return "searchbot-data"
		}
	}
	return filepath.Join(dir, "searchbot")
}

func configFilePath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".config")
		} else {
			dir = "."
		}
	}
	return filepath.Join(dir, "searchbot", "config.json")
}
