// Package config resolves the client home directory and the endpoint
// configuration stored there.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default endpoints; overridable via config.yaml or environment.
const (
	DefaultAPIBaseURL = "https://api.smm-optimize.com"
	DefaultWSBaseURL  = "wss://api.smm-optimize.com"

	configFileName = "config.yaml"
)

// Config is the on-disk client configuration at <home>/config.yaml.
type Config struct {
	APIBaseURL string `yaml:"api_base_url"`
	WSBaseURL  string `yaml:"ws_base_url"`
}

// Load reads <home>/config.yaml, applying defaults and then environment
// overrides (SMM_API_URL, SMM_WS_URL). A missing file yields the defaults.
func Load(home string) (*Config, error) {
	cfg := &Config{
		APIBaseURL: DefaultAPIBaseURL,
	}
	data, err := os.ReadFile(filepath.Join(home, configFileName))
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if env := os.Getenv("SMM_API_URL"); env != "" {
		cfg.APIBaseURL = env
	}
	if env := os.Getenv("SMM_WS_URL"); env != "" {
		cfg.WSBaseURL = env
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	cfg.WSBaseURL = strings.TrimRight(cfg.WSBaseURL, "/")
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	if cfg.WSBaseURL == "" {
		cfg.WSBaseURL = deriveWSBase(cfg.APIBaseURL)
	}
	return cfg, nil
}

// Save writes the configuration to <home>/config.yaml.
func Save(home string, cfg *Config) error {
	if err := os.MkdirAll(home, 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(home, configFileName), data, 0o644)
}

// deriveWSBase maps an http(s) base to its ws(s) counterpart.
func deriveWSBase(apiBase string) string {
	switch {
	case strings.HasPrefix(apiBase, "https://"):
		return "wss://" + strings.TrimPrefix(apiBase, "https://")
	case strings.HasPrefix(apiBase, "http://"):
		return "ws://" + strings.TrimPrefix(apiBase, "http://")
	default:
		return DefaultWSBaseURL
	}
}
