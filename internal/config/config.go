package config

import (
	"strings"
)

type Config struct {
	Server     ServerConfig
	Storage    StorageConfig
	Gemini     GeminiConfig
	Providers  ProvidersConfig
	Enrichment EnrichmentConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port int
}

type StorageConfig struct {
	DataDir   string
	ExportDir string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type ProvidersConfig struct {
	ScrapinAPIKey string
	NewsAPIKey    string
}

type EnrichmentConfig struct {
	TimeoutSeconds int
	RequestsPerSec float64
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 3000,
		},
		Storage: StorageConfig{
			DataDir:   defaultDataDir(),
			ExportDir: "",
		},
		Gemini: GeminiConfig{
			Model: "gemini-1.5-pro",
		},
		Enrichment: EnrichmentConfig{
			TimeoutSeconds: 10,
			RequestsPerSec: 1,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the platform-native backend, environment
// variables, and platform secret store.
//
// On macOS the backend is UserDefaults (domain: com.expertdb.app) and
// secrets fall back to macOS Keychain.
// On Linux the backend is a JSON file at
// $XDG_CONFIG_HOME/expertdb/config.json and secrets live in a secrets
// file under $XDG_DATA_HOME.
//
// Environment variables (EXPERTDB_*) override backend values on all
// platforms. Provider API keys are optional; endpoints backed by a
// provider without a key report the missing key at call time.
func Load() (Config, error) {
	return loadWith(newPlatformBackend(), keychainReader{})
}

// keychain abstracts secret-store access for testing.
type keychain interface {
	Get(service, account string) (string, error)
}

func loadWith(b ConfigBackend, kc keychain) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	secrets := []struct {
		account string
		dst     *string
	}{
		{"gemini_api_key", &cfg.Gemini.APIKey},
		{"scrapin_api_key", &cfg.Providers.ScrapinAPIKey},
		{"news_api_key", &cfg.Providers.NewsAPIKey},
	}
	for _, s := range secrets {
		if *s.dst != "" {
			continue
		}
		if key, err := kc.Get("expertdb", s.account); err == nil && key != "" {
			*s.dst = key
		}
	}

	return cfg, nil
}

// keychainReader reads from the platform secret store.
type keychainReader struct{}

func (keychainReader) Get(service, account string) (string, error) {
	out, err := keychainExec(service, account)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
