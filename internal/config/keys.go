package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kFloat
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "EXPERTDB_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "storage.data_dir", typ: kString, env: "EXPERTDB_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "storage.export_dir", typ: kString, env: "EXPERTDB_STORAGE_EXPORT_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.ExportDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.ExportDir },
	},
	{
		key: "gemini.api_key", typ: kString, env: "EXPERTDB_GEMINI_API_KEY",
		secret: true,
		apply:  func(cfg *Config, v any) { cfg.Gemini.APIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Gemini.APIKey },
	},
	{
		key: "gemini.model", typ: kString, env: "EXPERTDB_GEMINI_MODEL",
		apply:   func(cfg *Config, v any) { cfg.Gemini.Model = v.(string) },
		extract: func(cfg Config) any { return cfg.Gemini.Model },
	},
	{
		key: "providers.scrapin_api_key", typ: kString, env: "EXPERTDB_SCRAPIN_API_KEY",
		secret: true,
		apply:  func(cfg *Config, v any) { cfg.Providers.ScrapinAPIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Providers.ScrapinAPIKey },
	},
	{
		key: "providers.news_api_key", typ: kString, env: "EXPERTDB_NEWS_API_KEY",
		secret: true,
		apply:  func(cfg *Config, v any) { cfg.Providers.NewsAPIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Providers.NewsAPIKey },
	},
	{
		key: "enrichment.timeout_seconds", typ: kInt, env: "EXPERTDB_ENRICHMENT_TIMEOUT_SECONDS",
		apply:   func(cfg *Config, v any) { cfg.Enrichment.TimeoutSeconds = v.(int) },
		extract: func(cfg Config) any { return cfg.Enrichment.TimeoutSeconds },
	},
	{
		key: "enrichment.requests_per_sec", typ: kFloat, env: "EXPERTDB_ENRICHMENT_REQUESTS_PER_SEC",
		apply:   func(cfg *Config, v any) { cfg.Enrichment.RequestsPerSec = v.(float64) },
		extract: func(cfg Config) any { return cfg.Enrichment.RequestsPerSec },
	},
	{
		key: "log.level", typ: kString, env: "EXPERTDB_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kFloat:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok && v != "" {
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					s.apply(cfg, f)
				} else {
					fmt.Fprintf(os.Stderr, "[WARN] could not parse float from config key %s=%q: %v. Using default value.\n", s.key, v, err)
				}
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		case kFloat:
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				s.apply(cfg, f)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse float from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
