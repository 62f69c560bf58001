package config

import (
	"testing"
)

// mockKeychain is a test double for the keychain interface.
type mockKeychain struct {
	values map[string]string
	err    error
}

func (m mockKeychain) Get(service, account string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.values[account], nil
}

// mapBackend is an in-memory ConfigBackend for tests.
type mapBackend map[string]any

func (b mapBackend) GetString(key string) (string, bool, error) {
	v, ok := b[key]
	if !ok {
		return "", false, nil
	}
	s, isStr := v.(string)
	if !isStr {
		return "", false, nil
	}
	return s, true, nil
}

func (b mapBackend) GetInt(key string) (int, bool, error) {
	v, ok := b[key]
	if !ok {
		return 0, false, nil
	}
	i, isInt := v.(int)
	if !isInt {
		return 0, false, nil
	}
	return i, true, nil
}

func (b mapBackend) SetString(key, val string) error { b[key] = val; return nil }
func (b mapBackend) SetInt(key string, val int) error { b[key] = val; return nil }
func (b mapBackend) Delete(key string) error          { delete(b, key); return nil }

func clearEnv(t *testing.T) {
	t.Helper()
	for _, s := range specs {
		if s.env != "" {
			t.Setenv(s.env, "")
		}
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := loadWith(mapBackend{}, mockKeychain{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Gemini.Model != "gemini-1.5-pro" {
		t.Errorf("Gemini.Model = %q", cfg.Gemini.Model)
	}
	if cfg.Enrichment.TimeoutSeconds != 10 {
		t.Errorf("Enrichment.TimeoutSeconds = %d, want 10", cfg.Enrichment.TimeoutSeconds)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.Storage.DataDir == "" {
		t.Error("Storage.DataDir should default to a non-empty path")
	}
}

func TestBackendValues(t *testing.T) {
	clearEnv(t)

	b := mapBackend{
		"server.port":                5000,
		"storage.data_dir":           "/tmp/expertdb-test",
		"gemini.model":               "gemini-2.0-flash",
		"enrichment.requests_per_sec": "2.5",
	}
	cfg, err := loadWith(b, mockKeychain{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 5000 {
		t.Errorf("Server.Port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.Storage.DataDir != "/tmp/expertdb-test" {
		t.Errorf("Storage.DataDir = %q", cfg.Storage.DataDir)
	}
	if cfg.Gemini.Model != "gemini-2.0-flash" {
		t.Errorf("Gemini.Model = %q", cfg.Gemini.Model)
	}
	if cfg.Enrichment.RequestsPerSec != 2.5 {
		t.Errorf("Enrichment.RequestsPerSec = %v, want 2.5", cfg.Enrichment.RequestsPerSec)
	}
}

func TestEnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("EXPERTDB_SERVER_PORT", "8080")
	t.Setenv("EXPERTDB_GEMINI_API_KEY", "env-key")

	b := mapBackend{"server.port": 5000}
	cfg, err := loadWith(b, mockKeychain{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want env override 8080", cfg.Server.Port)
	}
	if cfg.Gemini.APIKey != "env-key" {
		t.Errorf("Gemini.APIKey = %q, want env-key", cfg.Gemini.APIKey)
	}
}

func TestKeychainFallback(t *testing.T) {
	clearEnv(t)

	kc := mockKeychain{values: map[string]string{
		"gemini_api_key":  "keychain-gemini",
		"scrapin_api_key": "keychain-scrapin",
	}}
	cfg, err := loadWith(mapBackend{}, kc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Gemini.APIKey != "keychain-gemini" {
		t.Errorf("Gemini.APIKey = %q", cfg.Gemini.APIKey)
	}
	if cfg.Providers.ScrapinAPIKey != "keychain-scrapin" {
		t.Errorf("Providers.ScrapinAPIKey = %q", cfg.Providers.ScrapinAPIKey)
	}
}

func TestMissingKeysAreNotFatal(t *testing.T) {
	clearEnv(t)

	cfg, err := loadWith(mapBackend{}, mockKeychain{err: errNoSecret})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Gemini.APIKey != "" {
		t.Errorf("Gemini.APIKey = %q, want empty", cfg.Gemini.APIKey)
	}
}

func TestSetKeyRejectsSecrets(t *testing.T) {
	err := SetKey("gemini.api_key", "whatever")
	if err == nil {
		t.Fatal("expected error setting a secret key")
	}
}

var errNoSecret = errString("no secret")

type errString string

func (e errString) Error() string { return string(e) }
