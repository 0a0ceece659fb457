package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"SERVER_PORT", "QUERY_ROW_LIMIT", "VALKEY_CACHE_TTL", "VALKEY_DIAL_TIMEOUT", "LLM_API_KEY", "HUGGINGFACE_API_KEY"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Query.RowLimit != 500 {
		t.Errorf("expected row limit 500, got %d", cfg.Query.RowLimit)
	}
	if cfg.Query.SampleRows != 5 {
		t.Errorf("expected 5 sample rows, got %d", cfg.Query.SampleRows)
	}
	if cfg.Valkey.CacheTTL != 10*time.Minute {
		t.Errorf("expected 10m cache ttl, got %s", cfg.Valkey.CacheTTL)
	}
	if cfg.Valkey.DialTimeout != 5*time.Second {
		t.Errorf("expected 5s valkey dial timeout, got %s", cfg.Valkey.DialTimeout)
	}
	if cfg.LLM.APIKey != "" {
		t.Errorf("expected empty api key, got %q", cfg.LLM.APIKey)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("VALKEY_CACHE_TTL", "30s")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("LLM_TEMPERATURE", "0.7")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("HUGGINGFACE_API_KEY", "hf_test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Valkey.CacheTTL != 30*time.Second {
		t.Errorf("expected 30s, got %s", cfg.Valkey.CacheTTL)
	}
	if !cfg.MinIO.UseSSL {
		t.Error("expected MinIO SSL enabled")
	}
	if cfg.LLM.Temperature != 0.7 {
		t.Errorf("expected temperature 0.7, got %v", cfg.LLM.Temperature)
	}
	if cfg.LLM.APIKey != "hf_test" {
		t.Errorf("expected HUGGINGFACE_API_KEY fallback, got %q", cfg.LLM.APIKey)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_PORT", "not-a-number")
	t.Setenv("QUERY_TIMEOUT", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("expected fallback port 5432, got %d", cfg.Database.Port)
	}
	if cfg.Query.Timeout != 15*time.Second {
		t.Errorf("expected fallback timeout, got %s", cfg.Query.Timeout)
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	want := "postgres://u:p@db:5433/n?sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
