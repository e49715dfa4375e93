package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/andrewpaige1/formcraft-api/logger"
)

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("CONFIG_FILE", "")
	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("err = %v, want JWT_SECRET error", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9091")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("UPLOAD_CONCURRENCY", "2")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, https://forms.example.com")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr() != "0.0.0.0:9091" {
		t.Errorf("addr = %q", cfg.Addr())
	}
	if cfg.JWT.TTL != 2*time.Hour {
		t.Errorf("ttl = %v", cfg.JWT.TTL)
	}
	if cfg.Media.Concurrency != 2 {
		t.Errorf("concurrency = %d", cfg.Media.Concurrency)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://forms.example.com" {
		t.Errorf("origins = %v", cfg.AllowedOrigins)
	}
	if cfg.Env.IsDevelopment {
		t.Error("APP_ENV=production should not be development")
	}
	if cfg.Gemini.Model != "gemini-2.5-flash" {
		t.Errorf("default model = %q", cfg.Gemini.Model)
	}
}

func TestLoadYAMLFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
port: "7000"
jwt:
  secret: from-file
  ttl: 30m
media:
  provider: gcs
  gcs_bucket: uploads
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("JWT_SECRET", "")
	t.Setenv("PORT", "7100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.JWT.Secret != "from-file" {
		t.Errorf("secret = %q", cfg.JWT.Secret)
	}
	if cfg.Port != "7100" {
		t.Errorf("env should override file port, got %q", cfg.Port)
	}
	if cfg.Media.Provider != "gcs" || cfg.Media.GCSBucket != "uploads" {
		t.Errorf("media = %+v", cfg.Media)
	}
	if cfg.JWT.TTL != 30*time.Minute {
		t.Errorf("ttl = %v", cfg.JWT.TTL)
	}
	if cfg.Media.Folder != "form-submissions" {
		t.Errorf("default folder lost: %q", cfg.Media.Folder)
	}
}

func TestConnectMemorySqlite(t *testing.T) {
	db, err := Connect(":memory:", logger.NewNop())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	for _, table := range []string{"users", "forms", "submissions"} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("table %s not migrated", table)
		}
	}
}

func TestDialectorFor(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@localhost:5432/db": "postgres",
		"host=localhost user=u dbname=db":  "postgres",
		"formcraft.db":                     "sqlite",
		"sqlite://data/formcraft.db":       "sqlite",
	}
	for dsn, want := range tests {
		if _, got := dialectorFor(dsn); got != want {
			t.Errorf("dialectorFor(%q) = %s, want %s", dsn, got, want)
		}
	}
}
