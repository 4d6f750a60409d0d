package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate runs the test from an empty directory so no stray assettrack.yaml or .env is read.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv(EnvFileEnvVar, "")
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Server.BodyLimitMB != 200 {
		t.Fatalf("Server.BodyLimitMB = %d, want 200", cfg.Server.BodyLimitMB)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.DSN != "assettrack.db" {
		t.Fatalf("unexpected database defaults: %+v", cfg.Database)
	}
	if cfg.Uploads.StaleAfter != 24*time.Hour {
		t.Fatalf("Uploads.StaleAfter = %v, want 24h", cfg.Uploads.StaleAfter)
	}
	if cfg.Security.RequireAuth {
		t.Fatalf("RequireAuth should default to false")
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "custom.yaml")
	yaml := "server:\n  addr: \":9090\"\ndatabase:\n  driver: postgres\n  dsn: postgres://file\nlogging:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ASSETTRACK_DB_DSN", "postgres://env")
	t.Setenv("ASSETTRACK_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("ASSETTRACK_STAGING_STALE_AFTER", "2h")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Fatalf("file value not applied, addr = %q", cfg.Server.Addr)
	}
	if cfg.Database.Driver != "postgres" {
		t.Fatalf("driver = %q, want postgres", cfg.Database.Driver)
	}
	if cfg.Database.DSN != "postgres://env" {
		t.Fatalf("env should override file, dsn = %q", cfg.Database.DSN)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("level = %q, want debug", cfg.Logging.Level)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("cors origins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Uploads.StaleAfter != 2*time.Hour {
		t.Fatalf("stale after = %v, want 2h", cfg.Uploads.StaleAfter)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("ASSETTRACK_LOG_FORMAT=console\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("ASSETTRACK_LOG_FORMAT") })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("format = %q, want console", cfg.Logging.Format)
	}
}

func TestLoadMissingExplicitEnvFile(t *testing.T) {
	dir := isolate(t)
	t.Setenv(EnvFileEnvVar, filepath.Join(dir, "missing.env"))

	if _, err := Load(""); err == nil {
		t.Fatalf("expected an error for a missing explicit env file")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Database.Driver = "mysql"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unsupported driver to fail validation")
	}

	cfg = Default()
	cfg.Blob.Driver = "s3"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected s3 without bucket to fail validation")
	}

	cfg.Blob.S3.Bucket = "assets"
	cfg.Blob.S3.AccessKeyID = "key"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected a lone access key to fail validation")
	}

	cfg.Blob.S3.SecretAccessKey = "secret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid s3 config, got %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	if got := envTransformFunc("ASSETTRACK_DB_DSN"); got != "database.dsn" {
		t.Fatalf("got %q", got)
	}
	if got := envTransformFunc("ASSETTRACK_UNKNOWN"); got != "" {
		t.Fatalf("unknown vars must be dropped, got %q", got)
	}
}
