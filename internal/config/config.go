// Package config loads the service configuration.
//
// Layers, lowest priority first:
//  1. defaults from defaultConfig
//  2. a YAML file (ASSETTRACK_CONFIG, or the first of DefaultConfigPaths that exists)
//  3. a dotenv file (.env, or ASSETTRACK_ENV_FILE) merged into the process environment
//  4. ASSETTRACK_* environment variables, mapped explicitly by envTransformFunc
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/atvirokodosprendimai/assettrack/internal/validation"
)

const (
	ConfigPathEnvVar = "ASSETTRACK_CONFIG"
	EnvFileEnvVar    = "ASSETTRACK_ENV_FILE"
	envPrefix        = "ASSETTRACK_"
)

var DefaultConfigPaths = []string{
	"assettrack.yaml",
	"assettrack.yml",
	"/etc/assettrack/config.yaml",
}

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Blob     BlobConfig     `koanf:"blob"`
	Uploads  UploadsConfig  `koanf:"uploads"`
	Logging  LoggingConfig  `koanf:"logging"`
	Security SecurityConfig `koanf:"security"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	SocketPath      string        `koanf:"socket_path"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	// BodyLimitMB caps JSON request bodies. Chunked uploads and photos travel as base64.
	BodyLimitMB     int64         `koanf:"body_limit_mb" validate:"gte=1"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitPerMin int           `koanf:"rate_limit_per_min" validate:"gte=0"`
}

type DatabaseConfig struct {
	Driver       string `koanf:"driver" validate:"oneof=sqlite postgres"`
	DSN          string `koanf:"dsn" validate:"required"`
	MaxOpenConns int    `koanf:"max_open_conns" validate:"gte=0"`
}

type BlobConfig struct {
	Driver string   `koanf:"driver" validate:"oneof=fs s3 memory"`
	Root   string   `koanf:"root" validate:"required_if=Driver fs"`
	S3     S3Config `koanf:"s3"`
}

type S3Config struct {
	Bucket          string `koanf:"bucket"`
	Region          string `koanf:"region"`
	Endpoint        string `koanf:"endpoint"`
	Prefix          string `koanf:"prefix"`
	AccessKeyID     string `koanf:"access_key_id"`
	SecretAccessKey string `koanf:"secret_access_key"`
	UsePathStyle    bool   `koanf:"use_path_style"`
}

type UploadsConfig struct {
	StagingDir    string        `koanf:"staging_dir" validate:"required"`
	StaleAfter    time.Duration `koanf:"stale_after" validate:"gt=0"`
	SweepInterval time.Duration `koanf:"sweep_interval" validate:"gt=0"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

type SecurityConfig struct {
	// RequireAuth puts every /api route except login behind a Bearer token.
	RequireAuth            bool   `koanf:"require_auth"`
	BootstrapAdminUsername string `koanf:"bootstrap_admin_username"`
	BootstrapAdminPassword string `koanf:"bootstrap_admin_password"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			SocketPath:      "assettrack.sock",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			BodyLimitMB:     200,
			CORSOrigins:     []string{"*"},
			RateLimitPerMin: 600,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "assettrack.db",
		},
		Blob: BlobConfig{
			Driver: "fs",
			Root:   "uploads",
			S3:     S3Config{Region: "us-east-1"},
		},
		Uploads: UploadsConfig{
			StagingDir:    "uploads-staging",
			StaleAfter:    24 * time.Hour,
			SweepInterval: time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Security: SecurityConfig{
			BootstrapAdminUsername: "admin",
		},
	}
}

// Default returns the built-in configuration without reading any source.
func Default() *Config {
	return defaultConfig()
}

// Load builds the configuration. An empty path falls back to
// ASSETTRACK_CONFIG and then DefaultConfigPaths.
func Load(path string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if err := splitListFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks field constraints and the cross-field rules the tags cannot express.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}
	if c.Blob.Driver == "s3" && strings.TrimSpace(c.Blob.S3.Bucket) == "" {
		return errors.New("blob.s3.bucket is required when blob.driver is s3")
	}
	if (c.Blob.S3.AccessKeyID == "") != (c.Blob.S3.SecretAccessKey == "") {
		return errors.New("blob.s3.access_key_id and blob.s3.secret_access_key must be set together")
	}
	return nil
}

func loadEnvFile() error {
	path := os.Getenv(EnvFileEnvVar)
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load env file %s: %w", path, err)
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		return p
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var listPaths = []string{"server.cors_origins"}

func splitListFields(k *koanf.Koanf) error {
	for _, path := range listPaths {
		raw, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := make([]string, 0)
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	"addr":                     "server.addr",
	"socket":                   "server.socket_path",
	"read_timeout":             "server.read_timeout",
	"write_timeout":            "server.write_timeout",
	"shutdown_timeout":         "server.shutdown_timeout",
	"body_limit_mb":            "server.body_limit_mb",
	"cors_origins":             "server.cors_origins",
	"rate_limit_per_min":       "server.rate_limit_per_min",
	"db_driver":                "database.driver",
	"db_dsn":                   "database.dsn",
	"db_max_open_conns":        "database.max_open_conns",
	"blob_driver":              "blob.driver",
	"blob_root":                "blob.root",
	"s3_bucket":                "blob.s3.bucket",
	"s3_region":                "blob.s3.region",
	"s3_endpoint":              "blob.s3.endpoint",
	"s3_prefix":                "blob.s3.prefix",
	"s3_access_key_id":         "blob.s3.access_key_id",
	"s3_secret_access_key":     "blob.s3.secret_access_key",
	"s3_use_path_style":        "blob.s3.use_path_style",
	"staging_dir":              "uploads.staging_dir",
	"staging_stale_after":      "uploads.stale_after",
	"staging_sweep_interval":   "uploads.sweep_interval",
	"log_level":                "logging.level",
	"log_format":               "logging.format",
	"log_caller":               "logging.caller",
	"require_auth":             "security.require_auth",
	"bootstrap_admin_username": "security.bootstrap_admin_username",
	"bootstrap_admin_password": "security.bootstrap_admin_password",
}

// envTransformFunc maps ASSETTRACK_DB_DSN to database.dsn. Unknown variables are dropped.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	return envMappings[key]
}
