// Package config loads the configuration of the simili binary.
//
// Values are layered with koanf: struct defaults, then an optional YAML file,
// then SIMILI_* environment variables (highest priority). The result is
// checked with Validate before it is returned.
package config

import (
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Config is the complete binary configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Storage   StorageConfig   `koanf:"storage"`
	Postgres  PostgresConfig  `koanf:"postgres"`
	DynamoDB  DynamoDBConfig  `koanf:"dynamodb"`
	Logging   LoggingConfig   `koanf:"logging"`
	Features  FeaturesConfig  `koanf:"features"`
	Recommend RecommendConfig `koanf:"recommend"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"min=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"min=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"min=0"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimit       int           `koanf:"rate_limit" validate:"min=0"` // requests per window and IP, 0 disables
	RateLimitWindow time.Duration `koanf:"rate_limit_window" validate:"min=0"`
	Metrics         bool          `koanf:"metrics"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + strconv.Itoa(s.Port)
}

// CatalogConfig selects the catalog source.
type CatalogConfig struct {
	Source      string `koanf:"source" validate:"oneof=memory snapshot postgres dynamodb"`
	Snapshot    string `koanf:"snapshot"` // blob name in storage
	Codec       string `koanf:"codec" validate:"oneof=json go-json"`
	Compression string `koanf:"compression" validate:"oneof=none lz4 zstd"`

	// CacheTTL caches remote (postgres, dynamodb) listings. 0 disables.
	CacheTTL  time.Duration `koanf:"cache_ttl" validate:"gte=0"`
	CacheSize int           `koanf:"cache_size" validate:"gte=0"`
}

// StorageConfig configures the blob store holding catalog snapshots.
type StorageConfig struct {
	Backend   string `koanf:"backend" validate:"oneof=memory local s3 minio"`
	Path      string `koanf:"path"`
	Bucket    string `koanf:"bucket"`
	Prefix    string `koanf:"prefix"`
	Region    string `koanf:"region"`
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	Secure    bool   `koanf:"secure"`
}

// PostgresConfig configures the songs table source.
type PostgresConfig struct {
	URL     string `koanf:"url"`
	Migrate bool   `koanf:"migrate"`
}

// DynamoDBConfig configures the DynamoDB table source.
type DynamoDBConfig struct {
	Table          string  `koanf:"table"`
	Region         string  `koanf:"region"`
	Endpoint       string  `koanf:"endpoint"`
	PageSize       int32   `koanf:"page_size" validate:"min=0"`
	ScanRate       float64 `koanf:"scan_rate" validate:"min=0"`
	ConsistentRead bool    `koanf:"consistent_read"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

// SlogLevel returns the slog level for Level.
func (l LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// FeaturesConfig configures feature validation.
type FeaturesConfig struct {
	Strict bool `koanf:"strict"`
}

// RecommendConfig configures ranking.
type RecommendConfig struct {
	DefaultLimit     int `koanf:"default_limit" validate:"min=0"`
	MaxLimit         int `koanf:"max_limit" validate:"min=0"`
	Parallelism      int `koanf:"parallelism" validate:"min=0"`
	MinPartitionSize int `koanf:"min_partition_size" validate:"min=0"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimit:       100,
			RateLimitWindow: time.Minute,
			Metrics:         true,
		},
		Catalog: CatalogConfig{
			Source:      "memory",
			Snapshot:    "catalog.snap",
			Codec:       "go-json",
			Compression: "zstd",
			CacheTTL:    time.Minute,
			CacheSize:   1024,
		},
		Storage: StorageConfig{
			Backend: "local",
			Path:    "./data",
			Secure:  true,
		},
		Postgres: PostgresConfig{
			URL:     "",
			Migrate: true,
		},
		DynamoDB: DynamoDBConfig{
			Table:    "simili-tracks",
			ScanRate: 0, // unlimited
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Recommend: RecommendConfig{
			DefaultLimit: 10,
			MaxLimit:     100,
		},
	}
}
