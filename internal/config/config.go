// Package config defines all configuration structures for the
// MatGen-Intelligence service.  No I/O or parsing logic lives here, only
// plain data types and validation.
package config

import (
	"fmt"
	"time"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// ModelConfig holds generative-model artifact locations and load behaviour.
type ModelConfig struct {
	// Dir is the local directory holding the trained VAE bundle:
	// vae_config.json, vae_weights.json, feature_scaler.json,
	// property_scaler.json, materials_catalog.json, feature_matrix.json.
	Dir string `mapstructure:"dir"`

	// LoadAtStartup forces the artifact bundle to be loaded during boot
	// instead of on the first generation request.
	LoadAtStartup bool `mapstructure:"load_at_startup"`
}

// GenerationConfig holds inference-time generation parameters.
type GenerationConfig struct {
	DefaultSamples     int     `mapstructure:"default_samples"`
	DefaultTemperature float64 `mapstructure:"default_temperature"`
	MaxSamples         int     `mapstructure:"max_samples"`

	// Neighbors is the k used when building the catalog nearest-neighbor
	// index.  Must not exceed the catalog size.
	Neighbors int `mapstructure:"neighbors"`

	// FeaturesPerTarget is how many feature vectors are decoded per target
	// property vector before recovery.
	FeaturesPerTarget int `mapstructure:"features_per_target"`

	// DiversityWeight in [0,1] controls how strongly recently emitted
	// formulas are avoided during single-candidate recovery.
	DiversityWeight float64 `mapstructure:"diversity_weight"`
}

// NLPConfig holds the constraint-extraction backend parameters.
type NLPConfig struct {
	// Endpoint is an OpenAI-compatible chat-completion base URL.  When empty
	// the rule-based extractor is used exclusively.
	Endpoint    string        `mapstructure:"endpoint"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// ExportConfig holds structure-export parameters.
type ExportConfig struct {
	OutputDir string   `mapstructure:"output_dir"`
	Formats   []string `mapstructure:"formats"` // subset of "cif", "xyz"
}

// RedisConfig holds the optional response-cache connection parameters.
// An empty Addr disables caching.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// MinIOConfig holds the optional remote artifact-repository parameters.
// An empty Endpoint means artifacts are read from ModelConfig.Dir only.
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// MilvusConfig holds the optional remote neighbor-index parameters.
// An empty Addr selects the exact in-memory index.
type MilvusConfig struct {
	Addr           string        `mapstructure:"addr"`
	CollectionName string        `mapstructure:"collection_name"`
	VectorField    string        `mapstructure:"vector_field"`
	SearchTimeout  time.Duration `mapstructure:"search_timeout"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level            string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format           string   `mapstructure:"format"` // "json" | "console"
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// Config is the root configuration for the service.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Model      ModelConfig      `mapstructure:"model"`
	Generation GenerationConfig `mapstructure:"generation"`
	NLP        NLPConfig        `mapstructure:"nlp"`
	Export     ExportConfig     `mapstructure:"export"`
	Redis      RedisConfig      `mapstructure:"redis"`
	MinIO      MinIOConfig      `mapstructure:"minio"`
	Milvus     MilvusConfig     `mapstructure:"milvus"`
	Log        LogConfig        `mapstructure:"log"`
}

// Validate checks cross-field consistency.  Configuration errors are fatal at
// startup; the service never degrades silently into partial state.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in (0, 65535], got %d", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug|release|test, got %q", c.Server.Mode)
	}
	if c.Model.Dir == "" {
		return fmt.Errorf("model.dir is required")
	}
	if c.Generation.DefaultSamples <= 0 {
		return fmt.Errorf("generation.default_samples must be positive")
	}
	if c.Generation.MaxSamples < c.Generation.DefaultSamples {
		return fmt.Errorf("generation.max_samples must be >= default_samples")
	}
	if c.Generation.DefaultTemperature <= 0 {
		return fmt.Errorf("generation.default_temperature must be positive")
	}
	if c.Generation.Neighbors <= 0 {
		return fmt.Errorf("generation.neighbors must be positive")
	}
	if c.Generation.FeaturesPerTarget <= 0 {
		return fmt.Errorf("generation.features_per_target must be positive")
	}
	if c.Generation.DiversityWeight < 0 || c.Generation.DiversityWeight > 1 {
		return fmt.Errorf("generation.diversity_weight must be in [0, 1]")
	}
	if c.Export.OutputDir == "" {
		return fmt.Errorf("export.output_dir is required")
	}
	for _, f := range c.Export.Formats {
		if f != "cif" && f != "xyz" {
			return fmt.Errorf("export.formats: unsupported format %q", f)
		}
	}
	if c.NLP.Endpoint != "" && c.NLP.Model == "" {
		return fmt.Errorf("nlp.model is required when nlp.endpoint is set")
	}
	if c.MinIO.Endpoint != "" && c.MinIO.Bucket == "" {
		return fmt.Errorf("minio.bucket is required when minio.endpoint is set")
	}
	if c.Milvus.Addr != "" && c.Milvus.CollectionName == "" {
		return fmt.Errorf("milvus.collection_name is required when milvus.addr is set")
	}
	return nil
}
