package config

import "time"

// Default values applied to unset fields before validation.
const (
	DefaultServerPort       = 8080
	DefaultServerMode       = "release"
	DefaultShutdownTimeout  = 30 * time.Second
	DefaultReadTimeout      = 15 * time.Second
	DefaultWriteTimeout     = 60 * time.Second
	DefaultMaxBodySize      = 16 << 20 // 16 MiB
	DefaultModelDir         = "trained_material_vae"
	DefaultSamples          = 5
	DefaultTemperature      = 1.2
	DefaultMaxSamples       = 50
	DefaultNeighbors        = 15
	DefaultFeaturesPerTgt   = 3
	DefaultDiversityWeight  = 0.7
	DefaultNLPTemperature   = 0.1
	DefaultNLPMaxTokens     = 512
	DefaultNLPTimeout       = 60 * time.Second
	DefaultExportOutputDir  = "generated_materials"
	DefaultRedisTTL         = 10 * time.Minute
	DefaultRedisKeyPrefix   = "matgen:"
	DefaultMilvusTimeout    = 10 * time.Second
	DefaultMilvusVectorField = "features"
)

// ApplyDefaults fills unset fields with platform defaults.  It never
// overrides a value the operator has set explicitly.
func ApplyDefaults(c *Config) {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.Mode == "" {
		c.Server.Mode = DefaultServerMode
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.MaxBodySize == 0 {
		c.Server.MaxBodySize = DefaultMaxBodySize
	}

	if c.Model.Dir == "" {
		c.Model.Dir = DefaultModelDir
	}

	if c.Generation.DefaultSamples == 0 {
		c.Generation.DefaultSamples = DefaultSamples
	}
	if c.Generation.DefaultTemperature == 0 {
		c.Generation.DefaultTemperature = DefaultTemperature
	}
	if c.Generation.MaxSamples == 0 {
		c.Generation.MaxSamples = DefaultMaxSamples
	}
	if c.Generation.Neighbors == 0 {
		c.Generation.Neighbors = DefaultNeighbors
	}
	if c.Generation.FeaturesPerTarget == 0 {
		c.Generation.FeaturesPerTarget = DefaultFeaturesPerTgt
	}
	if c.Generation.DiversityWeight == 0 {
		c.Generation.DiversityWeight = DefaultDiversityWeight
	}

	if c.NLP.Temperature == 0 {
		c.NLP.Temperature = DefaultNLPTemperature
	}
	if c.NLP.MaxTokens == 0 {
		c.NLP.MaxTokens = DefaultNLPMaxTokens
	}
	if c.NLP.Timeout == 0 {
		c.NLP.Timeout = DefaultNLPTimeout
	}

	if c.Export.OutputDir == "" {
		c.Export.OutputDir = DefaultExportOutputDir
	}
	if len(c.Export.Formats) == 0 {
		c.Export.Formats = []string{"cif"}
	}

	if c.Redis.DefaultTTL == 0 {
		c.Redis.DefaultTTL = DefaultRedisTTL
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	if c.Milvus.SearchTimeout == 0 {
		c.Milvus.SearchTimeout = DefaultMilvusTimeout
	}
	if c.Milvus.VectorField == "" {
		c.Milvus.VectorField = DefaultMilvusVectorField
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

// NewDefaultConfig returns a Config populated entirely with defaults.
// Used by entry points when no configuration file is present.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
