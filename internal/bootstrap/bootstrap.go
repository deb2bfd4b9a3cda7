// Package bootstrap assembles the generation pipeline from configuration:
// artifact loading, neighbor index selection, the VAE sampler, recovery
// engine, orchestrator, and the optional NLP, cache, and object-storage
// integrations.  Both the API server and the CLI build through it.
package bootstrap

import (
	"context"
	"math/rand"
	"time"

	"github.com/turtacn/MatGen-Intelligence/internal/application/export"
	"github.com/turtacn/MatGen-Intelligence/internal/application/generation"
	"github.com/turtacn/MatGen-Intelligence/internal/config"
	"github.com/turtacn/MatGen-Intelligence/internal/infrastructure/artifacts"
	redisdb "github.com/turtacn/MatGen-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/MatGen-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MatGen-Intelligence/internal/infrastructure/monitoring/prometheus"
	milvusindex "github.com/turtacn/MatGen-Intelligence/internal/infrastructure/search/milvus"
	miniostore "github.com/turtacn/MatGen-Intelligence/internal/infrastructure/storage/minio"
	constraintgpt "github.com/turtacn/MatGen-Intelligence/internal/intelligence/constraint_gpt"
	"github.com/turtacn/MatGen-Intelligence/internal/intelligence/matvae"
	"github.com/turtacn/MatGen-Intelligence/internal/intelligence/recovery"
	"github.com/turtacn/MatGen-Intelligence/pkg/errors"
)

// Pipeline bundles every component the interfaces layer needs.
type Pipeline struct {
	Config    *config.Config
	Logger    logging.Logger
	Bundle    *artifacts.Bundle
	Service   *generation.Service
	Extractor *constraintgpt.Extractor
	Exporter  *export.Exporter

	// Cache is nil when redis.addr is not configured.
	Cache       redisdb.Cache
	redisClient *redisdb.Client

	Collector prometheus.MetricsCollector
	Metrics   *prometheus.AppMetrics
}

// Build assembles the full pipeline.  Construction is all-or-nothing: any
// missing artifact or unreachable required dependency fails startup rather
// than leaving a partially working service.
func Build(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	p := &Pipeline{Config: cfg, Logger: logger}

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            "matgen",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger.Named("metrics"))
	if err != nil {
		return nil, err
	}
	p.Collector = collector
	p.Metrics = prometheus.NewAppMetrics(collector)

	if cfg.MinIO.Endpoint != "" {
		if err := fetchRemoteBundle(ctx, cfg, logger); err != nil {
			return nil, err
		}
	}

	bundle, err := artifacts.NewProvider(cfg.Model.Dir, logger.Named("artifacts")).Get()
	if err != nil {
		p.Metrics.ArtifactLoadStatus.WithLabelValues(cfg.Model.Dir).Set(0)
		return nil, err
	}
	p.Metrics.ArtifactLoadStatus.WithLabelValues(cfg.Model.Dir).Set(1)
	p.Bundle = bundle

	index, err := buildIndex(ctx, cfg, bundle, logger)
	if err != nil {
		return nil, err
	}

	engine, err := recovery.NewEngine(index, bundle.Catalog, recovery.Options{
		FeatureScaler: bundle.FeatureScaler,
		Neighbors:     cfg.Generation.Neighbors,
		Rand:          rand.New(rand.NewSource(time.Now().UnixNano())),
		Logger:        logger.Named("recovery"),
	})
	if err != nil {
		return nil, err
	}

	sampler, err := matvae.NewSampler(bundle.VAE, rand.New(rand.NewSource(time.Now().UnixNano())))
	if err != nil {
		return nil, err
	}

	p.Service, err = generation.NewService(sampler, engine, bundle.PropertyScaler, generation.Options{
		FeaturesPerTarget: cfg.Generation.FeaturesPerTarget,
		DiversityWeight:   cfg.Generation.DiversityWeight,
		MaxSamples:        cfg.Generation.MaxSamples,
		Rand:              rand.New(rand.NewSource(time.Now().UnixNano())),
		Logger:            logger.Named("generation"),
	})
	if err != nil {
		return nil, err
	}

	p.Extractor, err = buildExtractor(cfg, logger)
	if err != nil {
		return nil, err
	}

	p.Exporter, err = export.NewExporter(cfg.Export.OutputDir, logger.Named("export"))
	if err != nil {
		return nil, err
	}

	if cfg.Redis.Addr != "" {
		if err := p.connectCache(cfg, logger); err != nil {
			// The cache is an optimization; the pipeline works without it.
			logger.Warn("redis unavailable, generation cache disabled", logging.Err(err))
		}
	}

	logger.Info("pipeline ready",
		logging.Int("catalog_size", len(bundle.Catalog)),
		logging.Bool("nlp_enabled", cfg.NLP.Endpoint != ""),
		logging.Bool("cache_enabled", p.Cache != nil),
		logging.Bool("remote_index", cfg.Milvus.Addr != ""))
	return p, nil
}

// fetchRemoteBundle syncs the artifact bundle from object storage into the
// local model directory before loading.
func fetchRemoteBundle(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	client, err := miniostore.NewMinIOClient(&miniostore.MinIOConfig{
		Endpoint:        cfg.MinIO.Endpoint,
		AccessKeyID:     cfg.MinIO.AccessKey,
		SecretAccessKey: cfg.MinIO.SecretKey,
		UseSSL:          cfg.MinIO.UseSSL,
		Buckets:         miniostore.BucketConfig{Models: cfg.MinIO.Bucket},
	}, logger.Named("minio"))
	if err != nil {
		return err
	}
	repo := miniostore.NewArtifactRepository(client, logger.Named("minio"))
	return repo.FetchBundle(ctx, cfg.MinIO.Prefix, cfg.Model.Dir)
}

// buildIndex selects the Milvus-backed index when an address is configured
// and falls back to the exact in-memory index over the bundled matrix.
func buildIndex(ctx context.Context, cfg *config.Config, bundle *artifacts.Bundle, logger logging.Logger) (recovery.NeighborIndex, error) {
	if cfg.Milvus.Addr == "" {
		return recovery.NewExactIndex(bundle.FeatureMatrix)
	}
	return milvusindex.NewRemoteIndex(ctx, &milvusindex.MilvusConfig{
		Address:     cfg.Milvus.Addr,
		Collection:  cfg.Milvus.CollectionName,
		VectorField: cfg.Milvus.VectorField,
		Timeout:     cfg.Milvus.SearchTimeout,
	}, logger.Named("milvus"))
}

// buildExtractor always returns a working extractor; without an endpoint it
// runs rule-based parsing only.
func buildExtractor(cfg *config.Config, logger logging.Logger) (*constraintgpt.Extractor, error) {
	log := logger.Named("constraints")
	if cfg.NLP.Endpoint == "" {
		return constraintgpt.NewExtractor(nil, log), nil
	}

	gptCfg := constraintgpt.NewConstraintGPTConfig()
	gptCfg.Endpoint = cfg.NLP.Endpoint
	gptCfg.APIKey = cfg.NLP.APIKey
	gptCfg.ModelID = cfg.NLP.Model
	if cfg.NLP.Temperature > 0 {
		gptCfg.Temperature = cfg.NLP.Temperature
	}
	if cfg.NLP.MaxTokens > 0 {
		gptCfg.MaxOutputTokens = cfg.NLP.MaxTokens
	}
	if cfg.NLP.Timeout > 0 {
		gptCfg.TimeoutMs = int(cfg.NLP.Timeout / time.Millisecond)
	}

	backend, err := constraintgpt.NewHTTPBackend(gptCfg, log)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeAIModelNotAvailable, "configure NLP backend")
	}
	return constraintgpt.NewExtractor(backend, log), nil
}

func (p *Pipeline) connectCache(cfg *config.Config, logger logging.Logger) error {
	client, err := redisdb.NewClient(&redisdb.RedisConfig{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	}, logger.Named("redis"))
	if err != nil {
		return err
	}

	opts := []redisdb.CacheOption{}
	if cfg.Redis.KeyPrefix != "" {
		opts = append(opts, redisdb.WithPrefix(cfg.Redis.KeyPrefix))
	}
	if cfg.Redis.DefaultTTL > 0 {
		opts = append(opts, redisdb.WithDefaultTTL(cfg.Redis.DefaultTTL))
	}

	p.redisClient = client
	p.Cache = redisdb.NewRedisCache(client, logger.Named("cache"), opts...)
	return nil
}

// ReadinessChecks returns the named checks the readiness probe runs.
func (p *Pipeline) ReadinessChecks() map[string]func(ctx context.Context) error {
	checks := map[string]func(ctx context.Context) error{
		"artifacts": func(context.Context) error {
			if p.Bundle == nil {
				return errors.New(errors.ErrCodeGenModelNotLoaded, "artifact bundle not loaded")
			}
			return nil
		},
	}
	if p.Cache != nil {
		checks["cache"] = p.Cache.Ping
	}
	return checks
}

// Close releases held connections.
func (p *Pipeline) Close() error {
	if p.redisClient != nil {
		return p.redisClient.Close()
	}
	return nil
}
