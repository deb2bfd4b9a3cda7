// Package milvus backs the recovery engine's neighbor search with a Milvus
// collection, for catalogs too large to index in process memory.  The
// in-process exact index remains the default; this implementation is wired
// in when a Milvus address is configured.
package milvus

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/turtacn/MatGen-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MatGen-Intelligence/internal/intelligence/recovery"
	"github.com/turtacn/MatGen-Intelligence/pkg/errors"
)

// MilvusConfig holds connection and collection settings.
type MilvusConfig struct {
	Address     string        `mapstructure:"address"`
	Username    string        `mapstructure:"username"`
	Password    string        `mapstructure:"password"`
	Collection  string        `mapstructure:"collection"`
	VectorField string        `mapstructure:"vector_field"`
	NProbe      int           `mapstructure:"nprobe"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

func applyDefaults(cfg *MilvusConfig) {
	if cfg.Collection == "" {
		cfg.Collection = "material_features"
	}
	if cfg.VectorField == "" {
		cfg.VectorField = "feature_vector"
	}
	if cfg.NProbe == 0 {
		cfg.NProbe = 16
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
}

// searchClient is the slice of the Milvus SDK the index uses; tests supply a
// fake.
type searchClient interface {
	Search(ctx context.Context, collName string, partitions []string, expr string, outputFields []string, vectors []entity.Vector, vectorField string, metricType entity.MetricType, topK int, sp entity.SearchParam, opts ...client.SearchQueryOptionFunc) ([]client.SearchResult, error)
	GetCollectionStatistics(ctx context.Context, collName string) (map[string]string, error)
}

// RemoteIndex implements recovery.NeighborIndex over a Milvus collection.
// The collection's int64 primary key must equal the catalog row index so
// hits map directly back onto catalog entries.
type RemoteIndex struct {
	api    searchClient
	cfg    *MilvusConfig
	size   int
	logger logging.Logger
}

var _ recovery.NeighborIndex = (*RemoteIndex)(nil)

// NewRemoteIndex connects to Milvus and captures the collection row count.
// The catalog is immutable at inference time, so the count is read once.
func NewRemoteIndex(ctx context.Context, cfg *MilvusConfig, log logging.Logger) (*RemoteIndex, error) {
	applyDefaults(cfg)
	if log == nil {
		log = logging.NewNopLogger()
	}

	c, err := client.NewClient(ctx, client.Config{
		Address:  cfg.Address,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "connect to milvus")
	}
	return newRemoteIndex(ctx, c, cfg, log)
}

// NewRemoteIndexWithClient builds the index over an injected SDK client.
func NewRemoteIndexWithClient(ctx context.Context, api searchClient, cfg *MilvusConfig, log logging.Logger) (*RemoteIndex, error) {
	applyDefaults(cfg)
	if log == nil {
		log = logging.NewNopLogger()
	}
	return newRemoteIndex(ctx, api, cfg, log)
}

func newRemoteIndex(ctx context.Context, api searchClient, cfg *MilvusConfig, log logging.Logger) (*RemoteIndex, error) {
	stats, err := api.GetCollectionStatistics(ctx, cfg.Collection)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeGenIndexConfigInvalid,
			"collection %q statistics", cfg.Collection)
	}
	size, err := strconv.Atoi(stats["row_count"])
	if err != nil || size <= 0 {
		return nil, errors.Newf(errors.ErrCodeCatalogEmpty,
			"collection %q has no rows", cfg.Collection)
	}

	log.Info("milvus index ready",
		logging.String("collection", cfg.Collection),
		logging.Int("rows", size))
	return &RemoteIndex{api: api, cfg: cfg, size: size, logger: log}, nil
}

// Size returns the indexed row count captured at construction.
func (x *RemoteIndex) Size() int {
	return x.size
}

// Query runs one ANN search per query vector and converts hits into
// catalog-row neighbors.  Milvus reports squared L2 scores; they are mapped
// back to Euclidean distances so both index implementations agree.
func (x *RemoteIndex) Query(ctx context.Context, vectors [][]float64, k int) ([][]recovery.Neighbor, error) {
	if k <= 0 || k > x.size {
		return nil, errors.Newf(errors.ErrCodeGenIndexConfigInvalid,
			"k=%d out of range for collection of %d rows", k, x.size)
	}
	if len(vectors) == 0 {
		return [][]recovery.Neighbor{}, nil
	}

	search := make([]entity.Vector, len(vectors))
	for i, v := range vectors {
		fv := make([]float32, len(v))
		for j, c := range v {
			fv[j] = float32(c)
		}
		search[i] = entity.FloatVector(fv)
	}

	sp, err := entity.NewIndexIvfFlatSearchParam(x.cfg.NProbe)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeGenIndexConfigInvalid, "build search param")
	}

	ctx, cancel := context.WithTimeout(ctx, x.cfg.Timeout)
	defer cancel()
	results, err := x.api.Search(ctx, x.cfg.Collection, nil, "", nil,
		search, x.cfg.VectorField, entity.L2, k, sp)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeGenRecoveryFailed, "milvus search")
	}
	if len(results) != len(vectors) {
		return nil, errors.Newf(errors.ErrCodeGenRecoveryFailed,
			"milvus returned %d result sets for %d queries", len(results), len(vectors))
	}

	out := make([][]recovery.Neighbor, len(results))
	for i, res := range results {
		nn := make([]recovery.Neighbor, 0, res.ResultCount)
		for j := 0; j < res.ResultCount; j++ {
			id, err := res.IDs.GetAsInt64(j)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeGenRecoveryFailed, "decode hit id")
			}
			nn = append(nn, recovery.Neighbor{
				Index:    int(id),
				Distance: math.Sqrt(float64(res.Scores[j])),
			})
		}
		out[i] = nn
	}
	return out, nil
}
