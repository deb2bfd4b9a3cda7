package milvus

import (
	"context"
	"testing"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/turtacn/MatGen-Intelligence/pkg/errors"
)

// fakeSearchClient replays a canned search result and records the request.
type fakeSearchClient struct {
	rowCount   string
	results    []client.SearchResult
	searchErr  error
	gotVectors []entity.Vector
	gotTopK    int
	gotMetric  entity.MetricType
}

func (f *fakeSearchClient) Search(_ context.Context, _ string, _ []string, _ string, _ []string, vectors []entity.Vector, _ string, metricType entity.MetricType, topK int, _ entity.SearchParam, _ ...client.SearchQueryOptionFunc) ([]client.SearchResult, error) {
	f.gotVectors = vectors
	f.gotMetric = metricType
	f.gotTopK = topK
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results, nil
}

func (f *fakeSearchClient) GetCollectionStatistics(context.Context, string) (map[string]string, error) {
	return map[string]string{"row_count": f.rowCount}, nil
}

func hitResult(ids []int64, scores []float32) client.SearchResult {
	return client.SearchResult{
		ResultCount: len(ids),
		IDs:         entity.NewColumnInt64("id", ids),
		Scores:      scores,
	}
}

func TestRemoteIndexSizeFromStatistics(t *testing.T) {
	api := &fakeSearchClient{rowCount: "120"}
	idx, err := NewRemoteIndexWithClient(context.Background(), api, &MilvusConfig{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 120, idx.Size())
}

func TestRemoteIndexRejectsEmptyCollection(t *testing.T) {
	api := &fakeSearchClient{rowCount: "0"}
	_, err := NewRemoteIndexWithClient(context.Background(), api, &MilvusConfig{}, nil)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeCatalogEmpty))
}

func TestRemoteIndexQueryMapsHitsToNeighbors(t *testing.T) {
	api := &fakeSearchClient{
		rowCount: "50",
		results: []client.SearchResult{
			// Squared L2 scores 4.0 and 9.0 become distances 2.0 and 3.0.
			hitResult([]int64{7, 3}, []float32{4.0, 9.0}),
		},
	}
	idx, err := NewRemoteIndexWithClient(context.Background(), api, &MilvusConfig{}, nil)
	require.NoError(t, err)

	nn, err := idx.Query(context.Background(), [][]float64{{0.5, 0.25}}, 2)
	require.NoError(t, err)
	require.Len(t, nn, 1)
	require.Len(t, nn[0], 2)

	assert.Equal(t, 7, nn[0][0].Index)
	assert.InDelta(t, 2.0, nn[0][0].Distance, 1e-9)
	assert.Equal(t, 3, nn[0][1].Index)
	assert.InDelta(t, 3.0, nn[0][1].Distance, 1e-9)

	assert.Equal(t, entity.L2, api.gotMetric)
	assert.Equal(t, 2, api.gotTopK)
	require.Len(t, api.gotVectors, 1)
	assert.Equal(t, entity.FloatVector([]float32{0.5, 0.25}), api.gotVectors[0])
}

func TestRemoteIndexQueryValidatesK(t *testing.T) {
	api := &fakeSearchClient{rowCount: "10"}
	idx, err := NewRemoteIndexWithClient(context.Background(), api, &MilvusConfig{}, nil)
	require.NoError(t, err)

	_, err = idx.Query(context.Background(), [][]float64{{1}}, 11)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeGenIndexConfigInvalid))

	_, err = idx.Query(context.Background(), [][]float64{{1}}, 0)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeGenIndexConfigInvalid))
}

func TestRemoteIndexQueryEmptyBatch(t *testing.T) {
	api := &fakeSearchClient{rowCount: "10"}
	idx, err := NewRemoteIndexWithClient(context.Background(), api, &MilvusConfig{}, nil)
	require.NoError(t, err)

	nn, err := idx.Query(context.Background(), nil, 3)
	require.NoError(t, err)
	assert.Empty(t, nn)
}

func TestRemoteIndexQueryResultCountMismatch(t *testing.T) {
	api := &fakeSearchClient{
		rowCount: "10",
		results:  []client.SearchResult{},
	}
	idx, err := NewRemoteIndexWithClient(context.Background(), api, &MilvusConfig{}, nil)
	require.NoError(t, err)

	_, err = idx.Query(context.Background(), [][]float64{{1, 2}}, 3)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeGenRecoveryFailed))
}
