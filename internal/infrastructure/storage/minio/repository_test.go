package minio

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MatGen-Intelligence/internal/infrastructure/artifacts"
	apperrors "github.com/turtacn/MatGen-Intelligence/pkg/errors"
)

// fakeAPI serves objects from an in-memory map keyed bucket/object.
type fakeAPI struct {
	objects map[string][]byte
	puts    []string
}

func (f *fakeAPI) key(bucket, object string) string { return bucket + "/" + object }

func (f *fakeAPI) BucketExists(context.Context, string) (bool, error) { return true, nil }

func (f *fakeAPI) MakeBucket(context.Context, string, miniogo.MakeBucketOptions) error {
	return nil
}

func (f *fakeAPI) ListObjects(context.Context, string, miniogo.ListObjectsOptions) <-chan miniogo.ObjectInfo {
	ch := make(chan miniogo.ObjectInfo)
	close(ch)
	return ch
}

func (f *fakeAPI) GetObject(context.Context, string, string, miniogo.GetObjectOptions) (*miniogo.Object, error) {
	return nil, nil
}

func (f *fakeAPI) FGetObject(_ context.Context, bucket, object, filePath string, _ miniogo.GetObjectOptions) error {
	data, ok := f.objects[f.key(bucket, object)]
	if !ok {
		return miniogo.ErrorResponse{Code: "NoSuchKey"}
	}
	return os.WriteFile(filePath, data, 0o644)
}

func (f *fakeAPI) PutObject(context.Context, string, string, io.Reader, int64, miniogo.PutObjectOptions) (miniogo.UploadInfo, error) {
	return miniogo.UploadInfo{}, nil
}

func (f *fakeAPI) FPutObject(_ context.Context, bucket, object, _ string, _ miniogo.PutObjectOptions) (miniogo.UploadInfo, error) {
	f.puts = append(f.puts, f.key(bucket, object))
	return miniogo.UploadInfo{}, nil
}

func (f *fakeAPI) StatObject(_ context.Context, bucket, object string, _ miniogo.StatObjectOptions) (miniogo.ObjectInfo, error) {
	if _, ok := f.objects[f.key(bucket, object)]; !ok {
		return miniogo.ObjectInfo{}, miniogo.ErrorResponse{Code: "NoSuchKey"}
	}
	return miniogo.ObjectInfo{Key: object}, nil
}

func fullBundleAPI() *fakeAPI {
	api := &fakeAPI{objects: map[string][]byte{}}
	for _, name := range bundleFiles {
		api.objects["matgen-models/v1/"+name] = []byte("{}")
	}
	return api
}

func testClient(api MinIOAPI) *MinIOClient {
	return NewMinIOClientWithAPI(api, &MinIOConfig{}, nil)
}

func TestFetchBundleDownloadsEveryArtifact(t *testing.T) {
	api := fullBundleAPI()
	repo := NewArtifactRepository(testClient(api), nil)

	dir := t.TempDir()
	require.NoError(t, repo.FetchBundle(context.Background(), "v1", dir))

	for _, name := range bundleFiles {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, "missing %s", name)
	}
}

func TestFetchBundleFailsOnPartialRemote(t *testing.T) {
	api := fullBundleAPI()
	delete(api.objects, "matgen-models/v1/"+artifacts.FileCatalog)
	repo := NewArtifactRepository(testClient(api), nil)

	err := repo.FetchBundle(context.Background(), "v1", t.TempDir())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeGenArtifactMissing))
}

func TestUploadBatch(t *testing.T) {
	api := fullBundleAPI()
	repo := NewExportRepository(testClient(api), nil)

	dir := t.TempDir()
	cif := filepath.Join(dir, "mp-1_ClNa.cif")
	require.NoError(t, os.WriteFile(cif, []byte("data_ClNa\n"), 0o644))

	uploaded, err := repo.UploadBatch(context.Background(), "batch-42", map[string]map[string]string{
		"ClNa": {"cif": cif},
	})
	require.NoError(t, err)
	assert.Equal(t, "batch-42/mp-1_ClNa.cif", uploaded["ClNa"]["cif"])
	assert.Equal(t, []string{"matgen-exports/batch-42/mp-1_ClNa.cif"}, api.puts)
}
