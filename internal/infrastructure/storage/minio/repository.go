package minio

import (
	"context"
	"os"
	"path"
	"path/filepath"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/MatGen-Intelligence/internal/infrastructure/artifacts"
	"github.com/turtacn/MatGen-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MatGen-Intelligence/pkg/errors"
)

// bundleFiles are the objects a complete artifact bundle must contain.
var bundleFiles = []string{
	artifacts.FileVAEConfig,
	artifacts.FileVAEWeights,
	artifacts.FileFeatureScaler,
	artifacts.FilePropertyScaler,
	artifacts.FileCatalog,
	artifacts.FileFeatureMatrix,
}

// ArtifactRepository syncs model bundles from the models bucket to local
// disk, where the artifact loader picks them up.
type ArtifactRepository struct {
	client *MinIOClient
	logger logging.Logger
}

// NewArtifactRepository builds a repository over an established client.
func NewArtifactRepository(client *MinIOClient, log logging.Logger) *ArtifactRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ArtifactRepository{client: client, logger: log}
}

// FetchBundle downloads the bundle stored under prefix into localDir.  Every
// bundle file must be present remotely; a partial bundle is an error before
// any inference runs on it.
func (r *ArtifactRepository) FetchBundle(ctx context.Context, prefix, localDir string) error {
	if err := os.MkdirAll(localDir, 0o755); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "create local bundle directory")
	}

	bucket := r.client.config.Buckets.Models
	for _, name := range bundleFiles {
		objectName := path.Join(prefix, name)
		if _, err := r.client.client.StatObject(ctx, bucket, objectName, minio.StatObjectOptions{}); err != nil {
			return errors.Wrapf(err, errors.ErrCodeGenArtifactMissing,
				"artifact object %s/%s", bucket, objectName)
		}
	}

	for _, name := range bundleFiles {
		objectName := path.Join(prefix, name)
		localPath := filepath.Join(localDir, name)
		if err := r.client.client.FGetObject(ctx, bucket, objectName, localPath, minio.GetObjectOptions{}); err != nil {
			return errors.Wrapf(err, errors.ErrCodeStorageError,
				"download artifact %s/%s", bucket, objectName)
		}
		r.logger.Debug("artifact downloaded",
			logging.String("object", objectName),
			logging.String("path", localPath))
	}

	r.logger.Info("artifact bundle synced",
		logging.String("bucket", bucket),
		logging.String("prefix", prefix),
		logging.String("dir", localDir))
	return nil
}

// ExportRepository uploads exported structure files so clients can fetch
// them after the generating instance is gone.
type ExportRepository struct {
	client *MinIOClient
	logger logging.Logger
}

// NewExportRepository builds a repository over an established client.
func NewExportRepository(client *MinIOClient, log logging.Logger) *ExportRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ExportRepository{client: client, logger: log}
}

// UploadFile stores one exported file under the given object name.
func (r *ExportRepository) UploadFile(ctx context.Context, objectName, localPath string) error {
	bucket := r.client.config.Buckets.Exports
	if _, err := r.client.client.FPutObject(ctx, bucket, objectName, localPath, minio.PutObjectOptions{}); err != nil {
		return errors.Wrapf(err, errors.ErrCodeStorageError,
			"upload export %s/%s", bucket, objectName)
	}
	return nil
}

// UploadBatch uploads every file in the format map produced by the exporter,
// keyed formula/format/local path.  Returns formula to format to object
// name.
func (r *ExportRepository) UploadBatch(ctx context.Context, batchID string, files map[string]map[string]string) (map[string]map[string]string, error) {
	uploaded := make(map[string]map[string]string, len(files))
	for formula, byFormat := range files {
		uploaded[formula] = make(map[string]string, len(byFormat))
		for format, localPath := range byFormat {
			objectName := path.Join(batchID, filepath.Base(localPath))
			if err := r.UploadFile(ctx, objectName, localPath); err != nil {
				return nil, err
			}
			uploaded[formula][format] = objectName
		}
	}
	r.logger.Info("export batch uploaded",
		logging.String("batch_id", batchID),
		logging.Int("materials", len(files)))
	return uploaded, nil
}
