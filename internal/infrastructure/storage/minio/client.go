// Package minio provides object storage access for model artifact bundles
// and exported structure files.
package minio

import (
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/turtacn/MatGen-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MatGen-Intelligence/pkg/errors"
)

// MinIOAPI is the subset of the MinIO SDK the repositories use; tests supply
// a fake.
type MinIOAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
	FGetObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.GetObjectOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

// BucketConfig names the buckets the service uses.
type BucketConfig struct {
	Models  string `mapstructure:"models"`
	Exports string `mapstructure:"exports"`
}

// MinIOConfig holds connection settings.
type MinIOConfig struct {
	Endpoint        string       `mapstructure:"endpoint"`
	AccessKeyID     string       `mapstructure:"access_key_id"`
	SecretAccessKey string       `mapstructure:"secret_access_key"`
	UseSSL          bool         `mapstructure:"use_ssl"`
	Region          string       `mapstructure:"region"`
	Buckets         BucketConfig `mapstructure:"buckets"`
}

func applyDefaults(cfg *MinIOConfig) {
	if cfg.Buckets.Models == "" {
		cfg.Buckets.Models = "matgen-models"
	}
	if cfg.Buckets.Exports == "" {
		cfg.Buckets.Exports = "matgen-exports"
	}
}

// MinIOClient wraps the SDK client together with bucket configuration.
type MinIOClient struct {
	client MinIOAPI
	config *MinIOConfig
	logger logging.Logger
}

// NewMinIOClient connects and verifies that the models bucket exists.
func NewMinIOClient(cfg *MinIOConfig, log logging.Logger) (*MinIOClient, error) {
	applyDefaults(cfg)
	if log == nil {
		log = logging.NewNopLogger()
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "create minio client")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, cfg.Buckets.Models)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "connect to minio")
	}
	if !exists {
		return nil, errors.Newf(errors.ErrCodeStorageError,
			"models bucket %q does not exist", cfg.Buckets.Models)
	}

	log.Info("minio connected",
		logging.String("endpoint", cfg.Endpoint),
		logging.String("models_bucket", cfg.Buckets.Models))
	return &MinIOClient{client: client, config: cfg, logger: log}, nil
}

// NewMinIOClientWithAPI builds a client over an injected API, for tests.
func NewMinIOClientWithAPI(api MinIOAPI, cfg *MinIOConfig, log logging.Logger) *MinIOClient {
	applyDefaults(cfg)
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &MinIOClient{client: api, config: cfg, logger: log}
}
