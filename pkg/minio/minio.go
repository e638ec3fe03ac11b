package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"community-recycle-tracker/pkg/config"
	"community-recycle-tracker/pkg/errutil"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Client = fx.Module("minio.client", fx.Provide(registerClient, NewStorage))

// ObjectStorage is the subset of object storage the services rely on.
type ObjectStorage interface {
	Put(ctx context.Context, key, contentType string, r io.Reader, size int64) error
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (*url.URL, error)
}

func registerClient(c *config.Config) (*minio.Client, error) {
	if c.Minio.Endpoint == "" {
		zap.L().Warn("MinIO endpoint not configured, object storage disabled")
		return nil, nil
	}

	client, err := minio.New(c.Minio.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.Minio.AccessKey, c.Minio.SecretKey, ""),
		Secure: c.Minio.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, c.Minio.BucketName)
	if err != nil {
		zap.L().Warn("failed to check if bucket exists", zap.String("bucket", c.Minio.BucketName), zap.Error(err))
	} else if !exists {
		if err := client.MakeBucket(ctx, c.Minio.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", c.Minio.BucketName, err)
		}
	}

	zap.L().Info("MinIO client initialized", zap.String("endpoint", c.Minio.Endpoint), zap.Bool("bucketExists", exists))
	return client, nil
}

type storage struct {
	client *minio.Client
	bucket string
}

func NewStorage(client *minio.Client, c *config.Config) ObjectStorage {
	return &storage{client: client, bucket: c.Minio.BucketName}
}

func (s *storage) Put(ctx context.Context, key, contentType string, r io.Reader, size int64) error {
	if s.client == nil {
		return errutil.ServiceUnavailable("object storage not configured", nil)
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return errutil.ServiceUnavailable("failed to store object", err)
	}
	return nil
}

func (s *storage) PresignedURL(ctx context.Context, key string, expiry time.Duration) (*url.URL, error) {
	if s.client == nil {
		return nil, errutil.ServiceUnavailable("object storage not configured", nil)
	}

	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, expiry, url.Values{})
	if err != nil {
		return nil, errutil.ServiceUnavailable("failed to presign object", err)
	}
	return u, nil
}
