package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store is the MinIO-backed artifact store: uploaded bundles come down for
// extraction, raw analyzer outputs go up and are referenced from evidence.
type Store struct {
	client     *minio.Client
	bucketName string
	region     string
}

// New connects to MinIO and ensures the bucket exists
func New(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*Store, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	return &Store{client: cli, bucketName: bucket, region: region}, nil
}

// Download fetches an object into a temporary file and returns its path.
// The caller owns the file and removes it when done.
func (s *Store) Download(ctx context.Context, key string) (string, error) {
	tmp, err := os.CreateTemp("", "artifact-*"+filepath.Ext(key))
	if err != nil {
		return "", err
	}
	localPath := tmp.Name()
	tmp.Close()

	if err := s.client.FGetObject(ctx, s.bucketName, key, localPath, minio.GetObjectOptions{}); err != nil {
		os.Remove(localPath)
		return "", fmt.Errorf("get object %s: %w", key, err)
	}
	return localPath, nil
}

// ReadBytes streams an object's content
func (s *Store) ReadBytes(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	// GetObject is lazy; surface missing objects here instead of on first read
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, fmt.Errorf("stat object %s: %w", key, err)
	}
	return obj, nil
}

// Upload stores a local file under key and returns the object key
func (s *Store) Upload(ctx context.Context, localPath, key string) (string, error) {
	if _, err := s.client.FPutObject(ctx, s.bucketName, key, localPath, minio.PutObjectOptions{}); err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return key, nil
}

// UploadAndCleanup stores a local file under key and removes the local copy
// regardless of the upload outcome
func (s *Store) UploadAndCleanup(ctx context.Context, localPath, key string) (string, error) {
	defer os.Remove(localPath)
	return s.Upload(ctx, localPath, key)
}
