package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"familyregistry/internal/config"
)

// objectClient is the part of *minio.Client the uploader needs
type objectClient interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
}

// MinioUploader keeps uploads in an S3-compatible bucket and serves them
// through short-lived presigned URLs
type MinioUploader struct {
	client objectClient
	bucket string
	expiry time.Duration
}

// NewMinioUploader connects to the configured endpoint and makes sure the bucket exists
func NewMinioUploader(ctx context.Context, cfg config.UploadConfig) (*MinioUploader, error) {
	if cfg.MinioEndpoint == "" {
		return nil, fmt.Errorf("MINIO_ENDPOINT is required for the minio upload backend")
	}
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	u := newMinioUploader(client, cfg.MinioBucket, cfg.PresignExpiry)
	if err := u.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	log.Printf("Uploads stored in bucket %s at %s", cfg.MinioBucket, cfg.MinioEndpoint)
	return u, nil
}

func newMinioUploader(client objectClient, bucket string, expiry time.Duration) *MinioUploader {
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &MinioUploader{client: client, bucket: bucket, expiry: expiry}
}

// EnsureBucket creates the bucket when it does not exist yet
func (u *MinioUploader) EnsureBucket(ctx context.Context) error {
	found, err := u.client.BucketExists(ctx, u.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", u.bucket, err)
	}
	if found {
		return nil
	}
	if err := u.client.MakeBucket(ctx, u.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", u.bucket, err)
	}
	return nil
}

// Save uploads the file as a new object
func (u *MinioUploader) Save(ctx context.Context, file *File) (string, error) {
	name := ObjectName(file.FieldName, file.Filename, time.Now())
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	size := file.Size
	if size <= 0 {
		size = -1
	}
	_, err := u.client.PutObject(ctx, u.bucket, name, file.Content, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}
	return StoredPath(name), nil
}

// Remove deletes the object behind a stored path
func (u *MinioUploader) Remove(ctx context.Context, storedPath string) error {
	name, err := NameFromStoredPath(storedPath)
	if err != nil {
		return err
	}
	if err := u.client.RemoveObject(ctx, u.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object: %w", err)
	}
	return nil
}

// Serve redirects to a presigned download URL
func (u *MinioUploader) Serve(w http.ResponseWriter, r *http.Request, name string) {
	if err := checkName(name); err != nil {
		http.NotFound(w, r)
		return
	}
	signed, err := u.client.PresignedGetObject(r.Context(), u.bucket, name, u.expiry, nil)
	if err != nil {
		log.Printf("Failed to presign %s: %v", name, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, signed.String(), http.StatusFound)
}
