package cloud

import (
	"context"
	"fmt"
	"log"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config holds the object storage connection settings.
type Config struct {
	EndpointURL     string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	Prefix          string
	UseSSL          bool
}

// S3Client implements ObjectStore using the minio-go SDK for real
// MinIO/S3 connectivity.
type S3Client struct {
	client *minio.Client
}

// NewS3Client creates a MinIO/S3 client from config.
func NewS3Client(cfg Config) (*S3Client, error) {
	if cfg.EndpointURL == "" {
		return nil, fmt.Errorf("storage endpoint URL is required")
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, fmt.Errorf("storage credentials are required")
	}

	u, err := url.Parse(cfg.EndpointURL)
	if err != nil {
		return nil, fmt.Errorf("invalid storage endpoint URL: %w", err)
	}
	endpoint := u.Host
	if endpoint == "" {
		endpoint = cfg.EndpointURL
	}

	useSSL := cfg.UseSSL
	if u.Scheme == "https" {
		useSSL = true
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &S3Client{client: client}, nil
}

func (s *S3Client) UploadFile(ctx context.Context, bucket, key, path string) error {
	_, err := s.client.FPutObject(ctx, bucket, key, path, minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", path, err)
	}
	return nil
}

func (s *S3Client) EnsureVersioning(ctx context.Context, bucket string) error {
	versioning, err := s.client.GetBucketVersioning(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to read bucket versioning: %w", err)
	}
	if versioning.Enabled() {
		log.Printf("[S3] versioning already enabled on bucket %s", bucket)
		return nil
	}
	if err := s.client.EnableVersioning(ctx, bucket); err != nil {
		return fmt.Errorf("failed to enable bucket versioning: %w", err)
	}
	log.Printf("[S3] versioning enabled on bucket %s", bucket)
	return nil
}
