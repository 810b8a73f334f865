package s3

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// Config holds configuration for the S3-backed blob store.
type Config struct {
	// Bucket is the bucket listing images are uploaded to.
	Bucket string

	// Region is the AWS region of the bucket.
	Region string

	// Endpoint overrides the S3 endpoint for S3-compatible stores
	// (MinIO, Supabase storage). Empty uses AWS.
	Endpoint string

	// PublicBaseURL overrides the base of issued public URLs, e.g. a
	// CDN domain in front of the bucket. Empty derives the virtual-host
	// style AWS URL.
	PublicBaseURL string

	// AccessKeyID and SecretAccessKey are static credentials for
	// S3-compatible endpoints. Empty falls back to the default AWS
	// credential chain.
	AccessKeyID     string
	SecretAccessKey string
}

// Validate checks that the blob store configuration is valid.
func (c *Config) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("bucket is required")
	}
	if c.Region == "" {
		return fmt.Errorf("region is required")
	}
	return nil
}

// BlobStore implements store.BlobStore against S3 or an S3-compatible
// object store.
type BlobStore struct {
	client        *awss3.Client
	bucket        string
	publicBaseURL string
}

// NewBlobStore creates a new S3-backed blob store.
func NewBlobStore(ctx context.Context, cfg *Config) (*BlobStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("blob store config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid blob store config: %w", err)
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// Compatible stores generally need path-style addressing.
			o.UsePathStyle = true
		}
	})

	publicBaseURL := cfg.PublicBaseURL
	if publicBaseURL == "" {
		if cfg.Endpoint != "" {
			publicBaseURL = strings.TrimSuffix(cfg.Endpoint, "/") + "/" + cfg.Bucket
		} else {
			publicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}

	return &BlobStore{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}, nil
}

// Upload stores the object under the given key, replacing any existing
// object with the same key.
func (s *BlobStore) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	_, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	log.Debug().
		Str("bucket", s.bucket).
		Str("key", key).
		Msg("Uploaded object")

	return nil
}

// PublicURL returns the publicly reachable URL for a key.
func (s *BlobStore) PublicURL(key string) string {
	return s.publicBaseURL + "/" + key
}
