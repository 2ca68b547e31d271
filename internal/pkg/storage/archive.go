package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofiber/fiber/v2/log"

	"github.com/323network/platform/internal/pkg/env"
)

// Config holds document archive configuration
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	Enabled         bool
}

// LoadConfig loads archive configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		AccessKeyID:     env.GetEnv("ARCHIVE_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("ARCHIVE_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("ARCHIVE_REGION", "us-east-1"),
		BucketName:      env.GetEnv("ARCHIVE_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("ARCHIVE_ENDPOINT_URL", ""),
		Enabled:         env.GetEnv("ARCHIVE_ENABLED", "false") == "true",
	}

	if config.Enabled {
		if config.AccessKeyID == "" {
			return nil, errors.New("ARCHIVE_ACCESS_KEY_ID is required when document archiving is enabled")
		}
		if config.SecretAccessKey == "" {
			return nil, errors.New("ARCHIVE_SECRET_ACCESS_KEY is required when document archiving is enabled")
		}
		if config.BucketName == "" {
			return nil, errors.New("ARCHIVE_BUCKET_NAME is required when document archiving is enabled")
		}
	}

	return config, nil
}

// IsEnabled returns true if document archiving is enabled
func (c *Config) IsEnabled() bool {
	return c.Enabled
}

// ExportObjectKey builds the object key for an exported document.
// Format: exports/YYYY/MM/<filename>
func ExportObjectKey(filename string, t time.Time) string {
	return fmt.Sprintf("exports/%04d/%02d/%s", t.Year(), int(t.Month()), filename)
}

// Archive stores generated documents in an S3-compatible bucket.
type Archive struct {
	s3Client *s3.Client
	config   *Config
}

// NewArchive creates a new document archive client
func NewArchive(cfg *Config) (*Archive, error) {
	if !cfg.IsEnabled() {
		return nil, fmt.Errorf("document archiving is disabled")
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			o.UsePathStyle = true
			o.UseAccelerate = false
		}
	})

	log.Infof("[Archive] Initialized document archive for bucket: %s", cfg.BucketName)
	return &Archive{s3Client: s3Client, config: cfg}, nil
}

// Put uploads a generated document under the given object key.
func (a *Archive) Put(ctx context.Context, objectKey, contentType string, data []byte) error {
	_, err := a.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.config.BucketName),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		Metadata: map[string]string{
			"upload-source": "323network-export",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload to archive: %w", err)
	}

	log.Infof("[Archive] Stored document: s3://%s/%s (%d bytes)", a.config.BucketName, objectKey, len(data))
	return nil
}
