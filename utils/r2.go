// utils/r2.go
package utils

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// ObjectStore stores public assets and returns their CDN URL.
type ObjectStore interface {
	PutObject(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// R2Options are the Cloudflare R2 credentials and bucket.
type R2Options struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	CDNBaseURL      string
}

// R2Store uploads team logos and athlete metadata to Cloudflare R2 through
// its S3-compatible API.
type R2Store struct {
	client     *s3.Client
	bucket     string
	cdnBaseURL string
}

func NewR2Store(ctx context.Context, opts R2Options) (*R2Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKeyID, opts.AccessKeySecret, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", opts.AccountID)
	cdn := strings.TrimSuffix(opts.CDNBaseURL, "/")
	if cdn == "" {
		cdn = endpoint + "/" + opts.Bucket
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})
	return &R2Store{client: client, bucket: opts.Bucket, cdnBaseURL: cdn}, nil
}

// PutObject uploads body under key and returns the public CDN URL.
func (r *R2Store) PutObject(ctx context.Context, key, contentType string, body []byte) (string, error) {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to R2: %w", err)
	}
	return fmt.Sprintf("%s/%s", r.cdnBaseURL, key), nil
}

// ObjectKey builds a collision-free key such as "teams/night-owls-<uuid>.png".
func ObjectKey(prefix, name, ext string) string {
	base := slug.Make(name)
	if base == "" {
		base = "asset"
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return path.Join(prefix, fmt.Sprintf("%s-%s%s", base, uuid.NewString(), strings.ToLower(ext)))
}
