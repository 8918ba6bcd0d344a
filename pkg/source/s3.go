package source

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Source serves s3://bucket/key URIs.
type S3Source struct {
	client *s3.Client
}

// S3Config holds configuration for the S3 source.
type S3Config struct {
	Region   string
	Endpoint string // Optional custom endpoint (for MinIO, LocalStack, etc.)
}

// NewS3Source creates an S3-backed source.
func NewS3Source(ctx context.Context, cfg S3Config) (*S3Source, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	clientOpts := func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // Required for MinIO/LocalStack
		}
	}

	return &S3Source{client: s3.NewFromConfig(awsCfg, clientOpts)}, nil
}

func (s *S3Source) Open(ctx context.Context, uri string) (io.ReadCloser, *Meta, error) {
	bucket, key, err := splitObjectURI(uri, "s3")
	if err != nil {
		return nil, nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, nil, &TransportError{URI: uri, Message: err.Error()}
	}

	meta := &Meta{}
	if out.ContentType != nil {
		meta.ContentType = *out.ContentType
	}
	if out.ContentLength != nil {
		meta.Size = *out.ContentLength
	}
	return out.Body, meta, nil
}

// splitObjectURI parses scheme://bucket/key URIs.
func splitObjectURI(uri, scheme string) (bucket, key string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", fmt.Errorf("parse uri %q: %w", uri, err)
	}
	if u.Scheme != scheme {
		return "", "", fmt.Errorf("expected %s:// uri, got %q", scheme, uri)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("uri %q missing bucket or key", uri)
	}
	return u.Host, key, nil
}
