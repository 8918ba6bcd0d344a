package source

import (
	"context"
	"net/http"
	"os"
)

// NewResolverFromEnv builds a resolver from environment variables.
//
// Environment variables:
//   - PREVIEW_S3_REGION or AWS_REGION (S3 region, default us-east-1)
//   - PREVIEW_S3_ENDPOINT (optional, for MinIO/LocalStack)
//   - PREVIEW_GCS_ENABLED: "true" to construct the GCS source
//
// The HTTP source is always configured; object-store sources only when
// their settings are present.
func NewResolverFromEnv(ctx context.Context, client *http.Client, tokens TokenProvider) (*Resolver, error) {
	r := &Resolver{HTTP: NewHTTPSource(client, tokens)}

	region := os.Getenv("PREVIEW_S3_REGION")
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region != "" || os.Getenv("PREVIEW_S3_ENDPOINT") != "" {
		if region == "" {
			region = "us-east-1"
		}
		s3src, err := NewS3Source(ctx, S3Config{
			Region:   region,
			Endpoint: os.Getenv("PREVIEW_S3_ENDPOINT"),
		})
		if err != nil {
			return nil, err
		}
		r.S3 = s3src
	}

	if os.Getenv("PREVIEW_GCS_ENABLED") == "true" {
		gcs, err := NewGCSSource(ctx)
		if err != nil {
			return nil, err
		}
		r.GCS = gcs
	}

	return r, nil
}
