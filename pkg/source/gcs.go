package source

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

// GCSSource serves gs://bucket/object URIs.
type GCSSource struct {
	client *storage.Client
}

// NewGCSSource creates a GCS-backed source using ambient credentials.
func NewGCSSource(ctx context.Context) (*GCSSource, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}
	return &GCSSource{client: client}, nil
}

func (s *GCSSource) Open(ctx context.Context, uri string) (io.ReadCloser, *Meta, error) {
	bucket, object, err := splitObjectURI(uri, "gs")
	if err != nil {
		return nil, nil, err
	}

	r, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, nil, &TransportError{URI: uri, Message: err.Error()}
	}

	return r, &Meta{ContentType: r.Attrs.ContentType, Size: r.Attrs.Size}, nil
}

// Close releases the underlying client.
func (s *GCSSource) Close() error {
	return s.client.Close()
}
