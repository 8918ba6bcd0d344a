// Package source retrieves artifact bytes from the remote services that
// back the portal: authenticated HTTP endpoints, S3 buckets, and GCS
// buckets. A Resolver picks the right source from the URI scheme.
package source

import (
	"context"
	"fmt"
	"io"
	"net/url"
)

// Meta describes a retrieved payload.
type Meta struct {
	ContentType string
	Size        int64
}

// Source opens a remote artifact for reading. Implementations issue
// exactly one retrieval per call; caching and dedup live in pkg/fetch.
type Source interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, *Meta, error)
}

// TokenProvider supplies the bearer credential for authenticated HTTP
// retrieval. Token acquisition itself is an external collaborator.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// TransportError is a failed retrieval: a network error or a non-2xx
// response. Message carries the server-provided reason when there is one.
type TransportError struct {
	URI     string
	Status  int
	Message string
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d: %s", e.URI, e.Status, e.Message)
	}
	return fmt.Sprintf("fetch %s: %s", e.URI, e.Message)
}

// Resolver routes URIs to sources by scheme: http(s) to the HTTP source,
// s3:// to S3, gs:// to GCS.
type Resolver struct {
	HTTP Source
	S3   Source
	GCS  Source
}

// ForURI returns the source responsible for uri.
func (r *Resolver) ForURI(uri string) (Source, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parse uri %q: %w", uri, err)
	}
	switch u.Scheme {
	case "http", "https":
		if r.HTTP == nil {
			return nil, fmt.Errorf("no http source configured")
		}
		return r.HTTP, nil
	case "s3":
		if r.S3 == nil {
			return nil, fmt.Errorf("no s3 source configured")
		}
		return r.S3, nil
	case "gs":
		if r.GCS == nil {
			return nil, fmt.Errorf("no gcs source configured")
		}
		return r.GCS, nil
	default:
		return nil, fmt.Errorf("unsupported uri scheme %q", u.Scheme)
	}
}

// Open resolves and opens in one step.
func (r *Resolver) Open(ctx context.Context, uri string) (io.ReadCloser, *Meta, error) {
	src, err := r.ForURI(uri)
	if err != nil {
		return nil, nil, err
	}
	return src.Open(ctx, uri)
}
