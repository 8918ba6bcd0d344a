package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPSource fetches artifacts over authenticated HTTP GET. Every request
// carries an Authorization: Bearer header from the token provider.
type HTTPSource struct {
	client *http.Client
	tokens TokenProvider
}

// NewHTTPSource creates an HTTP source. A nil client gets a default with a
// sane timeout.
func NewHTTPSource(client *http.Client, tokens TokenProvider) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &HTTPSource{client: client, tokens: tokens}
}

// errorBodyLimit caps how much of a failure response is read for the
// user-facing message.
const errorBodyLimit = 2048

func (s *HTTPSource) Open(ctx context.Context, uri string) (io.ReadCloser, *Meta, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build request for %s: %w", uri, err)
	}

	if s.tokens != nil {
		token, err := s.tokens.Token(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("acquire token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, nil, &TransportError{URI: uri, Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		_ = resp.Body.Close()
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = resp.Status
		}
		return nil, nil, &TransportError{URI: uri, Status: resp.StatusCode, Message: msg}
	}

	meta := &Meta{
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}
	return resp.Body, meta, nil
}
