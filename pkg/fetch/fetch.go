// Package fetch memoizes artifact retrieval. A Fetcher owns one content
// cache: for a fixed uri it attempts retrieval at most once for the
// cache's lifetime, success or failure, and concurrent requests for the
// same uri coalesce into a single network call. Failures are cached state,
// never exceptions; retries happen only through explicit invalidation.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/arcadia-data/preview/pkg/source"
)

// Status is the lifecycle state of one cached uri.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusFetching Status = "fetching"
	StatusReady    Status = "ready"
	StatusFailed   Status = "failed"
)

// Result is the observable state for a uri.
type Result struct {
	Contents    []byte
	ContentType string
	Loading     bool
	Err         string
}

// Opener is the retrieval backend, satisfied by *source.Resolver.
type Opener interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, *source.Meta, error)
}

type entry struct {
	// token identifies the request this entry was created for. A
	// resolution whose token no longer matches the cached entry has been
	// superseded and its result is discarded.
	token       uint64
	status      Status
	contents    []byte
	contentType string
	err         string
	done        chan struct{}
}

// Fetcher is a per-session content cache plus the retrieval machinery.
type Fetcher struct {
	opener   Opener
	limiter  *rate.Limiter
	logger   *slog.Logger
	tracer   trace.Tracer
	maxBytes int64

	mu        sync.Mutex
	cache     map[string]*entry
	nextToken uint64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLimiter rate-limits outbound retrievals.
func WithLimiter(l *rate.Limiter) Option {
	return func(f *Fetcher) { f.limiter = l }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = logger }
}

// WithTracer enables a span per retrieval.
func WithTracer(tracer trace.Tracer) Option {
	return func(f *Fetcher) { f.tracer = tracer }
}

// WithMaxBytes caps retrieved payload size; larger content fails like
// any other fetch error. Zero means unlimited.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) { f.maxBytes = n }
}

// New creates a Fetcher over the given retrieval backend.
func New(opener Opener, opts ...Option) *Fetcher {
	f := &Fetcher{
		opener: opener,
		logger: slog.Default(),
		cache:  map[string]*entry{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Get returns the content state for uri, fetching it if this cache has
// never seen the uri. Get blocks until the fetch resolves or ctx is done;
// on ctx expiry the fetch continues in the background (there is no
// network cancellation) and Get reports a still-loading state.
func (f *Fetcher) Get(ctx context.Context, uri string) Result {
	f.mu.Lock()
	e, ok := f.cache[uri]
	if !ok {
		f.nextToken++
		e = &entry{
			token:  f.nextToken,
			status: StatusFetching,
			done:   make(chan struct{}),
		}
		f.cache[uri] = e
		go f.fetch(uri, e)
	}
	f.mu.Unlock()

	select {
	case <-e.done:
	case <-ctx.Done():
		return Result{Loading: true}
	}
	return f.Peek(uri)
}

// Peek reports the current state for uri without triggering a fetch.
func (f *Fetcher) Peek(uri string) Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.cache[uri]
	if !ok {
		return Result{}
	}
	switch e.status {
	case StatusFetching:
		return Result{Loading: true}
	case StatusFailed:
		return Result{Err: e.err}
	default:
		return Result{Contents: e.contents, ContentType: e.contentType}
	}
}

// Invalidate drops the cached state for uri so the next Get retries. Any
// fetch still in flight for the dropped entry resolves against a stale
// token and is discarded.
func (f *Fetcher) Invalidate(uri string) {
	f.mu.Lock()
	delete(f.cache, uri)
	f.mu.Unlock()
}

// Status reports the lifecycle state for uri.
func (f *Fetcher) Status(uri string) Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.cache[uri]; ok {
		return e.status
	}
	return StatusIdle
}

func (f *Fetcher) fetch(uri string, e *entry) {
	defer close(e.done)

	// Detached from any caller: a superseded caller must not cancel a
	// fetch another caller is waiting on.
	ctx := context.Background()

	var span trace.Span
	if f.tracer != nil {
		ctx, span = f.tracer.Start(ctx, "fetch.content",
			trace.WithAttributes(attribute.String("preview.uri", uri)))
		defer span.End()
	}

	contents, contentType, errMsg := f.retrieve(ctx, uri)

	f.mu.Lock()
	cur, ok := f.cache[uri]
	if !ok || cur.token != e.token {
		// Superseded while in flight; discard the stale result.
		f.mu.Unlock()
		f.logger.Debug("discarding stale fetch result", "uri", uri)
		return
	}
	if errMsg != "" {
		cur.status = StatusFailed
		cur.err = errMsg
	} else {
		cur.status = StatusReady
		cur.contents = contents
		cur.contentType = contentType
	}
	f.mu.Unlock()

	if errMsg != "" {
		if span != nil {
			span.SetStatus(codes.Error, errMsg)
		}
		f.logger.Warn("content fetch failed", "uri", uri, "error", errMsg)
	} else {
		f.logger.Debug("content fetched", "uri", uri, "bytes", len(contents))
	}
}

func (f *Fetcher) retrieve(ctx context.Context, uri string) (contents []byte, contentType, errMsg string) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, "", err.Error()
		}
	}

	rc, meta, err := f.opener.Open(ctx, uri)
	if err != nil {
		return nil, "", err.Error()
	}
	defer rc.Close() //nolint:errcheck // best-effort close

	var r io.Reader = rc
	if f.maxBytes > 0 {
		r = io.LimitReader(rc, f.maxBytes+1)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, "", err.Error()
	}
	if f.maxBytes > 0 && int64(len(body)) > f.maxBytes {
		return nil, "", fmt.Sprintf("content exceeds the %d byte preview limit", f.maxBytes)
	}
	if meta != nil {
		contentType = meta.ContentType
	}
	return body, contentType, ""
}
