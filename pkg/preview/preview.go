// Package preview is the display orchestrator. A Session ties a
// (uri, fileName) pair to the right typed viewer behind a single
// loading/error presentation: classify picks the family, the fetcher
// retrieves and memoizes bytes, the viewer decodes and renders. Every
// failure in that chain collapses into UI state; nothing escapes the
// session as a panic or unhandled error.
package preview

import (
	"context"
	"log/slog"
	"sync"

	"github.com/arcadia-data/preview/pkg/classify"
	"github.com/arcadia-data/preview/pkg/fetch"
	"github.com/arcadia-data/preview/pkg/media"
	"github.com/arcadia-data/preview/pkg/viewer"
)

// FileReference identifies one previewable artifact. URI is the cache
// key; FileName drives classification.
type FileReference struct {
	URI      string
	FileName string
}

// State is the orchestrator lifecycle for one reference.
type State string

const (
	StateIdle     State = "idle"
	StateFetching State = "fetching"
	StateReady    State = "ready"
	StateFailed   State = "failed"
)

// Panel is what the orchestrator presents for a reference: exactly one
// typed viewer fragment, or an error panel, or an empty placeholder.
type Panel struct {
	State    State
	FileName string
	Fragment *viewer.Fragment
	// ErrorMessage names the failure for the error panel; empty unless
	// State is StateFailed.
	ErrorMessage string
}

// Session owns one content cache and the media leases of its fragments.
// Sessions are independent: two sessions previewing the same file fetch it
// twice. Closing the session discards the cache and revokes every lease.
type Session struct {
	fetcher *fetch.Fetcher
	leases  *media.Store
	viewers map[classify.FormatFamily]viewer.Viewer
	logger  *slog.Logger

	// acquired maps uri → the single live lease backing its fragment.
	// Re-rendering a uri supersedes and releases the previous lease, the
	// object-URL revoke-on-change discipline.
	mu       sync.Mutex
	acquired map[string]string
}

// Config wires a Session.
type Config struct {
	Fetcher *fetch.Fetcher
	Leases  *media.Store
	// Opener backs the deferred PDF path, bypassing the shared cache.
	Opener fetch.Opener
	// MediaBasePath prefixes lease URLs, e.g. "/v1/media".
	MediaBasePath string
	Logger        *slog.Logger
}

// NewSession builds a session with the full set of typed viewers.
func NewSession(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	vs := map[classify.FormatFamily]viewer.Viewer{
		classify.FamilyCode:      &viewer.CodeViewer{},
		classify.FamilyPlainText: &viewer.CodeViewer{},
		classify.FamilyCsv:       &viewer.TableViewer{},
		classify.FamilyXlsx:      &viewer.SheetViewer{},
		classify.FamilyDocx:      &viewer.DocViewer{Logger: logger},
		classify.FamilyJson:      &viewer.JSONViewer{},
		classify.FamilyMarkdown:  &viewer.MarkdownViewer{},
		classify.FamilyHtml:      &viewer.HTMLViewer{Leases: cfg.Leases, BasePath: cfg.MediaBasePath},
		classify.FamilyAudio:     &viewer.MediaViewer{Family: classify.FamilyAudio, Leases: cfg.Leases, BasePath: cfg.MediaBasePath},
		classify.FamilyImage:     &viewer.MediaViewer{Family: classify.FamilyImage, Leases: cfg.Leases, BasePath: cfg.MediaBasePath},
		classify.FamilyVideo:     &viewer.MediaViewer{Family: classify.FamilyVideo, Leases: cfg.Leases, BasePath: cfg.MediaBasePath},
		classify.FamilyPdf:       &viewer.PDFViewer{Opener: cfg.Opener, Leases: cfg.Leases, BasePath: cfg.MediaBasePath},
	}

	return &Session{
		fetcher:  cfg.Fetcher,
		leases:   cfg.Leases,
		viewers:  vs,
		logger:   logger,
		acquired: map[string]string{},
	}
}

// Display runs the state machine for one reference and returns its panel.
func (s *Session) Display(ctx context.Context, ref FileReference) *Panel {
	if ref.URI == "" || ref.FileName == "" {
		// Caller bug: log it and render nothing rather than crash.
		s.logger.Error("preview called without uri or file name",
			"uri", ref.URI, "fileName", ref.FileName)
		return &Panel{State: StateIdle, FileName: ref.FileName}
	}

	c := classify.Classify(ref.FileName)
	v, ok := s.viewers[c.Family]
	if !ok {
		v = s.viewers[classify.FamilyPlainText]
	}

	in := viewer.Input{
		URI:      ref.URI,
		FileName: ref.FileName,
		Language: c.Language,
	}

	// Deferred transport skips the shared cache; the viewer manages its
	// own loading and reports failures through its error return.
	if c.Transport != classify.TransportDeferred {
		res := s.fetcher.Get(ctx, ref.URI)
		if res.Loading {
			return &Panel{State: StateFetching, FileName: ref.FileName, Fragment: loadingFragment(ctx, v, in)}
		}
		if res.Err != "" {
			return s.failed(ref, res.Err)
		}
		in.Contents = res.Contents
		in.ContentType = res.ContentType
	}

	frag, err := v.Render(ctx, in)
	if err != nil {
		return s.failed(ref, err.Error())
	}
	if frag.LeaseID != "" {
		s.mu.Lock()
		if prev := s.acquired[ref.URI]; prev != "" && prev != frag.LeaseID {
			s.leases.Release(prev)
		}
		s.acquired[ref.URI] = frag.LeaseID
		s.mu.Unlock()
	}

	return &Panel{State: StateReady, FileName: ref.FileName, Fragment: frag}
}

// Invalidate drops the cached content for a uri so the next Display
// retries the fetch. Used by explicit user retry.
func (s *Session) Invalidate(uri string) {
	s.fetcher.Invalidate(uri)
}

// Close tears the session down, revoking every media lease it acquired.
func (s *Session) Close() {
	s.mu.Lock()
	acquired := s.acquired
	s.acquired = map[string]string{}
	s.mu.Unlock()

	for _, id := range acquired {
		s.leases.Release(id)
	}
}

func (s *Session) failed(ref FileReference, reason string) *Panel {
	s.logger.Warn("preview failed", "fileName", ref.FileName, "uri", ref.URI, "reason", reason)
	return &Panel{
		State:        StateFailed,
		FileName:     ref.FileName,
		ErrorMessage: reason,
	}
}

func loadingFragment(ctx context.Context, v viewer.Viewer, in viewer.Input) *viewer.Fragment {
	in.Loading = true
	in.Contents = nil
	frag, err := v.Render(ctx, in)
	if err != nil || frag == nil {
		return nil
	}
	return frag
}
