// Package viewer renders decoded artifact representations as HTML
// fragments with format-specific view state. Each viewer owns its decode
// step: it receives raw bytes plus a loading flag, shows a skeleton while
// either is pending, and turns decode failures into errors the
// orchestrator absorbs as an inline alert.
package viewer

import (
	"context"

	"github.com/arcadia-data/preview/pkg/classify"
)

// Input is what every typed viewer accepts.
type Input struct {
	URI         string
	FileName    string
	Language    string
	Contents    []byte
	ContentType string
	Loading     bool
}

// Fragment is one rendered preview.
type Fragment struct {
	Family classify.FormatFamily
	HTML   string
	// State is the format-specific view state (pagination, sheet tabs,
	// zoom, render/code toggle) serialized to the client.
	State map[string]any
	// Skeleton marks a lightweight placeholder emitted while content is
	// loading or decoding.
	Skeleton bool
	// LeaseID references a media lease backing this fragment, empty when
	// the fragment is self-contained. The owning session releases it.
	LeaseID string
}

// Viewer renders one format family.
type Viewer interface {
	Render(ctx context.Context, in Input) (*Fragment, error)
}

func skeleton(family classify.FormatFamily) *Fragment {
	return &Fragment{
		Family:   family,
		HTML:     `<div class="preview-skeleton" aria-busy="true"></div>`,
		Skeleton: true,
	}
}
