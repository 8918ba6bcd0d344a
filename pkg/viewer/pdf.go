package viewer

import (
	"context"
	"html"
	"io"
	"strings"

	"github.com/arcadia-data/preview/pkg/classify"
	"github.com/arcadia-data/preview/pkg/decode"
	"github.com/arcadia-data/preview/pkg/fetch"
	"github.com/arcadia-data/preview/pkg/media"
)

// PDFViewer is the one deferred-transport viewer: it bypasses the shared
// content cache and retrieves the document itself, reporting its own
// loading outcome. The page count is only known after the whole document
// has been read; zoom changes are pure view state and never re-fetch.
type PDFViewer struct {
	Opener   fetch.Opener
	Leases   *media.Store
	BasePath string
}

func (v *PDFViewer) Render(ctx context.Context, in Input) (*Fragment, error) {
	if in.URI == "" {
		return skeleton(classify.FamilyPdf), nil
	}

	rc, _, err := v.Opener.Open(ctx, in.URI)
	if err != nil {
		return nil, err
	}
	defer rc.Close() //nolint:errcheck // best-effort close

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}

	info, err := decode.PDF(data)
	if err != nil {
		return nil, err
	}

	lease := v.Leases.Acquire(data, "application/pdf")
	src := html.EscapeString(strings.TrimRight(v.BasePath, "/") + "/" + lease.ID)

	return &Fragment{
		Family:  classify.FamilyPdf,
		HTML:    `<embed type="application/pdf" src="` + src + `"/>`,
		LeaseID: lease.ID,
		State: map[string]any{
			"pageCount": info.PageCount,
			"page":      1,
			"zoom":      decode.DefaultZoom,
			"zoomLevels": append([]float64(nil),
				decode.ZoomLevels...),
		},
	}, nil
}
