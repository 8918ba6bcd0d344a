package decode

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/arcadia-data/preview/pkg/classify"
)

// ZoomLevels is the closed, ordered list of zoom factors the PDF viewer
// offers. Zoom changes are pure view state and never re-fetch the document.
var ZoomLevels = []float64{0.5, 0.75, 1.0, 1.25, 1.5, 2.0}

// DefaultZoom is the initial zoom factor.
const DefaultZoom = 1.0

// PDFInfo is what the service learns about a PDF after loading it. The
// page count is only discoverable once the whole document has been read.
type PDFInfo struct {
	PageCount int
}

// PDF validates a PDF payload and reports its page count.
func PDF(data []byte) (*PDFInfo, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, newError(classify.FamilyPdf, fmt.Sprintf("read document: %v", err))
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, newError(classify.FamilyPdf, fmt.Sprintf("validate document: %v", err))
	}
	return &PDFInfo{PageCount: ctx.PageCount}, nil
}

// NearestZoom clamps an arbitrary requested factor to the closed list.
func NearestZoom(requested float64) float64 {
	best := ZoomLevels[0]
	for _, z := range ZoomLevels {
		if diff(z, requested) < diff(best, requested) {
			best = z
		}
	}
	return best
}

func diff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
