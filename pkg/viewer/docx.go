package viewer

import (
	"context"
	"log/slog"

	"github.com/arcadia-data/preview/pkg/classify"
	"github.com/arcadia-data/preview/pkg/decode"
)

// DocViewer renders DOCX artifacts as converted HTML.
type DocViewer struct {
	Logger *slog.Logger
}

func (v *DocViewer) Render(ctx context.Context, in Input) (*Fragment, error) {
	if in.Loading || in.Contents == nil {
		return skeleton(classify.FamilyDocx), nil
	}

	doc, err := decode.DOCX(in.Contents, v.Logger)
	if err != nil {
		return nil, err
	}

	return &Fragment{
		Family: classify.FamilyDocx,
		HTML:   `<div class="docx-body">` + doc.HTML + `</div>`,
	}, nil
}
