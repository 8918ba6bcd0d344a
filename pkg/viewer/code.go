package viewer

import (
	"context"

	"github.com/arcadia-data/preview/pkg/classify"
	"github.com/arcadia-data/preview/pkg/decode"
)

// CodeViewer renders code and plain text with syntax highlighting.
type CodeViewer struct{}

func (v *CodeViewer) Render(ctx context.Context, in Input) (*Fragment, error) {
	if in.Loading || in.Contents == nil {
		return skeleton(classify.FamilyCode), nil
	}

	text := decode.Text(in.Contents)
	html, err := decode.Highlight(text, in.Language, in.FileName)
	if err != nil {
		return nil, err
	}

	return &Fragment{
		Family: classify.FamilyCode,
		HTML:   html,
		State:  map[string]any{"language": in.Language},
	}, nil
}
