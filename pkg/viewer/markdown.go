package viewer

import (
	"context"

	"github.com/arcadia-data/preview/pkg/classify"
	"github.com/arcadia-data/preview/pkg/decode"
)

// MarkdownViewer renders markdown with a rendered/code toggle. Both views
// are always present in the fragment: the inactive one is collapsed to
// zero height instead of removed, so toggling never relayouts the column
// width.
type MarkdownViewer struct{}

func (v *MarkdownViewer) Render(ctx context.Context, in Input) (*Fragment, error) {
	if in.Loading || in.Contents == nil {
		return skeleton(classify.FamilyMarkdown), nil
	}

	md, err := decode.Markdown(decode.Text(in.Contents))
	if err != nil {
		return nil, err
	}

	code, err := decode.Highlight(md.Source, "markdown", in.FileName)
	if err != nil {
		return nil, err
	}

	html := `<div class="markdown-rendered">` + md.HTML + `</div>` +
		`<div class="markdown-code" style="height:0;overflow:hidden">` + code + `</div>`

	return &Fragment{
		Family: classify.FamilyMarkdown,
		HTML:   html,
		State:  map[string]any{"view": "rendered"},
	}, nil
}
