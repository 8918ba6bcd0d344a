package decode

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"

	"github.com/arcadia-data/preview/pkg/classify"
)

// markdownEngine is CommonMark + GFM with fenced-code highlighting.
var markdownEngine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlighting.NewHighlighting(highlighting.WithStyle("github")),
	),
)

// RenderedMarkdown carries both views of a markdown artifact: the rendered
// HTML and the identical source text the raw/"code" view displays. Both
// derive from one payload so toggling views never diverges.
type RenderedMarkdown struct {
	HTML   string
	Source string
}

// Markdown renders markdown text to HTML.
func Markdown(source string) (*RenderedMarkdown, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(source), &buf); err != nil {
		return nil, newError(classify.FamilyMarkdown, fmt.Sprintf("render: %v", err))
	}
	return &RenderedMarkdown{HTML: buf.String(), Source: source}, nil
}
