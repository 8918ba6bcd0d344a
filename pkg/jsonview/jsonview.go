// Package jsonview renders arbitrary JSON values as a navigable HTML tree.
// Large arrays are split into contiguous groups before rendering so a
// million-element payload never produces a million DOM nodes at once.
package jsonview

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/gowebpki/jcs"

	"github.com/arcadia-data/preview/pkg/decode"
)

const (
	// GroupSize is the grouping threshold and group width. Arrays of up
	// to GroupSize elements render ungrouped; longer arrays split into
	// contiguous GroupSize-element groups, last group possibly shorter.
	GroupSize = 100

	// MaxDepth bounds render recursion. JSON has no cycles, but a
	// pathological payload can nest arbitrarily deep; past this depth the
	// subtree degrades to a canonical raw literal.
	MaxDepth = 50
)

// Group is one contiguous slice of a large array. Label is the
// human-readable "start-end" range, end exclusive.
type Group struct {
	Label string
	Start int
	End   int
	Items []any
}

// Options controls rendering of one navigator call.
type Options struct {
	// Standalone marks the top-level call; nested calls render objects as
	// raw collapsible trees instead of accordions of accordions.
	Standalone bool
	// ShowAsRaw forces the raw tree view.
	ShowAsRaw bool
}

// GroupArray partitions items into contiguous groups. It returns nil when
// the array is short enough to render directly. Groups partition the input
// exhaustively: the union of all groups is the original array.
func GroupArray(items []any) []Group {
	if len(items) <= GroupSize {
		return nil
	}
	var groups []Group
	for start := 0; start < len(items); start += GroupSize {
		end := start + GroupSize
		if end > len(items) {
			end = len(items)
		}
		groups = append(groups, Group{
			Label: fmt.Sprintf("%d-%d", start, end),
			Start: start,
			End:   end,
			Items: items[start:end],
		})
	}
	return groups
}

// Render produces the HTML tree for a JSON value.
func Render(v any, opts Options) string {
	var sb strings.Builder
	render(&sb, v, opts, 0)
	return sb.String()
}

func render(sb *strings.Builder, v any, opts Options, depth int) {
	if depth > MaxDepth {
		renderCanonical(sb, v)
		return
	}

	switch val := v.(type) {
	case map[string]any:
		if opts.Standalone && !opts.ShowAsRaw {
			renderAccordion(sb, val, depth)
			return
		}
		renderRawObject(sb, val, depth)
	case []any:
		renderArray(sb, val, opts, depth)
	default:
		renderLiteral(sb, v)
	}
}

// renderAccordion renders each object key as an expandable section whose
// body is a recursive navigator call. Nested calls switch to the raw tree
// to avoid an accordion of accordions.
func renderAccordion(sb *strings.Builder, obj map[string]any, depth int) {
	sb.WriteString(`<div class="json-accordion">`)
	for _, key := range sortedKeys(obj) {
		sb.WriteString(`<details><summary>` + html.EscapeString(key) + `</summary>`)
		render(sb, obj[key], Options{}, depth+1)
		sb.WriteString(`</details>`)
	}
	sb.WriteString(`</div>`)
}

func renderRawObject(sb *strings.Builder, obj map[string]any, depth int) {
	sb.WriteString(`<ul class="json-object">`)
	for _, key := range sortedKeys(obj) {
		sb.WriteString(`<li><span class="json-key">` + html.EscapeString(key) + `</span>: `)
		render(sb, obj[key], Options{}, depth+1)
		sb.WriteString(`</li>`)
	}
	sb.WriteString(`</ul>`)
}

// renderArray renders short arrays inline. Long arrays render as a group
// selector plus the first group; each group's container carries the group
// label in its key so switching groups remounts the subtree and resets any
// expand/collapse state.
func renderArray(sb *strings.Builder, items []any, opts Options, depth int) {
	groups := GroupArray(items)
	if groups == nil {
		sb.WriteString(`<ol class="json-array" start="0">`)
		for _, item := range items {
			sb.WriteString(`<li>`)
			render(sb, item, Options{}, depth+1)
			sb.WriteString(`</li>`)
		}
		sb.WriteString(`</ol>`)
		return
	}

	sb.WriteString(`<div class="json-array-groups">`)
	sb.WriteString(`<select class="json-group-select">`)
	for i, g := range groups {
		selected := ""
		if i == 0 {
			selected = ` selected`
		}
		sb.WriteString(`<option value="` + g.Label + `"` + selected + `>` + g.Label + `</option>`)
	}
	sb.WriteString(`</select>`)

	first := groups[0]
	sb.WriteString(`<div class="json-group" data-key="group-` + first.Label + `">`)
	renderArray(sb, first.Items, opts, depth+1)
	sb.WriteString(`</div></div>`)
}

// renderLiteral writes a primitive with JSON literal semantics: strings
// quoted, numbers and booleans bare, nil as the literal null.
func renderLiteral(sb *strings.Builder, v any) {
	sb.WriteString(`<code class="json-literal">`)
	sb.WriteString(html.EscapeString(decode.JSONLiteral(v)))
	sb.WriteString(`</code>`)
}

// renderCanonical flattens an over-deep subtree into one canonicalized
// JSON literal (RFC 8785).
func renderCanonical(sb *strings.Builder, v any) {
	raw := decode.JSONLiteral(v)
	if canonical, err := jcs.Transform([]byte(raw)); err == nil {
		raw = string(canonical)
	}
	sb.WriteString(`<code class="json-literal json-truncated">`)
	sb.WriteString(html.EscapeString(raw))
	sb.WriteString(`</code>`)
}

func sortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
