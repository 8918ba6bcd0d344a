package jsonview

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcadia-data/preview/pkg/decode"
)

func makeItems(n int) []any {
	items := make([]any, n)
	for i := range items {
		items[i] = float64(i)
	}
	return items
}

func TestGroupArrayBoundary(t *testing.T) {
	// Exactly GroupSize elements: not grouped.
	assert.Nil(t, GroupArray(makeItems(100)))

	// One more: exactly two groups, "0-100" and "100-101".
	groups := GroupArray(makeItems(101))
	require.Len(t, groups, 2)
	assert.Equal(t, "0-100", groups[0].Label)
	assert.Equal(t, "100-101", groups[1].Label)
	assert.Len(t, groups[0].Items, 100)
	assert.Len(t, groups[1].Items, 1)
}

func TestGroupArrayPartitionsExhaustively(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("groups cover the array contiguously", prop.ForAll(
		func(n int) bool {
			items := makeItems(n)
			groups := GroupArray(items)
			if n <= GroupSize {
				return groups == nil
			}
			total := 0
			next := 0
			for _, g := range groups {
				if g.Start != next || g.End-g.Start != len(g.Items) {
					return false
				}
				next = g.End
				total += len(g.Items)
			}
			return total == n && next == n
		},
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}

func TestRenderPrimitivesRoundTrip(t *testing.T) {
	// Literal rendering must reproduce JSON literal text.
	v, err := decode.JSON([]byte(`{"a":1,"b":null,"c":[1,2,3]}`))
	require.NoError(t, err)

	out := Render(v, Options{Standalone: true})
	assert.Contains(t, out, ">1</code>")
	assert.Contains(t, out, ">null</code>")
	assert.Contains(t, out, `<summary>c</summary>`)
}

func TestRenderDistinguishesNullFromMissing(t *testing.T) {
	v, err := decode.JSON([]byte(`{"present":null}`))
	require.NoError(t, err)

	out := Render(v, Options{Standalone: true})
	assert.Contains(t, out, "null")
}

func TestRenderStringsAreQuotedAndEscaped(t *testing.T) {
	out := Render("x<y", Options{})
	assert.Contains(t, out, "&#34;x&lt;y&#34;")
}

func TestRenderLargeArrayShowsFirstGroup(t *testing.T) {
	out := Render(makeItems(250), Options{Standalone: true})

	// Selector lists all groups; only the first renders.
	assert.Contains(t, out, `<option value="0-100" selected>`)
	assert.Contains(t, out, `<option value="100-200">`)
	assert.Contains(t, out, `<option value="200-250">`)
	assert.Contains(t, out, `data-key="group-0-100"`)
	assert.NotContains(t, out, `data-key="group-100-200"`)
}

func TestRenderNestedObjectsUseRawTree(t *testing.T) {
	v, err := decode.JSON([]byte(`{"outer":{"inner":1}}`))
	require.NoError(t, err)

	out := Render(v, Options{Standalone: true})
	// One accordion at the top, raw tree below.
	assert.Equal(t, 1, strings.Count(out, `<div class="json-accordion">`))
	assert.Contains(t, out, `<ul class="json-object">`)
}

func TestRenderDepthCapDegradesGracefully(t *testing.T) {
	// Build nesting deeper than MaxDepth.
	var v any = "leaf"
	for i := 0; i < MaxDepth+10; i++ {
		v = map[string]any{"k": v}
	}

	out := Render(v, Options{Standalone: true})
	assert.Contains(t, out, "json-truncated")
}

func TestRenderShowAsRaw(t *testing.T) {
	v := map[string]any{"a": float64(1)}
	out := Render(v, Options{Standalone: true, ShowAsRaw: true})
	assert.NotContains(t, out, "json-accordion")
	assert.Contains(t, out, `<ul class="json-object">`)
}
