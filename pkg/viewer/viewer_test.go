package viewer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcadia-data/preview/pkg/classify"
	"github.com/arcadia-data/preview/pkg/media"
)

func TestViewersShowSkeletonWhileLoading(t *testing.T) {
	ctx := context.Background()
	in := Input{FileName: "x", Loading: true}

	viewers := []Viewer{
		&CodeViewer{},
		&MarkdownViewer{},
		&TableViewer{},
		&SheetViewer{},
		&DocViewer{},
		&JSONViewer{},
	}
	for _, v := range viewers {
		frag, err := v.Render(ctx, in)
		require.NoError(t, err)
		assert.True(t, frag.Skeleton)
	}
}

func TestCodeViewerHighlights(t *testing.T) {
	v := &CodeViewer{}
	frag, err := v.Render(context.Background(), Input{
		FileName: "main.go",
		Language: "go",
		Contents: []byte("package main\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, classify.FamilyCode, frag.Family)
	assert.Contains(t, frag.HTML, "<pre")
}

func TestMarkdownViewerKeepsBothViews(t *testing.T) {
	v := &MarkdownViewer{}
	frag, err := v.Render(context.Background(), Input{
		FileName: "notes.md",
		Contents: []byte("# Hello\n"),
	})
	require.NoError(t, err)

	assert.Contains(t, frag.HTML, "markdown-rendered")
	// The code view is present but collapsed, not unmounted.
	assert.Contains(t, frag.HTML, "markdown-code")
	assert.Contains(t, frag.HTML, "height:0")
	assert.Equal(t, "rendered", frag.State["view"])
}

func TestTableViewerRendersCSV(t *testing.T) {
	v := &TableViewer{}
	frag, err := v.Render(context.Background(), Input{
		FileName: "test.csv",
		Contents: []byte("a,b\n1,2\n3,4\n"),
	})
	require.NoError(t, err)

	assert.Contains(t, frag.HTML, "<th>a</th>")
	assert.Contains(t, frag.HTML, "<td>3</td>")
	assert.Equal(t, 2, frag.State["rowCount"])
	assert.Equal(t, 1, frag.State["pageCount"])
}

func TestTableViewerDecodeErrorSurfaces(t *testing.T) {
	v := &TableViewer{}
	_, err := v.Render(context.Background(), Input{
		FileName: "bad.csv",
		Contents: []byte("a,b\n\"unterminated\n"),
	})
	require.Error(t, err)
}

func TestJSONViewerGroupsLargeArrays(t *testing.T) {
	payload := []byte("[")
	for i := 0; i < 150; i++ {
		if i > 0 {
			payload = append(payload, ',')
		}
		payload = append(payload, '1')
	}
	payload = append(payload, ']')

	v := &JSONViewer{}
	frag, err := v.Render(context.Background(), Input{FileName: "big.json", Contents: payload})
	require.NoError(t, err)

	groups, ok := frag.State["groups"].([]string)
	require.True(t, ok)
	assert.Equal(t, []string{"0-100", "100-150"}, groups)
	assert.Equal(t, "0-100", frag.State["activeGroup"])
}

func TestMediaViewerAcquiresLease(t *testing.T) {
	leases := media.NewStore(0)
	v := &MediaViewer{Family: classify.FamilyAudio, Leases: leases, BasePath: "/v1/media"}

	frag, err := v.Render(context.Background(), Input{
		FileName: "track.mp3",
		Contents: []byte("mp3bytes"),
	})
	require.NoError(t, err)

	require.NotEmpty(t, frag.LeaseID)
	assert.Contains(t, frag.HTML, "/v1/media/"+frag.LeaseID)
	assert.Contains(t, frag.HTML, "<audio")

	data, ct, err := leases.Open(frag.LeaseID)
	require.NoError(t, err)
	assert.Equal(t, "mp3bytes", string(data))
	assert.Equal(t, "audio/mpeg", ct)
}

func TestHTMLViewerUsesSandboxedIframe(t *testing.T) {
	leases := media.NewStore(0)
	v := &HTMLViewer{Leases: leases, BasePath: "/v1/media"}

	frag, err := v.Render(context.Background(), Input{
		FileName: "page.html",
		Contents: []byte("<h1>hi</h1>"),
	})
	require.NoError(t, err)
	assert.Contains(t, frag.HTML, `<iframe sandbox=""`)
	assert.NotContains(t, frag.HTML, "<h1>hi</h1>")
}
