package viewer

import (
	"context"
	"fmt"
	"html"
	"mime"
	"strings"

	"github.com/arcadia-data/preview/pkg/classify"
	"github.com/arcadia-data/preview/pkg/media"
)

// MediaViewer renders audio, image, and video artifacts. Payload bytes are
// parked behind a media lease and referenced by URL; the owning session
// releases the lease when the preview is torn down or the content changes.
type MediaViewer struct {
	Family classify.FormatFamily
	Leases *media.Store
	// BasePath prefixes lease URLs, e.g. "/v1/media".
	BasePath string
}

func (v *MediaViewer) Render(ctx context.Context, in Input) (*Fragment, error) {
	if in.Loading || in.Contents == nil {
		return skeleton(v.Family), nil
	}

	contentType := in.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = guessMediaType(v.Family, in.FileName)
	}

	lease := v.Leases.Acquire(in.Contents, contentType)
	src := html.EscapeString(strings.TrimRight(v.BasePath, "/") + "/" + lease.ID)

	var tag string
	switch v.Family {
	case classify.FamilyAudio:
		tag = `<audio controls src="` + src + `"></audio>`
	case classify.FamilyVideo:
		tag = `<video controls src="` + src + `"></video>`
	default:
		tag = `<img alt="` + html.EscapeString(in.FileName) + `" src="` + src + `"/>`
	}

	return &Fragment{
		Family:  v.Family,
		HTML:    tag,
		LeaseID: lease.ID,
	}, nil
}

// HTMLViewer renders HTML artifacts in a sandboxed iframe backed by a
// media lease, never inline.
type HTMLViewer struct {
	Leases   *media.Store
	BasePath string
}

func (v *HTMLViewer) Render(ctx context.Context, in Input) (*Fragment, error) {
	if in.Loading || in.Contents == nil {
		return skeleton(classify.FamilyHtml), nil
	}

	lease := v.Leases.Acquire(in.Contents, "text/html; charset=utf-8")
	src := html.EscapeString(strings.TrimRight(v.BasePath, "/") + "/" + lease.ID)

	return &Fragment{
		Family:  classify.FamilyHtml,
		HTML:    `<iframe sandbox="" src="` + src + `"></iframe>`,
		LeaseID: lease.ID,
	}, nil
}

func guessMediaType(family classify.FormatFamily, fileName string) string {
	ext := classify.Extension(strings.ToLower(fileName))
	if ext != "" {
		if t := mime.TypeByExtension("." + ext); t != "" {
			return t
		}
	}
	return fmt.Sprintf("%s/*", family)
}
