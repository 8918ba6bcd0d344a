// Package download implements the two file-save paths: a legacy form-post
// that carries the bearer token as a hidden field, and a direct
// fetch-then-attachment response. Which one a caller gets to use depends
// on whether the browser can render the file inline.
package download

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/arcadia-data/preview/pkg/classify"
	"github.com/arcadia-data/preview/pkg/source"
)

// allowedFormFields is the closed allow-list of extra form field names a
// caller may forward on the legacy form-post path. Anything else is
// silently dropped so callers cannot inject arbitrary POST fields.
var allowedFormFields = map[string]bool{
	"path": true,
}

// FormPost renders the legacy hidden-form markup. The server determines
// the saved filename via response headers, so the form only carries the
// token and allow-listed extras.
func FormPost(uri, token string, extra map[string]string) string {
	var sb strings.Builder
	sb.WriteString(`<form method="post" action="` + html.EscapeString(uri) + `">`)
	sb.WriteString(`<input type="hidden" name="token" value="` + html.EscapeString(token) + `"/>`)

	names := make([]string, 0, len(extra))
	for name := range extra {
		if allowedFormFields[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		sb.WriteString(`<input type="hidden" name="` + html.EscapeString(name) +
			`" value="` + html.EscapeString(extra[name]) + `"/>`)
	}

	sb.WriteString(`</form>`)
	return sb.String()
}

// OpensInBrowser reports whether a download of fileName should open in a
// new tab instead of forcing a save. Driven by the classifier's
// browser-renderable extension list.
func OpensInBrowser(fileName string) bool {
	return classify.BrowserRenderable(fileName)
}

// ServeAttachment retrieves uri and streams it as a browser download. The
// synthetic filename lands in Content-Disposition, mirroring the
// anchor-element download attribute of the direct path.
func ServeAttachment(ctx context.Context, w http.ResponseWriter, src source.Source, uri, fileName string) error {
	rc, meta, err := src.Open(ctx, uri)
	if err != nil {
		return fmt.Errorf("download %s: %w", fileName, err)
	}
	defer rc.Close() //nolint:errcheck // best-effort close

	contentType := "application/octet-stream"
	if meta != nil && meta.ContentType != "" {
		contentType = meta.ContentType
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))

	if _, err := io.Copy(w, rc); err != nil {
		return fmt.Errorf("stream %s: %w", fileName, err)
	}
	return nil
}
