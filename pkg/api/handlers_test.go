package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcadia-data/preview/pkg/api"
	"github.com/arcadia-data/preview/pkg/config"
	"github.com/arcadia-data/preview/pkg/fetch"
	"github.com/arcadia-data/preview/pkg/media"
	"github.com/arcadia-data/preview/pkg/preview"
	"github.com/arcadia-data/preview/pkg/source"
)

func newTestAPI(t *testing.T, content http.Handler) (http.Handler, *httptest.Server, *media.Store) {
	t.Helper()
	srv := httptest.NewServer(content)
	t.Cleanup(srv.Close)

	resolver := &source.Resolver{HTTP: source.NewHTTPSource(srv.Client(), nil)}
	leases := media.NewStore(0)
	sessions := preview.NewManager(func() *preview.Session {
		return preview.NewSession(preview.Config{
			Fetcher:       fetch.New(resolver),
			Leases:        leases,
			Opener:        resolver,
			MediaBasePath: "/v1/media",
		})
	})
	t.Cleanup(sessions.CloseAll)

	h := &api.Handler{Sessions: sessions, Leases: leases, Resolver: resolver}
	mux := http.NewServeMux()
	h.Routes(mux)
	return mux, srv, leases
}

func TestPreviewEndpointRendersPanel(t *testing.T) {
	handler, srv, _ := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("a,b\n1,2"))
	}))

	req := httptest.NewRequest("GET", "/v1/preview?uri="+url.QueryEscape(srv.URL+"/data.csv")+"&name=data.csv", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Session  string `json:"session"`
		State    string `json:"state"`
		FileName string `json:"fileName"`
		Family   string `json:"family"`
		HTML     string `json:"html"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	assert.Equal(t, "ready", resp.State)
	assert.Equal(t, "data.csv", resp.FileName)
	assert.Equal(t, "csv", resp.Family)
	assert.Contains(t, resp.HTML, "<th>a</th>")
	assert.NotEmpty(t, resp.Session)
	assert.Equal(t, resp.Session, w.Header().Get(api.SessionHeader))
}

func TestPreviewEndpointReusesSession(t *testing.T) {
	hits := 0
	handler, srv, _ := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte("hello"))
	}))

	target := "/v1/preview?uri=" + url.QueryEscape(srv.URL+"/note.txt") + "&name=note.txt"

	w1 := httptest.NewRecorder()
	handler.ServeHTTP(w1, httptest.NewRequest("GET", target, nil))
	id := w1.Header().Get(api.SessionHeader)
	require.NotEmpty(t, id)

	req2 := httptest.NewRequest("GET", target, nil)
	req2.Header.Set(api.SessionHeader, id)
	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, req2)

	assert.Equal(t, id, w2.Header().Get(api.SessionHeader))
	assert.Equal(t, 1, hits, "same session should serve the second request from cache")
}

func TestPreviewEndpointRequiresParams(t *testing.T) {
	handler, _, _ := newTestAPI(t, http.NotFoundHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/v1/preview?uri=x", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

// newPolicyAPI builds a handler whose source policy is the given profile.
func newPolicyAPI(t *testing.T, content http.Handler, policy *config.TenantProfile) (http.Handler, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(content)
	t.Cleanup(srv.Close)

	resolver := &source.Resolver{HTTP: source.NewHTTPSource(srv.Client(), nil)}
	leases := media.NewStore(0)
	sessions := preview.NewManager(func() *preview.Session {
		return preview.NewSession(preview.Config{
			Fetcher:       fetch.New(resolver),
			Leases:        leases,
			Opener:        resolver,
			MediaBasePath: "/v1/media",
		})
	})
	t.Cleanup(sessions.CloseAll)

	h := &api.Handler{Sessions: sessions, Leases: leases, Resolver: resolver, Policy: policy}
	mux := http.NewServeMux()
	h.Routes(mux)
	return mux, srv
}

func TestTenantPolicyBlocksDisallowedSources(t *testing.T) {
	handler, srv := newPolicyAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello"))
	}), &config.TenantProfile{
		Code:    "locked",
		Sources: config.SourcePolicy{AllowedSchemes: []string{"s3"}},
	})

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/v1/preview?uri="+url.QueryEscape(srv.URL+"/data.csv")+"&name=data.csv", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	form := url.Values{"uri": {srv.URL + "/f.csv"}, "name": {"f.csv"}}
	req := httptest.NewRequest("POST", "/v1/download", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTenantPolicyPermitsAllowedHost(t *testing.T) {
	content := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("a,b\n1,2"))
	})

	// The policy host is only known once the test server is up, so the
	// profile's allow-list is filled in after construction.
	policy := &config.TenantProfile{
		Sources: config.SourcePolicy{AllowedSchemes: []string{"http", "https"}},
	}
	handler, srv := newPolicyAPI(t, content, policy)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	policy.Sources.AllowedHosts = []string{u.Host}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/v1/preview?uri="+url.QueryEscape(srv.URL+"/data.csv")+"&name=data.csv", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/v1/preview?uri="+url.QueryEscape("https://elsewhere.example/data.csv")+"&name=data.csv", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSessionDeleteReleasesSession(t *testing.T) {
	handler, srv, _ := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello"))
	}))

	w1 := httptest.NewRecorder()
	handler.ServeHTTP(w1, httptest.NewRequest("GET", "/v1/preview?uri="+url.QueryEscape(srv.URL+"/a.txt")+"&name=a.txt", nil))
	id := w1.Header().Get(api.SessionHeader)
	require.NotEmpty(t, id)

	req := httptest.NewRequest("DELETE", "/v1/session", nil)
	req.Header.Set(api.SessionHeader, id)
	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, req)

	assert.Equal(t, http.StatusNoContent, w2.Code)
}

func TestMediaEndpointServesLease(t *testing.T) {
	handler, _, leases := newTestAPI(t, http.NotFoundHandler())

	lease := leases.Acquire([]byte("RIFFdata"), "audio/wav")

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/v1/media/"+lease.ID, nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "audio/wav", w.Header().Get("Content-Type"))
	assert.Equal(t, "RIFFdata", w.Body.String())
}

func TestMediaEndpointUnknownLease(t *testing.T) {
	handler, _, _ := newTestAPI(t, http.NotFoundHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/v1/media/does-not-exist", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDownloadEndpointStreamsAttachment(t *testing.T) {
	handler, srv, _ := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("a,b\n"))
	}))

	form := url.Values{"uri": {srv.URL + "/f.csv"}, "name": {"f.csv"}}
	req := httptest.NewRequest("POST", "/v1/download", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="f.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "a,b\n", w.Body.String())
}

func TestDownloadEndpointUpstreamFailure(t *testing.T) {
	handler, srv, _ := newTestAPI(t, http.NotFoundHandler())

	form := url.Values{"uri": {srv.URL + "/f.csv"}, "name": {"f.csv"}}
	req := httptest.NewRequest("POST", "/v1/download", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	handler, _, _ := newTestAPI(t, http.NotFoundHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok"`)
}
