package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/arcadia-data/preview/pkg/config"
	"github.com/arcadia-data/preview/pkg/download"
	"github.com/arcadia-data/preview/pkg/media"
	"github.com/arcadia-data/preview/pkg/preview"
	"github.com/arcadia-data/preview/pkg/source"
)

// SessionHeader carries the client's viewing-surface identity. Every
// surface gets its own preview session (own cache, own leases).
const SessionHeader = "X-Preview-Session"

// Handler serves the preview API.
type Handler struct {
	Sessions *preview.Manager
	Leases   *media.Store
	Resolver *source.Resolver
	// Policy is the tenant profile restricting which content locations
	// may be previewed or downloaded; nil permits everything the
	// resolver supports.
	Policy *config.TenantProfile
	Logger *slog.Logger
}

// sourceAllowed checks the requested uri against the tenant source
// policy. Unparseable URIs are rejected outright.
func (h *Handler) sourceAllowed(raw string) bool {
	if h.Policy == nil {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return h.Policy.SchemeAllowed(u.Scheme) && h.Policy.HostAllowed(u.Host)
}

// Routes registers the API endpoints on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/v1/preview", h.handlePreview)
	mux.HandleFunc("/v1/session", h.handleSession)
	mux.HandleFunc("/v1/media/", h.handleMedia)
	mux.HandleFunc("/v1/download", h.handleDownload)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// previewResponse is the JSON shape of one rendered panel.
type previewResponse struct {
	Session   string         `json:"session"`
	State     string         `json:"state"`
	FileName  string         `json:"fileName"`
	Family    string         `json:"family,omitempty"`
	HTML      string         `json:"html,omitempty"`
	ViewState map[string]any `json:"viewState,omitempty"`
	Error     string         `json:"error,omitempty"`
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteMethodNotAllowed(w)
		return
	}

	uri := r.URL.Query().Get("uri")
	name := r.URL.Query().Get("name")
	if uri == "" || name == "" {
		WriteBadRequest(w, "uri and name query parameters are required")
		return
	}
	if !h.sourceAllowed(uri) {
		WriteForbidden(w, "content location not permitted by tenant policy")
		return
	}

	id, session := h.Sessions.Get(r.Header.Get(SessionHeader))
	panel := session.Display(r.Context(), preview.FileReference{URI: uri, FileName: name})

	resp := previewResponse{
		Session:  id,
		State:    string(panel.State),
		FileName: panel.FileName,
		Error:    panel.ErrorMessage,
	}
	if panel.Fragment != nil {
		resp.Family = string(panel.Fragment.Family)
		resp.HTML = panel.Fragment.HTML
		resp.ViewState = panel.Fragment.State
	}

	w.Header().Set(SessionHeader, id)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		WriteMethodNotAllowed(w)
		return
	}
	id := r.Header.Get(SessionHeader)
	if id == "" {
		WriteBadRequest(w, "missing "+SessionHeader+" header")
		return
	}
	h.Sessions.Close(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMedia(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteMethodNotAllowed(w)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/media/")
	data, contentType, err := h.Leases.Open(id)
	if err != nil {
		if errors.Is(err, media.ErrLeaseNotFound) {
			WriteNotFound(w, "media lease expired or unknown")
			return
		}
		WriteInternal(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, no-store")
	_, _ = w.Write(data)
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteMethodNotAllowed(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		WriteBadRequest(w, "malformed form body")
		return
	}

	uri := r.PostFormValue("uri")
	name := r.PostFormValue("name")
	if uri == "" || name == "" {
		WriteBadRequest(w, "uri and name form fields are required")
		return
	}
	if !h.sourceAllowed(uri) {
		WriteForbidden(w, "content location not permitted by tenant policy")
		return
	}

	src, err := h.Resolver.ForURI(uri)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	if err := download.ServeAttachment(r.Context(), w, src, uri, name); err != nil {
		var terr *source.TransportError
		if errors.As(err, &terr) && terr.Status != 0 {
			WriteError(w, terr.Status, "Download Failed", terr.Message)
			return
		}
		WriteInternal(w, err)
	}
}
