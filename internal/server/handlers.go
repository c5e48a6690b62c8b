package server

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/greetcard/pkg/buildinfo"
	"github.com/matzehuels/greetcard/pkg/errors"
	"github.com/matzehuels/greetcard/pkg/httputil"
	"github.com/matzehuels/greetcard/pkg/photo"
	"github.com/matzehuels/greetcard/pkg/pipeline"
	"github.com/matzehuels/greetcard/pkg/share"
	"github.com/matzehuels/greetcard/pkg/template"
)

// multipartSlack covers form fields and part headers on top of the photo.
const multipartSlack = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "build": buildinfo.Get()})
}

// =============================================================================
// Generation
// =============================================================================

// flexNumber accepts a JSON number or a numeric string, as form-encoded
// clients send both.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return errors.New(errors.ErrCodeInvalidInput, "invalid number %s", b)
	}
	*n = flexNumber(v)
	return nil
}

type generateBody struct {
	Name     string     `json:"name"`
	Template string     `json:"template"`
	FontSize flexNumber `json:"fontSize"`
	Color    string     `json:"color"`
	Phone    string     `json:"phone"`
	Format   string     `json:"format"`
	Debug    bool       `json:"debug"`
}

func (b generateBody) request() pipeline.Request {
	return pipeline.Request{
		Text:       b.Name,
		TemplateID: b.Template,
		FontSize:   float64(b.FontSize),
		Color:      b.Color,
		Phone:      b.Phone,
		Format:     b.Format,
		Debug:      b.Debug,
	}
}

// readGenerate reads a generation request from a JSON or multipart body.
func (s *Server) readGenerate(w http.ResponseWriter, r *http.Request) (pipeline.Request, error) {
	if !httputil.IsMultipart(r) {
		var body generateBody
		if err := httputil.DecodeJSON(w, r, &body, 0); err != nil {
			return pipeline.Request{}, err
		}
		return body.request(), nil
	}

	if err := httputil.ParseMultipart(w, r, photo.MaxBytes+multipartSlack); err != nil {
		return pipeline.Request{}, err
	}
	body := generateBody{
		Name:     r.FormValue("name"),
		Template: r.FormValue("template"),
		Color:    r.FormValue("color"),
		Phone:    r.FormValue("phone"),
		Format:   r.FormValue("format"),
		Debug:    parseBool(r.FormValue("debug")),
	}
	if v := r.FormValue("fontSize"); v != "" {
		if err := body.FontSize.UnmarshalJSON([]byte(v)); err != nil {
			return pipeline.Request{}, err
		}
	}
	req := body.request()
	data, err := httputil.FormFile(r, "photo", photo.MaxBytes)
	if err != nil {
		return pipeline.Request{}, err
	}
	req.Photo = data
	return req, nil
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req, err := s.readGenerate(w, r)
	if err != nil {
		httputil.WriteError(w, s.logger, err)
		return
	}
	a, err := s.runner.Generate(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, s.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "url": a.PublicURL})
}

// queryRequest reads layout and preview parameters from the query string.
func queryRequest(r *http.Request) (pipeline.Request, error) {
	q := r.URL.Query()
	req := pipeline.Request{
		Text:       q.Get("name"),
		TemplateID: q.Get("template"),
		Color:      q.Get("color"),
		Debug:      parseBool(q.Get("debug")),
	}
	if v := q.Get("fontSize"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, errors.New(errors.ErrCodeInvalidInput, "invalid fontSize %q", v)
		}
		req.FontSize = f
	}
	return req, nil
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	req, err := queryRequest(r)
	if err != nil {
		httputil.WriteError(w, s.logger, err)
		return
	}
	res, err := s.runner.Layout(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, s.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "layout": res})
}

// handlePreview renders a preview PNG. POST accepts the same bodies as
// generation, so a photo can be previewed before submitting.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var (
		req pipeline.Request
		err error
	)
	if r.Method == http.MethodPost {
		req, err = s.readGenerate(w, r)
	} else {
		req, err = queryRequest(r)
	}
	if err != nil {
		httputil.WriteError(w, s.logger, err)
		return
	}
	data, hit, err := s.runner.PreviewWithCacheInfo(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, s.logger, err)
		return
	}
	w.Header().Set("X-Cache", cacheStatus(hit))
	httputil.WritePNG(w, data)
}

func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	p, err := s.artifacts.Path(chi.URLParam(r, "name"))
	if err != nil {
		httputil.WriteError(w, s.logger, err)
		return
	}
	http.ServeFile(w, r, p)
}

// =============================================================================
// Templates
// =============================================================================

func templateParam(r *http.Request) string {
	if name := r.URL.Query().Get("name"); name != "" {
		return name
	}
	return pipeline.DefaultTemplate
}

func (s *Server) handleTemplateList(w http.ResponseWriter, _ *http.Request) {
	ids, err := s.templates.List()
	if err != nil {
		httputil.WriteError(w, s.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "templates": ids})
}

func (s *Server) handleTemplateCheck(w http.ResponseWriter, r *http.Request) {
	res, err := s.templates.Check(templateParam(r))
	if err != nil {
		httputil.WriteError(w, s.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "path": filepath.Base(res.Path), "size": res.Size})
}

func (s *Server) handleTemplateMeta(w http.ResponseWriter, r *http.Request) {
	meta, err := s.templates.Meta(r.Context(), templateParam(r))
	if err != nil {
		httputil.WriteError(w, s.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "meta": meta})
}

type updateTemplateBody struct {
	Template string          `json:"template"`
	Meta     json.RawMessage `json:"meta"`
}

func (s *Server) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	var body updateTemplateBody
	if err := httputil.DecodeJSON(w, r, &body, 0); err != nil {
		httputil.WriteError(w, s.logger, err)
		return
	}
	if body.Template == "" || len(body.Meta) == 0 || string(body.Meta) == "null" {
		httputil.WriteError(w, s.logger, errors.New(errors.ErrCodeInvalidInput, "Missing template name or metadata"))
		return
	}
	var meta template.Meta
	if err := json.Unmarshal(body.Meta, &meta); err != nil {
		httputil.WriteError(w, s.logger, errors.Wrap(errors.ErrCodeMetadataParse, err, "invalid metadata"))
		return
	}
	if err := s.templates.UpdateMeta(r.Context(), body.Template, meta); err != nil {
		httputil.WriteError(w, s.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "Template updated successfully"})
}

// =============================================================================
// Sharing
// =============================================================================

// absoluteURL resolves a card URL against the configured or request origin.
func (s *Server) absoluteURL(r *http.Request, cardURL string) (string, error) {
	if cardURL == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "url is required")
	}
	base := s.baseURL
	if base == "" {
		scheme := "http"
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			scheme = "https"
		}
		base = scheme + "://" + r.Host
	}
	return share.Absolute(base, cardURL)
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cardURL, err := s.absoluteURL(r, q.Get("url"))
	if err != nil {
		httputil.WriteError(w, s.logger, err)
		return
	}
	platform := share.Platform(q.Get("platform"))
	if platform == "" {
		platform = share.PlatformWhatsApp
	}
	link, err := share.Link(platform, cardURL)
	if err != nil {
		httputil.WriteError(w, s.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "url": link, "message": share.Message(cardURL)})
}

func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cardURL, err := s.absoluteURL(r, q.Get("url"))
	if err != nil {
		httputil.WriteError(w, s.logger, err)
		return
	}
	size := 0
	if v := q.Get("size"); v != "" {
		if size, err = strconv.Atoi(v); err != nil {
			httputil.WriteError(w, s.logger, errors.New(errors.ErrCodeInvalidInput, "invalid size %q", v))
			return
		}
	}
	png, err := share.QR(cardURL, size)
	if err != nil {
		httputil.WriteError(w, s.logger, err)
		return
	}
	httputil.WritePNG(w, png)
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}

func cacheStatus(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}
