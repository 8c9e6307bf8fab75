package server

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/lattice/pkg/buildinfo"
	"github.com/matzehuels/lattice/pkg/errors"
	"github.com/matzehuels/lattice/pkg/pipeline"
	"github.com/matzehuels/lattice/pkg/scene"
)

// created is the response body of POST /scenes.
type created struct {
	ID       string `json:"id"`
	Scene    string `json:"scene"`
	Nodes    int    `json:"nodes"`
	Frames   int    `json:"frames"`
	Cached   bool   `json:"cached"`
	Location string `json:"location"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	format, err := sceneFormat(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxSceneBytes))
	if err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "read scene"))
		return
	}
	if len(body) == 0 {
		writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "empty scene"))
		return
	}

	res, err := s.runner.Execute(r.Context(), pipeline.Options{
		Source:      body,
		SceneFormat: format,
		Name:        r.URL.Query().Get("name"),
		Engine:      s.opts.Engine,
		Formats:     []string{pipeline.FormatJSON},
		Logger:      s.opts.Logger,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	sess := NewSession(res.Report, res.SceneHash, s.opts.TTL)
	sess.Cached = res.CacheInfo.ReportHit
	if err := s.sessions.Set(r.Context(), sess); err != nil {
		writeError(w, r, err)
		return
	}

	loc := "/scenes/" + sess.ID
	w.Header().Set("Location", loc)
	writeJSON(w, http.StatusCreated, created{
		ID:       sess.ID,
		Scene:    sess.Scene,
		Nodes:    res.Stats.NodeCount,
		Frames:   res.Stats.Frames,
		Cached:   sess.Cached,
		Location: loc,
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDiagram renders the session's final snapshot. ?geometry=1 adds sizes
// and positions to the labels; ?clusters=1 nests children in boxes.
func (s *Server) handleDiagram(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		q := r.URL.Query()
		artifacts, _, err := s.runner.RenderWithCacheInfo(r.Context(), sess.Report, sess.SceneHash, pipeline.Options{
			Engine:   s.opts.Engine,
			Formats:  []string{format},
			Geometry: flag(q.Get("geometry")),
			Clusters: flag(q.Get("clusters")),
			Logger:   s.opts.Logger,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		switch format {
		case pipeline.FormatSVG:
			w.Header().Set("Content-Type", "image/svg+xml")
		default:
			w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(artifacts[format])
	}
}

// sceneFormat reads the scene format from ?format= or the Content-Type.
func sceneFormat(r *http.Request) (string, error) {
	if f := r.URL.Query().Get("format"); f != "" {
		return f, errors.ValidateFormat(f, scene.FormatTOML, scene.FormatYAML, scene.FormatJSON)
	}
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return scene.FormatTOML, nil
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidFormat, err, "content type %q", ct)
	}
	switch mt {
	case "application/toml", "text/toml", "text/plain":
		return scene.FormatTOML, nil
	case "application/yaml", "application/x-yaml", "text/yaml":
		return scene.FormatYAML, nil
	case "application/json":
		return scene.FormatJSON, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported content type %q", mt)
}

func flag(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
