package server

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/molview/pkg/errors"
	"github.com/matzehuels/molview/pkg/geometry"
	"github.com/matzehuels/molview/pkg/molecule"
	"github.com/matzehuels/molview/pkg/pipeline"
	"github.com/matzehuels/molview/pkg/render/nodelink"
	"github.com/matzehuels/molview/pkg/sdf"
)

// moleculeSummary is the JSON view of a molecule.
type moleculeSummary struct {
	Name      string         `json:"name"`
	Formula   string         `json:"formula"`
	Atoms     int            `json:"atoms"`
	Bonds     int            `json:"bonds"`
	Fragments int            `json:"fragments"`
	Elements  map[string]int `json:"elements"`
}

func summarize(m *molecule.Molecule) moleculeSummary {
	return moleculeSummary{
		Name:      m.Name,
		Formula:   m.Formula(),
		Atoms:     m.AtomCount(),
		Bonds:     m.BondCount(),
		Fragments: len(m.Fragments()),
		Elements:  m.ElementCounts(),
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadBytes+1<<20) // form overhead

	if err := r.ParseMultipartForm(s.cfg.Server.MaxUploadBytes); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), string(errors.ErrCodeInvalidInput), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), string(errors.ErrCodeInvalidInput), http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.Server.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", string(errors.ErrCodeInternal), http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.Server.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.Server.MaxUploadBytes),
			string(errors.ErrCodeInvalidInput), http.StatusRequestEntityTooLarge)
		return
	}

	name := r.FormValue("name")
	if name == "" {
		name = uuid.NewString()
	}
	if err := errors.ValidateMoleculeName(name); err != nil {
		s.writeError(w, r, err)
		return
	}

	m, err := pipeline.Parse(data, name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Save(r.Context(), name, m); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.log.Info("stored molecule", "name", name, "atoms", m.AtomCount(), "bonds", m.BondCount())
	w.Header().Set("Location", "/molecules/"+name)
	writeJSON(w, http.StatusCreated, summarize(m))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"molecules": list, "count": len(list)})
}

// load fetches the molecule named in the URL, writing the error response
// itself when that fails.
func (s *Server) load(w http.ResponseWriter, r *http.Request) (*molecule.Molecule, bool) {
	m, err := s.store.Load(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return m, true
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	m, ok := s.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, summarize(m))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	rot, err := rotation(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	m, ok := s.load(w, r)
	if !ok {
		return
	}

	opts := s.renderOptions()
	opts.Rotation = rot
	res, err := s.runner.RenderMolecule(r.Context(), m, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeArtifact(w, pipeline.FormatSVG, res.Artifacts[pipeline.FormatSVG])
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	m, ok := s.load(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := sdf.Write(&buf, m); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "chemical/x-mdl-sdfile")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", m.Name+".sdf"))
	w.Write(buf.Bytes())
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	m, ok := s.load(w, r)
	if !ok {
		return
	}
	dot := nodelink.ToDOT(m, s.runner.Elements, nodelink.Options{Indices: r.URL.Query().Get("indices") == "true"})

	format := pipeline.FormatSVG
	var (
		data []byte
		err  error
	)
	switch r.URL.Query().Get("format") {
	case "", pipeline.FormatSVG:
		data, err = nodelink.RenderSVG(r.Context(), dot)
	case pipeline.FormatPNG:
		format = pipeline.FormatPNG
		data, err = nodelink.RenderPNG(r.Context(), dot, pipeline.DefaultPNGScale)
	case pipeline.FormatDOT:
		format, data = pipeline.FormatDOT, []byte(dot)
	default:
		err = errors.New(errors.ErrCodeInvalidFormat, "graph format must be svg, png or dot")
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeArtifact(w, format, data)
}

// handleRender draws a structure file posted as the raw request body
// without storing it.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	rot, err := rotation(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadBytes)
	src, err := io.ReadAll(r.Body)
	if err != nil {
		jsonError(w, fmt.Sprintf("body exceeds max size (%d bytes)", s.cfg.Server.MaxUploadBytes),
			string(errors.ErrCodeInvalidInput), http.StatusRequestEntityTooLarge)
		return
	}

	opts := s.renderOptions()
	opts.Rotation = rot
	opts.Formats = []string{format}
	res, err := s.runner.Execute(r.Context(), src, r.URL.Query().Get("name"), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeArtifact(w, format, res.Artifacts[format])
}

// rotation reads the rx, ry and rz query parameters as whole degrees.
// Missing parameters are 0.
func rotation(r *http.Request) (geometry.Euler, error) {
	var e geometry.Euler
	q := r.URL.Query()
	for _, p := range []struct {
		key string
		dst *float64
	}{{"rx", &e.X}, {"ry", &e.Y}, {"rz", &e.Z}} {
		v := q.Get(p.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return geometry.Euler{}, errors.New(errors.ErrCodeInvalidInput, "%s must be an integer number of degrees, got %q", p.key, v)
		}
		*p.dst = float64(n)
	}
	return e, nil
}

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz",
}

func writeArtifact(w http.ResponseWriter, format string, data []byte) {
	w.Header().Set("Content-Type", contentTypes[format])
	w.Write(data)
}
