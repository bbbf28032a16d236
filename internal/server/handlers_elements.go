package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/molview/pkg/elements"
	"github.com/matzehuels/molview/pkg/errors"
)

func (s *Server) handleListElements(w http.ResponseWriter, r *http.Request) {
	tbl, err := s.store.Elements(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"elements": tbl.All()})
}

// handlePutElement adds or replaces one element. New renders pick up the
// change immediately.
func (s *Server) handlePutElement(w http.ResponseWriter, r *http.Request) {
	var e elements.Element
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&e); err != nil {
		jsonError(w, "invalid element: "+err.Error(), string(errors.ErrCodeInvalidElement), http.StatusBadRequest)
		return
	}
	if err := e.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.PutElement(r.Context(), e); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.runner.Elements.Put(e); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.Info("stored element", "code", e.Code, "radius", e.Radius)
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleDeleteElement(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if err := s.store.DeleteElement(r.Context(), code); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.runner.Elements.Delete(code)
	w.WriteHeader(http.StatusNoContent)
}
