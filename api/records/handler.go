// Package records serves the request and rider record stores over HTTP.
package records

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/kilianp07/lift/core/logger"
	"github.com/kilianp07/lift/core/records"
)

const maxBody = 1 << 20

// Handler routes /api/{collection} and /health.
type Handler struct {
	stores map[records.Collection]records.Store
	log    logger.Logger
	mux    *http.ServeMux
}

// NewHandler returns the record-store API for the given stores. A collection
// missing from stores answers 404.
func NewHandler(stores map[records.Collection]records.Store, log logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop{}
	}
	h := &Handler{stores: stores, log: log, mux: http.NewServeMux()}
	h.mux.HandleFunc("GET /health", h.health)
	h.mux.HandleFunc("POST /api/{collection}", h.create)
	h.mux.HandleFunc("GET /api/{collection}", h.list)
	h.mux.HandleFunc("DELETE /api/{collection}", h.deleteAll)
	h.mux.HandleFunc("GET /api/{collection}/{id}", h.get)
	h.mux.HandleFunc("PUT /api/{collection}/{id}", h.update)
	h.mux.HandleFunc("DELETE /api/{collection}/{id}", h.delete)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) { h.mux.ServeHTTP(w, r) }

func (h *Handler) store(w http.ResponseWriter, r *http.Request) (records.Collection, records.Store, bool) {
	c := records.Collection(r.PathValue("collection"))
	s, ok := h.stores[c]
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown collection")
		return c, nil, false
	}
	return c, s, true
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	_, s, ok := h.store(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in, err := records.DecodeInput(body)
	if err != nil {
		h.fail(w, err)
		return
	}
	rec, err := s.Create(r.Context(), in)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	_, s, ok := h.store(w, r)
	if !ok {
		return
	}
	recs, err := s.List(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	if recs == nil {
		recs = []records.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	c, s, ok := h.store(w, r)
	if !ok {
		return
	}
	rec, err := s.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.failFor(w, c, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	c, s, ok := h.store(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := records.DecodePatch(body)
	if err != nil {
		h.fail(w, err)
		return
	}
	rec, err := s.Update(r.Context(), r.PathValue("id"), p)
	if err != nil {
		h.failFor(w, c, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	c, s, ok := h.store(w, r)
	if !ok {
		return
	}
	rec, err := s.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		h.failFor(w, c, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) deleteAll(w http.ResponseWriter, r *http.Request) {
	c, s, ok := h.store(w, r)
	if !ok {
		return
	}
	n, err := s.DeleteAll(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Deleted %d %s", n, c),
		"count":   n,
	})
}

// Health is the liveness payload of GET /health.
type Health struct {
	Status   string `json:"status"`
	Requests int    `json:"requests"`
	Riders   int    `json:"riders"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	out := Health{Status: "ok"}
	for c, dst := range map[records.Collection]*int{records.Requests: &out.Requests, records.Riders: &out.Riders} {
		s, ok := h.stores[c]
		if !ok {
			continue
		}
		recs, err := s.List(r.Context())
		if err != nil {
			h.fail(w, err)
			return
		}
		*dst = len(recs)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) failFor(w http.ResponseWriter, c records.Collection, err error) {
	if errors.Is(err, records.ErrNotFound) {
		writeError(w, http.StatusNotFound, c.Singular()+" not found")
		return
	}
	h.fail(w, err)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	if records.IsValidation(err) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.log.Errorf("record store: %v", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
