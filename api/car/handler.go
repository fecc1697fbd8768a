// Package car exposes one elevator car over HTTP.
package car

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/kilianp07/lift/core/elevator"
	"github.com/kilianp07/lift/core/logger"
	"github.com/kilianp07/lift/core/model"
	"github.com/kilianp07/lift/core/records"
)

// Defaults are applied to serve calls that omit strategy or time.
type Defaults struct {
	Strategy elevator.Strategy
	IdleTime string
}

// Handler routes /api/car.
type Handler struct {
	car      *elevator.Guard
	defaults Defaults
	log      logger.Logger
	mux      *http.ServeMux
}

// NewHandler returns the car API. Every request runs under the guard.
func NewHandler(car *elevator.Guard, defaults Defaults, log logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop{}
	}
	h := &Handler{car: car, defaults: defaults, log: log, mux: http.NewServeMux()}
	h.mux.HandleFunc("GET /api/car", h.snapshot)
	h.mux.HandleFunc("POST /api/car/requests", h.enqueue)
	h.mux.HandleFunc("POST /api/car/serve", h.serve)
	h.mux.HandleFunc("POST /api/car/serve-next", h.serveNext)
	h.mux.HandleFunc("POST /api/car/reset", h.reset)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) { h.mux.ServeHTTP(w, r) }

func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	var snap elevator.Snapshot
	err := h.car.Do(func(e *elevator.Elevator) error {
		var err error
		snap, err = e.Snapshot(r.Context())
		return err
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) enqueue(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in, err := records.DecodeInput(body)
	if err != nil {
		h.fail(w, err)
		return
	}
	p, err := model.Trip(in.Name, in.CurrentFloor, in.DropOffFloor)
	if err != nil {
		h.fail(w, err)
		return
	}
	var stored model.Person
	err = h.car.Do(func(e *elevator.Elevator) error {
		stored, err = e.Enqueue(r.Context(), p)
		return err
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

type serveRequest struct {
	Strategy string `json:"strategy"`
	Time     string `json:"time"`
}

// ServeResponse describes a served batch.
type ServeResponse struct {
	BatchID    string         `json:"batchId"`
	Strategy   string         `json:"strategy"`
	Served     []model.Person `json:"served"`
	Distance   int            `json:"distance"`
	Stops      int            `json:"stops"`
	StartFloor int            `json:"startFloor"`
	EndFloor   int            `json:"endFloor"`
	IdleReturn bool           `json:"idleReturn"`
	Duration   string         `json:"duration"`
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request) {
	var req serveRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	strategy := h.defaults.Strategy
	if req.Strategy != "" {
		s, err := elevator.ParseStrategy(req.Strategy)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		strategy = s
	}
	opts := elevator.ServeOptions{}
	clock := h.defaults.IdleTime
	if req.Time != "" {
		clock = req.Time
	}
	if clock != "" {
		if _, err := elevator.ParseClock(clock); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		opts.Time = elevator.Clock(clock)
	}
	var rep elevator.Report
	err := h.car.Do(func(e *elevator.Elevator) error {
		var err error
		rep, err = e.Serve(r.Context(), strategy, opts)
		return err
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ServeResponse{
		BatchID:    rep.BatchID,
		Strategy:   string(rep.Strategy),
		Served:     nonNil(rep.Served),
		Distance:   rep.Distance,
		Stops:      rep.Stops,
		StartFloor: rep.StartFloor,
		EndFloor:   rep.EndFloor,
		IdleReturn: rep.IdleReturn,
		Duration:   rep.EndTime.Sub(rep.StartTime).Round(time.Microsecond).String(),
	})
}

func (h *Handler) serveNext(w http.ResponseWriter, r *http.Request) {
	var served *model.Person
	err := h.car.Do(func(e *elevator.Elevator) error {
		var err error
		served, err = e.ServeNext(r.Context())
		return err
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	if served == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, served)
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	var snap elevator.Snapshot
	err := h.car.Do(func(e *elevator.Elevator) error {
		if err := e.Reset(r.Context()); err != nil {
			return err
		}
		var err error
		snap, err = e.Snapshot(r.Context())
		return err
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case records.IsValidation(err),
		errors.Is(err, model.ErrInvalidName),
		errors.Is(err, model.ErrNoDropOff):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Errorf("car api: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func nonNil(ps []model.Person) []model.Person {
	if ps == nil {
		return []model.Person{}
	}
	return ps
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
