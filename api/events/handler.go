// Package events exposes the car event journal over HTTP.
package events

import (
	"encoding/json"
	"net/http"
	"time"

	carevents "github.com/kilianp07/lift/core/events"
	"github.com/kilianp07/lift/core/journal"
)

// NewHandler returns an HTTP handler exposing the journal via GET /api/events.
// Requests must include an Authorization header with "Bearer <token>" when
// token is non-empty. Supported filters: start, end (RFC3339), kind, person.
func NewHandler(store journal.Store, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		q, err := parseQuery(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		evs, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if evs == nil {
			evs = []carevents.Event{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(evs); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

type queryError string

func (e queryError) Error() string { return string(e) }

func parseQuery(r *http.Request) (journal.Query, error) {
	v := r.URL.Query()
	q := journal.Query{Person: v.Get("person")}
	if s := v.Get("start"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return q, queryError("start must be RFC3339")
		}
		q.Start = t
	}
	if s := v.Get("end"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return q, queryError("end must be RFC3339")
		}
		q.End = t
	}
	if s := v.Get("kind"); s != "" {
		k := carevents.Kind(s)
		if !k.Valid() {
			return q, queryError("unknown event kind " + s)
		}
		q.Kind = k
	}
	return q, nil
}
