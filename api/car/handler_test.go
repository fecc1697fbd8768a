package car

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/lift/core/elevator"
)

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rr
}

func TestHandler_ServeFlow(t *testing.T) {
	h := NewHandler(elevator.NewGuard(elevator.New()), Defaults{Strategy: elevator.StrategyFIFO}, nil)

	rr := do(h, "POST", "/api/car/requests", `{"name":"A","currentFloor":1,"dropOffFloor":3}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = do(h, "POST", "/api/car/requests", `{"name":"B","currentFloor":2,"dropOffFloor":6}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = do(h, "GET", "/api/car", "")
	var snap elevator.Snapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	assert.Len(t, snap.Requests, 2)

	rr = do(h, "POST", "/api/car/serve", `{"time":"12:00"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var out ServeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, "fifo", out.Strategy)
	assert.Equal(t, 8, out.Distance)
	assert.Equal(t, 4, out.Stops)
	assert.Equal(t, 6, out.EndFloor)
	assert.Len(t, out.Served, 2)

	rr = do(h, "POST", "/api/car/serve-next", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(h, "POST", "/api/car/reset", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	assert.Zero(t, snap.TotalFloorsTraversed)
	assert.Zero(t, snap.Floor)
}

func TestHandler_ServeScanWithIdle(t *testing.T) {
	h := NewHandler(elevator.NewGuard(elevator.New()), Defaults{Strategy: elevator.StrategyFIFO, IdleTime: "09:00"}, nil)
	do(h, "POST", "/api/car/requests", `{"name":"A","currentFloor":3,"dropOffFloor":5}`)

	rr := do(h, "POST", "/api/car/serve", `{"strategy":"scan"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var out ServeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, "scan", out.Strategy)
	assert.True(t, out.IdleReturn)
	assert.Equal(t, 10, out.Distance)
	assert.Equal(t, 0, out.EndFloor)
}

func TestHandler_BadInput(t *testing.T) {
	h := NewHandler(elevator.NewGuard(elevator.New()), Defaults{}, nil)
	tests := []struct {
		target, body string
	}{
		{"/api/car/requests", `{"name":"A","currentFloor":"x","dropOffFloor":3}`},
		{"/api/car/requests", `{"currentFloor":1,"dropOffFloor":3}`},
		{"/api/car/serve", `{"strategy":"random"}`},
		{"/api/car/serve", `{"time":"25:00"}`},
		{"/api/car/serve", `{`},
	}
	for _, tt := range tests {
		rr := do(h, "POST", tt.target, tt.body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, tt.body)
	}
}
