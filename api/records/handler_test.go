package records

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/lift/core/records"
)

func newTestHandler() *Handler {
	return NewHandler(map[records.Collection]records.Store{
		records.Requests: records.NewMemoryStore(records.Requests),
		records.Riders:   records.NewMemoryStore(records.Riders),
	}, nil)
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rr
}

func TestHandler_CRUD(t *testing.T) {
	h := newTestHandler()

	rr := do(t, h, "POST", "/api/requests", `{"name":"Bob","currentFloor":3,"dropOffFloor":9}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created records.Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, "req_1", created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	rr = do(t, h, "GET", "/api/requests/req_1", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, "PUT", "/api/requests/req_1", `{"dropOffFloor":5}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var updated records.Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Equal(t, 5, updated.DropOffFloor)
	assert.Equal(t, "Bob", updated.Name)

	rr = do(t, h, "GET", "/api/requests", "")
	var list []records.Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rr = do(t, h, "DELETE", "/api/requests/req_1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	rr = do(t, h, "GET", "/api/requests/req_1", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"Request not found"}`, rr.Body.String())
}

func TestHandler_Validation(t *testing.T) {
	h := newTestHandler()
	rr := do(t, h, "POST", "/api/requests", `{"name":"Bob"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Missing required fields: name, currentFloor, dropOffFloor"}`, rr.Body.String())

	rr = do(t, h, "POST", "/api/requests", `{"name":"Bob","currentFloor":1.5,"dropOffFloor":2}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, "PUT", "/api/requests/req_9", `{"dropOffFloor":5}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, "GET", "/api/elevators", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_DeleteAllAndHealth(t *testing.T) {
	h := newTestHandler()
	for i := 0; i < 3; i++ {
		do(t, h, "POST", "/api/requests", `{"name":"A","currentFloor":0,"dropOffFloor":2}`)
	}
	do(t, h, "POST", "/api/riders", `{"name":"B","currentFloor":1,"dropOffFloor":4}`)

	rr := do(t, h, "GET", "/health", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok","requests":3,"riders":1}`, rr.Body.String())

	rr = do(t, h, "DELETE", "/api/requests", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Deleted 3 requests","count":3}`, rr.Body.String())

	rr = do(t, h, "GET", "/api/requests", "")
	assert.Equal(t, "[]\n", rr.Body.String())

	rr = do(t, h, "POST", "/api/requests", `{"name":"C","currentFloor":0,"dropOffFloor":2}`)
	var rec records.Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	assert.Equal(t, "req_4", rec.ID, "ids are never reused")
}
