package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListEvents(t *testing.T) {
	mux := http.NewServeMux()
	New().Register(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, EventsPath, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "esd.serial.payment.status.paid", body[0]["name"])
	assert.Equal(t, true, body[0]["mailAware"])

	data := body[0]["data"].(map[string]any)
	assert.Equal(t, map[string]any{"type": "entity", "entityName": "order"}, data["order"])
	assert.Equal(t, map[string]any{"type": "array", "of": map[string]any{"type": "string"}}, data["esdSerials"])
}

func TestListEventsRejectsPost(t *testing.T) {
	rec := httptest.NewRecorder()
	New().ListEvents(rec, httptest.NewRequest(http.MethodPost, EventsPath, nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
