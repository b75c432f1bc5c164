package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/database"
	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/handlers"
	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/inventory"
	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/ledger"
	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/service"
	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/websocket"
	"github.com/Ndikilo/CatucSmartCampus-sub001/shared/models"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestServer(t *testing.T) *mux.Router {
	t.Helper()
	registry, err := inventory.NewRegistry(inventory.DefaultCatalog())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := websocket.NewHub(zerolog.Nop())
	go hub.Run(ctx)

	svc := service.NewBookingService(database.NewMemoryStore(registry, ledger.New()), zerolog.Nop(),
		service.WithPublisher(hub))
	return SetupRouter(handlers.NewHandler(svc, zerolog.Nop()), hub, zerolog.Nop())
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRouter_BookingLifecycle(t *testing.T) {
	r := setupTestServer(t)

	rec := do(t, r, http.MethodPost, "/api/bookings", models.CreateBookingRequest{DeviceID: 1, UserName: "Alice", Duration: 2})
	require.Equal(t, http.StatusCreated, rec.Code)

	var booking models.Booking
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&booking))
	assert.Equal(t, 160.0, booking.TotalCost)

	rec = do(t, r, http.MethodPost, "/api/bookings", models.CreateBookingRequest{DeviceID: 1, UserName: "Bob", Duration: 1})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/devices?status=in-use", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var inUse []models.Device
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&inUse))
	require.Len(t, inUse, 1)
	assert.Equal(t, 1, inUse[0].ID)

	rec = do(t, r, http.MethodPost, "/api/bookings/"+booking.ID+"/end", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/bookings/"+booking.ID+"/end", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/bookings/recent?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var recent []models.Booking
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&recent))
	require.Len(t, recent, 1)
	assert.Equal(t, models.BookingStatusCompleted, recent[0].Status)

	rec = do(t, r, http.MethodGet, "/api/devices/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary models.AvailabilitySummary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&summary))
	assert.Equal(t, 10, summary.Available)
}

func TestRouter_CORSPreflight(t *testing.T) {
	r := setupTestServer(t)

	rec := do(t, r, http.MethodOptions, "/api/bookings", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_Health(t *testing.T) {
	r := setupTestServer(t)

	rec := do(t, r, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestStatusWriter_RecordsStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rec, status: http.StatusOK}

	sw.WriteHeader(http.StatusTeapot)

	assert.Equal(t, http.StatusTeapot, sw.status)
	assert.Equal(t, http.StatusTeapot, rec.Code)

	_, _, err := sw.Hijack()
	assert.Error(t, err)
}
