package reservation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(t *testing.T) (*gin.Engine, string, *testClock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := setupTestDB(t)
	clock := newTestClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	svc := newTestService(t, db, clock)
	modelID, _ := seedFleet(t, db, 100, 200)

	h := NewHandler(svc)
	r := gin.New()
	v1 := r.Group("/api/v1")
	h.RegisterRoutes(v1)
	return r, modelID, clock
}

func doJSONRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func createHoldViaAPI(t *testing.T, r http.Handler, modelID string, clock *testClock) (string, string) {
	t.Helper()

	start := clock.Now().Add(24 * time.Hour)
	rr := doJSONRequest(r, http.MethodPost, "/api/v1/fleet/reservations/temporary", gin.H{
		"model_public_id": modelID,
		"booking_id":      uuid.NewString(),
		"start_date":      start.Format(time.RFC3339),
		"end_date":        start.Add(48 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp struct {
		Data struct {
			Reservation HoldResult `json:"reservation"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Data.Reservation.ReservationID, resp.Data.Reservation.VehicleID
}

func TestCreateHoldEndpoint(t *testing.T) {
	r, modelID, clock := setupTestRouter(t)

	reservationID, vehicleID := createHoldViaAPI(t, r, modelID, clock)
	assert.NotEmpty(t, reservationID)
	assert.NotEmpty(t, vehicleID)
}

func TestCreateHoldEndpoint_BadPayload(t *testing.T) {
	r, _, _ := setupTestRouter(t)

	rr := doJSONRequest(r, http.MethodPost, "/api/v1/fleet/reservations/temporary", gin.H{
		"booking_id": uuid.NewString(),
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "VALIDATION_ERROR")
}

func TestCreateHoldEndpoint_InvalidDateRange(t *testing.T) {
	r, modelID, clock := setupTestRouter(t)

	start := clock.Now().Add(48 * time.Hour)
	rr := doJSONRequest(r, http.MethodPost, "/api/v1/fleet/reservations/temporary", gin.H{
		"model_public_id": modelID,
		"booking_id":      uuid.NewString(),
		"start_date":      start.Format(time.RFC3339),
		"end_date":        start.Add(-24 * time.Hour).Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_DATE_RANGE")
}

func TestCreateHoldEndpoint_FleetExhausted(t *testing.T) {
	r, modelID, clock := setupTestRouter(t)

	createHoldViaAPI(t, r, modelID, clock)
	createHoldViaAPI(t, r, modelID, clock)

	start := clock.Now().Add(24 * time.Hour)
	rr := doJSONRequest(r, http.MethodPost, "/api/v1/fleet/reservations/temporary", gin.H{
		"model_public_id": modelID,
		"booking_id":      uuid.NewString(),
		"start_date":      start.Format(time.RFC3339),
		"end_date":        start.Add(48 * time.Hour).Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "NO_VEHICLE_AVAILABLE")
}

func TestConfirmEndpoint(t *testing.T) {
	r, modelID, clock := setupTestRouter(t)
	reservationID, _ := createHoldViaAPI(t, r, modelID, clock)

	rr := doJSONRequest(r, http.MethodPost,
		fmt.Sprintf("/api/v1/fleet/reservations/%s/confirm", reservationID),
		gin.H{"payment_reference": "pay-ref-1"})
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), "CONFIRMED")

	// Confirming twice is a state-transition conflict.
	rr = doJSONRequest(r, http.MethodPost,
		fmt.Sprintf("/api/v1/fleet/reservations/%s/confirm", reservationID),
		gin.H{"payment_reference": "pay-ref-1"})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_STATE_TRANSITION")
}

func TestConfirmEndpoint_Expired(t *testing.T) {
	r, modelID, clock := setupTestRouter(t)
	reservationID, _ := createHoldViaAPI(t, r, modelID, clock)

	clock.Advance(31 * time.Second)

	rr := doJSONRequest(r, http.MethodPost,
		fmt.Sprintf("/api/v1/fleet/reservations/%s/confirm", reservationID),
		gin.H{"payment_reference": "pay-ref-1"})
	assert.Equal(t, http.StatusGone, rr.Code)
	assert.Contains(t, rr.Body.String(), "RESERVATION_EXPIRED")
}

func TestConfirmEndpoint_NotFound(t *testing.T) {
	r, _, _ := setupTestRouter(t)

	rr := doJSONRequest(r, http.MethodPost,
		fmt.Sprintf("/api/v1/fleet/reservations/%s/confirm", uuid.NewString()),
		gin.H{"payment_reference": "pay-ref-1"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "RESERVATION_NOT_FOUND")
}

func TestCancelEndpoint(t *testing.T) {
	r, modelID, clock := setupTestRouter(t)
	reservationID, _ := createHoldViaAPI(t, r, modelID, clock)

	rr := doJSONRequest(r, http.MethodDelete,
		fmt.Sprintf("/api/v1/fleet/reservations/%s?reason=payment+failed", reservationID), nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = doJSONRequest(r, http.MethodDelete,
		fmt.Sprintf("/api/v1/fleet/reservations/%s", reservationID), nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestGetReservationEndpoint(t *testing.T) {
	r, modelID, clock := setupTestRouter(t)
	reservationID, vehicleID := createHoldViaAPI(t, r, modelID, clock)

	rr := doJSONRequest(r, http.MethodGet,
		fmt.Sprintf("/api/v1/fleet/reservations/%s", reservationID), nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), vehicleID)

	rr = doJSONRequest(r, http.MethodGet,
		fmt.Sprintf("/api/v1/fleet/reservations/%s", uuid.NewString()), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAvailabilityCountEndpoint(t *testing.T) {
	r, modelID, clock := setupTestRouter(t)

	start := clock.Now().Add(24 * time.Hour)
	end := start.Add(48 * time.Hour)
	path := fmt.Sprintf("/api/v1/fleet/models/%s/availability-count?start_date=%s&end_date=%s",
		modelID, start.Format(time.RFC3339), end.Format(time.RFC3339))

	rr := doJSONRequest(r, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"available_count":2`)

	createHoldViaAPI(t, r, modelID, clock)

	rr = doJSONRequest(r, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"available_count":1`)
}

func TestAvailabilityCountEndpoint_BadDates(t *testing.T) {
	r, modelID, _ := setupTestRouter(t)

	rr := doJSONRequest(r, http.MethodGet,
		fmt.Sprintf("/api/v1/fleet/models/%s/availability-count?start_date=notadate&end_date=alsonot", modelID), nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_DATE_RANGE")
}
