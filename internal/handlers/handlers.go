package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/service"
	"github.com/Ndikilo/CatucSmartCampus-sub001/shared/models"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Handler contains HTTP handlers for the API
type Handler struct {
	bookingService service.BookingService
	log            zerolog.Logger
}

// NewHandler creates a new Handler instance
func NewHandler(bookingService service.BookingService, logger zerolog.Logger) *Handler {
	return &Handler{
		bookingService: bookingService,
		log:            logger,
	}
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps workflow errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrDeviceNotFound), errors.Is(err, models.ErrBookingNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrDeviceNotAvailable), errors.Is(err, models.ErrBookingAlreadyCompleted):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidDuration),
		errors.Is(err, models.ErrInvalidUserName),
		errors.Is(err, models.ErrInvalidDeviceType),
		errors.Is(err, models.ErrInvalidDeviceStatus):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		respondError(w, status, "Internal server error")
		return
	}
	respondError(w, status, err.Error())
}

// ListDevices handles GET /api/devices
func (h *Handler) ListDevices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.DeviceFilter{
		Type:   models.DeviceType(q.Get("type")),
		Status: models.DeviceStatus(q.Get("status")),
	}

	devices, err := h.bookingService.ListDevices(r.Context(), filter)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, devices)
}

// GetDevice handles GET /api/devices/{id}
func (h *Handler) GetDevice(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid device ID")
		return
	}

	device, err := h.bookingService.GetDevice(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, device)
}

// GetSummary handles GET /api/devices/summary
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.bookingService.Summary(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// CreateBooking handles POST /api/bookings
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req models.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.DeviceID <= 0 {
		respondError(w, http.StatusBadRequest, "Device ID is required")
		return
	}

	booking, err := h.bookingService.CreateBooking(r.Context(), &req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, booking)
}

// ListBookings handles GET /api/bookings. Only active bookings are listed here;
// completed ones are served by /api/bookings/recent.
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	if status := r.URL.Query().Get("status"); status != "" && status != string(models.BookingStatusActive) {
		respondError(w, http.StatusBadRequest, "Only status=active is supported")
		return
	}

	bookings, err := h.bookingService.ListActiveBookings(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, bookings)
}

// ListRecentBookings handles GET /api/bookings/recent
func (h *Handler) ListRecentBookings(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "Limit must be a positive integer")
			return
		}
		limit = n
	}

	bookings, err := h.bookingService.ListRecentBookings(r.Context(), limit)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, bookings)
}

// GetBooking handles GET /api/bookings/{id}
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.bookingService.GetBooking(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, booking)
}

// EndSession handles POST /api/bookings/{id}/end
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	booking, err := h.bookingService.EndSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, booking)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}
