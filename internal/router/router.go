package router

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/handlers"
	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/websocket"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(h *handlers.Handler, hub *websocket.Hub, logger zerolog.Logger) *mux.Router {
	r := mux.NewRouter()

	r.Use(corsMiddleware)
	r.Use(loggingMiddleware(logger))

	// API routes
	api := r.PathPrefix("/api").Subrouter()

	// Devices
	api.HandleFunc("/devices", h.ListDevices).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/devices/summary", h.GetSummary).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/devices/{id}", h.GetDevice).Methods(http.MethodGet, http.MethodOptions)

	// Bookings; /recent must be registered ahead of /{id}
	api.HandleFunc("/bookings", h.CreateBooking).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/bookings", h.ListBookings).Methods(http.MethodGet)
	api.HandleFunc("/bookings/recent", h.ListRecentBookings).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/bookings/{id}", h.GetBooking).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/bookings/{id}/end", h.EndSession).Methods(http.MethodPost, http.MethodOptions)

	// WebSocket for real-time updates
	api.HandleFunc("/ws", hub.HandleWebSocket)

	// Health check
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrader take over the connection
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	w.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

func loggingMiddleware(logger zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			event := logger.Info()
			if sw.status >= http.StatusInternalServerError {
				event = logger.Error()
			}
			event.
				Str("ip", r.RemoteAddr).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", sw.status).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}
