package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jvanacker/solshade/internal/solar"
)

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	broker := "disconnected"
	if s.gateway != nil && s.gateway.IsConnected() {
		broker = "connected"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"broker":  broker,
		"screens": s.registry.Len(),
	})
}

// handleListScreens returns snapshots of every screen.
func (s *Server) handleListScreens(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"screens": s.registry.StatusAll(),
	})
}

// handleGetScreen returns the snapshot of one screen.
func (s *Server) handleGetScreen(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	status, ok := s.registry.StatusOf(name)
	if !ok {
		writeError(w, http.StatusNotFound, "screen not found")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// handleScreenHistory returns recent commands for one screen.
//
// Query parameters:
//   - limit: maximum entries (default 50, max 200)
func (s *Server) handleScreenHistory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if _, ok := s.registry.StatusOf(name); !ok {
		writeError(w, http.StatusNotFound, "screen not found")
		return
	}
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, "history not enabled")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	entries, err := s.history.ListByScreen(r.Context(), name, limit)
	if err != nil {
		s.logger.Error("listing command history failed", "screen", name, "error", err)
		writeError(w, http.StatusInternalServerError, "listing history failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"screen":  name,
		"history": entries,
	})
}

// handleSolarNow returns the current sun position, and the facade angle
// and heat gain when an azimuth is given.
//
// Query parameters:
//   - azimuth: facade orientation in compass degrees (optional)
func (s *Server) handleSolarNow(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	sun := solar.SunPosition(now, s.site.Latitude, s.site.Longitude)

	response := map[string]any{
		"at":        now,
		"azimuth":   sun.Azimuth,
		"elevation": sun.Elevation,
	}

	if v := r.URL.Query().Get("azimuth"); v != "" {
		wallAzimuth, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "azimuth must be a number")
			return
		}
		sample := s.site.Evaluate(wallAzimuth, now)
		response["wall_azimuth"] = wallAzimuth
		response["angle"] = sample.Angle
		response["back_side"] = sample.BackSide
		response["heat"] = sample.Heat
	}

	writeJSON(w, http.StatusOK, response)
}

// handleSolarProfile returns a day's facade profile and its hitting
// window.
//
// Query parameters:
//   - azimuth: facade orientation in compass degrees (required)
//   - date: day to profile, YYYY-MM-DD (default today)
//   - threshold: heat gain defining the hitting window (default 20)
func (s *Server) handleSolarProfile(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query().Get("azimuth")
	if v == "" {
		writeError(w, http.StatusBadRequest, "azimuth is required")
		return
	}
	wallAzimuth, err := strconv.ParseFloat(v, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "azimuth must be a number")
		return
	}

	day := time.Now()
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.ParseInLocation("2006-01-02", d, day.Location())
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}

	threshold := 20.0
	if t := r.URL.Query().Get("threshold"); t != "" {
		parsed, err := strconv.ParseFloat(t, 64)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "threshold must be a positive number")
			return
		}
		threshold = parsed
	}

	profile := s.site.DailyProfile(wallAzimuth, day)
	response := map[string]any{
		"wall_azimuth": wallAzimuth,
		"date":         day.Format("2006-01-02"),
		"threshold":    threshold,
		"profile":      profile,
	}

	if window, ok := solar.HittingWindow(profile, threshold); ok {
		response["window"] = window
	}

	writeJSON(w, http.StatusOK, response)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload) //nolint:errcheck // Client gone is not actionable
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
