package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jvanacker/solshade/internal/measurements"
)

var errInvalidWindow = errors.New("start and end must be RFC 3339 timestamps")

// handleMeasurementsLatest returns the most recent measurements for a
// device.
func (s *Server) handleMeasurementsLatest(w http.ResponseWriter, r *http.Request) {
	if s.measurements == nil {
		writeError(w, http.StatusServiceUnavailable, "measurements not enabled")
		return
	}

	result, err := s.measurements.Latest(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		s.logger.Error("measurements query failed", "error", err)
		writeError(w, http.StatusBadGateway, "measurements query failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleMeasurementsRaw returns raw values for one device property.
//
// Query parameters:
//   - start, end: RFC 3339 window bounds (optional)
func (s *Server) handleMeasurementsRaw(w http.ResponseWriter, r *http.Request) {
	if s.measurements == nil {
		writeError(w, http.StatusServiceUnavailable, "measurements not enabled")
		return
	}

	window, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.measurements.Raw(r.Context(),
		chi.URLParam(r, "uuid"), chi.URLParam(r, "property"), window)
	if err != nil {
		s.logger.Error("measurements query failed", "error", err)
		writeError(w, http.StatusBadGateway, "measurements query failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleMeasurementsAggregated returns bucketed values for one device
// property.
//
// Query parameters:
//   - aggregation: sum, avg, min or max (default sum)
//   - start, end: RFC 3339 window bounds (optional)
func (s *Server) handleMeasurementsAggregated(w http.ResponseWriter, r *http.Request) {
	if s.measurements == nil {
		writeError(w, http.StatusServiceUnavailable, "measurements not enabled")
		return
	}

	window, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.measurements.Aggregated(r.Context(),
		chi.URLParam(r, "uuid"), chi.URLParam(r, "property"),
		chi.URLParam(r, "interval"), r.URL.Query().Get("aggregation"), window)
	if err != nil {
		s.logger.Error("measurements query failed", "error", err)
		writeError(w, http.StatusBadGateway, "measurements query failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleMeasurementsTotal returns aggregated values across all
// properties of a device.
//
// Query parameters:
//   - aggregation: sum, avg, min or max (default sum)
//   - start, end: RFC 3339 window bounds (optional)
func (s *Server) handleMeasurementsTotal(w http.ResponseWriter, r *http.Request) {
	if s.measurements == nil {
		writeError(w, http.StatusServiceUnavailable, "measurements not enabled")
		return
	}

	window, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.measurements.Total(r.Context(),
		chi.URLParam(r, "uuid"), r.URL.Query().Get("aggregation"), window)
	if err != nil {
		s.logger.Error("measurements query failed", "error", err)
		writeError(w, http.StatusBadGateway, "measurements query failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// parseWindow reads the optional start/end query parameters into a
// measurements window.
func parseWindow(r *http.Request) (measurements.Range, error) {
	var window measurements.Range

	if v := r.URL.Query().Get("start"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return window, errInvalidWindow
		}
		window.Start = parsed
	}
	if v := r.URL.Query().Get("end"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return window, errInvalidWindow
		}
		window.End = parsed
	}
	return window, nil
}
