package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/screens", func(r chi.Router) {
			r.Get("/", s.handleListScreens)
			r.Route("/{name}", func(r chi.Router) {
				r.Get("/", s.handleGetScreen)
				r.Get("/history", s.handleScreenHistory)
			})
		})

		r.Route("/solar", func(r chi.Router) {
			r.Get("/now", s.handleSolarNow)
			r.Get("/profile", s.handleSolarProfile)
		})

		r.Route("/measurements/{uuid}", func(r chi.Router) {
			r.Get("/", s.handleMeasurementsLatest)
			r.Get("/total", s.handleMeasurementsTotal)
			r.Get("/properties/{property}", s.handleMeasurementsRaw)
			r.Get("/properties/{property}/{interval}", s.handleMeasurementsAggregated)
		})

		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// loggingMiddleware logs each request at debug level.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
		)
		next.ServeHTTP(w, r)
	})
}
