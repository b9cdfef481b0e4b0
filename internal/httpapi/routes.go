// Package httpapi exposes the purchase form over JSON HTTP so a browser or
// script can drive the same controller as the terminal front ends.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter returns the HTTP handler for the form API.
//
// Routes:
//
//	GET  /api/models          → catalog entries
//	GET  /api/models/{model}  → form fields auto-filled for model
//	GET  /api/entries         → all recorded entries in id order
//	POST /api/entries         → submit the form (JSON body)
func NewRouter(h *Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(WithRequestLogging(logger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/models", h.ListModels)
		r.Get("/models/{model}", h.SelectModel)
		r.Get("/entries", h.ListEntries)
		r.With(chiMiddleware.AllowContentType("application/json")).Post("/entries", h.Submit)
	})

	return r
}

// WithRequestLogging logs one line per request with its status and latency.
func WithRequestLogging(logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chiMiddleware.GetReqID(r.Context())),
			)
		})
	}
}
