package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// limitBody caps request bodies at maxBytes
func limitBody(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				respondError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body exceeds upload limit")
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger attaches a logger carrying the request id to the context
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := slog.Default().With("request_id", middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(ContextWithLogger(r.Context(), logger)))
	})
}
