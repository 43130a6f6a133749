// Package server provides shared middleware for the HTTP API.
package server

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/FocuswithJustin/furigana/internal/logging"
)

// Middleware wraps a handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares so that the first one listed runs first.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// CORSConfig holds CORS middleware configuration.
type CORSConfig struct {
	AllowedOrigins []string // empty = allow all (*)
	AllowedMethods []string // empty = GET, POST, OPTIONS
}

// CORSMiddleware adds CORS headers to responses. Requests from an origin
// outside a non-empty AllowedOrigins get no CORS headers, and their
// preflights are refused.
func CORSMiddleware(cfg CORSConfig) Middleware {
	methods := cfg.AllowedMethods
	if len(methods) == 0 {
		methods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	}
	allowMethods := strings.Join(methods, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowedOrigin := "*"
			if len(cfg.AllowedOrigins) > 0 {
				origin := r.Header.Get("Origin")
				if !slices.Contains(cfg.AllowedOrigins, origin) {
					if r.Method == http.MethodOptions {
						logging.SecurityEvent("cors_rejected", "server", "origin", origin)
						w.WriteHeader(http.StatusForbidden)
						return
					}
					next.ServeHTTP(w, r)
					return
				}
				allowedOrigin = origin
				w.Header().Add("Vary", "Origin")
			}

			w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			w.Header().Set("Access-Control-Allow-Methods", allowMethods)
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SlowRequestMiddleware warns about requests that take longer than threshold.
func SlowRequestMiddleware(threshold time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			if d := time.Since(start); d > threshold {
				logging.WarnContext(r.Context(), "slow_request",
					"method", r.Method,
					"path", r.URL.Path,
					"duration_ms", d.Milliseconds(),
				)
			}
		})
	}
}
