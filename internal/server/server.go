// Package server is the HTTP and WebSocket transport adapter in front of
// the session core.
package server

import (
	"log/slog"
	"net/http"

	"github.com/coco-labs/coco/internal/session"
)

// StreamObserver extends the cycle observer with connection-level signals.
type StreamObserver interface {
	session.CycleObserver
	SessionStarted()
	SessionEnded()
}

// Deps carries everything the handlers need. Observer and MetricsHandler
// may be nil.
type Deps struct {
	Registry       *session.Registry
	Gateway        session.Gateway
	Policy         session.CadencePolicy
	Observer       StreamObserver
	MetricsHandler http.Handler
	Logger         *slog.Logger
}

// Handler builds the service mux: session lifecycle API, the streaming
// websocket endpoint, and metrics.
func Handler(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	mux := http.NewServeMux()
	registerAPIRoutes(mux, deps)
	registerWSRoute(mux, deps)
	if deps.MetricsHandler != nil {
		mux.Handle("GET /metrics", deps.MetricsHandler)
	}

	return withCORS(mux)
}

// withCORS mirrors the permissive browser policy the frontend expects; the
// service carries no authentication model.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
