package app

import (
	"log/slog"
	"net/http"

	authapi "casavia/internal/auth/api"
	"casavia/internal/listings"
	"casavia/internal/store"
)

func registerHTTP(
	mux *http.ServeMux,
	log *slog.Logger,
	st *store.Store,
	auth *authapi.Handler,
	listingsHandler *listings.Handler,
	metrics *Metrics,
) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, _ *http.Request) {
		if !st.Ready() {
			http.Error(w, "store not seeded", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready\n"))
	})

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
	})

	// JSON 404 for anything no route claims.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		log.Debug("http.route_miss", "method", r.Method, "path", r.URL.Path)
		authapi.WriteMessage(w, http.StatusNotFound, "Route not found")
	})

	if metrics != nil {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	auth.Register(mux)
	listingsHandler.Register(mux, auth.RequireAuth)
}
