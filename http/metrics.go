package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler serves the Prometheus registry. A non-empty token guards
// the endpoint behind a bearer check; with no token the endpoint is open.
func MetricsHandler(token string) http.Handler {
	promHandler := promhttp.Handler()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			WriteError(w, http.StatusUnauthorized, "unauthorized", "Invalid or missing token")
			return
		}
		promHandler.ServeHTTP(w, r)
	})
}
