// Package metrics holds the gateway's Prometheus collectors. Collectors
// register on the default registry at init and are exported over the
// /-/metrics endpoint by the http package.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts completed HTTP requests by method and status code.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edgegate_http_requests_total",
		Help: "Completed HTTP requests.",
	}, []string{"method", "code"})

	// InFlight tracks requests currently being served.
	InFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "edgegate_http_requests_in_flight",
		Help: "Requests currently being served.",
	})

	// DeniedTotal counts requests denied by the authorization engine.
	DeniedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edgegate_denied_total",
		Help: "Requests denied by the authorization engine, by reason.",
	}, []string{"reason"})

	// ConfigVersion reports the version of the active policy snapshot.
	ConfigVersion = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "edgegate_config_version",
		Help: "Version of the active policy snapshot.",
	})

	// ConfigReloads counts policy snapshot reload attempts by result.
	ConfigReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edgegate_config_reloads_total",
		Help: "Policy snapshot reload attempts, by result.",
	}, []string{"result"})
)
