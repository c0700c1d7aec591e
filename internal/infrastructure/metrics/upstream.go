// Package metrics holds the prometheus instruments shared by the
// upstream client adapters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var upstreamRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "csc_portal_upstream_requests_total",
		Help: "Calls to upstream services, by upstream and outcome.",
	},
	[]string{"upstream", "outcome"},
)

// ObserveUpstream counts one call to the named upstream service. A nil
// err records an ok outcome.
func ObserveUpstream(upstream string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	upstreamRequests.WithLabelValues(upstream, outcome).Inc()
}
