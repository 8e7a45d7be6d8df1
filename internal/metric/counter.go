package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type IncrementalCounter interface {
	Increment(val ...string)
}

type Counter struct {
	Name string
	Help string

	vec *prometheus.CounterVec
}

func (c *Counter) Increment(val ...string) {
	c.vec.WithLabelValues(val...).Inc()
}

func NewCounterWithRegistry(reg prometheus.Registerer, name, help string, labels ...string) IncrementalCounter {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: name,
		Help: help,
	}, labels)

	reg.MustRegister(counter)

	return &Counter{
		Name: name,
		Help: help,
		vec:  counter,
	}
}

// Metrics groups the counters the storefront reports
type Metrics struct {
	PathResolutions  IncrementalCounter // labels: outcome
	MenuFetches      IncrementalCounter // labels: result
	UpstreamRequests IncrementalCounter // labels: service, status

	gatherer prometheus.Gatherer
}

// NewMetrics registers the storefront counters on reg
func NewMetrics(reg *prometheus.Registry) *Metrics {
	return &Metrics{
		PathResolutions: NewCounterWithRegistry(reg,
			"storefront_path_resolutions_total",
			"Category path resolutions by outcome (exact, fallback, empty).",
			"outcome"),
		MenuFetches: NewCounterWithRegistry(reg,
			"storefront_menu_fetch_total",
			"Navigation menu fetches by result (ok, error).",
			"result"),
		UpstreamRequests: NewCounterWithRegistry(reg,
			"storefront_upstream_requests_total",
			"Requests to Shopify, Mailchimp and Strapi by HTTP status.",
			"service", "status"),
		gatherer: reg,
	}
}

// NewNopMetrics returns counters on a private registry, for tests and CLIs
func NewNopMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

// Handler serves the registry the counters were registered on
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
