package prometheus

import (
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hlynes/docsession"
	"github.com/hlynes/docsession/metrics/export/internaldefs"
)

type metricsSource interface {
	MetricsSnapshot() docsession.MetricsSnapshot
}

// Collector renders docsession counters on each Prometheus scrape. It reads
// a fresh snapshot per Collect call and holds no state of its own.
type Collector struct {
	source metricsSource
	descs  []*prom.Desc
}

// NewCollector creates a Collector over the given source, typically a
// *docsession.Storage.
func NewCollector(source metricsSource) *Collector {
	descs := make([]*prom.Desc, len(internaldefs.CounterDefs))
	for i, def := range internaldefs.CounterDefs {
		descs[i] = prom.NewDesc(def.Name, def.Help, nil, nil)
	}
	return &Collector{source: source, descs: descs}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prom.Desc) {
	for _, d := range c.descs {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prom.Metric) {
	if c == nil || c.source == nil {
		return
	}

	snapshot := c.source.MetricsSnapshot()
	for i, def := range internaldefs.CounterDefs {
		ch <- prom.MustNewConstMetric(c.descs[i], prom.CounterValue, float64(snapshot.Counters[def.ID]))
	}
}

// Handler returns an http.Handler serving the source's counters in Prometheus
// exposition format, on a registry private to this handler.
func Handler(source metricsSource) http.Handler {
	registry := prom.NewRegistry()
	registry.MustRegister(NewCollector(source))
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
