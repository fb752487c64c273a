package build

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"svgsprite/misc"
)

// Metrics of a single build pipeline. Every pipeline has its own registry.
type Metrics struct {
	Registry *prometheus.Registry

	compiled  prometheus.Counter
	failed    prometheus.Counter
	cacheHits prometheus.Counter
	flushes   prometheus.Counter
}

func newMetrics(builds, symbols func() float64) *Metrics {
	ns := misc.GetAppName()
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		compiled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Name: "documents_compiled_total",
			Help: "Number of documents compiled into symbols.",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Name: "documents_failed_total",
			Help: "Number of documents which could not be compiled.",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Name: "cache_hits_total",
			Help: "Number of documents taken from compile cache.",
		}),
		flushes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Name: "sheet_flushes_total",
			Help: "Number of times spritesheet was written out.",
		}),
	}
	m.Registry.MustRegister(
		m.compiled, m.failed, m.cacheHits, m.flushes,
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: ns, Name: "sheet_builds_total",
			Help: "Number of times spritesheet was serialized.",
		}, builds),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: ns, Name: "sheet_symbols",
			Help: "Number of symbols in spritesheet.",
		}, symbols),
		collectors.NewGoCollector(),
	)
	return m
}
