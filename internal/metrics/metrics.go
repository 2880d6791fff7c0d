// Package metrics exposes ledger activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pocketwise"

// Recorder receives controller events.
type Recorder interface {
	Mutation(op string, err error)
	PipelineRun(d time.Duration, visible int)
	CollectionSize(n int)
	Export(rows int)
}

// Nop ignores every event.
type Nop struct{}

func (Nop) Mutation(string, error) {}
func (Nop) PipelineRun(time.Duration, int) {}
func (Nop) CollectionSize(int) {}
func (Nop) Export(int) {}

// Prometheus records events into its own registry.
type Prometheus struct {
	registry       *prometheus.Registry
	mutations      *prometheus.CounterVec
	pipelineRuns   prometheus.Counter
	pipelineTime   prometheus.Histogram
	visible        prometheus.Gauge
	collectionSize prometheus.Gauge
	exportedRows   prometheus.Counter
}

func NewPrometheus() *Prometheus {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Prometheus{
		registry: reg,
		mutations: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mutations_total",
				Help:      "Store mutations by operation and status",
			},
			[]string{"operation", "status"},
		),
		pipelineRuns: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Filter, sort and aggregate passes",
		}),
		pipelineTime: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "Duration of one pipeline pass",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		visible: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "visible_transactions",
			Help:      "Transactions in the visible subset",
		}),
		collectionSize: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "transactions",
			Help:      "Transactions in the store",
		}),
		exportedRows: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exported_rows_total",
			Help:      "Rows written by CSV exports",
		}),
	}
}

func (p *Prometheus) Mutation(op string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	p.mutations.WithLabelValues(op, status).Inc()
}

func (p *Prometheus) PipelineRun(d time.Duration, visible int) {
	p.pipelineRuns.Inc()
	p.pipelineTime.Observe(d.Seconds())
	p.visible.Set(float64(visible))
}

func (p *Prometheus) CollectionSize(n int) {
	p.collectionSize.Set(float64(n))
}

func (p *Prometheus) Export(rows int) {
	p.exportedRows.Add(float64(rows))
}

// Registry returns the registry the metrics live in.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
