// Package metrics records domain counters for the ingestion pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"sheetdash/internal/model"
)

// Recorder receives one observation per ingested upload.
type Recorder interface {
	ObserveIngestion(status model.UploadStatus, rows int)
}

// Prometheus is a Recorder backed by a prometheus registry.
type Prometheus struct {
	ingestions *prometheus.CounterVec
	rows       prometheus.Histogram
}

// NewPrometheus registers the ingestion collectors on reg.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		ingestions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sheetdash_ingestions_total",
				Help: "Total number of ingested uploads by resulting status.",
			},
			[]string{"status"},
		),
		rows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sheetdash_ingested_rows",
			Help:    "Number of decoded rows per successful upload.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
	}
	for _, c := range []prometheus.Collector{p.ingestions, p.rows} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Prometheus) ObserveIngestion(status model.UploadStatus, rows int) {
	p.ingestions.WithLabelValues(string(status)).Inc()
	if status == model.StatusUploaded {
		p.rows.Observe(float64(rows))
	}
}

// Noop discards observations.
type Noop struct{}

func (Noop) ObserveIngestion(model.UploadStatus, int) {}
