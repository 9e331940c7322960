package output

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// delivery outcomes
const (
	StatusSent    = "sent"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// GelfMetrics counts what happened to each event handed to a GELF output.
type GelfMetrics struct {
	EventsTotal *prometheus.CounterVec
}

func NewGelfMetrics(reg prometheus.Registerer) *GelfMetrics {
	return &GelfMetrics{
		EventsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "loglang",
			Subsystem: "gelf",
			Name:      "events_total",
			Help:      "Total number of events seen by the GELF output by status.",
		}, []string{"status"}), // status: sent, failed, skipped
	}
}

func (m *GelfMetrics) observe(status string) {
	if m == nil {
		return
	}
	m.EventsTotal.WithLabelValues(status).Inc()
}
