package services

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes the process's refresh-subsystem counters/gauges as
// Prometheus collectors, registered once. Neither coordinator nor transport
// updates them.
type Metrics struct {
	SyncValue     *prometheus.GaugeVec
	SyncStop      *prometheus.GaugeVec
	MessagesSent  prometheus.Counter
	MessagesRecvd prometheus.Counter
	ReduceLatency prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SyncValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mesh_refresh_sync_value",
			Help: "current per-block refresh quorum count",
		}, []string{"block", "refresh_id"}),
		SyncStop: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mesh_refresh_sync_stop",
			Help: "expected per-block refresh quorum count",
		}, []string{"block", "refresh_id"}),
		MessagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mesh_refresh_messages_sent_total",
			Help: "refresh messages sent",
		}),
		MessagesRecvd: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mesh_refresh_messages_applied_total",
			Help: "refresh messages applied on the receiving block",
		}),
		ReduceLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "mesh_reduce_latency_seconds",
			Help: "time from reduction start to continuation fire",
		}),
	}
	reg.MustRegister(m.SyncValue, m.SyncStop, m.MessagesSent, m.MessagesRecvd, m.ReduceLatency)
	return m
}
