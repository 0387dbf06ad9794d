package gateway

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fenwick-industrial/modbus-gateway/tagplan"
)

// Metrics holds the Prometheus collectors a gateway instance registers for
// its compiled plans. Kept as a struct (rather than package-level globals)
// so multiple gateway instances in one process can register under
// different registries without collector name collisions.
type Metrics struct {
	commandsCoalesced *prometheus.CounterVec
	pointsPerCommand  *prometheus.HistogramVec
	payloadBytes      *prometheus.HistogramVec
	pointBytes        prometheus.Histogram
}

// NewMetrics creates a Metrics set and registers it with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		commandsCoalesced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tagplan",
			Name:      "commands_coalesced_total",
			Help:      "Number of coalesced Modbus commands produced by a compile, by direction.",
		}, []string{"direction"}),
		pointsPerCommand: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tagplan",
			Name:      "points_per_command",
			Help:      "Number of points coalesced into a single command.",
			Buckets:   prometheus.LinearBuckets(1, 4, 10),
		}, []string{"direction"}),
		payloadBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tagplan",
			Name:      "write_payload_bytes",
			Help:      "Packed byte size of a single write command's payload.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}, []string{"area"}),
		pointBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tagplan",
			Name:      "point_bytes",
			Help:      "Byte width a single point contributes to a write command's payload.",
			Buckets:   prometheus.LinearBuckets(1, 1, 8),
		}),
	}
	reg.MustRegister(m.commandsCoalesced, m.pointsPerCommand, m.payloadBytes, m.pointBytes)
	return m
}

// Observe records one compiled Plan's shape against the metrics set.
func (m *Metrics) Observe(plan Plan) {
	m.commandsCoalesced.WithLabelValues("read").Add(float64(len(plan.ReadCmds)))
	m.commandsCoalesced.WithLabelValues("write").Add(float64(len(plan.WriteCmds)))

	for _, cmd := range plan.ReadCmds {
		m.pointsPerCommand.WithLabelValues("read").Observe(float64(len(cmd.Tags)))
	}
	for _, cmd := range plan.WriteCmds {
		m.pointsPerCommand.WithLabelValues("write").Observe(float64(len(cmd.Tags)))
		m.payloadBytes.WithLabelValues(cmd.Area.String()).Observe(float64(cmd.NByte))
		for _, wp := range cmd.Tags {
			m.pointBytes.Observe(float64(tagplan.PointByteWidth(wp.Type, wp.Option)))
		}
	}
}
