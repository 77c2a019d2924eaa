package transport

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ssargent/gamestate/pkg/codec"
)

// Metrics holds the Prometheus collectors for received datagrams
type Metrics struct {
	datagramsTotal *prometheus.CounterVec
	bytesTotal     prometheus.Counter
	decodeErrors   *prometheus.CounterVec
	lastDatagram   prometheus.Gauge
}

// NewMetrics creates and registers the datagram metrics with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		datagramsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gamestate_datagrams_received_total",
				Help: "Total number of datagrams received, by packet kind",
			},
			[]string{"kind"},
		),
		bytesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "gamestate_datagram_bytes_received_total",
				Help: "Total number of payload bytes received",
			},
		),
		decodeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gamestate_decode_errors_total",
				Help: "Total number of datagrams that failed to decode, by packet kind",
			},
			[]string{"kind"},
		),
		lastDatagram: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "gamestate_last_datagram_timestamp_seconds",
				Help: "Unix time of the most recent datagram",
			},
		),
	}
}

// Handler returns a Handler recording every datagram
func (m *Metrics) Handler() Handler {
	return HandlerFunc(func(_ context.Context, d Datagram) {
		kind := d.Kind().String()
		m.datagramsTotal.WithLabelValues(kind).Inc()
		m.bytesTotal.Add(float64(len(d.Payload)))
		m.lastDatagram.Set(float64(d.ReceivedAt.UnixNano()) / 1e9)

		if _, err := codec.Describe(d.Payload); err != nil {
			m.decodeErrors.WithLabelValues(kind).Inc()
		}
	})
}
