// Package metrics holds the Prometheus collectors of the signaling service.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	connections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "live_translate_ws_connections",
			Help: "Current number of registered signaling connections.",
		},
	)
	rooms = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "live_translate_rooms",
			Help: "Current number of non-empty rooms.",
		},
	)
	relayed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "live_translate_events_relayed_total",
			Help: "Events delivered to recipients, by event type.",
		},
		[]string{"type"},
	)
	dropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "live_translate_events_dropped_total",
			Help: "Inbound events or outbound frames dropped, by reason.",
		},
		[]string{"reason"},
	)
)

// Drop reasons.
const (
	ReasonNotInRoom     = "not_in_room"
	ReasonUnknownTarget = "unknown_target"
	ReasonBadPayload    = "bad_payload"
	ReasonBackpressure  = "backpressure"
	ReasonRateLimited   = "rate_limited"
)

func init() {
	prometheus.MustRegister(connections, rooms, relayed, dropped)
}

func SetConnections(n int) { connections.Set(float64(n)) }

func SetRooms(n int) { rooms.Set(float64(n)) }

func AddRelayed(eventType string, n int) {
	if n > 0 {
		relayed.WithLabelValues(eventType).Add(float64(n))
	}
}

func IncDropped(reason string) { dropped.WithLabelValues(reason).Inc() }
