package signal

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const eventConnect = "connect"

var (
	metricRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "livego_signal_rooms",
		Help: "Number of live rooms.",
	})
	metricParticipants = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "livego_signal_participants",
		Help: "Number of room participants.",
	})
	metricClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "livego_signal_clients",
		Help: "Number of connected signaling clients.",
	})
	metricEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "livego_signal_events_total",
		Help: "Signaling events received, by event name.",
	}, []string{"event"})
)

func countEvent(event string) { metricEvents.WithLabelValues(event).Inc() }

func gaugePresence(rooms, participants, clients int) {
	metricRooms.Set(float64(rooms))
	metricParticipants.Set(float64(participants))
	metricClients.Set(float64(clients))
}
