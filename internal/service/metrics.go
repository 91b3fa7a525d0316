package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus counters the services update.
// A nil *Metrics is valid and records nothing, so tests can skip it.
type Metrics struct {
	tripsCreated   prometheus.Counter
	tripJoins      prometheus.Counter
	codeCollisions prometheus.Counter
	votes          *prometheus.CounterVec
}

// NewMetrics registers the service counters with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		tripsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "tripplanner_trips_created_total",
			Help: "trips created",
		}),
		tripJoins: factory.NewCounter(prometheus.CounterOpts{
			Name: "tripplanner_trip_joins_total",
			Help: "users who joined a trip by code",
		}),
		codeCollisions: factory.NewCounter(prometheus.CounterOpts{
			Name: "tripplanner_trip_code_collisions_total",
			Help: "generated trip codes rejected because they were already taken",
		}),
		votes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tripplanner_votes_total",
			Help: "vote toggles by outcome",
		}, []string{"action"}),
	}
}

func (m *Metrics) tripCreated() {
	if m == nil {
		return
	}
	m.tripsCreated.Inc()
}

func (m *Metrics) tripJoined() {
	if m == nil {
		return
	}
	m.tripJoins.Inc()
}

func (m *Metrics) codeCollision() {
	if m == nil {
		return
	}
	m.codeCollisions.Inc()
}

func (m *Metrics) voteToggled(voted bool) {
	if m == nil {
		return
	}
	action := "retract"
	if voted {
		action = "endorse"
	}
	m.votes.WithLabelValues(action).Inc()
}
