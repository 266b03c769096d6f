// Package metrics exposes game and session counters to Prometheus.
package metrics

import (
	"context"
	"net/http"

	"github.com/mcdev12/flipmatch/go/internal/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts outcome events. It implements events.Publisher so it can sit
// next to the bus publisher.
type Metrics struct {
	registry      *prometheus.Registry
	gameEvents    *prometheus.CounterVec
	gamesFinished *prometheus.CounterVec
}

// New registers the collectors on a fresh registry. activeSessions is sampled
// on every scrape.
func New(activeSessions func() int) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		gameEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flipmatch_game_events_total",
				Help: "Outcome events published, by type",
			},
			[]string{"event_type"},
		),
		gamesFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flipmatch_games_finished_total",
				Help: "Games that reached a terminal phase, by result",
			},
			[]string{"result"},
		),
	}

	m.registry.MustRegister(m.gameEvents, m.gamesFinished)
	if activeSessions != nil {
		m.registry.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "flipmatch_active_sessions",
				Help: "Sessions currently running",
			},
			func() float64 { return float64(activeSessions()) },
		))
	}
	return m
}

func (m *Metrics) Publish(ctx context.Context, env events.Envelope) error {
	m.gameEvents.WithLabelValues(env.EventType).Inc()
	switch env.EventType {
	case events.TypeGameWon:
		m.gamesFinished.WithLabelValues("won").Inc()
	case events.TypeGameLost:
		m.gamesFinished.WithLabelValues("lost").Inc()
	}
	return nil
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
