package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vancomm/endless-mines/internal/mines"
)

const namespace = "mines"

type Metrics struct {
	registry     *prometheus.Registry
	Moves        *prometheus.CounterVec
	CellsOpened  prometheus.Counter
	RevealSize   prometheus.Histogram
	LivesLost    prometheus.Counter
	LivesGained  prometheus.Counter
	GamesStarted prometheus.Counter
	GamesOver    prometheus.Counter
}

// New registers the game metrics on a private registry together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Moves: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_total",
			Help:      "Moves applied to game sessions, by kind.",
		}, []string{"move"}),
		CellsOpened: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cells_opened_total",
			Help:      "Safe cells opened across all sessions.",
		}),
		RevealSize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cells_opened_per_move",
			Help:      "Safe cells opened by a single move that opened any.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 9),
		}),
		LivesLost: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lives_lost_total",
			Help:      "Lives lost to mines.",
		}),
		LivesGained: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lives_gained_total",
			Help:      "Bonus lives awarded.",
		}),
		GamesStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_started_total",
			Help:      "New sessions and resets.",
		}),
		GamesOver: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_over_total",
			Help:      "Games that ended by losing the last life or forfeiting.",
		}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveMove records the transition from before to after.
func (m *Metrics) ObserveMove(move string, before, after *mines.GameState) {
	m.Moves.WithLabelValues(move).Inc()

	if opened := after.Score() - before.Score(); opened > 0 {
		m.CellsOpened.Add(float64(opened))
		m.RevealSize.Observe(float64(opened))
	}

	// lives only move within one game; a reset starts a new one
	if move != "reset" {
		bonus := (after.NextLifeAt() - before.NextLifeAt()) / max(after.Params().LifeBonus, 1)
		if bonus > 0 {
			m.LivesGained.Add(float64(bonus))
		}
		if lost := before.Lives() + bonus - after.Lives(); lost > 0 {
			m.LivesLost.Add(float64(lost))
		}
	}

	if !before.GameOver() && after.GameOver() {
		m.GamesOver.Inc()
	}
}
