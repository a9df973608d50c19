package main

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the server's prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	tickDuration  prometheus.Histogram
	players       prometheus.Gauge
	projectiles   prometheus.Gauge
	connections   prometheus.Gauge
	kills         prometheus.Counter
	captures      prometheus.Counter
	shots         prometheus.Counter
	droppedFrames prometheus.Counter
	droppedDeltas prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flagwars",
			Name:      "tick_duration_seconds",
			Help:      "Time spent in one simulation tick.",
			Buckets:   []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .02},
		}),
		players: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flagwars",
			Name:      "players",
			Help:      "Players in the battle, bots included.",
		}),
		projectiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flagwars",
			Name:      "projectiles",
			Help:      "Live projectiles.",
		}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flagwars",
			Name:      "connections",
			Help:      "Open websocket connections.",
		}),
		kills: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flagwars",
			Name:      "kills_total",
			Help:      "Players killed.",
		}),
		captures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flagwars",
			Name:      "flag_captures_total",
			Help:      "Flags captured.",
		}),
		shots: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flagwars",
			Name:      "shots_total",
			Help:      "Projectiles fired.",
		}),
		droppedFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flagwars",
			Name:      "dropped_frames_total",
			Help:      "Outbound messages dropped on full send buffers.",
		}),
		droppedDeltas: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flagwars",
			Name:      "dropped_profile_deltas_total",
			Help:      "Profile deltas dropped on a full progress queue.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.tickDuration, m.players, m.projectiles, m.connections,
			m.kills, m.captures, m.shots, m.droppedFrames, m.droppedDeltas)
	}
	return m
}

// ObserveTick records one tick
func (m *Metrics) ObserveTick(d time.Duration, players, projectiles int) {
	if m == nil {
		return
	}
	m.tickDuration.Observe(d.Seconds())
	m.players.Set(float64(players))
	m.projectiles.Set(float64(projectiles))
}

func (m *Metrics) Players(n int) {
	if m != nil {
		m.players.Set(float64(n))
	}
}

func (m *Metrics) Connections(n int) {
	if m != nil {
		m.connections.Set(float64(n))
	}
}

func (m *Metrics) Kill() {
	if m != nil {
		m.kills.Inc()
	}
}

func (m *Metrics) Capture() {
	if m != nil {
		m.captures.Inc()
	}
}

func (m *Metrics) Shot() {
	if m != nil {
		m.shots.Inc()
	}
}

func (m *Metrics) DroppedFrame() {
	if m != nil {
		m.droppedFrames.Inc()
	}
}

func (m *Metrics) ProgressDropped() {
	if m != nil {
		m.droppedDeltas.Inc()
	}
}
