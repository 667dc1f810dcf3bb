package daemon

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks daemon statistics. The counters are plain atomics; the
// prometheus registry reads them through func collectors on scrape.
type Metrics struct {
	EventsSent       atomic.Int64
	EventsReceived   atomic.Int64
	EventsDropped    atomic.Int64
	RefreshesTotal   atomic.Int64
	ConnectedClients atomic.Int32
	StartTime        time.Time

	registry *prometheus.Registry
}

// NewMetrics creates a new Metrics instance with its own registry
func NewMetrics() *Metrics {
	m := &Metrics{
		StartTime: time.Now(),
		registry:  prometheus.NewRegistry(),
	}

	counter := func(name, help string, v *atomic.Int64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "propboard",
			Subsystem: "daemon",
			Name:      name,
			Help:      help,
		}, func() float64 { return float64(v.Load()) })
	}

	m.registry.MustRegister(
		counter("events_sent_total", "Messages queued to subscribed clients.", &m.EventsSent),
		counter("events_received_total", "Change events received from clients.", &m.EventsReceived),
		counter("events_dropped_total", "Messages dropped because a queue was full.", &m.EventsDropped),
		counter("broadcasts_total", "Events fanned out to subscribers.", &m.RefreshesTotal),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "propboard",
			Subsystem: "daemon",
			Name:      "connected_clients",
			Help:      "Clients currently connected.",
		}, func() float64 { return float64(m.ConnectedClients.Load()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "propboard",
			Subsystem: "daemon",
			Name:      "uptime_seconds",
			Help:      "Seconds since the daemon started.",
		}, func() float64 { return time.Since(m.StartTime).Seconds() }),
	)
	return m
}

func (m *Metrics) IncEventsSent()     { m.EventsSent.Add(1) }
func (m *Metrics) IncEventsReceived() { m.EventsReceived.Add(1) }
func (m *Metrics) IncEventsDropped()  { m.EventsDropped.Add(1) }
func (m *Metrics) IncRefreshesTotal() { m.RefreshesTotal.Add(1) }

// SetConnectedClients sets the current connected clients count
func (m *Metrics) SetConnectedClients(count int32) {
	m.ConnectedClients.Store(count)
}

// Registry exposes the prometheus registry, mostly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// MetricsSnapshot represents a point-in-time snapshot of metrics
type MetricsSnapshot struct {
	EventsSent       int64     `json:"events_sent"`
	EventsReceived   int64     `json:"events_received"`
	EventsDropped    int64     `json:"events_dropped"`
	RefreshesTotal   int64     `json:"refreshes_total"`
	ConnectedClients int32     `json:"connected_clients"`
	StartTime        time.Time `json:"start_time"`
	Uptime           string    `json:"uptime"`
}

// GetSnapshot returns a snapshot of current metrics
func (m *Metrics) GetSnapshot() MetricsSnapshot {
	return MetricsSnapshot{
		EventsSent:       m.EventsSent.Load(),
		EventsReceived:   m.EventsReceived.Load(),
		EventsDropped:    m.EventsDropped.Load(),
		RefreshesTotal:   m.RefreshesTotal.Load(),
		ConnectedClients: m.ConnectedClients.Load(),
		StartTime:        m.StartTime,
		Uptime:           time.Since(m.StartTime).Round(time.Second).String(),
	}
}
