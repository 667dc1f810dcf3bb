package daemon

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	m := NewMetrics()
	snap := m.GetSnapshot()

	assert.Zero(t, snap.EventsSent)
	assert.Zero(t, snap.EventsReceived)
	assert.Zero(t, snap.EventsDropped)
	assert.Zero(t, snap.RefreshesTotal)
	assert.Zero(t, snap.ConnectedClients)
	assert.WithinDuration(t, time.Now(), m.StartTime, time.Second)
}

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < 3; i++ {
		m.IncEventsSent()
	}
	m.IncEventsReceived()
	m.IncEventsDropped()
	m.IncEventsDropped()
	m.IncRefreshesTotal()
	m.SetConnectedClients(4)

	snap := m.GetSnapshot()
	assert.Equal(t, int64(3), snap.EventsSent)
	assert.Equal(t, int64(1), snap.EventsReceived)
	assert.Equal(t, int64(2), snap.EventsDropped)
	assert.Equal(t, int64(1), snap.RefreshesTotal)
	assert.Equal(t, int32(4), snap.ConnectedClients)
}

func TestMetrics_Registry(t *testing.T) {
	m := NewMetrics()
	m.IncEventsSent()
	m.IncEventsSent()
	m.SetConnectedClients(2)

	expected := `
# HELP propboard_daemon_connected_clients Clients currently connected.
# TYPE propboard_daemon_connected_clients gauge
propboard_daemon_connected_clients 2
# HELP propboard_daemon_events_sent_total Messages queued to subscribed clients.
# TYPE propboard_daemon_events_sent_total counter
propboard_daemon_events_sent_total 2
`
	err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"propboard_daemon_connected_clients",
		"propboard_daemon_events_sent_total")
	assert.NoError(t, err)

	count, err := testutil.GatherAndCount(m.Registry())
	require.NoError(t, err)
	assert.Equal(t, 6, count)
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.IncRefreshesTotal()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "propboard_daemon_broadcasts_total 1")
	assert.Contains(t, string(body), "propboard_daemon_uptime_seconds")
}

func TestMetrics_Concurrency(t *testing.T) {
	m := NewMetrics()
	const workers, perWorker = 20, 100

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				m.IncEventsSent()
				m.IncEventsReceived()
				m.SetConnectedClients(int32(i))
				_ = m.GetSnapshot()
			}
		}(i)
	}
	wg.Wait()

	snap := m.GetSnapshot()
	assert.Equal(t, int64(workers*perWorker), snap.EventsSent)
	assert.Equal(t, int64(workers*perWorker), snap.EventsReceived)
	assert.GreaterOrEqual(t, snap.ConnectedClients, int32(0))
}

func TestMetricsSnapshot_IsImmutable(t *testing.T) {
	m := NewMetrics()
	m.IncEventsSent()
	snap := m.GetSnapshot()

	m.IncEventsSent()
	assert.Equal(t, int64(1), snap.EventsSent)
	assert.Equal(t, int64(2), m.GetSnapshot().EventsSent)
}
