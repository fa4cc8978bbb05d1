package monitoring

import (
	"context"
	"sync"
	"time"

	"github.com/tr1v3r/pkg/log"
)

// Metrics tracks traffic on one IPC connection
type Metrics struct {
	mu sync.RWMutex

	// Command metrics
	CommandsTotal      int64
	CommandErrorsTotal int64
	CommandDuration    time.Duration

	// Event metrics
	EventsQueuedTotal    int64
	EventsDeliveredTotal int64

	// Lines that were neither the awaited reply nor an event
	LinesDiscardedTotal int64

	startTime time.Time
}

func New() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordCommand records a finished command
func (m *Metrics) RecordCommand(duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CommandsTotal++
	m.CommandDuration += duration
	if err != nil {
		m.CommandErrorsTotal++
	}
}

// RecordEventQueued records an event buffered while a reply was pending
func (m *Metrics) RecordEventQueued() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.EventsQueuedTotal++
}

// RecordEventDelivered records an event handed to a listener
func (m *Metrics) RecordEventDelivered() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.EventsDeliveredTotal++
}

// RecordDiscard records a dropped line
func (m *Metrics) RecordDiscard() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LinesDiscardedTotal++
}

// Stats is a point-in-time copy of Metrics
type Stats struct {
	CommandsTotal        int64
	CommandErrorsTotal   int64
	CommandDuration      time.Duration
	EventsQueuedTotal    int64
	EventsDeliveredTotal int64
	LinesDiscardedTotal  int64
}

// Snapshot returns a copy of the counters
func (m *Metrics) Snapshot() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Stats{
		CommandsTotal:        m.CommandsTotal,
		CommandErrorsTotal:   m.CommandErrorsTotal,
		CommandDuration:      m.CommandDuration,
		EventsQueuedTotal:    m.EventsQueuedTotal,
		EventsDeliveredTotal: m.EventsDeliveredTotal,
		LinesDiscardedTotal:  m.LinesDiscardedTotal,
	}
}

// GetUptime returns how long the connection has been open
func (m *Metrics) GetUptime() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return time.Since(m.startTime)
}

// LogMetrics logs current metrics
func (m *Metrics) LogMetrics(ctx context.Context) {
	s := m.Snapshot()

	log.CtxDebug(ctx, "IPC metrics uptime=%s commands_total=%d command_errors_total=%d command_duration=%s events_queued_total=%d events_delivered_total=%d lines_discarded_total=%d",
		m.GetUptime().String(),
		s.CommandsTotal,
		s.CommandErrorsTotal,
		s.CommandDuration.String(),
		s.EventsQueuedTotal,
		s.EventsDeliveredTotal,
		s.LinesDiscardedTotal)
}
