package llmclient

import (
	"sync"
	"time"

	"github.com/vectorless/pagetree/models"
)

// Metrics accumulates per-phase call counts and durations for the
// performance report returned in models.Result (spec.md §5). Guarded by
// a mutex since phases run concurrently.
type Metrics struct {
	mu    sync.Mutex
	byPhase map[string]*models.PhaseMetric
	order   []string
}

func NewMetrics() *Metrics {
	return &Metrics{byPhase: make(map[string]*models.PhaseMetric)}
}

func (m *Metrics) record(phase string, elapsed time.Duration, callCount int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pm, ok := m.byPhase[phase]
	if !ok {
		pm = &models.PhaseMetric{Phase: phase}
		m.byPhase[phase] = pm
		m.order = append(m.order, phase)
	}
	pm.DurationMS += elapsed.Milliseconds()
	pm.LLMCallCount += callCount
}

// Snapshot returns the accumulated metrics in first-seen phase order.
func (m *Metrics) Snapshot() []models.PhaseMetric {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.PhaseMetric, 0, len(m.order))
	for _, phase := range m.order {
		out = append(out, *m.byPhase[phase])
	}
	return out
}
