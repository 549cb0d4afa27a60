package health

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ncecere/speech_gateway/internal/config"
)

// Check probes one dependency.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// Result is the latest outcome of a Check.
type Result struct {
	OK        bool
	Error     string
	Latency   time.Duration
	CheckedAt time.Time
}

// Monitor periodically runs checks and keeps the latest results for /healthz.
type Monitor struct {
	checks    []Check
	interval  time.Duration
	timeout   time.Duration
	startOnce sync.Once

	mu      sync.RWMutex
	results map[string]Result
}

// NewMonitor constructs a monitor using the health configuration.
func NewMonitor(cfg config.HealthConfig, checks ...Check) *Monitor {
	interval := cfg.CheckInterval
	if interval <= 0 {
		interval = time.Minute
	}
	timeout := 5 * time.Second
	if timeout > interval {
		timeout = interval
	}
	return &Monitor{
		checks:   checks,
		interval: interval,
		timeout:  timeout,
		results:  make(map[string]Result, len(checks)),
	}
}

// Start begins the monitoring loop until ctx is canceled.
func (m *Monitor) Start(ctx context.Context) {
	if m == nil || len(m.checks) == 0 {
		return
	}
	m.startOnce.Do(func() {
		go m.run(ctx)
	})
}

func (m *Monitor) run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.CheckNow(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.CheckNow(ctx)
		}
	}
}

// CheckNow runs every check concurrently and stores the results.
func (m *Monitor) CheckNow(ctx context.Context) {
	if m == nil {
		return
	}
	var g errgroup.Group
	g.SetLimit(4)
	for _, check := range m.checks {
		g.Go(func() error {
			timeoutCtx, cancel := context.WithTimeout(ctx, m.timeout)
			defer cancel()

			start := time.Now()
			err := check.Probe(timeoutCtx)
			result := Result{OK: err == nil, Latency: time.Since(start), CheckedAt: time.Now()}
			if err != nil {
				result.Error = err.Error()
			}

			m.mu.Lock()
			m.results[check.Name] = result
			m.mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
}

// Snapshot returns a copy of the latest results.
func (m *Monitor) Snapshot() map[string]Result {
	if m == nil {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]Result, len(m.results))
	for name, result := range m.results {
		out[name] = result
	}
	return out
}

// Failing lists checks whose latest result is an error, sorted by name.
func (m *Monitor) Failing() []string {
	var out []string
	for name, result := range m.Snapshot() {
		if !result.OK {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
