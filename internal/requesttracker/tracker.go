// Package requesttracker implements RequestTracker (spec.md §4.8): a
// bounded in-memory log of request lifecycles, used to report latency
// percentiles and active-request snapshots, and to emit lifecycle
// events on the engine's EventBus.
package requesttracker

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lytics/dev-agent/internal/eventbus"
)

// DefaultMaxHistory is the FIFO eviction bound on completed/failed
// requests retained for percentile computation.
const DefaultMaxHistory = 1000

// Status is the terminal outcome of a tracked request, or Active while
// in flight.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Request is one tracked invocation.
type Request struct {
	ID            string
	Tool          string
	Args          map[string]any
	ParentID      string
	Status        Status
	StartedAt     time.Time
	EndedAt       time.Time
	TokenEstimate int
	Err           string
}

// Duration reports how long the request ran. For an active request it
// reports elapsed time so far.
func (r Request) Duration() time.Duration {
	if r.EndedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// Metrics summarizes tracked request history, per spec.md §4.8.
type Metrics struct {
	Total       int
	Success     int
	Failed      int
	AvgDuration time.Duration
	P50         time.Duration
	P95         time.Duration
	P99         time.Duration
	ByTool      map[string]int
}

// Tracker records request lifecycles and computes latency percentiles
// over a bounded history. Not safe for use from more than one goroutine
// without Tracker's own locking, which is provided.
type Tracker struct {
	mu         sync.Mutex
	bus        *eventbus.Bus
	maxHistory int
	active     map[string]*Request
	history    []*Request
}

// New builds a Tracker. bus may be nil to disable event emission.
// maxHistory <= 0 defaults to DefaultMaxHistory.
func New(bus *eventbus.Bus, maxHistory int) *Tracker {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &Tracker{bus: bus, maxHistory: maxHistory, active: make(map[string]*Request)}
}

// StartRequest begins tracking a new request and returns it; pass its ID
// to CompleteRequest or FailRequest.
func (t *Tracker) StartRequest(ctx context.Context, tool string, args map[string]any, parentID string) *Request {
	req := &Request{
		ID:        uuid.NewString(),
		Tool:      tool,
		Args:      args,
		ParentID:  parentID,
		Status:    StatusActive,
		StartedAt: time.Now(),
	}

	t.mu.Lock()
	t.active[req.ID] = req
	t.mu.Unlock()

	t.emit(ctx, "request.started", *req)
	return req
}

// CompleteRequest marks id as successfully finished.
func (t *Tracker) CompleteRequest(ctx context.Context, id string, tokenEstimate int) error {
	req, err := t.finish(id, StatusCompleted, "")
	if err != nil {
		return err
	}
	req.TokenEstimate = tokenEstimate
	t.emit(ctx, "request.completed", *req)
	return nil
}

// FailRequest marks id as failed.
func (t *Tracker) FailRequest(ctx context.Context, id string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	req, err := t.finish(id, StatusFailed, msg)
	if err != nil {
		return err
	}
	t.emit(ctx, "request.failed", *req)
	return nil
}

func (t *Tracker) finish(id string, status Status, errMsg string) (*Request, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	req, ok := t.active[id]
	if !ok {
		return nil, fmt.Errorf("requesttracker: no active request %q", id)
	}
	delete(t.active, id)

	req.Status = status
	req.EndedAt = time.Now()
	req.Err = errMsg

	t.history = append(t.history, req)
	if len(t.history) > t.maxHistory {
		t.history = t.history[len(t.history)-t.maxHistory:]
	}
	return req, nil
}

// GetActiveRequests returns a snapshot of currently in-flight requests.
func (t *Tracker) GetActiveRequests() []Request {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Request, 0, len(t.active))
	for _, r := range t.active {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out
}

// GetMetrics computes aggregate latency statistics over bounded
// history.
func (t *Tracker) GetMetrics() Metrics {
	t.mu.Lock()
	defer t.mu.Unlock()

	m := Metrics{ByTool: make(map[string]int)}
	durations := make([]time.Duration, 0, len(t.history))
	var total time.Duration

	for _, r := range t.history {
		m.Total++
		m.ByTool[r.Tool]++
		switch r.Status {
		case StatusCompleted:
			m.Success++
		case StatusFailed:
			m.Failed++
		}
		d := r.Duration()
		durations = append(durations, d)
		total += d
	}

	if len(durations) > 0 {
		m.AvgDuration = total / time.Duration(len(durations))
		sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
		m.P50 = percentile(durations, 50)
		m.P95 = percentile(durations, 95)
		m.P99 = percentile(durations, 99)
	}
	return m
}

// percentile indexes a sorted-ascending slice per spec.md §4.8:
// index = ceil(p/100 * n) - 1, clamped to [0, n-1].
func percentile(sorted []time.Duration, p float64) time.Duration {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(n))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return sorted[idx]
}

func (t *Tracker) emit(ctx context.Context, name string, req Request) {
	if t.bus == nil {
		return
	}
	// Awaiting handlers delivers each lifecycle event before the next one
	// is emitted, so subscribers see them in emit order.
	_ = t.bus.Emit(ctx, name, req, eventbus.EmitOptions{WaitForHandlers: true})
}
