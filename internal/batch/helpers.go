package batch

import (
	"sync"
	"time"
)

// atomicCounter accumulates a running total across concurrent batch
// workers, returning the new total from add so callers can report
// progress without a separate read under lock.
type atomicCounter struct {
	mu  sync.Mutex
	val int
}

func (c *atomicCounter) add(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.val += n
	return c.val
}

func (c *atomicCounter) get() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.val
}

// errorCollector gathers per-batch errors from concurrent workers.
type errorCollector struct {
	mu   sync.Mutex
	errs []Error
}

func (c *errorCollector) add(e Error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, e)
}

func (c *errorCollector) all() []Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Error(nil), c.errs...)
}

// progressThrottle reports ready no more often than the given interval,
// guarding the shared last-report timestamp against concurrent batch
// workers.
type progressThrottle struct {
	mu   sync.Mutex
	last time.Time
}

func (p *progressThrottle) ready(interval time.Duration) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	if p.last.IsZero() || now.Sub(p.last) >= interval {
		p.last = now
		return true
	}
	return false
}
