// Package health runs periodic liveness and readiness checks and serves the
// corresponding HTTP endpoints.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc reports an error when the checked dependency is unhealthy.
type CheckFunc func(ctx context.Context) error

type check struct {
	name    string
	timeout time.Duration
	fn      CheckFunc

	mu      sync.Mutex
	lastErr error
}

func (c *check) run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.fn(ctx)

	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
}

func (c *check) err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Health holds registered checks and the readiness flag.
type Health struct {
	mu        sync.Mutex
	liveness  []*check
	readiness []*check

	ready  atomic.Bool
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an empty Health service. Register checks before calling Start.
func New() *Health {
	return &Health{}
}

// AddLivenessCheck registers a check that gates the liveness endpoint.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.liveness = append(h.liveness, &check{name: name, timeout: timeout, fn: fn})
}

// AddReadinessCheck registers a check that gates the readiness endpoint.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readiness = append(h.readiness, &check{name: name, timeout: timeout, fn: fn})
}

// Start runs every check once immediately, then on the given interval until
// Stop is called or ctx is cancelled.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, h.cancel = context.WithCancel(ctx)
	h.done = make(chan struct{})

	checks := h.allChecks()
	for _, c := range checks {
		c.run(ctx)
	}

	go func() {
		defer close(h.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, c := range checks {
					c.run(ctx)
				}
			}
		}
	}()
}

// Stop cancels the background check loop and waits for it to exit.
func (h *Health) Stop() {
	if h.cancel != nil {
		h.cancel()
		<-h.done
	}
}

// SetReady flips the readiness flag. The readiness endpoint fails while the
// flag is false regardless of check results.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports the readiness flag.
func (h *Health) IsReady() bool {
	return h.ready.Load()
}

// LiveEndpoint serves the liveness probe.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	checks := h.liveness
	h.mu.Unlock()

	writeStatus(w, failures(checks), true)
}

// ReadyEndpoint serves the readiness probe. It fails when the service is not
// marked ready or any readiness check is unhealthy.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	checks := h.readiness
	h.mu.Unlock()

	writeStatus(w, failures(checks), h.IsReady())
}

func (h *Health) allChecks() []*check {
	h.mu.Lock()
	defer h.mu.Unlock()

	all := make([]*check, 0, len(h.liveness)+len(h.readiness))
	all = append(all, h.liveness...)
	all = append(all, h.readiness...)
	return all
}

func failures(checks []*check) map[string]string {
	out := make(map[string]string)
	for _, c := range checks {
		if err := c.err(); err != nil {
			out[c.name] = err.Error()
		}
	}
	return out
}

func writeStatus(w http.ResponseWriter, failed map[string]string, ready bool) {
	w.Header().Set("Content-Type", "application/json")

	status := "ok"
	code := http.StatusOK
	if !ready || len(failed) > 0 {
		status = "unavailable"
		code = http.StatusServiceUnavailable
	}
	w.WriteHeader(code)

	json.NewEncoder(w).Encode(map[string]any{
		"status":   status,
		"failures": failed,
	})
}
