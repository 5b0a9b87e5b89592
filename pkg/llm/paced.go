package llm

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/espalier/pkg/ports"
)

// Paced wraps a ModelClient and enforces a minimum interval between calls.
// Callers sleep before issuing, respecting context cancellation while
// waiting. A zero interval disables pacing.
type Paced struct {
	inner    ports.ModelClient
	interval time.Duration

	mu   sync.Mutex
	last time.Time
}

// NewPaced wraps client so successive Invoke calls are at least interval apart.
func NewPaced(client ports.ModelClient, interval time.Duration) *Paced {
	return &Paced{inner: client, interval: interval}
}

// Invoke implements ports.ModelClient.
func (p *Paced) Invoke(ctx context.Context, prompt string) (string, error) {
	if p.interval > 0 {
		if err := p.wait(ctx); err != nil {
			return "", err
		}
	}
	return p.inner.Invoke(ctx, prompt)
}

// wait blocks until the caller may claim the next pacing slot. Another
// waiter can advance last while this one sleeps, so the deadline is
// re-evaluated after every wake until the claim succeeds.
func (p *Paced) wait(ctx context.Context) error {
	for {
		p.mu.Lock()
		wait := time.Until(p.last.Add(p.interval))
		if wait <= 0 {
			p.last = time.Now()
			p.mu.Unlock()
			return nil
		}
		p.mu.Unlock()

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
