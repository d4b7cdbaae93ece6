package dictation

import (
	"context"
	"sync"
)

// Pending resolves once with the outcome of the transcription started by Stop.
type Pending struct {
	once   sync.Once
	done   chan struct{}
	result Result
	err    error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

// resolve reports whether this call settled the outcome.
func (p *Pending) resolve(result Result, err error) bool {
	resolved := false
	p.once.Do(func() {
		p.result = result
		p.err = err
		resolved = true
		close(p.done)
	})
	return resolved
}

func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the transcription finishes or ctx ends. Abandoning the
// wait does not cancel the transcription.
func (p *Pending) Wait(ctx context.Context) (Result, error) {
	select {
	case <-p.done:
		return p.result, p.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}
