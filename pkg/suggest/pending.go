package suggest

import (
	"context"
	"slices"
	"sync"
)

// Pending is an in-flight resolve. Its results are fixed when Resolve is
// called and become visible once the delay elapses. There is no way to
// cancel it; a caller that loses interest simply stops waiting.
type Pending struct {
	query   string
	results []*Candidate
	done    chan struct{}
	once    sync.Once
}

func newPending(query string, results []*Candidate) *Pending {
	if results == nil {
		results = []*Candidate{}
	}
	return &Pending{
		query:   query,
		results: results,
		done:    make(chan struct{}),
	}
}

func completed(query string) *Pending {
	p := newPending(query, nil)
	p.complete()
	return p
}

func (p *Pending) complete() {
	p.once.Do(func() { close(p.done) })
}

// Query returns the query this resolve was issued for, so callers can drop
// stale results.
func (p *Pending) Query() string {
	return p.query
}

// Done is closed when the results are ready.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Ready reports whether the results are available without blocking.
func (p *Pending) Ready() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Results returns the suggestions if ready. ok is false while pending.
func (p *Pending) Results() (results []*Candidate, ok bool) {
	if !p.Ready() {
		return nil, false
	}
	return slices.Clone(p.results), true
}

// Wait blocks until the results are ready or ctx is done. A cancelled wait
// leaves the resolve itself untouched.
func (p *Pending) Wait(ctx context.Context) ([]*Candidate, error) {
	select {
	case <-p.done:
		return slices.Clone(p.results), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

