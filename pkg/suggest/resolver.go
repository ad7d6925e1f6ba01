package suggest

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
	"k8s.io/utils/clock"
)

// DefaultDelay is how long a resolve waits before delivering its results.
const DefaultDelay = 150 * time.Millisecond

// RemoveHook is called by RemoveCandidate with the item and the pool index it
// was found at, or -1.
type RemoveHook func(item *Candidate, index int)

// entry is a pool slot. seq only grows, so sorting by it restores pool order
// after a trie traversal.
type entry struct {
	seq  uint64
	item *Candidate
}

// Resolver owns a private pool of candidates and answers prefix queries
// against it.
type Resolver struct {
	pool    []*entry
	trie    *patricia.Trie
	nextSeq uint64

	clock    clock.WithDelayedExecution
	delay    time.Duration
	onRemove RemoveHook

	// Trie walks sort node children in place, so even lookups take mu.
	mu sync.Mutex
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock sets the clock driving the resolve delay.
func WithClock(c clock.WithDelayedExecution) Option {
	return func(r *Resolver) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithDelay overrides DefaultDelay. Negative values are treated as zero.
func WithDelay(d time.Duration) Option {
	return func(r *Resolver) {
		r.delay = max(d, 0)
	}
}

// WithRemoveHook replaces the default debug logging done on removal.
func WithRemoveHook(hook RemoveHook) Option {
	return func(r *Resolver) {
		r.onRemove = hook
	}
}

// NewResolver builds a resolver over a copy of data. Later changes to the
// data slice do not affect the pool.
func NewResolver(data []*Candidate, opts ...Option) *Resolver {
	r := &Resolver{
		pool:     make([]*entry, 0, len(data)),
		trie:     patricia.NewTrie(),
		clock:    clock.RealClock{},
		delay:    DefaultDelay,
		onRemove: logRemoval,
	}
	for _, opt := range opts {
		opt(r)
	}

	skipped := 0
	for _, item := range data {
		if item == nil {
			skipped++
			continue
		}
		r.add(item)
	}
	if skipped > 0 {
		log.Debugf("Skipped %d nil candidates", skipped)
	}
	log.Debugf("Resolver ready with %d candidates", len(r.pool))
	return r
}

func logRemoval(item *Candidate, index int) {
	log.Debug("removing", "item", item, "index", index)
}

func indexKey(item *Candidate) (patricia.Prefix, bool) {
	text := item.MatchText()
	if text == "" {
		return nil, false
	}
	return patricia.Prefix(strings.ToLower(text)), true
}

// add appends to the pool. Only called during construction.
func (r *Resolver) add(item *Candidate) {
	e := &entry{seq: r.nextSeq, item: item}
	r.nextSeq++
	r.pool = append(r.pool, e)

	key, ok := indexKey(item)
	if !ok {
		return
	}
	var bucket []*entry
	if existing := r.trie.Get(key); existing != nil {
		bucket = existing.([]*entry)
	}
	r.trie.Set(key, append(bucket, e))
}

// Resolve filters the pool by a case-insensitive prefix match on query and
// drops candidates whose match text equals that of any selected item.
// Results keep pool order and are delivered after the configured delay.
// An empty query completes immediately with no results.
func (r *Resolver) Resolve(query string, selected []*Candidate) *Pending {
	if query == "" {
		return completed(query)
	}

	results := removeDuplicates(r.filterByText(query), selected)
	p := newPending(query, results)
	r.clock.AfterFunc(r.Delay(), p.complete)
	return p
}

func (r *Resolver) filterByText(query string) []*Candidate {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*entry
	err := r.trie.VisitSubtree(patricia.Prefix(strings.ToLower(query)), func(_ patricia.Prefix, item patricia.Item) error {
		matched = append(matched, item.([]*entry)...)
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting candidate index: %v", err)
		return nil
	}

	slices.SortFunc(matched, func(a, b *entry) int {
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})

	items := make([]*Candidate, len(matched))
	for i, e := range matched {
		items[i] = e.item
	}
	return items
}

// removeDuplicates compares match texts exactly, unlike the prefix filter.
func removeDuplicates(items, possibleDupes []*Candidate) []*Candidate {
	if len(possibleDupes) == 0 {
		return items
	}

	seen := make(map[string]struct{}, len(possibleDupes))
	for _, d := range possibleDupes {
		if t := d.MatchText(); t != "" {
			seen[t] = struct{}{}
		}
	}

	kept := items[:0]
	for _, item := range items {
		if _, dup := seen[item.MatchText()]; dup {
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

// RemoveCandidate drops the first pool entry that is the same pointer as item.
// Unknown items are ignored.
func (r *Resolver) RemoveCandidate(item *Candidate) {
	r.mu.Lock()
	index := slices.IndexFunc(r.pool, func(e *entry) bool { return e.item == item })
	var removed *entry
	if index != -1 {
		removed = r.pool[index]
		r.pool = slices.Delete(r.pool, index, index+1)
		r.unindex(removed)
	}
	r.mu.Unlock()

	if r.onRemove != nil {
		r.onRemove(item, index)
	}
}

func (r *Resolver) unindex(e *entry) {
	key, ok := indexKey(e.item)
	if !ok {
		return
	}
	existing := r.trie.Get(key)
	if existing == nil {
		return
	}
	bucket := slices.DeleteFunc(slices.Clone(existing.([]*entry)), func(b *entry) bool { return b == e })
	if len(bucket) == 0 {
		r.trie.Delete(key)
		return
	}
	r.trie.Set(key, bucket)
}

// Find returns the first candidate whose match text equals text exactly.
func (r *Resolver) Find(text string) *Candidate {
	if text == "" {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.pool {
		if e.item.MatchText() == text {
			return e.item
		}
	}
	return nil
}

// Candidates returns a copy of the pool in order.
func (r *Resolver) Candidates() []*Candidate {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]*Candidate, len(r.pool))
	for i, e := range r.pool {
		items[i] = e.item
	}
	return items
}

func (r *Resolver) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pool)
}

// Delay reports the delay applied to each non-empty resolve.
func (r *Resolver) Delay() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.delay
}

// SetDelay changes the delay for resolves started after it returns.
// Negative values are treated as zero.
func (r *Resolver) SetDelay(d time.Duration) {
	r.mu.Lock()
	r.delay = max(d, 0)
	r.mu.Unlock()
	log.Debug("Resolve delay changed", "delay", d)
}

func (r *Resolver) Stats() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	indexed := 0
	r.trie.Visit(func(_ patricia.Prefix, item patricia.Item) error {
		indexed += len(item.([]*entry))
		return nil
	})
	return map[string]int{
		"candidates": len(r.pool),
		"indexed":    indexed,
		"delayMs":    int(r.delay.Milliseconds()),
	}
}
