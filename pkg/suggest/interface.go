// Package suggest resolves people-picker suggestions: a case-insensitive prefix filter over a private candidate pool,
// de-duplicated against the caller's current selection and delivered after a fixed delay.
package suggest

import "time"

// IResolver defines the interface consumed by the server and CLI front ends
type IResolver interface {
	// Resolve returns a pending set of suggestions for query, excluding selected
	Resolve(query string, selected []*Candidate) *Pending

	// RemoveCandidate drops item from the pool by identity
	RemoveCandidate(item *Candidate)

	// Find looks a candidate up by its exact match text
	Find(text string) *Candidate

	// Stats returns statistics about the pool
	Stats() map[string]int

	// SetDelay changes the delay applied to later resolves
	SetDelay(d time.Duration)
}

var _ IResolver = (*Resolver)(nil)
