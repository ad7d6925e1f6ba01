// Package selection holds the list of people already picked. The resolver
// de-duplicates its suggestions against this list.
package selection

import (
	"slices"
	"strings"
	"sync"

	"github.com/bastiangx/pickserve/pkg/suggest"
	"github.com/charmbracelet/log"
)

// CopySeparator joins item texts in CopyText.
const CopySeparator = ", "

// SelectedList is an ordered list of picked candidates. Items are compared by
// identity, so the same person picked twice is two entries.
type SelectedList struct {
	items []*suggest.Candidate
	mu    sync.RWMutex
}

// NewSelectedList creates a list holding a copy of items.
func NewSelectedList(items ...*suggest.Candidate) *SelectedList {
	l := &SelectedList{}
	l.Add(items...)
	return l
}

// Add appends items, skipping nils.
func (l *SelectedList) Add(items ...*suggest.Candidate) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, item := range items {
		if item != nil {
			l.items = append(l.items, item)
		}
	}
}

// Remove drops the first occurrence of each item. Items not in the list are
// ignored.
func (l *SelectedList) Remove(items ...*suggest.Candidate) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, item := range items {
		index := slices.Index(l.items, item)
		if index == -1 {
			log.Debug("not selected, skipping removal", "item", item)
			continue
		}
		l.items = slices.Delete(l.items, index, index+1)
	}
}

// Replace swaps the entry at index for items, which may be more than one
// (or none). Returns false and leaves the list alone if index is out of range.
func (l *SelectedList) Replace(index int, items ...*suggest.Candidate) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if index < 0 || index >= len(l.items) {
		return false
	}
	replacement := slices.DeleteFunc(slices.Clone(items), func(c *suggest.Candidate) bool { return c == nil })
	l.items = slices.Replace(l.items, index, index+1, replacement...)
	return true
}

// Items returns a copy of the list.
func (l *SelectedList) Items() []*suggest.Candidate {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.items)
}

func (l *SelectedList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// IndexOf returns the position of item, or -1.
func (l *SelectedList) IndexOf(item *suggest.Candidate) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Index(l.items, item)
}

// CopyText joins the Text of the given items, or of the whole list when
// called without arguments.
func (l *SelectedList) CopyText(items ...*suggest.Candidate) string {
	if len(items) == 0 {
		items = l.Items()
	}
	texts := make([]string, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		texts = append(texts, item.Text)
	}
	return strings.Join(texts, CopySeparator)
}
