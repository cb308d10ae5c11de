// Package recency tracks the most recently used single tools.
package recency

import (
	"slices"

	"github.com/aircode610/MouseTron/pkg/memory"
)

// Tracker is a bounded move-to-front list of tool ids.
type Tracker struct {
	ns  int
	ids []int
}

// New creates an empty Tracker holding at most ns ids.
func New(ns int) (*Tracker, error) {
	if ns <= 0 {
		return nil, &memory.ConfigError{Field: "ns", Value: ns}
	}
	return &Tracker{ns: ns, ids: make([]int, 0, ns)}, nil
}

// Restore creates a Tracker from a persisted list, most recent first.
// Duplicates keep their first (most recent) occurrence and the list is
// truncated to ns.
func Restore(ns int, ids []int) (*Tracker, error) {
	t, err := New(ns)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if len(t.ids) == ns {
			break
		}
		if slices.Contains(t.ids, id) {
			continue
		}
		t.ids = append(t.ids, id)
	}
	return t, nil
}

// Touch moves id to the front, inserting it if absent and evicting the tail
// when the list overflows.
func (t *Tracker) Touch(id int) {
	if i := slices.Index(t.ids, id); i >= 0 {
		t.ids = slices.Delete(t.ids, i, i+1)
	}
	t.ids = slices.Insert(t.ids, 0, id)
	if len(t.ids) > t.ns {
		t.ids = t.ids[:t.ns]
	}
}

// Recent returns tracked ids, most recent first. The returned slice must not
// be modified.
func (t *Tracker) Recent() []int {
	return t.ids
}
