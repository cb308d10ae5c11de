// Package frequency implements the bounded subsequence frequency table.
//
// Each entry tracks how often a subsequence occurred and the global block
// index of its most recent occurrence. When an insertion pushes the table
// past its capacity, exactly one entry is evicted: the one with the lowest
// estimation score
//
//	score(e) = e.count / (1 + (index - e.lastIndex))
//
// Ties go to the smaller lastIndex, then to the lexicographically smaller id
// tuple, so eviction is reproducible.
package frequency

import (
	"sort"

	"github.com/aircode610/MouseTron/pkg/memory"
)

type row struct {
	entry memory.Entry
	seq   uint64
}

// Table is a bounded subsequence -> (count, last index) mapping.
type Table struct {
	t     int
	rows  map[string]*row
	seq   uint64
	index int
}

// New creates an empty Table holding at most t entries.
func New(t int) (*Table, error) {
	if t <= 0 {
		return nil, &memory.ConfigError{Field: "t", Value: t}
	}
	return &Table{t: t, rows: make(map[string]*row, t+1)}, nil
}

// Restore rebuilds a Table from persisted entries in first-insertion order.
// index is the last global block index the table saw. Invalid entries are
// skipped and a table larger than t is evicted down to t. The evicted entries
// are returned.
func Restore(t, index int, entries []memory.Entry) (*Table, []memory.Entry, error) {
	tbl, err := New(t)
	if err != nil {
		return nil, nil, err
	}
	tbl.index = index

	for _, e := range entries {
		if len(e.Subsequence) == 0 || e.Count < 1 {
			continue
		}
		if e.LastIndex > tbl.index {
			tbl.index = e.LastIndex
		}
		key := e.Subsequence.Key()
		if r, ok := tbl.rows[key]; ok {
			r.entry.Count += e.Count
			r.entry.LastIndex = max(r.entry.LastIndex, e.LastIndex)
			continue
		}
		tbl.seq++
		tbl.rows[key] = &row{
			entry: memory.Entry{Subsequence: e.Subsequence.Clone(), Count: e.Count, LastIndex: e.LastIndex},
			seq:   tbl.seq,
		}
	}

	var evicted []memory.Entry
	for len(tbl.rows) > tbl.t {
		evicted = append(evicted, tbl.evict(tbl.index))
	}
	return tbl, evicted, nil
}

// Record registers one occurrence of sub at global block index. It returns
// the evicted entry when the insertion overflowed the table.
func (tbl *Table) Record(sub memory.Subsequence, index int) *memory.Entry {
	if index > tbl.index {
		tbl.index = index
	}

	key := sub.Key()
	if r, ok := tbl.rows[key]; ok {
		r.entry.Count++
		r.entry.LastIndex = index
		return nil
	}

	tbl.seq++
	tbl.rows[key] = &row{
		entry: memory.Entry{Subsequence: sub.Clone(), Count: 1, LastIndex: index},
		seq:   tbl.seq,
	}

	if len(tbl.rows) <= tbl.t {
		return nil
	}
	evicted := tbl.evict(index)
	return &evicted
}

// evict removes and returns the entry with the minimum score at index.
func (tbl *Table) evict(index int) memory.Entry {
	var victimKey string
	var victim *row
	for key, r := range tbl.rows {
		if victim == nil || lessValuable(r.entry, victim.entry, index) {
			victimKey, victim = key, r
		}
	}
	delete(tbl.rows, victimKey)
	return victim.entry
}

// lessValuable reports whether a should be evicted before b.
func lessValuable(a, b memory.Entry, index int) bool {
	// a.count/(1+ageA) < b.count/(1+ageB) without floating point.
	ageA := int64(index-a.LastIndex) + 1
	ageB := int64(index-b.LastIndex) + 1
	lhs := int64(a.Count) * ageB
	rhs := int64(b.Count) * ageA
	if lhs != rhs {
		return lhs < rhs
	}
	if a.LastIndex != b.LastIndex {
		return a.LastIndex < b.LastIndex
	}
	return a.Subsequence.Less(b.Subsequence)
}

// Get returns the entry for sub.
func (tbl *Table) Get(sub memory.Subsequence) (memory.Entry, bool) {
	r, ok := tbl.rows[sub.Key()]
	if !ok {
		return memory.Entry{}, false
	}
	return r.entry, true
}

// Entries returns a copy of all entries in first-insertion order.
func (tbl *Table) Entries() []memory.Entry {
	rows := make([]*row, 0, len(tbl.rows))
	for _, r := range tbl.rows {
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	out := make([]memory.Entry, len(rows))
	for i, r := range rows {
		out[i] = memory.Entry{
			Subsequence: r.entry.Subsequence.Clone(),
			Count:       r.entry.Count,
			LastIndex:   r.entry.LastIndex,
		}
	}
	return out
}

// Len returns the number of entries.
func (tbl *Table) Len() int {
	return len(tbl.rows)
}

// Cap returns t.
func (tbl *Table) Cap() int {
	return tbl.t
}

// Index returns the highest global block index recorded.
func (tbl *Table) Index() int {
	return tbl.index
}
