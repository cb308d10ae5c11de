// Package recommend produces ranked recommendation lists from the memory
// containers. Every query is read-only.
package recommend

import (
	"sort"
	"strings"

	"github.com/aircode610/MouseTron/pkg/memory"
	"github.com/aircode610/MouseTron/pkg/memory/frequency"
	"github.com/aircode610/MouseTron/pkg/memory/recency"
	"github.com/aircode610/MouseTron/pkg/memory/subseq"
	"github.com/aircode610/MouseTron/pkg/memory/window"
)

// Resolver maps tool ids to names.
type Resolver interface {
	NameFor(id int) (string, error)
}

// Describer looks up tool descriptions. The engine does not own
// descriptions; a missing description is the empty string.
type Describer interface {
	Describe(name string) (string, bool)
}

// DescriberFunc adapts a function to Describer.
type DescriberFunc func(name string) (string, bool)

func (f DescriberFunc) Describe(name string) (string, bool) {
	return f(name)
}

// Scored is a ranked subsequence with its score inputs.
type Scored struct {
	Subsequence memory.Subsequence
	Count       int
	Score       int

	// first is the order of first occurrence, used as a tie-break.
	first int
}

// Recommender reads the memory containers.
type Recommender struct {
	Window    *window.Window
	Table     *frequency.Table
	Tracker   *recency.Tracker
	Resolver  Resolver
	Describer Describer
}

// RankRecent scores every subsequence of the windowed blocks by
// count_in_window * length and returns the top n.
func (r *Recommender) RankRecent(n int) []Scored {
	if n <= 0 || r.Window == nil {
		return nil
	}

	byKey := make(map[string]*Scored)
	order := 0
	for _, block := range r.Window.Blocks() {
		for _, sub := range subseq.Generate(block) {
			key := sub.Key()
			s, ok := byKey[key]
			if !ok {
				s = &Scored{Subsequence: sub, first: order}
				byKey[key] = s
				order++
			}
			s.Count++
		}
	}

	scored := make([]Scored, 0, len(byKey))
	for _, s := range byKey {
		s.Score = s.Count * len(s.Subsequence)
		scored = append(scored, *s)
	}
	return top(scored, n)
}

// RankFrequency scores every frequency table entry by count * length and
// returns the top n.
func (r *Recommender) RankFrequency(n int) []Scored {
	if n <= 0 || r.Table == nil {
		return nil
	}

	entries := r.Table.Entries()
	scored := make([]Scored, len(entries))
	for i, e := range entries {
		scored[i] = Scored{
			Subsequence: e.Subsequence,
			Count:       e.Count,
			Score:       e.Count * len(e.Subsequence),
			first:       i,
		}
	}
	return top(scored, n)
}

// top sorts by score desc, then longer first, then earliest first occurrence.
func top(scored []Scored, n int) []Scored {
	sort.Slice(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if len(a.Subsequence) != len(b.Subsequence) {
			return len(a.Subsequence) > len(b.Subsequence)
		}
		return a.first < b.first
	})
	if len(scored) > n {
		scored = scored[:n]
	}
	return scored
}

// PickFromRecent returns the top n combinations from the recent window.
func (r *Recommender) PickFromRecent(n int) ([]memory.Item, error) {
	return r.items(r.RankRecent(n))
}

// PickFromFrequency returns the top n combinations from the frequency table.
func (r *Recommender) PickFromFrequency(n int) ([]memory.Item, error) {
	return r.items(r.RankFrequency(n))
}

// RecentSingleTools returns the n most recently used tools, most recent
// first.
func (r *Recommender) RecentSingleTools(n int) ([]memory.Item, error) {
	if n <= 0 || r.Tracker == nil {
		return []memory.Item{}, nil
	}

	ids := r.Tracker.Recent()
	if len(ids) > n {
		ids = ids[:n]
	}

	out := make([]memory.Item, 0, len(ids))
	for _, id := range ids {
		item, err := r.single(id)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *Recommender) items(scored []Scored) ([]memory.Item, error) {
	out := make([]memory.Item, 0, len(scored))
	for _, s := range scored {
		item, err := r.Item(s.Subsequence)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// Item resolves a subsequence into a recommendation item. A single tool maps
// to itself; a combination joins member names with ", " and non-empty member
// descriptions with "; ".
func (r *Recommender) Item(sub memory.Subsequence) (memory.Item, error) {
	if len(sub) == 1 {
		return r.single(sub[0])
	}

	members := make([]memory.Item, 0, len(sub))
	names := make([]string, 0, len(sub))
	descs := make([]string, 0, len(sub))
	for _, id := range sub {
		m, err := r.single(id)
		if err != nil {
			return memory.Item{}, err
		}
		members = append(members, m)
		names = append(names, m.ToolName)
		if m.Description != "" {
			descs = append(descs, m.Description)
		}
	}

	return memory.Item{
		ToolName:    strings.Join(names, ", "),
		Description: strings.Join(descs, "; "),
		Tools:       members,
	}, nil
}

func (r *Recommender) single(id int) (memory.Item, error) {
	name, err := r.Resolver.NameFor(id)
	if err != nil {
		return memory.Item{}, err
	}
	return memory.Item{ToolName: name, Description: r.describe(name)}, nil
}

func (r *Recommender) describe(name string) string {
	if r.Describer == nil {
		return ""
	}
	desc, ok := r.Describer.Describe(name)
	if !ok {
		return ""
	}
	return desc
}
