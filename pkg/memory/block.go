package memory

import (
	"strconv"
	"strings"
)

// Block is the ordered sequence of tool ids of one completed execution.
type Block []int

// Subsequence is an ordered, non-empty sub-list of a block's ids that
// preserves relative order. It is neither sorted nor contiguous.
type Subsequence []int

// Key returns the canonical map key for s. Two subsequences with the same ids
// in the same order share a key regardless of which block produced them.
func (s Subsequence) Key() string {
	var b strings.Builder
	for i, id := range s {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(id))
	}
	return b.String()
}

// Less orders subsequences lexicographically by id tuple, shorter prefix
// first.
func (s Subsequence) Less(other Subsequence) bool {
	for i := 0; i < len(s) && i < len(other); i++ {
		if s[i] != other[i] {
			return s[i] < other[i]
		}
	}
	return len(s) < len(other)
}

// Clone returns a copy of s.
func (s Subsequence) Clone() Subsequence {
	out := make(Subsequence, len(s))
	copy(out, s)
	return out
}

// Entry is one frequency table row.
type Entry struct {
	Subsequence Subsequence `json:"subsequence"`
	Count       int         `json:"count"`
	LastIndex   int         `json:"last_index"`
}

// NormalizeNames trims every tool name and drops empty ones, preserving order
// and duplicates.
func NormalizeNames(toolNames []string) []string {
	names := make([]string, 0, len(toolNames))
	for _, name := range toolNames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	return names
}
