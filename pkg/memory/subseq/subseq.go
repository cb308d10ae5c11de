// Package subseq enumerates the order-preserving subsequences of a block.
//
// A block of length n has 2^n - 1 non-empty subsequences, so enumeration is
// O(n * 2^n). Blocks are expected to be short (a handful of tool calls per
// execution); Generate refuses blocks longer than MaxLen instead of silently
// truncating them.
package subseq

import (
	"errors"
	"fmt"

	"github.com/aircode610/MouseTron/pkg/memory"
)

// HardMaxLen bounds MaxLen: 2^20 - 1 subsequences per block.
const HardMaxLen = 20

// DefaultMaxLen is the default block length limit.
const DefaultMaxLen = 16

// ErrBlockTooLong is returned for blocks longer than the configured limit.
var ErrBlockTooLong = errors.New("block too long for subsequence enumeration")

// Generator enumerates subsequences for blocks up to MaxLen long.
type Generator struct {
	MaxLen int
}

// NewGenerator returns a Generator with the given limit. A limit <= 0 selects
// DefaultMaxLen; limits above HardMaxLen are rejected.
func NewGenerator(maxLen int) (*Generator, error) {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	if maxLen > HardMaxLen {
		return nil, fmt.Errorf("max block length %d exceeds hard limit %d", maxLen, HardMaxLen)
	}
	return &Generator{MaxLen: maxLen}, nil
}

// Check reports whether block can be enumerated.
func (g *Generator) Check(block memory.Block) error {
	if len(block) > g.MaxLen {
		return fmt.Errorf("%w: %d ids (limit %d)", ErrBlockTooLong, len(block), g.MaxLen)
	}
	return nil
}

// Generate returns every non-empty subsequence of block, one per subset of
// positions. Duplicated ids are enumerated per position, so [A A] yields
// [A], [A], [A A].
func (g *Generator) Generate(block memory.Block) ([]memory.Subsequence, error) {
	if err := g.Check(block); err != nil {
		return nil, err
	}
	return Generate(block), nil
}

// Generate enumerates without a length check. Output is ordered by length,
// then by position tuple in lexicographic order.
func Generate(block memory.Block) []memory.Subsequence {
	n := len(block)
	if n == 0 {
		return nil
	}

	out := make([]memory.Subsequence, 0, (1<<n)-1)
	positions := make([]int, 0, n)

	for length := 1; length <= n; length++ {
		positions = positions[:0]
		for i := 0; i < length; i++ {
			positions = append(positions, i)
		}

		for {
			sub := make(memory.Subsequence, length)
			for i, p := range positions {
				sub[i] = block[p]
			}
			out = append(out, sub)

			// Advance to the next combination of positions.
			i := length - 1
			for i >= 0 && positions[i] == n-length+i {
				i--
			}
			if i < 0 {
				break
			}
			positions[i]++
			for j := i + 1; j < length; j++ {
				positions[j] = positions[j-1] + 1
			}
		}
	}

	return out
}
