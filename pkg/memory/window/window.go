// Package window keeps the k most recent blocks in strict FIFO order.
package window

import (
	"github.com/aircode610/MouseTron/pkg/memory"
)

// Window is a fixed-capacity FIFO of blocks.
type Window struct {
	k      int
	blocks []memory.Block
}

// New creates an empty Window holding at most k blocks. k must be > 0.
func New(k int) (*Window, error) {
	if k <= 0 {
		return nil, &memory.ConfigError{Field: "k", Value: k}
	}
	return &Window{k: k, blocks: make([]memory.Block, 0, k)}, nil
}

// Restore creates a Window from persisted blocks, oldest first. When more
// than k blocks are given only the last k are kept.
func Restore(k int, blocks []memory.Block) (*Window, error) {
	w, err := New(k)
	if err != nil {
		return nil, err
	}
	for _, b := range blocks {
		if len(b) == 0 {
			continue
		}
		w.Push(b)
	}
	return w, nil
}

// Push appends block and evicts the oldest block when the window overflows.
// It returns the evicted block, or nil.
func (w *Window) Push(block memory.Block) memory.Block {
	b := make(memory.Block, len(block))
	copy(b, block)
	w.blocks = append(w.blocks, b)

	if len(w.blocks) <= w.k {
		return nil
	}

	evicted := w.blocks[0]
	w.blocks[0] = nil
	w.blocks = w.blocks[1:]
	return evicted
}

// Blocks returns the windowed blocks, oldest first and most recent last.
// The returned slice must not be modified.
func (w *Window) Blocks() []memory.Block {
	return w.blocks
}

// Len returns the number of windowed blocks.
func (w *Window) Len() int {
	return len(w.blocks)
}

// Cap returns k.
func (w *Window) Cap() int {
	return w.k
}
