// Package local provides the in-process implementation of the memory.Driver
// interface.
//
// A Driver owns every memory container: the tool index, the recent-block
// window, the frequency table and the single-tool tracker. It is constructed
// once at process start, loaded from its containers directory, passed by
// reference to every call site, and closed on shutdown. The Driver performs
// no internal locking; callers serialize mutation, persistence and queries.
package local

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aircode610/MouseTron/pkg/logger"
	"github.com/aircode610/MouseTron/pkg/memory"
	"github.com/aircode610/MouseTron/pkg/memory/frequency"
	"github.com/aircode610/MouseTron/pkg/memory/persist"
	"github.com/aircode610/MouseTron/pkg/memory/recency"
	"github.com/aircode610/MouseTron/pkg/memory/recommend"
	"github.com/aircode610/MouseTron/pkg/memory/subseq"
	"github.com/aircode610/MouseTron/pkg/memory/toolindex"
	"github.com/aircode610/MouseTron/pkg/memory/window"
)

// Observer receives engine events. pkg/metrics provides the prometheus
// implementation.
type Observer interface {
	ExecutionRecorded(blockLen int, elapsed time.Duration)
	BlockRejected()
	EntriesEvicted(n int)
	RecommendationsGenerated()
}

type nopObserver struct{}

func (nopObserver) ExecutionRecorded(int, time.Duration) {}
func (nopObserver) BlockRejected()                       {}
func (nopObserver) EntriesEvicted(int)                   {}
func (nopObserver) RecommendationsGenerated()            {}

// Option configures a Driver created with New.
type Option func(*Driver)

// WithLogger sets the driver logger. Defaults to logger.Nop().
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) {
		d.logger = l
	}
}

// WithStore persists containers through s. Without a store the driver is
// memory-only.
func WithStore(s *persist.Store) Option {
	return func(d *Driver) {
		d.store = s
	}
}

// WithDescriber sets the tool description lookup used by recommendations.
func WithDescriber(desc recommend.Describer) Option {
	return func(d *Driver) {
		d.describer = desc
	}
}

// WithObserver sets the engine event observer.
func WithObserver(o Observer) Option {
	return func(d *Driver) {
		d.observer = o
	}
}

// Driver implements memory.Driver using in-process containers.
type Driver struct {
	config    Config
	logger    *slog.Logger
	store     *persist.Store
	describer recommend.Describer
	observer  Observer
	gen       *subseq.Generator

	index   *toolindex.Index
	window  *window.Window
	table   *frequency.Table
	tracker *recency.Tracker

	// nextIndex is the global block counter assigned to the next block.
	nextIndex int

	// historyLen counts records in the audit log.
	historyLen int
}

var _ memory.Driver = (*Driver)(nil)

// New creates an empty Driver. Invalid capacities return a
// *memory.ConfigError. Call Load to restore persisted state.
func New(config Config, opts ...Option) (*Driver, error) {
	if config.MaxBlockLen == 0 {
		config.MaxBlockLen = subseq.DefaultMaxLen
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	gen, err := subseq.NewGenerator(config.MaxBlockLen)
	if err != nil {
		return nil, err
	}

	d := &Driver{
		config:   config,
		logger:   logger.Nop(),
		observer: nopObserver{},
		gen:      gen,
	}
	for _, opt := range opts {
		opt(d)
	}

	if err := d.reset(); err != nil {
		return nil, err
	}
	return d, nil
}

// reset replaces every container with an empty one.
func (d *Driver) reset() error {
	var err error
	d.index = toolindex.New()
	if d.window, err = window.New(d.config.K); err != nil {
		return err
	}
	if d.table, err = frequency.New(d.config.T); err != nil {
		return err
	}
	if d.tracker, err = recency.New(d.config.NS); err != nil {
		return err
	}
	d.nextIndex = 0
	return nil
}

// Config returns the driver capacities.
func (d *Driver) Config() Config {
	return d.config
}

// RecordExecution records one completed execution. Names are trimmed and
// empty names dropped. The block is rejected without mutation when it is
// empty or longer than the configured block length limit. In-memory state is
// committed before persistence; a persistence error is returned and the
// caller may retry Flush.
func (d *Driver) RecordExecution(_ context.Context, toolNames []string) error {
	start := time.Now()

	names := memory.NormalizeNames(toolNames)
	if len(names) == 0 {
		d.observer.BlockRejected()
		return memory.ErrEmptyExecution
	}
	if len(names) > d.gen.MaxLen {
		d.observer.BlockRejected()
		return fmt.Errorf("%w: %d tools (limit %d)", subseq.ErrBlockTooLong, len(names), d.gen.MaxLen)
	}

	block := make(memory.Block, len(names))
	for i, name := range names {
		block[i] = d.index.IDFor(name)
	}

	idx := d.nextIndex
	d.record(block, idx)
	d.nextIndex++

	var errs []error
	if d.store != nil {
		rec := persist.HistoryRecord{
			Index:      idx,
			Tools:      block,
			Names:      names,
			RecordedAt: time.Now().UTC(),
		}
		if err := d.store.Append(rec); err != nil {
			errs = append(errs, err)
		} else {
			d.historyLen++
		}
	}
	if err := d.Flush(); err != nil {
		errs = append(errs, err)
	}

	d.observer.ExecutionRecorded(len(block), time.Since(start))
	d.logger.Debug("execution recorded",
		"index", idx,
		"tools", len(block),
		"table_entries", d.table.Len(),
	)

	return errors.Join(errs...)
}

// record applies block to the window, the frequency table and the tracker.
func (d *Driver) record(block memory.Block, idx int) {
	d.window.Push(block)

	evicted := 0
	for _, sub := range subseq.Generate(block) {
		if d.table.Record(sub, idx) != nil {
			evicted++
		}
	}
	if evicted > 0 {
		d.observer.EntriesEvicted(evicted)
	}

	for _, id := range block {
		d.tracker.Touch(id)
	}
}

// GenerateRecommendations returns the recent, stable and single-tool lists.
func (d *Driver) GenerateRecommendations(_ context.Context) (*memory.Recommendations, error) {
	r := d.Recommender()

	recent, err := r.PickFromRecent(d.config.NR)
	if err != nil {
		return nil, fmt.Errorf("picking from recent blocks: %w", err)
	}
	stable, err := r.PickFromFrequency(d.config.NF)
	if err != nil {
		return nil, fmt.Errorf("picking from frequency table: %w", err)
	}
	singles, err := r.RecentSingleTools(d.config.NS)
	if err != nil {
		return nil, fmt.Errorf("picking recent single tools: %w", err)
	}

	d.observer.RecommendationsGenerated()
	return &memory.Recommendations{
		Recent:  recent,
		Stable:  stable,
		Singles: singles,
	}, nil
}

// Recommender returns a read-only query layer over the current containers.
func (d *Driver) Recommender() *recommend.Recommender {
	return &recommend.Recommender{
		Window:    d.window,
		Table:     d.table,
		Tracker:   d.tracker,
		Resolver:  d.index,
		Describer: d.describer,
	}
}

// Index returns the tool index.
func (d *Driver) Index() *toolindex.Index {
	return d.index
}

// Window returns the recent-block window.
func (d *Driver) Window() *window.Window {
	return d.window
}

// Table returns the frequency table.
func (d *Driver) Table() *frequency.Table {
	return d.table
}

// Tracker returns the single-tool tracker.
func (d *Driver) Tracker() *recency.Tracker {
	return d.tracker
}

// Stats summarizes container sizes.
type Stats struct {
	Tools        int `json:"tools"`
	Blocks       int `json:"blocks"`
	WindowBlocks int `json:"window_blocks"`
	TableEntries int `json:"table_entries"`
	SingleTools  int `json:"single_tools"`
	HistoryLen   int `json:"history_len"`
}

// Stats returns current container sizes.
func (d *Driver) Stats() Stats {
	return Stats{
		Tools:        d.index.Len(),
		Blocks:       d.nextIndex,
		WindowBlocks: d.window.Len(),
		TableEntries: d.table.Len(),
		SingleTools:  len(d.tracker.Recent()),
		HistoryLen:   d.historyLen,
	}
}

// Close flushes all containers.
func (d *Driver) Close() error {
	return d.Flush()
}
