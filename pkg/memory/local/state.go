package local

import (
	"context"
	"errors"
	"fmt"

	"github.com/aircode610/MouseTron/pkg/memory"
	"github.com/aircode610/MouseTron/pkg/memory/frequency"
	"github.com/aircode610/MouseTron/pkg/memory/persist"
	"github.com/aircode610/MouseTron/pkg/memory/recency"
	"github.com/aircode610/MouseTron/pkg/memory/toolindex"
	"github.com/aircode610/MouseTron/pkg/memory/window"
)

// Load restores every container from the store. A missing or corrupt
// container is initialized empty and logged; it never prevents the others
// from loading. Load only returns an error for failures that leave the driver
// unusable.
func (d *Driver) Load(_ context.Context) error {
	if d.store == nil {
		return nil
	}

	dirty := false

	var nameToID map[string]int
	if err := d.store.Load(persist.NameToID, &nameToID); err != nil {
		d.warnLoad(persist.NameToID, err)
		nameToID = nil
	}
	var idToName map[int]string
	if err := d.store.Load(persist.IDToName, &idToName); err != nil {
		d.warnLoad(persist.IDToName, err)
		idToName = nil
	}

	index, err := toolindex.Restore(nameToID, idToName)
	var inconsistent *toolindex.InconsistencyError
	switch {
	case errors.As(err, &inconsistent):
		d.logger.Warn("tool index repaired on load",
			"repairs", len(inconsistent.Repairs),
			"error", err,
		)
		dirty = true
	case err != nil:
		return fmt.Errorf("restoring tool index: %w", err)
	}
	d.index = index

	var blocks [][]int
	if err := d.store.Load(persist.RecentBlocks, &blocks); err != nil {
		d.warnLoad(persist.RecentBlocks, err)
		blocks = nil
	}
	restored := make([]memory.Block, 0, len(blocks))
	for _, b := range blocks {
		restored = append(restored, memory.Block(b))
	}
	if len(restored) > d.config.K {
		d.logger.Warn("recent block window truncated to configured size",
			"persisted", len(restored),
			"k", d.config.K,
		)
		dirty = true
	}
	if d.window, err = window.Restore(d.config.K, restored); err != nil {
		return err
	}

	var freq persist.FrequencyState
	if err := d.store.Load(persist.FrequencyTable, &freq); err != nil {
		d.warnLoad(persist.FrequencyTable, err)
		freq = persist.FrequencyState{}
	}
	table, evicted, err := frequency.Restore(d.config.T, freq.NextIndex-1, freq.Entries)
	if err != nil {
		return err
	}
	if len(evicted) > 0 {
		d.logger.Warn("frequency table shrunk to configured capacity",
			"evicted", len(evicted),
			"t", d.config.T,
		)
		d.observer.EntriesEvicted(len(evicted))
		dirty = true
	}
	d.table = table
	d.nextIndex = max(freq.NextIndex, table.Index()+1, 0)

	var singles []int
	if err := d.store.Load(persist.RecentSingleTools, &singles); err != nil {
		d.warnLoad(persist.RecentSingleTools, err)
		singles = nil
	}
	if len(singles) > d.config.NS {
		dirty = true
	}
	if d.tracker, err = recency.Restore(d.config.NS, singles); err != nil {
		return err
	}

	d.reserveReferencedIDs()

	// The history log is audit-only; it is read here just to count records
	// and keep the block counter monotonic if the frequency table was lost.
	d.historyLen = 0
	skipped, err := d.store.Replay(func(rec persist.HistoryRecord) error {
		d.historyLen++
		if rec.Index >= d.nextIndex {
			d.nextIndex = rec.Index + 1
		}
		return nil
	})
	if err != nil {
		d.warnLoad(persist.History, err)
	}
	if skipped > 0 {
		d.logger.Warn("skipped undecodable history records", "skipped", skipped)
	}

	d.logger.Info("memory loaded",
		"dir", d.store.Dir,
		"tools", d.index.Len(),
		"window_blocks", d.window.Len(),
		"table_entries", d.table.Len(),
		"single_tools", len(d.tracker.Recent()),
		"next_index", d.nextIndex,
	)

	if dirty {
		return d.Flush()
	}
	return nil
}

func (d *Driver) warnLoad(c persist.Container, err error) {
	if errors.Is(err, persist.ErrMissing) {
		d.logger.Debug("container missing, starting empty", "container", string(c))
		return
	}
	d.logger.Warn("container unreadable, starting empty",
		"container", string(c),
		"error", err,
	)
}

// Flush atomically saves every container except the append-only history log.
func (d *Driver) Flush() error {
	if d.store == nil {
		return nil
	}

	blocks := make([][]int, 0, d.window.Len())
	for _, b := range d.window.Blocks() {
		blocks = append(blocks, []int(b))
	}

	saves := []struct {
		c persist.Container
		v any
	}{
		{persist.NameToID, d.index.NameToID()},
		{persist.IDToName, d.index.IDToName()},
		{persist.RecentBlocks, blocks},
		{persist.FrequencyTable, persist.FrequencyState{NextIndex: d.nextIndex, Entries: d.table.Entries()}},
		{persist.RecentSingleTools, d.tracker.Recent()},
	}

	var errs []error
	for _, s := range saves {
		if err := d.store.Save(s.c, s.v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Rebuild discards the tracking containers and re-derives them by replaying
// the history log under the current configuration. Tool ids are preserved.
// The replay runs against scratch containers that replace the live ones only
// when it completes, so a failed rebuild leaves the driver untouched. The
// history log itself is never modified.
func (d *Driver) Rebuild(ctx context.Context) (int, error) {
	if d.store == nil {
		return 0, errors.New("rebuild requires a containers directory")
	}

	scratch := &Driver{
		config:   d.config,
		logger:   d.logger,
		observer: d.observer,
		gen:      d.gen,
	}
	if err := scratch.reset(); err != nil {
		return 0, err
	}
	scratch.index = d.index.Clone()

	replayed, seen := 0, 0
	skipped, err := d.store.Replay(func(rec persist.HistoryRecord) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		seen++

		names := memory.NormalizeNames(rec.Names)
		if len(names) == 0 || len(names) > scratch.gen.MaxLen {
			return nil
		}

		block := make(memory.Block, len(names))
		for i, name := range names {
			block[i] = scratch.index.IDFor(name)
		}

		scratch.record(block, rec.Index)
		if rec.Index >= scratch.nextIndex {
			scratch.nextIndex = rec.Index + 1
		}
		replayed++
		return nil
	})
	if err != nil && !errors.Is(err, persist.ErrMissing) {
		return 0, fmt.Errorf("replaying history: %w", err)
	}

	d.index = scratch.index
	d.window = scratch.window
	d.table = scratch.table
	d.tracker = scratch.tracker
	d.nextIndex = max(scratch.nextIndex, d.nextIndex)
	d.historyLen = seen

	d.logger.Info("memory rebuilt from history",
		"replayed", replayed,
		"skipped", skipped,
	)

	return replayed, d.Flush()
}

// reserveReferencedIDs keeps ids still referenced by the window, the table or
// the tracker from being handed to new tools after a tool index repair.
func (d *Driver) reserveReferencedIDs() {
	for _, b := range d.window.Blocks() {
		for _, id := range b {
			d.index.Reserve(id)
		}
	}
	for _, e := range d.table.Entries() {
		for _, id := range e.Subsequence {
			d.index.Reserve(id)
		}
	}
	for _, id := range d.tracker.Recent() {
		d.index.Reserve(id)
	}
}
