// Package persist stores memory containers as JSON files in one directory.
//
// Every container is independently loadable and saveable. Saves are atomic:
// the payload is written to a temp file in the same directory, synced, and
// renamed over the previous file, so an interrupted save leaves the prior
// valid state loadable. The history container is an append-only JSON-lines
// log; a torn trailing line is skipped on replay.
package persist

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/aircode610/MouseTron/pkg/memory"
)

// Container names one persisted container.
type Container string

const (
	NameToID          Container = "name_to_id"
	IDToName          Container = "id_to_name"
	RecentBlocks      Container = "recent_blocks"
	FrequencyTable    Container = "frequency_table"
	History           Container = "history"
	RecentSingleTools Container = "recent_single_tools"
)

// Containers lists every container in load order.
var Containers = []Container{NameToID, IDToName, RecentBlocks, FrequencyTable, History, RecentSingleTools}

var (
	// ErrMissing is returned when a container file does not exist.
	ErrMissing = errors.New("container missing")

	// ErrCorrupt is returned when a container file cannot be decoded.
	ErrCorrupt = errors.New("container corrupt")
)

// FrequencyState is the persisted frequency table: the global block counter
// for the next block and the entries in first-insertion order.
type FrequencyState struct {
	NextIndex int            `json:"next_index"`
	Entries   []memory.Entry `json:"entries"`
}

// HistoryRecord is one line of the append-only history log.
type HistoryRecord struct {
	Index      int       `json:"index"`
	Tools      []int     `json:"tools"`
	Names      []string  `json:"names"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Store reads and writes containers under Dir.
type Store struct {
	Dir string
}

// NewStore creates dir if needed and returns a Store rooted at it.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("containers directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating containers directory %s: %w", dir, err)
	}
	return &Store{Dir: dir}, nil
}

// Path returns the file path of c.
func (s *Store) Path(c Container) string {
	if c == History {
		return filepath.Join(s.Dir, string(c)+".jsonl")
	}
	return filepath.Join(s.Dir, string(c)+".json")
}

// Load decodes container c into v. Missing files wrap ErrMissing; undecodable
// files wrap ErrCorrupt.
func (s *Store) Load(c Container, v any) error {
	data, err := os.ReadFile(s.Path(c))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", c, ErrMissing)
		}
		return fmt.Errorf("reading %s: %w", c, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%s: %w: %v", c, ErrCorrupt, err)
	}
	return nil
}

// Save atomically replaces container c with the JSON encoding of v.
func (s *Store) Save(c Container, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", c, err)
	}

	tmpFile, err := os.CreateTemp(s.Dir, string(c)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", c, err)
	}
	tmpName := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing temp file for %s: %w", c, err)
	}

	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("syncing temp file for %s: %w", c, err)
	}

	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing temp file for %s: %w", c, err)
	}

	if err := os.Rename(tmpName, s.Path(c)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("persisting %s: %w", c, err)
	}

	return nil
}

// Append writes one JSON line to the history log and syncs it.
func (s *Store) Append(rec HistoryRecord) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling history record: %w", err)
	}
	line = append(line, '\n')

	f, err := os.OpenFile(s.Path(History), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}

	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("appending history: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("syncing history: %w", err)
	}
	return f.Close()
}

// Replay calls fn for every decodable history record in order and returns
// the number of lines that were skipped as undecodable. A missing log wraps
// ErrMissing.
func (s *Store) Replay(fn func(HistoryRecord) error) (int, error) {
	f, err := os.Open(s.Path(History))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("%s: %w", History, ErrMissing)
		}
		return 0, fmt.Errorf("opening history: %w", err)
	}
	defer f.Close()

	return replay(f, fn)
}

func replay(r io.Reader, fn func(HistoryRecord) error) (int, error) {
	skipped := 0
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var rec HistoryRecord
		if err := json.Unmarshal(line, &rec); err != nil || len(rec.Tools) == 0 {
			skipped++
			continue
		}
		if err := fn(rec); err != nil {
			return skipped, err
		}
	}

	if err := scanner.Err(); err != nil {
		return skipped, fmt.Errorf("reading history: %w", err)
	}
	return skipped, nil
}
