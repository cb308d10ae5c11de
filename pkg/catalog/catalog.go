// Package catalog provides tool descriptions for recommendations.
//
// A catalog file is a JSON array with a fixed schema:
//
//	[{"tool_name": "search", "description": "Search the web"}]
//
// Entries without a tool_name are skipped; the rest of the file still loads.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"

	"github.com/aircode610/MouseTron/pkg/logger"
)

// Entry is one catalog row.
type Entry struct {
	ToolName    string `json:"tool_name" validate:"required"`
	Description string `json:"description"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Catalog is a concurrency-safe tool name -> description lookup. The zero
// value is an empty catalog.
type Catalog struct {
	mu           sync.RWMutex
	descriptions map[string]string
	path         string
	logger       *slog.Logger
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{descriptions: map[string]string{}, logger: logger.Nop()}
}

// Load reads the catalog at path. An empty path yields an empty catalog.
func Load(path string, log *slog.Logger) (*Catalog, error) {
	c := New()
	c.path = path
	if log != nil {
		c.logger = log
	}
	if path == "" {
		return c, nil
	}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Parse decodes catalog bytes. Invalid entries are skipped and counted;
// later duplicates override earlier ones.
func Parse(data []byte) (map[string]string, int, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("decoding catalog: %w", err)
	}

	descriptions := make(map[string]string, len(raw))
	skipped := 0
	for _, msg := range raw {
		var e Entry
		if err := json.Unmarshal(msg, &e); err != nil {
			skipped++
			continue
		}
		e.ToolName = strings.TrimSpace(e.ToolName)
		if err := validate.Struct(e); err != nil {
			skipped++
			continue
		}
		descriptions[e.ToolName] = strings.TrimSpace(e.Description)
	}
	return descriptions, skipped, nil
}

// Reload re-reads the catalog file. On failure the previous contents stay in
// place.
func (c *Catalog) Reload() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("reading catalog: %w", err)
	}

	descriptions, skipped, err := Parse(data)
	if err != nil {
		return err
	}
	if skipped > 0 {
		c.logger.Warn("skipped malformed catalog entries", "path", c.path, "skipped", skipped)
	}

	c.mu.Lock()
	c.descriptions = descriptions
	c.mu.Unlock()

	c.logger.Debug("catalog loaded", "path", c.path, "tools", len(descriptions))
	return nil
}

// Describe implements recommend.Describer.
func (c *Catalog) Describe(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	desc, ok := c.descriptions[name]
	return desc, ok
}

// Len returns the number of described tools.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.descriptions)
}

// Watch reloads the catalog whenever its file changes, until ctx is done.
// The parent directory is watched so editors that replace the file by rename
// are picked up.
func (c *Catalog) Watch(ctx context.Context) error {
	if c.path == "" {
		return errors.New("catalog has no path to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating catalog watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(c.path)); err != nil {
		return fmt.Errorf("watching catalog dir: %w", err)
	}

	target := filepath.Clean(c.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if err := c.Reload(); err != nil {
				c.logger.Warn("catalog reload failed", "path", c.path, "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.Warn("catalog watcher error", "error", err)
		}
	}
}
