// Package artifacts writes recommendations as one JSON file per rank
// position so that display layers can pick them up without talking to the
// API:
//
//	recent_1.json  recent_2.json
//	stable_1.json  ... stable_5.json
//	single_1.json  ... single_5.json
//
// Every file holds the ordered member list of one recommendation using a
// fixed schema, [{"tool_name": ..., "description": ...}]. A single tool is a
// one-element list.
package artifacts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aircode610/MouseTron/pkg/memory"
)

// Category names one recommendation list.
type Category string

const (
	Recent Category = "recent"
	Stable Category = "stable"
	Single Category = "single"
)

// Categories lists every category.
var Categories = []Category{Recent, Stable, Single}

// Tool is one entry of an artifact file.
type Tool struct {
	ToolName    string `json:"tool_name" validate:"required"`
	Description string `json:"description"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Writer writes artifact files under Dir.
type Writer struct {
	Dir string
}

// NewWriter creates dir if needed.
func NewWriter(dir string) (*Writer, error) {
	if dir == "" {
		return nil, errors.New("artifacts directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating artifacts directory %s: %w", dir, err)
	}
	return &Writer{Dir: dir}, nil
}

// Write replaces every artifact with recs. Files for ranks that no longer
// exist are removed.
func (w *Writer) Write(recs *memory.Recommendations) error {
	if recs == nil {
		return errors.New("cannot write nil recommendations")
	}

	lists := map[Category][]memory.Item{
		Recent: recs.Recent,
		Stable: recs.Stable,
		Single: recs.Singles,
	}

	var errs []error
	for _, cat := range Categories {
		items := lists[cat]
		for i, item := range items {
			if err := w.writeFile(fileName(cat, i+1), tools(item)); err != nil {
				errs = append(errs, err)
			}
		}
		if err := w.removeStale(cat, len(items)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func fileName(cat Category, rank int) string {
	return string(cat) + "_" + strconv.Itoa(rank) + ".json"
}

// parseName returns the category and rank encoded in name.
func parseName(name string) (Category, int, bool) {
	base, ok := strings.CutSuffix(name, ".json")
	if !ok {
		return "", 0, false
	}
	i := strings.LastIndexByte(base, '_')
	if i < 0 {
		return "", 0, false
	}
	rank, err := strconv.Atoi(base[i+1:])
	if err != nil || rank < 1 {
		return "", 0, false
	}
	cat := Category(base[:i])
	for _, known := range Categories {
		if cat == known {
			return cat, rank, true
		}
	}
	return "", 0, false
}

func tools(item memory.Item) []Tool {
	if len(item.Tools) == 0 {
		return []Tool{{ToolName: item.ToolName, Description: item.Description}}
	}
	out := make([]Tool, len(item.Tools))
	for i, m := range item.Tools {
		out[i] = Tool{ToolName: m.ToolName, Description: m.Description}
	}
	return out
}

func (w *Writer) writeFile(name string, v []Tool) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", name, err)
	}

	tmpFile, err := os.CreateTemp(w.Dir, name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", name, err)
	}
	tmpName := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(w.Dir, name)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("persisting %s: %w", name, err)
	}
	return nil
}

func (w *Writer) removeStale(cat Category, keep int) error {
	matches, err := filepath.Glob(filepath.Join(w.Dir, string(cat)+"_*.json"))
	if err != nil {
		return err
	}

	var errs []error
	for _, path := range matches {
		got, rank, ok := parseName(filepath.Base(path))
		if !ok || got != cat || rank <= keep {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Read loads the artifacts in dir back into recommendations, in rank order.
// Malformed files are ignored and counted in skipped.
func Read(dir string) (recs *memory.Recommendations, skipped int, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, fmt.Errorf("reading artifacts directory: %w", err)
	}

	type ranked struct {
		rank int
		item memory.Item
	}
	byCat := map[Category][]ranked{}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		cat, rank, ok := parseName(e.Name())
		if !ok {
			continue
		}

		item, err := readFile(filepath.Join(dir, e.Name()))
		if err != nil {
			skipped++
			continue
		}
		byCat[cat] = append(byCat[cat], ranked{rank: rank, item: item})
	}

	collect := func(cat Category) []memory.Item {
		list := byCat[cat]
		sort.Slice(list, func(i, j int) bool { return list[i].rank < list[j].rank })
		out := make([]memory.Item, len(list))
		for i, r := range list {
			out[i] = r.item
		}
		return out
	}

	return &memory.Recommendations{
		Recent:  collect(Recent),
		Stable:  collect(Stable),
		Singles: collect(Single),
	}, skipped, nil
}

func readFile(path string) (memory.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return memory.Item{}, err
	}

	var list []Tool
	if err := json.Unmarshal(data, &list); err != nil {
		return memory.Item{}, err
	}
	if len(list) == 0 {
		return memory.Item{}, errors.New("empty artifact")
	}
	for _, t := range list {
		if err := validate.Struct(t); err != nil {
			return memory.Item{}, err
		}
	}

	if len(list) == 1 {
		return memory.Item{ToolName: list[0].ToolName, Description: list[0].Description}, nil
	}

	members := make([]memory.Item, len(list))
	names := make([]string, len(list))
	descs := make([]string, 0, len(list))
	for i, t := range list {
		members[i] = memory.Item{ToolName: t.ToolName, Description: t.Description}
		names[i] = t.ToolName
		if t.Description != "" {
			descs = append(descs, t.Description)
		}
	}
	return memory.Item{
		ToolName:    strings.Join(names, ", "),
		Description: strings.Join(descs, "; "),
		Tools:       members,
	}, nil
}
