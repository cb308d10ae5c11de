// Package toolindex maps tool names to small integer ids and back.
//
// Ids are allocated monotonically from 0 and are never reused or reassigned
// for the lifetime of the persisted state.
package toolindex

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aircode610/MouseTron/pkg/memory"
)

// Index is a bidirectional tool name <-> id mapping.
type Index struct {
	byName map[string]int
	byID   map[int]string
	next   int
}

// New creates an empty Index.
func New() *Index {
	return &Index{
		byName: make(map[string]int),
		byID:   make(map[int]string),
	}
}

// IDFor returns the id for name, allocating the next free id if name is new.
func (x *Index) IDFor(name string) int {
	if id, ok := x.byName[name]; ok {
		return id
	}

	id := x.next
	x.byName[name] = id
	x.byID[id] = name
	x.next++
	return id
}

// Reserve keeps id from being allocated to a new tool. Load reserves every
// id referenced by the other containers.
func (x *Index) Reserve(id int) {
	if id >= x.next {
		x.next = id + 1
	}
}

// NameFor returns the name for id or a *memory.LookupError.
func (x *Index) NameFor(id int) (string, error) {
	name, ok := x.byID[id]
	if !ok {
		return "", &memory.LookupError{ID: id}
	}
	return name, nil
}

// Len returns the number of known tools.
func (x *Index) Len() int {
	return len(x.byName)
}

// NameToID returns a copy of the name -> id map for persistence.
func (x *Index) NameToID() map[string]int {
	out := make(map[string]int, len(x.byName))
	for k, v := range x.byName {
		out[k] = v
	}
	return out
}

// Clone returns an independent copy that continues allocation where x does.
func (x *Index) Clone() *Index {
	return &Index{
		byName: x.NameToID(),
		byID:   x.IDToName(),
		next:   x.next,
	}
}

// IDToName returns a copy of the id -> name map for persistence.
func (x *Index) IDToName() map[int]string {
	out := make(map[int]string, len(x.byID))
	for k, v := range x.byID {
		out[k] = v
	}
	return out
}

// InconsistencyError reports repairs made while restoring an Index from
// persisted maps that were not mutual inverses. The restored Index is usable;
// the error is a warning for the caller.
type InconsistencyError struct {
	Repairs []string
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("tool index maps were inconsistent, %d repair(s): %s",
		len(e.Repairs), strings.Join(e.Repairs, "; "))
}

// Restore rebuilds an Index from the two persisted directions.
//
// When both maps agree the Index is returned with a nil error. Otherwise the
// union of both maps is kept: name -> id wins a conflict, and an id_to_name
// entry whose id and name are both unclaimed is recovered. Allocation resumes
// above the highest id seen in either map, so an id dropped during repair is
// never handed to a new tool. An *InconsistencyError listing the repairs is
// returned alongside the usable Index.
func Restore(nameToID map[string]int, idToName map[int]string) (*Index, error) {
	x := New()
	var repairs []string

	highest := -1
	for _, id := range nameToID {
		highest = max(highest, id)
	}
	for id := range idToName {
		highest = max(highest, id)
	}

	// Sorted names keep repairs deterministic.
	names := make([]string, 0, len(nameToID))
	for name := range nameToID {
		names = append(names, name)
	}
	sort.Strings(names)

	// Prefer the name that id_to_name also agrees with when two names claim
	// the same id.
	sort.SliceStable(names, func(i, j int) bool {
		return agrees(idToName, names[i], nameToID[names[i]]) && !agrees(idToName, names[j], nameToID[names[j]])
	})

	for _, name := range names {
		id := nameToID[name]
		if id < 0 {
			repairs = append(repairs, fmt.Sprintf("dropped %q with negative id %d", name, id))
			continue
		}
		if owner, taken := x.byID[id]; taken {
			repairs = append(repairs, fmt.Sprintf("dropped %q: id %d already owned by %q", name, id, owner))
			continue
		}
		x.byName[name] = id
		x.byID[id] = name
		if !agrees(idToName, name, id) {
			repairs = append(repairs, fmt.Sprintf("id_to_name[%d] set to %q", id, name))
		}
	}

	ids := make([]int, 0, len(idToName))
	for id := range idToName {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	recovered := 0
	for _, id := range ids {
		name := idToName[id]
		if owner, taken := x.byID[id]; taken {
			if owner != name {
				repairs = append(repairs, fmt.Sprintf("dropped id_to_name[%d]=%q: id owned by %q", id, name, owner))
			}
			continue
		}
		if id < 0 {
			repairs = append(repairs, fmt.Sprintf("dropped id_to_name[%d]=%q with negative id", id, name))
			continue
		}
		if other, claimed := x.byName[name]; claimed {
			repairs = append(repairs, fmt.Sprintf("dropped id_to_name[%d]=%q: name has id %d", id, name, other))
			continue
		}
		x.byName[name] = id
		x.byID[id] = name
		recovered++
		if len(nameToID) > 0 {
			repairs = append(repairs, fmt.Sprintf("recovered %q at id %d from id_to_name", name, id))
		}
	}
	if len(nameToID) == 0 && recovered > 0 {
		repairs = append(repairs, "name_to_id rebuilt from id_to_name")
	}

	x.next = highest + 1

	if len(repairs) > 0 {
		sort.Strings(repairs)
		return x, &InconsistencyError{Repairs: repairs}
	}
	return x, nil
}

func agrees(idToName map[int]string, name string, id int) bool {
	got, ok := idToName[id]
	return ok && got == name
}
