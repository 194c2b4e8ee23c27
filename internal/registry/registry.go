// Package registry holds the ordered set of active notifications together with
// the selection cursor that marks the one currently displayed.
package registry

import (
	"slices"
	"sync"
	"time"

	"github.com/jmylchreest/notext/internal/model"
)

// NoSelection is the cursor value when nothing is selected.
const NoSelection = -1

// Registry is the ordered, id-keyed collection of active notifications and
// its selection cursor.
//
// The cursor and the entries are guarded by separate reader/writer locks.
// Every operation that holds both takes cursorMu before mu.
type Registry struct {
	cursorMu sync.RWMutex
	cursor   int

	mu        sync.RWMutex
	entries   []model.Notification
	revisions map[uint32]uint64 // id -> revision of its latest submit
	nextID    uint32
	nextRev   uint64
}

// New creates an empty Registry. The first auto-assigned id is 1.
func New() *Registry {
	return &Registry{
		cursor:    NoSelection,
		revisions: make(map[uint32]uint64),
		nextID:    1,
	}
}

// SubmitResult describes what Submit did.
type SubmitResult struct {
	ID       uint32
	Index    int
	Replaced bool
	Revision uint64 // Changes on every submit, including replacements
}

// Submit inserts a new notification or replaces an existing one in place.
//
// A zero ReplacesID always allocates a fresh id. A replacement keeps the
// entry's position and never moves the cursor. An insertion is appended; the
// cursor follows it when nothing was selected or the newest entry was selected.
func (r *Registry) Submit(s model.Submission, now time.Time) SubmitResult {
	r.cursorMu.Lock()
	defer r.cursorMu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()

	id := s.ReplacesID
	if id == 0 {
		id = r.allocateID()
	}
	n := s.Notification(id, now)
	r.nextRev++
	r.revisions[id] = r.nextRev

	if i := r.indexOf(id); i >= 0 {
		r.entries[i] = n
		return SubmitResult{ID: id, Index: i, Replaced: true, Revision: r.nextRev}
	}

	last := len(r.entries) - 1
	r.entries = append(r.entries, n)
	if r.cursor == NoSelection || r.cursor == last {
		r.cursor = len(r.entries) - 1
	}
	return SubmitResult{ID: id, Index: len(r.entries) - 1, Revision: r.nextRev}
}

// allocateID returns the next counter value that is non-zero and not held by
// an active entry. Callers hold mu.
func (r *Registry) allocateID() uint32 {
	for {
		id := r.nextID
		r.nextID++
		if r.nextID == 0 {
			r.nextID = 1
		}
		if id != 0 && r.indexOf(id) < 0 {
			return id
		}
	}
}

// indexOf returns the position of id or -1. Callers hold mu.
func (r *Registry) indexOf(id uint32) int {
	return slices.IndexFunc(r.entries, func(n model.Notification) bool {
		return n.ID == id
	})
}

// Remove deletes the entry the locator points at and reclamps the cursor.
// It reports false when the locator matches nothing, which is not an error:
// a stale expiry or a close with no selection simply has nothing to do.
//
// Presence is first checked under read locks so that callers with nothing to
// remove never block readers. The write locks are then taken and the locator
// re-resolved, since the state may have changed in between.
func (r *Registry) Remove(loc Locator) (model.Notification, bool) {
	if !r.resolvable(loc) {
		return model.Notification{}, false
	}

	r.cursorMu.Lock()
	defer r.cursorMu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.resolve(loc)
	if !ok {
		return model.Notification{}, false
	}

	removed := r.entries[idx]
	r.entries = slices.Delete(r.entries, idx, idx+1)
	delete(r.revisions, removed.ID)
	r.cursor = reclamp(r.cursor, idx, len(r.entries))
	return removed, true
}

func (r *Registry) resolvable(loc Locator) bool {
	r.cursorMu.RLock()
	defer r.cursorMu.RUnlock()
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.resolve(loc)
	return ok
}

// resolve maps a locator to an index. Callers hold both locks.
func (r *Registry) resolve(loc Locator) (int, bool) {
	var idx int
	switch loc.kind {
	case locateID:
		idx = r.indexOf(loc.id)
	case locateRevision:
		if r.revisions[loc.id] != loc.rev {
			return 0, false
		}
		idx = r.indexOf(loc.id)
	case locateIndex:
		idx = loc.index
	case locateCurrent:
		idx = r.cursor
	default:
		return 0, false
	}
	if idx < 0 || idx >= len(r.entries) {
		return 0, false
	}
	return idx, true
}

// reclamp returns the cursor after removing position removed, leaving n entries.
// Removing the selected entry selects the one that shifted into its slot, or
// the new last entry when it was last. Removing an entry before the cursor
// selects the last entry. Removing one after it leaves the cursor alone.
func reclamp(cursor, removed, n int) int {
	switch {
	case n == 0:
		return NoSelection
	case removed < cursor:
		return n - 1
	default:
		return min(max(cursor, 0), n-1)
	}
}

// Next moves the cursor forward, wrapping to the first entry.
// It reports false when nothing is selected.
func (r *Registry) Next() bool {
	return r.step(1)
}

// Prev moves the cursor backward, wrapping to the last entry.
// It reports false when nothing is selected.
func (r *Registry) Prev() bool {
	return r.step(-1)
}

func (r *Registry) step(delta int) bool {
	r.cursorMu.RLock()
	selected := r.cursor != NoSelection
	r.cursorMu.RUnlock()
	if !selected {
		return false
	}

	r.cursorMu.Lock()
	defer r.cursorMu.Unlock()
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.entries)
	if r.cursor == NoSelection || n == 0 {
		return false
	}
	r.cursor = ((r.cursor+delta)%n + n) % n
	return true
}

// Current returns the selected notification and its index.
func (r *Registry) Current() (model.Notification, int, bool) {
	r.cursorMu.RLock()
	defer r.cursorMu.RUnlock()
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.cursor < 0 || r.cursor >= len(r.entries) {
		return model.Notification{}, NoSelection, false
	}
	return r.entries[r.cursor], r.cursor, true
}

// Cursor returns the cursor index, or NoSelection.
func (r *Registry) Cursor() int {
	r.cursorMu.RLock()
	defer r.cursorMu.RUnlock()
	return r.cursor
}

// Get returns the entry at index.
func (r *Registry) Get(index int) (model.Notification, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index < 0 || index >= len(r.entries) {
		return model.Notification{}, false
	}
	return r.entries[index], true
}

// Contains reports whether id is active.
func (r *Registry) Contains(id uint32) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.indexOf(id) >= 0
}

// Len returns the number of active notifications.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// List returns a copy of the active notifications in display order.
func (r *Registry) List() []model.Notification {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.entries)
}

// View is a consistent snapshot of what the renderer shows.
type View struct {
	Current model.Notification
	Index   int // 0-based, NoSelection when Has is false
	Len     int
	Has     bool
}

// Snapshot returns the selected notification and registry length read under
// the same locks.
func (r *Registry) Snapshot() View {
	r.cursorMu.RLock()
	defer r.cursorMu.RUnlock()
	r.mu.RLock()
	defer r.mu.RUnlock()

	v := View{Index: NoSelection, Len: len(r.entries)}
	if r.cursor >= 0 && r.cursor < len(r.entries) {
		v.Current = r.entries[r.cursor]
		v.Index = r.cursor
		v.Has = true
	}
	return v
}
