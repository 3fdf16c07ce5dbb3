// Package memory is the in-process storage backend used for development and
// handler tests. Data is lost on restart.
package memory

import (
	"sort"
	"strings"
	"sync"

	"github.com/dalemusser/prepboard/internal/app/store/records"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
)

// New returns a Backend whose repositories share nothing but live in memory.
func New() records.Backend {
	return records.Backend{
		Name:          "memory",
		Announcements: NewAnnouncements(),
		Assignments:   NewAssignments(),
		Admins:        NewAdmins(),
	}
}

// table is a mutex-guarded map keyed by record id.
type table[T any] struct {
	mu   sync.RWMutex
	rows map[string]T
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]T)}
}

func newID() string {
	return uuid.NewString()
}

func (t *table[T]) get(id string) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.rows[id]
	return v, ok
}

func (t *table[T]) put(id string, v T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows[id] = v
}

func (t *table[T]) remove(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	return true
}

// selectPage filters under the read lock, then sorts and slices the copy.
func (t *table[T]) selectPage(keep func(T) bool, less func(a, b T) bool, offset, limit int) ([]T, int64) {
	t.mu.RLock()
	all := make([]T, 0, len(t.rows))
	for _, v := range t.rows {
		if keep == nil || keep(v) {
			all = append(all, v)
		}
	}
	t.mu.RUnlock()

	sort.SliceStable(all, func(i, j int) bool { return less(all[i], all[j]) })
	return records.Window(all, offset, limit), int64(len(all))
}

func matchesPrefix(titleCI, query string) bool {
	q := strings.TrimSpace(query)
	if q == "" {
		return true
	}
	return strings.HasPrefix(titleCI, text.Fold(q))
}
