package screen

import "fmt"

// Mirror is the screen's in-memory copy of view records, ordered by ascending
// id to match the remote fetch order. It is reconciled in place after each
// successful remote mutation instead of re-fetching the whole collection.
//
// Mirror is not safe for concurrent use; the owning screen serializes access.
type Mirror[V any] struct {
	key     func(V) int64
	records []V
}

// NewMirror constructs an empty mirror whose records are identified by key.
func NewMirror[V any](key func(V) int64) *Mirror[V] {
	return &Mirror[V]{key: key}
}

// Reset replaces the mirror contents with a freshly resolved collection.
func (m *Mirror[V]) Reset(records []V) {
	m.records = make([]V, len(records))
	copy(m.records, records)
}

// Records returns a copy of the current view records in order.
func (m *Mirror[V]) Records() []V {
	out := make([]V, len(m.records))
	copy(out, m.records)
	return out
}

// Len reports the number of records held.
func (m *Mirror[V]) Len() int {
	return len(m.records)
}

// Get returns the record with the given id.
func (m *Mirror[V]) Get(id int64) (V, bool) {
	for _, r := range m.records {
		if m.key(r) == id {
			return r, true
		}
	}
	var zero V
	return zero, false
}

// Append adds a newly created record at the tail. The created row keeps fetch
// order only when ids are assigned monotonically; the tail position is the
// documented behavior either way. Duplicate ids are rejected to preserve the
// one-record-per-row invariant.
func (m *Mirror[V]) Append(record V) error {
	id := m.key(record)
	if _, exists := m.Get(id); exists {
		return fmt.Errorf("mirror already holds record %d", id)
	}
	m.records = append(m.records, record)
	return nil
}

// Replace swaps the record with the same id in place, preserving position.
// It reports whether a record was found.
func (m *Mirror[V]) Replace(record V) bool {
	id := m.key(record)
	for i, r := range m.records {
		if m.key(r) == id {
			m.records[i] = record
			return true
		}
	}
	return false
}

// Remove drops the record with the given id, reporting whether it was held.
func (m *Mirror[V]) Remove(id int64) bool {
	for i, r := range m.records {
		if m.key(r) == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return true
		}
	}
	return false
}
