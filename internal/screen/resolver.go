// Package screen holds the building blocks every manager screen shares: the
// reference resolver that joins a primary collection against already-loaded
// reference collections, the local mirror of denormalized view records, and
// the edit session state machine gating create vs update submissions.
package screen

// Missing is the display fallback used when a foreign key does not resolve
// against the loaded reference collection.
const Missing = "N/A"

// Index builds an id lookup over a reference collection. Keys are int64 so
// that matching is always numeric equality, never a string/number mix.
func Index[R any](rows []R, key func(R) int64) map[int64]R {
	index := make(map[int64]R, len(rows))
	for _, row := range rows {
		index[key(row)] = row
	}
	return index
}

// Resolve left-joins the primary collection against an indexed reference
// collection. For each primary row, join receives the matched reference (its
// zero value when absent) and whether the match existed; a miss must degrade
// to a placeholder, never drop the row. Inputs are not mutated and the result
// is a fresh slice, so resolving twice yields identical output.
func Resolve[P, R, V any](primary []P, refs map[int64]R, fk func(P) int64, join func(P, R, bool) V) []V {
	out := make([]V, 0, len(primary))
	for _, p := range primary {
		ref, ok := refs[fk(p)]
		out = append(out, join(p, ref, ok))
	}
	return out
}

// DisplayOr returns value unless the reference was missing, in which case the
// Missing sentinel is used.
func DisplayOr(value string, ok bool) string {
	if !ok {
		return Missing
	}
	return value
}
