package postgres

import (
	"slices"
)

// rowDiff is the set of writes that turns the stored child rows of an
// aggregate into its current state
type rowDiff[T any] struct {
	Insert  []T
	Update  []T
	Removed []string
}

func (d rowDiff[T]) Empty() bool {
	return len(d.Insert) == 0 && len(d.Update) == 0 && len(d.Removed) == 0
}

// diffRows compares the stored rows, keyed by id, with the current rows.
// Inserts and updates keep the order of current so that parents are written
// before their children. Removed ids are sorted.
func diffRows[T any](stored map[string]T, current []T, key func(T) string, equal func(a, b T) bool) rowDiff[T] {
	var d rowDiff[T]
	seen := make(map[string]struct{}, len(current))
	for _, row := range current {
		id := key(row)
		seen[id] = struct{}{}
		old, ok := stored[id]
		switch {
		case !ok:
			d.Insert = append(d.Insert, row)
		case !equal(old, row):
			d.Update = append(d.Update, row)
		}
	}
	for id := range stored {
		if _, ok := seen[id]; !ok {
			d.Removed = append(d.Removed, id)
		}
	}
	slices.Sort(d.Removed)
	return d
}

// diffSet compares two membership sets such as likes or friendships
func diffSet(stored, current []string) (added, removed []string) {
	storedSet := make(map[string]struct{}, len(stored))
	for _, id := range stored {
		storedSet[id] = struct{}{}
	}
	currentSet := make(map[string]struct{}, len(current))
	for _, id := range current {
		currentSet[id] = struct{}{}
		if _, ok := storedSet[id]; !ok {
			added = append(added, id)
		}
	}
	for _, id := range stored {
		if _, ok := currentSet[id]; !ok {
			removed = append(removed, id)
		}
	}
	slices.Sort(added)
	slices.Sort(removed)
	return added, removed
}
