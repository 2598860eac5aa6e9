// Package ordering holds the pure planners behind sibling and day ordering.
// Nothing here touches storage: each planner takes a snapshot of entries and
// returns the absolute values to persist, so applying a plan twice is harmless.
package ordering

import "sort"

// Entry is the part of an item a planner looks at: its id and current rank.
// A nil Order sorts after every set value.
type Entry struct {
	ID    string
	Order *int
}

// Patch sets the rank of one item.
type Patch struct {
	ID    string
	Order int
}

// Sorted returns a copy of entries stably ordered by rank, unset ranks last.
// Entries with equal rank keep their input (storage) order.
func Sorted(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Order, out[j].Order
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return *a < *b
	})
	return out
}

// Normalize assigns the dense ranks 1..N following the current relative order.
// Only entries whose rank actually changes get a patch.
func Normalize(entries []Entry) []Patch {
	return assign(Sorted(entries))
}

// PlanMove relocates mover to the 1-based position desired among siblings.
// siblings may or may not contain the mover; it is excluded either way.
// desired is clamped to [1, N+1] where N is the sibling count without the mover.
// It returns the clamped position and patches for every entry whose rank changes,
// the mover included.
func PlanMove(siblings []Entry, mover Entry, desired int) (int, []Patch) {
	rest := make([]Entry, 0, len(siblings))
	for _, e := range siblings {
		if e.ID != mover.ID {
			rest = append(rest, e)
		}
	}
	rest = Sorted(rest)

	pos := Clamp(desired, len(rest)+1)
	target := make([]Entry, 0, len(rest)+1)
	target = append(target, rest[:pos-1]...)
	target = append(target, mover)
	target = append(target, rest[pos-1:]...)
	return pos, assign(target)
}

// PlanGapClose decrements every entry ranked strictly after removed.
func PlanGapClose(siblings []Entry, removed int) []Patch {
	var patches []Patch
	for _, e := range siblings {
		if e.Order != nil && *e.Order > removed {
			patches = append(patches, Patch{ID: e.ID, Order: *e.Order - 1})
		}
	}
	return patches
}

// NextOrder returns one past the highest set rank, so an appended entry lands last.
func NextOrder(siblings []Entry) int {
	max := 0
	for _, e := range siblings {
		if e.Order != nil && *e.Order > max {
			max = *e.Order
		}
	}
	return max + 1
}

// Clamp bounds a 1-based position into [1, limit].
func Clamp(pos, limit int) int {
	if limit < 1 {
		limit = 1
	}
	if pos < 1 {
		return 1
	}
	if pos > limit {
		return limit
	}
	return pos
}

func assign(ordered []Entry) []Patch {
	var patches []Patch
	for i, e := range ordered {
		want := i + 1
		if e.Order == nil || *e.Order != want {
			patches = append(patches, Patch{ID: e.ID, Order: want})
		}
	}
	return patches
}
