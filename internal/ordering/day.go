package ordering

import (
	"fmt"
	"time"
)

// DateLayout is the ISO date format used for assigned dates and day keys.
const DateLayout = "2006-01-02"

// ValidDate reports whether s is a calendar date in DateLayout.
func ValidDate(s string) bool {
	if len(s) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ParseDateToken splits an assignment token into its date and the optional id
// of the item to insert before. The date is always the first ten characters.
func ParseDateToken(token string) (date, beforeID string, err error) {
	if len(token) < len(DateLayout) {
		return "", "", fmt.Errorf("date token %q is too short", token)
	}
	date = token[:len(DateLayout)]
	if !ValidDate(date) {
		return "", "", fmt.Errorf("date token %q does not start with a date", token)
	}
	return date, token[len(DateLayout):], nil
}

// Remove drops every occurrence of id from seq.
func Remove(seq []string, id string) []string {
	out := make([]string, 0, len(seq))
	for _, s := range seq {
		if s != id {
			out = append(out, s)
		}
	}
	return out
}

// Contains reports whether id occurs in seq.
func Contains(seq []string, id string) bool {
	for _, s := range seq {
		if s == id {
			return true
		}
	}
	return false
}

// InsertBefore places id immediately before beforeID, or at the end when
// beforeID is empty or absent. Any earlier occurrence of id is removed first.
func InsertBefore(seq []string, id, beforeID string) []string {
	out := Remove(seq, id)
	if beforeID != "" && beforeID != id {
		for i, s := range out {
			if s == beforeID {
				out = append(out[:i], append([]string{id}, out[i:]...)...)
				return out
			}
		}
	}
	return append(out, id)
}

// InsertAt places id at the 1-based position pos, clamped to [1, M+1] where M
// is the sequence length without id. It returns the clamped position.
func InsertAt(seq []string, id string, pos int) (int, []string) {
	out := Remove(seq, id)
	pos = Clamp(pos, len(out)+1)
	out = append(out[:pos-1], append([]string{id}, out[pos-1:]...)...)
	return pos, out
}

// ReconcileDay rebuilds the authoritative sequence for a day from the stored
// sequence and the entries currently tagged with that date. References to
// entries no longer tagged are dropped along with duplicates; tagged entries
// missing from the sequence are appended by their current rank.
func ReconcileDay(seq []string, tagged []Entry) []string {
	known := make(map[string]bool, len(tagged))
	for _, e := range tagged {
		known[e.ID] = true
	}
	out := make([]string, 0, len(tagged))
	seen := make(map[string]bool, len(seq))
	for _, id := range seq {
		if known[id] && !seen[id] {
			out = append(out, id)
			seen[id] = true
		}
	}
	for _, e := range Sorted(tagged) {
		if !seen[e.ID] {
			out = append(out, e.ID)
			seen[e.ID] = true
		}
	}
	return out
}

// PlanDayOrders derives dense 1..M ranks from seq, patching only entries whose
// current rank differs. Ids in seq without a matching entry are skipped.
func PlanDayOrders(seq []string, current []Entry) []Patch {
	byID := make(map[string]Entry, len(current))
	for _, e := range current {
		byID[e.ID] = e
	}
	var patches []Patch
	rank := 0
	for _, id := range seq {
		e, ok := byID[id]
		if !ok {
			continue
		}
		rank++
		if e.Order == nil || *e.Order != rank {
			patches = append(patches, Patch{ID: id, Order: rank})
		}
	}
	return patches
}

// PlanDayShift places mover at day rank target among others that share its
// date, shifting every other entry ranked at or after target up by one.
// target is clamped to [1, max+1] where max is the highest rank among others.
// Ranks are not compacted, so gaps already present survive. It returns the
// clamped rank, patches for the shifted entries (mover excluded) and the
// day sequence ordered by the resulting ranks.
func PlanDayShift(others []Entry, mover string, target int) (int, []Patch, []string) {
	rest := make([]Entry, 0, len(others))
	for _, e := range others {
		if e.ID != mover {
			rest = append(rest, e)
		}
	}
	pos := Clamp(target, NextOrder(rest))
	var patches []Patch
	placed := make([]Entry, 0, len(rest)+1)
	for _, e := range rest {
		if e.Order != nil && *e.Order >= pos {
			next := *e.Order + 1
			patches = append(patches, Patch{ID: e.ID, Order: next})
			e = Entry{ID: e.ID, Order: &next}
		}
		placed = append(placed, e)
	}
	placed = append(placed, Entry{ID: mover, Order: &pos})

	seq := make([]string, 0, len(placed))
	for _, e := range Sorted(placed) {
		seq = append(seq, e.ID)
	}
	return pos, patches, seq
}
