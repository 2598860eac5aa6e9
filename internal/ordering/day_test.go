package ordering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateToken(t *testing.T) {
	date, before, err := ParseDateToken("2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", date)
	assert.Empty(t, before)

	date, before, err = ParseDateToken("2024-03-05f3a1c2d4-0000-4000-8000-000000000000")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", date)
	assert.Equal(t, "f3a1c2d4-0000-4000-8000-000000000000", before)

	_, _, err = ParseDateToken("2024-3-5")
	assert.Error(t, err)
	_, _, err = ParseDateToken("2024-13-01")
	assert.Error(t, err)
}

func TestInsertBefore(t *testing.T) {
	seq := []string{"a", "b", "c"}
	assert.Equal(t, []string{"a", "x", "b", "c"}, InsertBefore(seq, "x", "b"))
	assert.Equal(t, []string{"a", "b", "c", "x"}, InsertBefore(seq, "x", "missing"))
	assert.Equal(t, []string{"a", "b", "c", "x"}, InsertBefore(seq, "x", ""))
	assert.Equal(t, []string{"c", "a", "b"}, InsertBefore(seq, "c", "a"))
	assert.Equal(t, []string{"b", "c", "a"}, InsertBefore(seq, "a", "a"))
	assert.Equal(t, []string{"a", "b", "c"}, seq)
}

func TestInsertAt(t *testing.T) {
	pos, out := InsertAt([]string{"a", "b", "c"}, "x", 2)
	assert.Equal(t, 2, pos)
	assert.Equal(t, []string{"a", "x", "b", "c"}, out)

	pos, out = InsertAt([]string{"a", "b", "c"}, "a", 10)
	assert.Equal(t, 3, pos)
	assert.Equal(t, []string{"b", "c", "a"}, out)

	pos, out = InsertAt(nil, "a", 0)
	assert.Equal(t, 1, pos)
	assert.Equal(t, []string{"a"}, out)
}

func TestReconcileDay(t *testing.T) {
	tagged := []Entry{{"a", ord(1)}, {"b", nil}, {"c", ord(2)}, {"d", ord(1)}}
	seq := []string{"c", "gone", "a", "c"}
	assert.Equal(t, []string{"c", "a", "d", "b"}, ReconcileDay(seq, tagged))
	assert.Empty(t, ReconcileDay([]string{"x"}, nil))
}

func TestPlanDayOrders(t *testing.T) {
	current := []Entry{{"a", ord(1)}, {"b", ord(5)}, {"c", nil}}
	patches := PlanDayOrders([]string{"a", "ghost", "c", "b"}, current)
	assert.Equal(t, []Patch{{"c", 2}, {"b", 3}}, patches)
}

func TestPlanDayShift(t *testing.T) {
	tests := []struct {
		name    string
		mover   string
		others  []Entry
		target  int
		pos     int
		patches []Patch
		seq     []string
	}{
		{
			name:    "later slot on the same day",
			mover:   "a",
			others:  []Entry{{"b", ord(2)}, {"c", ord(3)}},
			target:  2,
			pos:     2,
			patches: []Patch{{"b", 3}, {"c", 4}},
			seq:     []string{"a", "b", "c"},
		},
		{
			name:    "front",
			mover:   "c",
			others:  []Entry{{"a", ord(1)}, {"b", ord(2)}},
			target:  1,
			pos:     1,
			patches: []Patch{{"a", 2}, {"b", 3}},
			seq:     []string{"c", "a", "b"},
		},
		{
			name:   "past the end clamps after the highest rank",
			mover:  "a",
			others: []Entry{{"b", ord(1)}, {"c", ord(5)}},
			target: 40,
			pos:    6,
			seq:    []string{"b", "c", "a"},
		},
		{
			name:    "gaps are kept",
			mover:   "a",
			others:  []Entry{{"b", ord(1)}, {"c", ord(5)}},
			target:  3,
			pos:     3,
			patches: []Patch{{"c", 6}},
			seq:     []string{"b", "a", "c"},
		},
		{
			name:    "unranked entries stay last",
			mover:   "a",
			others:  []Entry{{"b", nil}, {"c", ord(1)}},
			target:  0,
			pos:     1,
			patches: []Patch{{"c", 2}},
			seq:     []string{"a", "c", "b"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			others := append(tt.others, Entry{tt.mover, ord(1)})
			pos, patches, seq := PlanDayShift(others, tt.mover, tt.target)
			assert.Equal(t, tt.pos, pos)
			assert.Equal(t, tt.patches, patches)
			assert.Equal(t, tt.seq, seq)
		})
	}
}
