package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planner/internal/models"
)

func TestDeleteProjectRemovesSubtree(t *testing.T) {
	f := newFixture(t)
	x := f.create(alice, "X", nil)
	p, err := f.items.Create(f.ctx, alice, CreateInput{Text: "Project", Type: models.ItemTypeProject})
	require.NoError(t, err)
	y := f.create(alice, "Y", nil)

	c1, err := f.items.CreateChild(f.ctx, alice, p, "C1", models.ItemTypeProject)
	require.NoError(t, err)
	c2, err := f.items.CreateChild(f.ctx, alice, p, "C2", "")
	require.NoError(t, err)
	g1, err := f.items.CreateChild(f.ctx, alice, c1, "G1", "")
	require.NoError(t, err)

	z := f.create(alice, "Z", nil)
	f.assign(alice, g1, monday)
	f.assign(alice, z, monday)
	f.assign(alice, c2, monday)

	res, err := f.items.DeleteProject(f.ctx, alice, p)
	require.NoError(t, err)
	require.NotNil(t, res.DeletedOrder)
	assert.Equal(t, 2, *res.DeletedOrder)
	assert.Equal(t, 2, res.UpdatedCount)

	for _, id := range []string{p, c1, c2, g1} {
		assert.False(t, f.exists(id), id)
	}
	assert.Equal(t, map[string]int{x: 1, y: 2, z: 3}, f.ranks(alice, nil))
	assert.Equal(t, []string{z}, f.daySeq(alice, monday))
	assert.Equal(t, map[string]int{z: 1}, f.dayRanks(alice, monday))
	f.assertCalendarAgrees(alice, monday)
}

func TestDeleteProjectOnLeaf(t *testing.T) {
	f := newFixture(t)
	a := f.create(alice, "A", nil)
	b := f.create(alice, "B", nil)

	res, err := f.items.DeleteProject(f.ctx, alice, a)
	require.NoError(t, err)
	assert.Equal(t, 1, *res.DeletedOrder)
	assert.Equal(t, 1, res.UpdatedCount)
	assert.Equal(t, map[string]int{b: 1}, f.ranks(alice, nil))
}

func TestDeleteProjectNestedRootRepairsItsGroupOnly(t *testing.T) {
	f := newFixture(t)
	top := f.create(alice, "top", nil)
	first := f.create(alice, "first", &top)
	sub := f.create(alice, "sub", &top)
	last := f.create(alice, "last", &top)
	f.create(alice, "leaf", &sub)

	res, err := f.items.DeleteProject(f.ctx, alice, sub)
	require.NoError(t, err)
	assert.Equal(t, 2, *res.DeletedOrder)
	assert.Equal(t, map[string]int{first: 1, last: 2}, f.ranks(alice, &top))
	assert.Equal(t, map[string]int{top: 1}, f.ranks(alice, nil))
}

func TestDeleteProjectTerminatesOnParentCycle(t *testing.T) {
	f := newFixture(t)
	r := f.store.Repo()
	rID, aID, bID := "cycle-r", "cycle-a", "cycle-b"
	for _, it := range []*models.Item{
		{ID: rID, UserID: alice, Text: "r", ParentID: &bID, MainOrder: intPtr(1)},
		{ID: aID, UserID: alice, Text: "a", ParentID: &rID, MainOrder: intPtr(1)},
		{ID: bID, UserID: alice, Text: "b", ParentID: &aID, MainOrder: intPtr(1)},
	} {
		require.NoError(t, r.InsertItem(f.ctx, it))
	}
	bystander := f.create(alice, "bystander", nil)

	_, err := f.items.DeleteProject(f.ctx, alice, rID)
	require.NoError(t, err)
	for _, id := range []string{rID, aID, bID} {
		assert.False(t, f.exists(id), id)
	}
	assert.True(t, f.exists(bystander))
}

func TestDeleteProjectCompletedRoot(t *testing.T) {
	f := newFixture(t)
	a := f.create(alice, "A", nil)
	b := f.create(alice, "B", nil)
	f.create(alice, "child", &a)
	_, err := f.items.ToggleComplete(f.ctx, alice, a)
	require.NoError(t, err)

	res, err := f.items.DeleteProject(f.ctx, alice, a)
	require.NoError(t, err)
	assert.Nil(t, res.DeletedOrder)
	assert.Zero(t, res.UpdatedCount)
	assert.Equal(t, map[string]int{b: 1}, f.ranks(alice, nil))
	assert.Equal(t, models.ActionDeleted, f.events.actions()[len(f.events.actions())-1])
}
