package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planner/internal/repository/repotest"
)

func TestSeed(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewTestStore(t)

	n, err := seed(ctx, store, "seed-user", 2, 4)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	user, err := store.Repo().UserBySubject(ctx, "seed-user")
	require.NoError(t, err)
	items, err := store.Repo().ItemsByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, items, 10)

	scheduled := 0
	for _, it := range items {
		if it.AssignedDate != nil {
			scheduled++
		}
	}
	assert.Equal(t, 2, scheduled)
}
