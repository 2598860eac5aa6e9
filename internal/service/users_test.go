package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planner/internal/models"
	"planner/internal/repository/repotest"
)

func TestResolveUser(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewTestStore(t)

	strict := NewUsers(store, false)
	_, err := strict.Resolve(ctx, " ", "")
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
	_, err = strict.Resolve(ctx, "auth0|ghost", "")
	assert.ErrorIs(t, err, models.ErrUserNotFound)

	open := NewUsers(store, true)
	u, err := open.Resolve(ctx, "auth0|ada", "ada@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "ada@example.com", u.Email)

	again, err := strict.Resolve(ctx, "auth0|ada", "")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)
}
