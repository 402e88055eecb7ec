package repository

import (
	"context"
	"testing"

	"dashkeeper/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHomeRepository_Lifecycle(t *testing.T) {
	repo := NewHomeRepository(setupSQLiteDB(t))
	ctx := context.Background()

	home := &models.Home{Name: "Ops", Label: "Operations", Username: "alice"}
	require.NoError(t, repo.Create(ctx, home))
	assert.NotZero(t, home.ID)
	assert.Equal(t, models.HomeTypePrivate, home.Type)

	require.NoError(t, repo.Create(ctx, &models.Home{Name: "Ops", Label: "Bob Ops", Username: "bob"}))

	err := repo.Create(ctx, &models.Home{Name: "Ops", Label: "again", Username: "alice"})
	assert.True(t, models.IsConflict(err), "duplicate name per user should conflict, got %v", err)

	homes, err := repo.ListByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, homes, 1)

	require.NoError(t, repo.UpdateLabel(ctx, home.ID, "Ops Center"))
	got, err := repo.GetByName(ctx, "alice", "Ops")
	require.NoError(t, err)
	assert.Equal(t, "Ops Center", got.Label)

	require.NoError(t, repo.Delete(ctx, home.ID))
	_, err = repo.GetByName(ctx, "alice", "Ops")
	assert.True(t, models.IsNotFound(err))
}
