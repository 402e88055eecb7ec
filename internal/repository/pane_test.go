package repository

import (
	"context"
	"testing"

	"dashkeeper/internal/identity"
	"dashkeeper/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaneRepository_ListByHomeJoinsOrder(t *testing.T) {
	store := NewStore(setupSQLiteDB(t))
	ctx := context.Background()

	home := &models.Home{Name: "Default Home", Label: "Default Home", Username: "alice"}
	require.NoError(t, store.Homes.Create(ctx, home))

	for _, name := range []string{"A", "B"} {
		require.NoError(t, store.Panes.Create(ctx, &models.Pane{
			ID: identity.PaneID("alice", home.Name, name), HomeID: home.ID, Name: name, Label: name, Username: "alice",
		}))
	}
	require.NoError(t, store.Orders.Insert(ctx, &models.DashboardOrder{
		DashboardID: identity.PaneID("alice", home.Name, "B"), Username: "alice", Priority: 4,
	}))
	// another user's order must not leak
	require.NoError(t, store.Orders.Insert(ctx, &models.DashboardOrder{
		DashboardID: identity.PaneID("alice", home.Name, "A"), Username: "bob", Priority: 9,
	}))

	panes, err := store.Panes.ListByHome(ctx, home.ID, "alice")
	require.NoError(t, err)
	require.Len(t, panes, 2)
	assert.Equal(t, "A", panes[0].Name)
	assert.Equal(t, 0, panes[0].Priority)
	assert.Equal(t, 4, panes[1].Priority)
	assert.Equal(t, identity.PaneID("alice", home.Name, "B"), panes[1].ID)

	panes, err = store.Panes.ListByHome(ctx, home.ID, "bob")
	require.NoError(t, err)
	assert.Empty(t, panes)
}

func TestPaneRepository_RekeyMovesDependents(t *testing.T) {
	store := NewStore(setupSQLiteDB(t))
	ctx := context.Background()

	home := &models.Home{Name: "Default Home", Label: "Default Home", Username: "alice"}
	target := &models.Home{Name: "Ops", Label: "Ops", Username: "alice"}
	require.NoError(t, store.Homes.Create(ctx, home))
	require.NoError(t, store.Homes.Create(ctx, target))

	oldID := identity.PaneID("alice", home.Name, "Net")
	require.NoError(t, store.Panes.Create(ctx, &models.Pane{ID: oldID, HomeID: home.ID, Name: "Net", Label: "Net", Username: "alice"}))
	require.NoError(t, store.Orders.Insert(ctx, &models.DashboardOrder{DashboardID: oldID, Username: "alice", Priority: 1}))
	require.NoError(t, store.Dashlets.Create(ctx, &models.Dashlet{
		ID: identity.DashletID("alice", home.Name, "Net", "Hosts"), DashboardID: oldID, Name: "Hosts", Label: "Hosts", URL: "hosts",
	}))

	moved := &models.Pane{ID: identity.PaneID("alice", target.Name, "Net"), HomeID: target.ID, Name: "Net", Label: "Network", Username: "alice"}
	require.NoError(t, store.Panes.Rekey(ctx, oldID, moved))

	exists, err := store.Panes.Exists(ctx, oldID)
	require.NoError(t, err)
	assert.False(t, exists)

	panes, err := store.Panes.ListByHome(ctx, target.ID, "alice")
	require.NoError(t, err)
	require.Len(t, panes, 1)
	assert.Equal(t, "Network", panes[0].Label)
	assert.Equal(t, 1, panes[0].Priority)

	dashlets, err := store.Dashlets.ListByPane(ctx, moved.ID)
	require.NoError(t, err)
	assert.Len(t, dashlets, 1)
}

func TestPaneRepository_DeleteScopedByHome(t *testing.T) {
	store := NewStore(setupSQLiteDB(t))
	ctx := context.Background()

	home := &models.Home{Name: "Default Home", Label: "Default Home", Username: "alice"}
	require.NoError(t, store.Homes.Create(ctx, home))
	id := identity.PaneID("alice", home.Name, "A")
	require.NoError(t, store.Panes.Create(ctx, &models.Pane{ID: id, HomeID: home.ID, Name: "A", Label: "A", Username: "alice"}))
	require.NoError(t, store.Subscriptions.MarkSubscribable(ctx, id))

	require.NoError(t, store.Panes.Delete(ctx, id, home.ID+1))
	exists, err := store.Panes.Exists(ctx, id)
	require.NoError(t, err)
	assert.True(t, exists, "delete with the wrong home must not remove the pane")
	shared, err := store.Subscriptions.IsSubscribable(ctx, id)
	require.NoError(t, err)
	assert.True(t, shared)

	require.NoError(t, store.Panes.Delete(ctx, id, home.ID))
	exists, err = store.Panes.Exists(ctx, id)
	require.NoError(t, err)
	assert.False(t, exists)

	shared, err = store.Subscriptions.IsSubscribable(ctx, id)
	require.NoError(t, err)
	assert.False(t, shared)
}

func TestStore_TransactionRollsBack(t *testing.T) {
	store := NewStore(setupSQLiteDB(t))
	ctx := context.Background()

	err := store.Transaction(ctx, "test", func(tx *Store) error {
		require.NoError(t, tx.Homes.Create(ctx, &models.Home{Name: "Tmp", Label: "Tmp", Username: "alice"}))
		return models.NewConflictError("stop")
	})
	assert.True(t, models.IsConflict(err))

	_, err = store.Homes.GetByName(ctx, "alice", "Tmp")
	assert.True(t, models.IsNotFound(err))
}

func TestRekey_MissingRowIsNotFound(t *testing.T) {
	store := NewStore(setupSQLiteDB(t))
	ctx := context.Background()

	home := &models.Home{Name: "Default Home", Label: "Default Home", Username: "alice"}
	require.NoError(t, store.Homes.Create(ctx, home))

	ghost := identity.PaneID("alice", home.Name, "Ghost")
	err := store.Panes.Rekey(ctx, ghost, &models.Pane{ID: ghost, HomeID: home.ID, Name: "Ghost", Label: "Ghost", Username: "alice"})
	assert.True(t, models.IsNotFound(err))

	err = store.Dashlets.Rekey(ctx, identity.DashletID("alice", home.Name, "Ghost", "Hosts"), &models.Dashlet{
		ID: identity.DashletID("alice", home.Name, "Ghost", "Hosts"), DashboardID: ghost, Name: "Hosts", Label: "Hosts", URL: "hosts",
	})
	assert.True(t, models.IsNotFound(err))

	var n int64
	require.NoError(t, store.DB().Model(&models.Dashlet{}).Count(&n).Error)
	assert.Zero(t, n)
}
