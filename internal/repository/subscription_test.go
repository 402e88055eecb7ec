package repository

import (
	"context"
	"testing"

	"dashkeeper/internal/identity"
	"dashkeeper/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionRepository_ListSubscribable(t *testing.T) {
	store := NewStore(setupSQLiteDB(t))
	ctx := context.Background()

	home := &models.Home{Name: "Default Home", Label: "Default Home", Username: "bob", Type: models.HomeTypeShared}
	require.NoError(t, store.Homes.Create(ctx, home))
	shared := identity.PaneID("bob", home.Name, "Network")
	private := identity.PaneID("bob", home.Name, "Private")
	for name, id := range map[string][]byte{"Network": shared, "Private": private} {
		require.NoError(t, store.Panes.Create(ctx, &models.Pane{ID: id, HomeID: home.ID, Name: name, Label: name, Username: "bob"}))
	}

	require.NoError(t, store.Subscriptions.MarkSubscribable(ctx, shared))
	require.NoError(t, store.Subscriptions.MarkSubscribable(ctx, shared))

	require.NoError(t, store.Subscriptions.CreateOverride(ctx, &models.DashboardOverride{DashboardID: shared, Username: "alice"}))
	require.NoError(t, store.Subscriptions.CreateOverride(ctx, &models.DashboardOverride{DashboardID: shared, Username: "carol", Disabled: true}))

	err := store.Subscriptions.CreateOverride(ctx, &models.DashboardOverride{DashboardID: shared, Username: "alice"})
	assert.True(t, models.IsConflict(err))

	rows, err := store.Subscriptions.ListSubscribable(ctx, "carol", SubscribableQuery{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Network", rows[0].Name)
	assert.Equal(t, "bob", rows[0].Username)
	assert.Equal(t, 2, rows[0].Acceptance)
	assert.True(t, rows[0].Disabled)

	rows, err = store.Subscriptions.ListSubscribable(ctx, "alice", SubscribableQuery{Search: "net"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].Disabled)

	rows, err = store.Subscriptions.ListSubscribable(ctx, "alice", SubscribableQuery{Search: "nothing"})
	require.NoError(t, err)
	assert.Empty(t, rows)

	require.NoError(t, store.Subscriptions.SetOverrideDisabled(ctx, shared, "alice", true))
	subscribed, err := store.Subscriptions.ListSubscribed(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, subscribed, 1)
	assert.Equal(t, "bob", subscribed[0].Owner)
	assert.True(t, subscribed[0].Disabled)
	assert.Nil(t, subscribed[0].OverrideLabel)

	err = store.Subscriptions.SetOverrideDisabled(ctx, private, "alice", true)
	assert.True(t, models.IsNotFound(err))
}

func TestRoleRepository(t *testing.T) {
	repo := NewRoleRepository(setupSQLiteDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Assign(ctx, "alice", "ops", "admin"))
	require.NoError(t, repo.Assign(ctx, "alice", "ops"))
	require.NoError(t, repo.Assign(ctx, "alice"))

	roles, err := repo.RolesOf(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "ops"}, roles)

	roles, err = repo.RolesOf(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, roles)
}

func TestTranslateError(t *testing.T) {
	pgDup := &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
	assert.True(t, models.IsConflict(translateError(pgDup)))

	pgOther := &pgconn.PgError{Code: "23503"}
	assert.Equal(t, models.CodeInternal, models.CodeOf(translateError(pgOther)))

	nf := models.NewNotFoundError("Pane", "x")
	assert.Same(t, nf, translateError(nf))
	assert.NoError(t, translateError(nil))
}
