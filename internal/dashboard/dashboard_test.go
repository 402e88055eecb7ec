package dashboard

import (
	"context"
	"testing"

	"dashkeeper/internal/auth"
	"dashkeeper/internal/identity"
	"dashkeeper/internal/models"
	"dashkeeper/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_CreatesCatalogHomesOnce(t *testing.T) {
	db := setupDB(t)
	d := openDashboard(t, db, "alice")

	assert.True(t, d.HasHome(AvailableDashlets))
	assert.True(t, d.HasHome(SubscribableDashboards))
	assert.Nil(t, d.RewindHomes())
	assert.Nil(t, d.GetActiveHome())

	// a second session finds them stored
	openDashboard(t, db, "alice")
	var n int64
	require.NoError(t, db.Model(&models.Home{}).Where("username = ?", "alice").Count(&n).Error)
	assert.Equal(t, int64(2), n)
}

func TestLoad_PicksRequestedOrFirstHome(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	seed := openDashboard(t, db, "alice")
	for _, name := range []string{"Network", "Storage"} {
		_, err := seed.CreateHome(ctx, CreateHomeInput{Name: name})
		require.NoError(t, err)
	}

	store := repository.NewStore(db)
	user := auth.NewUser("alice")

	d := New(NewSession(store, user, nil))
	require.NoError(t, d.Load(ctx))
	require.NotNil(t, d.GetActiveHome())
	assert.Equal(t, "Network", d.GetActiveHome().Name())
	assert.Equal(t, "Network", d.RewindHomes().Name())

	d = New(NewSession(store, user, nil, WithRequestedHome("Storage")))
	require.NoError(t, d.Load(ctx))
	assert.Equal(t, "Storage", d.GetActiveHome().Name())
	assert.True(t, d.GetActiveHome().IsLoaded())

	require.NoError(t, d.LoadDashboards(ctx, "Network"))
	assert.Equal(t, "Network", d.GetActiveHome().Name())

	var names []string
	for _, h := range d.GetHomes() {
		names = append(names, h.Name())
	}
	assert.Equal(t, []string{AvailableDashlets, SubscribableDashboards, "Network", "Storage"}, names)
}

func TestGetHome_NotFound(t *testing.T) {
	d := openDashboard(t, setupDB(t), "alice")
	_, err := d.GetHome("missing")
	assert.True(t, models.IsNotFound(err))
}

func TestManageHome(t *testing.T) {
	db := setupDB(t)
	d := openDashboard(t, db, "alice")
	ctx := context.Background()

	home := NewHome("Network")
	require.NoError(t, d.ManageHome(ctx, home))
	require.NotZero(t, home.ID())
	assert.True(t, d.HasHome("Network"))

	home.SetLabel("Core Network")
	require.NoError(t, d.ManageHome(ctx, home))

	var row models.Home
	require.NoError(t, db.First(&row, home.ID()).Error)
	assert.Equal(t, "Core Network", row.Label)

	// a fresh object with a known name updates the registered home
	again := NewHome("Network")
	again.SetLabel("Edge")
	require.NoError(t, d.ManageHome(ctx, again))
	assert.Equal(t, home.ID(), again.ID())
	assert.Equal(t, "Edge", home.Label())

	catalog, err := d.GetHome(AvailableDashlets)
	require.NoError(t, err)
	catalog.SetLabel("Something else")
	require.NoError(t, d.ManageHome(ctx, catalog))
	var catalogRow models.Home
	require.NoError(t, db.First(&catalogRow, catalog.ID()).Error)
	assert.Equal(t, AvailableDashlets, catalogRow.Label)
}

func TestHomePersists(t *testing.T) {
	db := setupDB(t)
	openDashboard(t, db, "alice")
	d := New(NewSession(repository.NewStore(db), auth.NewUser("alice"), nil))
	ctx := context.Background()

	home := NewHome(AvailableDashlets)
	ok, err := d.HomePersists(ctx, home)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotZero(t, home.ID())

	ok, err = d.HomePersists(ctx, NewHome("missing"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRemoveHome_Reserved(t *testing.T) {
	for _, name := range ReservedHomes {
		t.Run(name, func(t *testing.T) {
			db := setupDB(t)
			d := openDashboard(t, db, "alice")
			defaultHome(t, d)
			counter := countStatements(t, db)

			err := d.RemoveHome(context.Background(), name)
			assert.True(t, models.IsProgrammingError(err))
			assert.Zero(t, counter.total)
			assert.True(t, d.HasHome(name))
		})
	}
}

func TestRemoveHome(t *testing.T) {
	db := setupDB(t)
	d := openDashboard(t, db, "alice")
	ctx := context.Background()

	_, err := d.CreateDashlet(ctx, CreateDashletInput{Home: "Network", Pane: "Core", Dashlet: "Switches", URL: "switches"})
	require.NoError(t, err)
	_, err = d.CreateDashlet(ctx, CreateDashletInput{Home: "Network", Pane: "Edge", Dashlet: "Routers", URL: "routers"})
	require.NoError(t, err)

	require.NoError(t, d.RemoveHome(ctx, "Network"))
	assert.False(t, d.HasHome("Network"))

	for _, model := range []any{&models.Pane{}, &models.Dashlet{}} {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		assert.Zero(t, n)
	}
	var n int64
	require.NoError(t, db.Model(&models.Home{}).Where("name = ?", "Network").Count(&n).Error)
	assert.Zero(t, n)

	err = d.RemoveHome(ctx, "Network")
	assert.True(t, models.IsProgrammingError(err))
}

func TestUnsetHome_KeepsStorage(t *testing.T) {
	db := setupDB(t)
	d := openDashboard(t, db, "alice")
	counter := countStatements(t, db)

	d.UnsetHome(AvailableDashlets)
	d.UnsetHome("never existed")
	assert.False(t, d.HasHome(AvailableDashlets))
	assert.Zero(t, counter.total)
	assert.Len(t, d.GetHomes(), 1)
}

func TestGetHomeKeyNameArray(t *testing.T) {
	d := openDashboard(t, setupDB(t), "alice")
	ctx := context.Background()
	_, err := d.CreateHome(ctx, CreateHomeInput{Name: "Network", Label: "Net"})
	require.NoError(t, err)
	_, err = d.CreateHome(ctx, CreateHomeInput{Name: "Team", Shared: true})
	require.NoError(t, err)

	assert.Equal(t, []Choice{{Name: "Network", Title: "Net"}, {Name: "Team", Title: "Team"}}, d.GetHomeKeyNameArray(false))
	assert.Equal(t, []Choice{{Name: "Team", Title: "Team"}}, d.GetHomeKeyNameArray(true))
}

func TestSubscribe(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	bob := openDashboard(t, db, "bob", "ops")
	_, err := bob.CreateDashlet(ctx, CreateDashletInput{Pane: "Outages", Dashlet: "Hosts", URL: "hosts"})
	require.NoError(t, err)
	home, err := bob.OpenHome(ctx, DefaultHome)
	require.NoError(t, err)
	require.NoError(t, home.MarkSubscribable(ctx, "Outages"))
	paneID := identity.PaneID("bob", DefaultHome, "Outages")

	t.Run("no common role", func(t *testing.T) {
		eve := openDashboard(t, db, "eve", "finance")
		err := eve.Subscribe(ctx, paneID)
		assert.True(t, models.IsNotFound(err))
	})

	t.Run("not shared", func(t *testing.T) {
		alice := openDashboard(t, db, "alice", "ops")
		err := alice.Subscribe(ctx, identity.PaneID("bob", DefaultHome, "Private"))
		assert.True(t, models.IsNotFound(err))
	})

	t.Run("subscribed pane shows up in the default home", func(t *testing.T) {
		alice := openDashboard(t, db, "alice", "ops")
		require.NoError(t, alice.Subscribe(ctx, paneID))
		assert.True(t, models.IsConflict(alice.Subscribe(ctx, paneID)))

		home := defaultHome(t, alice)
		pane, err := home.GetPane("Outages")
		require.NoError(t, err)
		assert.True(t, pane.IsOverriding())
		assert.Equal(t, "bob", pane.Owner())
		assert.True(t, pane.HasDashlet("Hosts"))

		require.NoError(t, alice.SetOverrideDisabled(ctx, paneID, true))
		assert.Empty(t, home.GetPanes(true))

		catalog, err := alice.OpenHome(ctx, SubscribableDashboards)
		require.NoError(t, err)
		seq, err := catalog.GetSubscribableDashboards(ctx, repository.SubscribableQuery{})
		require.NoError(t, err)
		for p, err := range seq {
			require.NoError(t, err)
			assert.Equal(t, 1, p.Acceptance())
			assert.True(t, p.IsDisabled())
		}
	})

	t.Run("own pane", func(t *testing.T) {
		err := bob.Subscribe(ctx, paneID)
		assert.Equal(t, models.CodeValidation, models.CodeOf(err))
	})

	t.Run("subscriber without homes gets a default home", func(t *testing.T) {
		dan := openDashboard(t, db, "dan", "ops")
		require.False(t, dan.HasHome(DefaultHome))

		require.NoError(t, dan.Subscribe(ctx, paneID))
		require.True(t, dan.HasHome(DefaultHome))

		var row models.Home
		require.NoError(t, db.Where("username = ? AND name = ?", "dan", DefaultHome).First(&row).Error)

		// a fresh session finds the subscription through the stored home
		again := openDashboard(t, db, "dan", "ops")
		home, err := again.OpenHome(ctx, DefaultHome)
		require.NoError(t, err)
		pane, err := home.GetPane("Outages")
		require.NoError(t, err)
		assert.True(t, pane.IsOverriding())
	})

	t.Run("failed subscription creates no home", func(t *testing.T) {
		erin := openDashboard(t, db, "erin", "ops")
		fail := true
		failWrites(t, db, "create", "dashboard_home", &fail)

		assert.Error(t, erin.Subscribe(ctx, paneID))
		assert.False(t, erin.HasHome(DefaultHome))

		var n int64
		require.NoError(t, db.Model(&models.DashboardOverride{}).Where("username = ?", "erin").Count(&n).Error)
		assert.Zero(t, n)

		fail = false
		require.NoError(t, erin.Subscribe(ctx, paneID))
		assert.True(t, erin.HasHome(DefaultHome))
	})
}
