package dashboard

import (
	"context"
	"testing"

	"dashkeeper/internal/auth"
	"dashkeeper/internal/database"
	"dashkeeper/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// statementCounter records the statements gorm executes, per table for
// writes and in total for everything.
type statementCounter struct {
	inserts map[string]int
	updates map[string]int
	total   int
}

func (c *statementCounter) reset() {
	c.inserts = make(map[string]int)
	c.updates = make(map[string]int)
	c.total = 0
}

func countStatements(t *testing.T, db *gorm.DB) *statementCounter {
	t.Helper()
	c := &statementCounter{}
	c.reset()

	cb := db.Callback()
	require.NoError(t, cb.Create().After("gorm:create").Register("test:count_create", func(tx *gorm.DB) {
		c.inserts[tx.Statement.Table]++
		c.total++
	}))
	require.NoError(t, cb.Update().After("gorm:update").Register("test:count_update", func(tx *gorm.DB) {
		c.updates[tx.Statement.Table]++
		c.total++
	}))
	count := func(*gorm.DB) { c.total++ }
	require.NoError(t, cb.Query().After("gorm:query").Register("test:count_query", count))
	require.NoError(t, cb.Delete().After("gorm:delete").Register("test:count_delete", count))
	require.NoError(t, cb.Row().After("gorm:row").Register("test:count_row", count))
	require.NoError(t, cb.Raw().After("gorm:raw").Register("test:count_raw", count))
	return c
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// openDashboard loads the dashboard of username on db, assigning roles first.
func openDashboard(t *testing.T, db *gorm.DB, username string, roles ...string) *Dashboard {
	t.Helper()
	ctx := context.Background()
	store := repository.NewStore(db)
	if len(roles) > 0 {
		require.NoError(t, store.Roles.Assign(ctx, username, roles...))
	}
	d := New(NewSession(store, auth.NewUser(username, roles...), nil))
	require.NoError(t, d.Load(ctx))
	return d
}

// defaultHome stores and opens the default home of d.
func defaultHome(t *testing.T, d *Dashboard) *Home {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, d.ManageHome(ctx, NewHome(DefaultHome)))
	home, err := d.OpenHome(ctx, DefaultHome)
	require.NoError(t, err)
	return home
}
