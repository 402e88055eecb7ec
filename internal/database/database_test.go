package database

import (
	"context"
	"testing"
	"testing/fstest"

	"dashkeeper/internal/config"
	"dashkeeper/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestConfigurePool(t *testing.T) {
	db := openSQLite(t)

	cfg := &config.Config{
		DBDriver:                 "postgres",
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)

	cfg.DBDriver = "sqlite"
	require.NoError(t, configurePool(db, cfg))
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestDialector(t *testing.T) {
	d, err := Dialector(&config.Config{DBDriver: "sqlite", DBSQLitePath: "x.db"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	d, err = Dialector(&config.Config{DBDriver: "postgres"})
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	_, err = Dialector(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestPersistentModels_AutoMigrate(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, AutoMigrate(db))

	for _, table := range []string{"dashboard_home", "dashboard", "dashlet", "module_dashlet",
		"dashboard_order", "dashboard_subscribable", "dashboard_override", "user_role"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	found := false
	for _, model := range PersistentModels() {
		if _, ok := model.(*models.ModuleDashlet); ok {
			found = true
		}
	}
	assert.True(t, found, "PersistentModels should include ModuleDashlet")
}

func TestEmbeddedMigrationsRegistered(t *testing.T) {
	all := GetMigrations()
	require.NotEmpty(t, all)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Version, all[i].Version)
	}
	first := all[0]
	assert.Equal(t, "000001_dashboards", first.String())
	assert.Contains(t, first.UpScript, "module_dashlet")
	assert.Len(t, first.checksum(), 64)
}

func TestLoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/000002_second.up.sql":   {Data: []byte("CREATE TABLE b (id INTEGER)")},
		"migrations/000002_second.down.sql": {Data: []byte("DROP TABLE b")},
		"migrations/000001_first.up.sql":    {Data: []byte("CREATE TABLE a (id INTEGER)")},
		"migrations/000001_first.down.sql":  {Data: []byte("DROP TABLE a")},
		"migrations/bogus.up.sql":           {Data: []byte("SELECT 1")},
	}

	loaded, err := LoadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, 1, loaded[0].Version)
	assert.Equal(t, "second", loaded[1].Name)

	_, err = LoadMigrations(fstest.MapFS{
		"migrations/000001_lonely.up.sql": {Data: []byte("SELECT 1")},
	})
	assert.Error(t, err)
}

func TestMigrator_UpAppliesOnce(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	registered := []Migration{
		{Version: 1, Name: "first", UpScript: "CREATE TABLE a (id INTEGER)", DownScript: "DROP TABLE a"},
		{Version: 2, Name: "second", UpScript: "CREATE TABLE b (id INTEGER)", DownScript: "DROP TABLE b"},
	}
	migrator := NewMigrator(db, registered)

	ran, err := migrator.Up(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, ran)

	ran, err = migrator.Up(ctx)
	require.NoError(t, err)
	assert.Zero(t, ran)

	applied, err := migrator.Applied(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, applied)
	assert.True(t, db.Migrator().HasTable("b"))

	_, err = NewMigrator(db, registered[:1]).Up(ctx)
	assert.ErrorContains(t, err, "000002 unknown")
}

func TestMigrator_DetectsEditedScript(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	first := Migration{Version: 1, Name: "first", UpScript: "CREATE TABLE a (id INTEGER)", DownScript: "DROP TABLE a"}

	_, err := NewMigrator(db, []Migration{first}).Up(ctx)
	require.NoError(t, err)

	first.UpScript = "CREATE TABLE a (id INTEGER, name TEXT)"
	_, err = NewMigrator(db, []Migration{first}).Up(ctx)
	assert.ErrorContains(t, err, "000001_first modified after apply")
}

func TestMigrator_Down(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	registered := []Migration{
		{Version: 1, Name: "first", UpScript: "CREATE TABLE a (id INTEGER)", DownScript: "DROP TABLE a"},
	}
	migrator := NewMigrator(db, registered)

	assert.ErrorContains(t, migrator.Down(ctx, 1), "has not been applied")
	assert.ErrorContains(t, migrator.Down(ctx, 7), "not found")

	_, err := migrator.Up(ctx)
	require.NoError(t, err)
	require.NoError(t, migrator.Down(ctx, 1))
	assert.False(t, db.Migrator().HasTable("a"))

	pending, err := migrator.Pending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestMigrator_FreshDatabase(t *testing.T) {
	applied, err := NewMigrator(openSQLite(t), nil).Applied(context.Background())
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		wantSQL  bool
		wantAuto bool
		wantErr  bool
	}{
		{"postgres hybrid dev", config.Config{DBDriver: "postgres", Env: "development"}, true, true, false},
		{"postgres hybrid prod", config.Config{DBDriver: "postgres", Env: "production", DBSchemaMode: "hybrid"}, true, false, false},
		{"postgres sql", config.Config{DBDriver: "postgres", DBSchemaMode: "sql"}, true, false, false},
		{"postgres auto prod", config.Config{DBDriver: "postgres", Env: "staging", DBSchemaMode: "auto"}, false, false, true},
		{"sqlite hybrid", config.Config{DBDriver: "sqlite", DBSchemaMode: "hybrid"}, false, true, false},
		{"sqlite sql", config.Config{DBDriver: "sqlite", DBSchemaMode: "sql"}, false, false, true},
		{"unknown", config.Config{DBDriver: "postgres", DBSchemaMode: "magic"}, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runSQL, runAuto, err := schemaPolicy(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, runSQL)
			assert.Equal(t, tt.wantAuto, runAuto)
		})
	}
}

func TestApplySchema_SQLite(t *testing.T) {
	db := openSQLite(t)
	cfg := &config.Config{DBDriver: "sqlite", DBSchemaMode: "hybrid", Env: "test"}

	require.NoError(t, ApplySchema(context.Background(), db, cfg))
	assert.True(t, db.Migrator().HasTable("dashboard_override"))

	status, err := GetSchemaStatus(context.Background(), db, cfg)
	require.NoError(t, err)
	assert.False(t, status.WillRunSQL)
	assert.True(t, status.WillRunAutoMigrate)
}
