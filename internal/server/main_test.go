package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dashkeeper/internal/auth"
	"dashkeeper/internal/config"
	"dashkeeper/internal/database"
	"dashkeeper/internal/modules"
	"dashkeeper/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

type testEnv struct {
	app   *fiber.App
	db    *gorm.DB
	store *repository.Store
}

func testRegistry() modules.Static {
	return modules.Static{
		{
			Name: "monitoring",
			Dashboards: []modules.Pane{{
				Name: "Overview",
				Dashlets: []modules.Dashlet{
					{Name: "Service Problems", URL: "monitoring/list/services", Priority: 1},
					{Name: "Host Problems", URL: "monitoring/list/hosts", Priority: 2},
				},
			}},
			Dashlets: []modules.Dashlet{
				{Name: "Tactical Overview", URL: "monitoring/tactical"},
			},
		},
	}
}

func setupServer(t *testing.T, flags string) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))

	cfg := &config.Config{
		Env:          "test",
		JWTSecret:    testSecret,
		FeatureFlags: flags,
		AdminRole:    "admins",
	}
	srv, err := NewServerWithDeps(cfg, db, nil, testRegistry())
	require.NoError(t, err)

	return &testEnv{app: srv.NewApp(), db: db, store: repository.NewStore(db)}
}

func (e *testEnv) assignRoles(t *testing.T, username string, roles ...string) {
	t.Helper()
	require.NoError(t, e.store.Roles.Assign(context.Background(), username, roles...))
}

func token(t *testing.T, username string) string {
	t.Helper()
	tok, err := auth.IssueToken(testSecret, username, time.Hour)
	require.NoError(t, err)
	return tok
}

// do sends a request as username (anonymous when empty) and returns the response.
func (e *testEnv) do(t *testing.T, method, path, username string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if username != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, username))
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}
