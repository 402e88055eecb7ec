package auth

import (
	"context"
	"testing"
	"time"

	"dashkeeper/internal/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRoleRepo struct {
	roles map[string][]string
	calls int
}

func (s *stubRoleRepo) RolesOf(_ context.Context, username string) ([]string, error) {
	s.calls++
	return s.roles[username], nil
}

func (s *stubRoleRepo) Assign(context.Context, string, ...string) error { return nil }

func TestUser_Roles(t *testing.T) {
	u := NewUser("alice", "ops", "viewer")

	assert.Equal(t, "alice", u.Username())
	assert.True(t, u.HasAssignedRole("ops"))
	assert.False(t, u.HasAssignedRole("admin"))
	assert.True(t, SharesRole(u, []string{"admin", "viewer"}))
	assert.False(t, SharesRole(u, []string{"admin"}))
	assert.False(t, SharesRole(u, nil))

	roles := u.Roles()
	roles[0] = "mutated"
	assert.True(t, u.HasAssignedRole("ops"))
}

func TestCachedRoleLoader(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := cache.NewClient(context.Background(), mr.Addr())
	require.NoError(t, err)
	defer client.Close()

	repo := &stubRoleRepo{roles: map[string][]string{"bob": {"ops"}}}
	loader := NewCachedRoleLoader(repo, client, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		roles, err := loader.RolesOf(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, []string{"ops"}, roles)
	}
	assert.Equal(t, 1, repo.calls)
	assert.True(t, mr.Exists(cache.RolesKey("bob")))

	loader.Forget(ctx, "bob")
	_, err = loader.RolesOf(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}

func TestCachedRoleLoader_WithoutRedis(t *testing.T) {
	repo := &stubRoleRepo{roles: map[string][]string{"bob": {"ops"}}}
	loader := NewCachedRoleLoader(repo, nil, time.Minute)

	u, err := LoadUser(context.Background(), loader, "bob")
	require.NoError(t, err)
	assert.True(t, u.HasAssignedRole("ops"))

	_, err = loader.RolesOf(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}

func TestParseToken(t *testing.T) {
	secret := "test-secret-key-12345678901234567890123456789012"

	valid, err := IssueToken(secret, "alice", time.Hour)
	require.NoError(t, err)
	expired, err := IssueToken(secret, "alice", -time.Hour)
	require.NoError(t, err)
	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		secret  string
		want    string
		wantErr error
	}{
		{"valid", valid, secret, "alice", nil},
		{"expired", expired, secret, "", ErrInvalidToken},
		{"wrong secret", valid, "another-secret-key-1234567890123456789", "", ErrInvalidToken},
		{"garbage", "not-a-jwt", secret, "", ErrInvalidToken},
		{"missing subject", noSub, secret, "", ErrMissingSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseToken(tt.secret, tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
