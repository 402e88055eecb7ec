// Package auth resolves the acting user and the roles of any user.
package auth

import (
	"context"
	"slices"
	"time"

	"dashkeeper/internal/cache"
	"dashkeeper/internal/observability"
	"dashkeeper/internal/repository"

	"github.com/redis/go-redis/v9"
)

// Provider describes the authenticated user of a request.
type Provider interface {
	Username() string
	Roles() []string
	HasAssignedRole(role string) bool
}

// User is the default Provider.
type User struct {
	name  string
	roles []string
}

// NewUser returns a user holding roles.
func NewUser(username string, roles ...string) *User {
	return &User{name: username, roles: slices.Clone(roles)}
}

func (u *User) Username() string { return u.name }

func (u *User) Roles() []string { return slices.Clone(u.roles) }

func (u *User) HasAssignedRole(role string) bool {
	return slices.Contains(u.roles, role)
}

// SharesRole reports whether u holds at least one of roles.
func SharesRole(u Provider, roles []string) bool {
	for _, role := range roles {
		if u.HasAssignedRole(role) {
			return true
		}
	}
	return false
}

// RoleLoader resolves the roles of arbitrary users.
type RoleLoader interface {
	RolesOf(ctx context.Context, username string) ([]string, error)
}

// CachedRoleLoader reads user_role through a Redis cache-aside.
type CachedRoleLoader struct {
	repo  repository.RoleRepository
	redis *redis.Client
	ttl   time.Duration
}

// NewCachedRoleLoader returns a loader over repo. A nil client disables caching.
func NewCachedRoleLoader(repo repository.RoleRepository, client *redis.Client, ttl time.Duration) *CachedRoleLoader {
	return &CachedRoleLoader{repo: repo, redis: client, ttl: ttl}
}

func (l *CachedRoleLoader) RolesOf(ctx context.Context, username string) ([]string, error) {
	if l.redis == nil || l.ttl <= 0 {
		return l.repo.RolesOf(ctx, username)
	}

	roles, hit, err := cache.Aside(ctx, l.redis, cache.RolesKey(username), l.ttl, func(ctx context.Context) ([]string, error) {
		return l.repo.RolesOf(ctx, username)
	})
	if err != nil {
		return nil, err
	}
	if hit {
		observability.RoleCacheLookups.WithLabelValues("hit").Inc()
	} else {
		observability.RoleCacheLookups.WithLabelValues("miss").Inc()
	}
	return roles, nil
}

// Forget drops the cached roles of username, e.g. after an assignment changed.
func (l *CachedRoleLoader) Forget(ctx context.Context, username string) {
	cache.Invalidate(ctx, l.redis, cache.RolesKey(username))
}

// LoadUser builds the Provider for username with its current roles.
func LoadUser(ctx context.Context, loader RoleLoader, username string) (*User, error) {
	roles, err := loader.RolesOf(ctx, username)
	if err != nil {
		return nil, err
	}
	return NewUser(username, roles...), nil
}
