package dashboard

import (
	"context"
	"log/slog"

	"dashkeeper/internal/auth"
	"dashkeeper/internal/models"
	"dashkeeper/internal/observability"
	"dashkeeper/internal/repository"
)

// Session is the request-scoped context threaded through every manager: the
// acting user, the role lookup for other users and the storage handle. While
// a transaction is open the storage handle points at the transaction.
type Session struct {
	store         *repository.Store
	user          auth.Provider
	roles         auth.RoleLoader
	logger        *slog.Logger
	requestedHome string
	inTx          bool
	undo          []func()
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithRequestedHome names the home the caller asked for, used by Load when
// no explicit home is given.
func WithRequestedHome(name string) SessionOption {
	return func(s *Session) { s.requestedHome = name }
}

// WithLogger overrides the default observability.Logger.
func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) { s.logger = logger }
}

// NewSession binds user to store. roles resolves other users' roles for
// share visibility; when nil, the store's role table is read directly.
func NewSession(store *repository.Store, user auth.Provider, roles auth.RoleLoader, opts ...SessionOption) *Session {
	if roles == nil {
		roles = store.Roles
	}
	s := &Session{
		store:  store,
		user:   user,
		roles:  roles,
		logger: observability.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Username() string {
	return s.user.Username()
}

func (s *Session) User() auth.Provider {
	return s.user
}

// Store returns the current storage handle, which is the open transaction
// inside Transaction.
func (s *Session) Store() *repository.Store {
	return s.store
}

// Transaction runs fn atomically. Nested calls join the outer transaction.
// A failure is logged once here, the transaction is rolled back together
// with the in-memory changes registered through onRollback, and the error
// is returned unchanged.
func (s *Session) Transaction(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	if s.inTx {
		return fn(ctx)
	}

	outer := s.store
	err := outer.Transaction(ctx, name, func(tx *repository.Store) error {
		s.store, s.inTx = tx, true
		defer func() { s.store, s.inTx = outer, false }()
		return fn(ctx)
	})
	undo := s.undo
	s.undo = nil
	if err != nil {
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
		s.logger.ErrorContext(ctx, "dashboard transaction rolled back",
			slog.String("operation", name),
			slog.String("username", s.Username()),
			slog.String("code", models.CodeOf(err)),
			slog.String("error", err.Error()),
		)
		return err
	}
	return nil
}

// onRollback registers fn to restore in-memory state when the open
// transaction rolls back. Outside a transaction a write that failed has
// changed nothing, so fn is dropped.
func (s *Session) onRollback(fn func()) {
	if s.inTx {
		s.undo = append(s.undo, fn)
	}
}
