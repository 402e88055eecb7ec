// Package repository provides data access layer implementations for the dashboard tables.
package repository

import (
	"context"
	"errors"
	"strings"

	"dashkeeper/internal/models"
	"dashkeeper/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// Store bundles the repositories bound to one *gorm.DB, which may be a transaction.
type Store struct {
	db *gorm.DB

	Homes          HomeRepository
	Panes          PaneRepository
	Dashlets       DashletRepository
	ModuleDashlets ModuleDashletRepository
	Orders         OrderRepository
	Subscriptions  SubscriptionRepository
	Roles          RoleRepository
}

// NewStore creates a Store whose repositories all share db.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:             db,
		Homes:          NewHomeRepository(db),
		Panes:          NewPaneRepository(db),
		Dashlets:       NewDashletRepository(db),
		ModuleDashlets: NewModuleDashletRepository(db),
		Orders:         NewOrderRepository(db),
		Subscriptions:  NewSubscriptionRepository(db),
		Roles:          NewRoleRepository(db),
	}
}

// DB returns the underlying connection.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn with a Store bound to a single database transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) Transaction(ctx context.Context, name string, fn func(tx *Store) error) error {
	span, ctx := observability.NewSpan(ctx, "store.transaction", attribute.String("tx.name", name))
	defer span.End()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
	if err != nil {
		span.SetError(err)
		observability.TransactionsTotal.WithLabelValues("rollback").Inc()
		return err
	}
	observability.TransactionsTotal.WithLabelValues("commit").Inc()
	return nil
}

// translateError maps driver errors onto the AppError taxonomy.
// AppErrors pass through unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if isUniqueViolation(err) {
		return &models.AppError{Code: models.CodeConflict, Message: "Record already exists", Err: err}
	}
	return models.NewInternalError(err)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func applyPaging(db *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		db = db.Limit(limit)
	}
	if offset > 0 {
		db = db.Offset(offset)
	}
	return db
}

func likePattern(search string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(search) + "%"
}
