package repository

import (
	"context"

	"dashkeeper/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RoleRepository reads and assigns user roles.
type RoleRepository interface {
	RolesOf(ctx context.Context, username string) ([]string, error)
	Assign(ctx context.Context, username string, roles ...string) error
}

type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) RolesOf(ctx context.Context, username string) ([]string, error) {
	var roles []string
	if err := r.db.WithContext(ctx).
		Model(&models.UserRole{}).
		Where("username = ?", username).
		Order("role ASC").
		Pluck("role", &roles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return roles, nil
}

func (r *roleRepository) Assign(ctx context.Context, username string, roles ...string) error {
	if len(roles) == 0 {
		return nil
	}
	rows := make([]models.UserRole, 0, len(roles))
	for _, role := range roles {
		rows = append(rows, models.UserRole{Username: username, Role: role})
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error; err != nil {
		return translateError(err)
	}
	return nil
}
