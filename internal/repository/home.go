package repository

import (
	"context"
	"errors"

	"dashkeeper/internal/models"
	"dashkeeper/internal/observability"

	"gorm.io/gorm"
)

// HomeRepository defines the interface for dashboard_home data operations
type HomeRepository interface {
	ListByUser(ctx context.Context, username string) ([]models.Home, error)
	GetByName(ctx context.Context, username, name string) (*models.Home, error)
	Create(ctx context.Context, home *models.Home) error
	UpdateLabel(ctx context.Context, id uint, label string) error
	Delete(ctx context.Context, id uint) error
}

type homeRepository struct {
	db     *gorm.DB
	logger *observability.RepoLogger
}

// NewHomeRepository creates a new home repository
func NewHomeRepository(db *gorm.DB) HomeRepository {
	return &homeRepository{db: db, logger: observability.NewRepoLogger("dashboard_home")}
}

func (r *homeRepository) ListByUser(ctx context.Context, username string) ([]models.Home, error) {
	defer observability.TrackQuery("list", "dashboard_home")()

	var homes []models.Home
	if err := r.db.WithContext(ctx).
		Where("username = ?", username).
		Order("id ASC").
		Find(&homes).Error; err != nil {
		r.logger.LogError(ctx, err, "list")
		return nil, models.NewInternalError(err)
	}
	return homes, nil
}

func (r *homeRepository) GetByName(ctx context.Context, username, name string) (*models.Home, error) {
	var home models.Home
	if err := r.db.WithContext(ctx).
		Where("username = ? AND name = ?", username, name).
		First(&home).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Home", name)
		}
		return nil, models.NewInternalError(err)
	}
	return &home, nil
}

func (r *homeRepository) Create(ctx context.Context, home *models.Home) error {
	if home.Type == "" {
		home.Type = models.HomeTypePrivate
	}
	if err := r.db.WithContext(ctx).Create(home).Error; err != nil {
		r.logger.LogError(ctx, err, "create")
		return translateError(err)
	}
	r.logger.LogCreate(ctx, map[string]any{"id": home.ID, "name": home.Name})
	return nil
}

func (r *homeRepository) UpdateLabel(ctx context.Context, id uint, label string) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Home{}).
		Where("id = ?", id).
		Update("label", label).Error; err != nil {
		r.logger.LogError(ctx, err, "update")
		return models.NewInternalError(err)
	}
	r.logger.LogUpdate(ctx, map[string]any{"id": id, "label": label})
	return nil
}

func (r *homeRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Home{}).Error; err != nil {
		r.logger.LogError(ctx, err, "delete")
		return models.NewInternalError(err)
	}
	r.logger.LogDelete(ctx, map[string]any{"id": id})
	return nil
}
