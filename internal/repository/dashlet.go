package repository

import (
	"context"

	"dashkeeper/internal/models"
	"dashkeeper/internal/observability"

	"gorm.io/gorm"
)

// DashletRepository defines the interface for dashlet data operations
type DashletRepository interface {
	ListByPane(ctx context.Context, paneID []byte) ([]models.Dashlet, error)
	Create(ctx context.Context, dashlet *models.Dashlet) error
	// Rekey rewrites the dashlet stored under oldID, moving it to dashlet's id and pane.
	// A missing row is NotFound.
	Rekey(ctx context.Context, oldID []byte, dashlet *models.Dashlet) error
	Delete(ctx context.Context, id, paneID []byte) error
	DeleteByPane(ctx context.Context, paneID []byte) error
}

type dashletRepository struct {
	db     *gorm.DB
	logger *observability.RepoLogger
}

// NewDashletRepository creates a new dashlet repository
func NewDashletRepository(db *gorm.DB) DashletRepository {
	return &dashletRepository{db: db, logger: observability.NewRepoLogger("dashlet")}
}

func (r *dashletRepository) ListByPane(ctx context.Context, paneID []byte) ([]models.Dashlet, error) {
	var dashlets []models.Dashlet
	if err := r.db.WithContext(ctx).
		Where("dashboard_id = ?", paneID).
		Order("priority ASC, name ASC").
		Find(&dashlets).Error; err != nil {
		r.logger.LogError(ctx, err, "list")
		return nil, models.NewInternalError(err)
	}
	return dashlets, nil
}

func (r *dashletRepository) Create(ctx context.Context, dashlet *models.Dashlet) error {
	if err := r.db.WithContext(ctx).Create(dashlet).Error; err != nil {
		r.logger.LogError(ctx, err, "create")
		return translateError(err)
	}
	r.logger.LogCreate(ctx, map[string]any{"name": dashlet.Name})
	return nil
}

func (r *dashletRepository) Rekey(ctx context.Context, oldID []byte, dashlet *models.Dashlet) error {
	res := r.db.WithContext(ctx).
		Model(&models.Dashlet{}).
		Where("id = ?", oldID).
		Updates(map[string]any{
			"id":           dashlet.ID,
			"dashboard_id": dashlet.DashboardID,
			"label":        dashlet.Label,
			"url":          dashlet.URL,
			"description":  dashlet.Description,
			"priority":     dashlet.Priority,
		})
	if res.Error != nil {
		r.logger.LogError(ctx, res.Error, "update")
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Dashlet", dashlet.Name)
	}
	r.logger.LogUpdate(ctx, map[string]any{"name": dashlet.Name})
	return nil
}

func (r *dashletRepository) Delete(ctx context.Context, id, paneID []byte) error {
	if err := r.db.WithContext(ctx).
		Where("id = ? AND dashboard_id = ?", id, paneID).
		Delete(&models.Dashlet{}).Error; err != nil {
		r.logger.LogError(ctx, err, "delete")
		return models.NewInternalError(err)
	}
	r.logger.LogDelete(ctx, nil)
	return nil
}

func (r *dashletRepository) DeleteByPane(ctx context.Context, paneID []byte) error {
	if err := r.db.WithContext(ctx).
		Where("dashboard_id = ?", paneID).
		Delete(&models.Dashlet{}).Error; err != nil {
		r.logger.LogError(ctx, err, "delete")
		return models.NewInternalError(err)
	}
	return nil
}
