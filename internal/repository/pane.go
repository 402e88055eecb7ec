package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"dashkeeper/internal/models"
	"dashkeeper/internal/observability"

	"gorm.io/gorm"
)

// PaneRepository defines the interface for dashboard (pane) data operations
type PaneRepository interface {
	ListByHome(ctx context.Context, homeID uint, username string) ([]models.PaneWithPriority, error)
	Get(ctx context.Context, id []byte) (*models.Pane, error)
	Exists(ctx context.Context, id []byte) (bool, error)
	Create(ctx context.Context, pane *models.Pane) error
	// Rekey rewrites the pane stored under oldID with pane's id, home and label.
	// Rows keyed by the old id in dependent tables follow the new id. A missing
	// row is NotFound.
	Rekey(ctx context.Context, oldID []byte, pane *models.Pane) error
	Delete(ctx context.Context, id []byte, homeID uint) error
}

type paneRepository struct {
	db     *gorm.DB
	logger *observability.RepoLogger
}

// NewPaneRepository creates a new pane repository
func NewPaneRepository(db *gorm.DB) PaneRepository {
	return &paneRepository{db: db, logger: observability.NewRepoLogger("dashboard")}
}

func (r *paneRepository) ListByHome(ctx context.Context, homeID uint, username string) ([]models.PaneWithPriority, error) {
	defer observability.TrackQuery("list", "dashboard")()

	var panes []models.PaneWithPriority
	if err := r.db.WithContext(ctx).
		Table("dashboard AS d").
		Select("d.id, d.home_id, d.name, d.label, d.username, COALESCE(o.priority, 0) AS priority").
		Joins("LEFT JOIN dashboard_order o ON o.dashboard_id = d.id AND o.username = ?", username).
		Where("d.home_id = ? AND d.username = ?", homeID, username).
		Order("d.name ASC").
		Scan(&panes).Error; err != nil {
		r.logger.LogError(ctx, err, "list")
		return nil, models.NewInternalError(err)
	}
	return panes, nil
}

func (r *paneRepository) Get(ctx context.Context, id []byte) (*models.Pane, error) {
	var pane models.Pane
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&pane).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Dashboard", fmt.Sprintf("%x", id))
		}
		return nil, models.NewInternalError(err)
	}
	return &pane, nil
}

func (r *paneRepository) Exists(ctx context.Context, id []byte) (bool, error) {
	var one int
	res := r.db.WithContext(ctx).Table("dashboard").Select("1").Where("id = ?", id).Limit(1).Scan(&one)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *paneRepository) Create(ctx context.Context, pane *models.Pane) error {
	if err := r.db.WithContext(ctx).Create(pane).Error; err != nil {
		r.logger.LogError(ctx, err, "create")
		return translateError(err)
	}
	r.logger.LogCreate(ctx, map[string]any{"name": pane.Name, "home_id": pane.HomeID})
	return nil
}

func (r *paneRepository) Rekey(ctx context.Context, oldID []byte, pane *models.Pane) error {
	db := r.db.WithContext(ctx)
	res := db.Model(&models.Pane{}).
		Where("id = ?", oldID).
		Updates(map[string]any{
			"id":      pane.ID,
			"home_id": pane.HomeID,
			"label":   pane.Label,
		})
	if res.Error != nil {
		r.logger.LogError(ctx, res.Error, "update")
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Dashboard", pane.Name)
	}

	if !bytes.Equal(oldID, pane.ID) {
		// Not every driver cascades key updates.
		for _, model := range []any{&models.Dashlet{}, &models.DashboardOrder{}, &models.DashboardSubscribable{}, &models.DashboardOverride{}} {
			if err := db.Model(model).
				Where("dashboard_id = ?", oldID).
				Update("dashboard_id", pane.ID).Error; err != nil {
				r.logger.LogError(ctx, err, "update")
				return translateError(err)
			}
		}
	}

	r.logger.LogUpdate(ctx, map[string]any{"name": pane.Name, "home_id": pane.HomeID})
	return nil
}

func (r *paneRepository) Delete(ctx context.Context, id []byte, homeID uint) error {
	db := r.db.WithContext(ctx)
	res := db.Where("id = ? AND home_id = ?", id, homeID).Delete(&models.Pane{})
	if res.Error != nil {
		r.logger.LogError(ctx, res.Error, "delete")
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil
	}

	for _, model := range []any{&models.DashboardOrder{}, &models.DashboardSubscribable{}, &models.DashboardOverride{}} {
		if err := db.Where("dashboard_id = ?", id).Delete(model).Error; err != nil {
			r.logger.LogError(ctx, err, "delete")
			return models.NewInternalError(err)
		}
	}
	r.logger.LogDelete(ctx, map[string]any{"home_id": homeID})
	return nil
}
