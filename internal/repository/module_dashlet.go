package repository

import (
	"context"
	"strings"

	"dashkeeper/internal/models"
	"dashkeeper/internal/observability"

	"gorm.io/gorm"
)

// ModuleDashletQuery filters the module dashlet catalog.
type ModuleDashletQuery struct {
	Search string // substring of the dashlet name or label
	Module string
	Sort   string // name, pane, module or priority
	Limit  int
	Offset int
}

var moduleDashletSorts = map[string]string{
	"":         "module ASC, priority ASC, name ASC",
	"name":     "name ASC",
	"pane":     "pane ASC, priority ASC, name ASC",
	"module":   "module ASC, name ASC",
	"priority": "priority ASC, name ASC",
}

// ModuleDashletRepository defines the interface for module_dashlet catalog operations
type ModuleDashletRepository interface {
	Exists(ctx context.Context, id []byte) (bool, error)
	Create(ctx context.Context, dashlet *models.ModuleDashlet) error
	// UpdateDisplay writes the mutable display fields, never the id or name.
	UpdateDisplay(ctx context.Context, dashlet *models.ModuleDashlet) error
	List(ctx context.Context, q ModuleDashletQuery) ([]models.ModuleDashlet, error)
	Count(ctx context.Context) (int64, error)
	// PruneExcept deletes every catalog row whose id is not in keep.
	PruneExcept(ctx context.Context, keep [][]byte) (int64, error)
}

type moduleDashletRepository struct {
	db     *gorm.DB
	logger *observability.RepoLogger
}

// NewModuleDashletRepository creates a new module dashlet repository
func NewModuleDashletRepository(db *gorm.DB) ModuleDashletRepository {
	return &moduleDashletRepository{db: db, logger: observability.NewRepoLogger("module_dashlet")}
}

func (r *moduleDashletRepository) Exists(ctx context.Context, id []byte) (bool, error) {
	var one int
	res := r.db.WithContext(ctx).Table("module_dashlet").Select("1").Where("id = ?", id).Limit(1).Scan(&one)
	if res.Error != nil {
		r.logger.LogError(ctx, res.Error, "read")
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *moduleDashletRepository) Create(ctx context.Context, dashlet *models.ModuleDashlet) error {
	if err := r.db.WithContext(ctx).Create(dashlet).Error; err != nil {
		r.logger.LogError(ctx, err, "create")
		return translateError(err)
	}
	r.logger.LogCreate(ctx, map[string]any{"module": dashlet.Module, "name": dashlet.Name})
	return nil
}

func (r *moduleDashletRepository) UpdateDisplay(ctx context.Context, dashlet *models.ModuleDashlet) error {
	if err := r.db.WithContext(ctx).
		Model(&models.ModuleDashlet{}).
		Where("id = ?", dashlet.ID).
		Updates(map[string]any{
			"label":       dashlet.Label,
			"url":         dashlet.URL,
			"description": dashlet.Description,
			"priority":    dashlet.Priority,
		}).Error; err != nil {
		r.logger.LogError(ctx, err, "update")
		return models.NewInternalError(err)
	}
	r.logger.LogUpdate(ctx, map[string]any{"module": dashlet.Module, "name": dashlet.Name})
	return nil
}

func (r *moduleDashletRepository) List(ctx context.Context, q ModuleDashletQuery) ([]models.ModuleDashlet, error) {
	order, ok := moduleDashletSorts[q.Sort]
	if !ok {
		return nil, models.NewValidationError("unsupported sort column " + q.Sort)
	}

	db := r.db.WithContext(ctx).Model(&models.ModuleDashlet{})
	if q.Module != "" {
		db = db.Where("module = ?", q.Module)
	}
	if q.Search != "" {
		pattern := likePattern(strings.ToLower(q.Search))
		db = db.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(label) LIKE ? ESCAPE '\')`, pattern, pattern)
	}

	var rows []models.ModuleDashlet
	if err := applyPaging(db.Order(order), q.Limit, q.Offset).Find(&rows).Error; err != nil {
		r.logger.LogError(ctx, err, "list")
		return nil, models.NewInternalError(err)
	}
	return rows, nil
}

func (r *moduleDashletRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.ModuleDashlet{}).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (r *moduleDashletRepository) PruneExcept(ctx context.Context, keep [][]byte) (int64, error) {
	db := r.db.WithContext(ctx)
	if len(keep) > 0 {
		db = db.Where("id NOT IN ?", keep)
	} else {
		db = db.Where("1 = 1")
	}
	res := db.Delete(&models.ModuleDashlet{})
	if res.Error != nil {
		r.logger.LogError(ctx, res.Error, "delete")
		return 0, models.NewInternalError(res.Error)
	}
	r.logger.LogDelete(ctx, map[string]any{"pruned": res.RowsAffected})
	return res.RowsAffected, nil
}
