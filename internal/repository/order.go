package repository

import (
	"context"

	"dashkeeper/internal/models"
	"dashkeeper/internal/observability"

	"gorm.io/gorm"
)

// OrderRepository persists per-user pane positions in dashboard_order.
type OrderRepository interface {
	Insert(ctx context.Context, order *models.DashboardOrder) error
	Update(ctx context.Context, order *models.DashboardOrder) error
}

type orderRepository struct {
	db     *gorm.DB
	logger *observability.RepoLogger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db, logger: observability.NewRepoLogger("dashboard_order")}
}

func (r *orderRepository) Insert(ctx context.Context, order *models.DashboardOrder) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		r.logger.LogError(ctx, err, "create")
		return translateError(err)
	}
	return nil
}

func (r *orderRepository) Update(ctx context.Context, order *models.DashboardOrder) error {
	if err := r.db.WithContext(ctx).
		Model(&models.DashboardOrder{}).
		Where("dashboard_id = ? AND username = ?", order.DashboardID, order.Username).
		Update("priority", order.Priority).Error; err != nil {
		r.logger.LogError(ctx, err, "update")
		return models.NewInternalError(err)
	}
	return nil
}
