package repository

import (
	"context"
	"errors"
	"strings"

	"dashkeeper/internal/models"
	"dashkeeper/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubscribableQuery filters shared panes. Limit and Offset page the stored
// rows; callers that filter rows afterwards must page themselves.
type SubscribableQuery struct {
	Search string // substring of the pane name or label
	Sort   string // name or owner
	Limit  int
	Offset int
}

var subscribableSorts = map[string]string{
	"":      "d.name ASC, d.username ASC",
	"name":  "d.name ASC, d.username ASC",
	"owner": "d.username ASC, d.name ASC",
}

// SubscribedPane is an accepted subscription joined with the shared pane it points to.
type SubscribedPane struct {
	DashboardID   []byte
	Name          string
	Label         string
	Owner         string
	OverrideLabel *string
	Disabled      bool
	Priority      int
}

// SubscriptionRepository covers dashboard_subscribable and dashboard_override.
type SubscriptionRepository interface {
	// MarkSubscribable shares a pane. Marking an already shared pane is a no-op.
	MarkSubscribable(ctx context.Context, paneID []byte) error
	IsSubscribable(ctx context.Context, paneID []byte) (bool, error)
	// ListSubscribable returns every shared pane with its acceptance count and
	// whether username has disabled its own override of it.
	ListSubscribable(ctx context.Context, username string, q SubscribableQuery) ([]models.SubscribableDashboard, error)
	CreateOverride(ctx context.Context, override *models.DashboardOverride) error
	SetOverrideDisabled(ctx context.Context, paneID []byte, username string, disabled bool) error
	ListSubscribed(ctx context.Context, username string) ([]SubscribedPane, error)
}

type subscriptionRepository struct {
	db     *gorm.DB
	logger *observability.RepoLogger
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db, logger: observability.NewRepoLogger("dashboard_override")}
}

func (r *subscriptionRepository) MarkSubscribable(ctx context.Context, paneID []byte) error {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.DashboardSubscribable{DashboardID: paneID}).Error; err != nil {
		r.logger.LogError(ctx, err, "create")
		return translateError(err)
	}
	return nil
}

func (r *subscriptionRepository) IsSubscribable(ctx context.Context, paneID []byte) (bool, error) {
	var one int
	res := r.db.WithContext(ctx).Table("dashboard_subscribable").Select("1").Where("dashboard_id = ?", paneID).Limit(1).Scan(&one)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *subscriptionRepository) ListSubscribable(ctx context.Context, username string, q SubscribableQuery) ([]models.SubscribableDashboard, error) {
	defer observability.TrackQuery("list", "dashboard_subscribable")()

	order, ok := subscribableSorts[q.Sort]
	if !ok {
		return nil, models.NewValidationError("unsupported sort column " + q.Sort)
	}

	db := r.db.WithContext(ctx).
		Table("dashboard_subscribable AS s").
		Select(`d.id AS dashboard_id, d.name AS name, d.label AS label, d.username AS username,
			COUNT(o.dashboard_id) AS acceptance,
			MAX(CASE WHEN o.username = ? AND o.disabled THEN 1 ELSE 0 END) AS disabled`, username).
		Joins("JOIN dashboard d ON d.id = s.dashboard_id").
		Joins("LEFT JOIN dashboard_override o ON o.dashboard_id = d.id").
		Group("d.id, d.name, d.label, d.username")
	if q.Search != "" {
		pattern := likePattern(strings.ToLower(q.Search))
		db = db.Where(`(LOWER(d.name) LIKE ? ESCAPE '\' OR LOWER(d.label) LIKE ? ESCAPE '\')`, pattern, pattern)
	}

	var rows []models.SubscribableDashboard
	if err := applyPaging(db.Order(order), q.Limit, q.Offset).Scan(&rows).Error; err != nil {
		r.logger.LogError(ctx, err, "list")
		return nil, models.NewInternalError(err)
	}
	return rows, nil
}

func (r *subscriptionRepository) CreateOverride(ctx context.Context, override *models.DashboardOverride) error {
	if err := r.db.WithContext(ctx).Create(override).Error; err != nil {
		r.logger.LogError(ctx, err, "create")
		return translateError(err)
	}
	r.logger.LogCreate(ctx, map[string]any{"username": override.Username})
	return nil
}

func (r *subscriptionRepository) SetOverrideDisabled(ctx context.Context, paneID []byte, username string, disabled bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.DashboardOverride{}).
		Where("dashboard_id = ? AND username = ?", paneID, username).
		Update("disabled", disabled)
	if res.Error != nil {
		r.logger.LogError(ctx, res.Error, "update")
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Subscription", username)
	}
	r.logger.LogUpdate(ctx, map[string]any{"username": username, "disabled": disabled})
	return nil
}

func (r *subscriptionRepository) ListSubscribed(ctx context.Context, username string) ([]SubscribedPane, error) {
	var rows []SubscribedPane
	err := r.db.WithContext(ctx).
		Table("dashboard_override AS o").
		Select(`d.id AS dashboard_id, d.name AS name, d.label AS label, d.username AS owner,
			o.label AS override_label, o.disabled AS disabled,
			COALESCE(ord.priority, 0) AS priority`).
		Joins("JOIN dashboard d ON d.id = o.dashboard_id").
		Joins("LEFT JOIN dashboard_order ord ON ord.dashboard_id = o.dashboard_id AND ord.username = o.username").
		Where("o.username = ?", username).
		Order("d.name ASC").
		Scan(&rows).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		r.logger.LogError(ctx, err, "list")
		return nil, models.NewInternalError(err)
	}
	return rows, nil
}
