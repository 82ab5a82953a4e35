package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/laundryease/backend/pkg/db/models"
	"github.com/laundryease/backend/pkg/enums"
)

// Repository exposes order persistence operations. Multi-row writes run in
// a single transaction so the order row and its children never diverge.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, params listOrdersParams) ([]models.Order, int64, error)
	UpdateStatusCAS(ctx context.Context, params statusUpdateParams) (bool, error)
	Stats(ctx context.Context, now time.Time) (*DashboardStats, error)
}

type listOrdersParams struct {
	UserID   *uuid.UUID
	Status   enums.OrderStatus
	Offset   int
	Limit    int
	WithUser bool
}

type statusUpdateParams struct {
	OrderID     uuid.UUID
	Expected    enums.OrderStatus
	Next        enums.OrderStatus
	Note        string
	DeliveredAt *time.Time
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an orders repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	for i := range order.Items {
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
		order.Items[i].OrderID = order.ID
	}
	for i := range order.StatusEvents {
		if order.StatusEvents[i].ID == uuid.Nil {
			order.StatusEvents[i].ID = uuid.New()
		}
		order.StatusEvents[i].OrderID = order.ID
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(order).Error
	})
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("StatusEvents", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("User").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listOrdersParams) ([]models.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})
	if params.UserID != nil {
		query = query.Where("user_id = ?", *params.UserID)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Preload("Items")
	if params.WithUser {
		query = query.Preload("User")
	}

	var rows []models.Order
	if err := query.Order("created_at DESC, id DESC").
		Offset(params.Offset).
		Limit(params.Limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// UpdateStatusCAS applies the transition only when the order still holds the
// expected status, and appends the matching history event in the same
// transaction. A false return means another writer got there first.
func (r *repositoryImpl) UpdateStatusCAS(ctx context.Context, params statusUpdateParams) (bool, error) {
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{"status": params.Next}
		if params.DeliveredAt != nil {
			updates["delivery_date"] = *params.DeliveredAt
		}
		result := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", params.OrderID, params.Expected).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		event := &models.OrderStatusEvent{
			ID:      uuid.New(),
			OrderID: params.OrderID,
			Status:  params.Next,
			Note:    params.Note,
		}
		if err := tx.Create(event).Error; err != nil {
			return err
		}
		applied = true
		return nil
	})
	return applied, err
}

func (r *repositoryImpl) Stats(ctx context.Context, now time.Time) (*DashboardStats, error) {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	stats := &DashboardStats{
		StatusCounts: make(map[enums.OrderStatus]int64, len(enums.OrderStatuses())),
	}

	base := func() *gorm.DB { return r.db.WithContext(ctx).Model(&models.Order{}) }
	if err := base().Count(&stats.TotalOrders).Error; err != nil {
		return nil, err
	}
	if err := base().Where("created_at >= ?", startOfDay).Count(&stats.TodayOrders).Error; err != nil {
		return nil, err
	}
	if err := base().Where("created_at >= ?", startOfMonth).Count(&stats.MonthOrders).Error; err != nil {
		return nil, err
	}

	var perStatus []struct {
		Status enums.OrderStatus
		Count  int64
	}
	if err := base().Select("status, COUNT(*) AS count").Group("status").Scan(&perStatus).Error; err != nil {
		return nil, err
	}
	for _, status := range enums.OrderStatuses() {
		stats.StatusCounts[status] = 0
	}
	for _, row := range perStatus {
		stats.StatusCounts[row.Status] = row.Count
	}

	revenue := func(since *time.Time) (decimal.Decimal, error) {
		query := base().
			Where("status = ?", enums.OrderDelivered).
			Where("payment_status = ?", enums.PaymentCompleted)
		if since != nil {
			query = query.Where("updated_at >= ?", *since)
		}
		var total decimal.NullDecimal
		if err := query.Select("SUM(total_amount)").Scan(&total).Error; err != nil {
			return decimal.Zero, err
		}
		if !total.Valid {
			return decimal.Zero, nil
		}
		return total.Decimal, nil
	}

	var err error
	if stats.Revenue.AllTime, err = revenue(nil); err != nil {
		return nil, err
	}
	if stats.Revenue.Today, err = revenue(&startOfDay); err != nil {
		return nil, err
	}
	if stats.Revenue.Month, err = revenue(&startOfMonth); err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("User").
		Order("created_at DESC, id DESC").
		Limit(5).
		Find(&stats.RecentOrders).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
