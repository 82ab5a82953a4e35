package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/laundryease/backend/pkg/db/models"
	"github.com/laundryease/backend/pkg/enums"
)

// Repository exposes payment persistence plus the order-side payment rollup.
// Every mutation that touches both tables runs in one transaction.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindByPidx(ctx context.Context, pidx string) (*models.Payment, error)
	FindProcessingByOrder(ctx context.Context, orderID uuid.UUID) (*models.Payment, error)
	CreateWithOrderUpdate(ctx context.Context, payment *models.Payment) error
	Complete(ctx context.Context, params completionParams) error
	Fail(ctx context.Context, paymentID, orderID uuid.UUID, reason string) error
	List(ctx context.Context, params listPaymentsParams) ([]models.Payment, int64, error)
	Stats(ctx context.Context, now time.Time) (*Stats, error)
}

type listPaymentsParams struct {
	UserID *uuid.UUID
	Offset int
	Limit  int
}

// completionParams settles a payment. PaymentID is nil when the gateway
// callback arrives for an order whose payment row was never recorded.
type completionParams struct {
	PaymentID     *uuid.UUID
	OrderID       uuid.UUID
	TransactionID string
	Note          string
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a payments repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("User").
		First(&order, "id = ?", orderID).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repositoryImpl) FindByPidx(ctx context.Context, pidx string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).Where("pidx = ?", pidx).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repositoryImpl) FindProcessingByOrder(ctx context.Context, orderID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND status = ?", orderID, enums.PaymentProcessing).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// CreateWithOrderUpdate inserts the payment row and eagerly moves the
// order's payment method and rollup status in the same transaction.
func (r *repositoryImpl) CreateWithOrderUpdate(ctx context.Context, payment *models.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(payment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Order{}).
			Where("id = ?", payment.OrderID).
			Updates(map[string]any{
				"payment_method": payment.Method,
				"payment_status": payment.Status,
			}).Error
	})
}

func (r *repositoryImpl) Complete(ctx context.Context, params completionParams) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if params.PaymentID != nil {
			updates := map[string]any{"status": enums.PaymentCompleted}
			if params.TransactionID != "" {
				updates["transaction_id"] = params.TransactionID
			}
			if err := tx.Model(&models.Payment{}).
				Where("id = ?", *params.PaymentID).
				Updates(updates).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&models.Order{}).
			Where("id = ?", params.OrderID).
			UpdateColumn("payment_status", enums.PaymentCompleted).Error; err != nil {
			return err
		}

		// Pending orders advance to confirmed once paid; any other status
		// is left alone.
		result := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", params.OrderID, enums.OrderPending).
			UpdateColumn("status", enums.OrderConfirmed)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			event := &models.OrderStatusEvent{
				ID:      uuid.New(),
				OrderID: params.OrderID,
				Status:  enums.OrderConfirmed,
				Note:    params.Note,
			}
			if err := tx.Create(event).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repositoryImpl) Fail(ctx context.Context, paymentID, orderID uuid.UUID, reason string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Payment{}).
			Where("id = ?", paymentID).
			Updates(map[string]any{
				"status":         enums.PaymentFailed,
				"failure_reason": reason,
			}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Order{}).
			Where("id = ?", orderID).
			UpdateColumn("payment_status", enums.PaymentFailed).Error
	})
}

func (r *repositoryImpl) List(ctx context.Context, params listPaymentsParams) ([]models.Payment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Payment{})
	if params.UserID != nil {
		query = query.Where("user_id = ?", *params.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Payment
	if err := query.Preload("Order").
		Order("created_at DESC, id DESC").
		Offset(params.Offset).
		Limit(params.Limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repositoryImpl) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	stats := &Stats{
		TotalCollected: decimal.Zero,
		StatusCounts:   map[enums.PaymentStatus]int64{},
		MethodCounts:   map[enums.PaymentMethod]int64{},
	}

	base := func() *gorm.DB { return r.db.WithContext(ctx).Model(&models.Payment{}) }
	if err := base().Count(&stats.TotalPayments).Error; err != nil {
		return nil, err
	}

	var perStatus []struct {
		Status enums.PaymentStatus
		Count  int64
	}
	if err := base().Select("status, COUNT(*) AS count").Group("status").Scan(&perStatus).Error; err != nil {
		return nil, err
	}
	for _, row := range perStatus {
		stats.StatusCounts[row.Status] = row.Count
	}

	var perMethod []struct {
		Method enums.PaymentMethod
		Count  int64
	}
	if err := base().Select("method, COUNT(*) AS count").Group("method").Scan(&perMethod).Error; err != nil {
		return nil, err
	}
	for _, row := range perMethod {
		stats.MethodCounts[row.Method] = row.Count
	}

	var collected decimal.NullDecimal
	if err := base().
		Where("status = ?", enums.PaymentCompleted).
		Select("SUM(amount)").
		Scan(&collected).Error; err != nil {
		return nil, err
	}
	if collected.Valid {
		stats.TotalCollected = collected.Decimal
	}

	// Monthly series is aggregated in Go to stay portable across the
	// Postgres runtime and the sqlite test harness.
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -11, 0)
	var settled []models.Payment
	if err := base().
		Where("status = ? AND created_at >= ?", enums.PaymentCompleted, since).
		Order("created_at ASC").
		Find(&settled).Error; err != nil {
		return nil, err
	}
	byMonth := map[string]decimal.Decimal{}
	var months []string
	for _, payment := range settled {
		month := payment.CreatedAt.Format("2006-01")
		if _, seen := byMonth[month]; !seen {
			months = append(months, month)
		}
		byMonth[month] = byMonth[month].Add(payment.Amount)
	}
	for _, month := range months {
		stats.Monthly = append(stats.Monthly, MonthlyRevenue{Month: month, Amount: byMonth[month]})
	}

	if err := r.db.WithContext(ctx).
		Preload("Order").
		Order("created_at DESC, id DESC").
		Limit(5).
		Find(&stats.RecentPayments).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
