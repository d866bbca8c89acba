package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"storefront-checkout/internal/model"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	CreateItems(ctx context.Context, tx *gorm.DB, items []*model.OrderItem) error
	FindByID(ctx context.Context, orderID uint) (*model.Order, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, orderID uint) (*model.Order, error)
	ListByUser(ctx context.Context, userID uint) ([]*model.Order, error)
	GetItems(ctx context.Context, tx *gorm.DB, orderID uint) ([]*model.OrderItem, error)
	// MarkPaid flips payment_status to paid only when it is not already paid.
	// The returned flag is false when another delivery of the same payment got
	// there first; callers use it to gate history and notification side effects.
	MarkPaid(ctx context.Context, tx *gorm.DB, orderID uint) (bool, error)
	// UpdateStatus moves the order from exactly `from` to `next`; false means
	// the row was no longer in `from` and nothing changed.
	UpdateStatus(ctx context.Context, tx *gorm.DB, orderID uint, from, next model.OrderStatus) (bool, error)
	AppendStatusHistory(ctx context.Context, tx *gorm.DB, entry *model.OrderStatusHistory) error
	ListStatusHistory(ctx context.Context, orderID uint) ([]*model.OrderStatusHistory, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return tx.WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) CreateItems(ctx context.Context, tx *gorm.DB, items []*model.OrderItem) error {
	return tx.WithContext(ctx).Create(&items).Error
}

func (r *orderRepoImpl) FindByID(ctx context.Context, orderID uint) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, orderID uint) (*model.Order, error) {
	var order model.Order
	err := tx.WithContext(ctx).
		Where("id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) ListByUser(ctx context.Context, userID uint) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) GetItems(ctx context.Context, tx *gorm.DB, orderID uint) ([]*model.OrderItem, error) {
	var items []*model.OrderItem
	err := tx.WithContext(ctx).Where("order_id = ?", orderID).
		Find(&items).Error

	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *orderRepoImpl) MarkPaid(ctx context.Context, tx *gorm.DB, orderID uint) (bool, error) {
	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND payment_status <> ?", orderID, model.PaymentPaid).
		Updates(map[string]interface{}{
			"payment_status": model.PaymentPaid,
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *orderRepoImpl) UpdateStatus(ctx context.Context, tx *gorm.DB, orderID uint, from, next model.OrderStatus) (bool, error) {
	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(map[string]interface{}{
			"status":     next,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *orderRepoImpl) AppendStatusHistory(ctx context.Context, tx *gorm.DB, entry *model.OrderStatusHistory) error {
	return tx.WithContext(ctx).Create(entry).Error
}

func (r *orderRepoImpl) ListStatusHistory(ctx context.Context, orderID uint) ([]*model.OrderStatusHistory, error) {
	var entries []*model.OrderStatusHistory
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&entries).Error

	if err != nil {
		return nil, err
	}

	return entries, nil
}
