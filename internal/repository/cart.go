package repository

import (
	"context"

	"gorm.io/gorm"

	"storefront-checkout/internal/model"
)

type CartRepository interface {
	FindByID(ctx context.Context, cartID uint) (*model.Cart, error)
	FindByUserID(ctx context.Context, userID uint) (*model.Cart, error)
	FindBySessionToken(ctx context.Context, token string) (*model.Cart, error)
	Create(ctx context.Context, cart *model.Cart) error
	SetCouponCode(ctx context.Context, tx *gorm.DB, cartID uint, code *string) error
	Retire(ctx context.Context, tx *gorm.DB, cartID uint) error

	FindItem(ctx context.Context, cartID, productID uint, variantID *uint) (*model.CartItem, error)
	FindItemByID(ctx context.Context, itemID uint) (*model.CartItem, error)
	CreateItem(ctx context.Context, tx *gorm.DB, item *model.CartItem) error
	UpdateItemQuantity(ctx context.Context, tx *gorm.DB, itemID uint, quantity int) error
	DeleteItem(ctx context.Context, tx *gorm.DB, itemID uint) error
	ClearItems(ctx context.Context, tx *gorm.DB, cartID uint) error
}

type cartRepoImpl struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepoImpl{
		db: db,
	}
}

func (r *cartRepoImpl) FindByID(ctx context.Context, cartID uint) (*model.Cart, error) {
	var cart model.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", cartID).
		First(&cart).Error

	if err != nil {
		return nil, err
	}

	return &cart, nil
}

func (r *cartRepoImpl) FindByUserID(ctx context.Context, userID uint) (*model.Cart, error) {
	var cart model.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		First(&cart).Error

	if err != nil {
		return nil, err
	}

	return &cart, nil
}

func (r *cartRepoImpl) FindBySessionToken(ctx context.Context, token string) (*model.Cart, error) {
	var cart model.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("session_token = ?", token).
		First(&cart).Error

	if err != nil {
		return nil, err
	}

	return &cart, nil
}

func (r *cartRepoImpl) Create(ctx context.Context, cart *model.Cart) error {
	return r.db.WithContext(ctx).Create(cart).Error
}

func (r *cartRepoImpl) SetCouponCode(ctx context.Context, tx *gorm.DB, cartID uint, code *string) error {
	return tx.WithContext(ctx).Model(&model.Cart{}).
		Where("id = ?", cartID).
		Update("coupon_code", code).Error
}

// Retire deletes a cart record outright; used after a guest cart has been
// merged into a user cart so a retried merge finds nothing to do.
func (r *cartRepoImpl) Retire(ctx context.Context, tx *gorm.DB, cartID uint) error {
	if err := tx.WithContext(ctx).Where("cart_id = ?", cartID).
		Delete(&model.CartItem{}).Error; err != nil {
		return err
	}
	return tx.WithContext(ctx).Where("id = ?", cartID).Delete(&model.Cart{}).Error
}

func (r *cartRepoImpl) FindItem(ctx context.Context, cartID, productID uint, variantID *uint) (*model.CartItem, error) {
	var item model.CartItem
	q := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID)
	if variantID != nil {
		q = q.Where("variant_id = ?", *variantID)
	} else {
		q = q.Where("variant_id IS NULL")
	}

	if err := q.First(&item).Error; err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *cartRepoImpl) FindItemByID(ctx context.Context, itemID uint) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.WithContext(ctx).
		Where("id = ?", itemID).
		First(&item).Error

	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *cartRepoImpl) CreateItem(ctx context.Context, tx *gorm.DB, item *model.CartItem) error {
	return tx.WithContext(ctx).Create(item).Error
}

func (r *cartRepoImpl) UpdateItemQuantity(ctx context.Context, tx *gorm.DB, itemID uint, quantity int) error {
	return tx.WithContext(ctx).Model(&model.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity).Error
}

func (r *cartRepoImpl) DeleteItem(ctx context.Context, tx *gorm.DB, itemID uint) error {
	return tx.WithContext(ctx).Where("id = ?", itemID).
		Delete(&model.CartItem{}).Error
}

func (r *cartRepoImpl) ClearItems(ctx context.Context, tx *gorm.DB, cartID uint) error {
	return tx.WithContext(ctx).Where("cart_id = ?", cartID).
		Delete(&model.CartItem{}).Error
}
