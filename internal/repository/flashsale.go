package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront-checkout/internal/model"
)

// ActiveSaleRow is one (sale, product) pairing active at the query instant,
// with the per-product override flattened in. Rows come back ordered by
// (priority, flash_sale id), so the first row per product is the winner.
type ActiveSaleRow struct {
	FlashSaleID   uint
	ProductID     uint
	Name          string
	DiscountType  model.DiscountType
	DiscountValue decimal.Decimal
	Priority      int
	OverrideType  *model.DiscountType
	OverrideValue *decimal.Decimal
}

type FlashSaleRepository interface {
	ActiveForProducts(ctx context.Context, productIDs []uint, now time.Time) ([]*ActiveSaleRow, error)
	FindByID(ctx context.Context, saleID uint) (*model.FlashSale, error)
	Create(ctx context.Context, sale *model.FlashSale) error
	Update(ctx context.Context, sale *model.FlashSale) error
	Delete(ctx context.Context, saleID uint) error
}

type flashSaleRepoImpl struct {
	db *gorm.DB
}

func NewFlashSaleRepository(db *gorm.DB) FlashSaleRepository {
	return &flashSaleRepoImpl{
		db: db,
	}
}

func (r *flashSaleRepoImpl) ActiveForProducts(ctx context.Context, productIDs []uint, now time.Time) ([]*ActiveSaleRow, error) {
	var rows []*ActiveSaleRow
	err := r.db.WithContext(ctx).
		Table("flash_sale_products").
		Select(`flash_sales.id AS flash_sale_id,
			flash_sale_products.product_id,
			flash_sales.name,
			flash_sales.discount_type,
			flash_sales.discount_value,
			flash_sales.priority,
			flash_sale_products.override_type,
			flash_sale_products.override_value`).
		Joins("JOIN flash_sales ON flash_sales.id = flash_sale_products.flash_sale_id").
		Where("flash_sale_products.product_id IN ?", productIDs).
		Where("flash_sales.starts_at <= ? AND flash_sales.ends_at >= ?", now, now).
		Order("flash_sales.priority ASC, flash_sales.id ASC").
		Scan(&rows).Error

	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *flashSaleRepoImpl) FindByID(ctx context.Context, saleID uint) (*model.FlashSale, error) {
	var sale model.FlashSale
	err := r.db.WithContext(ctx).
		Preload("Products").
		Where("id = ?", saleID).
		First(&sale).Error

	if err != nil {
		return nil, err
	}

	return &sale, nil
}

func (r *flashSaleRepoImpl) Create(ctx context.Context, sale *model.FlashSale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

func (r *flashSaleRepoImpl) Update(ctx context.Context, sale *model.FlashSale) error {
	return r.db.WithContext(ctx).Save(sale).Error
}

func (r *flashSaleRepoImpl) Delete(ctx context.Context, saleID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("flash_sale_id = ?", saleID).
			Delete(&model.FlashSaleProduct{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", saleID).Delete(&model.FlashSale{}).Error
	})
}
