package repository

import (
	"context"

	"gorm.io/gorm"

	"storefront-checkout/internal/model"
)

type ProductRepository interface {
	FindByID(ctx context.Context, productID uint) (*model.Product, error)
	FindMany(ctx context.Context, productIDs []uint) ([]*model.Product, error)
	ListPublished(ctx context.Context) ([]*model.Product, error)
	FindVariant(ctx context.Context, variantID uint) (*model.Variant, error)
	FindVariants(ctx context.Context, variantIDs []uint) ([]*model.Variant, error)
	// DecrementStock conditionally takes qty units; it reports false when the
	// remaining stock is insufficient, without mutating anything.
	DecrementStock(ctx context.Context, tx *gorm.DB, productID uint, variantID *uint, qty int) (bool, error)
	RestoreStock(ctx context.Context, tx *gorm.DB, productID uint, variantID *uint, qty int) error
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

func (r *productRepoImpl) FindByID(ctx context.Context, productID uint) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Preload("Variants").
		Where("id = ?", productID).
		First(&product).Error

	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepoImpl) FindMany(ctx context.Context, productIDs []uint) ([]*model.Product, error) {
	var products []*model.Product
	err := r.db.WithContext(ctx).
		Where("id IN ?", productIDs).
		Find(&products).
		Error

	if err != nil {
		return nil, err
	}

	return products, nil
}

func (r *productRepoImpl) ListPublished(ctx context.Context) ([]*model.Product, error) {
	var products []*model.Product
	err := r.db.WithContext(ctx).
		Preload("Variants").
		Where("published = ?", true).
		Find(&products).
		Error

	if err != nil {
		return nil, err
	}

	return products, nil
}

func (r *productRepoImpl) FindVariant(ctx context.Context, variantID uint) (*model.Variant, error) {
	var variant model.Variant
	err := r.db.WithContext(ctx).
		Where("id = ?", variantID).
		First(&variant).Error

	if err != nil {
		return nil, err
	}

	return &variant, nil
}

func (r *productRepoImpl) FindVariants(ctx context.Context, variantIDs []uint) ([]*model.Variant, error) {
	var variants []*model.Variant
	err := r.db.WithContext(ctx).
		Where("id IN ?", variantIDs).
		Find(&variants).
		Error

	if err != nil {
		return nil, err
	}

	return variants, nil
}

func (r *productRepoImpl) DecrementStock(ctx context.Context, tx *gorm.DB, productID uint, variantID *uint, qty int) (bool, error) {
	var result *gorm.DB
	if variantID != nil {
		result = tx.WithContext(ctx).Model(&model.Variant{}).
			Where("id = ? AND stock >= ?", *variantID, qty).
			Update("stock", gorm.Expr("stock - ?", qty))
	} else {
		result = tx.WithContext(ctx).Model(&model.Product{}).
			Where("id = ? AND stock >= ?", productID, qty).
			Update("stock", gorm.Expr("stock - ?", qty))
	}

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *productRepoImpl) RestoreStock(ctx context.Context, tx *gorm.DB, productID uint, variantID *uint, qty int) error {
	if variantID != nil {
		return tx.WithContext(ctx).Model(&model.Variant{}).
			Where("id = ?", *variantID).
			Update("stock", gorm.Expr("stock + ?", qty)).Error
	}
	return tx.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", productID).
		Update("stock", gorm.Expr("stock + ?", qty)).Error
}
