package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"storefront-checkout/internal/model"
)

type CouponRepository interface {
	FindByCode(ctx context.Context, code string) (*model.Coupon, error)
	Create(ctx context.Context, coupon *model.Coupon) error
	Update(ctx context.Context, coupon *model.Coupon) error
	// Delete removes the coupon and cascades its redemptions; admin path only.
	Delete(ctx context.Context, couponID uint) error
	CountRedemptions(ctx context.Context, tx *gorm.DB, couponID uint) (int64, error)
	CountRedemptionsByUser(ctx context.Context, tx *gorm.DB, couponID, userID uint) (int64, error)
	CreateRedemption(ctx context.Context, tx *gorm.DB, redemption *model.CouponRedemption) error
}

type couponRepoImpl struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) CouponRepository {
	return &couponRepoImpl{
		db: db,
	}
}

// NormalizeCode maps a user-entered code onto its stored form. Codes are
// case-insensitive.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (r *couponRepoImpl) FindByCode(ctx context.Context, code string) (*model.Coupon, error) {
	var coupon model.Coupon
	err := r.db.WithContext(ctx).
		Where("code = ?", NormalizeCode(code)).
		First(&coupon).Error

	if err != nil {
		return nil, err
	}

	return &coupon, nil
}

func (r *couponRepoImpl) Create(ctx context.Context, coupon *model.Coupon) error {
	coupon.Code = NormalizeCode(coupon.Code)
	return r.db.WithContext(ctx).Create(coupon).Error
}

func (r *couponRepoImpl) Update(ctx context.Context, coupon *model.Coupon) error {
	coupon.Code = NormalizeCode(coupon.Code)
	return r.db.WithContext(ctx).Save(coupon).Error
}

func (r *couponRepoImpl) Delete(ctx context.Context, couponID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("coupon_id = ?", couponID).
			Delete(&model.CouponRedemption{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", couponID).Delete(&model.Coupon{}).Error
	})
}

func (r *couponRepoImpl) CountRedemptions(ctx context.Context, tx *gorm.DB, couponID uint) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&model.CouponRedemption{}).
		Where("coupon_id = ?", couponID).
		Count(&count).Error

	return count, err
}

func (r *couponRepoImpl) CountRedemptionsByUser(ctx context.Context, tx *gorm.DB, couponID, userID uint) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&model.CouponRedemption{}).
		Where("coupon_id = ? AND user_id = ?", couponID, userID).
		Count(&count).Error

	return count, err
}

func (r *couponRepoImpl) CreateRedemption(ctx context.Context, tx *gorm.DB, redemption *model.CouponRedemption) error {
	return tx.WithContext(ctx).Create(redemption).Error
}
