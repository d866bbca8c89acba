package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"storefront-checkout/internal/apperr"
	"storefront-checkout/internal/model"
	"storefront-checkout/internal/repository"
)

// PromoAdminService is the admin console's write path for coupons and flash
// sales. Shoppers only ever read these through PriceResolver/CouponService.
type PromoAdminService interface {
	CreateCoupon(ctx context.Context, coupon *model.Coupon) error
	UpdateCoupon(ctx context.Context, coupon *model.Coupon) error
	DeleteCoupon(ctx context.Context, couponID uint) error
	CreateFlashSale(ctx context.Context, sale *model.FlashSale) error
	UpdateFlashSale(ctx context.Context, sale *model.FlashSale) error
	DeleteFlashSale(ctx context.Context, saleID uint) error
}

type promoAdminServiceImpl struct {
	couponRepo    repository.CouponRepository
	flashSaleRepo repository.FlashSaleRepository
}

func NewPromoAdminService(couponRepo repository.CouponRepository, flashSaleRepo repository.FlashSaleRepository) PromoAdminService {
	return &promoAdminServiceImpl{
		couponRepo:    couponRepo,
		flashSaleRepo: flashSaleRepo,
	}
}

func (s *promoAdminServiceImpl) CreateCoupon(ctx context.Context, coupon *model.Coupon) error {
	if err := validateDiscount(coupon.DiscountType, coupon.DiscountValue.IsPositive()); err != nil {
		return err
	}
	return s.couponRepo.Create(ctx, coupon)
}

func (s *promoAdminServiceImpl) UpdateCoupon(ctx context.Context, coupon *model.Coupon) error {
	if err := validateDiscount(coupon.DiscountType, coupon.DiscountValue.IsPositive()); err != nil {
		return err
	}
	return s.couponRepo.Update(ctx, coupon)
}

func (s *promoAdminServiceImpl) DeleteCoupon(ctx context.Context, couponID uint) error {
	err := s.couponRepo.Delete(ctx, couponID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.New(apperr.NotFound, apperr.ReasonCouponNotFound, "coupon not found")
	}
	return err
}

func (s *promoAdminServiceImpl) CreateFlashSale(ctx context.Context, sale *model.FlashSale) error {
	if err := validateDiscount(sale.DiscountType, sale.DiscountValue.IsPositive()); err != nil {
		return err
	}
	if !sale.EndsAt.After(sale.StartsAt) {
		return apperr.New(apperr.Validation, "invalid_sale_window", "sale must end after it starts")
	}
	return s.flashSaleRepo.Create(ctx, sale)
}

func (s *promoAdminServiceImpl) UpdateFlashSale(ctx context.Context, sale *model.FlashSale) error {
	if err := validateDiscount(sale.DiscountType, sale.DiscountValue.IsPositive()); err != nil {
		return err
	}
	return s.flashSaleRepo.Update(ctx, sale)
}

func (s *promoAdminServiceImpl) DeleteFlashSale(ctx context.Context, saleID uint) error {
	return s.flashSaleRepo.Delete(ctx, saleID)
}

func validateDiscount(discountType model.DiscountType, positive bool) error {
	if discountType != model.DiscountPercent && discountType != model.DiscountAmount {
		return apperr.New(apperr.Validation, "invalid_discount_type", "discount type must be percent or amount")
	}
	if !positive {
		return apperr.New(apperr.Validation, "invalid_discount_value", "discount value must be positive")
	}
	return nil
}
