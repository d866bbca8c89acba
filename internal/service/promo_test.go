package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"storefront-checkout/internal/apperr"
	"storefront-checkout/internal/model"
	"storefront-checkout/internal/repository"
)

func TestCreateCouponValidatesDiscount(t *testing.T) {
	env := newTestEnv(t)
	promo := NewPromoAdminService(env.couponRepo, env.flashSaleRepo)

	err := promo.CreateCoupon(context.Background(), &model.Coupon{
		Code: "BROKEN", DiscountType: "bogus", DiscountValue: dec("10"),
	})
	require.True(t, apperr.IsKind(err, apperr.Validation))

	err = promo.CreateCoupon(context.Background(), &model.Coupon{
		Code: "FREEBIE", DiscountType: model.DiscountAmount, DiscountValue: dec("0"),
	})
	require.True(t, apperr.IsKind(err, apperr.Validation))

	err = promo.CreateCoupon(context.Background(), &model.Coupon{
		Code: "fine10", DiscountType: model.DiscountPercent, DiscountValue: dec("10"), Active: true,
	})
	require.NoError(t, err)

	// codes are stored upper-cased and looked up case-insensitively
	coupon, err := env.couponRepo.FindByCode(context.Background(), repository.NormalizeCode(" fine10 "))
	require.NoError(t, err)
	require.Equal(t, "FINE10", coupon.Code)
}

func TestCreateFlashSaleValidatesWindow(t *testing.T) {
	env := newTestEnv(t)
	promo := NewPromoAdminService(env.couponRepo, env.flashSaleRepo)

	err := promo.CreateFlashSale(context.Background(), &model.FlashSale{
		Name: "inverted", DiscountType: model.DiscountPercent, DiscountValue: dec("10"),
		StartsAt: time.Now().Add(time.Hour), EndsAt: time.Now(),
	})
	require.True(t, apperr.IsKind(err, apperr.Validation))
}

func TestDeleteCouponRemovesRedemptions(t *testing.T) {
	env := newTestEnv(t)
	promo := NewPromoAdminService(env.couponRepo, env.flashSaleRepo)

	coupon := env.seedCoupon(t, &model.Coupon{
		Code: "DOOMED", DiscountType: model.DiscountAmount, DiscountValue: dec("5.00"), Active: true,
	})
	require.NoError(t, env.db.Create(&model.CouponRedemption{
		CouponID: coupon.ID, UserID: 1, OrderID: 1,
	}).Error)

	require.NoError(t, promo.DeleteCoupon(context.Background(), coupon.ID))

	var redemptions int64
	require.NoError(t, env.db.Model(&model.CouponRedemption{}).
		Where("coupon_id = ?", coupon.ID).Count(&redemptions).Error)
	require.Zero(t, redemptions)
}
