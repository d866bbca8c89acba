package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"storefront-checkout/internal/apperr"
	"storefront-checkout/internal/model"
)

func TestApplyCouponWelcomeTen(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "welcome@shop.test")
	actor := userActor(user)
	product := env.seedProduct(t, "CPN-1", "50.00", 10)

	_, err := env.carts.AddItem(context.Background(), actor, product.ID, nil, 2)
	require.NoError(t, err)
	cart, err := env.carts.CreateOrGet(context.Background(), actor)
	require.NoError(t, err)

	env.seedCoupon(t, &model.Coupon{
		Code:           "welcome10",
		DiscountType:   model.DiscountPercent,
		DiscountValue:  dec("10"),
		MinOrderAmount: dec("50.00"),
		Active:         true,
	})

	terms, err := env.coupons.Apply(context.Background(), cart.ID, "Welcome10", actor)
	require.NoError(t, err)
	require.Equal(t, "WELCOME10", terms.Code)
	requireDecEqual(t, "100.00", terms.Subtotal)
	requireDecEqual(t, "10.00", terms.Discount)
	requireDecEqual(t, "90.00", terms.Total)

	// applying the same code again is a conflict, not a silent no-op
	_, err = env.coupons.Apply(context.Background(), cart.ID, "WELCOME10", actor)
	requireReason(t, err, apperr.Conflict, apperr.ReasonCouponAlreadyApplied)
}

func TestApplyCouponRejections(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "reject@shop.test")
	actor := userActor(user)
	product := env.seedProduct(t, "CPN-2", "30.00", 10)

	_, err := env.carts.AddItem(context.Background(), actor, product.ID, nil, 1)
	require.NoError(t, err)
	cart, err := env.carts.CreateOrGet(context.Background(), actor)
	require.NoError(t, err)

	disabled := env.seedCoupon(t, &model.Coupon{
		Code: "DISABLED", DiscountType: model.DiscountPercent, DiscountValue: dec("10"),
		Active: true,
	})
	require.NoError(t, env.db.Model(disabled).Update("active", false).Error)
	env.seedCoupon(t, &model.Coupon{
		Code: "TOMORROW", DiscountType: model.DiscountPercent, DiscountValue: dec("10"),
		Active: true, StartsAt: ptr(time.Now().Add(24 * time.Hour)),
	})
	env.seedCoupon(t, &model.Coupon{
		Code: "YESTERDAY", DiscountType: model.DiscountPercent, DiscountValue: dec("10"),
		Active: true, ExpiresAt: ptr(time.Now().Add(-24 * time.Hour)),
	})
	env.seedCoupon(t, &model.Coupon{
		Code: "BIGSPEND", DiscountType: model.DiscountPercent, DiscountValue: dec("10"),
		Active: true, MinOrderAmount: dec("500.00"),
	})

	cases := []struct {
		code   string
		kind   apperr.Kind
		reason string
	}{
		{"MISSING", apperr.NotFound, apperr.ReasonCouponNotFound},
		{"DISABLED", apperr.Validation, apperr.ReasonCouponInactive},
		{"TOMORROW", apperr.Validation, apperr.ReasonCouponNotStarted},
		{"YESTERDAY", apperr.Validation, apperr.ReasonCouponExpired},
		{"BIGSPEND", apperr.Validation, apperr.ReasonCouponMinOrder},
	}
	for _, tc := range cases {
		_, err := env.coupons.Apply(context.Background(), cart.ID, tc.code, actor)
		requireReason(t, err, tc.kind, tc.reason)
	}
}

func TestApplyCouponMaxRedemptionsReached(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "late@shop.test")
	actor := userActor(user)
	product := env.seedProduct(t, "CPN-3", "30.00", 10)

	_, err := env.carts.AddItem(context.Background(), actor, product.ID, nil, 1)
	require.NoError(t, err)
	cart, err := env.carts.CreateOrGet(context.Background(), actor)
	require.NoError(t, err)

	coupon := env.seedCoupon(t, &model.Coupon{
		Code: "SOLDOUT", DiscountType: model.DiscountAmount, DiscountValue: dec("5.00"),
		Active: true, MaxRedemptions: ptr(2),
	})
	for orderID := uint(1); orderID <= 2; orderID++ {
		require.NoError(t, env.db.Create(&model.CouponRedemption{
			CouponID: coupon.ID, UserID: 999, OrderID: orderID,
		}).Error)
	}

	_, err = env.coupons.Apply(context.Background(), cart.ID, "SOLDOUT", actor)
	requireReason(t, err, apperr.Conflict, apperr.ReasonCouponExhausted)
}

func TestApplyCouponPerCustomerLimit(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "repeat@shop.test")
	actor := userActor(user)
	product := env.seedProduct(t, "CPN-4", "30.00", 10)

	_, err := env.carts.AddItem(context.Background(), actor, product.ID, nil, 1)
	require.NoError(t, err)
	cart, err := env.carts.CreateOrGet(context.Background(), actor)
	require.NoError(t, err)

	coupon := env.seedCoupon(t, &model.Coupon{
		Code: "ONCEEACH", DiscountType: model.DiscountAmount, DiscountValue: dec("5.00"),
		Active: true, PerCustomerLimit: 1,
	})
	require.NoError(t, env.db.Create(&model.CouponRedemption{
		CouponID: coupon.ID, UserID: user.ID, OrderID: 1,
	}).Error)

	_, err = env.coupons.Apply(context.Background(), cart.ID, "ONCEEACH", actor)
	requireReason(t, err, apperr.Conflict, apperr.ReasonCouponCustomerLimit)

	// a different shopper is still within their own limit
	other := env.seedUser(t, "fresh@shop.test")
	otherActor := userActor(other)
	_, err = env.carts.AddItem(context.Background(), otherActor, product.ID, nil, 1)
	require.NoError(t, err)
	otherCart, err := env.carts.CreateOrGet(context.Background(), otherActor)
	require.NoError(t, err)

	_, err = env.coupons.Apply(context.Background(), otherCart.ID, "ONCEEACH", otherActor)
	require.NoError(t, err)
}

func TestApplyCouponOwnershipEnforced(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "owner@shop.test")
	intruder := env.seedUser(t, "intruder@shop.test")
	product := env.seedProduct(t, "CPN-5", "30.00", 10)

	_, err := env.carts.AddItem(context.Background(), userActor(owner), product.ID, nil, 1)
	require.NoError(t, err)
	cart, err := env.carts.CreateOrGet(context.Background(), userActor(owner))
	require.NoError(t, err)

	env.seedCoupon(t, &model.Coupon{
		Code: "STOLEN", DiscountType: model.DiscountAmount, DiscountValue: dec("5.00"), Active: true,
	})

	_, err = env.coupons.Apply(context.Background(), cart.ID, "STOLEN", userActor(intruder))
	requireReason(t, err, apperr.Authorization, apperr.ReasonNotCartOwner)

	err = env.coupons.Remove(context.Background(), cart.ID, userActor(intruder))
	requireReason(t, err, apperr.Authorization, apperr.ReasonNotCartOwner)
}

func TestRemoveCoupon(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "remove@shop.test")
	actor := userActor(user)
	product := env.seedProduct(t, "CPN-6", "60.00", 10)

	_, err := env.carts.AddItem(context.Background(), actor, product.ID, nil, 1)
	require.NoError(t, err)
	cart, err := env.carts.CreateOrGet(context.Background(), actor)
	require.NoError(t, err)

	env.seedCoupon(t, &model.Coupon{
		Code: "GONE", DiscountType: model.DiscountAmount, DiscountValue: dec("5.00"), Active: true,
	})
	_, err = env.coupons.Apply(context.Background(), cart.ID, "GONE", actor)
	require.NoError(t, err)

	require.NoError(t, env.coupons.Remove(context.Background(), cart.ID, actor))

	refreshed, err := env.cartRepo.FindByID(context.Background(), cart.ID)
	require.NoError(t, err)
	require.Nil(t, refreshed.CouponCode)
}

func requireReason(t *testing.T, err error, kind apperr.Kind, reason string) {
	t.Helper()
	require.Error(t, err)
	e := apperr.As(err)
	require.NotNil(t, e, "expected apperr, got %v", err)
	require.Equal(t, kind, e.Kind)
	require.Equal(t, reason, e.Reason)
}
