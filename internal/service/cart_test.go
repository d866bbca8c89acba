package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"storefront-checkout/internal/apperr"
	"storefront-checkout/internal/model"
)

func TestAddItemAccumulatesQuantity(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "adder@shop.test")
	actor := userActor(user)
	product := env.seedProduct(t, "CART-1", "10.00", 20)

	first, err := env.carts.AddItem(context.Background(), actor, product.ID, nil, 2)
	require.NoError(t, err)
	require.Equal(t, 2, first.Quantity)

	second, err := env.carts.AddItem(context.Background(), actor, product.ID, nil, 3)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 5, second.Quantity)

	cart, err := env.carts.CreateOrGet(context.Background(), actor)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
}

func TestAddItemSnapshotsSalePrice(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "snapshot@shop.test")
	actor := userActor(user)
	product := env.seedProduct(t, "CART-2", "40.00", 20)
	env.seedSale(t, 1, model.DiscountPercent, "20", time.Hour, product.ID)

	item, err := env.carts.AddItem(context.Background(), actor, product.ID, nil, 1)
	require.NoError(t, err)
	requireDecEqual(t, "32.00", item.UnitPrice)
}

func TestAddItemVariantDelta(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "variant@shop.test")
	actor := userActor(user)
	product := env.seedProduct(t, "CART-3", "40.00", 0)
	variant := &model.Variant{
		ProductID: product.ID, Name: "XL", SKU: "CART-3-XL",
		PriceDelta: dec("2.50"), Stock: 5,
	}
	require.NoError(t, env.db.Create(variant).Error)
	env.seedSale(t, 1, model.DiscountPercent, "20", time.Hour, product.ID)

	item, err := env.carts.AddItem(context.Background(), actor, product.ID, &variant.ID, 1)
	require.NoError(t, err)
	// sale applies to the product base, then the variant delta goes on top
	requireDecEqual(t, "34.50", item.UnitPrice)
	require.Equal(t, "CART-3-XL", item.SKU)
	require.Equal(t, "Product CART-3 - XL", item.Name)
}

func TestAddItemRejectsUnpublished(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "hidden@shop.test")
	product := env.seedProduct(t, "CART-4", "10.00", 20)
	require.NoError(t, env.db.Model(product).Update("published", false).Error)

	_, err := env.carts.AddItem(context.Background(), userActor(user), product.ID, nil, 1)
	requireReason(t, err, apperr.NotFound, apperr.ReasonProductNotFound)
}

func TestAddItemRejectsForeignVariant(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "mismatch@shop.test")
	product := env.seedProduct(t, "CART-5", "10.00", 20)
	other := env.seedProduct(t, "CART-6", "10.00", 20)
	variant := &model.Variant{ProductID: other.ID, Name: "M", SKU: "CART-6-M", Stock: 5}
	require.NoError(t, env.db.Create(variant).Error)

	_, err := env.carts.AddItem(context.Background(), userActor(user), product.ID, &variant.ID, 1)
	requireReason(t, err, apperr.NotFound, apperr.ReasonProductNotFound)
}

func TestUpdateQuantityCapsAtStock(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "capper@shop.test")
	actor := userActor(user)
	product := env.seedProduct(t, "CART-7", "10.00", 4)

	item, err := env.carts.AddItem(context.Background(), actor, product.ID, nil, 1)
	require.NoError(t, err)

	updated, capped, err := env.carts.UpdateQuantity(context.Background(), actor, item.ID, 9)
	require.NoError(t, err)
	require.True(t, capped)
	require.Equal(t, 4, updated.Quantity)

	updated, capped, err = env.carts.UpdateQuantity(context.Background(), actor, item.ID, 3)
	require.NoError(t, err)
	require.False(t, capped)
	require.Equal(t, 3, updated.Quantity)
}

func TestUpdateQuantityDropsItemWhenStockGone(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "soldout@shop.test")
	actor := userActor(user)
	product := env.seedProduct(t, "CART-8", "10.00", 4)

	item, err := env.carts.AddItem(context.Background(), actor, product.ID, nil, 2)
	require.NoError(t, err)

	require.NoError(t, env.db.Model(product).Update("stock", 0).Error)

	updated, capped, err := env.carts.UpdateQuantity(context.Background(), actor, item.ID, 2)
	require.NoError(t, err)
	require.True(t, capped)
	require.Nil(t, updated)

	cart, err := env.carts.CreateOrGet(context.Background(), actor)
	require.NoError(t, err)
	require.Empty(t, cart.Items)
}

func TestCartOwnershipEnforcedOnItems(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "mine@shop.test")
	intruder := env.seedUser(t, "theirs@shop.test")
	product := env.seedProduct(t, "CART-9", "10.00", 20)

	item, err := env.carts.AddItem(context.Background(), userActor(owner), product.ID, nil, 1)
	require.NoError(t, err)

	_, _, err = env.carts.UpdateQuantity(context.Background(), userActor(intruder), item.ID, 2)
	requireReason(t, err, apperr.Authorization, apperr.ReasonNotCartOwner)

	err = env.carts.RemoveItem(context.Background(), userActor(intruder), item.ID)
	requireReason(t, err, apperr.Authorization, apperr.ReasonNotCartOwner)
}

func TestClearEmptiesItemsAndCoupon(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "clearer@shop.test")
	actor := userActor(user)
	product := env.seedProduct(t, "CART-10", "30.00", 20)

	_, err := env.carts.AddItem(context.Background(), actor, product.ID, nil, 2)
	require.NoError(t, err)
	cart, err := env.carts.CreateOrGet(context.Background(), actor)
	require.NoError(t, err)

	env.seedCoupon(t, &model.Coupon{
		Code: "WIPED", DiscountType: model.DiscountAmount, DiscountValue: dec("5.00"), Active: true,
	})
	_, err = env.coupons.Apply(context.Background(), cart.ID, "WIPED", actor)
	require.NoError(t, err)

	require.NoError(t, env.carts.Clear(context.Background(), actor))

	refreshed, err := env.cartRepo.FindByID(context.Background(), cart.ID)
	require.NoError(t, err)
	require.Empty(t, refreshed.Items)
	require.Nil(t, refreshed.CouponCode)
}

func TestMergeGuestIntoUser(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "merger@shop.test")
	guest := guestActor("guest-token-1")
	shared := env.seedProduct(t, "MERGE-1", "10.00", 20)
	guestOnly := env.seedProduct(t, "MERGE-2", "15.00", 20)

	_, err := env.carts.AddItem(context.Background(), userActor(user), shared.ID, nil, 1)
	require.NoError(t, err)
	_, err = env.carts.AddItem(context.Background(), guest, shared.ID, nil, 2)
	require.NoError(t, err)
	_, err = env.carts.AddItem(context.Background(), guest, guestOnly.ID, nil, 1)
	require.NoError(t, err)

	guestCart, err := env.carts.CreateOrGet(context.Background(), guest)
	require.NoError(t, err)
	env.seedCoupon(t, &model.Coupon{
		Code: "CARRIED", DiscountType: model.DiscountAmount, DiscountValue: dec("2.00"), Active: true,
	})
	_, err = env.coupons.Apply(context.Background(), guestCart.ID, "CARRIED", guest)
	require.NoError(t, err)

	require.NoError(t, env.carts.MergeGuestIntoUser(context.Background(), "guest-token-1", user.ID))

	merged, err := env.carts.CreateOrGet(context.Background(), userActor(user))
	require.NoError(t, err)
	require.Len(t, merged.Items, 2)
	byProduct := map[uint]int{}
	for _, item := range merged.Items {
		byProduct[item.ProductID] = item.Quantity
	}
	require.Equal(t, 3, byProduct[shared.ID])
	require.Equal(t, 1, byProduct[guestOnly.ID])
	require.NotNil(t, merged.CouponCode)
	require.Equal(t, "CARRIED", *merged.CouponCode)

	// the guest cart is retired; touching the same token starts fresh
	fresh, err := env.carts.CreateOrGet(context.Background(), guest)
	require.NoError(t, err)
	require.NotEqual(t, guestCart.ID, fresh.ID)
	require.Empty(t, fresh.Items)
}

func TestMergeWithoutGuestCartIsNoop(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "lonely@shop.test")
	product := env.seedProduct(t, "MERGE-3", "10.00", 20)

	_, err := env.carts.AddItem(context.Background(), userActor(user), product.ID, nil, 1)
	require.NoError(t, err)

	require.NoError(t, env.carts.MergeGuestIntoUser(context.Background(), "never-seen-token", user.ID))
	require.NoError(t, env.carts.MergeGuestIntoUser(context.Background(), "", user.ID))

	cart, err := env.carts.CreateOrGet(context.Background(), userActor(user))
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	require.Equal(t, 1, cart.Items[0].Quantity)
}

func TestGetTotalsDropInvalidCouponDiscount(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "stale@shop.test")
	actor := userActor(user)
	product := env.seedProduct(t, "CART-11", "60.00", 20)

	_, err := env.carts.AddItem(context.Background(), actor, product.ID, nil, 1)
	require.NoError(t, err)
	cart, err := env.carts.CreateOrGet(context.Background(), actor)
	require.NoError(t, err)

	coupon := env.seedCoupon(t, &model.Coupon{
		Code: "FLAKY", DiscountType: model.DiscountAmount, DiscountValue: dec("10.00"), Active: true,
	})
	_, err = env.coupons.Apply(context.Background(), cart.ID, "FLAKY", actor)
	require.NoError(t, err)

	_, totals, err := env.carts.Get(context.Background(), actor)
	require.NoError(t, err)
	requireDecEqual(t, "50.00", totals.Total)

	// coupon got disabled after being applied; totals stop discounting but
	// the stored code stays for the shopper to see
	require.NoError(t, env.db.Model(coupon).Update("active", false).Error)

	_, totals, err = env.carts.Get(context.Background(), actor)
	require.NoError(t, err)
	requireDecEqual(t, "60.00", totals.Total)
	require.NotNil(t, totals.CouponCode)
}
