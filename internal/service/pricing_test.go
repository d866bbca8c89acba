package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"storefront-checkout/internal/model"
)

func TestResolveNoActiveSale(t *testing.T) {
	env := newTestEnv(t)
	product := env.seedProduct(t, "PLAIN-1", "40.00", 10)

	resolved, err := env.pricing.Resolve(context.Background(), product.ID, product.BasePrice)
	require.NoError(t, err)
	requireDecEqual(t, "40.00", resolved.Price)
	require.Nil(t, resolved.Sale)
}

func TestResolveLowestPriorityWins(t *testing.T) {
	env := newTestEnv(t)
	product := env.seedProduct(t, "HOT-1", "40.00", 10)

	// priority 1 beats priority 2 regardless of which discount is deeper
	saleA := env.seedSale(t, 1, model.DiscountPercent, "20", time.Hour, product.ID)
	env.seedSale(t, 2, model.DiscountAmount, "5.00", time.Hour, product.ID)

	resolved, err := env.pricing.Resolve(context.Background(), product.ID, product.BasePrice)
	require.NoError(t, err)
	requireDecEqual(t, "32.00", resolved.Price)
	require.NotNil(t, resolved.Sale)
	require.Equal(t, saleA.ID, resolved.Sale.FlashSaleID)
	require.Equal(t, model.DiscountPercent, resolved.Sale.DiscountType)
}

func TestResolvePriorityTieGoesToOlderSale(t *testing.T) {
	env := newTestEnv(t)
	product := env.seedProduct(t, "TIE-1", "100.00", 10)

	first := env.seedSale(t, 5, model.DiscountAmount, "10.00", time.Hour, product.ID)
	env.seedSale(t, 5, model.DiscountAmount, "30.00", time.Hour, product.ID)

	resolved, err := env.pricing.Resolve(context.Background(), product.ID, product.BasePrice)
	require.NoError(t, err)
	requireDecEqual(t, "90.00", resolved.Price)
	require.Equal(t, first.ID, resolved.Sale.FlashSaleID)
}

func TestResolvePerProductOverride(t *testing.T) {
	env := newTestEnv(t)
	product := env.seedProduct(t, "OVR-1", "50.00", 10)

	sale := &model.FlashSale{
		Name:          "override sale",
		DiscountType:  model.DiscountPercent,
		DiscountValue: dec("10"),
		StartsAt:      time.Now().Add(-time.Hour),
		EndsAt:        time.Now().Add(time.Hour),
		Priority:      1,
		Products: []model.FlashSaleProduct{{
			ProductID:     product.ID,
			OverrideType:  ptr(model.DiscountAmount),
			OverrideValue: ptr(dec("15.00")),
		}},
	}
	require.NoError(t, env.db.Create(sale).Error)

	resolved, err := env.pricing.Resolve(context.Background(), product.ID, product.BasePrice)
	require.NoError(t, err)
	requireDecEqual(t, "35.00", resolved.Price)
	require.Equal(t, model.DiscountAmount, resolved.Sale.DiscountType)
	requireDecEqual(t, "15.00", resolved.Sale.DiscountValue)
}

func TestResolveIgnoresClosedWindows(t *testing.T) {
	env := newTestEnv(t)
	product := env.seedProduct(t, "WIN-1", "40.00", 10)

	expired := env.seedSale(t, 1, model.DiscountPercent, "50", time.Hour, product.ID)
	require.NoError(t, env.db.Model(expired).
		Updates(map[string]interface{}{
			"starts_at": time.Now().Add(-2 * time.Hour),
			"ends_at":   time.Now().Add(-time.Hour),
		}).Error)

	future := env.seedSale(t, 1, model.DiscountPercent, "50", time.Hour, product.ID)
	require.NoError(t, env.db.Model(future).
		Updates(map[string]interface{}{
			"starts_at": time.Now().Add(time.Hour),
			"ends_at":   time.Now().Add(2 * time.Hour),
		}).Error)

	resolved, err := env.pricing.Resolve(context.Background(), product.ID, product.BasePrice)
	require.NoError(t, err)
	requireDecEqual(t, "40.00", resolved.Price)
	require.Nil(t, resolved.Sale)
}

func TestResolveNeverBelowZero(t *testing.T) {
	env := newTestEnv(t)
	product := env.seedProduct(t, "ZERO-1", "5.00", 10)
	env.seedSale(t, 1, model.DiscountAmount, "9.99", time.Hour, product.ID)

	resolved, err := env.pricing.Resolve(context.Background(), product.ID, product.BasePrice)
	require.NoError(t, err)
	require.True(t, resolved.Price.IsZero(), "got %s", resolved.Price)
}

func TestResolveNeverAboveBase(t *testing.T) {
	// a resolved price must not exceed the base for any discount shape
	env := newTestEnv(t)
	product := env.seedProduct(t, "MONO-1", "25.00", 10)

	cases := []struct {
		discountType model.DiscountType
		value        string
	}{
		{model.DiscountPercent, "0"},
		{model.DiscountPercent, "100"},
		{model.DiscountAmount, "0.01"},
		{model.DiscountAmount, "25.00"},
	}
	for _, tc := range cases {
		sale := env.seedSale(t, 1, tc.discountType, tc.value, time.Hour, product.ID)

		resolved, err := env.pricing.Resolve(context.Background(), product.ID, product.BasePrice)
		require.NoError(t, err)
		require.True(t, resolved.Price.LessThanOrEqual(product.BasePrice),
			"%s %s resolved to %s above base", tc.discountType, tc.value, resolved.Price)
		require.False(t, resolved.Price.IsNegative())

		require.NoError(t, env.flashSaleRepo.Delete(context.Background(), sale.ID))
	}
}

func TestResolveBatchMixedProducts(t *testing.T) {
	env := newTestEnv(t)
	onSale := env.seedProduct(t, "BATCH-1", "40.00", 10)
	plain := env.seedProduct(t, "BATCH-2", "12.50", 10)
	env.seedSale(t, 1, model.DiscountPercent, "20", time.Hour, onSale.ID)

	resolved, err := env.pricing.ResolveBatch(context.Background(), map[uint]decimal.Decimal{
		onSale.ID: onSale.BasePrice,
		plain.ID:  plain.BasePrice,
	})
	require.NoError(t, err)
	require.Len(t, resolved, 2)
	requireDecEqual(t, "32.00", resolved[onSale.ID].Price)
	require.NotNil(t, resolved[onSale.ID].Sale)
	requireDecEqual(t, "12.50", resolved[plain.ID].Price)
	require.Nil(t, resolved[plain.ID].Sale)
}
