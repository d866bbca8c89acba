package service

import (
	"context"

	"github.com/shopspring/decimal"

	"storefront-checkout/internal/model"
	"storefront-checkout/internal/repository"
)

type linePrice struct {
	Unit decimal.Decimal
	Sale *AppliedSale
}

// resolveLinePrices computes the current effective unit price for each cart
// line: flash-resolved product price plus the variant delta. Two bounded
// queries regardless of line count.
func resolveLinePrices(ctx context.Context, productRepo repository.ProductRepository, pricing PriceResolver, items []model.CartItem) ([]linePrice, error) {
	if len(items) == 0 {
		return nil, nil
	}

	productIDs := make([]uint, 0, len(items))
	variantIDs := make([]uint, 0, len(items))
	seen := make(map[uint]bool, len(items))
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			productIDs = append(productIDs, item.ProductID)
		}
		if item.VariantID != nil {
			variantIDs = append(variantIDs, *item.VariantID)
		}
	}

	products, err := productRepo.FindMany(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	basePrices := make(map[uint]decimal.Decimal, len(products))
	for _, p := range products {
		basePrices[p.ID] = p.BasePrice
	}

	variantDeltas := make(map[uint]decimal.Decimal)
	if len(variantIDs) > 0 {
		variants, err := productRepo.FindVariants(ctx, variantIDs)
		if err != nil {
			return nil, err
		}
		for _, v := range variants {
			variantDeltas[v.ID] = v.PriceDelta
		}
	}

	resolved, err := pricing.ResolveBatch(ctx, basePrices)
	if err != nil {
		return nil, err
	}

	prices := make([]linePrice, len(items))
	for i, item := range items {
		rp, ok := resolved[item.ProductID]
		if !ok {
			// product vanished between render and now; fall back to the
			// line's snapshot so display never hard-fails
			prices[i] = linePrice{Unit: item.UnitPrice}
			continue
		}
		unit := rp.Price
		if item.VariantID != nil {
			unit = unit.Add(variantDeltas[*item.VariantID])
		}
		prices[i] = linePrice{Unit: unit.Round(2), Sale: rp.Sale}
	}

	return prices, nil
}

func sumSubtotal(items []model.CartItem, prices []linePrice) decimal.Decimal {
	subtotal := decimal.Zero
	for i, item := range items {
		subtotal = subtotal.Add(prices[i].Unit.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return subtotal.Round(2)
}

func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
