package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"storefront-checkout/internal/model"
	"storefront-checkout/internal/repository"
)

// AppliedSale identifies the flash sale that won price resolution for a
// product, with the discount that was actually applied (the sale's own, or
// the per-product override).
type AppliedSale struct {
	FlashSaleID   uint
	Name          string
	DiscountType  model.DiscountType
	DiscountValue decimal.Decimal
}

type ResolvedPrice struct {
	Price decimal.Decimal
	Sale  *AppliedSale // nil when no sale is active
}

// PriceResolver is the single pricing authority consulted by both the cart
// display path and order assembly, so the price shown tracks the price
// charged.
type PriceResolver interface {
	Resolve(ctx context.Context, productID uint, basePrice decimal.Decimal) (*ResolvedPrice, error)
	ResolveBatch(ctx context.Context, basePrices map[uint]decimal.Decimal) (map[uint]*ResolvedPrice, error)
}

type priceResolverImpl struct {
	flashSaleRepo repository.FlashSaleRepository
}

func NewPriceResolver(flashSaleRepo repository.FlashSaleRepository) PriceResolver {
	return &priceResolverImpl{
		flashSaleRepo: flashSaleRepo,
	}
}

func (r *priceResolverImpl) Resolve(ctx context.Context, productID uint, basePrice decimal.Decimal) (*ResolvedPrice, error) {
	resolved, err := r.ResolveBatch(ctx, map[uint]decimal.Decimal{productID: basePrice})
	if err != nil {
		return nil, err
	}
	return resolved[productID], nil
}

func (r *priceResolverImpl) ResolveBatch(ctx context.Context, basePrices map[uint]decimal.Decimal) (map[uint]*ResolvedPrice, error) {
	result := make(map[uint]*ResolvedPrice, len(basePrices))
	if len(basePrices) == 0 {
		return result, nil
	}

	productIDs := make([]uint, 0, len(basePrices))
	for id := range basePrices {
		productIDs = append(productIDs, id)
	}

	rows, err := r.flashSaleRepo.ActiveForProducts(ctx, productIDs, time.Now())
	if err != nil {
		return nil, err
	}

	// rows arrive ordered by (priority, sale id); the first row seen for a
	// product is its winning sale
	winners := make(map[uint]*repository.ActiveSaleRow, len(rows))
	for _, row := range rows {
		if _, taken := winners[row.ProductID]; !taken {
			winners[row.ProductID] = row
		}
	}

	for id, base := range basePrices {
		row, ok := winners[id]
		if !ok {
			result[id] = &ResolvedPrice{Price: base}
			continue
		}

		discountType := row.DiscountType
		discountValue := row.DiscountValue
		if row.OverrideType != nil && row.OverrideValue != nil {
			discountType = *row.OverrideType
			discountValue = *row.OverrideValue
		}

		result[id] = &ResolvedPrice{
			Price: applyDiscount(base, discountType, discountValue),
			Sale: &AppliedSale{
				FlashSaleID:   row.FlashSaleID,
				Name:          row.Name,
				DiscountType:  discountType,
				DiscountValue: discountValue,
			},
		}
	}

	return result, nil
}

var oneHundred = decimal.NewFromInt(100)

func applyDiscount(base decimal.Decimal, discountType model.DiscountType, value decimal.Decimal) decimal.Decimal {
	var price decimal.Decimal
	switch discountType {
	case model.DiscountPercent:
		price = base.Sub(base.Mul(value).Div(oneHundred))
	case model.DiscountAmount:
		price = base.Sub(value)
	default:
		price = base
	}

	price = price.Round(2)
	if price.IsNegative() {
		return decimal.Zero
	}
	return price
}
