package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront-checkout/internal/apperr"
	"storefront-checkout/internal/model"
	"storefront-checkout/internal/repository"
)

type CouponTerms struct {
	Code          string
	DiscountType  model.DiscountType
	DiscountValue decimal.Decimal
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
}

type CouponService interface {
	Apply(ctx context.Context, cartID uint, code string, actor Actor) (*CouponTerms, error)
	Remove(ctx context.Context, cartID uint, actor Actor) error
	// Validate runs the activity/limit/minimum chain against a subtotal. The
	// tx matters: OrderAssembler re-validates inside its transaction so limit
	// counts see that transaction's view.
	Validate(ctx context.Context, tx *gorm.DB, coupon *model.Coupon, subtotal decimal.Decimal, userID *uint) error
}

type couponServiceImpl struct {
	db          *gorm.DB
	cartRepo    repository.CartRepository
	couponRepo  repository.CouponRepository
	productRepo repository.ProductRepository
	pricing     PriceResolver
}

func NewCouponService(
	db *gorm.DB,
	cartRepo repository.CartRepository,
	couponRepo repository.CouponRepository,
	productRepo repository.ProductRepository,
	pricing PriceResolver,
) CouponService {
	return &couponServiceImpl{
		db:          db,
		cartRepo:    cartRepo,
		couponRepo:  couponRepo,
		productRepo: productRepo,
		pricing:     pricing,
	}
}

// Apply checks the full precondition chain in order and short-circuits on the
// first failure, each with its own reason code. The stored coupon_code is only
// a hint; OrderAssembler re-runs Validate at checkout time.
func (s *couponServiceImpl) Apply(ctx context.Context, cartID uint, code string, actor Actor) (*CouponTerms, error) {
	cart, err := s.cartRepo.FindByID(ctx, cartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, apperr.ReasonCartNotFound, "cart not found")
		}
		return nil, err
	}

	if !actor.OwnsCart(cart) {
		return nil, apperr.New(apperr.Authorization, apperr.ReasonNotCartOwner, "cart belongs to another shopper")
	}

	normalized := repository.NormalizeCode(code)
	if cart.CouponCode != nil && *cart.CouponCode == normalized {
		return nil, apperr.New(apperr.Conflict, apperr.ReasonCouponAlreadyApplied, "coupon already applied to this cart")
	}

	coupon, err := s.couponRepo.FindByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, apperr.ReasonCouponNotFound, "coupon code does not exist")
		}
		return nil, err
	}

	prices, err := resolveLinePrices(ctx, s.productRepo, s.pricing, cart.Items)
	if err != nil {
		return nil, err
	}
	subtotal := sumSubtotal(cart.Items, prices)

	if err := s.Validate(ctx, s.db, coupon, subtotal, actor.UserID); err != nil {
		return nil, err
	}

	if err := s.cartRepo.SetCouponCode(ctx, s.db, cart.ID, &normalized); err != nil {
		return nil, err
	}

	discount := CouponDiscount(coupon, subtotal)
	return &CouponTerms{
		Code:          coupon.Code,
		DiscountType:  coupon.DiscountType,
		DiscountValue: coupon.DiscountValue,
		Subtotal:      subtotal,
		Discount:      discount,
		Total:         floorZero(subtotal.Sub(discount)).Round(2),
	}, nil
}

func (s *couponServiceImpl) Remove(ctx context.Context, cartID uint, actor Actor) error {
	cart, err := s.cartRepo.FindByID(ctx, cartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, apperr.ReasonCartNotFound, "cart not found")
		}
		return err
	}

	if !actor.OwnsCart(cart) {
		return apperr.New(apperr.Authorization, apperr.ReasonNotCartOwner, "cart belongs to another shopper")
	}

	return s.cartRepo.SetCouponCode(ctx, s.db, cart.ID, nil)
}

func (s *couponServiceImpl) Validate(ctx context.Context, tx *gorm.DB, coupon *model.Coupon, subtotal decimal.Decimal, userID *uint) error {
	if !coupon.Active {
		return apperr.New(apperr.Validation, apperr.ReasonCouponInactive, "coupon is disabled")
	}

	now := time.Now()
	if coupon.StartsAt != nil && now.Before(*coupon.StartsAt) {
		return apperr.New(apperr.Validation, apperr.ReasonCouponNotStarted, "coupon is not active yet")
	}
	if coupon.ExpiresAt != nil && now.After(*coupon.ExpiresAt) {
		return apperr.New(apperr.Validation, apperr.ReasonCouponExpired, "coupon has expired")
	}

	// the redemption row count is the source of truth, not a cached counter
	if coupon.MaxRedemptions != nil {
		count, err := s.couponRepo.CountRedemptions(ctx, tx, coupon.ID)
		if err != nil {
			return err
		}
		if count >= int64(*coupon.MaxRedemptions) {
			return apperr.New(apperr.Conflict, apperr.ReasonCouponExhausted, "coupon redemption limit reached")
		}
	}

	// only enforceable for signed-in shoppers; guest carts cannot check out
	// directly, so every redemption row still ends up user-bound
	if userID != nil && coupon.PerCustomerLimit > 0 {
		count, err := s.couponRepo.CountRedemptionsByUser(ctx, tx, coupon.ID, *userID)
		if err != nil {
			return err
		}
		if count >= int64(coupon.PerCustomerLimit) {
			return apperr.New(apperr.Conflict, apperr.ReasonCouponCustomerLimit, "you have used this coupon the maximum number of times")
		}
	}

	if coupon.MinOrderAmount.IsPositive() && subtotal.LessThan(coupon.MinOrderAmount) {
		return apperr.New(apperr.Validation, apperr.ReasonCouponMinOrder, "cart subtotal is below the coupon minimum")
	}

	return nil
}

// CouponDiscount computes the discount the coupon grants on a subtotal.
func CouponDiscount(coupon *model.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	if coupon.DiscountType == model.DiscountPercent {
		return subtotal.Mul(coupon.DiscountValue).Div(oneHundred).Round(2)
	}
	return coupon.DiscountValue.Round(2)
}
