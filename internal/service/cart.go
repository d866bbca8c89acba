package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront-checkout/internal/apperr"
	"storefront-checkout/internal/model"
	"storefront-checkout/internal/repository"
)

type CartTotals struct {
	Subtotal   decimal.Decimal
	Discount   decimal.Decimal
	Total      decimal.Decimal
	CouponCode *string
}

type CartService interface {
	CreateOrGet(ctx context.Context, actor Actor) (*model.Cart, error)
	// Get returns the cart with display totals: current resolved prices, and
	// the applied coupon's discount when it still validates.
	Get(ctx context.Context, actor Actor) (*model.Cart, *CartTotals, error)
	AddItem(ctx context.Context, actor Actor, productID uint, variantID *uint, quantity int) (*model.CartItem, error)
	// UpdateQuantity caps silently at available stock instead of rejecting;
	// the bool reports whether capping happened.
	UpdateQuantity(ctx context.Context, actor Actor, itemID uint, quantity int) (*model.CartItem, bool, error)
	RemoveItem(ctx context.Context, actor Actor, itemID uint) error
	Clear(ctx context.Context, actor Actor) error
	MergeGuestIntoUser(ctx context.Context, sessionToken string, userID uint) error
}

type cartServiceImpl struct {
	db          *gorm.DB
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	couponRepo  repository.CouponRepository
	couponSvc   CouponService
	pricing     PriceResolver
}

func NewCartService(
	db *gorm.DB,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	couponRepo repository.CouponRepository,
	couponSvc CouponService,
	pricing PriceResolver,
) CartService {
	return &cartServiceImpl{
		db:          db,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		couponRepo:  couponRepo,
		couponSvc:   couponSvc,
		pricing:     pricing,
	}
}

// CreateOrGet resolves the actor's cart, preferring the user key over the
// session key, and creates one on first touch.
func (s *cartServiceImpl) CreateOrGet(ctx context.Context, actor Actor) (*model.Cart, error) {
	var (
		cart *model.Cart
		err  error
	)
	if actor.UserID != nil {
		cart, err = s.cartRepo.FindByUserID(ctx, *actor.UserID)
	} else if actor.SessionToken != "" {
		cart, err = s.cartRepo.FindBySessionToken(ctx, actor.SessionToken)
	} else {
		return nil, apperr.New(apperr.Validation, apperr.ReasonCartNotFound, "no cart owner identity")
	}

	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = &model.Cart{}
	if actor.UserID != nil {
		cart.UserID = actor.UserID
	} else {
		token := actor.SessionToken
		cart.SessionToken = &token
	}
	if err := s.cartRepo.Create(ctx, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

func (s *cartServiceImpl) Get(ctx context.Context, actor Actor) (*model.Cart, *CartTotals, error) {
	cart, err := s.CreateOrGet(ctx, actor)
	if err != nil {
		return nil, nil, err
	}

	prices, err := resolveLinePrices(ctx, s.productRepo, s.pricing, cart.Items)
	if err != nil {
		return nil, nil, err
	}
	subtotal := sumSubtotal(cart.Items, prices)

	totals := &CartTotals{
		Subtotal:   subtotal,
		Discount:   decimal.Zero,
		Total:      subtotal,
		CouponCode: cart.CouponCode,
	}

	if cart.CouponCode != nil {
		coupon, err := s.couponRepo.FindByCode(ctx, *cart.CouponCode)
		if err == nil && s.couponSvc.Validate(ctx, s.db, coupon, subtotal, actor.UserID) == nil {
			totals.Discount = CouponDiscount(coupon, subtotal)
			totals.Total = floorZero(subtotal.Sub(totals.Discount)).Round(2)
		}
	}

	return cart, totals, nil
}

func (s *cartServiceImpl) AddItem(ctx context.Context, actor Actor, productID uint, variantID *uint, quantity int) (*model.CartItem, error) {
	if quantity <= 0 {
		return nil, apperr.New(apperr.Validation, apperr.ReasonBadQuantity, "quantity must be positive")
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil || !product.Published {
		return nil, apperr.New(apperr.NotFound, apperr.ReasonProductNotFound, "product not available")
	}

	name, sku := product.Name, product.SKU
	var variant *model.Variant
	if variantID != nil {
		variant, err = s.productRepo.FindVariant(ctx, *variantID)
		if err != nil || variant.ProductID != productID {
			return nil, apperr.New(apperr.NotFound, apperr.ReasonProductNotFound, "variant not available")
		}
		name, sku = product.Name+" - "+variant.Name, variant.SKU
	}

	cart, err := s.CreateOrGet(ctx, actor)
	if err != nil {
		return nil, err
	}

	// snapshot the currently displayed price; checkout re-resolves
	resolved, err := s.pricing.Resolve(ctx, productID, product.BasePrice)
	if err != nil {
		return nil, err
	}
	unitPrice := resolved.Price
	if variant != nil {
		unitPrice = unitPrice.Add(variant.PriceDelta).Round(2)
	}

	existing, err := s.cartRepo.FindItem(ctx, cart.ID, productID, variantID)
	if err == nil {
		existing.Quantity += quantity
		if err := s.cartRepo.UpdateItemQuantity(ctx, s.db, existing.ID, existing.Quantity); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	item := &model.CartItem{
		CartID:    cart.ID,
		ProductID: productID,
		VariantID: variantID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Name:      name,
		SKU:       sku,
	}
	if err := s.cartRepo.CreateItem(ctx, s.db, item); err != nil {
		return nil, err
	}

	return item, nil
}

func (s *cartServiceImpl) UpdateQuantity(ctx context.Context, actor Actor, itemID uint, quantity int) (*model.CartItem, bool, error) {
	if quantity <= 0 {
		return nil, false, apperr.New(apperr.Validation, apperr.ReasonBadQuantity, "quantity must be positive")
	}

	item, err := s.ownedItem(ctx, actor, itemID)
	if err != nil {
		return nil, false, err
	}

	stock, err := s.availableStock(ctx, item)
	if err != nil {
		return nil, false, err
	}

	// stock may have shrunk since last render; cap instead of rejecting
	capped := false
	if quantity > stock {
		quantity = stock
		capped = true
	}
	if quantity <= 0 {
		if err := s.cartRepo.DeleteItem(ctx, s.db, item.ID); err != nil {
			return nil, false, err
		}
		return nil, true, nil
	}

	if err := s.cartRepo.UpdateItemQuantity(ctx, s.db, item.ID, quantity); err != nil {
		return nil, false, err
	}
	item.Quantity = quantity

	return item, capped, nil
}

func (s *cartServiceImpl) RemoveItem(ctx context.Context, actor Actor, itemID uint) error {
	item, err := s.ownedItem(ctx, actor, itemID)
	if err != nil {
		return err
	}
	return s.cartRepo.DeleteItem(ctx, s.db, item.ID)
}

func (s *cartServiceImpl) Clear(ctx context.Context, actor Actor) error {
	cart, err := s.CreateOrGet(ctx, actor)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.cartRepo.ClearItems(ctx, tx, cart.ID); err != nil {
			return err
		}
		return s.cartRepo.SetCouponCode(ctx, tx, cart.ID, nil)
	})
}

// MergeGuestIntoUser folds a guest cart into the user's cart on sign-in.
// The guest cart record is retired afterwards, so a retried merge finds no
// cart and is a no-op; the caller clears the session cookie.
func (s *cartServiceImpl) MergeGuestIntoUser(ctx context.Context, sessionToken string, userID uint) error {
	if sessionToken == "" {
		return nil
	}

	guest, err := s.cartRepo.FindBySessionToken(ctx, sessionToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	userCart, err := s.CreateOrGet(ctx, Actor{UserID: &userID})
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, gi := range guest.Items {
			existing, err := s.cartRepo.FindItem(ctx, userCart.ID, gi.ProductID, gi.VariantID)
			if err == nil {
				if err := s.cartRepo.UpdateItemQuantity(ctx, tx, existing.ID, existing.Quantity+gi.Quantity); err != nil {
					return err
				}
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			item := &model.CartItem{
				CartID:    userCart.ID,
				ProductID: gi.ProductID,
				VariantID: gi.VariantID,
				Quantity:  gi.Quantity,
				UnitPrice: gi.UnitPrice,
				Name:      gi.Name,
				SKU:       gi.SKU,
			}
			if err := s.cartRepo.CreateItem(ctx, tx, item); err != nil {
				return err
			}
		}

		// carry the guest's coupon hint when the user cart has none
		if guest.CouponCode != nil && userCart.CouponCode == nil {
			if err := s.cartRepo.SetCouponCode(ctx, tx, userCart.ID, guest.CouponCode); err != nil {
				return err
			}
		}

		return s.cartRepo.Retire(ctx, tx, guest.ID)
	})
}

func (s *cartServiceImpl) ownedItem(ctx context.Context, actor Actor, itemID uint) (*model.CartItem, error) {
	item, err := s.cartRepo.FindItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, apperr.ReasonItemNotFound, "cart item not found")
		}
		return nil, err
	}

	cart, err := s.cartRepo.FindByID(ctx, item.CartID)
	if err != nil {
		return nil, err
	}
	if !actor.OwnsCart(cart) {
		return nil, apperr.New(apperr.Authorization, apperr.ReasonNotCartOwner, "cart belongs to another shopper")
	}

	return item, nil
}

func (s *cartServiceImpl) availableStock(ctx context.Context, item *model.CartItem) (int, error) {
	if item.VariantID != nil {
		variant, err := s.productRepo.FindVariant(ctx, *item.VariantID)
		if err != nil {
			return 0, err
		}
		return variant.Stock, nil
	}

	product, err := s.productRepo.FindByID(ctx, item.ProductID)
	if err != nil {
		return 0, err
	}
	return product.Stock, nil
}
