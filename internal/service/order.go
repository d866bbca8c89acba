package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront-checkout/internal/apperr"
	"storefront-checkout/internal/client"
	"storefront-checkout/internal/model"
	"storefront-checkout/internal/notify"
	"storefront-checkout/internal/repository"
)

type CheckoutResult struct {
	Order            *model.Order
	AuthorizationURL string
}

type OrderService interface {
	// CreateOrderFromCart converts the cart into an order inside one
	// transaction, then initializes payment with the gateway post-commit.
	CreateOrderFromCart(ctx context.Context, cartID, userID uint, addressID *uint, couponCode *string) (*CheckoutResult, error)
	Get(ctx context.Context, orderID, userID uint) (*model.Order, error)
	ListForUser(ctx context.Context, userID uint) ([]*model.Order, error)
	History(ctx context.Context, orderID uint) ([]*model.OrderStatusHistory, error)
	// UpdateStatus drives the order through the status machine. A redundant
	// transition succeeds without writing history.
	UpdateStatus(ctx context.Context, orderID uint, next model.OrderStatus, actor, note string) (*model.Order, error)
}

type orderServiceImpl struct {
	db          *gorm.DB
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	couponRepo  repository.CouponRepository
	orderRepo   repository.OrderRepository
	addressRepo repository.AddressRepository
	userRepo    repository.UserRepository
	couponSvc   CouponService
	pricing     PriceResolver
	gateway     client.PaymentGateway
	notifier    notify.Sender
	logger      zerolog.Logger
	baseURL     string
	currency    string
}

func NewOrderService(
	db *gorm.DB,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	couponRepo repository.CouponRepository,
	orderRepo repository.OrderRepository,
	addressRepo repository.AddressRepository,
	userRepo repository.UserRepository,
	couponSvc CouponService,
	pricing PriceResolver,
	gateway client.PaymentGateway,
	notifier notify.Sender,
	logger zerolog.Logger,
	baseURL string,
	currency string,
) OrderService {
	return &orderServiceImpl{
		db:          db,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		couponRepo:  couponRepo,
		orderRepo:   orderRepo,
		addressRepo: addressRepo,
		userRepo:    userRepo,
		couponSvc:   couponSvc,
		pricing:     pricing,
		gateway:     gateway,
		notifier:    notifier,
		logger:      logger,
		baseURL:     baseURL,
		currency:    currency,
	}
}

func (s *orderServiceImpl) CreateOrderFromCart(ctx context.Context, cartID, userID uint, addressID *uint, couponCode *string) (*CheckoutResult, error) {
	var order *model.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.cartRepo.FindByID(ctx, cartID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.NotFound, apperr.ReasonCartNotFound, "cart not found")
			}
			return err
		}

		// guest carts must be merged into a user before checkout
		if cart.UserID == nil {
			return apperr.New(apperr.Authorization, apperr.ReasonGuestCheckout, "sign in before checking out")
		}
		if *cart.UserID != userID {
			return apperr.New(apperr.Authorization, apperr.ReasonNotCartOwner, "cart belongs to another shopper")
		}
		if len(cart.Items) == 0 {
			return apperr.New(apperr.Validation, apperr.ReasonCartEmpty, "cart is empty")
		}

		if addressID != nil {
			address, err := s.addressRepo.FindByID(ctx, *addressID)
			if err != nil || address.UserID != userID {
				return apperr.New(apperr.NotFound, apperr.ReasonAddressNotFound, "address not found")
			}
		}

		// authoritative pricing moment: re-resolve every line against current
		// base prices and active sales, never the cart's stale snapshot
		prices, err := resolveLinePrices(ctx, s.productRepo, s.pricing, cart.Items)
		if err != nil {
			return err
		}
		subtotal := sumSubtotal(cart.Items, prices)

		code := couponCode
		if code == nil {
			code = cart.CouponCode
		}

		var coupon *model.Coupon
		discount := decimal.Zero
		if code != nil {
			coupon, err = s.couponRepo.FindByCode(ctx, *code)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.New(apperr.NotFound, apperr.ReasonCouponNotFound, "coupon code does not exist")
				}
				return err
			}
			if err := s.couponSvc.Validate(ctx, tx, coupon, subtotal, &userID); err != nil {
				return err
			}
			discount = CouponDiscount(coupon, subtotal)
		}

		total := floorZero(subtotal.Sub(discount)).Round(2)

		order = &model.Order{
			// reference is ours, handed to the gateway at initialization, so
			// the order row never waits on the gateway to become addressable
			Reference:     uuid.NewString(),
			UserID:        userID,
			Status:        model.StatusPending,
			PaymentStatus: model.PaymentUnpaid,
			Subtotal:      subtotal,
			Discount:      discount,
			TotalAmount:   total,
			Currency:      s.currency,
			AddressID:     addressID,
		}
		if coupon != nil {
			order.CouponCode = &coupon.Code
		}
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("store order: %w", err)
		}

		items := make([]*model.OrderItem, len(cart.Items))
		for i, ci := range cart.Items {
			items[i] = &model.OrderItem{
				OrderID:   order.ID,
				ProductID: ci.ProductID,
				VariantID: ci.VariantID,
				Name:      ci.Name,
				SKU:       ci.SKU,
				UnitPrice: prices[i].Unit,
				Quantity:  ci.Quantity,
				LineTotal: prices[i].Unit.Mul(decimal.NewFromInt(int64(ci.Quantity))).Round(2),
			}
		}
		if err := s.orderRepo.CreateItems(ctx, tx, items); err != nil {
			return fmt.Errorf("store order items: %w", err)
		}

		// all-or-nothing: a single short line aborts the whole checkout
		for _, ci := range cart.Items {
			ok, err := s.productRepo.DecrementStock(ctx, tx, ci.ProductID, ci.VariantID, ci.Quantity)
			if err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
			if !ok {
				return apperr.New(apperr.Conflict, apperr.ReasonInsufficientStock,
					fmt.Sprintf("not enough stock for %s", ci.SKU))
			}
		}

		if coupon != nil {
			err := s.couponRepo.CreateRedemption(ctx, tx, &model.CouponRedemption{
				CouponID: coupon.ID,
				UserID:   userID,
				OrderID:  order.ID,
			})
			if err != nil {
				return fmt.Errorf("record coupon redemption: %w", err)
			}
		}

		if err := s.cartRepo.ClearItems(ctx, tx, cart.ID); err != nil {
			return err
		}
		return s.cartRepo.SetCouponCode(ctx, tx, cart.ID, nil)
	})
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user for payment init: %w", err)
	}

	init, err := s.gateway.Initialize(ctx, user.Email,
		minorUnits(order.TotalAmount), order.Currency,
		s.baseURL+"/api/payments/callback", order.Reference,
		client.TxnMetadata{OrderID: order.ID, UserID: userID},
	)
	if err != nil {
		return nil, fmt.Errorf("initialize payment for order %d: %w", order.ID, err)
	}

	// best effort; a send failure must never undo the order
	if err := s.notifier.Send(ctx, user.Email, "order_created", map[string]interface{}{
		"order_id": order.ID,
		"total":    order.TotalAmount.StringFixed(2),
		"currency": order.Currency,
	}); err != nil {
		s.logger.Warn().Err(err).Uint("order_id", order.ID).Msg("order created notification failed")
	}

	return &CheckoutResult{Order: order, AuthorizationURL: init.AuthorizationURL}, nil
}

func (s *orderServiceImpl) Get(ctx context.Context, orderID, userID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, apperr.ReasonOrderNotFound, "order not found")
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, apperr.New(apperr.Authorization, apperr.ReasonOrderNotFound, "order not found")
	}
	return order, nil
}

func (s *orderServiceImpl) ListForUser(ctx context.Context, userID uint) ([]*model.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID)
}

func (s *orderServiceImpl) History(ctx context.Context, orderID uint) ([]*model.OrderStatusHistory, error) {
	return s.orderRepo.ListStatusHistory(ctx, orderID)
}

func (s *orderServiceImpl) UpdateStatus(ctx context.Context, orderID uint, next model.OrderStatus, actor, note string) (*model.Order, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.FindByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.NotFound, apperr.ReasonOrderNotFound, "order not found")
			}
			return err
		}

		if order.Status == next {
			// redundant transition is a success, not an error
			return nil
		}
		if !model.CanTransition(order.Status, next) {
			return apperr.New(apperr.State, apperr.ReasonIllegalTransition,
				fmt.Sprintf("cannot move order from %s to %s", order.Status, next))
		}

		moved, err := s.orderRepo.UpdateStatus(ctx, tx, orderID, order.Status, next)
		if err != nil {
			return err
		}
		if !moved {
			return apperr.New(apperr.State, apperr.ReasonIllegalTransition, "order status changed concurrently")
		}

		err = s.orderRepo.AppendStatusHistory(ctx, tx, &model.OrderStatusHistory{
			OrderID:    orderID,
			FromStatus: order.Status,
			ToStatus:   next,
			Actor:      actor,
			Note:       note,
		})
		if err != nil {
			return err
		}

		// cancelling an unpaid order returns its stock
		if next == model.StatusCancelled && order.PaymentStatus == model.PaymentUnpaid {
			items, err := s.orderRepo.GetItems(ctx, tx, orderID)
			if err != nil {
				return err
			}
			for _, item := range items {
				if err := s.productRepo.RestoreStock(ctx, tx, item.ProductID, item.VariantID, item.Quantity); err != nil {
					return err
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.orderRepo.FindByID(ctx, orderID)
}

// minorUnits converts a 2dp amount to the gateway's integer minor units.
func minorUnits(amount decimal.Decimal) int64 {
	return amount.Round(2).Shift(2).IntPart()
}
