package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	dbclient "storefront-checkout/internal/client"
	"storefront-checkout/internal/model"
	"storefront-checkout/internal/notify"
	"storefront-checkout/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, dbclient.AutoMigrate(db))
	return db
}

// fakeGateway satisfies client.PaymentGateway without any network traffic.
type fakeGateway struct {
	initCalls    int
	lastInit     initCall
	initErr      error
	verifyResult *dbclient.VerifiedTransaction
	verifyErr    error
}

type initCall struct {
	email       string
	amountMinor int64
	currency    string
	callbackURL string
	reference   string
	metadata    dbclient.TxnMetadata
}

func (f *fakeGateway) Initialize(_ context.Context, email string, amountMinor int64, currency, callbackURL, reference string, metadata dbclient.TxnMetadata) (*dbclient.InitializeResult, error) {
	f.initCalls++
	f.lastInit = initCall{email, amountMinor, currency, callbackURL, reference, metadata}
	if f.initErr != nil {
		return nil, f.initErr
	}
	return &dbclient.InitializeResult{
		AuthorizationURL: "https://pay.test/authorize/" + reference,
		Reference:        reference,
	}, nil
}

func (f *fakeGateway) Verify(_ context.Context, reference string) (*dbclient.VerifiedTransaction, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	if f.verifyResult != nil {
		return f.verifyResult, nil
	}
	return nil, fmt.Errorf("no transaction for %s", reference)
}

func (f *fakeGateway) ValidateWebhookSignature(signature string, _ []byte) error {
	if signature != "valid-signature" {
		return fmt.Errorf("webhook signature mismatch")
	}
	return nil
}

// fakeNotifier counts sends per template.
type fakeNotifier struct {
	sends map[string]int
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{sends: map[string]int{}}
}

func (f *fakeNotifier) Send(_ context.Context, _, template string, _ map[string]interface{}) error {
	f.sends[template]++
	return nil
}

var _ notify.Sender = (*fakeNotifier)(nil)

type testEnv struct {
	db            *gorm.DB
	gateway       *fakeGateway
	notifier      *fakeNotifier
	userRepo      repository.UserRepository
	productRepo   repository.ProductRepository
	flashSaleRepo repository.FlashSaleRepository
	couponRepo    repository.CouponRepository
	cartRepo      repository.CartRepository
	orderRepo     repository.OrderRepository
	pricing       PriceResolver
	coupons       CouponService
	carts         CartService
	orders        OrderService
	payments      PaymentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	gateway := &fakeGateway{}
	notifier := newFakeNotifier()
	logger := zerolog.Nop()

	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	flashSaleRepo := repository.NewFlashSaleRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	addressRepo := repository.NewAddressRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	pricing := NewPriceResolver(flashSaleRepo)
	coupons := NewCouponService(db, cartRepo, couponRepo, productRepo, pricing)
	carts := NewCartService(db, cartRepo, productRepo, couponRepo, coupons, pricing)
	orders := NewOrderService(
		db, cartRepo, productRepo, couponRepo, orderRepo, addressRepo, userRepo,
		coupons, pricing, gateway, notifier, logger,
		"https://shop.test", "NGN",
	)
	payments := NewPaymentService(db, orderRepo, userRepo, webhookEventRepo, gateway, notifier, logger)

	return &testEnv{
		db:            db,
		gateway:       gateway,
		notifier:      notifier,
		userRepo:      userRepo,
		productRepo:   productRepo,
		flashSaleRepo: flashSaleRepo,
		couponRepo:    couponRepo,
		cartRepo:      cartRepo,
		orderRepo:     orderRepo,
		pricing:       pricing,
		coupons:       coupons,
		carts:         carts,
		orders:        orders,
		payments:      payments,
	}
}

func (e *testEnv) seedUser(t *testing.T, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, Name: "Test Shopper", Role: "customer"}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) seedProduct(t *testing.T, sku, price string, stock int) *model.Product {
	t.Helper()
	product := &model.Product{
		Name:      "Product " + sku,
		SKU:       sku,
		BasePrice: dec(price),
		Stock:     stock,
		Published: true,
	}
	require.NoError(t, e.db.Create(product).Error)
	return product
}

func (e *testEnv) seedSale(t *testing.T, priority int, discountType model.DiscountType, value string, window time.Duration, productIDs ...uint) *model.FlashSale {
	t.Helper()
	sale := &model.FlashSale{
		Name:          fmt.Sprintf("sale-p%d", priority),
		DiscountType:  discountType,
		DiscountValue: dec(value),
		StartsAt:      time.Now().Add(-window),
		EndsAt:        time.Now().Add(window),
		Priority:      priority,
	}
	for _, id := range productIDs {
		sale.Products = append(sale.Products, model.FlashSaleProduct{ProductID: id})
	}
	require.NoError(t, e.db.Create(sale).Error)
	return sale
}

func (e *testEnv) seedCoupon(t *testing.T, coupon *model.Coupon) *model.Coupon {
	t.Helper()
	coupon.Code = repository.NormalizeCode(coupon.Code)
	require.NoError(t, e.db.Create(coupon).Error)
	return coupon
}

func userActor(user *model.User) Actor {
	return Actor{UserID: &user.ID, Role: user.Role}
}

func guestActor(token string) Actor {
	return Actor{SessionToken: token, Role: "guest"}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireDecEqual(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

func ptr[T any](v T) *T { return &v }
