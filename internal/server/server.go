package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"storefront-checkout/internal/apperr"
	"storefront-checkout/internal/handler"
	"storefront-checkout/internal/middleware"
)

type Server struct {
	echo           *echo.Echo
	cartHandler    *handler.CartHandler
	orderHandler   *handler.OrderHandler
	paymentHandler *handler.PaymentHandler
	productHandler *handler.ProductHandler
	addressHandler *handler.AddressHandler
	adminHandler   *handler.AdminHandler
}

func NewServer(
	jwtSecret string,
	logger zerolog.Logger,
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	paymentHandler *handler.PaymentHandler,
	productHandler *handler.ProductHandler,
	addressHandler *handler.AddressHandler,
	adminHandler *handler.AdminHandler,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(echomw.RequestLogger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(middleware.Identity(jwtSecret))

	s := &Server{
		echo:           e,
		cartHandler:    cartHandler,
		orderHandler:   orderHandler,
		paymentHandler: paymentHandler,
		productHandler: productHandler,
		addressHandler: addressHandler,
		adminHandler:   adminHandler,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	api.GET("/products", s.productHandler.List)
	api.GET("/products/:id", s.productHandler.Get)

	// -------- cart --------
	cart := api.Group("/cart")
	cart.GET("", s.cartHandler.GetCart)
	cart.POST("/items", s.cartHandler.AddItem)
	cart.PATCH("/items/:id", s.cartHandler.UpdateQuantity)
	cart.DELETE("/items/:id", s.cartHandler.RemoveItem)
	cart.DELETE("", s.cartHandler.Clear)
	cart.POST("/coupon", s.cartHandler.ApplyCoupon)
	cart.DELETE("/coupon", s.cartHandler.RemoveCoupon)
	cart.POST("/merge", s.cartHandler.Merge)

	// -------- checkout & orders --------
	api.POST("/checkout", s.orderHandler.Checkout, middleware.RequireUser)
	orders := api.Group("/orders", middleware.RequireUser)
	orders.GET("", s.orderHandler.List)
	orders.GET("/:id", s.orderHandler.Get)

	addresses := api.Group("/addresses", middleware.RequireUser)
	addresses.POST("", s.addressHandler.Create)
	addresses.GET("", s.addressHandler.List)

	// -------- payment callbacks / webhooks --------
	payments := api.Group("/payments")
	payments.GET("/callback", s.paymentHandler.Callback)
	payments.POST("/webhook", s.paymentHandler.Webhook)

	// -------- admin console --------
	admin := api.Group("/admin", middleware.RequireAdmin)
	admin.PATCH("/orders/:id/status", s.orderHandler.UpdateStatus)
	admin.GET("/orders/:id/history", s.orderHandler.History)
	admin.POST("/coupons", s.adminHandler.CreateCoupon)
	admin.PUT("/coupons/:id", s.adminHandler.UpdateCoupon)
	admin.DELETE("/coupons/:id", s.adminHandler.DeleteCoupon)
	admin.POST("/flash-sales", s.adminHandler.CreateFlashSale)
	admin.PUT("/flash-sales/:id", s.adminHandler.UpdateFlashSale)
	admin.DELETE("/flash-sales/:id", s.adminHandler.DeleteFlashSale)
}

// errorHandler maps the service taxonomy onto HTTP. Reason codes pass through
// verbatim; raw internal errors never reach the client.
func errorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		if e := apperr.As(err); e != nil {
			_ = c.JSON(apperr.HTTPStatus(e), map[string]string{
				"error":   e.Reason,
				"message": e.Error(),
			})
			return
		}

		var httpErr *echo.HTTPError
		if he, ok := err.(*echo.HTTPError); ok {
			httpErr = he
		} else {
			logger.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
			httpErr = echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		_ = c.JSON(httpErr.Code, map[string]interface{}{"message": httpErr.Message})
	}
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
