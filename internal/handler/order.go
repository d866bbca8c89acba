package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront-checkout/internal/dto"
	"storefront-checkout/internal/middleware"
	"storefront-checkout/internal/model"
	"storefront-checkout/internal/service"
)

type OrderHandler struct {
	orderService service.OrderService
	cartService  service.CartService
}

func NewOrderHandler(orderService service.OrderService, cartService service.CartService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		cartService:  cartService,
	}
}

func (h *OrderHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	actor := middleware.ActorFrom(c)

	var req dto.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	cartID := req.CartID
	if cartID == 0 {
		cart, err := h.cartService.CreateOrGet(ctx, actor)
		if err != nil {
			return err
		}
		cartID = cart.ID
	}

	result, err := h.orderService.CreateOrderFromCart(ctx, cartID, *actor.UserID, req.AddressID, req.CouponCode)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.CheckoutResponse{
		OrderID:          result.Order.ID,
		Reference:        result.Order.Reference,
		TotalAmount:      result.Order.TotalAmount.StringFixed(2),
		Currency:         result.Order.Currency,
		AuthorizationURL: result.AuthorizationURL,
	})
}

func (h *OrderHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	actor := middleware.ActorFrom(c)

	orders, err := h.orderService.ListForUser(ctx, *actor.UserID)
	if err != nil {
		return err
	}

	resp := make([]dto.OrderResponse, len(orders))
	for i, order := range orders {
		resp[i] = orderResponse(order)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	actor := middleware.ActorFrom(c)

	orderID, err := paramUint(c, "id")
	if err != nil {
		return err
	}

	order, err := h.orderService.Get(ctx, orderID, *actor.UserID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orderResponse(order))
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := paramUint(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil || req.Status == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing status")
	}

	order, err := h.orderService.UpdateStatus(ctx, orderID,
		model.OrderStatus(req.Status), model.ActorAdmin, req.Note)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orderResponse(order))
}

func (h *OrderHandler) History(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := paramUint(c, "id")
	if err != nil {
		return err
	}

	entries, err := h.orderService.History(ctx, orderID)
	if err != nil {
		return err
	}

	resp := make([]dto.StatusHistoryResponse, len(entries))
	for i, e := range entries {
		resp[i] = dto.StatusHistoryResponse{
			FromStatus: string(e.FromStatus),
			ToStatus:   string(e.ToStatus),
			Actor:      e.Actor,
			Note:       e.Note,
			CreatedAt:  e.CreatedAt,
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func orderResponse(order *model.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = dto.OrderItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			SKU:       item.SKU,
			UnitPrice: item.UnitPrice.StringFixed(2),
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal.StringFixed(2),
		}
	}
	return dto.OrderResponse{
		ID:            order.ID,
		Reference:     order.Reference,
		Status:        string(order.Status),
		PaymentStatus: string(order.PaymentStatus),
		Subtotal:      order.Subtotal.StringFixed(2),
		Discount:      order.Discount.StringFixed(2),
		TotalAmount:   order.TotalAmount.StringFixed(2),
		Currency:      order.Currency,
		CouponCode:    order.CouponCode,
		CreatedAt:     order.CreatedAt,
		Items:         items,
	}
}
