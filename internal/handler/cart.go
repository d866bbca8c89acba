package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"storefront-checkout/internal/dto"
	"storefront-checkout/internal/middleware"
	"storefront-checkout/internal/model"
	"storefront-checkout/internal/service"
)

type CartHandler struct {
	cartService   service.CartService
	couponService service.CouponService
}

func NewCartHandler(cartService service.CartService, couponService service.CouponService) *CartHandler {
	return &CartHandler{
		cartService:   cartService,
		couponService: couponService,
	}
}

func (h *CartHandler) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	actor := middleware.ActorFrom(c)

	cart, totals, err := h.cartService.Get(ctx, actor)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, cartResponse(cart, totals))
}

func (h *CartHandler) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	actor := middleware.ActorFrom(c)

	var req dto.AddItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	item, err := h.cartService.AddItem(ctx, actor, req.ProductID, req.VariantID, req.Quantity)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, cartItemResponse(item))
}

func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	actor := middleware.ActorFrom(c)

	itemID, err := paramUint(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateQuantityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	item, capped, err := h.cartService.UpdateQuantity(ctx, actor, itemID, req.Quantity)
	if err != nil {
		return err
	}

	resp := dto.UpdateQuantityResponse{Capped: capped}
	if item != nil {
		r := cartItemResponse(item)
		resp.Item = &r
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	actor := middleware.ActorFrom(c)

	itemID, err := paramUint(c, "id")
	if err != nil {
		return err
	}

	if err := h.cartService.RemoveItem(ctx, actor, itemID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHandler) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	actor := middleware.ActorFrom(c)

	if err := h.cartService.Clear(ctx, actor); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHandler) ApplyCoupon(c echo.Context) error {
	ctx := c.Request().Context()
	actor := middleware.ActorFrom(c)

	var req dto.ApplyCouponRequest
	if err := c.Bind(&req); err != nil || req.Code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing coupon code")
	}

	cart, err := h.cartService.CreateOrGet(ctx, actor)
	if err != nil {
		return err
	}

	terms, err := h.couponService.Apply(ctx, cart.ID, req.Code, actor)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.CouponTermsResponse{
		Code:     terms.Code,
		Subtotal: terms.Subtotal.StringFixed(2),
		Discount: terms.Discount.StringFixed(2),
		Total:    terms.Total.StringFixed(2),
	})
}

func (h *CartHandler) RemoveCoupon(c echo.Context) error {
	ctx := c.Request().Context()
	actor := middleware.ActorFrom(c)

	cart, err := h.cartService.CreateOrGet(ctx, actor)
	if err != nil {
		return err
	}

	if err := h.couponService.Remove(ctx, cart.ID, actor); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Merge is invoked once after sign-in; it consumes the guest session cookie
// so retries find no guest cart.
func (h *CartHandler) Merge(c echo.Context) error {
	ctx := c.Request().Context()
	actor := middleware.ActorFrom(c)

	if actor.UserID == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "sign in required")
	}
	if actor.SessionToken == "" {
		return c.NoContent(http.StatusNoContent)
	}

	if err := h.cartService.MergeGuestIntoUser(ctx, actor.SessionToken, *actor.UserID); err != nil {
		return err
	}

	middleware.ClearSessionCookie(c)
	return c.NoContent(http.StatusNoContent)
}

func cartItemResponse(item *model.CartItem) dto.CartItemResponse {
	return dto.CartItemResponse{
		ID:        item.ID,
		ProductID: item.ProductID,
		VariantID: item.VariantID,
		Name:      item.Name,
		SKU:       item.SKU,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice.StringFixed(2),
	}
}

func cartResponse(cart *model.Cart, totals *service.CartTotals) dto.CartResponse {
	items := make([]dto.CartItemResponse, len(cart.Items))
	for i := range cart.Items {
		items[i] = cartItemResponse(&cart.Items[i])
	}
	return dto.CartResponse{
		ID:         cart.ID,
		Items:      items,
		CouponCode: totals.CouponCode,
		Subtotal:   totals.Subtotal.StringFixed(2),
		Discount:   totals.Discount.StringFixed(2),
		Total:      totals.Total.StringFixed(2),
	}
}

func paramUint(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return uint(v), nil
}
