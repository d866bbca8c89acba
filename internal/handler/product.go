package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"storefront-checkout/internal/dto"
	"storefront-checkout/internal/middleware"
	"storefront-checkout/internal/model"
	"storefront-checkout/internal/repository"
	"storefront-checkout/internal/service"
)

type ProductHandler struct {
	productRepo repository.ProductRepository
	pricing     service.PriceResolver
	presence    service.PresenceTracker
}

func NewProductHandler(productRepo repository.ProductRepository, pricing service.PriceResolver, presence service.PresenceTracker) *ProductHandler {
	return &ProductHandler{
		productRepo: productRepo,
		pricing:     pricing,
		presence:    presence,
	}
}

// List returns published products with flash-resolved prices from a single
// batch resolution.
func (h *ProductHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	products, err := h.productRepo.ListPublished(ctx)
	if err != nil {
		return err
	}

	basePrices := make(map[uint]decimal.Decimal, len(products))
	for _, p := range products {
		basePrices[p.ID] = p.BasePrice
	}
	resolved, err := h.pricing.ResolveBatch(ctx, basePrices)
	if err != nil {
		return err
	}

	resp := make([]dto.ProductResponse, len(products))
	for i, p := range products {
		resp[i] = productResponse(p, resolved[p.ID], 0)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ProductHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := paramUint(c, "id")
	if err != nil {
		return err
	}

	product, err := h.productRepo.FindByID(ctx, productID)
	if err != nil || !product.Published {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	resolved, err := h.pricing.Resolve(ctx, product.ID, product.BasePrice)
	if err != nil {
		return err
	}

	// viewer presence is best effort; a cache failure never breaks the page
	actor := middleware.ActorFrom(c)
	viewerKey := actor.SessionToken
	if actor.UserID != nil {
		viewerKey = "u:" + strconv.FormatUint(uint64(*actor.UserID), 10)
	}
	var viewers int64
	if viewerKey != "" {
		_ = h.presence.Touch(ctx, product.ID, viewerKey)
		viewers, _ = h.presence.ActiveViewers(ctx, product.ID)
	}

	return c.JSON(http.StatusOK, productResponse(product, resolved, viewers))
}

func productResponse(p *model.Product, resolved *service.ResolvedPrice, viewers int64) dto.ProductResponse {
	resp := dto.ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		SKU:           p.SKU,
		Description:   p.Description,
		BasePrice:     p.BasePrice.StringFixed(2),
		Price:         p.BasePrice.StringFixed(2),
		ActiveViewers: viewers,
	}
	if resolved != nil {
		resp.Price = resolved.Price.StringFixed(2)
		if resolved.Sale != nil {
			name := resolved.Sale.Name
			resp.SaleName = &name
		}
	}
	return resp
}
