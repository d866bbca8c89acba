package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"storefront-checkout/internal/dto"
	"storefront-checkout/internal/model"
	"storefront-checkout/internal/service"
)

type AdminHandler struct {
	promoService service.PromoAdminService
}

func NewAdminHandler(promoService service.PromoAdminService) *AdminHandler {
	return &AdminHandler{
		promoService: promoService,
	}
}

func (h *AdminHandler) CreateCoupon(c echo.Context) error {
	ctx := c.Request().Context()

	coupon, err := bindCoupon(c)
	if err != nil {
		return err
	}

	if err := h.promoService.CreateCoupon(ctx, coupon); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]uint{"id": coupon.ID})
}

func (h *AdminHandler) UpdateCoupon(c echo.Context) error {
	ctx := c.Request().Context()

	couponID, err := paramUint(c, "id")
	if err != nil {
		return err
	}

	coupon, err := bindCoupon(c)
	if err != nil {
		return err
	}
	coupon.ID = couponID

	if err := h.promoService.UpdateCoupon(ctx, coupon); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) DeleteCoupon(c echo.Context) error {
	ctx := c.Request().Context()

	couponID, err := paramUint(c, "id")
	if err != nil {
		return err
	}

	if err := h.promoService.DeleteCoupon(ctx, couponID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) CreateFlashSale(c echo.Context) error {
	ctx := c.Request().Context()

	sale, err := bindFlashSale(c)
	if err != nil {
		return err
	}

	if err := h.promoService.CreateFlashSale(ctx, sale); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]uint{"id": sale.ID})
}

func (h *AdminHandler) UpdateFlashSale(c echo.Context) error {
	ctx := c.Request().Context()

	saleID, err := paramUint(c, "id")
	if err != nil {
		return err
	}

	sale, err := bindFlashSale(c)
	if err != nil {
		return err
	}
	sale.ID = saleID

	if err := h.promoService.UpdateFlashSale(ctx, sale); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) DeleteFlashSale(c echo.Context) error {
	ctx := c.Request().Context()

	saleID, err := paramUint(c, "id")
	if err != nil {
		return err
	}

	if err := h.promoService.DeleteFlashSale(ctx, saleID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func bindCoupon(c echo.Context) (*model.Coupon, error) {
	var req dto.CouponRequest
	if err := c.Bind(&req); err != nil || req.Code == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid coupon payload")
	}

	value, err := decimal.NewFromString(req.DiscountValue)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid discount value")
	}
	minOrder := decimal.Zero
	if req.MinOrderAmount != "" {
		minOrder, err = decimal.NewFromString(req.MinOrderAmount)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid minimum order amount")
		}
	}

	coupon := &model.Coupon{
		Code:             req.Code,
		DiscountType:     model.DiscountType(req.DiscountType),
		DiscountValue:    value,
		MinOrderAmount:   minOrder,
		MaxRedemptions:   req.MaxRedemptions,
		PerCustomerLimit: req.PerCustomerLimit,
		Active:           req.Active,
	}

	if req.StartsAt != nil {
		t, err := time.Parse(time.RFC3339, *req.StartsAt)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid starts_at")
		}
		coupon.StartsAt = &t
	}
	if req.ExpiresAt != nil {
		t, err := time.Parse(time.RFC3339, *req.ExpiresAt)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid expires_at")
		}
		coupon.ExpiresAt = &t
	}

	return coupon, nil
}

func bindFlashSale(c echo.Context) (*model.FlashSale, error) {
	var req dto.FlashSaleRequest
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid flash sale payload")
	}

	value, err := decimal.NewFromString(req.DiscountValue)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid discount value")
	}

	sale := &model.FlashSale{
		Name:          req.Name,
		DiscountType:  model.DiscountType(req.DiscountType),
		DiscountValue: value,
		StartsAt:      req.StartsAt,
		EndsAt:        req.EndsAt,
		Priority:      req.Priority,
	}

	for _, p := range req.Products {
		fsp := model.FlashSaleProduct{ProductID: p.ProductID}
		if p.OverrideType != nil && p.OverrideValue != nil {
			ot := model.DiscountType(*p.OverrideType)
			ov, err := decimal.NewFromString(*p.OverrideValue)
			if err != nil {
				return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid override value")
			}
			fsp.OverrideType = &ot
			fsp.OverrideValue = &ov
		}
		sale.Products = append(sale.Products, fsp)
	}

	return sale, nil
}
