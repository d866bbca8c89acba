package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront-checkout/internal/dto"
	"storefront-checkout/internal/middleware"
	"storefront-checkout/internal/model"
	"storefront-checkout/internal/repository"
)

type AddressHandler struct {
	addressRepo repository.AddressRepository
}

func NewAddressHandler(addressRepo repository.AddressRepository) *AddressHandler {
	return &AddressHandler{addressRepo: addressRepo}
}

func (h *AddressHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	actor := middleware.ActorFrom(c)

	var req dto.CreateAddressRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.Line1 == "" || req.City == "" || req.Country == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "line1, city and country are required")
	}

	address := &model.Address{
		UserID:  *actor.UserID,
		Line1:   req.Line1,
		City:    req.City,
		Country: req.Country,
		Phone:   req.Phone,
	}
	if err := h.addressRepo.Create(ctx, address); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, addressResponse(address))
}

func (h *AddressHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	actor := middleware.ActorFrom(c)

	addresses, err := h.addressRepo.ListByUser(ctx, *actor.UserID)
	if err != nil {
		return err
	}

	resp := make([]dto.AddressResponse, len(addresses))
	for i, a := range addresses {
		resp[i] = addressResponse(a)
	}
	return c.JSON(http.StatusOK, resp)
}

func addressResponse(address *model.Address) dto.AddressResponse {
	return dto.AddressResponse{
		ID:      address.ID,
		Line1:   address.Line1,
		City:    address.City,
		Country: address.Country,
		Phone:   address.Phone,
	}
}
