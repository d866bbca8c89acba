package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront-checkout/internal/service"
)

const signatureHeader = "x-paystack-signature"

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// Callback is the shopper's return from the gateway. The reference is only a
// lookup key; trust comes from the server-to-server verify inside Reconcile.
func (h *PaymentHandler) Callback(c echo.Context) error {
	ctx := c.Request().Context()

	reference := c.QueryParam("reference")
	if reference == "" {
		// some gateway redirects use trxref
		reference = c.QueryParam("trxref")
	}
	if reference == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing transaction reference")
	}

	order, err := h.paymentService.Reconcile(ctx, reference)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orderResponse(order))
}

// Webhook handles the gateway's async delivery; the raw body is read in full
// so the signature check covers exactly what was sent.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	signature := c.Request().Header.Get(signatureHeader)
	if err := h.paymentService.HandleWebhook(ctx, signature, body); err != nil {
		return err
	}

	return c.NoContent(http.StatusOK)
}
