package handler

import (
	"io"
	"net/http"
	"storefront-api/internal/dto"
	"storefront-api/internal/middleware"
	"storefront-api/internal/payment"
	"storefront-api/internal/service"

	"github.com/labstack/echo/v4"
)

// maxWebhookBody bounds what a gateway callback may send.
const maxWebhookBody = 1 << 20

type PaymentHandler struct {
	orderService    service.OrderService
	defaultProvider string
}

func NewPaymentHandler(orderService service.OrderService, defaultProvider string) *PaymentHandler {
	return &PaymentHandler{
		orderService:    orderService,
		defaultProvider: defaultProvider,
	}
}

// Webhook serves both /payment/webhook (default provider) and /payment/webhook/:provider.
// The raw body is passed through untouched since signatures are computed over it.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	ctx := c.Request().Context()

	provider := c.Param("provider")
	if provider == "" {
		provider = h.defaultProvider
	}

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable body")
	}

	result, err := h.orderService.ProcessWebhook(ctx, provider, body, c.Request().Header)
	if err != nil {
		return err
	}

	message := "webhook processed"
	switch {
	case result.Ignored:
		message = "webhook ignored"
	case result.Duplicate:
		message = "webhook already processed"
	}

	return respond(c, http.StatusOK, message, dto.WebhookResponse{Message: message})
}

// Confirm finishes return-flow payments (PayPal approval token, Braintree nonce).
func (h *PaymentHandler) Confirm(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ConfirmPaymentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.orderService.ConfirmPayment(ctx, middleware.CustomerID(c), c.Param("provider"), req.OrderID, req.Token)
	if err != nil {
		return err
	}

	message := "payment confirmed"
	switch {
	case result.Ignored:
		message = "payment pending"
	case result.Duplicate:
		message = "payment already confirmed"
	case result.Status == payment.OutcomeFailed:
		message = "payment failed"
	}

	return respond(c, http.StatusOK, message, dto.NewOrderResponse(result.Order))
}
