package handler

import (
	"net/http"
	"storefront-api/internal/dto"
	"storefront-api/internal/middleware"
	"storefront-api/internal/model"
	"storefront-api/internal/service"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	checkoutService service.CheckoutService
	orderService    service.OrderService
}

func NewOrderHandler(checkoutService service.CheckoutService, orderService service.OrderService) *OrderHandler {
	return &OrderHandler{
		checkoutService: checkoutService,
		orderService:    orderService,
	}
}

func (h *OrderHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CheckoutRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.checkoutService.Checkout(ctx, service.CheckoutInput{
		CustomerID:        middleware.CustomerID(c),
		CartID:            c.Param("cartId"),
		BillingAddressID:  req.BillingAddressID,
		ShippingAddressID: req.ShippingAddressID,
		Currency:          req.Currency,
		PaymentMethod:     model.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		return err
	}

	res := &dto.CheckoutResponse{
		OrderID:       result.OrderID,
		OrderNumber:   result.OrderNumber,
		Total:         result.Total,
		Currency:      result.Currency,
		PaymentMethod: result.PaymentMethod.String(),
		Provider:      result.Provider,
		ClientToken:   result.ClientToken,
	}
	message := "order placed, pay on delivery"
	if result.PaymentURL != "" {
		res.PaymentURL = &result.PaymentURL
		message = "redirect to payment"
	} else if result.ClientToken != "" {
		message = "complete payment with client token"
	}

	return respond(c, http.StatusCreated, message, res)
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	orders, err := h.orderService.ListOrders(ctx, middleware.CustomerID(c))
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "orders", dto.NewOrderResponses(orders))
}

// GetOrder lets admins read any order and customers only their own.
func (h *OrderHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()

	customerID := middleware.CustomerID(c)
	if middleware.IsAdmin(c) {
		customerID = ""
	}

	order, err := h.orderService.GetOrder(ctx, customerID, c.Param("id"))
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "order", dto.NewOrderResponse(order))
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.OrderStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	order, err := h.orderService.UpdateOrderStatus(ctx, c.Param("id"), model.OrderStatus(req.Status), req.Force)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "order status updated", dto.NewOrderResponse(order))
}

func (h *OrderHandler) UpdatePaymentStatus(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.PaymentStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	order, err := h.orderService.UpdatePaymentStatus(ctx, c.Param("id"), model.PaymentStatus(req.PaymentStatus), req.Force)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "payment status updated", dto.NewOrderResponse(order))
}

func (h *OrderHandler) UpdateFulfillmentStatus(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.FulfillmentStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	order, err := h.orderService.UpdateFulfillmentStatus(ctx, c.Param("id"), model.FulfillmentStatus(req.FulfillmentStatus), req.Force)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "fulfillment status updated", dto.NewOrderResponse(order))
}

func (h *OrderHandler) RecordCashPayment(c echo.Context) error {
	ctx := c.Request().Context()

	order, err := h.orderService.RecordCashPayment(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "cash payment recorded", dto.NewOrderResponse(order))
}

func (h *OrderHandler) Refund(c echo.Context) error {
	ctx := c.Request().Context()

	order, err := h.orderService.RefundPayment(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "payment refunded", dto.NewOrderResponse(order))
}
