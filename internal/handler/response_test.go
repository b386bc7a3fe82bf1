package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"storefront-api/internal/dto"
	"storefront-api/internal/service"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", fmt.Errorf("%w: order", service.ErrNotFound), http.StatusNotFound},
		{"validation", fmt.Errorf("%w: cart is empty", service.ErrValidation), http.StatusBadRequest},
		{"unauthorized", service.ErrUnauthorized, http.StatusUnauthorized},
		{"bad signature", service.ErrSignatureInvalid, http.StatusUnauthorized},
		{"forbidden", service.ErrForbidden, http.StatusForbidden},
		{"conflict", service.ErrConflict, http.StatusConflict},
		{"transition", fmt.Errorf("%w: status", service.ErrInvalidTransition), http.StatusConflict},
		{"gateway", fmt.Errorf("%w: timeout", service.ErrPaymentProvider), http.StatusBadGateway},
		{"echo error", echo.NewHTTPError(http.StatusRequestEntityTooLarge, "too big"), http.StatusRequestEntityTooLarge},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := classify(tt.err)
			assert.Equal(t, tt.status, status)
		})
	}
}

func TestHTTPErrorHandler_HidesInternalErrors(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("dial tcp 10.0.0.1:3306: refused"), c)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var env dto.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "internal server error", env.Message)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Internal Server Error", *env.Error)
	assert.Equal(t, http.StatusInternalServerError, env.StatusCode)
}

func TestRequestValidator(t *testing.T) {
	v := NewRequestValidator()

	err := v.Validate(&dto.AddCartItemRequest{VariantID: "tshirt-black-m", Quantity: 2})
	assert.NoError(t, err)

	err = v.Validate(&dto.AddCartItemRequest{Quantity: -1})
	require.ErrorIs(t, err, service.ErrValidation)
	assert.Contains(t, err.Error(), "variantId is required")
	assert.Contains(t, err.Error(), "quantity must satisfy gt=0")

	zero := 0
	assert.NoError(t, v.Validate(&dto.UpdateCartItemRequest{Quantity: &zero}))
	assert.ErrorIs(t, v.Validate(&dto.UpdateCartItemRequest{}), service.ErrValidation)

	err = v.Validate(&dto.CheckoutRequest{BillingAddressID: "a", ShippingAddressID: "a", PaymentMethod: "BITCOIN"})
	require.ErrorIs(t, err, service.ErrValidation)
	assert.Contains(t, err.Error(), "paymentMethod")
}
