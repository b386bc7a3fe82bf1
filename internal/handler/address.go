package handler

import (
	"net/http"
	"storefront-api/internal/dto"
	"storefront-api/internal/middleware"
	"storefront-api/internal/service"

	"github.com/labstack/echo/v4"
)

type AddressHandler struct {
	addressService service.AddressService
}

func NewAddressHandler(addressService service.AddressService) *AddressHandler {
	return &AddressHandler{
		addressService: addressService,
	}
}

func (h *AddressHandler) ListAddresses(c echo.Context) error {
	ctx := c.Request().Context()

	addresses, err := h.addressService.List(ctx, middleware.CustomerID(c))
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "addresses", addresses)
}

func (h *AddressHandler) CreateAddress(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.AddressRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	address, err := h.addressService.Create(ctx, middleware.CustomerID(c), service.AddressInput{
		FullName:   req.FullName,
		Email:      req.Email,
		Phone:      req.Phone,
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Country:    req.Country,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, "address created", address)
}
