package handler

import (
	"net/http"
	"storefront-api/internal/dto"
	"storefront-api/internal/middleware"
	"storefront-api/internal/service"

	"github.com/labstack/echo/v4"
)

type CartHandler struct {
	cartService service.CartService
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

func (h *CartHandler) GetCart(c echo.Context) error {
	ctx := c.Request().Context()

	cart, err := h.cartService.GetCart(ctx, middleware.CustomerID(c))
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "cart", dto.NewCartResponse(cart))
}

func (h *CartHandler) CreateCart(c echo.Context) error {
	ctx := c.Request().Context()

	cart, err := h.cartService.GetOrCreateCart(ctx, middleware.CustomerID(c))
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "cart", dto.NewCartResponse(cart))
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.cartService.Clear(ctx, middleware.CustomerID(c), ""); err != nil {
		return err
	}

	return respond(c, http.StatusOK, "cart cleared", nil)
}

// AddItem accepts the variant in the body or, on /cart/items/:id, in the path.
func (h *CartHandler) AddItem(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if id := c.Param("id"); id != "" {
		req.VariantID = id
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	cart, err := h.cartService.AddItem(ctx, middleware.CustomerID(c), req.CartID, req.VariantID, req.Quantity)
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, "item added", dto.NewCartResponse(cart))
}

func (h *CartHandler) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.UpdateCartItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	cart, err := h.cartService.UpdateItemQty(ctx, middleware.CustomerID(c), c.Param("id"), *req.Quantity)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "item updated", dto.NewCartResponse(cart))
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()

	cart, err := h.cartService.RemoveItem(ctx, middleware.CustomerID(c), c.Param("id"))
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "item removed", dto.NewCartResponse(cart))
}
