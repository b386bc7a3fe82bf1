package handler

import (
	"net/http"
	"storefront-api/internal/service"

	"github.com/labstack/echo/v4"
)

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

func (h *CatalogHandler) ListVariants(c echo.Context) error {
	ctx := c.Request().Context()

	variants, err := h.catalogService.ListVariants(ctx)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "variants", variants)
}
