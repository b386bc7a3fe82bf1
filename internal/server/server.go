package server

import (
	"context"
	"net/http"
	"storefront-api/internal/handler"
	"storefront-api/internal/middleware"
	"storefront-api/internal/service"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Services struct {
	Cart     service.CartService
	Catalog  service.CatalogService
	Address  service.AddressService
	Checkout service.CheckoutService
	Order    service.OrderService
}

type Options struct {
	JWTSecret       string
	DefaultProvider string
}

type Server struct {
	echo           *echo.Echo
	jwtSecret      string
	cartHandler    *handler.CartHandler
	catalogHandler *handler.CatalogHandler
	addressHandler *handler.AddressHandler
	orderHandler   *handler.OrderHandler
	paymentHandler *handler.PaymentHandler
}

func NewServer(svc Services, opts Options, log zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewRequestValidator()
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(log)

	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(echo.WrapMiddleware(otelhttp.NewMiddleware("storefront-api")))
	e.Use(middleware.RequestLogger(log))

	s := &Server{
		echo:           e,
		jwtSecret:      opts.JWTSecret,
		cartHandler:    handler.NewCartHandler(svc.Cart),
		catalogHandler: handler.NewCatalogHandler(svc.Catalog),
		addressHandler: handler.NewAddressHandler(svc.Address),
		orderHandler:   handler.NewOrderHandler(svc.Checkout, svc.Order),
		paymentHandler: handler.NewPaymentHandler(svc.Order, opts.DefaultProvider),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	api.GET("/variants", s.catalogHandler.ListVariants)

	// -------- payment webhooks (signature checked, no bearer token) --------
	api.POST("/payment/webhook", s.paymentHandler.Webhook)
	api.POST("/payment/webhook/:provider", s.paymentHandler.Webhook)

	auth := api.Group("", middleware.Auth(s.jwtSecret))

	// -------- cart --------
	auth.GET("/cart", s.cartHandler.GetCart)
	auth.POST("/cart", s.cartHandler.CreateCart)
	auth.DELETE("/cart", s.cartHandler.ClearCart)
	auth.POST("/cart/items", s.cartHandler.AddItem)
	auth.POST("/cart/items/:id", s.cartHandler.AddItem)
	auth.PATCH("/cart/items/:id", s.cartHandler.UpdateItem)
	auth.DELETE("/cart/items/:id", s.cartHandler.RemoveItem)

	// -------- addresses --------
	auth.GET("/addresses", s.addressHandler.ListAddresses)
	auth.POST("/addresses", s.addressHandler.CreateAddress)

	// -------- orders --------
	auth.POST("/orders/checkout-session/:cartId", s.orderHandler.Checkout)
	auth.GET("/orders", s.orderHandler.ListOrders)
	auth.GET("/orders/:id", s.orderHandler.GetOrder)
	auth.POST("/payment/:provider/confirm", s.paymentHandler.Confirm)

	admin := auth.Group("", middleware.RequireAdmin())
	admin.PATCH("/orders/:id/status", s.orderHandler.UpdateStatus)
	admin.PATCH("/orders/:id/payment-status", s.orderHandler.UpdatePaymentStatus)
	admin.PATCH("/orders/:id/fulfillment-status", s.orderHandler.UpdateFulfillmentStatus)
	admin.POST("/orders/:id/cash-payment", s.orderHandler.RecordCashPayment)
	admin.POST("/orders/:id/refund", s.orderHandler.Refund)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
