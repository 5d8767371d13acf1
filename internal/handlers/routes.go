package handlers

import (
	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-storefront-checkout/internal/catalog"
	"github.com/imrishuroy/go-storefront-checkout/internal/checkout"
	"github.com/imrishuroy/go-storefront-checkout/internal/idempotency"
	"github.com/imrishuroy/go-storefront-checkout/internal/session"
	"github.com/imrishuroy/go-storefront-checkout/internal/validation"
)

// HandlerConfig groups dependencies for the storefront routes.
type HandlerConfig struct {
	Catalog     *catalog.Catalog
	Sessions    *session.Registry
	Checkout    *checkout.Service
	Idempotency idempotency.Keeper
	Logger      *zap.Logger
}

type api struct {
	HandlerConfig
	v *validatorv10.Validate
}

// RegisterRoutes registers the catalog, cart, checkout and order routes.
// Everything except the catalog is scoped to the caller's session.
func RegisterRoutes(r gin.IRouter, cfg HandlerConfig) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	h := &api{HandlerConfig: cfg, v: validation.New()}

	r.GET("/products", h.listProducts)
	r.GET("/products/:id", h.getProduct)

	s := r.Group("/", SessionMiddleware(cfg.Sessions))
	s.GET("/cart", h.getCart)
	s.POST("/cart/items", h.addItem)
	s.POST("/cart/items/:lineID/increase", h.increaseItem)
	s.POST("/cart/items/:lineID/decrease", h.decreaseItem)
	s.DELETE("/cart/items/:lineID", h.removeItem)
	s.DELETE("/cart", h.clearCart)
	s.POST("/cart/coupon", h.applyCoupon)
	s.DELETE("/cart/coupon", h.removeCoupon)

	s.GET("/checkout", h.getCheckout)
	s.PUT("/checkout/form/:field", h.updateField)
	s.POST("/checkout/orders", h.placeOrder)

	s.GET("/orders", h.listOrders)
	s.GET("/orders/:orderID", h.getOrder)
}
