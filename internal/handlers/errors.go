package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/go-storefront-checkout/internal/cart"
	"github.com/imrishuroy/go-storefront-checkout/internal/catalog"
	"github.com/imrishuroy/go-storefront-checkout/internal/checkout"
	"github.com/imrishuroy/go-storefront-checkout/internal/coupon"
	"github.com/imrishuroy/go-storefront-checkout/internal/orders"
	"github.com/imrishuroy/go-storefront-checkout/internal/validation"
)

// writeError maps domain errors to responses. Anything unrecognised is a 500.
func writeError(c *gin.Context, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "fields": verr.Fields})
	case errors.Is(err, validation.ErrMalformedBody):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request_body", "message": err.Error()})
	case errors.Is(err, coupon.ErrInvalidCoupon):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid_coupon", "message": coupon.RejectionMessage})
	case errors.Is(err, validation.ErrUnknownField):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown_field", "message": err.Error()})
	case errors.Is(err, cart.ErrLineNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "line_not_found", "message": err.Error()})
	case errors.Is(err, catalog.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product_not_found", "message": err.Error()})
	case errors.Is(err, orders.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found", "message": err.Error()})
	case errors.Is(err, checkout.ErrEmptyCart):
		c.JSON(http.StatusConflict, gin.H{"error": "empty_cart", "message": err.Error()})
	case errors.Is(err, checkout.ErrSubmitting):
		c.JSON(http.StatusConflict, gin.H{"error": "order_in_progress", "message": err.Error()})
	case errors.Is(err, checkout.ErrConfirmed):
		c.JSON(http.StatusConflict, gin.H{"error": "order_already_placed", "message": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
