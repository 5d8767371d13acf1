package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-storefront-checkout/internal/cart"
	"github.com/imrishuroy/go-storefront-checkout/internal/validation"
)

// Product page defaults when no variant is picked.
const (
	defaultSize  = "M"
	defaultColor = "Black"
)

func variantOf(size, color string) cart.Variant {
	if size == "" {
		size = defaultSize
	}
	if color == "" {
		color = defaultColor
	}
	return cart.Variant{Size: size, Color: color}
}

func (h *api) respondCart(c *gin.Context, status int) {
	c.JSON(status, buildCartView(sessionFrom(c), h.Checkout.Shipping()))
}

func (h *api) getCart(c *gin.Context) {
	h.respondCart(c, http.StatusOK)
}

func (h *api) addItem(c *gin.Context) {
	var req validation.AddItemRequest
	if err := validation.Bind(c, &req, h.v); err != nil {
		writeError(c, err)
		return
	}
	p, err := h.Catalog.Get(req.ProductID)
	if err != nil {
		writeError(c, err)
		return
	}

	sess := sessionFrom(c)
	line, err := sess.Cart.AddItem(p, variantOf(req.Size, req.Color), req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	h.Logger.Debug("cart item added",
		zap.String("session_id", sess.ID),
		zap.String("line_id", line.ID),
		zap.Int("product_id", line.ProductID),
		zap.Int("quantity", line.Quantity))
	h.respondCart(c, http.StatusCreated)
}

func (h *api) increaseItem(c *gin.Context) {
	if _, err := sessionFrom(c).Cart.IncreaseQuantity(c.Param("lineID")); err != nil {
		writeError(c, err)
		return
	}
	h.respondCart(c, http.StatusOK)
}

func (h *api) decreaseItem(c *gin.Context) {
	if _, err := sessionFrom(c).Cart.DecreaseQuantity(c.Param("lineID")); err != nil {
		writeError(c, err)
		return
	}
	h.respondCart(c, http.StatusOK)
}

func (h *api) removeItem(c *gin.Context) {
	sessionFrom(c).Cart.RemoveItem(c.Param("lineID"))
	h.respondCart(c, http.StatusOK)
}

func (h *api) clearCart(c *gin.Context) {
	sessionFrom(c).Cart.Clear()
	h.respondCart(c, http.StatusOK)
}

func (h *api) applyCoupon(c *gin.Context) {
	var req validation.CouponRequest
	if err := validation.Bind(c, &req, h.v); err != nil {
		writeError(c, err)
		return
	}
	if _, err := sessionFrom(c).ApplyCoupon(req.Code); err != nil {
		writeError(c, err)
		return
	}
	h.respondCart(c, http.StatusOK)
}

func (h *api) removeCoupon(c *gin.Context) {
	sessionFrom(c).RemoveCoupon()
	h.respondCart(c, http.StatusOK)
}
