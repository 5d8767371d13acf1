package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-storefront-checkout/internal/cart"
	"github.com/imrishuroy/go-storefront-checkout/internal/checkout"
	"github.com/imrishuroy/go-storefront-checkout/internal/idempotency"
	"github.com/imrishuroy/go-storefront-checkout/internal/orders"
	"github.com/imrishuroy/go-storefront-checkout/internal/validation"
)

// buyNowLine turns the product page's {id, qty, size, color} into a cart
// line. It is priced on its own and never stored in the cart.
func (h *api) buyNowLine(item *validation.BuyNowItem) (*cart.LineItem, error) {
	if item == nil {
		return nil, nil
	}
	p, err := h.Catalog.Get(item.ID)
	if err != nil {
		return nil, err
	}
	line, err := cart.NewLine(p, variantOf(item.Size, item.Color), item.Qty)
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// buyNowFromQuery reads ?buy_now=<id>&qty=&size=&color= for the checkout view.
func buyNowFromQuery(c *gin.Context) (*validation.BuyNowItem, error) {
	raw := c.Query("buy_now")
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return nil, &validation.Error{Fields: map[string]string{"buy_now": "Invalid product id"}}
	}
	qty, err := strconv.Atoi(c.DefaultQuery("qty", "1"))
	if err != nil {
		return nil, &validation.Error{Fields: map[string]string{"qty": "Invalid quantity"}}
	}
	return &validation.BuyNowItem{ID: id, Qty: qty, Size: c.Query("size"), Color: c.Query("color")}, nil
}

func (h *api) getCheckout(c *gin.Context) {
	sess := sessionFrom(c)

	item, err := buyNowFromQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}
	buyNow, err := h.buyNowLine(item)
	if err != nil {
		writeError(c, err)
		return
	}

	snap, err := h.Checkout.Begin(c.Request.Context(), sess.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	lines := sess.Cart.Lines()
	if buyNow != nil {
		lines = []cart.LineItem{*buyNow}
	}
	v := checkoutView{
		Snapshot: snap,
		Express:  buyNow != nil,
		Empty:    len(lines) == 0,
		Items:    toLineViews(lines),
	}
	if !v.Empty {
		d := h.Checkout.Totals(sess, buyNow).Display()
		v.Totals = &d
	}
	c.JSON(http.StatusOK, v)
}

func (h *api) updateField(c *gin.Context) {
	var req validation.FieldUpdateRequest
	if err := validation.Bind(c, &req, h.v); err != nil {
		writeError(c, err)
		return
	}
	snap, err := h.Checkout.UpdateField(c.Request.Context(), sessionFrom(c).ID, c.Param("field"), req.Value)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

type placedResponse struct {
	Order       orders.Record `json:"order"`
	CartCleared bool          `json:"cart_will_clear"`
}

func (h *api) placeOrder(c *gin.Context) {
	ctx := c.Request.Context()
	sess := sessionFrom(c)

	var req validation.PlaceOrderRequest
	if c.Request.ContentLength != 0 {
		if err := validation.Bind(c, &req, h.v); err != nil {
			writeError(c, err)
			return
		}
	}
	buyNow, err := h.buyNowLine(req.BuyNow)
	if err != nil {
		writeError(c, err)
		return
	}

	key := c.GetHeader("Idempotency-Key")
	scoped := ""
	if key != "" && h.Idempotency != nil {
		scoped = sess.ID + ":" + key
		if h.replay(c, scoped) {
			return
		}

		// pending id for the record; the flow itself is left untouched
		snap, _ := h.Checkout.Flow(sess.ID)
		created, err := h.Idempotency.CreateIfNotExists(ctx, scoped, snap.OrderID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "idempotency_check_failed", "detail": err.Error()})
			return
		}
		if !created {
			if !h.replay(c, scoped) {
				c.JSON(http.StatusConflict, gin.H{"error": "idempotency_conflict"})
			}
			return
		}
	}

	conf, err := h.Checkout.PlaceOrder(ctx, sess, checkout.PlaceRequest{BuyNow: buyNow, IdempotencyKey: key})
	if err != nil {
		if scoped != "" {
			if merr := h.Idempotency.MarkFailed(ctx, scoped, err.Error()); merr != nil {
				h.Logger.Warn("failed to release idempotency key", zap.String("key", scoped), zap.Error(merr))
			}
		}
		writeError(c, err)
		return
	}

	body, err := json.Marshal(placedResponse{Order: conf.Order, CartCleared: conf.CartCleared != nil})
	if err != nil {
		writeError(c, fmt.Errorf("encode order response: %w", err))
		return
	}
	if scoped != "" {
		if err := h.Idempotency.MarkDone(ctx, scoped, string(body), http.StatusCreated); err != nil {
			h.Logger.Warn("failed to store idempotent response", zap.String("key", scoped), zap.Error(err))
		}
	}

	c.Header("Location", "/orders/"+conf.Order.ID)
	c.Data(http.StatusCreated, "application/json", body)
}

// replay answers a retried request from its idempotency record. It reports
// false when there is nothing to replay and the request should proceed.
func (h *api) replay(c *gin.Context, key string) bool {
	rec, err := h.Idempotency.Get(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "idempotency_check_failed", "detail": err.Error()})
		return true
	}
	if rec == nil {
		return false
	}
	switch rec.Status {
	case idempotency.StatusDone:
		if rec.ResponseBody != "" {
			c.Data(rec.ResponseStatus, "application/json", []byte(rec.ResponseBody))
			return true
		}
		c.JSON(http.StatusOK, gin.H{"order_id": rec.OrderID})
		return true
	case idempotency.StatusInProgress:
		c.JSON(http.StatusAccepted, gin.H{"message": "request already in progress", "order_id": rec.OrderID})
		return true
	default:
		// failed attempts may be retried
		return false
	}
}
