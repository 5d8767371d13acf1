package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-storefront-checkout/internal/catalog"
	"github.com/imrishuroy/go-storefront-checkout/internal/checkout"
	"github.com/imrishuroy/go-storefront-checkout/internal/idempotency"
	"github.com/imrishuroy/go-storefront-checkout/internal/money"
	"github.com/imrishuroy/go-storefront-checkout/internal/pricing"
	"github.com/imrishuroy/go-storefront-checkout/internal/session"
	"github.com/imrishuroy/go-storefront-checkout/internal/storage"
)

type testServer struct {
	router   *gin.Engine
	sessions *session.Registry
	checkout *checkout.Service
	keeper   *idempotency.Memory
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat, err := catalog.New(catalog.Fixture())
	require.NoError(t, err)

	ts := &testServer{
		sessions: session.NewRegistry(),
		checkout: checkout.NewService(storage.NewMemory(), nil, checkout.Config{Shipping: pricing.DefaultShipping}, nil),
		keeper:   idempotency.NewMemory(time.Hour),
	}
	ts.router = gin.New()
	RegisterRoutes(ts.router, HandlerConfig{
		Catalog:     cat,
		Sessions:    ts.sessions,
		Checkout:    ts.checkout,
		Idempotency: ts.keeper,
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, sid string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if sid != "" {
		req.Header.Set(SessionHeader, sid)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (ts *testServer) fillForm(t *testing.T, sid string) {
	t.Helper()
	for field, value := range map[string]string{
		"name":    "Asha Rao",
		"email":   "asha@example.com",
		"phone":   "9876543210",
		"address": "12 MG Road",
		"city":    "Bengaluru",
		"pincode": "560001",
		"payment": "cod",
	} {
		w := ts.do(t, http.MethodPut, "/checkout/form/"+field, sid, gin.H{"value": value})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
}

func TestProducts(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Products   []catalog.Product `json:"products"`
		Categories []string          `json:"categories"`
	}](t, w)
	assert.Len(t, list.Products, 5)
	assert.NotEmpty(t, list.Categories)

	w = ts.do(t, http.MethodGet, "/products?category="+url.QueryEscape(list.Products[0].Category), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/products/1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	p := decode[catalog.Product](t, w)
	assert.Equal(t, 1, p.ID)

	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/products/99", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/products/abc", "", nil).Code)
}

func TestSessionHeaderMintedAndReused(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/cart/items", "", gin.H{"product_id": 1, "quantity": 1})
	require.Equal(t, http.StatusCreated, w.Code)
	sid := w.Header().Get(SessionHeader)
	require.NotEmpty(t, sid)

	w = ts.do(t, http.MethodGet, "/cart", sid, nil)
	v := decode[cartView](t, w)
	assert.Equal(t, sid, v.SessionID)
	assert.Equal(t, 1, v.ItemCount)

	other := decode[cartView](t, ts.do(t, http.MethodGet, "/cart", "someone-else", nil))
	assert.True(t, other.Empty)
}

func TestCart_AddMergeAndTotals(t *testing.T) {
	ts := newTestServer(t)
	sid := "s1"

	empty := decode[cartView](t, ts.do(t, http.MethodGet, "/cart", sid, nil))
	assert.True(t, empty.Empty)
	assert.Nil(t, empty.Totals)
	assert.Empty(t, empty.Items)

	ts.do(t, http.MethodPost, "/cart/items", sid, gin.H{"product_id": 1, "quantity": 2})
	ts.do(t, http.MethodPost, "/cart/items", sid, gin.H{"product_id": 2})
	w := ts.do(t, http.MethodPost, "/cart/items", sid, gin.H{"product_id": 1, "quantity": 0, "size": "M", "color": "Black"})
	require.Equal(t, http.StatusCreated, w.Code)

	v := decode[cartView](t, w)
	require.Len(t, v.Items, 2, "same product and default variant merge")
	assert.Equal(t, 3, v.Items[0].Quantity)
	assert.Equal(t, "M", v.Items[0].Size)
	assert.Equal(t, 4, v.ItemCount)
	require.NotNil(t, v.Totals)
	assert.Equal(t, "4696.00", v.Totals.Subtotal)
	assert.Equal(t, "0.00", v.Totals.Shipping)
	assert.Equal(t, "375.68", v.Totals.Tax)
	assert.Equal(t, "5071.68", v.Totals.Total)

	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodPost, "/cart/items", sid, gin.H{"product_id": 42}).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, "/cart/items", sid, gin.H{"quantity": 1}).Code)
}

func TestCart_LineMutations(t *testing.T) {
	ts := newTestServer(t)
	sid := "s1"

	v := decode[cartView](t, ts.do(t, http.MethodPost, "/cart/items", sid, gin.H{"product_id": 3}))
	line := v.Items[0].LineID

	v = decode[cartView](t, ts.do(t, http.MethodPost, "/cart/items/"+line+"/increase", sid, nil))
	assert.Equal(t, 2, v.Items[0].Quantity)

	ts.do(t, http.MethodPost, "/cart/items/"+line+"/decrease", sid, nil)
	v = decode[cartView](t, ts.do(t, http.MethodPost, "/cart/items/"+line+"/decrease", sid, nil))
	assert.Equal(t, 1, v.Items[0].Quantity, "decrease stops at one")

	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodPost, "/cart/items/nope/increase", sid, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodPost, "/cart/items/nope/decrease", sid, nil).Code)

	w := ts.do(t, http.MethodDelete, "/cart/items/nope", sid, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[cartView](t, w).Items, 1)

	v = decode[cartView](t, ts.do(t, http.MethodDelete, "/cart/items/"+line, sid, nil))
	assert.True(t, v.Empty)

	ts.do(t, http.MethodPost, "/cart/items", sid, gin.H{"product_id": 3})
	v = decode[cartView](t, ts.do(t, http.MethodDelete, "/cart", sid, nil))
	assert.True(t, v.Empty)
}

func TestCart_Coupon(t *testing.T) {
	ts := newTestServer(t)
	sid := "s1"
	ts.do(t, http.MethodPost, "/cart/items", sid, gin.H{"product_id": 5})

	w := ts.do(t, http.MethodPost, "/cart/coupon", sid, gin.H{"code": "FREE50"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode[map[string]string](t, w)
	assert.Equal(t, "invalid_coupon", body["error"])
	assert.Equal(t, "Invalid coupon code. Try 'SAVE10' or 'WELCOME15'", body["message"])

	w = ts.do(t, http.MethodPost, "/cart/coupon", sid, gin.H{"code": " welcome15 "})
	require.Equal(t, http.StatusOK, w.Code)
	v := decode[cartView](t, w)
	assert.True(t, v.Coupon.Applied)
	assert.Equal(t, "WELCOME15", v.Coupon.Code)
	assert.Equal(t, "249.90", v.Totals.Discount)

	w = ts.do(t, http.MethodPost, "/cart/coupon", sid, gin.H{"code": "bogus"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	v = decode[cartView](t, ts.do(t, http.MethodGet, "/cart", sid, nil))
	assert.True(t, v.Coupon.Applied, "rejected code keeps the active coupon")

	v = decode[cartView](t, ts.do(t, http.MethodDelete, "/cart/coupon", sid, nil))
	assert.False(t, v.Coupon.Applied)
	assert.Equal(t, "0.00", v.Totals.Discount)
}

func TestCartAndCheckoutShareShippingPolicy(t *testing.T) {
	ts := newTestServer(t)
	sid := "s1"
	fee := money.Format(pricing.DefaultShipping.Fee)

	// 799 is under the threshold
	ts.do(t, http.MethodPost, "/cart/items", sid, gin.H{"product_id": 2})
	cartTotals := decode[cartView](t, ts.do(t, http.MethodGet, "/cart", sid, nil)).Totals
	checkoutTotals := decode[checkoutView](t, ts.do(t, http.MethodGet, "/checkout", sid, nil)).Totals
	require.NotNil(t, cartTotals)
	require.NotNil(t, checkoutTotals)
	assert.Equal(t, fee, cartTotals.Shipping)
	assert.Equal(t, *cartTotals, *checkoutTotals)

	// 1598 is over it
	ts.do(t, http.MethodPost, "/cart/items", sid, gin.H{"product_id": 2})
	cartTotals = decode[cartView](t, ts.do(t, http.MethodGet, "/cart", sid, nil)).Totals
	checkoutTotals = decode[checkoutView](t, ts.do(t, http.MethodGet, "/checkout", sid, nil)).Totals
	assert.Equal(t, "0.00", cartTotals.Shipping)
	assert.True(t, cartTotals.FreeShipping)
	assert.Equal(t, *cartTotals, *checkoutTotals)
}

func TestCheckout_FullFlow(t *testing.T) {
	ts := newTestServer(t)
	sid := "s1"
	ts.do(t, http.MethodPost, "/cart/items", sid, gin.H{"product_id": 1, "quantity": 2})

	w := ts.do(t, http.MethodGet, "/checkout", sid, nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[checkoutView](t, w)
	assert.Equal(t, checkout.StateEditing, view.State)
	assert.Regexp(t, `^ORD-\d{6}$`, view.OrderID)
	assert.False(t, view.Express)

	w = ts.do(t, http.MethodPost, "/checkout/orders", sid, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	invalid := decode[struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}](t, w)
	assert.Equal(t, "validation_failed", invalid.Error)
	assert.Equal(t, "Name is required", invalid.Fields["name"])
	assert.Contains(t, invalid.Fields, "pincode")

	w = ts.do(t, http.MethodPut, "/checkout/form/phone", sid, gin.H{"value": "98765-43210"})
	require.Equal(t, http.StatusOK, w.Code)
	snap := decode[checkout.Snapshot](t, w)
	assert.Equal(t, "9876543210", snap.Form.Phone)
	assert.NotContains(t, snap.Errors, "phone")
	assert.Contains(t, snap.Errors, "name")

	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPut, "/checkout/form/nickname", sid, gin.H{"value": "x"}).Code)

	ts.fillForm(t, sid)
	w = ts.do(t, http.MethodPost, "/checkout/orders", sid, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	placed := decode[placedResponse](t, w)
	assert.Equal(t, view.OrderID, placed.Order.ID)
	assert.True(t, placed.CartCleared)
	assert.Equal(t, "/orders/"+placed.Order.ID, w.Header().Get("Location"))
	assert.Equal(t, "2805.84", placed.Order.Totals.Total)

	assert.Equal(t, http.StatusConflict, ts.do(t, http.MethodPost, "/checkout/orders", sid, nil).Code)
	assert.Equal(t, http.StatusConflict, ts.do(t, http.MethodPut, "/checkout/form/name", sid, gin.H{"value": "x"}).Code)

	list := decode[struct {
		Orders []struct {
			ID string `json:"id"`
		} `json:"orders"`
	}](t, ts.do(t, http.MethodGet, "/orders", sid, nil))
	require.Len(t, list.Orders, 1)
	assert.Equal(t, placed.Order.ID, list.Orders[0].ID)

	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/orders/"+placed.Order.ID, sid, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/orders/ORD-000000", sid, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/orders/"+placed.Order.ID, "s2", nil).Code)

	next := decode[checkoutView](t, ts.do(t, http.MethodGet, "/checkout", sid, nil))
	assert.Equal(t, checkout.StateEditing, next.State)
	assert.NotEqual(t, placed.Order.ID, next.OrderID)
}

func TestCheckout_EmptyCart(t *testing.T) {
	ts := newTestServer(t)
	ts.fillForm(t, "s1")

	view := decode[checkoutView](t, ts.do(t, http.MethodGet, "/checkout", "s1", nil))
	assert.True(t, view.Empty)
	assert.Nil(t, view.Totals)

	w := ts.do(t, http.MethodPost, "/checkout/orders", "s1", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "empty_cart", decode[map[string]string](t, w)["error"])
}

func TestCheckout_BuyNow(t *testing.T) {
	ts := newTestServer(t)
	sid := "s1"
	ts.do(t, http.MethodPost, "/cart/items", sid, gin.H{"product_id": 1})

	view := decode[checkoutView](t, ts.do(t, http.MethodGet, "/checkout?buy_now=3&qty=2&size=S", sid, nil))
	assert.True(t, view.Express)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "S", view.Items[0].Size)
	assert.Equal(t, "Black", view.Items[0].Color)
	assert.Equal(t, "1298.00", view.Totals.Subtotal)

	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/checkout?buy_now=x", sid, nil).Code)
	bad := ts.do(t, http.MethodGet, "/checkout?buy_now=3&qty=abc", sid, nil)
	require.Equal(t, http.StatusBadRequest, bad.Code)
	assert.Contains(t, decode[map[string]any](t, bad)["fields"], "qty")

	ts.fillForm(t, sid)
	w := ts.do(t, http.MethodPost, "/checkout/orders", sid, gin.H{"buy_now": gin.H{"id": 3, "qty": 2, "size": "S", "color": "Red"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	placed := decode[placedResponse](t, w)
	assert.True(t, placed.Order.Express)
	assert.False(t, placed.CartCleared)
	assert.Equal(t, 2, placed.Order.Items[0].Quantity)

	v := decode[cartView](t, ts.do(t, http.MethodGet, "/cart", sid, nil))
	assert.Equal(t, 1, v.ItemCount, "buy now leaves the cart alone")

	w = ts.do(t, http.MethodGet, "/checkout", "s2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, http.MethodPost, "/checkout/orders", "s2", gin.H{"buy_now": gin.H{"id": 0}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckout_IdempotentRetry(t *testing.T) {
	ts := newTestServer(t)
	sid := "s1"
	ts.do(t, http.MethodPost, "/cart/items", sid, gin.H{"product_id": 4})
	ts.fillForm(t, sid)

	first := ts.do(t, http.MethodPost, "/checkout/orders", sid, nil, "Idempotency-Key", "k-1")
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	second := ts.do(t, http.MethodPost, "/checkout/orders", sid, nil, "Idempotency-Key", "k-1")
	require.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	orders, err := ts.checkout.History().List(context.Background(), sid)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestCheckout_IdempotencyInProgressAndFailed(t *testing.T) {
	ts := newTestServer(t)
	sid := "s1"
	ctx := context.Background()

	created, err := ts.keeper.CreateIfNotExists(ctx, sid+":busy", "ORD-123456")
	require.NoError(t, err)
	require.True(t, created)

	w := ts.do(t, http.MethodPost, "/checkout/orders", sid, nil, "Idempotency-Key", "busy")
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "ORD-123456", decode[map[string]string](t, w)["order_id"])

	// a failed attempt releases the key so a corrected retry goes through
	w = ts.do(t, http.MethodPost, "/checkout/orders", sid, nil, "Idempotency-Key", "retry")
	require.Equal(t, http.StatusBadRequest, w.Code)
	rec, err := ts.keeper.Get(ctx, sid+":retry")
	require.NoError(t, err)
	assert.Equal(t, idempotency.StatusFailed, rec.Status)

	ts.do(t, http.MethodPost, "/cart/items", sid, gin.H{"product_id": 4})
	ts.fillForm(t, sid)
	w = ts.do(t, http.MethodPost, "/checkout/orders", sid, nil, "Idempotency-Key", "retry")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestMalformedBodyIsBadRequest(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/cart/items", "s-bad", "not-an-object")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request_body", decode[map[string]any](t, w)["error"])

	w = ts.do(t, http.MethodPost, "/cart/items", "s-bad", map[string]any{"product_id": 0})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "validation_failed", body["error"])
	assert.Contains(t, body["fields"], "product_id")
}
