package validation

// CheckoutForm is the contact, address and payment form. JSON names are the
// field names clients use for per-field updates and error annotations.
type CheckoutForm struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email_shape"`
	Phone      string `json:"phone" validate:"required,phone10"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	Pincode    string `json:"pincode" validate:"required,pincode6"`
	Payment    string `json:"payment" validate:"required,oneof=cod online"`
	CardNumber string `json:"cardNumber"` // checked only for online payment
	CardExpiry string `json:"cardExpiry"`
	CardCvc    string `json:"cardCvc"`
}

// NewCheckoutForm returns an empty form defaulting to cash on delivery.
func NewCheckoutForm() CheckoutForm {
	return CheckoutForm{Payment: "cod"}
}

// AddItemRequest is the payload for POST /cart/items.
type AddItemRequest struct {
	ProductID int    `json:"product_id" validate:"required,gt=0"`
	Quantity  int    `json:"quantity"` // clamped to >= 1 by the cart
	Size      string `json:"size" validate:"max=16"`
	Color     string `json:"color" validate:"max=32"`
}

// CouponRequest is the payload for POST /cart/coupon.
type CouponRequest struct {
	Code string `json:"code"`
}

// FieldUpdateRequest is the payload for PUT /checkout/form/:field.
type FieldUpdateRequest struct {
	Value string `json:"value"`
}

// BuyNowItem is the express-purchase item carried from the product page.
// It uses qty where the cart uses quantity.
type BuyNowItem struct {
	ID    int    `json:"id" validate:"required,gt=0"`
	Qty   int    `json:"qty"`
	Size  string `json:"size" validate:"max=16"`
	Color string `json:"color" validate:"max=32"`
}

// PlaceOrderRequest is the payload for POST /checkout/orders.
type PlaceOrderRequest struct {
	BuyNow *BuyNowItem `json:"buy_now,omitempty" validate:"omitempty"`
}
