package validation

import (
	"fmt"
	"sort"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

// Error carries one human-readable message per failing field.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return "validation failed: " + strings.Join(names, ", ")
}

var labels = map[string]string{
	"name":       "Name",
	"email":      "Email",
	"phone":      "Phone",
	"address":    "Address",
	"city":       "City",
	"pincode":    "Pincode",
	"payment":    "Payment method",
	"cardNumber": "Card number",
	"cardExpiry": "Expiry date",
	"cardCvc":    "CVC",
}

// format failures, keyed by validation tag
var invalid = map[string]string{
	"email_shape": "Invalid email format",
	"phone10":     "Invalid phone number (10 digits)",
	"pincode6":    "Invalid pincode (6 digits)",
	"oneof":       "Select cash on delivery or online payment",
	"card16":      "Invalid card number (16 digits)",
	"mmyy":        "Invalid expiry (MM/YY)",
	"cvc3":        "Invalid CVC (3 digits)",
}

func message(fe validatorv10.FieldError) string {
	if fe.Tag() == "required" {
		label, ok := labels[fe.Field()]
		if !ok {
			label = fe.Field()
		}
		return label + " is required"
	}
	if msg, ok := invalid[fe.Tag()]; ok {
		return msg
	}
	if fe.Param() != "" {
		return fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}

func newError(err error) *Error {
	return &Error{Fields: validationErrorsToMap(err)}
}

func validationErrorsToMap(err error) map[string]string {
	out := map[string]string{}
	if ve, ok := err.(validatorv10.ValidationErrors); ok {
		for _, fe := range ve {
			out[fieldKey(fe)] = message(fe)
		}
	} else {
		out["error"] = err.Error()
	}
	return out
}

// fieldKey drops the top-level struct name from the namespace, so nested
// request fields read as buy_now.id rather than PlaceOrderRequest.buy_now.id.
func fieldKey(fe validatorv10.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}
