package validation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownField is returned by Set for names that are not form fields.
var ErrUnknownField = errors.New("unknown form field")

// Fields lists the form field names in display order.
var Fields = []string{"name", "email", "phone", "address", "city", "pincode", "payment", "cardNumber", "cardExpiry", "cardCvc"}

func digits(s string, max int) string {
	d := nonDigits.ReplaceAllString(s, "")
	if len(d) > max {
		d = d[:max]
	}
	return d
}

// Mask applies the input mask for field: card numbers are grouped 4-4-4-4,
// expiry becomes MM/YY, and CVC, phone and pincode keep only their digits.
func Mask(field, value string) string {
	switch field {
	case "cardNumber":
		d := digits(value, 16)
		var b strings.Builder
		for i := 0; i < len(d); i += 4 {
			if i > 0 {
				b.WriteByte(' ')
			}
			end := min(i+4, len(d))
			b.WriteString(d[i:end])
		}
		return b.String()
	case "cardExpiry":
		d := digits(value, 4)
		if len(d) > 2 {
			return d[:2] + "/" + d[2:]
		}
		return d
	case "cardCvc":
		return digits(value, 3)
	case "phone":
		return digits(value, 10)
	case "pincode":
		return digits(value, 6)
	case "payment":
		return strings.ToLower(strings.TrimSpace(value))
	default:
		return value
	}
}

func (f *CheckoutForm) field(name string) (*string, error) {
	switch name {
	case "name":
		return &f.Name, nil
	case "email":
		return &f.Email, nil
	case "phone":
		return &f.Phone, nil
	case "address":
		return &f.Address, nil
	case "city":
		return &f.City, nil
	case "pincode":
		return &f.Pincode, nil
	case "payment":
		return &f.Payment, nil
	case "cardNumber":
		return &f.CardNumber, nil
	case "cardExpiry":
		return &f.CardExpiry, nil
	case "cardCvc":
		return &f.CardCvc, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownField, name)
}

// Set masks value and stores it in the named field, returning the stored value.
func (f *CheckoutForm) Set(name, value string) (string, error) {
	p, err := f.field(name)
	if err != nil {
		return "", err
	}
	*p = Mask(name, value)
	return *p, nil
}

// Get returns the named field.
func (f CheckoutForm) Get(name string) (string, error) {
	p, err := f.field(name)
	if err != nil {
		return "", err
	}
	return *p, nil
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (f CheckoutForm) Trimmed() CheckoutForm {
	for _, name := range Fields {
		p, _ := f.field(name)
		*p = strings.TrimSpace(*p)
	}
	return f
}

// CardDigits returns the card number without grouping spaces.
func (f CheckoutForm) CardDigits() string {
	return whitespace.ReplaceAllString(f.CardNumber, "")
}
