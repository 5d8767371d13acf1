package validation

import (
	"reflect"
	"regexp"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

var (
	emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nonDigits  = regexp.MustCompile(`\D`)
	whitespace = regexp.MustCompile(`\s`)
	tenDigits  = regexp.MustCompile(`^\d{10}$`)
	sixDigits  = regexp.MustCompile(`^\d{6}$`)
	cardDigits = regexp.MustCompile(`^\d{16}$`)
	expiryMMYY = regexp.MustCompile(`^\d{2}/\d{2}$`)
	cvcDigits  = regexp.MustCompile(`^\d{3}$`)
)

// New returns a validator with the checkout rules registered. Field names in
// errors are the JSON names.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "email_shape", func(fl validatorv10.FieldLevel) bool {
		return emailShape.MatchString(fl.Field().String())
	})
	mustRegister(v, "phone10", func(fl validatorv10.FieldLevel) bool {
		return tenDigits.MatchString(nonDigits.ReplaceAllString(fl.Field().String(), ""))
	})
	mustRegister(v, "pincode6", func(fl validatorv10.FieldLevel) bool {
		return sixDigits.MatchString(nonDigits.ReplaceAllString(fl.Field().String(), ""))
	})

	// card fields depend on the payment method, so they are checked at struct level
	v.RegisterStructValidation(checkoutFormStructValidation, CheckoutForm{})

	return v
}

func mustRegister(v *validatorv10.Validate, tag string, fn validatorv10.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// checkoutFormStructValidation checks card details when paying online.
func checkoutFormStructValidation(sl validatorv10.StructLevel) {
	form := sl.Current().Interface().(CheckoutForm)
	if form.Payment != "online" {
		return
	}

	card := whitespace.ReplaceAllString(form.CardNumber, "")
	switch {
	case strings.TrimSpace(card) == "":
		sl.ReportError(form.CardNumber, "cardNumber", "CardNumber", "required", "")
	case !cardDigits.MatchString(card):
		sl.ReportError(form.CardNumber, "cardNumber", "CardNumber", "card16", "")
	}

	switch {
	case strings.TrimSpace(form.CardExpiry) == "":
		sl.ReportError(form.CardExpiry, "cardExpiry", "CardExpiry", "required", "")
	case !expiryMMYY.MatchString(form.CardExpiry):
		sl.ReportError(form.CardExpiry, "cardExpiry", "CardExpiry", "mmyy", "")
	}

	switch {
	case strings.TrimSpace(form.CardCvc) == "":
		sl.ReportError(form.CardCvc, "cardCvc", "CardCvc", "required", "")
	case !cvcDigits.MatchString(form.CardCvc):
		sl.ReportError(form.CardCvc, "cardCvc", "CardCvc", "cvc3", "")
	}
}

// CheckForm trims the form and validates it. All failing fields are reported
// together in a *Error.
func CheckForm(v *validatorv10.Validate, form CheckoutForm) error {
	trimmed := form.Trimmed()
	if err := v.Struct(trimmed); err != nil {
		return newError(err)
	}
	return nil
}
