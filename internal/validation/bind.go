package validation

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
)

// ErrMalformedBody is returned when the request body is not the expected JSON.
var ErrMalformedBody = errors.New("malformed request body")

// Bind decodes the JSON body into out and validates it with v. Field
// failures come back as *Error; nothing is written to the response.
func Bind(c *gin.Context, out any, v *validatorv10.Validate) error {
	// gin only checks `binding` tags; the `validate` tags are v's job
	if err := c.ShouldBindJSON(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	if err := v.Struct(out); err != nil {
		return newError(err)
	}
	return nil
}
