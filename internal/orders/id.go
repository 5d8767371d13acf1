package orders

import (
	"fmt"
	"math/rand/v2"
)

// IDPrefix tags every order id.
const IDPrefix = "ORD-"

// NewID returns IDPrefix followed by a random number in [100000, 999999].
func NewID() string {
	return fmt.Sprintf("%s%d", IDPrefix, 100000+rand.IntN(900000))
}
