package checkout

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

var numberSpace = big.NewInt(1000000)

// newOrderNumber mints a customer-facing reference like LC-20250610-483920.
// Uniqueness is enforced by the orders table; on a collision the caller
// retries the whole placement with a fresh number.
func newOrderNumber(now time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, numberSpace)
	if err != nil {
		return "", fmt.Errorf("order number entropy: %w", err)
	}
	return fmt.Sprintf("LC-%s-%06d", now.Format("20060102"), n.Int64()), nil
}
