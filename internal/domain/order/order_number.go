package order

import (
	"crypto/rand"
	"fmt"
	"time"
)

const orderNumberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateOrderNumber returns a human-readable order number of the form
// ORD-<unix millis>-<9 random alphanumeric characters>.
func GenerateOrderNumber() string {
	return generateOrderNumberAt(time.Now())
}

func generateOrderNumberAt(now time.Time) string {
	suffix := make([]byte, 9)
	if _, err := rand.Read(suffix); err != nil {
		// crypto/rand never fails on supported platforms
		panic(fmt.Sprintf("order number generation: %v", err))
	}
	for i, b := range suffix {
		suffix[i] = orderNumberAlphabet[int(b)%len(orderNumberAlphabet)]
	}
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), suffix)
}
