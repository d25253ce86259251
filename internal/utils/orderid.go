package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// GenerateOrderID returns a merchant order id such as
// ORDER-20240115-100000-123-4567. Midtrans rejects reused order ids, so the
// suffix mixes milliseconds with a random part.
func GenerateOrderID(prefix string) string {
	return generateOrderID(prefix, time.Now())
}

func generateOrderID(prefix string, now time.Time) string {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = "ORDER"
	}

	now = now.UTC()
	datePart := now.Format("20060102-150405")
	millis := now.Nanosecond() / int(time.Millisecond)

	// 4-digit cryptographic random
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		// fallback: time-based entropy
		n = big.NewInt(now.UnixNano() % 10000)
	}

	return fmt.Sprintf("%s-%s-%03d-%04d", prefix, datePart, millis, n.Int64())
}
