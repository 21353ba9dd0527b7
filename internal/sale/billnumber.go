package sale

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode"
)

// newBillNumber builds a human-facing bill number from a store-name prefix,
// the current date and a random suffix, e.g. INV-APO-20250901-4821. Collisions
// are unlikely rather than impossible; the unique index on sales.bill_number
// plus the retry in Create covers the rest.
func newBillNumber(storeName string) string {
	return fmt.Sprintf("INV-%s-%s-%04d", storePrefix(storeName), time.Now().Format("20060102"), rand.Intn(10000))
}

func storePrefix(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
		if b.Len() >= 3 {
			break
		}
	}
	if b.Len() == 0 {
		return "STR"
	}
	return b.String()
}
