package order

import (
	"fmt"
	"math/rand"
	"regexp"
	"time"
)

// numberPattern matches the persisted order number format. The format is a
// compatibility contract with downstream systems and must not change.
var numberPattern = regexp.MustCompile(`^ORD-\d{8}-\d{4}$`)

// NewOrderNumber generates a human-readable order number of the form
// ORD-YYYYMMDD-NNNN with a random 4-digit suffix. Uniqueness is enforced by
// the database; callers retry on a unique violation.
func NewOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%s-%04d", now.Format("20060102"), 1000+rand.Intn(9000))
}

// ValidOrderNumber reports whether s matches the ORD-YYYYMMDD-NNNN format.
func ValidOrderNumber(s string) bool {
	return numberPattern.MatchString(s)
}
