// internal/payment/reference.go
package payment

import (
	"crypto/rand"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NewReference generates a caller-visible correlation key: a millisecond
// timestamp in base36 plus four random bytes, so collisions are
// overwhelmingly unlikely even at the same instant.
func NewReference(prefix string) string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	random := make([]byte, 4)
	_, _ = rand.Read(random)
	return strings.ToUpper(fmt.Sprintf("%s_%s_%x", prefix, ts, random))
}
