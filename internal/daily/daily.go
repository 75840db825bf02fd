package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// LayoutIndex returns a deterministic index for a date using
// HMAC(key, YYYY-MM-DD) % n.
func LayoutIndex(date time.Time, key []byte, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, key)
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// take first 8 bytes to uint64 for modulus distribution
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}
