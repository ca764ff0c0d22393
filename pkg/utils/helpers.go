package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// RandomHex returns n random bytes hex encoded.
func RandomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Ref returns a short message reference. Refs made by one process sort by
// creation time.
func Ref(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 36) + "-" + RandomHex(4)
}
