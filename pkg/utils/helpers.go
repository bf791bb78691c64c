package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"sync/atomic"
)

// RandomHex generates a random hexadecimal string from n random bytes
func RandomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// HandleIDs returns a generator of identifiers that are unique for the life
// of the generator and unlikely to collide across generators.
func HandleIDs(prefix string) func() string {
	salt := RandomHex(3)
	var n atomic.Uint64
	return func() string {
		return prefix + salt + "-" + strconv.FormatUint(n.Add(1), 36)
	}
}
