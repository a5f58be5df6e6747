package random

import (
	"crypto/rand"
	"encoding/hex"
)

// NewRandomString returns a hex string of the given length sourced from
// crypto/rand. Used for wager nonces, so predictability is not acceptable.
func NewRandomString(length int) string {
	buf := make([]byte, (length+1)/2)

	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}

	return hex.EncodeToString(buf)[:length]
}
