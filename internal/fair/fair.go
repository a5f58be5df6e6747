package fair

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"strconv"
)

var ErrIncompleteMaterial = errors.New("fairness: incomplete seed material")

// Material is everything that feeds a wager's randomness. Blockhash and Slot
// come from the public ledger and are unknown before the stake transfer is
// confirmed; Nonce is unique per wager; EscrowRef ties the digest to the
// confirmed escrow transfer so a replayed escrow attempt cannot reuse a seed.
type Material struct {
	Blockhash string
	Slot      uint64
	WagerID   string
	Nonce     string
	EscrowRef string
}

// Digest is the fairness digest every draw for a wager is derived from. It is
// a pure function of Material, so third parties can replay it.
type Digest [sha512.Size]byte

func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

// Derive computes the fairness digest as HMAC-SHA512 keyed by the public
// blockhash over the remaining material. Identical material always yields an
// identical digest.
func Derive(m Material) (Digest, error) {
	var d Digest

	if m.Blockhash == "" || m.WagerID == "" || m.Nonce == "" {
		return d, ErrIncompleteMaterial
	}

	h := hmac.New(sha512.New, []byte(m.Blockhash))
	h.Write([]byte(strconv.FormatUint(m.Slot, 10)))
	h.Write([]byte(":"))
	h.Write([]byte(m.WagerID))
	h.Write([]byte(":"))
	h.Write([]byte(m.Nonce))
	h.Write([]byte(":"))
	h.Write([]byte(m.EscrowRef))

	copy(d[:], h.Sum(nil))

	return d, nil
}

// Uniform derives one value in [0,1) from the digest. Distinct (tag, index)
// pairs produce independent draws, so a single wager can consume several
// random choices without correlating them.
func (d Digest) Uniform(tag string, index int) float64 {
	h := hmac.New(sha512.New, d[:])
	h.Write([]byte(tag))
	h.Write([]byte(":"))
	h.Write([]byte(strconv.Itoa(index)))

	sum := h.Sum(nil)

	// 53 bits so the value is exactly representable as a float64.
	v := binary.BigEndian.Uint64(sum[:8]) >> 11

	return float64(v) / (1 << 53)
}

// Draws returns n independent uniform draws under one domain tag.
func (d Digest) Draws(tag string, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = d.Uniform(tag, i)
	}

	return out
}
