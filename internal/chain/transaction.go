package chain

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"github.com/mr-tron/base58"
)

var systemProgramID = make([]byte, 32)

// buildTransferTx assembles and signs a legacy system-program transfer:
// single signer, three static accounts, one instruction. The recent
// blockhash bounds the transaction's validity window.
func buildTransferTx(key ed25519.PrivateKey, from, to, recentBlockhash string, lamports int64) (string, error) {
	const op = "chain.transaction.buildTransferTx"

	fromKey, err := base58.Decode(from)
	if err != nil {
		return "", fmt.Errorf("%s: from address: %w", op, err)
	}

	toKey, err := base58.Decode(to)
	if err != nil {
		return "", fmt.Errorf("%s: to address: %w", op, err)
	}

	blockhash, err := base58.Decode(recentBlockhash)
	if err != nil {
		return "", fmt.Errorf("%s: blockhash: %w", op, err)
	}

	if len(fromKey) != 32 || len(toKey) != 32 || len(blockhash) != 32 {
		return "", fmt.Errorf("%s: malformed base58 input", op)
	}

	// Instruction data: u32 transfer discriminator, u64 lamports.
	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[0:4], 2)
	binary.LittleEndian.PutUint64(data[4:12], uint64(lamports))

	var msg []byte

	// Header: 1 signature, 0 readonly signed, 1 readonly unsigned (program).
	msg = append(msg, 1, 0, 1)

	msg = appendCompactU16(msg, 3)
	msg = append(msg, fromKey...)
	msg = append(msg, toKey...)
	msg = append(msg, systemProgramID...)

	msg = append(msg, blockhash...)

	msg = appendCompactU16(msg, 1)
	msg = append(msg, 2) // program id index
	msg = appendCompactU16(msg, 2)
	msg = append(msg, 0, 1) // from, to
	msg = appendCompactU16(msg, len(data))
	msg = append(msg, data...)

	signature := ed25519.Sign(key, msg)

	var tx []byte

	tx = appendCompactU16(tx, 1)
	tx = append(tx, signature...)
	tx = append(tx, msg...)

	return base64.StdEncoding.EncodeToString(tx), nil
}

func appendCompactU16(buf []byte, v int) []byte {
	for {
		if v < 0x80 {
			return append(buf, byte(v))
		}

		buf = append(buf, byte(v&0x7f)|0x80)
		v >>= 7
	}
}
