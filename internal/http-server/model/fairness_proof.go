package model

import (
	"github.com/google/uuid"
	"time"
)

// FairnessProof persists the seed material and digest for one wager so a
// third party can replay the outcome.
type FairnessProof struct {
	ID        int64     `json:"id"`
	WagerUUID uuid.UUID `json:"wager_uuid"`
	Blockhash string    `json:"blockhash"`
	Slot      uint64    `json:"slot"`
	Nonce     string    `json:"nonce"`
	EscrowRef string    `json:"escrow_ref"`
	DigestHex string    `json:"digest"`
	CreatedAt time.Time `json:"created_at"`
}
