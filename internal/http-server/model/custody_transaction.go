package model

import (
	"time"

	"github.com/xbtlex/solana-casino/internal/config"
)

// CustodyTransaction records every movement in or out of house custody:
// escrowed stakes (income) and payouts (outcome).
type CustodyTransaction struct {
	ID        int64              `json:"id"`
	WagerUUID string             `json:"wager_uuid"`
	Type      config.BalanceType `json:"type"`
	Amount    int64              `json:"amount"`
	Game      config.Game        `json:"game"`
	Details   string             `json:"details,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}
