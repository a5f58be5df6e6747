package model

import (
	"github.com/google/uuid"
	"time"

	"github.com/xbtlex/solana-casino/internal/config"
)

type WagerStatus string

const (
	WagerCreated         WagerStatus = "created"
	WagerEscrowPending   WagerStatus = "escrow_pending"
	WagerEscrowFailed    WagerStatus = "escrow_failed"
	WagerEscrowConfirmed WagerStatus = "escrow_confirmed"
	WagerResolving       WagerStatus = "resolving"
	WagerResolvedWin     WagerStatus = "resolved_win"
	WagerResolvedLose    WagerStatus = "resolved_lose"
	WagerPayoutPending   WagerStatus = "payout_pending"
	WagerPayoutConfirmed WagerStatus = "payout_confirmed"
	WagerPayoutFailed    WagerStatus = "payout_failed"
	WagerSettled         WagerStatus = "settled"
)

// Terminal reports whether no further settlement work can change the wager.
// WagerPayoutFailed is terminal-with-retry: it stays on the operator queue.
func (s WagerStatus) Terminal() bool {
	return s == WagerSettled || s == WagerEscrowFailed
}

type Wager struct {
	ID            int64       `json:"id"`
	UUID          uuid.UUID   `json:"uuid"`
	PlayerAddress string      `json:"player_address"`
	Game          config.Game `json:"game"`
	Params        string      `json:"params"`
	Stake         int64       `json:"stake"`
	Nonce         string      `json:"nonce"`
	Status        WagerStatus `json:"status"`
	EscrowSig     string      `json:"escrow_sig,omitempty"`
	EscrowRef     string      `json:"escrow_ref,omitempty"`
	ResultJSON    string      `json:"result,omitempty"`
	Multiplier    float64     `json:"multiplier"`
	Payout        int64       `json:"payout"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}
