package model

import (
	"github.com/google/uuid"
	"time"
)

type PayoutStatus string

const (
	PayoutPending   PayoutStatus = "pending"
	PayoutSent      PayoutStatus = "sent"
	PayoutConfirmed PayoutStatus = "confirmed"
	PayoutFailed    PayoutStatus = "failed"
)

// PayoutRecord is the durable, idempotent record of payout attempts for one
// wager. The wager UUID is the idempotency key: at most one confirmed record
// may exist per wager.
type PayoutRecord struct {
	ID          int64        `json:"id"`
	WagerUUID   uuid.UUID    `json:"wager_uuid"`
	Amount      int64        `json:"amount"`
	TransferRef string       `json:"transfer_ref,omitempty"`
	Status      PayoutStatus `json:"status"`
	Attempts    int          `json:"attempts"`
	FailReason  string       `json:"fail_reason,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
