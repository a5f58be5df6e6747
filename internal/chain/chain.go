package chain

import (
	"context"
	"errors"
)

var (
	ErrSeedUnavailable  = errors.New("public seed unavailable")
	ErrAllEndpointsDown = errors.New("all rpc endpoints failed")
)

type TransferStatus string

const (
	TransferPending   TransferStatus = "pending"
	TransferConfirmed TransferStatus = "confirmed"
	TransferFailed    TransferStatus = "failed"
)

// PublicSeed is the unpredictable public value randomness is anchored to: a
// recent ledger blockhash and its slot. Neither is known before the wager's
// stake transfer is built.
type PublicSeed struct {
	Blockhash string
	Slot      uint64
}

// SeedSource supplies public seeds. Implementations must fail with
// ErrSeedUnavailable rather than fall back to anything predictable.
type SeedSource interface {
	PublicSeed(ctx context.Context) (PublicSeed, error)
}

// Ledger is the external chain collaborator settlement moves funds through.
type Ledger interface {
	SubmitTransfer(ctx context.Context, from, to string, lamports int64) (string, error)
	ConfirmTransfer(ctx context.Context, reference string) (TransferStatus, error)
	Balance(ctx context.Context, address string) (int64, error)
}

// PayoutTransport sends house-to-player transfers. Exactly one implementation
// is selected at startup: a local signer submitting through the ledger, or a
// remote payout API holding the key elsewhere.
type PayoutTransport interface {
	SendPayout(ctx context.Context, to string, lamports int64) (string, error)
}
