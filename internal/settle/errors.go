package settle

import "errors"

var (
	ErrInvalidWagerParams       = errors.New("invalid wager params")
	ErrEscrowTimeout            = errors.New("escrow confirmation timed out")
	ErrEscrowRejected           = errors.New("escrow transfer rejected")
	ErrInsufficientHouseBalance = errors.New("insufficient house balance")
	ErrPayoutSendFailed         = errors.New("payout send failed")
	ErrNotPayable               = errors.New("wager has no payout due")
)
