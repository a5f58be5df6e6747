package model

import (
	"time"

	"github.com/xbtlex/solana-casino/internal/config"
)

// JackpotPool is the shared per-game counter funded by a fraction of every
// stake. It lives in storage, never in any client.
type JackpotPool struct {
	ID        int64       `json:"id"`
	Game      config.Game `json:"game"`
	Pool      int64       `json:"pool"`
	SeedValue int64       `json:"seed_value"`
	UpdatedAt time.Time   `json:"updated_at"`
}
