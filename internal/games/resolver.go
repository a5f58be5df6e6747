package games

import (
	"errors"
	"fmt"

	"github.com/xbtlex/solana-casino/internal/config"
	"github.com/xbtlex/solana-casino/internal/fair"
)

var (
	ErrUnknownGame     = errors.New("unknown game")
	ErrInvalidParams   = errors.New("invalid wager params")
	ErrStakeOutOfRange = errors.New("stake out of range")
)

// Domain tags keep draws used for different purposes independent even though
// they come from one digest.
const (
	tagOutcome = "outcome"
	tagReel    = "reel"
	tagRow     = "row"
	tagShuffle = "shuffle"
)

// Params carries the per-game wager parameters. Only the fields for the
// wager's game are consulted; Validate rejects anything else before a draw is
// made.
type Params struct {
	Side      string                 `json:"side,omitempty" validate:"omitempty,oneof=heads tails"`
	WinChance float64                `json:"win_chance,omitempty"`
	Cashout   float64                `json:"cashout,omitempty"`
	Bet       config.RouletteBetType `json:"bet,omitempty"`
	Number    int                    `json:"number,omitempty"`
	Risk      config.PlinkoRisk      `json:"risk,omitempty"`
	Rows      int                    `json:"rows,omitempty"`
}

// Result is the game-tagged outcome of one wager. Multiplier is the total
// return per unit stake: 0 is a total loss, 1 a push, above 1 a net win.
type Result struct {
	Game       config.Game `json:"game"`
	Multiplier float64     `json:"multiplier"`
	Win        bool        `json:"win"`
	JackpotHit bool        `json:"jackpot_hit,omitempty"`
	Outcome    Outcome     `json:"outcome"`
}

// Outcome holds the resolved per-game facts. Fields not belonging to the
// wager's game stay zero and are dropped from the serialized form.
type Outcome struct {
	Side        string              `json:"side,omitempty"`
	Roll        *float64            `json:"roll,omitempty"`
	CrashPoint  *float64            `json:"crash_point,omitempty"`
	Reels       []config.SlotSymbol `json:"reels,omitempty"`
	Number      *int                `json:"number,omitempty"`
	Color       string              `json:"color,omitempty"`
	Landed      *int                `json:"landed,omitempty"`
	PlayerHand  []Card              `json:"player_hand,omitempty"`
	DealerHand  []Card              `json:"dealer_hand,omitempty"`
	PlayerTotal int                 `json:"player_total,omitempty"`
	DealerTotal int                 `json:"dealer_total,omitempty"`
	HandResult  string              `json:"hand_result,omitempty"`
}

// ValidateStake rejects a stake outside the configured table limits for the
// game. It runs before any transfer is submitted and before any draw is made.
func ValidateStake(game config.Game, stake int64) error {
	cfg, ok := config.GameConfigs[game]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownGame, game)
	}

	if stake < cfg.MinBet || stake > cfg.MaxBet {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrStakeOutOfRange, stake, cfg.MinBet, cfg.MaxBet)
	}

	return nil
}

// Validate checks the game-specific parameters. Like ValidateStake it must
// pass before the wager touches funds or randomness.
func Validate(game config.Game, p Params) error {
	switch game {
	case config.Coinflip:
		return validateCoinflip(p)
	case config.Dice:
		return validateDice(p)
	case config.Crash:
		return validateCrash(p)
	case config.Slots:
		return nil
	case config.Roulette:
		return validateRoulette(p)
	case config.Plinko:
		return validatePlinko(p)
	case config.Blackjack:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGame, game)
	}
}

// Resolve maps a fairness digest plus wager parameters to the game result.
// Resolvers are pure: same digest and params, same result. Params must have
// passed Validate.
func Resolve(game config.Game, p Params, digest fair.Digest) (*Result, error) {
	switch game {
	case config.Coinflip:
		return resolveCoinflip(p, digest), nil
	case config.Dice:
		return resolveDice(p, digest), nil
	case config.Crash:
		return resolveCrash(p, digest), nil
	case config.Slots:
		return resolveSlots(digest), nil
	case config.Roulette:
		return resolveRoulette(p, digest), nil
	case config.Plinko:
		return resolvePlinko(p, digest), nil
	case config.Blackjack:
		return resolveBlackjack(digest), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownGame, game)
	}
}
