package settle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"github.com/xbtlex/solana-casino/internal/chain"
	"github.com/xbtlex/solana-casino/internal/config"
	"github.com/xbtlex/solana-casino/internal/event"
	"github.com/xbtlex/solana-casino/internal/fair"
	"github.com/xbtlex/solana-casino/internal/games"
	"github.com/xbtlex/solana-casino/internal/http-server/model"
	"github.com/xbtlex/solana-casino/internal/lib/logger/sl"
	"github.com/xbtlex/solana-casino/internal/lib/random"
	"github.com/xbtlex/solana-casino/internal/metrics"
	"github.com/xbtlex/solana-casino/internal/repository"
)

//go:generate go run github.com/vektra/mockery/v2@v2.28.2 --name=WagerStore
type WagerStore interface {
	SaveWager(wager model.Wager) (int64, error)
	FindWagerByUUID(wagerUUID uuid.UUID) (*model.Wager, error)
	UpdateWagerStatus(wagerUUID uuid.UUID, status model.WagerStatus) error
	MarkEscrowConfirmed(wagerUUID uuid.UUID, escrowRef string) error
	SaveResult(wagerUUID uuid.UUID, status model.WagerStatus, resultJSON string, multiplier float64, payout int64) error
	ListUnsettled() ([]model.Wager, error)
}

type PayoutLedger interface {
	RecordPending(wagerUUID uuid.UUID, amount int64) (int64, error)
	MarkSent(wagerUUID uuid.UUID, transferRef string) error
	MarkConfirmed(wagerUUID uuid.UUID) error
	MarkFailed(wagerUUID uuid.UUID, reason string) error
	FindByWagerUUID(wagerUUID uuid.UUID) (*model.PayoutRecord, error)
	ListUnresolved() ([]model.PayoutRecord, error)
}

type JackpotLedger interface {
	GetPool(game config.Game) (*model.JackpotPool, error)
	AddToPool(game config.Game, amount int64) error
	PayAndReset(game config.Game) (int64, error)
}

type ProofStore interface {
	SaveProof(proof model.FairnessProof) (int64, error)
	FindProofByWagerUUID(wagerUUID uuid.UUID) (*model.FairnessProof, error)
}

type CustodyLog interface {
	RecordTransaction(wagerUUID string, balanceType config.BalanceType, amount int64, game config.Game, details string) error
}

// Coordinator drives every wager through escrow, resolution and payout. All
// state transitions for one wager id run under that wager's lock.
type Coordinator struct {
	log      *slog.Logger
	cfg      config.Settlement
	wagers   WagerStore
	payouts  PayoutLedger
	jackpots JackpotLedger
	proofs   ProofStore
	custody  CustodyLog
	seeds    chain.SeedSource
	ledger   chain.Ledger
	payer    chain.PayoutTransport
	house    string
	pub      event.Publisher
	metrics  *metrics.Metrics
	locks    *keyedMutex
	wg       sync.WaitGroup
}

func NewCoordinator(
	log *slog.Logger,
	cfg config.Settlement,
	wagers WagerStore,
	payouts PayoutLedger,
	jackpots JackpotLedger,
	proofs ProofStore,
	custody CustodyLog,
	seeds chain.SeedSource,
	ledger chain.Ledger,
	payer chain.PayoutTransport,
	houseAddress string,
	pub event.Publisher,
	m *metrics.Metrics) *Coordinator {
	return &Coordinator{
		log:      log,
		cfg:      cfg,
		wagers:   wagers,
		payouts:  payouts,
		jackpots: jackpots,
		proofs:   proofs,
		custody:  custody,
		seeds:    seeds,
		ledger:   ledger,
		payer:    payer,
		house:    houseAddress,
		pub:      pub,
		metrics:  m,
		locks:    newKeyedMutex(),
	}
}

type PlaceWagerRequest struct {
	Game          config.Game
	Params        games.Params
	Stake         int64
	PlayerAddress string
	// EscrowSig is the signature of the stake transfer the player's wallet
	// already submitted toward house custody. The coordinator only ever
	// confirms it; signing stays with the wallet.
	EscrowSig string
}

// PlaceWager validates and persists a wager, then drives settlement in the
// background. The returned wager is in the Created state; progress is
// observable through WagerStatus.
func (c *Coordinator) PlaceWager(ctx context.Context, req PlaceWagerRequest) (*model.Wager, error) {
	const op = "settle.Coordinator.PlaceWager"

	if err := games.ValidateStake(req.Game, req.Stake); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrInvalidWagerParams, err)
	}

	if err := games.Validate(req.Game, req.Params); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrInvalidWagerParams, err)
	}

	if req.PlayerAddress == "" || req.EscrowSig == "" {
		return nil, fmt.Errorf("%s: %w: missing player address or escrow signature", op, ErrInvalidWagerParams)
	}

	paramsJSON, err := json.Marshal(req.Params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	wager := model.Wager{
		UUID:          uuid.New(),
		PlayerAddress: req.PlayerAddress,
		Game:          req.Game,
		Params:        string(paramsJSON),
		Stake:         req.Stake,
		Nonce:         random.NewRandomString(32),
		Status:        model.WagerCreated,
		EscrowSig:     req.EscrowSig,
		CreatedAt:     time.Now(),
	}

	wager.ID, err = c.wagers.SaveWager(wager)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c.metrics.WagersPlaced.WithLabelValues(string(req.Game)).Inc()
	c.metrics.StakeVolume.WithLabelValues(string(req.Game)).Add(float64(req.Stake))

	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if err := c.RunSettlement(context.Background(), wager.UUID); err != nil {
			c.log.Error("settlement failed",
				sl.String("wager", wager.UUID.String()), sl.Err(err))
		}
	}()

	return &wager, nil
}

// RunSettlement walks one wager through the whole state machine. It is safe
// to call again for a wager that already progressed: each stage checks the
// recorded status first.
func (c *Coordinator) RunSettlement(ctx context.Context, wagerUUID uuid.UUID) error {
	const op = "settle.Coordinator.RunSettlement"

	unlock := c.locks.Lock(wagerUUID)
	defer unlock()

	wager, err := c.wagers.FindWagerByUUID(wagerUUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	// The escrow signature is persisted with the wager, so a wager that died
	// mid-wait re-enters the wait from here on restart.
	if wager.Status == model.WagerCreated || wager.Status == model.WagerEscrowPending {
		if err = c.awaitEscrow(ctx, wager); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		wager.Status = model.WagerEscrowConfirmed
		wager.EscrowRef = wager.EscrowSig
	}

	// A wager found at Resolving was interrupted mid-resolution; resolve
	// replays the persisted proof material when one exists.
	if wager.Status == model.WagerEscrowConfirmed || wager.Status == model.WagerResolving {
		if err = c.resolve(ctx, wager); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if wager.Status == model.WagerResolvedLose {
		// Stake is already in custody; nothing moves.
		if err = c.wagers.UpdateWagerStatus(wager.UUID, model.WagerSettled); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		c.metrics.WagersSettled.WithLabelValues(string(wager.Game), "lose").Inc()

		c.publishSettled(wager, model.WagerSettled)

		return nil
	}

	if wager.Status == model.WagerResolvedWin || wager.Status == model.WagerPayoutPending {
		if err = c.executePayout(ctx, wager); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

// awaitEscrow polls the ledger for the stake transfer, bounded by the seed
// validity window. Transient RPC errors do not abort the wait; only a
// rejection or the deadline do. No outcome exists yet, so an abort here
// leaves the player's funds untouched.
//
// The window is anchored at wager creation, not at entry: a restart cannot
// stretch it, and a wager resumed past it is cancelled after one last look
// at the ledger.
func (c *Coordinator) awaitEscrow(ctx context.Context, wager *model.Wager) error {
	const op = "settle.Coordinator.awaitEscrow"

	if err := c.wagers.UpdateWagerStatus(wager.UUID, model.WagerEscrowPending); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	deadline := wager.CreatedAt.Add(c.cfg.EscrowWindow)

	for {
		status, err := c.ledger.ConfirmTransfer(ctx, wager.EscrowSig)
		if err != nil {
			c.log.Warn("escrow confirmation check failed",
				sl.String("wager", wager.UUID.String()), sl.Err(err))
		} else {
			switch status {
			case chain.TransferConfirmed:
				if err = c.wagers.MarkEscrowConfirmed(wager.UUID, wager.EscrowSig); err != nil {
					return fmt.Errorf("%s: %w", op, err)
				}

				if err = c.custody.RecordTransaction(wager.UUID.String(), config.Income,
					wager.Stake, wager.Game, ""); err != nil {
					c.log.Error("failed to record custody income", sl.Err(err))
				}

				return nil
			case chain.TransferFailed:
				c.abortEscrow(wager)

				return fmt.Errorf("%s: %w", op, ErrEscrowRejected)
			}
		}

		if time.Now().After(deadline) {
			c.abortEscrow(wager)

			return fmt.Errorf("%s: %w", op, ErrEscrowTimeout)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", op, ctx.Err())
		case <-time.After(c.cfg.ConfirmPollInterval):
		}
	}
}

func (c *Coordinator) abortEscrow(wager *model.Wager) {
	if err := c.wagers.UpdateWagerStatus(wager.UUID, model.WagerEscrowFailed); err != nil {
		c.log.Error("failed to mark escrow failed", sl.Err(err))
	}

	c.metrics.EscrowFailures.Inc()

	c.publishSettled(wager, model.WagerEscrowFailed)
}

// resolve derives the fairness digest from the confirmed escrow reference
// and runs the game's resolver. Seed material is never requested before this
// point, so a failed escrow attempt can never be replayed against a known
// favorable seed.
func (c *Coordinator) resolve(ctx context.Context, wager *model.Wager) error {
	const op = "settle.Coordinator.resolve"

	if err := c.wagers.UpdateWagerStatus(wager.UUID, model.WagerResolving); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var material fair.Material

	// A resolution interrupted after its proof was written replays the
	// persisted material. Fetching a fresh seed here would both collide
	// with the existing proof row and let the outcome drift with the
	// chain tip.
	proof, err := c.proofs.FindProofByWagerUUID(wager.UUID)
	switch {
	case err == nil:
		material = fair.Material{
			Blockhash: proof.Blockhash,
			Slot:      proof.Slot,
			WagerID:   wager.UUID.String(),
			Nonce:     proof.Nonce,
			EscrowRef: proof.EscrowRef,
		}
	case errors.Is(err, repository.ErrProofNotFound):
		seed, seedErr := c.seeds.PublicSeed(ctx)
		if seedErr != nil {
			// Funds are in custody, so the wager must stay resolvable. Park
			// it at EscrowConfirmed for the resume pass rather than degrade
			// the randomness source.
			if stErr := c.wagers.MarkEscrowConfirmed(wager.UUID, wager.EscrowRef); stErr != nil {
				c.log.Error("failed to park unresolved wager", sl.Err(stErr))
			}

			return fmt.Errorf("%s: %w", op, seedErr)
		}

		material = fair.Material{
			Blockhash: seed.Blockhash,
			Slot:      seed.Slot,
			WagerID:   wager.UUID.String(),
			Nonce:     wager.Nonce,
			EscrowRef: wager.EscrowRef,
		}
	default:
		return fmt.Errorf("%s: %w", op, err)
	}

	digest, err := fair.Derive(material)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if proof == nil {
		if _, err = c.proofs.SaveProof(model.FairnessProof{
			WagerUUID: wager.UUID,
			Blockhash: material.Blockhash,
			Slot:      material.Slot,
			Nonce:     material.Nonce,
			EscrowRef: material.EscrowRef,
			DigestHex: digest.Hex(),
		}); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		// The pool takes its cut before the outcome is known, keyed to the
		// proof write so a replayed resolution cannot contribute twice.
		if gameCfg := config.GameConfigs[wager.Game]; gameCfg.JackpotRate > 0 {
			contribution := int64(float64(wager.Stake) * gameCfg.JackpotRate)

			if err = c.jackpots.AddToPool(wager.Game, contribution); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
		}
	}

	var params games.Params

	if err = json.Unmarshal([]byte(wager.Params), &params); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	result, err := games.Resolve(wager.Game, params, digest)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	payout := int64(math.Round(float64(wager.Stake) * result.Multiplier))

	if result.JackpotHit {
		pool, err := c.jackpots.PayAndReset(wager.Game)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		payout += pool

		c.metrics.JackpotHits.WithLabelValues(string(wager.Game)).Inc()

		c.publish("jackpot-hit", map[string]interface{}{
			"wager_uuid": wager.UUID.String(),
			"game":       string(wager.Game),
			"amount":     pool,
		})
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	status := model.WagerResolvedLose
	if payout > 0 {
		status = model.WagerResolvedWin
	}

	if err = c.wagers.SaveResult(wager.UUID, status, string(resultJSON), result.Multiplier, payout); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	wager.Status = status
	wager.ResultJSON = string(resultJSON)
	wager.Multiplier = result.Multiplier
	wager.Payout = payout

	return nil
}

// WagerStatus reports a wager with its payout record, if any.
func (c *Coordinator) WagerStatus(wagerUUID uuid.UUID) (*model.Wager, *model.PayoutRecord, error) {
	const op = "settle.Coordinator.WagerStatus"

	wager, err := c.wagers.FindWagerByUUID(wagerUUID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	record, err := c.payouts.FindByWagerUUID(wagerUUID)
	if err != nil {
		record = nil
	}

	return wager, record, nil
}

// PendingPayouts lists unresolved payout ledger entries for operator review.
func (c *Coordinator) PendingPayouts() ([]model.PayoutRecord, error) {
	const op = "settle.Coordinator.PendingPayouts"

	records, err := c.payouts.ListUnresolved()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return records, nil
}

// Resume re-drives wagers that were anywhere between placement and
// settlement when the process last stopped. Escrow-stage wagers re-enter the
// confirmation wait with whatever remains of their window. Wagers in
// PayoutFailed stay on the operator queue and are not retried automatically.
func (c *Coordinator) Resume(ctx context.Context) error {
	const op = "settle.Coordinator.Resume"

	wagers, err := c.wagers.ListUnsettled()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, wager := range wagers {
		if wager.Status == model.WagerPayoutFailed {
			continue
		}

		wager := wager

		c.wg.Add(1)

		go func() {
			defer c.wg.Done()

			if err := c.RunSettlement(ctx, wager.UUID); err != nil {
				c.log.Error("resume settlement failed",
					sl.String("wager", wager.UUID.String()), sl.Err(err))
			}
		}()
	}

	return nil
}

// Shutdown waits for in-flight settlements. A wager past escrow is never
// cancelled; anything interrupted here is picked up by Resume on the next
// start.
func (c *Coordinator) Shutdown(ctx context.Context) error {
	done := make(chan struct{})

	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Coordinator) publishSettled(wager *model.Wager, status model.WagerStatus) {
	c.publish("wager-settled", map[string]interface{}{
		"wager_uuid": wager.UUID.String(),
		"game":       string(wager.Game),
		"status":     string(status),
		"multiplier": wager.Multiplier,
		"payout":     wager.Payout,
	})
}

func (c *Coordinator) publish(eventName string, data map[string]interface{}) {
	if c.pub == nil {
		return
	}

	if err := c.pub.TriggerEvent(event.Message{
		Channel: "wager-channel",
		Event:   eventName,
		Data:    data,
	}); err != nil {
		c.log.Error("failed to publish event", sl.Err(err))
	}
}
