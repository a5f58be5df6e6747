package settle

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/xbtlex/solana-casino/internal/chain"
	"github.com/xbtlex/solana-casino/internal/config"
	"github.com/xbtlex/solana-casino/internal/http-server/model"
	"github.com/xbtlex/solana-casino/internal/lib/logger/sl"
)

// Settle finishes settlement for a wager on demand, keyed by wager id. For a
// wager already paid out it returns the cached record and performs no new
// transfer, so repeated calls are idempotent.
func (c *Coordinator) Settle(ctx context.Context, wagerUUID uuid.UUID) (*model.PayoutRecord, error) {
	const op = "settle.Coordinator.Settle"

	unlock := c.locks.Lock(wagerUUID)
	defer unlock()

	wager, err := c.wagers.FindWagerByUUID(wagerUUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	switch wager.Status {
	case model.WagerPayoutConfirmed, model.WagerSettled:
		record, err := c.payouts.FindByWagerUUID(wagerUUID)
		if err != nil {
			// Settled losses never had a payout record.
			if wager.Payout == 0 {
				return nil, nil
			}

			return nil, fmt.Errorf("%s: %w", op, err)
		}

		return record, nil
	case model.WagerResolvedWin, model.WagerPayoutPending, model.WagerPayoutFailed:
		if err = c.executePayout(ctx, wager); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		record, err := c.payouts.FindByWagerUUID(wagerUUID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		return record, nil
	default:
		return nil, fmt.Errorf("%s: %w: wager is %s", op, ErrNotPayable, wager.Status)
	}
}

// RetryPayout is the operator path for wagers escalated to PayoutFailed.
func (c *Coordinator) RetryPayout(ctx context.Context, wagerUUID uuid.UUID) (*model.PayoutRecord, error) {
	const op = "settle.Coordinator.RetryPayout"

	record, err := c.Settle(ctx, wagerUUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return record, nil
}

// executePayout moves stake*multiplier from custody to the player. Caller
// must hold the wager's lock. The payout ledger is consulted first: a
// confirmed record short-circuits without touching the chain, and a sent
// record is re-confirmed rather than re-sent.
func (c *Coordinator) executePayout(ctx context.Context, wager *model.Wager) error {
	const op = "settle.Coordinator.executePayout"

	record, err := c.payouts.FindByWagerUUID(wager.UUID)
	if err != nil {
		if _, err = c.payouts.RecordPending(wager.UUID, wager.Payout); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	} else {
		switch record.Status {
		case model.PayoutConfirmed:
			return nil
		case model.PayoutSent:
			// A transfer reference exists; find out what happened to it
			// before even thinking about sending another one.
			confirmed, confErr := c.confirmSent(ctx, wager, record.TransferRef)
			if confErr == nil && confirmed {
				return nil
			}
		}
	}

	// Fail fast on an underfunded custody account: a half-submitted payout
	// is worse than a queued one.
	balance, err := c.ledger.Balance(ctx, c.house)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if balance < wager.Payout {
		if err = c.payouts.MarkFailed(wager.UUID, "insufficient house balance"); err != nil {
			c.log.Error("failed to mark payout failed", sl.Err(err))
		}

		// The win stands; only the settlement is degraded.
		if err = c.wagers.UpdateWagerStatus(wager.UUID, model.WagerResolvedWin); err != nil {
			c.log.Error("failed to reset wager status", sl.Err(err))
		}

		return fmt.Errorf("%s: %w: have %d, need %d", op, ErrInsufficientHouseBalance, balance, wager.Payout)
	}

	if err = c.wagers.UpdateWagerStatus(wager.UUID, model.WagerPayoutPending); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	attempt := 0

	sendAndConfirm := func() error {
		attempt++

		if attempt > 1 {
			c.metrics.PayoutRetries.Inc()
		}

		reference, sendErr := c.payer.SendPayout(ctx, wager.PlayerAddress, wager.Payout)
		if sendErr != nil {
			c.log.Warn("payout send failed",
				sl.String("wager", wager.UUID.String()),
				sl.Any("attempt", attempt),
				sl.Err(sendErr))

			return sendErr
		}

		if markErr := c.payouts.MarkSent(wager.UUID, reference); markErr != nil {
			return backoff.Permanent(markErr)
		}

		confirmed, confErr := c.confirmSent(ctx, wager, reference)
		if confErr != nil {
			return confErr
		}

		if !confirmed {
			return fmt.Errorf("transfer %s not confirmed", reference)
		}

		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.PayoutBackoffBase

	err = backoff.Retry(sendAndConfirm,
		backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.cfg.PayoutMaxAttempts-1)), ctx))
	if err != nil {
		if markErr := c.payouts.MarkFailed(wager.UUID, err.Error()); markErr != nil {
			c.log.Error("failed to mark payout failed", sl.Err(markErr))
		}

		if stErr := c.wagers.UpdateWagerStatus(wager.UUID, model.WagerPayoutFailed); stErr != nil {
			c.log.Error("failed to mark wager payout failed", sl.Err(stErr))
		}

		c.metrics.PayoutsFailed.Inc()

		c.publish("payout-escalated", map[string]interface{}{
			"wager_uuid": wager.UUID.String(),
			"amount":     wager.Payout,
			"reason":     err.Error(),
		})

		return fmt.Errorf("%s: %w: %v", op, ErrPayoutSendFailed, err)
	}

	return nil
}

// confirmSent waits for a submitted payout transfer to confirm, bounded by
// the escrow window. It also finalizes ledger and wager state on success.
func (c *Coordinator) confirmSent(ctx context.Context, wager *model.Wager, reference string) (bool, error) {
	const op = "settle.Coordinator.confirmSent"

	deadline := time.Now().Add(c.cfg.EscrowWindow)

	for {
		status, err := c.ledger.ConfirmTransfer(ctx, reference)
		if err != nil {
			c.log.Warn("payout confirmation check failed", sl.Err(err))
		} else {
			switch status {
			case chain.TransferConfirmed:
				if err = c.finalizePayout(wager, reference); err != nil {
					return true, fmt.Errorf("%s: %w", op, err)
				}

				return true, nil
			case chain.TransferFailed:
				return false, nil
			}
		}

		if time.Now().After(deadline) {
			return false, fmt.Errorf("%s: confirmation window elapsed for %s", op, reference)
		}

		select {
		case <-ctx.Done():
			return false, fmt.Errorf("%s: %w", op, ctx.Err())
		case <-time.After(c.cfg.ConfirmPollInterval):
		}
	}
}

func (c *Coordinator) finalizePayout(wager *model.Wager, reference string) error {
	const op = "settle.Coordinator.finalizePayout"

	if err := c.payouts.MarkConfirmed(wager.UUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := c.wagers.UpdateWagerStatus(wager.UUID, model.WagerPayoutConfirmed); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := c.wagers.UpdateWagerStatus(wager.UUID, model.WagerSettled); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := c.custody.RecordTransaction(wager.UUID.String(), config.Outcome,
		wager.Payout, wager.Game, reference); err != nil {
		c.log.Error("failed to record custody outcome", sl.Err(err))
	}

	c.metrics.PayoutsConfirmed.Inc()
	c.metrics.PayoutVolume.Add(float64(wager.Payout))
	c.metrics.WagersSettled.WithLabelValues(string(wager.Game), "win").Inc()

	wager.Status = model.WagerSettled

	c.publishSettled(wager, model.WagerSettled)

	return nil
}
