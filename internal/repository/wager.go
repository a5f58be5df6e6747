package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/xbtlex/solana-casino/internal/http-server/handlers/mysql"
	"github.com/xbtlex/solana-casino/internal/http-server/model"
)

var ErrWagerNotFound = errors.New("wager not found")

type WagerRepository struct {
	dbhandler mysql.Handler
}

func NewWagerRepository(dbhandler mysql.Handler) *WagerRepository {
	return &WagerRepository{dbhandler: dbhandler}
}

func (repo *WagerRepository) SaveWager(wager model.Wager) (int64, error) {
	const op = "repository.wager.SaveWager"

	const query = `INSERT INTO wagers(uuid, player_address, game, params, stake, nonce, status, escrow_sig, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := time.Now()

	res, err := repo.dbhandler.PrepareAndExecute(query,
		wager.UUID.String(), wager.PlayerAddress, string(wager.Game), wager.Params,
		wager.Stake, wager.Nonce, string(wager.Status), wager.EscrowSig, now, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (repo *WagerRepository) FindWagerByUUID(wagerUUID uuid.UUID) (*model.Wager, error) {
	const op = "repository.wager.FindWagerByUUID"

	const query = `SELECT id, uuid, player_address, game, params, stake, nonce, status,
		escrow_sig, escrow_ref, result, multiplier, payout, created_at, updated_at
		FROM wagers WHERE uuid = ?`

	row, err := repo.dbhandler.PrepareAndQueryRow(query, wagerUUID.String())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	wager := &model.Wager{}

	var (
		uuidStr   string
		escrowRef sql.NullString
		result    sql.NullString
	)

	err = row.Scan(&wager.ID, &uuidStr, &wager.PlayerAddress, &wager.Game, &wager.Params,
		&wager.Stake, &wager.Nonce, &wager.Status, &wager.EscrowSig, &escrowRef, &result,
		&wager.Multiplier, &wager.Payout, &wager.CreatedAt, &wager.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWagerNotFound
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	wager.UUID, err = uuid.Parse(uuidStr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	wager.EscrowRef = escrowRef.String
	wager.ResultJSON = result.String

	return wager, nil
}

func (repo *WagerRepository) UpdateWagerStatus(wagerUUID uuid.UUID, status model.WagerStatus) error {
	const op = "repository.wager.UpdateWagerStatus"

	const query = "UPDATE wagers SET status = ?, updated_at = ? WHERE uuid = ?"

	_, err := repo.dbhandler.PrepareAndExecute(query, string(status), time.Now(), wagerUUID.String())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (repo *WagerRepository) MarkEscrowConfirmed(wagerUUID uuid.UUID, escrowRef string) error {
	const op = "repository.wager.MarkEscrowConfirmed"

	const query = "UPDATE wagers SET status = ?, escrow_ref = ?, updated_at = ? WHERE uuid = ?"

	_, err := repo.dbhandler.PrepareAndExecute(query,
		string(model.WagerEscrowConfirmed), escrowRef, time.Now(), wagerUUID.String())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (repo *WagerRepository) SaveResult(wagerUUID uuid.UUID, status model.WagerStatus, resultJSON string, multiplier float64, payout int64) error {
	const op = "repository.wager.SaveResult"

	const query = `UPDATE wagers SET status = ?, result = ?, multiplier = ?, payout = ?, updated_at = ?
		WHERE uuid = ?`

	_, err := repo.dbhandler.PrepareAndExecute(query,
		string(status), resultJSON, multiplier, payout, time.Now(), wagerUUID.String())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ListUnsettled returns wagers anywhere between placement and settlement,
// used to resume interrupted work after a restart. Escrow-stage wagers are
// included: the persisted escrow signature lets the wait be re-entered.
func (repo *WagerRepository) ListUnsettled() ([]model.Wager, error) {
	const op = "repository.wager.ListUnsettled"

	const query = `SELECT id, uuid, player_address, game, params, stake, nonce, status,
		escrow_sig, escrow_ref, result, multiplier, payout, created_at, updated_at
		FROM wagers WHERE status IN (?, ?, ?, ?, ?, ?, ?)`

	rows, err := repo.dbhandler.PrepareAndQuery(query,
		string(model.WagerCreated), string(model.WagerEscrowPending),
		string(model.WagerEscrowConfirmed), string(model.WagerResolving),
		string(model.WagerResolvedWin), string(model.WagerPayoutPending), string(model.WagerPayoutFailed))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var wagers []model.Wager

	for rows.Next() {
		wager := model.Wager{}

		var (
			uuidStr   string
			escrowRef sql.NullString
			result    sql.NullString
		)

		err = rows.Scan(&wager.ID, &uuidStr, &wager.PlayerAddress, &wager.Game, &wager.Params,
			&wager.Stake, &wager.Nonce, &wager.Status, &wager.EscrowSig, &escrowRef, &result,
			&wager.Multiplier, &wager.Payout, &wager.CreatedAt, &wager.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		wager.UUID, err = uuid.Parse(uuidStr)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		wager.EscrowRef = escrowRef.String
		wager.ResultJSON = result.String

		wagers = append(wagers, wager)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return wagers, nil
}
