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

var ErrPayoutNotFound = errors.New("payout record not found")

type PayoutLedgerRepository struct {
	dbhandler mysql.Handler
}

func NewPayoutLedgerRepository(dbhandler mysql.Handler) *PayoutLedgerRepository {
	return &PayoutLedgerRepository{dbhandler: dbhandler}
}

// RecordPending inserts the pending record for a wager. The unique key on
// wager_uuid makes a second insert for the same wager fail, which keeps the
// ledger idempotent under concurrent settlement requests.
func (repo *PayoutLedgerRepository) RecordPending(wagerUUID uuid.UUID, amount int64) (int64, error) {
	const op = "repository.payout_ledger.RecordPending"

	const query = `INSERT INTO payout_records(wager_uuid, amount, status, attempts, created_at, updated_at)
		VALUES(?, ?, ?, 0, ?, ?)`

	now := time.Now()

	res, err := repo.dbhandler.PrepareAndExecute(query,
		wagerUUID.String(), amount, string(model.PayoutPending), now, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (repo *PayoutLedgerRepository) MarkSent(wagerUUID uuid.UUID, transferRef string) error {
	const op = "repository.payout_ledger.MarkSent"

	const query = `UPDATE payout_records SET status = ?, transfer_ref = ?, attempts = attempts + 1, updated_at = ?
		WHERE wager_uuid = ?`

	_, err := repo.dbhandler.PrepareAndExecute(query,
		string(model.PayoutSent), transferRef, time.Now(), wagerUUID.String())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (repo *PayoutLedgerRepository) MarkConfirmed(wagerUUID uuid.UUID) error {
	const op = "repository.payout_ledger.MarkConfirmed"

	const query = "UPDATE payout_records SET status = ?, fail_reason = '', updated_at = ? WHERE wager_uuid = ?"

	_, err := repo.dbhandler.PrepareAndExecute(query,
		string(model.PayoutConfirmed), time.Now(), wagerUUID.String())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (repo *PayoutLedgerRepository) MarkFailed(wagerUUID uuid.UUID, reason string) error {
	const op = "repository.payout_ledger.MarkFailed"

	const query = "UPDATE payout_records SET status = ?, fail_reason = ?, updated_at = ? WHERE wager_uuid = ?"

	_, err := repo.dbhandler.PrepareAndExecute(query,
		string(model.PayoutFailed), reason, time.Now(), wagerUUID.String())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (repo *PayoutLedgerRepository) FindByWagerUUID(wagerUUID uuid.UUID) (*model.PayoutRecord, error) {
	const op = "repository.payout_ledger.FindByWagerUUID"

	const query = `SELECT id, wager_uuid, amount, transfer_ref, status, attempts, fail_reason, created_at, updated_at
		FROM payout_records WHERE wager_uuid = ?`

	row, err := repo.dbhandler.PrepareAndQueryRow(query, wagerUUID.String())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	record, err := scanPayoutRecord(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPayoutNotFound
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return record, nil
}

// ListUnresolved returns pending, sent and failed records for operator
// review and for the retry worker after a restart.
func (repo *PayoutLedgerRepository) ListUnresolved() ([]model.PayoutRecord, error) {
	const op = "repository.payout_ledger.ListUnresolved"

	const query = `SELECT id, wager_uuid, amount, transfer_ref, status, attempts, fail_reason, created_at, updated_at
		FROM payout_records WHERE status IN (?, ?, ?) ORDER BY created_at`

	rows, err := repo.dbhandler.PrepareAndQuery(query,
		string(model.PayoutPending), string(model.PayoutSent), string(model.PayoutFailed))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var records []model.PayoutRecord

	for rows.Next() {
		record, err := scanPayoutRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		records = append(records, *record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return records, nil
}

func scanPayoutRecord(scan func(dest ...interface{}) error) (*model.PayoutRecord, error) {
	record := &model.PayoutRecord{}

	var (
		uuidStr     string
		transferRef sql.NullString
		failReason  sql.NullString
	)

	err := scan(&record.ID, &uuidStr, &record.Amount, &transferRef, &record.Status,
		&record.Attempts, &failReason, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return nil, err
	}

	wagerUUID, err := uuid.Parse(uuidStr)
	if err != nil {
		return nil, err
	}

	record.WagerUUID = wagerUUID
	record.TransferRef = transferRef.String
	record.FailReason = failReason.String

	return record, nil
}
