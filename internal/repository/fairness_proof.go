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

var ErrProofNotFound = errors.New("fairness proof not found")

type FairnessProofRepository struct {
	dbhandler mysql.Handler
}

func NewFairnessProofRepository(dbhandler mysql.Handler) *FairnessProofRepository {
	return &FairnessProofRepository{dbhandler: dbhandler}
}

func (repo *FairnessProofRepository) SaveProof(proof model.FairnessProof) (int64, error) {
	const op = "repository.fairness_proof.SaveProof"

	const query = `INSERT INTO fairness_proofs(wager_uuid, blockhash, slot, nonce, escrow_ref, digest, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?)`

	res, err := repo.dbhandler.PrepareAndExecute(query,
		proof.WagerUUID.String(), proof.Blockhash, proof.Slot, proof.Nonce,
		proof.EscrowRef, proof.DigestHex, time.Now())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (repo *FairnessProofRepository) FindProofByWagerUUID(wagerUUID uuid.UUID) (*model.FairnessProof, error) {
	const op = "repository.fairness_proof.FindProofByWagerUUID"

	const query = `SELECT id, wager_uuid, blockhash, slot, nonce, escrow_ref, digest, created_at
		FROM fairness_proofs WHERE wager_uuid = ?`

	row, err := repo.dbhandler.PrepareAndQueryRow(query, wagerUUID.String())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	proof := &model.FairnessProof{}

	var uuidStr string

	err = row.Scan(&proof.ID, &uuidStr, &proof.Blockhash, &proof.Slot, &proof.Nonce,
		&proof.EscrowRef, &proof.DigestHex, &proof.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProofNotFound
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	proof.WagerUUID, err = uuid.Parse(uuidStr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return proof, nil
}
