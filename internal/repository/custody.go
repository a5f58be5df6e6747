package repository

import (
	"fmt"
	"time"

	"github.com/xbtlex/solana-casino/internal/config"
	"github.com/xbtlex/solana-casino/internal/http-server/handlers/mysql"
)

type CustodyRepository struct {
	dbhandler mysql.Handler
}

func NewCustodyRepository(dbhandler mysql.Handler) *CustodyRepository {
	return &CustodyRepository{dbhandler: dbhandler}
}

// RecordTransaction appends one custody movement: escrowed stakes come in as
// income, payouts go out as outcome.
func (repo *CustodyRepository) RecordTransaction(wagerUUID string, balanceType config.BalanceType, amount int64, game config.Game, details string) error {
	const op = "repository.custody.RecordTransaction"

	const query = `INSERT INTO custody_transactions(wager_uuid, type, amount, game, details, created_at)
		VALUES(?, ?, ?, ?, ?, ?)`

	_, err := repo.dbhandler.PrepareAndExecute(query,
		wagerUUID, string(balanceType), amount, string(game), details, time.Now())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
