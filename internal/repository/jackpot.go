package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xbtlex/solana-casino/internal/config"
	"github.com/xbtlex/solana-casino/internal/http-server/handlers/mysql"
	"github.com/xbtlex/solana-casino/internal/http-server/model"
)

var ErrJackpotNotFound = errors.New("jackpot pool not found")

type JackpotRepository struct {
	dbhandler mysql.Handler
}

func NewJackpotRepository(dbhandler mysql.Handler) *JackpotRepository {
	return &JackpotRepository{dbhandler: dbhandler}
}

func (repo *JackpotRepository) GetPool(game config.Game) (*model.JackpotPool, error) {
	const op = "repository.jackpot.GetPool"

	const query = "SELECT id, game, pool, seed_value, updated_at FROM jackpot_pools WHERE game = ?"

	row, err := repo.dbhandler.PrepareAndQueryRow(query, string(game))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pool := &model.JackpotPool{}

	err = row.Scan(&pool.ID, &pool.Game, &pool.Pool, &pool.SeedValue, &pool.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJackpotNotFound
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return pool, nil
}

// AddToPool increments the pool in a single statement so concurrent wagers
// never lose an increment.
func (repo *JackpotRepository) AddToPool(game config.Game, amount int64) error {
	const op = "repository.jackpot.AddToPool"

	const query = "UPDATE jackpot_pools SET pool = pool + ?, updated_at = ? WHERE game = ?"

	_, err := repo.dbhandler.PrepareAndExecute(query, amount, time.Now(), string(game))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// PayAndReset reads the pool and resets it to its seed value inside one
// transaction with a row lock, returning the paid amount. Two concurrent
// jackpot hits cannot both collect the same pool.
func (repo *JackpotRepository) PayAndReset(game config.Game) (int64, error) {
	const op = "repository.jackpot.PayAndReset"

	tx, err := repo.dbhandler.StartTransaction()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var pool, seed int64

	row := tx.QueryRow("SELECT pool, seed_value FROM jackpot_pools WHERE game = ? FOR UPDATE", string(game))

	if err = row.Scan(&pool, &seed); err != nil {
		_ = tx.Rollback()

		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrJackpotNotFound
		}

		return 0, fmt.Errorf("%s: %w", op, err)
	}

	_, err = tx.Exec("UPDATE jackpot_pools SET pool = ?, updated_at = ? WHERE game = ?",
		seed, time.Now(), string(game))
	if err != nil {
		_ = tx.Rollback()

		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return pool, nil
}
