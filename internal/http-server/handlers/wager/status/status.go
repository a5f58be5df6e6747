package wager_status

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/exp/slog"

	"github.com/xbtlex/solana-casino/internal/http-server/model"
	resp "github.com/xbtlex/solana-casino/internal/lib/api/response"
	"github.com/xbtlex/solana-casino/internal/lib/converter"
	"github.com/xbtlex/solana-casino/internal/lib/logger/sl"
	"github.com/xbtlex/solana-casino/internal/repository"
)

const (
	cacheExpiration = 5 * time.Minute
	cacheCleanup    = 10 * time.Minute
)

type Response struct {
	resp.Response
	Wager  WagerView   `json:"wager"`
	Payout *PayoutView `json:"payout,omitempty"`
	Proof  *ProofView  `json:"proof,omitempty"`
}

type WagerView struct {
	UUID       string  `json:"uuid"`
	Game       string  `json:"game"`
	Status     string  `json:"status"`
	Stake      string  `json:"stake"`
	Multiplier float64 `json:"multiplier"`
	Payout     string  `json:"payout"`
	Result     string  `json:"result,omitempty"`
}

type PayoutView struct {
	Status      string `json:"status"`
	Amount      string `json:"amount"`
	TransferRef string `json:"transfer_ref,omitempty"`
	Attempts    int    `json:"attempts"`
}

// ProofView carries everything a player needs to replay the outcome digest.
type ProofView struct {
	Blockhash string `json:"blockhash"`
	Slot      uint64 `json:"slot"`
	Nonce     string `json:"nonce"`
	EscrowRef string `json:"escrow_ref"`
	Digest    string `json:"digest"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.28.2 --name=StatusProvider
type StatusProvider interface {
	WagerStatus(wagerUUID uuid.UUID) (*model.Wager, *model.PayoutRecord, error)
}

type ProofFinder interface {
	FindProofByWagerUUID(wagerUUID uuid.UUID) (*model.FairnessProof, error)
}

type Status struct {
	log      *slog.Logger
	provider StatusProvider
	proofs   ProofFinder
	cache    *gocache.Cache
}

func NewStatus(log *slog.Logger, provider StatusProvider, proofs ProofFinder) *Status {
	return &Status{
		log:      log,
		provider: provider,
		proofs:   proofs,
		cache:    gocache.New(cacheExpiration, cacheCleanup),
	}
}

func (s *Status) New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.wager.status.New"

		var (
			err       error
			log       *slog.Logger
			wagerUUID uuid.UUID
			wager     *model.Wager
			record    *model.PayoutRecord
			proof     *model.FairnessProof
			response  Response
		)

		log = s.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		wagerUUID, err = uuid.Parse(chi.URLParam(r, "uuid"))
		if err != nil {
			log.Error("invalid wager uuid", sl.Err(err))

			render.JSON(w, r, resp.Error("invalid wager uuid", http.StatusBadRequest))

			return
		}

		// Terminal wagers never change again, so they are served from cache.
		if cached, found := s.cache.Get(wagerUUID.String()); found {
			render.JSON(w, r, cached.(Response))

			return
		}

		wager, record, err = s.provider.WagerStatus(wagerUUID)
		if err != nil {
			if errors.Is(err, repository.ErrWagerNotFound) {
				log.Error("wager not found", sl.Err(err))

				render.JSON(w, r, resp.Error("wager not found", http.StatusNotFound))

				return
			}

			log.Error("failed to load wager", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to load wager", http.StatusInternalServerError))

			return
		}

		response = Response{
			Response: resp.OK(),
			Wager: WagerView{
				UUID:       wager.UUID.String(),
				Game:       string(wager.Game),
				Status:     string(wager.Status),
				Stake:      converter.ConvertAmountLamportsToString(wager.Stake),
				Multiplier: wager.Multiplier,
				Payout:     converter.ConvertAmountLamportsToString(wager.Payout),
				Result:     wager.ResultJSON,
			},
		}

		if record != nil {
			response.Payout = &PayoutView{
				Status:      string(record.Status),
				Amount:      converter.ConvertAmountLamportsToString(record.Amount),
				TransferRef: record.TransferRef,
				Attempts:    record.Attempts,
			}
		}

		proof, err = s.proofs.FindProofByWagerUUID(wagerUUID)
		if err == nil {
			response.Proof = &ProofView{
				Blockhash: proof.Blockhash,
				Slot:      proof.Slot,
				Nonce:     proof.Nonce,
				EscrowRef: proof.EscrowRef,
				Digest:    proof.DigestHex,
			}
		} else if !errors.Is(err, repository.ErrProofNotFound) {
			log.Error("failed to load fairness proof", sl.Err(err))
		}

		if wager.Status.Terminal() {
			s.cache.Set(wagerUUID.String(), response, gocache.DefaultExpiration)
		}

		render.JSON(w, r, response)
	}
}
