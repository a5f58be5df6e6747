package place_wager

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"golang.org/x/exp/slog"

	"github.com/xbtlex/solana-casino/internal/config"
	"github.com/xbtlex/solana-casino/internal/games"
	"github.com/xbtlex/solana-casino/internal/http-server/model"
	resp "github.com/xbtlex/solana-casino/internal/lib/api/response"
	"github.com/xbtlex/solana-casino/internal/lib/converter"
	"github.com/xbtlex/solana-casino/internal/lib/logger/sl"
	"github.com/xbtlex/solana-casino/internal/settle"
)

type Request struct {
	Game          string  `json:"game" validate:"required"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	PlayerAddress string  `json:"player_address" validate:"required"`
	EscrowSig     string  `json:"escrow_sig" validate:"required"`

	// Per-game parameters; only the fields for the chosen game are read.
	Side      string  `json:"side,omitempty" validate:"omitempty,oneof=heads tails"`
	WinChance float64 `json:"win_chance,omitempty" validate:"omitempty,gt=0"`
	Cashout   float64 `json:"cashout,omitempty" validate:"omitempty,gt=1"`
	Bet       string  `json:"bet,omitempty"`
	Number    int     `json:"number,omitempty" validate:"omitempty,min=0,max=36"`
	Risk      string  `json:"risk,omitempty" validate:"omitempty,oneof=low medium high"`
	Rows      int     `json:"rows,omitempty" validate:"omitempty,oneof=8 12 16"`
}

type Response struct {
	resp.Response
	WagerUUID string `json:"wager_uuid"`
	Nonce     string `json:"nonce"`
	Status    string `json:"wager_status"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.28.2 --name=WagerPlacer
type WagerPlacer interface {
	PlaceWager(ctx context.Context, req settle.PlaceWagerRequest) (*model.Wager, error)
}

type Place struct {
	log       *slog.Logger
	validator *validator.Validate
	placer    WagerPlacer
}

func NewPlace(log *slog.Logger, placer WagerPlacer) *Place {
	return &Place{
		log:       log,
		validator: validator.New(),
		placer:    placer,
	}
}

func (p *Place) New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.wager.place.New"

		var (
			err   error
			req   Request
			log   *slog.Logger
			game  config.Game
			wager *model.Wager
		)

		log = p.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		err = render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to decode request body", http.StatusBadRequest))

			return
		}

		log.Info("request body decoded", slog.Any("request", req))

		if err = p.validator.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("invalid request", sl.Err(err))

			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		game = config.Game(req.Game)
		if !game.Valid() {
			log.Error("unknown game", slog.String("game", req.Game))

			render.JSON(w, r, resp.Error("unknown game", http.StatusBadRequest))

			return
		}

		wager, err = p.placer.PlaceWager(r.Context(), settle.PlaceWagerRequest{
			Game: game,
			Params: games.Params{
				Side:      req.Side,
				WinChance: req.WinChance,
				Cashout:   req.Cashout,
				Bet:       config.RouletteBetType(req.Bet),
				Number:    req.Number,
				Risk:      config.PlinkoRisk(req.Risk),
				Rows:      req.Rows,
			},
			Stake:         converter.ConvertAmountSolToLamports(req.Amount),
			PlayerAddress: req.PlayerAddress,
			EscrowSig:     req.EscrowSig,
		})
		if err != nil {
			if errors.Is(err, settle.ErrInvalidWagerParams) {
				log.Error("invalid wager", sl.Err(err))

				render.JSON(w, r, resp.Error("invalid wager", http.StatusUnprocessableEntity))

				return
			}

			log.Error("failed to place wager", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to place wager", http.StatusInternalServerError))

			return
		}

		log.Info("wager placed",
			slog.String("wager_uuid", wager.UUID.String()),
			slog.String("game", string(wager.Game)))

		render.JSON(w, r, Response{
			Response:  resp.OK(),
			WagerUUID: wager.UUID.String(),
			Nonce:     wager.Nonce,
			Status:    string(wager.Status),
		})
	}
}
