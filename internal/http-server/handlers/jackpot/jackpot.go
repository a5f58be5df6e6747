package jackpot

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"golang.org/x/exp/slog"

	"github.com/xbtlex/solana-casino/internal/config"
	"github.com/xbtlex/solana-casino/internal/http-server/model"
	resp "github.com/xbtlex/solana-casino/internal/lib/api/response"
	"github.com/xbtlex/solana-casino/internal/lib/converter"
	"github.com/xbtlex/solana-casino/internal/lib/logger/sl"
)

type Response struct {
	resp.Response
	Game string  `json:"game"`
	Pool string  `json:"pool"`
	Sol  float64 `json:"pool_sol"`
}

type PoolReader interface {
	GetPool(game config.Game) (*model.JackpotPool, error)
}

type Jackpot struct {
	log   *slog.Logger
	pools PoolReader
}

func NewJackpot(log *slog.Logger, pools PoolReader) *Jackpot {
	return &Jackpot{
		log:   log,
		pools: pools,
	}
}

func (j *Jackpot) New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.jackpot.New"

		log := j.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		game := config.Game(chi.URLParam(r, "game"))
		if !game.Valid() {
			render.JSON(w, r, resp.Error("unknown game", http.StatusBadRequest))

			return
		}

		if config.GameConfigs[game].JackpotRate == 0 {
			render.JSON(w, r, resp.Error("game has no jackpot", http.StatusNotFound))

			return
		}

		pool, err := j.pools.GetPool(game)
		if err != nil {
			log.Error("failed to load jackpot pool", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to load jackpot pool", http.StatusInternalServerError))

			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Game:     string(game),
			Pool:     converter.ConvertAmountLamportsToString(pool.Pool),
			Sol:      converter.ConvertAmountLamportsToSol(pool.Pool),
		})
	}
}
