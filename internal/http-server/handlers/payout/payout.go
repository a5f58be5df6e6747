package payout

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"github.com/xbtlex/solana-casino/internal/http-server/model"
	resp "github.com/xbtlex/solana-casino/internal/lib/api/response"
	"github.com/xbtlex/solana-casino/internal/lib/converter"
	"github.com/xbtlex/solana-casino/internal/lib/logger/sl"
	"github.com/xbtlex/solana-casino/internal/repository"
	"github.com/xbtlex/solana-casino/internal/settle"
)

type RecordView struct {
	WagerUUID   string `json:"wager_uuid"`
	Status      string `json:"status"`
	Amount      string `json:"amount"`
	TransferRef string `json:"transfer_ref,omitempty"`
	Attempts    int    `json:"attempts"`
	FailReason  string `json:"fail_reason,omitempty"`
}

type ListResponse struct {
	resp.Response
	Payouts []RecordView `json:"payouts"`
}

type SettleResponse struct {
	resp.Response
	Payout *RecordView `json:"payout,omitempty"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.28.2 --name=PayoutDriver
type PayoutDriver interface {
	Settle(ctx context.Context, wagerUUID uuid.UUID) (*model.PayoutRecord, error)
	PendingPayouts() ([]model.PayoutRecord, error)
	RetryPayout(ctx context.Context, wagerUUID uuid.UUID) (*model.PayoutRecord, error)
}

// Payout is the operator surface over the payout ledger: listing stuck
// payouts and re-driving them after the underlying failure is fixed.
type Payout struct {
	log    *slog.Logger
	driver PayoutDriver
}

func NewPayout(log *slog.Logger, driver PayoutDriver) *Payout {
	return &Payout{
		log:    log,
		driver: driver,
	}
}

func (p *Payout) Pending() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.payout.Pending"

		log := p.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		records, err := p.driver.PendingPayouts()
		if err != nil {
			log.Error("failed to list pending payouts", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to list pending payouts", http.StatusInternalServerError))

			return
		}

		views := make([]RecordView, 0, len(records))
		for _, record := range records {
			views = append(views, newRecordView(&record))
		}

		render.JSON(w, r, ListResponse{
			Response: resp.OK(),
			Payouts:  views,
		})
	}
}

// Settle triggers settlement for one wager. Calling it again for a settled
// wager returns the recorded payout without moving funds, so clients may
// retry freely on timeouts.
func (p *Payout) Settle() http.HandlerFunc {
	return p.drive("handlers.payout.Settle", func(ctx context.Context, wagerUUID uuid.UUID) (*model.PayoutRecord, error) {
		return p.driver.Settle(ctx, wagerUUID)
	})
}

func (p *Payout) Retry() http.HandlerFunc {
	return p.drive("handlers.payout.Retry", func(ctx context.Context, wagerUUID uuid.UUID) (*model.PayoutRecord, error) {
		return p.driver.RetryPayout(ctx, wagerUUID)
	})
}

func (p *Payout) drive(op string, fn func(ctx context.Context, wagerUUID uuid.UUID) (*model.PayoutRecord, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			err       error
			log       *slog.Logger
			wagerUUID uuid.UUID
			record    *model.PayoutRecord
		)

		log = p.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		wagerUUID, err = uuid.Parse(chi.URLParam(r, "uuid"))
		if err != nil {
			log.Error("invalid wager uuid", sl.Err(err))

			render.JSON(w, r, resp.Error("invalid wager uuid", http.StatusBadRequest))

			return
		}

		record, err = fn(r.Context(), wagerUUID)
		if err != nil {
			switch {
			case errors.Is(err, repository.ErrWagerNotFound):
				log.Error("wager not found", sl.Err(err))

				render.JSON(w, r, resp.Error("wager not found", http.StatusNotFound))
			case errors.Is(err, settle.ErrNotPayable):
				log.Error("wager not payable", sl.Err(err))

				render.JSON(w, r, resp.Error("wager has no payout due", http.StatusConflict))
			case errors.Is(err, settle.ErrInsufficientHouseBalance):
				log.Error("house balance too low", sl.Err(err))

				render.JSON(w, r, resp.Error("insufficient house balance", http.StatusConflict))
			case errors.Is(err, settle.ErrPayoutSendFailed):
				log.Error("payout send failed", sl.Err(err))

				render.JSON(w, r, resp.Error("payout send failed", http.StatusBadGateway))
			default:
				log.Error("failed to settle payout", sl.Err(err))

				render.JSON(w, r, resp.Error("failed to settle payout", http.StatusInternalServerError))
			}

			return
		}

		response := SettleResponse{Response: resp.OK()}

		// A settled loss has no payout record; the settlement itself is the
		// answer.
		if record != nil {
			view := newRecordView(record)
			response.Payout = &view

			log.Info("payout settled",
				slog.String("wager_uuid", wagerUUID.String()),
				slog.String("status", string(record.Status)))
		}

		render.JSON(w, r, response)
	}
}

func newRecordView(record *model.PayoutRecord) RecordView {
	return RecordView{
		WagerUUID:   record.WagerUUID.String(),
		Status:      string(record.Status),
		Amount:      converter.ConvertAmountLamportsToString(record.Amount),
		TransferRef: record.TransferRef,
		Attempts:    record.Attempts,
		FailReason:  record.FailReason,
	}
}
