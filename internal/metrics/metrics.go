package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	WagersPlaced     *prometheus.CounterVec
	WagersSettled    *prometheus.CounterVec
	EscrowFailures   prometheus.Counter
	PayoutsConfirmed prometheus.Counter
	PayoutsFailed    prometheus.Counter
	PayoutRetries    prometheus.Counter
	JackpotHits      *prometheus.CounterVec
	StakeVolume      *prometheus.CounterVec
	PayoutVolume     prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		WagersPlaced: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wagers_placed_total",
			Help: "Total number of wagers accepted per game",
		}, []string{"game"}),
		WagersSettled: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wagers_settled_total",
			Help: "Total number of wagers settled per game and outcome",
		}, []string{"game", "outcome"}),
		EscrowFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "escrow_failures_total",
			Help: "Total number of wagers aborted before escrow confirmation",
		}),
		PayoutsConfirmed: factory.NewCounter(prometheus.CounterOpts{
			Name: "payouts_confirmed_total",
			Help: "Total number of confirmed payout transfers",
		}),
		PayoutsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "payouts_failed_total",
			Help: "Total number of payouts escalated to the operator queue",
		}),
		PayoutRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "payout_retries_total",
			Help: "Total number of payout send retries",
		}),
		JackpotHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jackpot_hits_total",
			Help: "Total number of jackpot payouts per game",
		}, []string{"game"}),
		StakeVolume: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stake_volume_lamports_total",
			Help: "Total staked volume in lamports per game",
		}, []string{"game"}),
		PayoutVolume: factory.NewCounter(prometheus.CounterOpts{
			Name: "payout_volume_lamports_total",
			Help: "Total paid-out volume in lamports",
		}),
	}
}
