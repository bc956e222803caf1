package metrics

import (
	"math/big"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	PoolOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pool_ops_total", Help: "Pool mutating ops count"},
		[]string{"op"},
	)
	PoolErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pool_errors_total", Help: "Pool errors count"},
		[]string{"op"},
	)
	PoolTotalStaked = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "pool_total_staked", Help: "Total staked balance"},
	)
	PoolTotalCredits = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "pool_total_credits", Help: "Total forecasted credits for the open slot"},
	)
	PoolHistoryLength = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "pool_history_length", Help: "Closed distribution slots"},
	)
	PoolMembers = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "pool_members", Help: "Registered holders"},
	)
	PoolClaimAmount = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "pool_claim_amount", Help: "Claim payout size", Buckets: prometheus.ExponentialBuckets(1, 10, 12)},
	)
	PoolPersistenceErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pool_persistence_errors_total", Help: "Failed journal or snapshot writes; nonzero means replay is no longer authoritative"},
		[]string{"store"},
	)
)

func MustRegister() {
	prometheus.MustRegister(
		PoolOpsTotal,
		PoolErrorsTotal,
		PoolTotalStaked,
		PoolTotalCredits,
		PoolHistoryLength,
		PoolMembers,
		PoolClaimAmount,
		PoolPersistenceErrors,
	)
}

func IncOp(op string)    { PoolOpsTotal.WithLabelValues(op).Inc() }
func IncError(op string) { PoolErrorsTotal.WithLabelValues(op).Inc() }

func IncPersistenceError(store string) { PoolPersistenceErrors.WithLabelValues(store).Inc() }

func SetTotals(staked, credits *big.Int) {
	f, _ := new(big.Float).SetInt(staked).Float64()
	PoolTotalStaked.Set(f)
	f, _ = new(big.Float).SetInt(credits).Float64()
	PoolTotalCredits.Set(f)
}

func SetHistoryLength(n int) { PoolHistoryLength.Set(float64(n)) }
func SetMembers(n int)       { PoolMembers.Set(float64(n)) }

func ObserveClaim(amt *big.Int) {
	f, _ := new(big.Float).SetInt(amt).Float64()
	PoolClaimAmount.Observe(f)
}
