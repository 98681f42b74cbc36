package bot

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	mtxCycles = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "regimebot_cycles_total",
			Help: "Decision cycles completed",
		},
	)

	mtxCycleErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "regimebot_cycle_errors_total",
			Help: "Decision cycles aborted by an error",
		},
	)

	mtxDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "regimebot_decisions_total",
			Help: "Decisions taken, by label",
		},
		[]string{"decision"},
	)

	mtxStates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "regimebot_regimes_total",
			Help: "Classified market regimes, by label",
		},
		[]string{"state"},
	)

	mtxEquity = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "regimebot_equity",
			Help: "Equity snapshot in quote currency",
		},
	)

	mtxDrawdown = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "regimebot_drawdown",
			Help: "Fractional drawdown from peak equity",
		},
	)

	mtxLive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "regimebot_live_mode",
			Help: "1 while live order submission is enabled",
		},
	)
)

func init() {
	prometheus.MustRegister(
		mtxCycles, mtxCycleErrors, mtxDecisions, mtxStates,
		mtxEquity, mtxDrawdown, mtxLive,
	)
}

// MetricsHandler returns the /metrics handler for the optional listener.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
