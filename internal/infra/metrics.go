package infra

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus metrics for the strategy hotpath. Registered in init() and
// served at /metrics by StartMetricsServer.
var (
	mtxLevelChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taker_level_changes_total",
			Help: "Qualifying one-penny level changes observed",
		},
		[]string{"symbol"},
	)

	mtxOrders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taker_orders_total",
			Help: "Order attempts submitted",
		},
		[]string{"symbol", "side"},
	)

	mtxGatewayErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taker_gateway_errors_total",
			Help: "Gateway submit/cancel failures",
		},
		[]string{"op"},
	)

	mtxLedgerInconsistencies = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "taker_ledger_inconsistencies_total",
			Help: "Order updates referencing unknown or out-of-range orders",
		},
	)

	mtxTotalShares = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "taker_total_shares",
			Help: "Net filled share count across all symbols",
		},
	)
)

func init() {
	prometheus.MustRegister(
		mtxLevelChanges,
		mtxOrders,
		mtxGatewayErrors,
		mtxLedgerInconsistencies,
		mtxTotalShares,
	)
}

// CountLevelChange records one qualifying level change.
func CountLevelChange(symbol string) {
	mtxLevelChanges.WithLabelValues(symbol).Inc()
}

// CountOrder records one submitted order attempt.
func CountOrder(symbol, side string) {
	mtxOrders.WithLabelValues(symbol, side).Inc()
}

// CountGatewayError records a failed submit or cancel.
func CountGatewayError(op string) {
	mtxGatewayErrors.WithLabelValues(op).Inc()
}

// CountLedgerInconsistency records a reportable ledger inconsistency.
func CountLedgerInconsistency() {
	mtxLedgerInconsistencies.Inc()
}

// SetTotalShares publishes the current net position.
func SetTotalShares(v int64) {
	mtxTotalShares.Set(float64(v))
}

// StartMetricsServer serves /metrics on addr in a background goroutine.
func StartMetricsServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("Metrics server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Metrics server failed", slog.Any("error", err))
		}
	}()
}
