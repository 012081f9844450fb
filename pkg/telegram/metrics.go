package telegram

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Telegram bot metrics
var (
	commandsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_commands_processed_total",
			Help: "Total number of processed commands by type",
		},
		[]string{"command"}, // start, ajuda, total, apagar, editar, limpar, plano, assinar
	)

	receiptsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_receipts_processed_total",
			Help: "Total number of processed receipts by result",
		},
		[]string{"result"}, // ok, duplicate, limit, no_amount, error
	)

	callbacksProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_callbacks_processed_total",
			Help: "Total number of processed callback queries by action",
		},
		[]string{"action"}, // del, plan
	)

	transactionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_transactions_created_total",
			Help: "Total number of ledger transactions created",
		},
	)

	paymentsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_payments_created_total",
			Help: "Total number of PIX charges created",
		},
	)

	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_errors_total",
			Help: "Total number of errors by type",
		},
		[]string{"type"}, // database, vision, download_file, gateway, usage_gate
	)

	visionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "telegram_vision_duration_seconds",
			Help:    "Duration of receipt extraction in seconds",
			Buckets: []float64{1, 2.5, 5, 10, 20},
		},
	)
)
