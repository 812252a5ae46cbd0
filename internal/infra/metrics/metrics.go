package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QuotesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "printshop_quotes_total",
		Help: "Price quotes computed, by outcome.",
	}, []string{"outcome"})

	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "printshop_orders_created_total",
		Help: "Orders accepted and persisted.",
	})

	OrdersRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "printshop_orders_rejected_total",
		Help: "Order submissions rejected by stock validation.",
	})

	LowStockAlertsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "printshop_low_stock_alerts_total",
		Help: "Low-stock alerts pushed to the admin chat.",
	})
)
