package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CartAddTotal counts add-to-cart attempts by outcome (added, invalid, full).
	CartAddTotal *prometheus.CounterVec
	// CartSizeGauge tracks the current number of raw cart lines.
	CartSizeGauge prometheus.Gauge
	// CheckoutTotal counts checkout submissions by outcome (accepted, rejected).
	CheckoutTotal *prometheus.CounterVec
	// PurchaseTotalValue accumulates base-currency purchase totals.
	PurchaseTotalValue prometheus.Counter
	// HistoryClearedTotal counts purchase-history wipes.
	HistoryClearedTotal prometheus.Counter
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CartAddTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_add_total",
			Help:      "Count of add-to-cart attempts by outcome.",
		}, []string{"result"}))
		CartSizeGauge = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cart_size",
			Help:      "Current number of raw cart lines.",
		}))
		CheckoutTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_total",
			Help:      "Count of checkout submissions by outcome.",
		}, []string{"result"}))
		PurchaseTotalValue = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "purchase_value_total",
			Help:      "Accumulated base-currency value of completed purchases.",
		}))
		HistoryClearedTotal = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_cleared_total",
			Help:      "Number of purchase-history wipes.",
		}))
	})
}
