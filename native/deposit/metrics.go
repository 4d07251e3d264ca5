package deposit

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type transferMetrics struct {
	enqueued prometheus.Counter
	dropped  prometheus.Counter
}

var (
	transferMetricsOnce sync.Once
	transferRegistry    *transferMetrics
)

func defaultTransferMetrics() *transferMetrics {
	transferMetricsOnce.Do(func() {
		transferRegistry = &transferMetrics{
			enqueued: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "ledger",
				Subsystem: "transfer_queue",
				Name:      "enqueued_total",
				Help:      "Total outbound transfer requests successfully enqueued for dispatch.",
			}),
			dropped: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "ledger",
				Subsystem: "transfer_queue",
				Name:      "dropped_total",
				Help:      "Total outbound transfer requests dropped because the queue was full.",
			}),
		}
		prometheus.MustRegister(
			transferRegistry.enqueued,
			transferRegistry.dropped,
		)
	})
	return transferRegistry
}
