package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ReservationMetrics содержит метрики операций движка резервирования.
type ReservationMetrics struct {
	upsertsTotal  prometheus.Counter
	removalsTotal prometheus.Counter
	removedRows   prometheus.Counter
	sweptRows     prometheus.Counter

	upsertDuration prometheus.Histogram
}

// NewReservationMetrics создаёт метрики в default-регистре Prometheus.
func NewReservationMetrics() *ReservationMetrics {
	return newReservationMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newReservationMetricsWithRegisterer(registerer prometheus.Registerer) *ReservationMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &ReservationMetrics{
		upsertsTotal: registerCounter(registerer, prometheus.CounterOpts{
			Name: "reservations_upserts_total",
			Help: "Total number of committed reservation upserts",
		}),
		removalsTotal: registerCounter(registerer, prometheus.CounterOpts{
			Name: "reservations_removals_total",
			Help: "Total number of bulk removal operations",
		}),
		removedRows: registerCounter(registerer, prometheus.CounterOpts{
			Name: "reservations_removed_rows_total",
			Help: "Total number of reservation rows deleted by removal requests",
		}),
		sweptRows: registerCounter(registerer, prometheus.CounterOpts{
			Name: "reservations_swept_rows_total",
			Help: "Total number of expired reservation rows deleted by the sweeper",
		}),
		upsertDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "reservations_upsert_duration_seconds",
			Help:    "Duration of reservation upserts in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordUpsert фиксирует успешный upsert и его длительность.
func (m *ReservationMetrics) RecordUpsert(duration time.Duration) {
	m.upsertsTotal.Inc()
	m.upsertDuration.Observe(duration.Seconds())
}

// RecordRemoval фиксирует bulk-удаление и число удалённых строк.
func (m *ReservationMetrics) RecordRemoval(rows int) {
	m.removalsTotal.Inc()
	if rows > 0 {
		m.removedRows.Add(float64(rows))
	}
}

// RecordSwept фиксирует число строк, удалённых sweeper'ом.
func (m *ReservationMetrics) RecordSwept(rows int) {
	if rows > 0 {
		m.sweptRows.Add(float64(rows))
	}
}
