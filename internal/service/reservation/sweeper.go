package reservation

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
)

const (
	defaultSweepInterval  = time.Minute
	defaultSweepBatchSize = 500
)

var (
	sweepRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reservations_sweep_runs_total",
		Help: "Total number of expiry sweep runs grouped by result.",
	}, []string{"result"})
	sweepLastDeleted = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reservations_sweep_last_deleted",
		Help: "Number of deleted reservation rows during the last sweep run.",
	})
)

// SweeperOptions задаёт параметры фонового sweeper'а просроченных резервов.
type SweeperOptions struct {
	Logger    *log.Entry
	Interval  time.Duration
	BatchSize int
}

// SweeperOption настраивает ExpirySweeper.
type SweeperOption func(*SweeperOptions)

// WithLogger задаёт logger для sweeper'а.
func WithLogger(logger *log.Entry) SweeperOption {
	return func(opts *SweeperOptions) {
		opts.Logger = logger
	}
}

// WithInterval задаёт интервал между проходами.
func WithInterval(interval time.Duration) SweeperOption {
	return func(opts *SweeperOptions) {
		opts.Interval = interval
	}
}

// WithBatchSize задаёт размер порции одного удаления.
func WithBatchSize(batchSize int) SweeperOption {
	return func(opts *SweeperOptions) {
		opts.BatchSize = batchSize
	}
}

// ExpirySweeper периодически удаляет физически просроченные строки резервов.
// Корректность чтений от него не зависит: истёкшие строки отфильтровываются
// на чтении; sweeper отвечает только за гигиену хранилища.
type ExpirySweeper struct {
	svc       *Service
	logger    *log.Entry
	interval  time.Duration
	batchSize int
}

// NewExpirySweeper создаёт sweeper поверх сервиса резервирования.
func NewExpirySweeper(svc *Service, options ...SweeperOption) *ExpirySweeper {
	opts := SweeperOptions{
		Interval:  defaultSweepInterval,
		BatchSize: defaultSweepBatchSize,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "expiry-sweeper")
	}

	if opts.Interval <= 0 {
		opts.Interval = defaultSweepInterval
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultSweepBatchSize
	}

	return &ExpirySweeper{
		svc:       svc,
		logger:    logger,
		interval:  opts.Interval,
		batchSize: opts.BatchSize,
	}
}

// Run запускает периодическую зачистку до отмены ctx.
func (w *ExpirySweeper) Run(ctx context.Context) {
	if w.svc == nil {
		w.logger.Warn("expiry sweeper is disabled: service is nil")
		return
	}

	w.sweep(ctx, time.Now().UTC())

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx, time.Now().UTC())
		}
	}
}

func (w *ExpirySweeper) sweep(ctx context.Context, now time.Time) {
	deleted, err := w.RunOnce(ctx, now)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		// Сбои sweeper'а — операционная проблема, не бизнес-ошибка.
		sweepRunsTotal.WithLabelValues("error").Inc()
		w.logger.WithError(err).Warn("expiry sweep run failed")
		return
	}

	sweepRunsTotal.WithLabelValues("ok").Inc()
	sweepLastDeleted.Set(float64(deleted))
	if deleted > 0 {
		w.logger.WithField("deleted", deleted).Info("expiry sweep completed")
	}
}

// RunOnce выполняет один полный проход порциями batchSize и возвращает
// суммарное число удалённых строк. Повторный вызов без просроченных строк
// ничего не меняет.
func (w *ExpirySweeper) RunOnce(ctx context.Context, now time.Time) (int, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}

	totalDeleted := 0
	for {
		if err := ctx.Err(); err != nil {
			return totalDeleted, err
		}

		deleted, err := w.svc.SweepExpired(now, w.batchSize)
		if err != nil {
			return totalDeleted, err
		}

		totalDeleted += deleted
		if deleted < w.batchSize {
			break
		}
	}

	return totalDeleted, nil
}
