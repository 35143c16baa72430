package scheduler

import (
	"context"
	"fmt"

	appinventory "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/inventory"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/settings"
	"go.uber.org/zap"
)

// staleBatchSize caps how many stale orders one sweep cancels
const staleBatchSize = 100

// StaleOrderCanceller cancels unpaid orders past the configured age
type StaleOrderCanceller interface {
	CancelStale(ctx context.Context, limit int) (int, error)
}

// LowStockLister lists items under their minimum
type LowStockLister interface {
	LowStock(ctx context.Context) ([]appinventory.LowStockItem, error)
}

// DigestSender mails the low stock digest
type DigestSender interface {
	SendLowStockDigest(ctx context.Context, items []appinventory.LowStockItem) error
}

// SettingsReader reads the digest switch
type SettingsReader interface {
	Bool(ctx context.Context, key string) bool
}

// JobRunner executes the bakery's background jobs
type JobRunner struct {
	orders   StaleOrderCanceller
	stock    LowStockLister
	digest   DigestSender
	settings SettingsReader
	logger   *zap.Logger
}

// NewJobRunner creates a JobRunner
func NewJobRunner(orders StaleOrderCanceller, stock LowStockLister, digest DigestSender, settingsReader SettingsReader, logger *zap.Logger) *JobRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobRunner{
		orders:   orders,
		stock:    stock,
		digest:   digest,
		settings: settingsReader,
		logger:   logger,
	}
}

// Execute runs job
func (r *JobRunner) Execute(ctx context.Context, job *Job) error {
	switch job.Kind {
	case JobCancelStaleOrders:
		return r.cancelStale(ctx)
	case JobLowStockDigest:
		return r.lowStockDigest(ctx)
	}
	return fmt.Errorf("%w: %s", ErrUnknownJob, job.Kind)
}

// cancelStale sweeps in batches until a batch comes back short
func (r *JobRunner) cancelStale(ctx context.Context) error {
	total := 0
	for {
		n, err := r.orders.CancelStale(ctx, staleBatchSize)
		total += n
		if err != nil {
			return err
		}
		if n < staleBatchSize || ctx.Err() != nil {
			break
		}
	}
	if total > 0 {
		r.logger.Info("Cancelled stale orders", zap.Int("count", total))
	}
	return nil
}

func (r *JobRunner) lowStockDigest(ctx context.Context) error {
	if !r.settings.Bool(ctx, settings.KeyLowStockDigestEnabled) {
		r.logger.Debug("Low stock digest disabled")
		return nil
	}
	items, err := r.stock.LowStock(ctx)
	if err != nil {
		return fmt.Errorf("list low stock: %w", err)
	}
	r.logger.Info("Sending low stock digest", zap.Int("items", len(items)))
	return r.digest.SendLowStockDigest(ctx, items)
}

var _ JobExecutor = (*JobRunner)(nil)
