package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/stackit/internal/app/store/audit"
	"go.uber.org/zap"
)

// DefaultRetentionInterval is how often AuditRetention prunes.
const DefaultRetentionInterval = time.Hour

// AuditRetention is a background worker that deletes audit events older
// than the retention window.
type AuditRetention struct {
	events    *audit.Store
	log       *zap.Logger
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// NewAuditRetention creates the worker. interval <= 0 uses
// DefaultRetentionInterval.
func NewAuditRetention(events *audit.Store, logger *zap.Logger, interval, retention time.Duration) *AuditRetention {
	if interval <= 0 {
		interval = DefaultRetentionInterval
	}
	return &AuditRetention{
		events:    events,
		log:       logger,
		interval:  interval,
		retention: retention,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
}

// Start prunes once and then on every tick until Stop.
func (w *AuditRetention) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("audit retention worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("retention", w.retention))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *AuditRetention) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("audit retention worker stopped")
}

func (w *AuditRetention) run() {
	defer w.wg.Done()

	w.Prune()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Prune()
		}
	}
}

// Prune deletes expired events once and returns how many were removed.
func (w *AuditRetention) Prune() int64 {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := w.events.DeleteBefore(ctx, w.now().UTC().Add(-w.retention))
	if err != nil {
		w.log.Error("failed to prune audit events", zap.Error(err))
		return 0
	}
	if count > 0 {
		w.log.Info("pruned audit events", zap.Int64("count", count))
	}
	return count
}
