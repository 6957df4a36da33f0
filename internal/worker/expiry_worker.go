package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/AhilyaKokare/visitor-pass-service/internal/repository"
	"github.com/AhilyaKokare/visitor-pass-service/internal/service"
	"github.com/AhilyaKokare/visitor-pass-service/pkg/logger"
)

// ExpiryWorkerConfig holds expiry worker settings
type ExpiryWorkerConfig struct {
	// ScanInterval is how often the sweep looks for overdue passes
	ScanInterval time.Duration
	// ItemTimeout bounds the handling of one overdue pass
	ItemTimeout time.Duration
}

// DefaultExpiryWorkerConfig returns the default worker configuration
func DefaultExpiryWorkerConfig() *ExpiryWorkerConfig {
	return &ExpiryWorkerConfig{
		ScanInterval: 24 * time.Hour,
		ItemTimeout:  5 * time.Second,
	}
}

// ExpiryWorkerStats is a snapshot of worker progress
type ExpiryWorkerStats struct {
	IsRunning        bool
	TotalExpired     int64
	TotalFailed      int64
	LastScanTime     time.Time
	LastExpiredCount int64
}

// ExpiryWorker periodically expires APPROVED passes whose visit time has
// passed. Each pass is handled in isolation: one failure is logged and does
// not stop the sweep.
type ExpiryWorker struct {
	passRepo repository.PassRepository
	passes   service.PassService
	config   *ExpiryWorkerConfig

	mu               sync.Mutex
	running          bool
	stopCh           chan struct{}
	doneCh           chan struct{}
	totalExpired     int64
	totalFailed      int64
	lastScanTime     time.Time
	lastExpiredCount int64
}

// NewExpiryWorker creates a new expiry worker
func NewExpiryWorker(passRepo repository.PassRepository, passes service.PassService, config *ExpiryWorkerConfig) *ExpiryWorker {
	if config == nil {
		config = DefaultExpiryWorkerConfig()
	}
	return &ExpiryWorker{
		passRepo: passRepo,
		passes:   passes,
		config:   config,
	}
}

// Start launches the sweep loop. It runs one scan immediately so a service
// that was down past several intervals catches up on boot.
func (w *ExpiryWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	logger.Info("expiry worker started",
		zap.Duration("scan_interval", w.config.ScanInterval),
	)

	go w.run(ctx)
}

// Stop signals the loop to exit and waits for the in-flight scan to finish
func (w *ExpiryWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	done := w.doneCh
	w.mu.Unlock()

	<-done
	logger.Info("expiry worker stopped")
}

// GetStats returns a snapshot of worker progress
func (w *ExpiryWorker) GetStats() *ExpiryWorkerStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return &ExpiryWorkerStats{
		IsRunning:        w.running,
		TotalExpired:     w.totalExpired,
		TotalFailed:      w.totalFailed,
		LastScanTime:     w.lastScanTime,
		LastExpiredCount: w.lastExpiredCount,
	}
}

func (w *ExpiryWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.config.ScanInterval)
	defer ticker.Stop()

	w.scan(ctx)
	for {
		select {
		case <-ticker.C:
			w.scan(ctx)
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// scan expires every APPROVED pass whose visit time is already in the past
func (w *ExpiryWorker) scan(ctx context.Context) {
	now := time.Now()
	overdue, err := w.passRepo.FindOverdueApproved(ctx, now)
	if err != nil {
		logger.WithContext(ctx).Error("expiry scan failed", zap.Error(err))
		return
	}

	var expired, failed int64
	for _, pass := range overdue {
		itemCtx, cancel := context.WithTimeout(ctx, w.config.ItemTimeout)
		err := w.passes.Expire(itemCtx, pass.ID, now)
		cancel()

		switch {
		case err == nil:
			expired++
		case errors.Is(err, repository.ErrVersionConflict):
			// someone checked the visitor in mid-sweep, nothing to do
		default:
			failed++
			logger.WithContext(ctx).Error("failed to expire pass",
				zap.String("pass_id", pass.ID),
				zap.String("tenant_id", pass.TenantID),
				zap.Error(err),
			)
		}
	}

	w.mu.Lock()
	w.totalExpired += expired
	w.totalFailed += failed
	w.lastScanTime = now
	w.lastExpiredCount = expired
	w.mu.Unlock()

	if len(overdue) > 0 {
		logger.WithContext(ctx).Info("expiry scan finished",
			zap.Int("overdue", len(overdue)),
			zap.Int64("expired", expired),
			zap.Int64("failed", failed),
		)
	}
}
