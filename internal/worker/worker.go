package worker

import (
	"context"
	"log/slog"
	"time"

	"match-orchestrator/internal/domain"
	"match-orchestrator/internal/usecase"
)

const (
	indexTimeout   = 120 * time.Second
	initialBackoff = 1 * time.Second
	maxBackoff     = 5 * time.Minute
)

// IndexWorker polls for tenants without a profile embedding and indexes
// them in the background, so new registrations become searchable without an
// operator running the reindex CLI.
type IndexWorker struct {
	tenantRepo   domain.TenantRepository
	indexUsecase usecase.IndexProfileUsecase
	pollInterval time.Duration
	batchSize    int
	logger       *slog.Logger
	stopChan     chan struct{}
	backoff      time.Duration
}

func NewIndexWorker(
	tenantRepo domain.TenantRepository,
	indexUsecase usecase.IndexProfileUsecase,
	pollInterval time.Duration,
	batchSize int,
	logger *slog.Logger,
) *IndexWorker {
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 10
	}
	return &IndexWorker{
		tenantRepo:   tenantRepo,
		indexUsecase: indexUsecase,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		logger:       logger,
		stopChan:     make(chan struct{}),
	}
}

func (w *IndexWorker) Start() {
	w.logger.Info("Starting IndexWorker")
	go w.run()
}

func (w *IndexWorker) Stop() {
	w.logger.Info("Stopping IndexWorker")
	close(w.stopChan)
}

func (w *IndexWorker) run() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.processBatch()
			if w.backoff > 0 {
				ticker.Reset(w.backoff)
			} else {
				ticker.Reset(w.pollInterval)
			}
		}
	}
}

func (w *IndexWorker) processBatch() {
	ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
	defer cancel()

	tenants, err := w.tenantRepo.ListUnindexed(ctx, w.batchSize)
	if err != nil {
		w.logger.Error("Failed to list unindexed tenants", "error", err)
		w.increaseBackoff()
		return
	}
	if len(tenants) == 0 {
		w.backoff = 0
		return
	}

	var failed int
	for _, t := range tenants {
		if err := w.indexUsecase.Execute(ctx, t.ID); err != nil {
			w.logger.Error("Failed to index tenant profile",
				"tenant_id", t.ID.String(), "error", err)
			failed++
		}
	}

	if failed == len(tenants) {
		// Every attempt failed, likely a downstream outage; back off.
		w.increaseBackoff()
		return
	}
	w.backoff = 0
	w.logger.Info("Indexed tenant batch",
		"total", len(tenants), "failed", failed)
}

func (w *IndexWorker) increaseBackoff() {
	if w.backoff == 0 {
		w.backoff = initialBackoff
		return
	}
	w.backoff *= 2
	if w.backoff > maxBackoff {
		w.backoff = maxBackoff
	}
}
