package webhookproc

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-recorder/internal/domain/repositories"
	"github.com/johnquangdev/meeting-recorder/pkg/jobcontext"
)

// RedeliveryWorker re-attempts webhook events whose handling failed, up to
// each event's attempt cap. It makes the retry contract explicit instead of
// relying on the sender redelivering forever.
type RedeliveryWorker struct {
	service   *Service
	events    repositories.WebhookEventRepository
	interval  time.Duration
	batchSize int
	logger    *zap.Logger

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewRedeliveryWorker creates a redelivery worker
func NewRedeliveryWorker(service *Service, events repositories.WebhookEventRepository, interval time.Duration, batchSize int, logger *zap.Logger) *RedeliveryWorker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 20
	}
	return &RedeliveryWorker{
		service:   service,
		events:    events,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
		stopChan:  make(chan struct{}),
	}
}

// Start launches the background loop
func (w *RedeliveryWorker) Start() {
	w.wg.Add(1)
	go w.run()
	w.logger.Info("🚀 Webhook redelivery worker started",
		zap.Duration("interval", w.interval),
		zap.Int("batch_size", w.batchSize))
}

// Stop signals the loop to exit and waits for it
func (w *RedeliveryWorker) Stop() {
	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("Webhook redelivery worker stopped")
}

func (w *RedeliveryWorker) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

// sweep re-processes one batch of unprocessed events oldest first
func (w *RedeliveryWorker) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), w.interval)
	defer cancel()

	pending, err := w.events.ListUnprocessed(ctx, w.batchSize)
	if err != nil {
		w.logger.Error("Failed to list unprocessed events", zap.Error(err))
		return
	}
	if len(pending) == 0 {
		return
	}

	w.logger.Info("🔁 Redelivering webhook events", zap.Int("count", len(pending)))

	for i := range pending {
		event := pending[i]

		jobCtx, jobCancel := jobcontext.JobBegin(context.Background(), event.ID, "webhook_redelivery", 0)
		if err := w.service.Process(jobCtx, &event); err != nil {
			w.logger.Warn("Redelivery attempt failed",
				zap.String("event_id", event.ID.String()),
				zap.Error(err))
		}
		jobCancel()
	}
}
