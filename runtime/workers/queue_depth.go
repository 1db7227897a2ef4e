package workers

import (
	"context"
	"live-poll/contract"
	"live-poll/domain"
	"live-poll/observability"
	"log/slog"
	"time"
)

var _ contract.Worker = (*QueueDepthWorker)(nil)

// QueueDepthWorker periodically reports how many votes wait in each shard queue.
// Reading len(channel) is non-blocking, so sampling never interferes with the vote workers.
type QueueDepthWorker struct {
	log      *slog.Logger
	queues   []<-chan domain.VoteCommand
	metrics  *observability.Metrics
	interval time.Duration
}

func NewQueueDepthWorker(log *slog.Logger, queues []<-chan domain.VoteCommand,
	metrics *observability.Metrics, interval time.Duration) *QueueDepthWorker {
	return &QueueDepthWorker{log: log, queues: queues, metrics: metrics, interval: interval}
}

func (w *QueueDepthWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping queue sampling")
			return nil
		case <-ticker.C:
			w.Sample()
		}
	}
}

// Sample records the current depth of every queue once.
func (w *QueueDepthWorker) Sample() {
	for shard, queue := range w.queues {
		depth := len(queue)
		w.metrics.SetQueueDepth(shard, depth)
		if depth == cap(queue) {
			w.log.Warn("Vote shard saturated", "shard", shard, "capacity", depth)
		}
	}
}
