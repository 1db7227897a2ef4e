// Package runtime holds the live side of the application: connection registry,
// broadcast fan-out and the routing of votes to their workers.
// It orchestrates the system without containing domain rules.
package runtime

import (
	"context"
	"fmt"
	"hash/fnv"
	"live-poll/contract"
	"live-poll/domain"
	"live-poll/observability"
	"live-poll/repositories"
	"live-poll/runtime/workers"
	"log/slog"
	"sync"
	"time"
)

var _ contract.IDispatcher = (*Orchestrator)(nil)

// Orchestrator shards votes by poll id over a fixed set of VoteWorkers.
// All votes for one poll land on the same shard and are applied in arrival order.
type Orchestrator struct {
	mu           sync.Mutex
	log          *slog.Logger
	supervisor   contract.ISupervisor
	repository   repositories.IPollRepository
	broadcaster  contract.IBroadcaster
	metrics      *observability.Metrics
	shards       []chan domain.VoteCommand
	storeTimeout time.Duration
	started      bool
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor,
	repository repositories.IPollRepository, broadcaster contract.IBroadcaster,
	metrics *observability.Metrics, numWorkers, bufferSize int, storeTimeout time.Duration) *Orchestrator {
	if numWorkers < 1 {
		numWorkers = 1
	}
	shards := make([]chan domain.VoteCommand, numWorkers)
	for i := range shards {
		shards[i] = make(chan domain.VoteCommand, bufferSize)
	}
	return &Orchestrator{
		log:          log,
		supervisor:   supervisor,
		repository:   repository,
		broadcaster:  broadcaster,
		metrics:      metrics,
		shards:       shards,
		storeTimeout: storeTimeout,
	}
}

// Dispatch queues the vote on the shard owning its poll.
// It blocks while that shard is full, until ctx is done.
func (o *Orchestrator) Dispatch(ctx context.Context, cmd domain.VoteCommand) error {
	shard := o.shardFor(cmd.PollID)
	select {
	case o.shards[shard] <- cmd:
		return nil
	default:
	}

	o.log.Debug(fmt.Sprintf("Vote shard %d full, waiting", shard), "poll_id", cmd.PollID)
	select {
	case o.shards[shard] <- cmd:
		return nil
	case <-ctx.Done():
		o.metrics.IncrVoteDropped(observability.ReasonQueueFull)
		o.log.Warn("Vote dropped, shard still full", "poll_id", cmd.PollID, "shard", shard)
		return ctx.Err()
	}
}

// Queues exposes the shard queues read-only, for sampling.
func (o *Orchestrator) Queues() []<-chan domain.VoteCommand {
	queues := make([]<-chan domain.VoteCommand, len(o.shards))
	for i, shard := range o.shards {
		queues[i] = shard
	}
	return queues
}

func (o *Orchestrator) shardFor(id domain.PollID) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return int(h.Sum32() % uint32(len(o.shards)))
}

// Start registers one VoteWorker per shard with the supervisor and blocks until it stops.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.started {
		o.mu.Unlock()
		return fmt.Errorf("orchestrator already started")
	}
	o.started = true
	for i, shard := range o.shards {
		o.supervisor.Add(workers.NewVoteWorker(o.log, i, shard,
			o.repository, o.broadcaster, o.metrics, o.storeTimeout))
	}
	o.mu.Unlock()

	o.log.Info("Starting vote workers", "count", len(o.shards))
	o.supervisor.Run(ctx)
	return nil
}

func (o *Orchestrator) Stop() {
	o.supervisor.Stop()
}
