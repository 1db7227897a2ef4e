package workers

import (
	"context"
	"live-poll/contract"
	"live-poll/domain"
	"live-poll/domain/event"
	"live-poll/errors"
	"live-poll/observability"
	"live-poll/repositories"
	"log/slog"
	"time"
)

var _ contract.Worker = (*VoteWorker)(nil)

// VoteWorker applies the votes of the polls routed to its shard, one at a time.
// Every vote on a given poll goes through the same worker, so its commits and the
// broadcasts that follow them happen in a single order.
type VoteWorker struct {
	log          *slog.Logger
	shard        int
	votes        <-chan domain.VoteCommand
	repository   repositories.IPollRepository
	broadcaster  contract.IBroadcaster
	metrics      *observability.Metrics
	storeTimeout time.Duration
}

func NewVoteWorker(
	log *slog.Logger,
	shard int,
	votes <-chan domain.VoteCommand,
	repository repositories.IPollRepository,
	broadcaster contract.IBroadcaster,
	metrics *observability.Metrics,
	storeTimeout time.Duration,
) *VoteWorker {
	return &VoteWorker{
		log:          log,
		shard:        shard,
		votes:        votes,
		repository:   repository,
		broadcaster:  broadcaster,
		metrics:      metrics,
		storeTimeout: storeTimeout,
	}
}

func (w *VoteWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case cmd, ok := <-w.votes:
			if !ok {
				return nil
			}
			_ = w.Apply(ctx, cmd)
		}
	}
}

// Apply takes an authenticated vote through POLL_LOADED, OPTION_RESOLVED,
// VOTE_APPLIED and BROADCAST. Any failed step drops the vote without broadcasting.
// The returned error only says why; callers are not expected to act on it.
func (w *VoteWorker) Apply(ctx context.Context, cmd domain.VoteCommand) error {
	log := w.log.With("shard", w.shard, "poll_id", cmd.PollID, "user_id", cmd.UserID, "connection_id", cmd.ConnectionID)

	// POLL_LOADED
	storeCtx, cancel := context.WithTimeout(ctx, w.storeTimeout)
	poll, err := w.repository.FindByID(storeCtx, cmd.PollID)
	cancel()
	if err != nil {
		return w.drop(log, err)
	}

	// OPTION_RESOLVED
	if poll.OptionIndex(cmd.Option) < 0 {
		return w.drop(log, errors.ErrOptionNotFound)
	}

	// VOTE_APPLIED
	if poll.HasVoted(cmd.UserID) {
		return w.drop(log, errors.ErrDuplicateVote)
	}
	storeCtx, cancel = context.WithTimeout(ctx, w.storeTimeout)
	result, err := w.repository.TryRecordVote(storeCtx, cmd.PollID, cmd.UserID, cmd.Option)
	cancel()
	if err != nil {
		return w.drop(log, err)
	}
	if !result.Applied {
		return w.drop(log, errors.ErrDuplicateVote)
	}

	// BROADCAST
	w.broadcaster.Broadcast(event.VoteRecorded{
		Poll:   result.Poll.Clone(),
		Voter:  cmd.UserID,
		Option: cmd.Option,
		At:     time.Now().UTC(),
	})
	w.metrics.IncrVoteApplied(cmd.ReceivedAt)
	log.Info("Vote applied", "option", cmd.Option, "total_votes", result.Poll.TotalVotes())
	return nil
}

func (w *VoteWorker) drop(log *slog.Logger, err error) error {
	switch {
	case errors.Is(err, errors.ErrDuplicateVote):
		log.Debug("Duplicate vote ignored")
		w.metrics.IncrVoteDropped(observability.ReasonDuplicate)
	case errors.Is(err, errors.ErrPollNotFound):
		log.Warn("Vote dropped, poll not found")
		w.metrics.IncrVoteDropped(observability.ReasonPollNotFound)
	case errors.Is(err, errors.ErrOptionNotFound):
		log.Warn("Vote dropped, option not found")
		w.metrics.IncrVoteDropped(observability.ReasonOptionNotFound)
	default:
		log.Error("Vote dropped, store failure", "error", err)
		w.metrics.IncrVoteDropped(observability.ReasonStore)
	}
	return err
}
