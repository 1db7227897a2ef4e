//go:generate go run go.uber.org/mock/mockgen -source=vote_service.go -destination=mocks/mock_vote_service.go -package=mocks
package services

import (
	"context"
	"live-poll/contract"
	"live-poll/domain"
	"live-poll/domain/event"
	"live-poll/errors"
	"live-poll/observability"
	"log/slog"
	"time"
)

type IVoteService interface {
	Submit(ctx context.Context, conn contract.Connection, payload []byte) error
}

// VoteService covers the first two states of a vote, RECEIVED and AUTHENTICATED,
// then hands the command to the dispatcher owning the poll.
type VoteService struct {
	log        *slog.Logger
	dispatcher contract.IDispatcher
	metrics    *observability.Metrics
}

func NewVoteService(log *slog.Logger, dispatcher contract.IDispatcher, metrics *observability.Metrics) *VoteService {
	return &VoteService{log: log, dispatcher: dispatcher, metrics: metrics}
}

// Submit never surfaces anything to the client: a rejected vote is logged and dropped.
func (s *VoteService) Submit(ctx context.Context, conn contract.Connection, payload []byte) error {
	log := s.log.With("connection_id", conn.ID())

	// RECEIVED
	msg, err := event.DecodeVote(payload)
	if err != nil {
		log.Warn("Vote dropped, malformed message", "error", err)
		s.metrics.IncrVoteDropped(observability.ReasonMalformed)
		return err
	}

	// AUTHENTICATED
	userID, ok := conn.UserID()
	if !ok {
		log.Warn("Vote dropped, anonymous connection", "poll_id", msg.PollID)
		s.metrics.IncrVoteDropped(observability.ReasonUnauthenticated)
		return errors.ErrUnauthenticated
	}

	return s.dispatcher.Dispatch(ctx, domain.VoteCommand{
		PollID:       domain.PollID(msg.PollID),
		UserID:       userID,
		Option:       msg.SelectedOption,
		ConnectionID: conn.ID(),
		ReceivedAt:   time.Now(),
	})
}
