//go:generate go run go.uber.org/mock/mockgen -source=poll_service.go -destination=mocks/mock_poll_service.go -package=mocks
package services

import (
	"context"
	"fmt"
	"live-poll/contract"
	"live-poll/domain"
	"live-poll/domain/event"
	"live-poll/errors"
	"live-poll/observability"
	"live-poll/repositories"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type IPollService interface {
	CreatePoll(ctx context.Context, cmd domain.CreatePollCommand) (domain.Poll, error)
	GetPoll(ctx context.Context, id domain.PollID) (domain.Poll, error)
	ListPolls(ctx context.Context) ([]domain.Poll, error)
	Stats(ctx context.Context, user domain.UserID) (UserStats, error)
}

type UserStats struct {
	PollsCreated int `json:"pollsCreated"`
	PollsVotedIn int `json:"pollsVotedIn"`
}

type PollService struct {
	log          *slog.Logger
	repository   repositories.IPollRepository
	broadcaster  contract.IBroadcaster
	metrics      *observability.Metrics
	storeTimeout time.Duration
}

func NewPollService(log *slog.Logger, repository repositories.IPollRepository,
	broadcaster contract.IBroadcaster, metrics *observability.Metrics, storeTimeout time.Duration) *PollService {
	return &PollService{
		log:          log,
		repository:   repository,
		broadcaster:  broadcaster,
		metrics:      metrics,
		storeTimeout: storeTimeout,
	}
}

// CreatePoll validates, persists and then announces a new poll.
// NEW_POLL is only broadcast once the store has accepted the poll.
func (s *PollService) CreatePoll(ctx context.Context, cmd domain.CreatePollCommand) (domain.Poll, error) {
	cmd = cmd.Normalize()
	if err := domain.ValidateCreate(cmd); err != nil {
		return domain.Poll{}, err
	}

	poll := domain.NewPoll(domain.PollID(uuid.NewString()), cmd.Question, cmd.Options, cmd.CreatedBy, time.Now().UTC())

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	created, err := s.repository.Create(storeCtx, poll)
	if err != nil {
		s.log.Error("Unable to persist poll", "poll_id", poll.ID, "error", err)
		if errors.Is(err, errors.ErrInvalidPoll) || errors.Is(err, errors.ErrStoreUnavailable) {
			return domain.Poll{}, err
		}
		return domain.Poll{}, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}

	s.metrics.IncrPollCreated()
	s.broadcaster.Broadcast(event.PollCreated{Poll: created.Clone(), At: created.CreatedAt})
	s.log.Info("Poll created", "poll_id", created.ID, "created_by", created.CreatedBy, "options", len(created.Options))
	return created, nil
}

func (s *PollService) GetPoll(ctx context.Context, id domain.PollID) (domain.Poll, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	return s.repository.FindByID(storeCtx, id)
}

func (s *PollService) ListPolls(ctx context.Context) ([]domain.Poll, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	return s.repository.List(storeCtx)
}

// Stats counts the polls a user created and the polls they voted in.
func (s *PollService) Stats(ctx context.Context, user domain.UserID) (UserStats, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	created, err := s.repository.CountCreatedBy(storeCtx, user)
	if err != nil {
		return UserStats{}, err
	}
	voted, err := s.repository.CountVotedIn(storeCtx, user)
	if err != nil {
		return UserStats{}, err
	}
	return UserStats{PollsCreated: created, PollsVotedIn: voted}, nil
}
