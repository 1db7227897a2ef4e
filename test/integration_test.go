package test

import (
	"context"
	"encoding/json"
	"fmt"
	"live-poll/domain"
	"live-poll/domain/event"
	"live-poll/errors"
	"live-poll/repositories"
	"live-poll/runtime"
	"live-poll/runtime/workers"
	"live-poll/services"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingConnection keeps every payload it is sent.
type recordingConnection struct {
	id     string
	user   domain.UserID
	mu     sync.Mutex
	inbox  []envelope
	closed bool
}

type envelope struct {
	Type event.Type  `json:"type"`
	Poll domain.Poll `json:"poll"`
}

func newConnection(id string, user domain.UserID) *recordingConnection {
	return &recordingConnection{id: id, user: user}
}

func (c *recordingConnection) ID() string { return c.id }

func (c *recordingConnection) UserID() (domain.UserID, bool) { return c.user, c.user != "" }

func (c *recordingConnection) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.ErrConnectionClosed
	}
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return err
	}
	c.inbox = append(c.inbox, env)
	return nil
}

func (c *recordingConnection) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *recordingConnection) received() []envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]envelope(nil), c.inbox...)
}

func (c *recordingConnection) updates() []envelope {
	return lo.Filter(c.received(), func(e envelope, _ int) bool { return e.Type == event.UpdateVote })
}

type stack struct {
	repo     repositories.PollRepository
	registry *runtime.Registry
	polls    *services.PollService
	votes    *services.VoteService
}

func newStack(t *testing.T) stack {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR))
	req.NoError(err)

	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	repo := repositories.NewPollRepository(db, log)
	registry := runtime.NewRegistry(nil)
	broadcaster := runtime.NewBroadcaster(log, registry, nil)
	supervisor := workers.NewSupervisor(log, nil, 50*time.Millisecond)
	orchestrator := runtime.NewOrchestrator(log, supervisor, repo, broadcaster, nil, 4, 256, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		_ = orchestrator.Start(ctx)
	}()

	// Clean everything at the end of the test
	t.Cleanup(func() {
		cancel()
		<-stopped
		_ = db.Close()
	})

	return stack{
		repo:     repo,
		registry: registry,
		polls:    services.NewPollService(log, repo, broadcaster, nil, time.Second),
		votes:    services.NewVoteService(log, orchestrator, nil),
	}
}

func vote(pollID domain.PollID, option string) []byte {
	return []byte(fmt.Sprintf(`{"pollId":%q,"selectedOption":%q}`, pollID, option))
}

func Test_Scenario(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := newStack(t)

	// Given two voters and an anonymous viewer connected
	u1 := newConnection("c1", "U1")
	u2 := newConnection("c2", "U2")
	viewer := newConnection("c3", "")
	for _, c := range []*recordingConnection{u1, u2, viewer} {
		s.registry.Register(c)
	}

	// When a poll is created
	poll, err := s.polls.CreatePoll(ctx, domain.CreatePollCommand{
		Question: "Which one?", Options: []string{"A", "B"}, CreatedBy: "U0",
	})
	req.NoError(err)

	// Then everyone got NEW_POLL before the call returned
	for _, c := range []*recordingConnection{u1, u2, viewer} {
		got := c.received()
		req.Len(got, 1)
		req.Equal(event.NewPoll, got[0].Type)
		req.Equal(poll.ID, got[0].Poll.ID)
	}

	// When U1 votes A and U2 votes B
	req.NoError(s.votes.Submit(ctx, u1, vote(poll.ID, "A")))
	req.Eventually(func() bool { return len(viewer.updates()) == 1 }, 2*time.Second, 10*time.Millisecond)
	req.NoError(s.votes.Submit(ctx, u2, vote(poll.ID, "B")))
	req.Eventually(func() bool { return len(viewer.updates()) == 2 }, 2*time.Second, 10*time.Millisecond)

	// Then every connection, voters included, saw both updates in commit order
	for _, c := range []*recordingConnection{u1, u2, viewer} {
		req.Eventually(func() bool { return len(c.updates()) == 2 }, 2*time.Second, 10*time.Millisecond)
		updates := c.updates()
		req.Equal([]domain.Option{{Answer: "A", Votes: 1}, {Answer: "B", Votes: 0}}, updates[0].Poll.Options)
		req.Equal([]domain.Option{{Answer: "A", Votes: 1}, {Answer: "B", Votes: 1}}, updates[1].Poll.Options)
		req.Equal([]domain.UserID{"U1", "U2"}, updates[1].Poll.Voters)
	}

	// When U1 tries again and the viewer tries at all
	req.NoError(s.votes.Submit(ctx, u1, vote(poll.ID, "B")))
	req.ErrorIs(s.votes.Submit(ctx, viewer, vote(poll.ID, "A")), errors.ErrUnauthenticated)
	// A later vote on the same poll acts as a barrier: shards apply in arrival order
	u3 := newConnection("c4", "U3")
	s.registry.Register(u3)
	req.NoError(s.votes.Submit(ctx, u3, vote(poll.ID, "A")))
	req.Eventually(func() bool { return len(viewer.updates()) == 3 }, 2*time.Second, 10*time.Millisecond)

	// Then the duplicate was ignored silently
	stored, err := s.repo.FindByID(ctx, poll.ID)
	req.NoError(err)
	req.Equal([]domain.Option{{Answer: "A", Votes: 2}, {Answer: "B", Votes: 1}}, stored.Options)
	req.Equal([]domain.UserID{"U1", "U2", "U3"}, stored.Voters)
}

func Test_ConcurrentVotes_AreCountedOnce(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := newStack(t)
	viewer := newConnection("viewer", "")
	s.registry.Register(viewer)

	poll, err := s.polls.CreatePoll(ctx, domain.CreatePollCommand{
		Question: "Tabs or spaces?", Options: []string{"Tabs", "Spaces"}, CreatedBy: "U0",
	})
	req.NoError(err)

	// Given 40 users each firing 3 votes from 3 goroutines
	const users = 40
	var wg sync.WaitGroup
	for i := range users {
		conn := newConnection(fmt.Sprintf("c%d", i), domain.UserID(fmt.Sprintf("U%d", i)))
		option := lo.Ternary(i%2 == 0, "Tabs", "Spaces")
		for range 3 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, s.votes.Submit(ctx, conn, vote(poll.ID, option)))
			}()
		}
	}
	wg.Wait()

	// Then exactly one vote per user is counted and broadcast
	req.Eventually(func() bool { return len(viewer.updates()) == users }, 5*time.Second, 20*time.Millisecond)
	stored, err := s.repo.FindByID(ctx, poll.ID)
	req.NoError(err)
	req.Equal(users, stored.TotalVotes())
	req.Len(stored.Voters, users)
	req.Len(lo.Uniq(stored.Voters), users)
	req.Equal(users/2, stored.Options[0].Votes)

	// And every broadcast snapshot is internally consistent, with totals strictly increasing
	for i, update := range viewer.updates() {
		req.Equal(len(update.Poll.Voters), update.Poll.TotalVotes())
		req.Equal(i+1, update.Poll.TotalVotes())
	}
}

func Test_Disconnect_IsIsolated(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := newStack(t)

	voter := newConnection("c1", "U1")
	viewer := newConnection("c2", "")
	s.registry.Register(voter)
	s.registry.Register(viewer)

	poll, err := s.polls.CreatePoll(ctx, domain.CreatePollCommand{
		Question: "Q", Options: []string{"A", "B"}, CreatedBy: "U0",
	})
	req.NoError(err)

	// Given the voter submits and drops off before the broadcast
	voter.close()
	req.NoError(s.votes.Submit(ctx, voter, vote(poll.ID, "B")))

	// Then the vote still lands, the viewer still hears about it, and the voter is gone
	req.Eventually(func() bool { return len(viewer.updates()) == 1 }, 2*time.Second, 10*time.Millisecond)
	req.Equal(1, viewer.updates()[0].Poll.Options[1].Votes)
	req.Eventually(func() bool { return s.registry.Len() == 1 }, time.Second, 10*time.Millisecond)
	stored, err := s.repo.FindByID(ctx, poll.ID)
	req.NoError(err)
	req.True(stored.HasVoted("U1"))
}

func Test_UnknownTargets_AreDropped(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := newStack(t)
	viewer := newConnection("c0", "")
	s.registry.Register(viewer)
	voter := newConnection("c1", "U1")

	poll, err := s.polls.CreatePoll(ctx, domain.CreatePollCommand{
		Question: "Q", Options: []string{"Yes", "No"}, CreatedBy: "U0",
	})
	req.NoError(err)

	// Given votes for a missing poll, a case-mismatched label and a malformed payload
	req.NoError(s.votes.Submit(ctx, voter, vote("missing", "Yes")))
	req.NoError(s.votes.Submit(ctx, voter, vote(poll.ID, "yes")))
	req.ErrorIs(s.votes.Submit(ctx, voter, []byte(`{"pollId":`)), errors.ErrMalformedMessage)
	// And a valid one afterwards
	req.NoError(s.votes.Submit(ctx, voter, vote(poll.ID, "No")))

	// Then only the valid vote is broadcast
	req.Eventually(func() bool { return len(viewer.updates()) == 1 }, 2*time.Second, 10*time.Millisecond)
	stored, err := s.repo.FindByID(ctx, poll.ID)
	req.NoError(err)
	req.Equal([]domain.Option{{Answer: "Yes", Votes: 0}, {Answer: "No", Votes: 1}}, stored.Options)
}
