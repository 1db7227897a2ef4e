package runtime

import (
	"context"
	"live-poll/domain"
	"live-poll/mocks"
	"live-poll/runtime/workers"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestOrchestrator_SamePollAlwaysOnSameShard(t *testing.T) {
	req := require.New(t)
	o := NewOrchestrator(slog.Default(), workers.NewSupervisor(slog.Default(), nil, time.Millisecond),
		nil, nil, nil, 8, 1, time.Second)

	first := o.shardFor("poll-42")
	for i := 0; i < 100; i++ {
		req.Equal(first, o.shardFor("poll-42"))
	}
	req.GreaterOrEqual(first, 0)
	req.Less(first, 8)
}

func TestOrchestrator_DispatchBlocksUntilContextWhenShardIsFull(t *testing.T) {
	req := require.New(t)
	o := NewOrchestrator(slog.Default(), workers.NewSupervisor(slog.Default(), nil, time.Millisecond),
		nil, nil, nil, 1, 1, time.Second)

	req.NoError(o.Dispatch(context.Background(), domain.VoteCommand{PollID: "p1"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := o.Dispatch(ctx, domain.VoteCommand{PollID: "p1"})

	req.ErrorIs(err, context.DeadlineExceeded)
}

func TestOrchestrator_StartRegistersOneWorkerPerShard(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	supervisor := mocks.NewMockISupervisor(ctrl)

	supervisor.EXPECT().Add(gomock.Any()).Return(supervisor).Times(3)
	supervisor.EXPECT().Run(gomock.Any()).Times(1)

	o := NewOrchestrator(slog.Default(), supervisor, nil, nil, nil, 3, 1, time.Second)

	req.NoError(o.Start(context.Background()))
	req.Error(o.Start(context.Background()))
}
