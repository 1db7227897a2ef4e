//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"iter"
	"live-poll/domain"
	"live-poll/domain/event"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself, the supervisor does
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// Used for logging and restart metrics.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Connection is one live client session.
// UserID reports false for anonymous viewers.
type Connection interface {
	ID() string
	UserID() (domain.UserID, bool)
	Send(payload []byte) error
}

type IRegistry interface {
	Register(conn Connection)
	Unregister(conn Connection)
	All() iter.Seq[Connection]
	Len() int
}

type IBroadcaster interface {
	Broadcast(evt event.DomainEvent)
}

// IDispatcher routes an authenticated vote to the worker owning its poll.
type IDispatcher interface {
	Dispatch(ctx context.Context, cmd domain.VoteCommand) error
}
