//go:generate go run go.uber.org/mock/mockgen -source=poll.go -destination=../mocks/mock_poll_repository.go -package=mocks
package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"live-poll/domain"
	"live-poll/errors"
	"log/slog"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

// VoteResult tells whether the vote was counted and carries the poll as committed.
// Applied is false when the user had already voted; Poll then holds the unchanged state.
type VoteResult struct {
	Applied bool
	Poll    domain.Poll
}

type IPollRepository interface {
	FindByID(ctx context.Context, id domain.PollID) (domain.Poll, error)
	Create(ctx context.Context, poll domain.Poll) (domain.Poll, error)
	TryRecordVote(ctx context.Context, pollID domain.PollID, userID domain.UserID, option string) (VoteResult, error)
	List(ctx context.Context) ([]domain.Poll, error)
	CountCreatedBy(ctx context.Context, userID domain.UserID) (int, error)
	CountVotedIn(ctx context.Context, userID domain.UserID) (int, error)
}

const maxConflictRetries = 64

type PollRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewPollRepository(db *badger.DB, log *slog.Logger) PollRepository {
	return PollRepository{db: db, log: log}
}

type diskOption struct {
	Answer string `json:"a"`
	Votes  int    `json:"v"`
}

type diskPoll struct {
	ID        string       `json:"id"`
	Question  string       `json:"q"`
	Options   []diskOption `json:"o"`
	CreatedBy string       `json:"c"`
	Voters    []string     `json:"u"`
	CreatedAt int64        `json:"t"`
}

// Keys:
//
//	poll:{poll_id}               → diskPoll
//	voter:{user_id}:{poll_id}    → empty, one per counted vote
//	creator:{user_id}:{poll_id}  → empty
func pollKey(id domain.PollID) []byte { return []byte("poll:" + string(id)) }

func voterKey(user domain.UserID, id domain.PollID) []byte {
	return []byte(fmt.Sprintf("voter:%s:%s", user, id))
}

func creatorKey(user domain.UserID, id domain.PollID) []byte {
	return []byte(fmt.Sprintf("creator:%s:%s", user, id))
}

func (r PollRepository) FindByID(ctx context.Context, id domain.PollID) (domain.Poll, error) {
	if err := ctx.Err(); err != nil {
		return domain.Poll{}, err
	}
	var poll domain.Poll
	err := r.db.View(func(txn *badger.Txn) error {
		p, err := readPoll(txn, id)
		poll = p
		return err
	})
	return poll, err
}

// Create persists the poll along with its creator index entry.
func (r PollRepository) Create(ctx context.Context, poll domain.Poll) (domain.Poll, error) {
	if err := ctx.Err(); err != nil {
		return domain.Poll{}, err
	}
	err := r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(pollKey(poll.ID)); err == nil {
			return fmt.Errorf("%w: poll %s already exists", errors.ErrInvalidPoll, poll.ID)
		}
		if err := writePoll(txn, poll); err != nil {
			return err
		}
		return txn.Set(creatorKey(poll.CreatedBy, poll.ID), nil)
	})
	if err != nil {
		if errors.Is(err, errors.ErrInvalidPoll) {
			return domain.Poll{}, err
		}
		return domain.Poll{}, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return poll.Clone(), nil
}

// TryRecordVote reads the poll, checks the voter set and writes the new tally in one
// serializable transaction. Badger aborts the commit with ErrConflict when another
// transaction touched the same poll in between, in which case the whole read is redone.
func (r PollRepository) TryRecordVote(ctx context.Context, pollID domain.PollID, userID domain.UserID, option string) (VoteResult, error) {
	for attempt := 1; attempt <= maxConflictRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return VoteResult{}, err
		}
		var result VoteResult
		err := r.db.Update(func(txn *badger.Txn) error {
			poll, err := readPoll(txn, pollID)
			if err != nil {
				return err
			}
			switch err := poll.RecordVote(userID, option); {
			case errors.Is(err, errors.ErrDuplicateVote):
				result = VoteResult{Applied: false, Poll: poll}
				return nil
			case err != nil:
				return err
			}
			if err = writePoll(txn, poll); err != nil {
				return err
			}
			result = VoteResult{Applied: true, Poll: poll}
			return txn.Set(voterKey(userID, pollID), nil)
		})
		switch {
		case err == nil:
			return result, nil
		case errors.Is(err, badger.ErrConflict):
			r.log.Debug("Vote transaction conflict, retrying", "poll_id", pollID, "attempt", attempt)
			continue
		case errors.Is(err, errors.ErrPollNotFound), errors.Is(err, errors.ErrOptionNotFound):
			return VoteResult{}, err
		default:
			return VoteResult{}, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
		}
	}
	return VoteResult{}, fmt.Errorf("%w: too many conflicting writers on poll %s", errors.ErrStoreUnavailable, pollID)
}

// List returns every poll, newest first.
func (r PollRepository) List(ctx context.Context) ([]domain.Poll, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	polls := []domain.Poll{}
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte("poll:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				p, err := decodePoll(val)
				if err != nil {
					return err
				}
				polls = append(polls, p)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	sort.SliceStable(polls, func(i, j int) bool {
		return polls[i].CreatedAt.After(polls[j].CreatedAt)
	})
	return polls, nil
}

func (r PollRepository) CountCreatedBy(ctx context.Context, userID domain.UserID) (int, error) {
	return r.countPrefix(ctx, fmt.Sprintf("creator:%s:", userID))
}

func (r PollRepository) CountVotedIn(ctx context.Context, userID domain.UserID) (int, error) {
	return r.countPrefix(ctx, fmt.Sprintf("voter:%s:", userID))
}

func (r PollRepository) countPrefix(ctx context.Context, prefixStr string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	count := 0
	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()
		prefix := []byte(prefixStr)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

func readPoll(txn *badger.Txn, id domain.PollID) (domain.Poll, error) {
	item, err := txn.Get(pollKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.Poll{}, fmt.Errorf("%w: %s", errors.ErrPollNotFound, id)
	}
	if err != nil {
		return domain.Poll{}, err
	}
	var poll domain.Poll
	err = item.Value(func(val []byte) error {
		poll, err = decodePoll(val)
		return err
	})
	return poll, err
}

func writePoll(txn *badger.Txn, poll domain.Poll) error {
	data, err := json.Marshal(fromPoll(poll))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return txn.Set(pollKey(poll.ID), data)
}

func decodePoll(val []byte) (domain.Poll, error) {
	var dp diskPoll
	if err := json.Unmarshal(val, &dp); err != nil {
		return domain.Poll{}, fmt.Errorf("unmarshal failed: %w", err)
	}
	return toPoll(dp), nil
}

func fromPoll(p domain.Poll) diskPoll {
	return diskPoll{
		ID:       string(p.ID),
		Question: p.Question,
		Options: lo.Map(p.Options, func(o domain.Option, _ int) diskOption {
			return diskOption{Answer: o.Answer, Votes: o.Votes}
		}),
		CreatedBy: string(p.CreatedBy),
		Voters: lo.Map(p.Voters, func(u domain.UserID, _ int) string {
			return string(u)
		}),
		CreatedAt: p.CreatedAt.UnixNano(),
	}
}

func toPoll(dp diskPoll) domain.Poll {
	return domain.Poll{
		ID:       domain.PollID(dp.ID),
		Question: dp.Question,
		Options: lo.Map(dp.Options, func(o diskOption, _ int) domain.Option {
			return domain.Option{Answer: o.Answer, Votes: o.Votes}
		}),
		CreatedBy: domain.UserID(dp.CreatedBy),
		Voters: lo.Map(dp.Voters, func(u string, _ int) domain.UserID {
			return domain.UserID(u)
		}),
		CreatedAt: time.Unix(0, dp.CreatedAt).UTC(),
	}
}
