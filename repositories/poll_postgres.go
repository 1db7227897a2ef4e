package repositories

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"live-poll/domain"
	"live-poll/errors"
	"log/slog"

	"github.com/lib/pq"
)

//go:embed schema.sql
var schema string

// CreateSchema creates every table used by the postgres repositories.
// Safe to call multiple times.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

type PostgresPollRepository struct {
	db  *sql.DB
	log *slog.Logger
}

func NewPostgresPollRepository(db *sql.DB, log *slog.Logger) PostgresPollRepository {
	return PostgresPollRepository{db: db, log: log}
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// snapshot opens a read-only transaction in which every statement sees the same
// committed state, so option counts always match the voter list.
func (r PostgresPollRepository) snapshot(ctx context.Context) (*sql.Tx, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return tx, nil
}

func (r PostgresPollRepository) FindByID(ctx context.Context, id domain.PollID) (domain.Poll, error) {
	tx, err := r.snapshot(ctx)
	if err != nil {
		return domain.Poll{}, err
	}
	defer func() { _ = tx.Rollback() }()

	poll, err := loadPoll(ctx, tx, id)
	if err != nil && !errors.Is(err, errors.ErrPollNotFound) {
		return domain.Poll{}, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return poll, err
}

// Create inserts the poll row and its options, keeping option order through the position column.
func (r PostgresPollRepository) Create(ctx context.Context, poll domain.Poll) (domain.Poll, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Poll{}, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO poll (id, question, created_by, created_at)
		VALUES ($1, $2, $3, $4)
	`, poll.ID, poll.Question, poll.CreatedBy, poll.CreatedAt)
	if err != nil {
		return domain.Poll{}, fmt.Errorf("%w: insert poll: %v", errors.ErrStoreUnavailable, err)
	}

	answers := make([]string, len(poll.Options))
	for i, o := range poll.Options {
		answers[i] = o.Answer
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO poll_option (poll_id, position, answer, votes)
		SELECT $1, t.position - 1, t.answer, 0
		FROM unnest($2::text[]) WITH ORDINALITY AS t(answer, position)
	`, poll.ID, pq.Array(answers))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Poll{}, fmt.Errorf("%w: duplicate option", errors.ErrInvalidPoll)
		}
		return domain.Poll{}, fmt.Errorf("%w: insert options: %v", errors.ErrStoreUnavailable, err)
	}

	if err = tx.Commit(); err != nil {
		return domain.Poll{}, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return poll.Clone(), nil
}

// TryRecordVote locks the poll row so writers on the same poll queue up, then relies on the
// poll_voter primary key to count each (user, poll) pair at most once. The option increment
// is a per-field update, never a whole-document rewrite.
func (r PostgresPollRepository) TryRecordVote(ctx context.Context, pollID domain.PollID, userID domain.UserID, option string) (VoteResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return VoteResult{}, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	var locked string
	err = tx.QueryRowContext(ctx, `SELECT id FROM poll WHERE id = $1 FOR UPDATE`, pollID).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return VoteResult{}, fmt.Errorf("%w: %s", errors.ErrPollNotFound, pollID)
	}
	if err != nil {
		return VoteResult{}, fmt.Errorf("%w: lock poll: %v", errors.ErrStoreUnavailable, err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE poll_option SET votes = votes + 1
		WHERE poll_id = $1 AND answer = $2
	`, pollID, option)
	if err != nil {
		return VoteResult{}, fmt.Errorf("%w: increment option: %v", errors.ErrStoreUnavailable, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return VoteResult{}, fmt.Errorf("%w: %q", errors.ErrOptionNotFound, option)
	}

	res, err = tx.ExecContext(ctx, `
		INSERT INTO poll_voter (poll_id, user_id) VALUES ($1, $2)
		ON CONFLICT (poll_id, user_id) DO NOTHING
	`, pollID, userID)
	if err != nil {
		return VoteResult{}, fmt.Errorf("%w: insert voter: %v", errors.ErrStoreUnavailable, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Already voted: discard the increment and report the committed state.
		_ = tx.Rollback()
		poll, err := r.FindByID(ctx, pollID)
		if err != nil {
			return VoteResult{}, err
		}
		return VoteResult{Applied: false, Poll: poll}, nil
	}

	poll, err := loadPoll(ctx, tx, pollID)
	if err != nil {
		return VoteResult{}, fmt.Errorf("%w: reload poll: %v", errors.ErrStoreUnavailable, err)
	}
	if err = tx.Commit(); err != nil {
		return VoteResult{}, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return VoteResult{Applied: true, Poll: poll}, nil
}

// List returns every poll, newest first.
func (r PostgresPollRepository) List(ctx context.Context) ([]domain.Poll, error) {
	tx, err := r.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `SELECT id FROM poll ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	var ids []domain.PollID
	for rows.Next() {
		var id domain.PollID
		if err = rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
		}
		ids = append(ids, id)
	}
	_ = rows.Close()
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}

	polls := make([]domain.Poll, 0, len(ids))
	for _, id := range ids {
		p, err := loadPoll(ctx, tx, id)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
		}
		polls = append(polls, p)
	}
	return polls, nil
}

func (r PostgresPollRepository) CountCreatedBy(ctx context.Context, userID domain.UserID) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM poll WHERE created_by = $1`, userID)
}

func (r PostgresPollRepository) CountVotedIn(ctx context.Context, userID domain.UserID) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM poll_voter WHERE user_id = $1`, userID)
}

func (r PostgresPollRepository) count(ctx context.Context, query string, userID domain.UserID) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return n, nil
}

func loadPoll(ctx context.Context, q queryer, id domain.PollID) (domain.Poll, error) {
	poll := domain.Poll{Voters: []domain.UserID{}}
	err := q.QueryRowContext(ctx, `
		SELECT id, question, created_by, created_at FROM poll WHERE id = $1
	`, id).Scan(&poll.ID, &poll.Question, &poll.CreatedBy, &poll.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Poll{}, fmt.Errorf("%w: %s", errors.ErrPollNotFound, id)
	}
	if err != nil {
		return domain.Poll{}, err
	}
	poll.CreatedAt = poll.CreatedAt.UTC()

	rows, err := q.QueryContext(ctx, `
		SELECT answer, votes FROM poll_option WHERE poll_id = $1 ORDER BY position
	`, id)
	if err != nil {
		return domain.Poll{}, err
	}
	for rows.Next() {
		var o domain.Option
		if err = rows.Scan(&o.Answer, &o.Votes); err != nil {
			_ = rows.Close()
			return domain.Poll{}, err
		}
		poll.Options = append(poll.Options, o)
	}
	_ = rows.Close()
	if err = rows.Err(); err != nil {
		return domain.Poll{}, err
	}

	var voters []string
	err = q.QueryRowContext(ctx, `
		SELECT COALESCE(array_agg(user_id ORDER BY seq), '{}') FROM poll_voter WHERE poll_id = $1
	`, id).Scan(pq.Array(&voters))
	if err != nil {
		return domain.Poll{}, err
	}
	for _, v := range voters {
		poll.Voters = append(poll.Voters, domain.UserID(v))
	}
	return poll, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
