package domain

import (
	"fmt"
	"live-poll/errors"
	"slices"
	"time"

	"github.com/samber/lo"
)

type PollID string

type UserID string

// Option is a labelled answer owned by exactly one Poll.
type Option struct {
	Answer string `json:"answer"`
	Votes  int    `json:"votes"`
}

// Poll is serialized as-is on the live wire, hence the json tags.
type Poll struct {
	ID        PollID    `json:"_id"`
	Question  string    `json:"question"`
	Options   []Option  `json:"options"`
	CreatedBy UserID    `json:"createdBy"`
	Voters    []UserID  `json:"voters"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewPoll builds a poll with every count at zero and an empty voter set.
func NewPoll(id PollID, question string, answers []string, createdBy UserID, at time.Time) Poll {
	return Poll{
		ID:       id,
		Question: question,
		Options: lo.Map(answers, func(answer string, _ int) Option {
			return Option{Answer: answer}
		}),
		CreatedBy: createdBy,
		Voters:    []UserID{},
		CreatedAt: at,
	}
}

// OptionIndex returns the position of the option whose label matches exactly, or -1.
func (p Poll) OptionIndex(answer string) int {
	return slices.IndexFunc(p.Options, func(o Option) bool {
		return o.Answer == answer
	})
}

func (p Poll) HasVoted(user UserID) bool {
	return lo.Contains(p.Voters, user)
}

func (p Poll) TotalVotes() int {
	return lo.SumBy(p.Options, func(o Option) int { return o.Votes })
}

// RecordVote appends the voter and increments one option.
// The caller is responsible for making the read-modify-write atomic.
func (p *Poll) RecordVote(user UserID, answer string) error {
	idx := p.OptionIndex(answer)
	if idx < 0 {
		return fmt.Errorf("%w: %q", errors.ErrOptionNotFound, answer)
	}
	if p.HasVoted(user) {
		return errors.ErrDuplicateVote
	}
	p.Options[idx].Votes++
	p.Voters = append(p.Voters, user)
	return nil
}

// Clone returns a deep copy so callers can hand a poll to other goroutines.
func (p Poll) Clone() Poll {
	c := p
	c.Options = slices.Clone(p.Options)
	c.Voters = slices.Clone(p.Voters)
	if c.Voters == nil {
		c.Voters = []UserID{}
	}
	return c
}
