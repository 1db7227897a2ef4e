package event

import (
	"encoding/json"
	"fmt"
	"live-poll/domain"
	"live-poll/errors"
	"time"
)

type Type string

const (
	NewPoll    Type = "NEW_POLL"
	UpdateVote Type = "UPDATE_VOTE"
)

// DomainEvent is anything the broadcaster can push to live clients.
type DomainEvent interface {
	Type() Type
	Snapshot() domain.Poll
	OccurredAt() time.Time
}

type PollCreated struct {
	Poll domain.Poll
	At   time.Time
}

func (e PollCreated) Type() Type { return NewPoll }
func (e PollCreated) Snapshot() domain.Poll { return e.Poll }
func (e PollCreated) OccurredAt() time.Time { return e.At }

type VoteRecorded struct {
	Poll   domain.Poll
	Voter  domain.UserID
	Option string
	At     time.Time
}

func (e VoteRecorded) Type() Type { return UpdateVote }
func (e VoteRecorded) Snapshot() domain.Poll { return e.Poll }
func (e VoteRecorded) OccurredAt() time.Time { return e.At }

type envelope struct {
	Type Type        `json:"type"`
	Poll domain.Poll `json:"poll"`
}

// Encode renders the server → client message. Voter and option never leave the server.
func Encode(evt DomainEvent) ([]byte, error) {
	return json.Marshal(envelope{Type: evt.Type(), Poll: evt.Snapshot()})
}

// VoteMessage is the client → server payload.
type VoteMessage struct {
	PollID         string `json:"pollId"`
	SelectedOption string `json:"selectedOption"`
}

func DecodeVote(payload []byte) (VoteMessage, error) {
	var msg VoteMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return VoteMessage{}, fmt.Errorf("%w: %v", errors.ErrMalformedMessage, err)
	}
	if msg.PollID == "" {
		return VoteMessage{}, fmt.Errorf("%w: missing pollId", errors.ErrMalformedMessage)
	}
	if msg.SelectedOption == "" {
		return VoteMessage{}, fmt.Errorf("%w: missing selectedOption", errors.ErrMalformedMessage)
	}
	return msg, nil
}
