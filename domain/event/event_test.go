package event

import (
	"encoding/json"
	"live-poll/domain"
	"live-poll/errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEncode_WrapsPollWithType(t *testing.T) {
	req := require.New(t)
	poll := domain.NewPoll("p1", "Q", []string{"A", "B"}, "u1", time.Now())
	req.NoError(poll.RecordVote("u2", "B"))

	raw, err := Encode(VoteRecorded{Poll: poll, Voter: "u2", Option: "B", At: time.Now()})
	req.NoError(err)

	var got struct {
		Type string      `json:"type"`
		Poll domain.Poll `json:"poll"`
	}
	req.NoError(json.Unmarshal(raw, &got))
	req.Equal("UPDATE_VOTE", got.Type)
	req.Equal(domain.PollID("p1"), got.Poll.ID)
	req.Equal(1, got.Poll.Options[1].Votes)
	req.Equal([]domain.UserID{"u2"}, got.Poll.Voters)
	req.NotContains(string(raw), "selectedOption")
}

func TestEncode_NewPoll(t *testing.T) {
	req := require.New(t)
	poll := domain.NewPoll("p1", "Q", []string{"A"}, "u1", time.Now())

	raw, err := Encode(PollCreated{Poll: poll, At: time.Now()})

	req.NoError(err)
	req.Contains(string(raw), `"type":"NEW_POLL"`)
	req.Contains(string(raw), `"voters":[]`)
}

func TestDecodeVote(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    VoteMessage
		wantErr bool
	}{
		{"valid", `{"pollId":"p1","selectedOption":"A"}`, VoteMessage{PollID: "p1", SelectedOption: "A"}, false},
		{"not json", `vote A`, VoteMessage{}, true},
		{"missing poll", `{"selectedOption":"A"}`, VoteMessage{}, true},
		{"missing option", `{"pollId":"p1"}`, VoteMessage{}, true},
		{"empty option", `{"pollId":"p1","selectedOption":""}`, VoteMessage{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)

			got, err := DecodeVote([]byte(tt.payload))

			if tt.wantErr {
				req.ErrorIs(err, errors.ErrMalformedMessage)
				return
			}
			req.NoError(err)
			req.Equal(tt.want, got)
		})
	}
}
