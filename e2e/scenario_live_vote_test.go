package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/suite"
)

type option struct {
	Answer string `json:"answer"`
	Votes  int    `json:"votes"`
}

type poll struct {
	ID      string   `json:"_id"`
	Options []option `json:"options"`
	Voters  []string `json:"voters"`
}

type liveEvent struct {
	Type string `json:"type"`
	Poll poll   `json:"poll"`
}

type testLiveVoteSuite struct {
	BaseSuite
}

func TestLiveVoteSuite(t *testing.T) {
	suite.Run(t, &testLiveVoteSuite{})
}

// next reads events until one about pollID matches accept. Other polls may be live on a shared server.
func (s *testLiveVoteSuite) next(ctx context.Context, conn *websocket.Conn, pollID string, accept func(liveEvent) bool) liveEvent {
	for {
		_, raw, err := conn.Read(ctx)
		s.Require().NoError(err, "no matching event before the deadline")
		var evt liveEvent
		s.Require().NoError(json.Unmarshal(raw, &evt))
		if evt.Poll.ID == pollID && accept(evt) {
			return evt
		}
	}
}

func (s *testLiveVoteSuite) TestTwoVotersOneViewer() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	creator, u1, u2, viewer := s.NewClient(), s.NewClient(), s.NewClient(), s.NewClient()

	s.Step("Step 0: Sign up creator and voters")
	creator.Signup("Creator")
	u1.Signup("Alice")
	u2.Signup("Bob")

	s.Step("Step 1: Everyone opens the live connection")
	live1, live2, liveViewer := u1.Live(ctx), u2.Live(ctx), viewer.Live(ctx)
	defer live1.Close(websocket.StatusNormalClosure, "")
	defer live2.Close(websocket.StatusNormalClosure, "")
	defer liveViewer.Close(websocket.StatusNormalClosure, "")

	s.Step("Step 2: Anonymous users cannot create polls")
	s.Require().Equal(http.StatusUnauthorized, viewer.Do(http.MethodPost, "/polls",
		map[string]any{"question": "Nope?", "options": []string{"A"}}, nil))

	s.Step("Step 3: Duplicate labels are rejected")
	s.Require().Equal(http.StatusBadRequest, creator.Do(http.MethodPost, "/polls",
		map[string]any{"question": "Dupes?", "options": []string{"A", "A"}}, nil))

	s.Step("Step 4: Create the poll and see NEW_POLL everywhere")
	var created poll
	s.Require().Equal(http.StatusCreated, creator.Do(http.MethodPost, "/polls",
		map[string]any{"question": "A or B?", "options": []string{"A", "B"}}, &created))
	for _, conn := range []*websocket.Conn{live1, live2, liveViewer} {
		s.next(ctx, conn, created.ID, func(e liveEvent) bool { return e.Type == "NEW_POLL" })
	}

	s.Step("Step 5: Alice votes A, Bob votes B, Alice tries again")
	s.Require().NoError(live1.Write(ctx, websocket.MessageText, []byte(`{"pollId":"`+created.ID+`","selectedOption":"A"}`)))
	s.next(ctx, liveViewer, created.ID, func(e liveEvent) bool { return len(e.Poll.Voters) == 1 })
	s.Require().NoError(live2.Write(ctx, websocket.MessageText, []byte(`{"pollId":"`+created.ID+`","selectedOption":"B"}`)))
	s.Require().NoError(live1.Write(ctx, websocket.MessageText, []byte(`{"pollId":"`+created.ID+`","selectedOption":"B"}`)))
	final := s.next(ctx, liveViewer, created.ID, func(e liveEvent) bool { return len(e.Poll.Voters) == 2 })
	s.Require().Equal([]option{{Answer: "A", Votes: 1}, {Answer: "B", Votes: 1}}, final.Poll.Options)

	s.Step("Step 6: Voters receive their own confirmation")
	s.next(ctx, live1, created.ID, func(e liveEvent) bool { return e.Type == "UPDATE_VOTE" && len(e.Poll.Voters) == 2 })

	s.Step("Step 7: The stored poll matches what was broadcast")
	time.Sleep(200 * time.Millisecond)
	var stored poll
	s.Require().Equal(http.StatusOK, viewer.Do(http.MethodGet, "/polls/"+created.ID, nil, &stored))
	s.Require().Equal(final.Poll.Options, stored.Options)
	s.Require().Len(stored.Voters, 2)

	s.Step("Step 8: Profile counts the vote")
	var profile struct {
		PollsCreated int `json:"pollsCreated"`
		PollsVotedIn int `json:"pollsVotedIn"`
	}
	s.Require().Equal(http.StatusOK, u1.Do(http.MethodGet, "/profile", nil, &profile))
	s.Require().Equal(0, profile.PollsCreated)
	s.Require().Equal(1, profile.PollsVotedIn)
}
