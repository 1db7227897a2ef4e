package server

import (
	"live-poll/auth"
	"live-poll/domain"
	"live-poll/errors"
	"live-poll/services"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type createPollRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type PollServer struct {
	log         *slog.Logger
	pollService services.IPollService
}

func NewPollServer(log *slog.Logger, pollService services.IPollService) *PollServer {
	return &PollServer{log: log, pollService: pollService}
}

func (s *PollServer) Register(r chi.Router) {
	r.Get("/polls", s.ListPolls)
	r.Get("/polls/{id}", s.GetPoll)
	r.With(RequireUser).Post("/polls", s.CreatePoll)
}

func (s *PollServer) ListPolls(w http.ResponseWriter, r *http.Request) {
	polls, err := s.pollService.ListPolls(r.Context())
	if err != nil {
		s.log.Error("Unable to list polls", "error", err)
		WriteError(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, polls)
}

func (s *PollServer) GetPoll(w http.ResponseWriter, r *http.Request) {
	id := domain.PollID(chi.URLParam(r, "id"))
	poll, err := s.pollService.GetPoll(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, poll)
}

// CreatePoll answers 201 only after NEW_POLL went out to the live viewers.
func (s *PollServer) CreatePoll(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.UserFromRequest(r)

	var req createPollRequest
	if err := ParseJSONBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	poll, err := s.pollService.CreatePoll(r.Context(), domain.CreatePollCommand{
		Question:  req.Question,
		Options:   req.Options,
		CreatedBy: identity.UserID,
	})
	switch {
	case errors.Is(err, errors.ErrInvalidPoll):
		WriteError(w, err)
		return
	case err != nil:
		WriteError(w, errors.ErrStoreUnavailable)
		return
	}
	JSONResponse(w, http.StatusCreated, poll)
}
