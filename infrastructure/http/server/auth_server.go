package server

import (
	"live-poll/auth"
	"live-poll/errors"
	"live-poll/services"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type sessionResponse struct {
	User      auth.Identity `json:"user"`
	ExpiresAt time.Time     `json:"expiresAt"`
}

type profileUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type profileResponse struct {
	User profileUser `json:"user"`
	services.UserStats
}

type AuthServer struct {
	log         *slog.Logger
	authService services.IAuthService
	pollService services.IPollService
	cookies     auth.SessionCookies
}

func NewAuthServer(log *slog.Logger, authService services.IAuthService,
	pollService services.IPollService, cookies auth.SessionCookies) *AuthServer {
	return &AuthServer{log: log, authService: authService, pollService: pollService, cookies: cookies}
}

func (s *AuthServer) Register(r chi.Router) {
	r.Post("/signup", s.Signup)
	r.Post("/login", s.Login)
	r.Post("/logout", s.Logout)
	r.With(RequireUser).Get("/profile", s.Profile)
}

// Signup creates the account and opens a session straight away.
func (s *AuthServer) Signup(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := ParseJSONBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	session, err := s.authService.Register(r.Context(), req)
	if err != nil {
		if errors.MapToHTTPStatus(err) >= http.StatusInternalServerError {
			s.log.Error("Signup failed", "error", err)
		}
		WriteError(w, err)
		return
	}

	s.cookies.Set(w, session.Token, session.ExpiresAt)
	s.log.Info("User signed up", "user_id", session.Identity.UserID)
	JSONResponse(w, http.StatusCreated, sessionResponse{User: session.Identity, ExpiresAt: session.ExpiresAt})
}

func (s *AuthServer) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := ParseJSONBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	session, err := s.authService.Login(r.Context(), req)
	if err != nil {
		WriteError(w, err)
		return
	}

	s.cookies.Set(w, session.Token, session.ExpiresAt)
	JSONResponse(w, http.StatusOK, sessionResponse{User: session.Identity, ExpiresAt: session.ExpiresAt})
}

// Logout only drops the cookie; tokens are stateless and expire on their own.
func (s *AuthServer) Logout(w http.ResponseWriter, _ *http.Request) {
	s.cookies.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *AuthServer) Profile(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.UserFromRequest(r)

	user, err := s.authService.GetUser(r.Context(), identity)
	if err != nil {
		WriteError(w, err)
		return
	}
	stats, err := s.pollService.Stats(r.Context(), identity.UserID)
	if err != nil {
		s.log.Error("Unable to compute profile stats", "user_id", identity.UserID, "error", err)
		WriteError(w, err)
		return
	}

	JSONResponse(w, http.StatusOK, profileResponse{
		User: profileUser{
			ID:        string(user.ID),
			Name:      user.Name,
			Email:     user.Email,
			CreatedAt: user.CreatedAt,
		},
		UserStats: stats,
	})
}
