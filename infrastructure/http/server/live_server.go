package server

import (
	"context"
	"live-poll/auth"
	"live-poll/contract"
	"live-poll/infrastructure/live"
	"live-poll/services"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
)

const maxVoteMessageSize = 4 << 10

type LiveServer struct {
	log                  *slog.Logger
	registry             contract.IRegistry
	voteService          services.IVoteService
	originPatterns       []string
	connectionBufferSize int
	writeTimeout         time.Duration
}

func NewLiveServer(log *slog.Logger, registry contract.IRegistry, voteService services.IVoteService,
	originPatterns []string, connectionBufferSize int, writeTimeout time.Duration) *LiveServer {
	return &LiveServer{
		log:                  log,
		registry:             registry,
		voteService:          voteService,
		originPatterns:       originPatterns,
		connectionBufferSize: connectionBufferSize,
		writeTimeout:         writeTimeout,
	}
}

func (s *LiveServer) Register(r chi.Router) {
	r.Get("/ws", s.Connect)
}

// Connect upgrades the request and keeps the connection registered until the transport closes.
// The identity is captured once here; anonymous viewers receive broadcasts but cannot vote.
// The voter sees its own vote through the same UPDATE_VOTE broadcast as everyone else.
func (s *LiveServer) Connect(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.UserFromRequest(r)

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: s.originPatterns})
	if err != nil {
		s.log.Warn("Websocket upgrade failed", "error", err)
		return
	}
	ws.SetReadLimit(maxVoteMessageSize)

	conn := live.NewConnection(s.log, ws, identity.UserID, s.connectionBufferSize, s.writeTimeout)
	conn.OnClose(func() { s.registry.Unregister(conn) })
	s.registry.Register(conn)

	log := s.log.With("connection_id", conn.ID(), "user_id", identity.UserID)
	log.Info("Client connected", "connections", s.registry.Len())

	ctx := r.Context()
	go func() {
		if err := conn.WriteLoop(ctx); err != nil {
			log.Debug("Write loop ended", "error", err)
		}
	}()

	err = conn.ReadLoop(ctx, func(ctx context.Context, payload []byte) {
		// Rejections are already logged and counted by the vote service.
		_ = s.voteService.Submit(ctx, conn, payload)
	})
	if err != nil {
		log.Warn("Client disconnected with error", "error", err)
		return
	}
	log.Info("Client disconnected")
}
