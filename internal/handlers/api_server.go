// internal/handlers/api_server.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/park/internal/auth"
	"github.com/jason-s-yu/park/internal/middleware"
	"github.com/jason-s-yu/park/internal/models"
	"github.com/jason-s-yu/park/internal/session"
	"github.com/sirupsen/logrus"
)

// HistoryReader loads the archived events of a room.
type HistoryReader interface {
	RoomHistory(ctx context.Context, roomID uuid.UUID) ([]models.RoomEvent, error)
}

// APIServer holds the dependencies shared by every HTTP and websocket handler.
type APIServer struct {
	Service  *session.Service
	Sessions *auth.Sessions
	Hub      *RoomHub
	Logger   *logrus.Logger

	// DevLedger exposes /dev routes for creating and funding key-controlled mints.
	DevLedger bool

	// History serves GET /room/{id}/history when set.
	History HistoryReader

	now func() time.Time
}

func NewAPIServer(svc *session.Service, sessions *auth.Sessions, hub *RoomHub, logger *logrus.Logger, devLedger bool) *APIServer {
	return &APIServer{
		Service:   svc,
		Sessions:  sessions,
		Hub:       hub,
		Logger:    logger,
		DevLedger: devLedger,
		now:       time.Now,
	}
}

// Routes builds the request multiplexer with request logging applied.
func (s *APIServer) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", PingHandler)

	// auth
	mux.HandleFunc("POST /auth/login", s.LoginHandler)

	// registry & reward mint
	mux.HandleFunc("POST /registry/initialize", s.InitializeHandler)
	mux.HandleFunc("GET /registry", s.GetRegistryHandler)
	mux.HandleFunc("POST /mint/create", s.CreateRewardMintHandler)

	// rooms
	mux.HandleFunc("POST /room/create", s.CreateRoomHandler)
	mux.HandleFunc("GET /room/{id}", s.GetRoomHandler)
	mux.HandleFunc("POST /room/{id}/join", s.JoinRoomHandler)
	mux.HandleFunc("POST /room/{id}/start", s.StartRoomHandler)
	mux.HandleFunc("POST /room/{id}/end", s.EndGameHandler)
	mux.HandleFunc("GET /room/{id}/ws", s.RoomWSHandler)
	if s.History != nil {
		mux.HandleFunc("GET /room/{id}/history", s.RoomHistoryHandler)
	}

	// token accounts
	mux.HandleFunc("POST /account/open", s.OpenAccountHandler)
	mux.HandleFunc("GET /account/{address}", s.GetAccountHandler)

	if s.DevLedger {
		mux.HandleFunc("POST /dev/mint", s.DevCreateMintHandler)
		mux.HandleFunc("POST /dev/issue", s.DevIssueHandler)
	}

	return middleware.LogMiddleware(s.Logger)(mux)
}

// PingHandler answers liveness checks.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
