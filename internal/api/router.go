package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kpane/banktally/internal/api/handler"
	"github.com/kpane/banktally/internal/api/middleware"
	"github.com/kpane/banktally/internal/dependencies/clock"
	"github.com/kpane/banktally/internal/realtime"
	"github.com/kpane/banktally/internal/services/catchup"
	"github.com/kpane/banktally/internal/services/room"
	"github.com/kpane/banktally/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	RoomController *room.Controller
	Storage        storage.Storage
	Bus            realtime.Bus
	Clock          clock.Clock
	Proposer       *catchup.Proposer
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	roomHandler := handler.NewRoomHandler(cfg.RoomController, cfg.Storage, cfg.Proposer)
	participantHandler := handler.NewParticipantHandler(cfg.Storage, cfg.Bus, cfg.Clock, cfg.Logger)
	eventsHandler := handler.NewEventsHandler(cfg.Bus, cfg.Logger)

	identityMiddleware := middleware.Identity()
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Health check endpoint (no identity)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Room routes (all require a device identity)
	rooms := api.PathPrefix("/rooms").Subrouter()
	rooms.Use(identityMiddleware)
	rooms.HandleFunc("", roomHandler.Create).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}", roomHandler.Get).Methods(http.MethodGet)
	rooms.HandleFunc("/{code}", roomHandler.End).Methods(http.MethodDelete)
	rooms.HandleFunc("/{code}/join", roomHandler.Join).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}/catchup", roomHandler.ProposeCatchUp).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}/events", eventsHandler.Stream).Methods(http.MethodGet)

	// The caller's own ledger
	rooms.HandleFunc("/{code}/participants/me", participantHandler.Get).Methods(http.MethodGet)
	rooms.HandleFunc("/{code}/participants/me/base", participantHandler.SetBase).Methods(http.MethodPut)
	rooms.HandleFunc("/{code}/participants/me/actions", participantHandler.ApplyAction).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}/participants/me/undo", participantHandler.Undo).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}/participants/me/ties", participantHandler.MassTie).Methods(http.MethodPost)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
