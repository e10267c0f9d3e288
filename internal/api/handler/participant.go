package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/kpane/banktally/internal/api/middleware"
	"github.com/kpane/banktally/internal/api/request"
	"github.com/kpane/banktally/internal/api/response"
	"github.com/kpane/banktally/internal/dependencies/clock"
	"github.com/kpane/banktally/internal/model"
	"github.com/kpane/banktally/internal/realtime"
	"github.com/kpane/banktally/internal/services/ledger"
	"github.com/kpane/banktally/internal/storage"
)

// ParticipantHandler handles the caller's own ledger operations.
// Each request loads the caller's record and runs one ledger mutation
// against it; the ledger enforces role gating and rollback on failed
// writes.
type ParticipantHandler struct {
	storage storage.Storage
	bus     realtime.Bus
	clock   clock.Clock
	logger  *slog.Logger
}

// NewParticipantHandler creates a new participant handler
func NewParticipantHandler(storage storage.Storage, bus realtime.Bus, clock clock.Clock, logger *slog.Logger) *ParticipantHandler {
	return &ParticipantHandler{
		storage: storage,
		bus:     bus,
		clock:   clock,
		logger:  logger,
	}
}

// session loads the caller's participant record into a ledger session
func (h *ParticipantHandler) session(r *http.Request) (*ledger.Session, error) {
	id := middleware.MustGetIdentity(r.Context())
	code := model.RoomCode(mux.Vars(r)["code"])

	p, err := h.storage.GetParticipant(r.Context(), code, id)
	if err != nil {
		return nil, err
	}
	return ledger.NewSession(p, h.storage, h.bus, h.clock, h.logger), nil
}

// SetBase handles PUT /api/v1/rooms/{code}/participants/me/base
func (h *ParticipantHandler) SetBase(w http.ResponseWriter, r *http.Request) {
	var req request.SetBaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		WriteError(w, NewInvalidRequestError("amount must be a decimal string"))
		return
	}

	s, err := h.session(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	s.SetBase(r.Context(), amount)

	snap := s.Snapshot()
	response.JSON(w, http.StatusOK, response.ParticipantFromModel(&snap))
}

// ApplyAction handles POST /api/v1/rooms/{code}/participants/me/actions
func (h *ParticipantHandler) ApplyAction(w http.ResponseWriter, r *http.Request) {
	var req request.ApplyActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Multiplier == 0 {
		WriteError(w, NewInvalidRequestError("multiplier must be a non-zero integer"))
		return
	}

	s, err := h.session(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := s.ApplyAction(r.Context(), req.Multiplier); err != nil {
		WriteError(w, err)
		return
	}

	snap := s.Snapshot()
	response.JSON(w, http.StatusOK, response.ParticipantFromModel(&snap))
}

// Undo handles POST /api/v1/rooms/{code}/participants/me/undo
func (h *ParticipantHandler) Undo(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := s.Undo(r.Context()); err != nil {
		WriteError(w, err)
		return
	}

	snap := s.Snapshot()
	response.JSON(w, http.StatusOK, response.ParticipantFromModel(&snap))
}

// MassTie handles POST /api/v1/rooms/{code}/participants/me/ties.
// This is the player's confirmation of a catch-up request: the ties are
// only ever inserted by the participant who owns the record.
func (h *ParticipantHandler) MassTie(w http.ResponseWriter, r *http.Request) {
	var req request.MassTieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Count <= 0 {
		WriteError(w, NewInvalidRequestError("count must be a positive integer"))
		return
	}

	s, err := h.session(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := s.MassTie(r.Context(), req.Count); err != nil {
		WriteError(w, err)
		return
	}

	snap := s.Snapshot()
	response.JSON(w, http.StatusOK, response.ParticipantFromModel(&snap))
}

// Get handles GET /api/v1/rooms/{code}/participants/me
func (h *ParticipantHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := middleware.MustGetIdentity(r.Context())
	code := model.RoomCode(mux.Vars(r)["code"])

	p, err := h.storage.GetParticipant(r.Context(), code, id)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ParticipantFromModel(p))
}
