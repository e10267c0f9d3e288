package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kpane/banktally/internal/api/middleware"
	"github.com/kpane/banktally/internal/api/request"
	"github.com/kpane/banktally/internal/api/response"
	"github.com/kpane/banktally/internal/model"
	"github.com/kpane/banktally/internal/services/catchup"
	"github.com/kpane/banktally/internal/services/room"
	"github.com/kpane/banktally/internal/services/syncer"
	"github.com/kpane/banktally/internal/storage"
)

// RoomHandler handles room directory endpoints
type RoomHandler struct {
	rooms    *room.Controller
	storage  storage.Storage
	proposer *catchup.Proposer
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(rooms *room.Controller, storage storage.Storage, proposer *catchup.Proposer) *RoomHandler {
	return &RoomHandler{
		rooms:    rooms,
		storage:  storage,
		proposer: proposer,
	}
}

// Create handles POST /api/v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	id := middleware.MustGetIdentity(r.Context())

	var req request.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Empty body means default display name
		req = request.CreateRoomRequest{}
	}

	created, err := h.rooms.Create(r.Context(), id, req.DisplayName)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.RoomFromModel(created))
}

// Get handles GET /api/v1/rooms/{code}: the room, its participants and
// the derived banker aggregate in one response.
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])

	rm, err := h.rooms.Get(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	participants, err := h.storage.ListParticipants(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	state := response.RoomStateFrom(rm, participants,
		syncer.ComputeAggregate(participants),
		catchup.MajorityRoundCount(participants))
	response.JSON(w, http.StatusOK, state)
}

// Join handles POST /api/v1/rooms/{code}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	id := middleware.MustGetIdentity(r.Context())
	code := model.RoomCode(mux.Vars(r)["code"])

	var req request.JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req = request.JoinRoomRequest{}
	}

	result, err := h.rooms.Join(r.Context(), id, code, req.DisplayName)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.JoinResult{
		Role:        string(result.Role),
		Rejoined:    result.Rejoined,
		Participant: response.ParticipantFromModel(result.Participant),
	})
}

// End handles DELETE /api/v1/rooms/{code}. Banker only; idempotent.
func (h *RoomHandler) End(w http.ResponseWriter, r *http.Request) {
	id := middleware.MustGetIdentity(r.Context())
	code := model.RoomCode(mux.Vars(r)["code"])

	rm, err := h.rooms.Get(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}
	if rm.BankerIdentity != id {
		WriteError(w, NewNotBankerError())
		return
	}

	if err := h.rooms.End(r.Context(), code); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// ProposeCatchUp handles POST /api/v1/rooms/{code}/catchup. Banker only:
// sends a directed catch-up request; the target player confirms or rejects
// on their own device.
func (h *RoomHandler) ProposeCatchUp(w http.ResponseWriter, r *http.Request) {
	id := middleware.MustGetIdentity(r.Context())
	code := model.RoomCode(mux.Vars(r)["code"])

	rm, err := h.rooms.Get(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}
	if rm.BankerIdentity != id {
		WriteError(w, NewNotBankerError())
		return
	}

	var req request.ProposeCatchUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.TargetIdentity == "" || req.MissingCount <= 0 {
		WriteError(w, NewInvalidRequestError("target_identity and a positive missing_count are required"))
		return
	}

	err = h.proposer.Propose(r.Context(), code, model.Identity(req.TargetIdentity), req.MissingCount)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}
