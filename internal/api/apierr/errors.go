package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kpane/banktally/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeRoomNotFound        = "ROOM_NOT_FOUND"
	CodeRoomEnded           = "ROOM_ENDED"
	CodeRoomFull            = "ROOM_FULL"
	CodeParticipantNotFound = "PARTICIPANT_NOT_FOUND"
	CodeNotBanker           = "NOT_BANKER"
	CodeNotPlayer           = "NOT_PLAYER"
	CodeNoBaseStake         = "NO_BASE_STAKE"
	CodeNothingToUndo       = "NOTHING_TO_UNDO"
	CodeWriteFailed         = "WRITE_FAILED"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// WriteError means the mutation rolled back and the caller may retry
	// the same action; 502 distinguishes it from caller mistakes
	var we *model.WriteError
	if errors.As(err, &we) {
		return &httpError{http.StatusBadGateway, APIError{CodeWriteFailed, "Write failed and was rolled back; retry the action"}}
	}

	switch {
	case errors.Is(err, model.ErrRoomNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeRoomNotFound, "Room not found"}}
	case errors.Is(err, model.ErrRoomEnded):
		return &httpError{http.StatusGone, APIError{CodeRoomEnded, "Room has ended"}}
	case errors.Is(err, model.ErrRoomFull):
		return &httpError{http.StatusConflict, APIError{CodeRoomFull, "Room is full"}}
	case errors.Is(err, model.ErrParticipantNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeParticipantNotFound, "Participant not found"}}
	case errors.Is(err, model.ErrNotPlayer):
		return &httpError{http.StatusForbidden, APIError{CodeNotPlayer, "Only players can perform this action"}}
	case errors.Is(err, model.ErrNoBaseStake):
		return &httpError{http.StatusConflict, APIError{CodeNoBaseStake, "Set a base stake before applying actions"}}
	case errors.Is(err, model.ErrNothingToUndo):
		return &httpError{http.StatusConflict, APIError{CodeNothingToUndo, "Nothing to undo"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "X-Identity header required"}}
}

// NewNotBankerError creates a forbidden error for banker-only operations
func NewNotBankerError() error {
	return &httpError{http.StatusForbidden, APIError{CodeNotBanker, "Only the banker can perform this action"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
