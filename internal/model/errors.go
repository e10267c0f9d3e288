package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Room errors
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomEnded    = errors.New("room has ended")
	ErrRoomFull     = errors.New("room is full")

	// Participant errors
	ErrParticipantNotFound = errors.New("participant not found")
	ErrNotPlayer           = errors.New("only players can perform this action")
	ErrNoBaseStake         = errors.New("base stake must be set before applying actions")
	ErrNothingToUndo       = errors.New("no action to undo")
)

// WriteError wraps a failed remote persistence call during an optimistic
// mutation. The mutation has already been rolled back locally by the time
// the caller sees this; retrying is a user-initiated repeat of the action.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write failed during %s: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// IsWriteError reports whether err is a WriteError
func IsWriteError(err error) bool {
	var we *WriteError
	return errors.As(err, &we)
}
