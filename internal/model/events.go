package model

import "time"

// ChangeEvent notifies subscribers that a participant record in a room
// has changed. It deliberately carries no record data: consumers re-fetch
// the full participant set and recompute, so ordering and duplication of
// notifications cannot affect correctness.
type ChangeEvent struct {
	RoomCode  RoomCode  `json:"room_code"`
	Identity  Identity  `json:"identity"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ControlKind identifies the type of a directed control message
type ControlKind string

const (
	// ControlCatchUp asks a player to insert neutral tie rounds to bring
	// their round count up to the room majority.
	ControlCatchUp ControlKind = "catch_up"
)

// ControlMessage is an application-level message broadcast to a room but
// addressed to a single participant. Non-addressed subscribers ignore it.
type ControlMessage struct {
	Kind           ControlKind `json:"kind"`
	RoomCode       RoomCode    `json:"room_code"`
	TargetIdentity Identity    `json:"target_identity"`
	MissingCount   int         `json:"missing_count"`
	SentAt         time.Time   `json:"sent_at"`
}
