package model

import "time"

// RoomCode is a short human-shareable identifier for joining rooms
type RoomCode string

// RoomStatus represents the lifecycle state of a room
type RoomStatus string

const (
	RoomStatusActive RoomStatus = "active"
	RoomStatusEnded  RoomStatus = "ended" // terminal
)

// MaxPlayers is the maximum number of non-banker participants in a room
const MaxPlayers = 15

// Room is a bounded multiplayer session created by exactly one banker.
// Codes are drawn from a random 4-6 digit space and are not deduplicated;
// collisions are an accepted risk of the short, shareable code format.
type Room struct {
	Code           RoomCode
	BankerIdentity Identity
	Status         RoomStatus
	CreatedAt      time.Time
}

// IsActive reports whether the room can still be joined and played in
func (r *Room) IsActive() bool {
	return r.Status == RoomStatusActive
}
