package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role distinguishes the room-creating banker from ordinary players.
// A participant's role is assigned once at join time and never changes
// for the lifetime of their membership in the room.
type Role string

const (
	RoleBanker Role = "banker"
	RolePlayer Role = "player"
)

// Round is a single applied action in a participant's history.
// A multiplier of 0 with a zero amount is a catch-up tie round.
type Round struct {
	Multiplier int             `json:"multiplier"`
	Amount     decimal.Decimal `json:"amount"`
	Timestamp  time.Time       `json:"timestamp"`
}

// Participant is the per-(identity, room) ledger record. There is exactly
// one record per pair; rejoining a room reuses the existing record.
//
// CurrentNet is the authoritative running total and is updated together
// with Rounds, never derived by replaying them. LastDelta caches the most
// recent mutation to support exactly one level of undo.
type Participant struct {
	Identity    Identity        `json:"identity"`
	RoomCode    RoomCode        `json:"room_code"`
	Role        Role            `json:"role"`
	BaseStake   decimal.Decimal `json:"base_stake"`
	CurrentNet  decimal.Decimal `json:"current_net"`
	LastDelta   decimal.Decimal `json:"last_delta"`
	Rounds      []Round         `json:"rounds"` // most recent first
	DisplayName string          `json:"display_name"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// RoundCount returns the length of the participant's round history
func (p *Participant) RoundCount() int {
	return len(p.Rounds)
}

// Clone returns a deep copy of the participant.
// Decimal values are immutable, so only the round slice needs copying.
func (p *Participant) Clone() *Participant {
	cp := *p
	cp.Rounds = make([]Round, len(p.Rounds))
	copy(cp.Rounds, p.Rounds)
	return &cp
}
