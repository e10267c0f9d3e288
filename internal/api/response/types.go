package response

import (
	"time"

	"github.com/kpane/banktally/internal/model"
	"github.com/kpane/banktally/internal/services/syncer"
)

// Room represents a room in API responses
type Room struct {
	Code           string    `json:"code"`
	BankerIdentity string    `json:"banker_identity"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// RoomFromModel converts a model.Room to a response Room
func RoomFromModel(r *model.Room) Room {
	return Room{
		Code:           string(r.Code),
		BankerIdentity: string(r.BankerIdentity),
		Status:         string(r.Status),
		CreatedAt:      r.CreatedAt,
	}
}

// Round represents one history entry. Amounts are decimal strings.
type Round struct {
	Multiplier int       `json:"multiplier"`
	Amount     string    `json:"amount"`
	Timestamp  time.Time `json:"timestamp"`
}

// Participant represents a participant record in API responses
type Participant struct {
	Identity    string    `json:"identity"`
	RoomCode    string    `json:"room_code"`
	Role        string    `json:"role"`
	DisplayName string    `json:"display_name"`
	BaseStake   string    `json:"base_stake"`
	CurrentNet  string    `json:"current_net"`
	LastDelta   string    `json:"last_delta"`
	Rounds      []Round   `json:"rounds"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ParticipantFromModel converts a model.Participant
func ParticipantFromModel(p *model.Participant) Participant {
	rounds := make([]Round, len(p.Rounds))
	for i, r := range p.Rounds {
		rounds[i] = Round{
			Multiplier: r.Multiplier,
			Amount:     r.Amount.String(),
			Timestamp:  r.Timestamp,
		}
	}
	return Participant{
		Identity:    string(p.Identity),
		RoomCode:    string(p.RoomCode),
		Role:        string(p.Role),
		DisplayName: p.DisplayName,
		BaseStake:   p.BaseStake.String(),
		CurrentNet:  p.CurrentNet.String(),
		LastDelta:   p.LastDelta.String(),
		Rounds:      rounds,
		UpdatedAt:   p.UpdatedAt,
	}
}

// JoinResult is the response for join operations
type JoinResult struct {
	Role        string      `json:"role"`
	Rejoined    bool        `json:"rejoined"`
	Participant Participant `json:"participant"`
}

// Aggregate is the banker's derived room view
type Aggregate struct {
	PlayerCount    int    `json:"player_count"`
	BankerNet      string `json:"banker_net"`
	MajorityRounds int    `json:"majority_rounds"`
}

// RoomState is the full room view: the room, its participants, and the
// derived aggregate
type RoomState struct {
	Room         Room          `json:"room"`
	Participants []Participant `json:"participants"`
	Aggregate    Aggregate     `json:"aggregate"`
}

// RoomStateFrom assembles a RoomState from fetched records
func RoomStateFrom(room *model.Room, participants []*model.Participant, agg syncer.Aggregate, majorityRounds int) RoomState {
	ps := make([]Participant, len(participants))
	for i, p := range participants {
		ps[i] = ParticipantFromModel(p)
	}
	return RoomState{
		Room:         RoomFromModel(room),
		Participants: ps,
		Aggregate: Aggregate{
			PlayerCount:    agg.PlayerCount,
			BankerNet:      agg.BankerNet.String(),
			MajorityRounds: majorityRounds,
		},
	}
}
