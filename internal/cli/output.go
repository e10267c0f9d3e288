package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Room:
		o.printRoom(v)
	case RoomState:
		o.printRoomState(v)
	case Participant:
		o.printParticipant(v)
	case JoinResult:
		o.printJoinResult(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Room response type (matches API)
type Room struct {
	Code           string    `json:"code"`
	BankerIdentity string    `json:"banker_identity"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// Round response type
type Round struct {
	Multiplier int       `json:"multiplier"`
	Amount     string    `json:"amount"`
	Timestamp  time.Time `json:"timestamp"`
}

// Participant response type
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

// JoinResult response type
type JoinResult struct {
	Role        string      `json:"role"`
	Rejoined    bool        `json:"rejoined"`
	Participant Participant `json:"participant"`
}

// Aggregate response type
type Aggregate struct {
	PlayerCount    int    `json:"player_count"`
	BankerNet      string `json:"banker_net"`
	MajorityRounds int    `json:"majority_rounds"`
}

// RoomState response type
type RoomState struct {
	Room         Room          `json:"room"`
	Participants []Participant `json:"participants"`
	Aggregate    Aggregate     `json:"aggregate"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printRoom(r Room) {
	fmt.Printf("Room: %s\n", r.Code)
	fmt.Printf("Status: %s\n", r.Status)
	fmt.Printf("Banker: %s\n", r.BankerIdentity)
	fmt.Printf("Created: %s\n", r.CreatedAt.Format(time.RFC3339))
}

func (o *Output) printRoomState(s RoomState) {
	o.printRoom(s.Room)
	fmt.Printf("Players: %d\n", s.Aggregate.PlayerCount)
	fmt.Printf("Banker Net: %s\n", s.Aggregate.BankerNet)
	fmt.Printf("Rounds Played: %d\n", s.Aggregate.MajorityRounds)
	fmt.Printf("Participants (%d):\n", len(s.Participants))
	for _, p := range s.Participants {
		name := p.DisplayName
		if name == "" {
			name = p.Identity
		}
		fmt.Printf("  - %s [%s] net %s (base %s, %d rounds)\n",
			name, p.Role, p.CurrentNet, p.BaseStake, len(p.Rounds))
	}
}

func (o *Output) printParticipant(p Participant) {
	name := p.DisplayName
	if name == "" {
		name = p.Identity
	}
	fmt.Printf("Participant: %s (%s)\n", name, p.Identity)
	fmt.Printf("Room: %s\n", p.RoomCode)
	fmt.Printf("Role: %s\n", p.Role)
	fmt.Printf("Base Stake: %s\n", p.BaseStake)
	fmt.Printf("Current Net: %s\n", p.CurrentNet)
	fmt.Printf("Last Delta: %s\n", p.LastDelta)
	if len(p.Rounds) > 0 {
		fmt.Printf("Rounds (%d, most recent first):\n", len(p.Rounds))
		for _, r := range p.Rounds {
			fmt.Printf("  - x%d -> %s at %s\n",
				r.Multiplier, r.Amount, r.Timestamp.Format("15:04:05"))
		}
	}
}

func (o *Output) printJoinResult(j JoinResult) {
	if j.Rejoined {
		fmt.Printf("Rejoined room %s as %s\n", j.Participant.RoomCode, j.Role)
	} else {
		fmt.Printf("Joined room %s as %s\n", j.Participant.RoomCode, j.Role)
	}
	o.printParticipant(j.Participant)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
