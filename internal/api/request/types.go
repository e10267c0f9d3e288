package request

// CreateRoomRequest is the request body for creating a room
type CreateRoomRequest struct {
	DisplayName string `json:"display_name,omitempty"`
}

// JoinRoomRequest is the request body for joining a room
type JoinRoomRequest struct {
	DisplayName string `json:"display_name,omitempty"`
}

// SetBaseRequest is the request body for setting a base stake.
// Amounts cross the wire as decimal strings.
type SetBaseRequest struct {
	Amount string `json:"amount"`
}

// ApplyActionRequest is the request body for applying a multiplier action
type ApplyActionRequest struct {
	Multiplier int `json:"multiplier"`
}

// MassTieRequest is the request body for inserting catch-up tie rounds
type MassTieRequest struct {
	Count int `json:"count"`
}

// ProposeCatchUpRequest is the request body for a banker's catch-up proposal
type ProposeCatchUpRequest struct {
	TargetIdentity string `json:"target_identity"`
	MissingCount   int    `json:"missing_count"`
}
