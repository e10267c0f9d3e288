package syncer

import (
	"github.com/shopspring/decimal"

	"github.com/kpane/banktally/internal/model"
)

// Aggregate is the banker's derived view of a room. It is recomputed from
// a full participant fetch on every change notification and never stored:
// the banker's net is always the arithmetic negation of the players' total,
// which eliminates any write race on an aggregate record.
type Aggregate struct {
	PlayerCount int
	BankerNet   decimal.Decimal
}

// Snapshot pairs a fetched participant set with its computed aggregate
type Snapshot struct {
	Participants []*model.Participant
	Aggregate    Aggregate
}

// ComputeAggregate derives the banker aggregate from a participant set.
// Pure function of its input, so it is testable without a live
// subscription.
func ComputeAggregate(participants []*model.Participant) Aggregate {
	agg := Aggregate{BankerNet: decimal.Zero}
	sum := decimal.Zero
	for _, p := range participants {
		if p.Role != model.RolePlayer {
			continue
		}
		agg.PlayerCount++
		sum = sum.Add(p.CurrentNet)
	}
	agg.BankerNet = sum.Neg()
	return agg
}
