package catchup

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kpane/banktally/internal/dependencies/clock"
	"github.com/kpane/banktally/internal/model"
	"github.com/kpane/banktally/internal/realtime"
	"github.com/kpane/banktally/internal/services/ledger"
)

// MajorityRoundCount returns the most frequent round-history length among
// the room's players. Ties break toward the larger count, so a room split
// evenly between caught-up and behind players asks the stragglers to catch
// up rather than declaring the shorter history the norm.
func MajorityRoundCount(participants []*model.Participant) int {
	counts := make(map[int]int)
	for _, p := range participants {
		if p.Role != model.RolePlayer {
			continue
		}
		counts[p.RoundCount()]++
	}

	majority := 0
	best := 0
	for length, freq := range counts {
		if freq > best || (freq == best && length > majority) {
			best = freq
			majority = length
		}
	}
	return majority
}

// Proposal asks one player to insert tie rounds
type Proposal struct {
	Target  model.Identity
	Missing int
}

// Behind lists the players whose round count is strictly below the
// majority, with how many rounds each is missing.
func Behind(participants []*model.Participant) []Proposal {
	majority := MajorityRoundCount(participants)

	var proposals []Proposal
	for _, p := range participants {
		if p.Role != model.RolePlayer {
			continue
		}
		if n := p.RoundCount(); n < majority {
			proposals = append(proposals, Proposal{
				Target:  p.Identity,
				Missing: majority - n,
			})
		}
	}
	return proposals
}

// Proposer is the banker side of the catch-up protocol: it turns a
// divergence into a directed control message for the lagging player.
type Proposer struct {
	bus    realtime.Bus
	clock  clock.Clock
	logger *slog.Logger
}

// NewProposer creates a banker-side proposer
func NewProposer(bus realtime.Bus, clock clock.Clock, logger *slog.Logger) *Proposer {
	return &Proposer{
		bus:    bus,
		clock:  clock,
		logger: logger.With(slog.String("component", "catchup")),
	}
}

// Propose sends a catch-up request to one player. The player decides;
// nothing is mutated until they confirm.
func (p *Proposer) Propose(ctx context.Context, code model.RoomCode, target model.Identity, missing int) error {
	if missing <= 0 {
		return fmt.Errorf("missing count must be positive, got %d", missing)
	}

	msg := model.ControlMessage{
		Kind:           model.ControlCatchUp,
		RoomCode:       code,
		TargetIdentity: target,
		MissingCount:   missing,
		SentAt:         p.clock.Now(),
	}
	if err := p.bus.PublishControl(ctx, msg); err != nil {
		return fmt.Errorf("sending catch-up request: %w", err)
	}

	p.logger.Info("catch-up proposed",
		slog.String("room", string(code)),
		slog.String("target", string(target)),
		slog.Int("missing", missing))
	return nil
}

// Coordinator is the player side: it holds at most one pending catch-up
// request and drives the ledger's MassTie when the player confirms.
//
// Catch-up is a liveness aid, not a correctness path — nothing else
// depends on round counts being equal — so rejection simply clears the
// pending state with no ledger mutation.
type Coordinator struct {
	mu      sync.Mutex
	pending *model.ControlMessage

	session *ledger.Session
	logger  *slog.Logger
}

// NewCoordinator creates a player-side coordinator bound to the player's
// ledger session
func NewCoordinator(session *ledger.Session, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		session: session,
		logger:  logger.With(slog.String("component", "catchup")),
	}
}

// Offer presents a received control message. It enters the
// pending-confirmation state if the message is a catch-up request; a new
// request replaces any earlier unanswered one. Returns whether the message
// was accepted as pending.
func (c *Coordinator) Offer(msg model.ControlMessage) bool {
	if msg.Kind != model.ControlCatchUp || msg.MissingCount <= 0 {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = &msg
	return true
}

// Pending returns the pending request, if any
func (c *Coordinator) Pending() (model.ControlMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return model.ControlMessage{}, false
	}
	return *c.pending, true
}

// Confirm accepts the pending request: the ledger inserts the missing tie
// rounds. The pending state is cleared only when the insert persists, so a
// failed write leaves the request confirmable again.
func (c *Coordinator) Confirm(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == nil {
		return nil
	}

	if err := c.session.MassTie(ctx, c.pending.MissingCount); err != nil {
		return err
	}

	c.logger.Info("catch-up confirmed",
		slog.String("room", string(c.pending.RoomCode)),
		slog.Int("inserted", c.pending.MissingCount))
	c.pending = nil
	return nil
}

// Reject clears the pending request without touching the ledger
func (c *Coordinator) Reject() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = nil
}
