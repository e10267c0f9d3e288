package ledger

import (
	"context"

	"github.com/kpane/banktally/internal/model"
)

// mutation is one optimistic ledger operation. It captures a snapshot of
// the local record, applies the change locally, attempts the remote
// persist, and then either commits (keeps the new state, emits a change
// event) or rolls back to the snapshot.
//
// This is the central consistency guarantee of the ledger: local state
// never diverges permanently from the backing store on a failed write.
type mutation struct {
	// op names the operation for error reporting
	op string
	// apply performs the optimistic local change
	apply func(p *model.Participant)
}

// run executes the mutation against the session. Caller must hold the
// session mutex.
func (m mutation) run(ctx context.Context, s *Session) error {
	snapshot := s.local

	updated := s.local.Clone()
	m.apply(updated)
	updated.UpdatedAt = s.clock.Now()
	s.local = updated

	if err := s.storage.SaveParticipant(ctx, updated); err != nil {
		// Rollback: restore pre-mutation values exactly
		s.local = snapshot
		return &model.WriteError{Op: m.op, Err: err}
	}

	s.publishChange(ctx)
	return nil
}
