package solo

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/kpane/banktally/internal/localstore"
	"github.com/kpane/banktally/internal/testutil"
)

type SessionSuite struct {
	suite.Suite
	store   *localstore.MemoryStore
	session *Session
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) SetupTest() {
	s.store = localstore.NewMemoryStore()
	s.session = New(s.store, testutil.NopLogger())
}

func (s *SessionSuite) TestStartsZeroed() {
	state := s.session.State()
	s.True(state.BaseStake.IsZero())
	s.True(state.CurrentNet.IsZero())
	s.True(state.LastDelta.IsZero())
}

func (s *SessionSuite) TestSetBase() {
	s.session.SetBase(decimal.NewFromInt(10))
	s.True(s.session.State().BaseStake.Equal(decimal.NewFromInt(10)))
}

func (s *SessionSuite) TestApplyAction() {
	s.session.SetBase(decimal.NewFromInt(10))
	s.session.ApplyAction(3)

	state := s.session.State()
	s.True(state.CurrentNet.Equal(decimal.NewFromInt(30)))
	s.True(state.LastDelta.Equal(decimal.NewFromInt(30)))
}

func (s *SessionSuite) TestApplyActionNegativeMultiplier() {
	s.session.SetBase(decimal.NewFromInt(10))
	s.session.ApplyAction(-2)

	s.True(s.session.State().CurrentNet.Equal(decimal.NewFromInt(-20)))
}

func (s *SessionSuite) TestApplyActionNoOpWithoutBase() {
	s.session.ApplyAction(3)
	s.True(s.session.State().CurrentNet.IsZero())
}

func (s *SessionSuite) TestApplyActionNoOpWithNegativeBase() {
	s.session.SetBase(decimal.NewFromInt(-5))
	s.session.ApplyAction(3)
	s.True(s.session.State().CurrentNet.IsZero())
}

func (s *SessionSuite) TestUndoReversesLastAction() {
	s.session.SetBase(decimal.NewFromInt(10))
	s.session.ApplyAction(2)
	s.session.Undo()

	state := s.session.State()
	s.True(state.CurrentNet.IsZero())
	s.True(state.LastDelta.IsZero())
}

func (s *SessionSuite) TestUndoDepthIsStrictlyOne() {
	s.session.SetBase(decimal.NewFromInt(10))
	s.session.ApplyAction(2)
	s.session.ApplyAction(3)

	s.session.Undo()
	s.session.Undo() // no-op

	s.True(s.session.State().CurrentNet.Equal(decimal.NewFromInt(20)))
}

func (s *SessionSuite) TestUndoNoOpWithoutAction() {
	s.session.Undo()
	s.True(s.session.State().CurrentNet.IsZero())
}

func (s *SessionSuite) TestStatePersistsAcrossSessions() {
	s.session.SetBase(decimal.NewFromInt(10))
	s.session.ApplyAction(2)

	restored := New(s.store, testutil.NopLogger())
	s.Require().NoError(restored.Load())

	state := restored.State()
	s.True(state.BaseStake.Equal(decimal.NewFromInt(10)))
	s.True(state.CurrentNet.Equal(decimal.NewFromInt(20)))
	s.True(state.LastDelta.Equal(decimal.NewFromInt(20)))
}

func (s *SessionSuite) TestLoadWithNoSavedStateIsNoOp() {
	fresh := New(localstore.NewMemoryStore(), testutil.NopLogger())
	s.Require().NoError(fresh.Load())
	s.True(fresh.State().CurrentNet.IsZero())
}

func (s *SessionSuite) TestExitClearsStateAndStore() {
	s.session.SetBase(decimal.NewFromInt(10))
	s.session.ApplyAction(2)

	s.session.Exit()

	s.True(s.session.State().CurrentNet.IsZero())

	_, err := s.store.Get(localstore.KeySoloState)
	s.ErrorIs(err, localstore.ErrKeyNotFound)
}

func (s *SessionSuite) TestUndoSurvivesRestart() {
	s.session.SetBase(decimal.NewFromInt(10))
	s.session.ApplyAction(2)

	restored := New(s.store, testutil.NopLogger())
	s.Require().NoError(restored.Load())
	restored.Undo()

	s.True(restored.State().CurrentNet.IsZero())
}
