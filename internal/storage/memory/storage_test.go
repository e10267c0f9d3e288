package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/kpane/banktally/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func (s *StorageSuite) participant(id string, code model.RoomCode, role model.Role) *model.Participant {
	return &model.Participant{
		Identity:   model.Identity(id),
		RoomCode:   code,
		Role:       role,
		BaseStake:  decimal.NewFromInt(10),
		CurrentNet: decimal.Zero,
		LastDelta:  decimal.Zero,
		Rounds:     []model.Round{},
		UpdatedAt:  time.Now(),
	}
}

// Room tests

func (s *StorageSuite) TestSaveAndGetRoom() {
	room := &model.Room{
		Code:           "1234",
		BankerIdentity: "banker-1",
		Status:         model.RoomStatusActive,
		CreatedAt:      time.Now(),
	}

	err := s.storage.SaveRoom(s.ctx, room)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetRoom(s.ctx, "1234")
	s.Require().NoError(err)
	s.Equal(room.Code, retrieved.Code)
	s.Equal(room.BankerIdentity, retrieved.BankerIdentity)
	s.Equal(room.Status, retrieved.Status)
}

func (s *StorageSuite) TestGetRoomNotFound() {
	_, err := s.storage.GetRoom(s.ctx, "0000")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestSaveRoomOverwrites() {
	room := &model.Room{Code: "1234", Status: model.RoomStatusActive}
	_ = s.storage.SaveRoom(s.ctx, room)

	room.Status = model.RoomStatusEnded
	_ = s.storage.SaveRoom(s.ctx, room)

	retrieved, err := s.storage.GetRoom(s.ctx, "1234")
	s.Require().NoError(err)
	s.Equal(model.RoomStatusEnded, retrieved.Status)
}

func (s *StorageSuite) TestGetRoomReturnsCopy() {
	room := &model.Room{Code: "1234", Status: model.RoomStatusActive}
	_ = s.storage.SaveRoom(s.ctx, room)

	retrieved, _ := s.storage.GetRoom(s.ctx, "1234")
	retrieved.Status = model.RoomStatusEnded

	again, _ := s.storage.GetRoom(s.ctx, "1234")
	s.Equal(model.RoomStatusActive, again.Status)
}

// Participant tests

func (s *StorageSuite) TestSaveAndGetParticipant() {
	p := s.participant("player-1", "1234", model.RolePlayer)

	err := s.storage.SaveParticipant(s.ctx, p)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetParticipant(s.ctx, "1234", "player-1")
	s.Require().NoError(err)
	s.Equal(p.Identity, retrieved.Identity)
	s.Equal(p.Role, retrieved.Role)
	s.True(p.BaseStake.Equal(retrieved.BaseStake))
}

func (s *StorageSuite) TestGetParticipantNotFound() {
	_, err := s.storage.GetParticipant(s.ctx, "1234", "nonexistent")
	s.ErrorIs(err, model.ErrParticipantNotFound)
}

func (s *StorageSuite) TestParticipantKeyedByRoomAndIdentity() {
	_ = s.storage.SaveParticipant(s.ctx, s.participant("player-1", "1234", model.RolePlayer))

	// Same identity in a different room is a distinct record
	_, err := s.storage.GetParticipant(s.ctx, "5678", "player-1")
	s.ErrorIs(err, model.ErrParticipantNotFound)
}

func (s *StorageSuite) TestSaveParticipantUpserts() {
	p := s.participant("player-1", "1234", model.RolePlayer)
	_ = s.storage.SaveParticipant(s.ctx, p)

	p.CurrentNet = decimal.NewFromInt(50)
	_ = s.storage.SaveParticipant(s.ctx, p)

	retrieved, err := s.storage.GetParticipant(s.ctx, "1234", "player-1")
	s.Require().NoError(err)
	s.True(retrieved.CurrentNet.Equal(decimal.NewFromInt(50)))

	participants, _ := s.storage.ListParticipants(s.ctx, "1234")
	s.Len(participants, 1)
}

func (s *StorageSuite) TestGetParticipantReturnsCopy() {
	p := s.participant("player-1", "1234", model.RolePlayer)
	p.Rounds = []model.Round{{Multiplier: 1, Amount: decimal.NewFromInt(10)}}
	_ = s.storage.SaveParticipant(s.ctx, p)

	retrieved, _ := s.storage.GetParticipant(s.ctx, "1234", "player-1")
	retrieved.Rounds[0].Multiplier = 99

	again, _ := s.storage.GetParticipant(s.ctx, "1234", "player-1")
	s.Equal(1, again.Rounds[0].Multiplier)
}

func (s *StorageSuite) TestListParticipantsFiltersByRoom() {
	_ = s.storage.SaveParticipant(s.ctx, s.participant("a", "1234", model.RolePlayer))
	_ = s.storage.SaveParticipant(s.ctx, s.participant("b", "1234", model.RolePlayer))
	_ = s.storage.SaveParticipant(s.ctx, s.participant("c", "5678", model.RolePlayer))

	participants, err := s.storage.ListParticipants(s.ctx, "1234")
	s.Require().NoError(err)
	s.Len(participants, 2)
}

func (s *StorageSuite) TestListParticipantsEmptyRoom() {
	participants, err := s.storage.ListParticipants(s.ctx, "1234")
	s.Require().NoError(err)
	s.Empty(participants)
}

func (s *StorageSuite) TestCountPlayersExcludesBanker() {
	_ = s.storage.SaveParticipant(s.ctx, s.participant("banker", "1234", model.RoleBanker))
	_ = s.storage.SaveParticipant(s.ctx, s.participant("a", "1234", model.RolePlayer))
	_ = s.storage.SaveParticipant(s.ctx, s.participant("b", "1234", model.RolePlayer))

	count, err := s.storage.CountPlayers(s.ctx, "1234")
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *StorageSuite) TestCountPlayersEmptyRoom() {
	count, err := s.storage.CountPlayers(s.ctx, "1234")
	s.Require().NoError(err)
	s.Equal(0, count)
}
