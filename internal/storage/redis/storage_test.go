package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/kpane/banktally/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.SessionTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) participant(id string, code model.RoomCode, role model.Role) *model.Participant {
	return &model.Participant{
		Identity:   model.Identity(id),
		RoomCode:   code,
		Role:       role,
		BaseStake:  decimal.NewFromInt(10),
		CurrentNet: decimal.NewFromInt(-20),
		LastDelta:  decimal.Zero,
		Rounds: []model.Round{
			{Multiplier: -2, Amount: decimal.NewFromInt(-20), Timestamp: time.Now().UTC()},
		},
	}
}

// Room tests

func (s *StorageSuite) TestSaveAndGetRoom() {
	room := &model.Room{
		Code:           "1234",
		BankerIdentity: "banker-1",
		Status:         model.RoomStatusActive,
		CreatedAt:      time.Now().UTC(),
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

func (s *StorageSuite) TestRoomTTL() {
	room := &model.Room{Code: "1234", Status: model.RoomStatusActive}
	_ = s.storage.SaveRoom(s.ctx, room)

	ttl := s.mini.TTL(roomKey(room.Code))
	s.True(ttl > 0, "Room should have TTL")
}

// Participant tests

func (s *StorageSuite) TestSaveAndGetParticipant() {
	p := s.participant("player-1", "1234", model.RolePlayer)

	err := s.storage.SaveParticipant(s.ctx, p)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetParticipant(s.ctx, "1234", "player-1")
	s.Require().NoError(err)
	s.Equal(p.Identity, retrieved.Identity)
	s.True(p.CurrentNet.Equal(retrieved.CurrentNet))
	s.Require().Len(retrieved.Rounds, 1)
	s.Equal(-2, retrieved.Rounds[0].Multiplier)
}

func (s *StorageSuite) TestGetParticipantNotFound() {
	_, err := s.storage.GetParticipant(s.ctx, "1234", "nonexistent")
	s.ErrorIs(err, model.ErrParticipantNotFound)
}

func (s *StorageSuite) TestDecimalsRoundTripExactly() {
	p := s.participant("player-1", "1234", model.RolePlayer)
	p.BaseStake = decimal.RequireFromString("2.50")
	p.CurrentNet = decimal.RequireFromString("-7.25")
	_ = s.storage.SaveParticipant(s.ctx, p)

	retrieved, err := s.storage.GetParticipant(s.ctx, "1234", "player-1")
	s.Require().NoError(err)
	s.True(retrieved.BaseStake.Equal(decimal.RequireFromString("2.50")))
	s.True(retrieved.CurrentNet.Equal(decimal.RequireFromString("-7.25")))
}

func (s *StorageSuite) TestParticipantTTL() {
	p := s.participant("player-1", "1234", model.RolePlayer)
	_ = s.storage.SaveParticipant(s.ctx, p)

	ttl := s.mini.TTL(participantKey("1234", "player-1"))
	s.True(ttl > 0, "Participant should have TTL")

	indexTTL := s.mini.TTL(participantsIndexKey("1234"))
	s.True(indexTTL > 0, "Participant index should have TTL")
}

func (s *StorageSuite) TestListParticipants() {
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

func (s *StorageSuite) TestListParticipantsSkipsExpiredRecords() {
	_ = s.storage.SaveParticipant(s.ctx, s.participant("a", "1234", model.RolePlayer))
	_ = s.storage.SaveParticipant(s.ctx, s.participant("b", "1234", model.RolePlayer))

	// Expire one record out from under the index
	s.mini.Del(participantKey("1234", "a"))

	participants, err := s.storage.ListParticipants(s.ctx, "1234")
	s.Require().NoError(err)
	s.Len(participants, 1)
	s.Equal(model.Identity("b"), participants[0].Identity)
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

func (s *StorageSuite) TestCountPlayersExcludesBanker() {
	_ = s.storage.SaveParticipant(s.ctx, s.participant("banker", "1234", model.RoleBanker))
	_ = s.storage.SaveParticipant(s.ctx, s.participant("a", "1234", model.RolePlayer))
	_ = s.storage.SaveParticipant(s.ctx, s.participant("b", "1234", model.RolePlayer))

	count, err := s.storage.CountPlayers(s.ctx, "1234")
	s.Require().NoError(err)
	s.Equal(2, count)
}
