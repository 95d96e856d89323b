package handlers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/geodetect/geodetect/internal/geo"
	"github.com/geodetect/geodetect/internal/protocol"
	"github.com/geodetect/geodetect/internal/protocol/codec"
	"github.com/geodetect/geodetect/internal/server/storage"
	"github.com/geodetect/geodetect/internal/server/types"
	"github.com/geodetect/geodetect/internal/testutil"
)

func TestHandler_HandlePing(t *testing.T) {
	mockServer := new(testutil.MockServer)
	mockClient := new(testutil.MockClient)
	h := NewHandler(mockServer)

	mockClient.On("SendMessage", mock.MatchedBy(func(msg *protocol.Message) bool {
		if msg.Type != protocol.MsgPong {
			return false
		}
		payload, err := codec.ParsePayload[protocol.PongPayload](msg)
		return err == nil && payload.ClientTimestamp == 12345 && payload.ServerTimestamp > 0
	})).Return()

	msg := codec.MustNewMessage(protocol.MsgPing, protocol.PingPayload{Timestamp: 12345})
	h.Handle(mockClient, msg)

	mockClient.AssertExpectations(t)
}

func TestHandler_UnknownMessageType(t *testing.T) {
	mockServer := new(testutil.MockServer)
	mockClient := new(testutil.MockClient)
	h := NewHandler(mockServer)

	mockClient.On("GetID").Return("p1")
	mockClient.On("GetName").Return("Player1")
	mockClient.On("SendMessage", mock.MatchedBy(func(msg *protocol.Message) bool {
		if msg.Type != protocol.MsgError {
			return false
		}
		payload, err := codec.ParsePayload[protocol.ErrorPayload](msg)
		return err == nil && payload.Code == protocol.ErrCodeInvalidMsg
	})).Return()

	h.Handle(mockClient, &protocol.Message{Type: "no_such_type"})

	mockClient.AssertExpectations(t)
}

func TestHandler_HandleMessage_InvalidJSON(t *testing.T) {
	mockServer := new(testutil.MockServer)
	mockClient := new(testutil.MockClient)
	h := NewHandler(mockServer)

	mockClient.On("GetName").Return("Player1")
	mockClient.On("SendMessage", mock.MatchedBy(func(msg *protocol.Message) bool {
		return msg.Type == protocol.MsgError
	})).Return()

	h.HandleMessage(mockClient, []byte("{not json"))

	mockClient.AssertExpectations(t)
}

func TestHandler_HandleCreateRoom(t *testing.T) {
	mockServer := new(testutil.MockServer)
	mockClient := new(testutil.MockClient)
	mockRM := new(testutil.MockRoomManager)
	h := NewHandler(mockServer)

	mockServer.On("GetRoomManager").Return(mockRM)
	mockClient.On("GetName").Return("Player1")
	mockRM.On("CreateRoom", mockClient, mock.Anything, mock.Anything).Return("A1B2C3", nil)

	mockClient.On("SendMessage", mock.MatchedBy(func(msg *protocol.Message) bool {
		if msg.Type != protocol.MsgRoomCreated {
			return false
		}
		payload, err := codec.ParsePayload[protocol.RoomCreatedPayload](msg)
		return err == nil && payload.RoomCode == "A1B2C3"
	})).Return()

	msg := codec.MustNewMessage(protocol.MsgCreateRoom, protocol.CreateRoomPayload{
		Player: protocol.PlayerProfile{Username: "Alice"},
	})
	h.Handle(mockClient, msg)

	mockClient.AssertExpectations(t)
	mockRM.AssertExpectations(t)
}

func TestHandler_HandleJoinRoom_RoomFull(t *testing.T) {
	mockServer := new(testutil.MockServer)
	mockClient := new(testutil.MockClient)
	mockRM := new(testutil.MockRoomManager)
	h := NewHandler(mockServer)

	mockServer.On("GetRoomManager").Return(mockRM)
	mockRM.On("JoinRoom", mockClient, "A1B2C3", mock.Anything).
		Return(&types.RoomError{Code: protocol.ErrCodeRoomFull, Message: protocol.ErrorMessages[protocol.ErrCodeRoomFull]})

	mockClient.On("SendMessage", mock.MatchedBy(func(msg *protocol.Message) bool {
		if msg.Type != protocol.MsgError {
			return false
		}
		payload, err := codec.ParsePayload[protocol.ErrorPayload](msg)
		return err == nil && payload.Code == protocol.ErrCodeRoomFull
	})).Return()

	msg := codec.MustNewMessage(protocol.MsgJoinRoom, protocol.JoinRoomPayload{RoomCode: "A1B2C3"})
	h.Handle(mockClient, msg)

	mockClient.AssertExpectations(t)
	mockRM.AssertExpectations(t)
}

func TestHandler_HandlePlayerGuess(t *testing.T) {
	mockServer := new(testutil.MockServer)
	mockClient := new(testutil.MockClient)
	mockRM := new(testutil.MockRoomManager)
	h := NewHandler(mockServer)

	mockServer.On("GetRoomManager").Return(mockRM)
	mockRM.On("HandleGuess", mockClient, "A1B2C3", mock.MatchedBy(func(guess geo.Coordinate) bool {
		return guess.Lat == 41.0 && guess.Lng == 28.9
	})).Return()

	msg := codec.MustNewMessage(protocol.MsgPlayerGuess, protocol.PlayerGuessPayload{
		RoomCode: "A1B2C3",
		Guess:    geo.Coordinate{Lat: 41.0, Lng: 28.9},
	})
	h.Handle(mockClient, msg)

	mockRM.AssertExpectations(t)
}

func TestHandler_HandleGetStats(t *testing.T) {
	mockServer := new(testutil.MockServer)
	mockClient := new(testutil.MockClient)
	mockLB := new(testutil.MockLeaderboard)
	h := NewHandler(mockServer)

	stats := &storage.PlayerStats{
		PlayerID:    "p1",
		Username:    "Alice",
		TotalGames:  10,
		Wins:        4,
		TotalPoints: 32000,
		BestGame:    9800,
	}

	mockServer.On("GetLeaderboard").Return(mockLB)
	mockClient.On("GetID").Return("p1")
	mockClient.On("GetName").Return("Alice")
	mockLB.On("GetPlayerStats", mock.Anything, "p1").Return(stats, nil)
	mockLB.On("GetPlayerRank", mock.Anything, "p1").Return(int64(3), nil)

	mockClient.On("SendMessage", mock.MatchedBy(func(msg *protocol.Message) bool {
		if msg.Type != protocol.MsgStats {
			return false
		}
		payload, err := codec.ParsePayload[protocol.StatsPayload](msg)
		return err == nil &&
			payload.TotalGames == 10 &&
			payload.Wins == 4 &&
			payload.BestGame == 9800 &&
			payload.Rank == 3
	})).Return()

	h.handleGetStats(mockClient)

	mockClient.AssertExpectations(t)
	mockLB.AssertExpectations(t)
}

func TestHandler_HandleGetStats_NoHistory(t *testing.T) {
	mockServer := new(testutil.MockServer)
	mockClient := new(testutil.MockClient)
	mockLB := new(testutil.MockLeaderboard)
	h := NewHandler(mockServer)

	mockServer.On("GetLeaderboard").Return(mockLB)
	mockClient.On("GetID").Return("p1")
	mockClient.On("GetName").Return("Alice")
	mockLB.On("GetPlayerStats", mock.Anything, "p1").Return(nil, nil)

	// 没有历史战绩时返回零值战绩，排名为 -1
	mockClient.On("SendMessage", mock.MatchedBy(func(msg *protocol.Message) bool {
		if msg.Type != protocol.MsgStats {
			return false
		}
		payload, err := codec.ParsePayload[protocol.StatsPayload](msg)
		return err == nil && payload.TotalGames == 0 && payload.Rank == -1
	})).Return()

	h.handleGetStats(mockClient)

	mockClient.AssertExpectations(t)
	mockLB.AssertExpectations(t)
}

func TestHandler_HandleGetLeaderboard(t *testing.T) {
	mockServer := new(testutil.MockServer)
	mockClient := new(testutil.MockClient)
	mockLB := new(testutil.MockLeaderboard)
	h := NewHandler(mockServer)

	entries := []protocol.LeaderboardEntry{
		{Rank: 1, PlayerID: "p1", Username: "Alice", TotalPoints: 50000, Wins: 9},
		{Rank: 2, PlayerID: "p2", Username: "Bob", TotalPoints: 42000, Wins: 5},
	}

	mockServer.On("GetLeaderboard").Return(mockLB)
	mockLB.On("GetLeaderboard", mock.Anything, 10).Return(entries, nil)

	mockClient.On("SendMessage", mock.MatchedBy(func(msg *protocol.Message) bool {
		if msg.Type != protocol.MsgLeaderboard {
			return false
		}
		payload, err := codec.ParsePayload[protocol.LeaderboardPayload](msg)
		return err == nil && len(payload.Entries) == 2 && payload.Entries[0].Username == "Alice"
	})).Return()

	// limit 为 0 时使用默认值 10
	msg := codec.MustNewMessage(protocol.MsgGetLeaderboard, protocol.GetLeaderboardPayload{Limit: 0})
	h.Handle(mockClient, msg)

	mockClient.AssertExpectations(t)
	mockLB.AssertExpectations(t)
}

func TestHandler_SendRoomError_Unknown(t *testing.T) {
	mockServer := new(testutil.MockServer)
	mockClient := new(testutil.MockClient)
	h := NewHandler(mockServer)

	mockClient.On("SendMessage", mock.MatchedBy(func(msg *protocol.Message) bool {
		payload, err := codec.ParsePayload[protocol.ErrorPayload](msg)
		return err == nil && payload.Code == protocol.ErrCodeUnknown
	})).Return()

	h.sendRoomError(mockClient, errors.New("boom"))

	mockClient.AssertExpectations(t)
}
