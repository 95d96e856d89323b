package handlers

import (
	"github.com/geodetect/geodetect/internal/protocol"
	"github.com/geodetect/geodetect/internal/protocol/codec"
	"github.com/geodetect/geodetect/internal/server/types"
)

// handleStartGame 处理开始游戏
func (h *Handler) handleStartGame(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.StartGamePayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	h.server.GetRoomManager().StartGame(client, payload.RoomCode)
}

// handlePlayerGuess 处理猜测提交
func (h *Handler) handlePlayerGuess(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.PlayerGuessPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	h.server.GetRoomManager().HandleGuess(client, payload.RoomCode, payload.Guess)
}
