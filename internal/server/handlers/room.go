package handlers

import (
	"errors"
	"log"

	"github.com/geodetect/geodetect/internal/protocol"
	"github.com/geodetect/geodetect/internal/protocol/codec"
	"github.com/geodetect/geodetect/internal/server/types"
)

// handleCreateRoom 处理创建房间
func (h *Handler) handleCreateRoom(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.CreateRoomPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	code, err := h.server.GetRoomManager().CreateRoom(client, payload.Settings, payload.Player)
	if err != nil {
		h.sendRoomError(client, err)
		return
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomCreated, protocol.RoomCreatedPayload{
		RoomCode: code,
	}))
	log.Printf("🏠 玩家 %s 创建房间 %s", client.GetName(), code)
}

// handleJoinRoom 处理加入房间
func (h *Handler) handleJoinRoom(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.JoinRoomPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if err := h.server.GetRoomManager().JoinRoom(client, payload.RoomCode, payload.Player); err != nil {
		h.sendRoomError(client, err)
		return
	}
	log.Printf("🚪 玩家 %s 加入房间 %s", client.GetName(), payload.RoomCode)
}

// handleLeaveRoom 处理离开房间
func (h *Handler) handleLeaveRoom(client types.ClientInterface) {
	h.server.GetRoomManager().Leave(client)
}

// handleUpdateSettings 处理修改房间设置
func (h *Handler) handleUpdateSettings(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.UpdateSettingsPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	h.server.GetRoomManager().UpdateSettings(client, payload.RoomCode, payload.Settings)
}

// sendRoomError 将房间错误转换为错误消息发送给客户端
func (h *Handler) sendRoomError(client types.ClientInterface, err error) {
	var roomErr *types.RoomError
	if errors.As(err, &roomErr) {
		client.SendMessage(codec.NewErrorMessageWithText(roomErr.Code, roomErr.Message))
		return
	}
	client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeUnknown))
}
