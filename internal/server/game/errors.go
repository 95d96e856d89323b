package game

import (
	"github.com/geodetect/geodetect/internal/protocol"
	"github.com/geodetect/geodetect/internal/server/types"
)

// RoomError 房间错误类型别名
type RoomError = types.RoomError

// 房间操作错误
var (
	ErrRoomNotFound = &RoomError{Code: protocol.ErrCodeRoomNotFound, Message: "房间不存在"}
	ErrRoomFull     = &RoomError{Code: protocol.ErrCodeRoomFull, Message: "房间已满"}
	ErrGameStarted  = &RoomError{Code: protocol.ErrCodeGameStarted, Message: "游戏已经开始"}
)
