package types

import (
	"context"
	"time"

	"github.com/geodetect/geodetect/internal/geo"
	"github.com/geodetect/geodetect/internal/protocol"
)

// ServerContext 服务器上下文接口 - 避免循环依赖
type ServerContext interface {
	GetRoomManager() RoomManagerInterface
	GetLeaderboard() LeaderboardInterface
	GetLocator() Locator
	GetGeocoder() Geocoder
	GetGameConfig() GameConfigInterface
	IsMaintenanceMode() bool
	GetOnlineCount() int
}

// Locator 选点服务接口（外部协作方，可能失败或很慢）
type Locator interface {
	RandomLocation(ctx context.Context, region geo.Region) (geo.Coordinate, error)
}

// Geocoder 逆地理编码接口（外部协作方，对外绝不失败）
// coord 为 nil 时返回「未猜测」占位文本
type Geocoder interface {
	PlaceName(ctx context.Context, coord *geo.Coordinate) string
}

// RoomManagerInterface 房间管理器接口
type RoomManagerInterface interface {
	CreateRoom(client ClientInterface, patch protocol.SettingsPatch, profile protocol.PlayerProfile) (string, error)
	JoinRoom(client ClientInterface, code string, profile protocol.PlayerProfile) error
	Leave(client ClientInterface)
	UpdateSettings(client ClientInterface, code string, patch protocol.SettingsPatch)
	StartGame(client ClientInterface, code string)
	HandleGuess(client ClientInterface, code string, guess geo.Coordinate)
	GetActiveGamesCount() int
	Shutdown()
}

// LeaderboardInterface 排行榜接口
type LeaderboardInterface interface {
	RecordGameResult(ctx context.Context, playerID, username string, points int, won bool) error
	GetPlayerStats(ctx context.Context, playerID string) (any, error)
	GetPlayerRank(ctx context.Context, playerID string) (int64, error)
	GetLeaderboard(ctx context.Context, limit int) ([]protocol.LeaderboardEntry, error)
}

// GameConfigInterface 游戏时序配置接口
type GameConfigInterface interface {
	ResultDelayDuration() time.Duration
	CleanupDelayDuration() time.Duration
	LocateTimeoutDuration() time.Duration
}

// ClientInterface 客户端接口
type ClientInterface interface {
	GetID() string
	GetName() string
	GetRoom() string
	SetRoom(roomCode string)
	SendMessage(msg *protocol.Message)
	Close()
}

// RoomError 房间错误
type RoomError struct {
	Code    int
	Message string
}

func (e *RoomError) Error() string {
	return e.Message
}
