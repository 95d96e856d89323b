package protocol

import (
	"encoding/json"

	"github.com/geodetect/geodetect/internal/geo"
)

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 连接操作
	MsgPing MessageType = "ping" // 心跳 ping

	// 房间操作
	MsgCreateRoom     MessageType = "create_room"     // 创建房间
	MsgJoinRoom       MessageType = "join_room"       // 加入房间
	MsgLeaveRoom      MessageType = "leave_room"      // 离开房间
	MsgUpdateSettings MessageType = "update_settings" // 修改房间设置（仅房主）

	// 游戏操作
	MsgStartGame   MessageType = "start_game"   // 开始游戏（仅房主）
	MsgPlayerGuess MessageType = "player_guess" // 提交猜测坐标

	// 排行榜操作
	MsgGetStats       MessageType = "get_stats"       // 查询个人战绩
	MsgGetLeaderboard MessageType = "get_leaderboard" // 查询排行榜
)

// 服务端 → 客户端 消息类型
const (
	// 连接相关
	MsgConnected MessageType = "connected" // 连接成功
	MsgPong      MessageType = "pong"      // 心跳 pong

	// 房间相关
	MsgRoomCreated MessageType = "room_created" // 房间创建成功（仅发给创建者）
	MsgRoomUpdate  MessageType = "room_update"  // 房间状态快照

	// 游戏流程
	MsgGameLoading MessageType = "game_loading" // 正在加载地点
	MsgNewRound    MessageType = "new_round"    // 新回合开始
	MsgRoundResult MessageType = "round_result" // 回合结果
	MsgGameOver    MessageType = "game_over"    // 游戏结束

	// 排行榜
	MsgStats       MessageType = "stats"       // 个人战绩
	MsgLeaderboard MessageType = "leaderboard" // 排行榜

	// 错误
	MsgError MessageType = "error" // 错误消息
)

// --- 客户端请求 Payloads ---

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// PlayerProfile 客户端提供的玩家资料
type PlayerProfile struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

// SettingsPatch 部分设置更新，缺省字段保持原值
// 显式传 time_limit: 0 表示不限时
type SettingsPatch struct {
	Rounds    *int    `json:"rounds,omitempty"`
	TimeLimit *int    `json:"time_limit,omitempty"`
	GameMode  *string `json:"game_mode,omitempty"`
	Region    *string `json:"region,omitempty"`
}

// CreateRoomPayload 创建房间请求
type CreateRoomPayload struct {
	Settings SettingsPatch `json:"settings"`
	Player   PlayerProfile `json:"player"`
}

// JoinRoomPayload 加入房间请求
type JoinRoomPayload struct {
	RoomCode string        `json:"room_code"`
	Player   PlayerProfile `json:"player"`
}

// UpdateSettingsPayload 修改设置请求
type UpdateSettingsPayload struct {
	RoomCode string        `json:"room_code"`
	Settings SettingsPatch `json:"settings"`
}

// StartGamePayload 开始游戏请求
type StartGamePayload struct {
	RoomCode string `json:"room_code"`
}

// PlayerGuessPayload 提交猜测请求
type PlayerGuessPayload struct {
	RoomCode string         `json:"room_code"`
	Guess    geo.Coordinate `json:"guess"`
}

// GetLeaderboardPayload 查询排行榜请求
type GetLeaderboardPayload struct {
	Limit int `json:"limit"`
}

// --- 服务端响应 Payloads ---

// ConnectedPayload 连接成功响应
type ConnectedPayload struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"` // 客户端发送的时间戳
	ServerTimestamp int64 `json:"server_timestamp"` // 服务器时间戳（毫秒）
}

// RoomCreatedPayload 房间创建成功响应
type RoomCreatedPayload struct {
	RoomCode string `json:"room_code"`
}

// SettingsInfo 房间设置
type SettingsInfo struct {
	Rounds    int    `json:"rounds"`
	TimeLimit int    `json:"time_limit"` // 秒，0 表示不限时
	GameMode  string `json:"game_mode"`  // moving / fixed
	Region    string `json:"region"`
}

// PlayerInfo 玩家信息
type PlayerInfo struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Avatar     string `json:"avatar,omitempty"`
	Score      int    `json:"score"`       // 累计得分
	HasGuessed bool   `json:"has_guessed"` // 本回合是否已猜
}

// RoomUpdatePayload 房间状态快照
type RoomUpdatePayload struct {
	RoomCode     string       `json:"room_code"`
	HostID       string       `json:"host_id"`
	State        string       `json:"state"` // waiting / loading / playing / finished
	Settings     SettingsInfo `json:"settings"`
	Players      []PlayerInfo `json:"players"` // 按入座顺序
	CurrentRound int          `json:"current_round"`
}

// NewRoundPayload 新回合通知
type NewRoundPayload struct {
	Round       int            `json:"round"`
	TotalRounds int            `json:"total_rounds"`
	Location    geo.Coordinate `json:"location"`
	Players     []PlayerInfo   `json:"players"`
	Settings    SettingsInfo   `json:"settings"`
}

// PlayerRoundResult 单个玩家的回合成绩
type PlayerRoundResult struct {
	PlayerID  string          `json:"player_id"`
	Username  string          `json:"username"`
	Guessed   bool            `json:"guessed"`
	Guess     *geo.Coordinate `json:"guess,omitempty"`
	GuessName string          `json:"guess_name,omitempty"`
	Distance  float64         `json:"distance"` // 公里
	Points    int             `json:"points"`
}

// ScoreEntry 积分榜条目
type ScoreEntry struct {
	PlayerID string `json:"player_id"`
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// RoundResultPayload 回合结果通知
// Results 按距离升序（未猜测的排最后），PlayerScores 按累计得分降序
type RoundResultPayload struct {
	Round              int                 `json:"round"` // 0-based 回合索引
	Results            []PlayerRoundResult `json:"results"`
	ActualLocation     geo.Coordinate      `json:"actual_location"`
	ActualLocationName string              `json:"actual_location_name"`
	PlayerScores       []ScoreEntry        `json:"player_scores"`
}

// GameOverPayload 游戏结束通知，玩家按累计得分降序
type GameOverPayload struct {
	Players []PlayerInfo `json:"players"`
}

// StatsPayload 个人战绩响应
type StatsPayload struct {
	PlayerID    string `json:"player_id"`
	Username    string `json:"username"`
	TotalGames  int    `json:"total_games"`
	Wins        int    `json:"wins"`
	TotalPoints int    `json:"total_points"`
	BestGame    int    `json:"best_game"` // 单局最高得分
	Rank        int64  `json:"rank"`      // 总榜排名，-1 表示未上榜
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	PlayerID    string `json:"player_id"`
	Username    string `json:"username"`
	TotalPoints int    `json:"total_points"`
	Wins        int    `json:"wins"`
}

// LeaderboardPayload 排行榜响应
type LeaderboardPayload struct {
	Entries []LeaderboardEntry `json:"entries"`
}

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// --- 错误码 ---
const (
	ErrCodeUnknown      = 1000
	ErrCodeInvalidMsg   = 1001
	ErrCodeRoomNotFound = 2001
	ErrCodeRoomFull     = 2002
	ErrCodeNotInRoom    = 2003
	ErrCodeGameStarted  = 2004
	ErrCodeLocateFailed = 3001
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:      "未知错误",
	ErrCodeInvalidMsg:   "无效的消息格式",
	ErrCodeRoomNotFound: "房间不存在",
	ErrCodeRoomFull:     "房间已满",
	ErrCodeNotInRoom:    "您不在房间中",
	ErrCodeGameStarted:  "游戏已经开始",
	ErrCodeLocateFailed: "无法开始游戏：获取地点失败",
}
