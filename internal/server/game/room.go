package game

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/geodetect/geodetect/internal/geo"
	"github.com/geodetect/geodetect/internal/protocol"
	"github.com/geodetect/geodetect/internal/protocol/codec"
	"github.com/geodetect/geodetect/internal/server/types"
)

const (
	// 房间号长度
	roomCodeLength = 6
	// 房间号字符集（大写展示，匹配时不区分大小写）
	roomCodeChars = "0123456789ABCDEF"

	// 房间人数上限
	maxPlayers = 8

	// 设置边界
	minRounds = 1
	maxRounds = 20
)

// GameState 房间生命周期状态
type GameState string

const (
	StateWaiting  GameState = "waiting"  // 等待玩家
	StateLoading  GameState = "loading"  // 正在加载地点
	StatePlaying  GameState = "playing"  // 回合进行中
	StateFinished GameState = "finished" // 游戏结束，等待清理
)

// 合法的回合限时（秒），0 表示不限时
var validTimeLimits = []int{0, 60, 180, 300}

// 合法的游戏模式
var validGameModes = []string{"moving", "fixed"}

// Settings 房间设置，仅房主在 waiting 状态下可修改
type Settings struct {
	Rounds    int        // 回合数 1-20
	TimeLimit int        // 每回合限时（秒），0 表示不限时
	GameMode  string     // moving: 可在全景中移动; fixed: 固定视角
	Region    geo.Region // 选点区域
}

// DefaultSettings 默认房间设置
func DefaultSettings() Settings {
	return Settings{
		Rounds:    5,
		TimeLimit: 0,
		GameMode:  "moving",
		Region:    geo.RegionWorld,
	}
}

// Apply 应用部分设置更新
// 每个字段独立校验：非法值保留原值，回合数收拢到边界内
func (s *Settings) Apply(patch protocol.SettingsPatch) {
	if patch.Rounds != nil {
		s.Rounds = min(maxRounds, max(minRounds, *patch.Rounds))
	}
	if patch.TimeLimit != nil {
		for _, v := range validTimeLimits {
			if *patch.TimeLimit == v {
				s.TimeLimit = v
				break
			}
		}
	}
	if patch.GameMode != nil {
		for _, v := range validGameModes {
			if *patch.GameMode == v {
				s.GameMode = v
				break
			}
		}
	}
	if patch.Region != nil {
		if r := geo.Region(*patch.Region); r.Valid() {
			s.Region = r
		}
	}
}

// Player 房间中的玩家，生命周期与连接一致
// 断线重入会作为全新玩家加入，累计得分清零
type Player struct {
	Client   types.ClientInterface
	Username string
	Avatar   string

	Score      int  // 累计得分，单调不减
	HasGuessed bool // 本回合是否已提交猜测

	// 本回合猜测记录
	Guess         *geo.Coordinate
	RoundDistance float64
	RoundPoints   int
}

// Room 游戏房间
type Room struct {
	Code     string    // 房间号
	Host     string    // 房主（玩家 ID），始终是当前成员之一
	State    GameState // 生命周期状态
	Settings Settings

	CurrentRound int              // 1-based，首回合开始前为 0
	Locations    []geo.Coordinate // 开局时一次性选好的地点，之后不再变化
	isFinishing  bool             // 回合结算幂等保护

	Players     map[string]*Player // 玩家列表
	PlayerOrder []string           // 入座顺序，房主继任按此顺序
	CreatedAt   time.Time

	mu sync.Mutex
}

// RoomManager 房间注册表，持有全部存活房间与回合调度器
type RoomManager struct {
	server    types.ServerContext
	scheduler *RoundScheduler
	rooms     map[string]*Room
	mu        sync.RWMutex
}

// NewRoomManager 创建房间管理器
func NewRoomManager(s types.ServerContext) *RoomManager {
	return &RoomManager{
		server:    s,
		scheduler: NewRoundScheduler(),
		rooms:     make(map[string]*Room),
	}
}

// CreateRoom 创建房间，创建者自动成为房主
// 创建者若已在其他房间中会先离开
func (rm *RoomManager) CreateRoom(client types.ClientInterface, patch protocol.SettingsPatch, profile protocol.PlayerProfile) (string, error) {
	if client.GetRoom() != "" {
		rm.Leave(client)
	}

	settings := DefaultSettings()
	settings.Apply(patch)

	room := &Room{
		Code:        generateRoomCode(),
		Host:        client.GetID(),
		State:       StateWaiting,
		Settings:    settings,
		Players:     make(map[string]*Player),
		PlayerOrder: make([]string, 0, maxPlayers),
		CreatedAt:   time.Now(),
	}
	room.addPlayerLocked(client, profile)

	rm.mu.Lock()
	rm.rooms[room.Code] = room
	rm.mu.Unlock()

	client.SetRoom(room.Code)

	room.mu.Lock()
	room.broadcastLocked(codec.MustNewMessage(protocol.MsgRoomUpdate, room.snapshotLocked()))
	room.mu.Unlock()

	log.Printf("🏠 房间 %s 已创建，房主 %s", room.Code, client.GetName())

	return room.Code, nil
}

// JoinRoom 加入房间
// 同一连接重复加入是幂等操作（如页面刷新），仅重发当前房间状态
func (rm *RoomManager) JoinRoom(client types.ClientInterface, code string, profile protocol.PlayerProfile) error {
	room := rm.getRoom(code)
	if room == nil {
		return ErrRoomNotFound
	}

	room.mu.Lock()
	if _, ok := room.Players[client.GetID()]; ok {
		client.SendMessage(codec.MustNewMessage(protocol.MsgRoomUpdate, room.snapshotLocked()))
		room.mu.Unlock()
		return nil
	}
	if room.State != StateWaiting {
		room.mu.Unlock()
		return ErrGameStarted
	}
	if len(room.Players) >= maxPlayers {
		room.mu.Unlock()
		return ErrRoomFull
	}
	room.mu.Unlock()

	// 先退出当前所在房间，再重新校验目标房间（期间可能已满员或已开局）
	if client.GetRoom() != "" {
		rm.Leave(client)
	}

	if rm.getRoom(code) != room {
		return ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.State != StateWaiting {
		return ErrGameStarted
	}
	if len(room.Players) >= maxPlayers {
		return ErrRoomFull
	}

	room.addPlayerLocked(client, profile)
	client.SetRoom(code)
	room.broadcastLocked(codec.MustNewMessage(protocol.MsgRoomUpdate, room.snapshotLocked()))

	log.Printf("👤 玩家 %s 加入房间 %s (%d/%d)", client.GetName(), code, len(room.Players), maxPlayers)

	return nil
}

// Leave 离开房间（显式退出或断线）
// 房间空了就销毁；房主离开由最早入座的幸存者继任；
// 若离开后剩余玩家全部已猜测，立即结算当前回合
func (rm *RoomManager) Leave(client types.ClientInterface) {
	code := client.GetRoom()
	if code == "" {
		return
	}

	room := rm.getRoom(code)
	if room == nil {
		client.SetRoom("")
		return
	}

	room.mu.Lock()

	if _, ok := room.Players[client.GetID()]; !ok {
		room.mu.Unlock()
		client.SetRoom("")
		return
	}

	wasPlaying := room.State == StatePlaying

	delete(room.Players, client.GetID())
	for i, id := range room.PlayerOrder {
		if id == client.GetID() {
			room.PlayerOrder = append(room.PlayerOrder[:i], room.PlayerOrder[i+1:]...)
			break
		}
	}
	client.SetRoom("")

	log.Printf("👋 玩家 %s 离开房间 %s", client.GetName(), code)

	if len(room.Players) == 0 {
		room.mu.Unlock()
		rm.destroyRoom(code)
		return
	}

	if room.Host == client.GetID() {
		room.Host = room.PlayerOrder[0]
		log.Printf("👑 房间 %s 房主变更: %s", code, room.Host)
	}

	room.broadcastLocked(codec.MustNewMessage(protocol.MsgRoomUpdate, room.snapshotLocked()))

	// 离开的人可能正是还没猜的那一个
	forceFinish := wasPlaying && !room.isFinishing && room.allGuessedLocked()
	room.mu.Unlock()

	if forceFinish {
		rm.finishRound(code)
	}
}

// UpdateSettings 修改房间设置
// 仅房主在 waiting 状态下生效，其余情况静默忽略
func (rm *RoomManager) UpdateSettings(client types.ClientInterface, code string, patch protocol.SettingsPatch) {
	room := rm.getRoom(code)
	if room == nil {
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.Host != client.GetID() || room.State != StateWaiting {
		return
	}

	room.Settings.Apply(patch)
	room.broadcastLocked(codec.MustNewMessage(protocol.MsgRoomUpdate, room.snapshotLocked()))
}

// GetActiveGamesCount 获取进行中的游戏数量（优雅关闭时用于等待排空）
func (rm *RoomManager) GetActiveGamesCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	count := 0
	for _, room := range rm.rooms {
		room.mu.Lock()
		switch room.State {
		case StateLoading, StatePlaying:
			count++
		}
		room.mu.Unlock()
	}
	return count
}

// GetRoomCount 获取存活房间总数
func (rm *RoomManager) GetRoomCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}

// Shutdown 注销全部房间并取消所有计时器
func (rm *RoomManager) Shutdown() {
	rm.scheduler.CancelAll()

	rm.mu.Lock()
	defer rm.mu.Unlock()

	for code, room := range rm.rooms {
		room.mu.Lock()
		for _, p := range room.Players {
			p.Client.SetRoom("")
		}
		room.mu.Unlock()
		delete(rm.rooms, code)
	}
}

// getRoom 按房间号查找房间，大小写不敏感
func (rm *RoomManager) getRoom(code string) *Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.rooms[normalizeRoomCode(code)]
}

// destroyRoom 销毁房间并取消其计时器
func (rm *RoomManager) destroyRoom(code string) {
	rm.scheduler.Cancel(code)

	rm.mu.Lock()
	delete(rm.rooms, code)
	rm.mu.Unlock()

	log.Printf("🧹 房间 %s 已销毁", code)
}

// addPlayerLocked 追加玩家到座位表，资料缺省时用连接昵称兜底
func (r *Room) addPlayerLocked(client types.ClientInterface, profile protocol.PlayerProfile) {
	username := profile.Username
	if username == "" {
		username = client.GetName()
	}
	r.Players[client.GetID()] = &Player{
		Client:   client,
		Username: username,
		Avatar:   profile.Avatar,
	}
	r.PlayerOrder = append(r.PlayerOrder, client.GetID())
}

// allGuessedLocked 当前所有成员是否都已提交猜测
func (r *Room) allGuessedLocked() bool {
	for _, p := range r.Players {
		if !p.HasGuessed {
			return false
		}
	}
	return true
}

// generateRoomCode 生成 6 位房间号
// 与注册表中已有房间的碰撞未做检查，沿用原始行为
func generateRoomCode() string {
	code := make([]byte, roomCodeLength)
	for i := range code {
		code[i] = roomCodeChars[rand.Intn(len(roomCodeChars))]
	}
	return string(code)
}

// normalizeRoomCode 房间号归一化为大写
func normalizeRoomCode(code string) string {
	b := []byte(code)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
