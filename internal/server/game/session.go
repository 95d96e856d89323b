package game

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/geodetect/geodetect/internal/geo"
	"github.com/geodetect/geodetect/internal/protocol"
	"github.com/geodetect/geodetect/internal/protocol/codec"
	"github.com/geodetect/geodetect/internal/server/types"
)

// StartGame 开始游戏（waiting → loading）
// 仅房主可触发，其余情况静默忽略
// 地点解析在后台并发进行，失败时回退到 waiting 并向全房间报错
func (rm *RoomManager) StartGame(client types.ClientInterface, code string) {
	room := rm.getRoom(code)
	if room == nil {
		return
	}

	room.mu.Lock()

	if room.Host != client.GetID() || room.State != StateWaiting {
		room.mu.Unlock()
		return
	}

	room.State = StateLoading
	rounds := room.Settings.Rounds
	region := room.Settings.Region
	roomCode := room.Code

	room.broadcastLocked(codec.MustNewMessage(protocol.MsgGameLoading, nil))
	room.mu.Unlock()

	log.Printf("🎮 房间 %s 开始游戏: %d 回合, 区域 %s", roomCode, rounds, region)

	go rm.loadLocations(roomCode, rounds, region)
}

// loadLocations 并发请求 N 个回合地点，然后推进到第一回合
// 外部调用返回后房间可能已被销毁或状态已变，写入前必须重新校验
func (rm *RoomManager) loadLocations(code string, rounds int, region geo.Region) {
	locator := rm.server.GetLocator()
	timeout := rm.server.GetGameConfig().LocateTimeoutDuration()

	locations := make([]geo.Coordinate, rounds)
	errs := make([]error, rounds)

	var wg sync.WaitGroup
	for i := range rounds {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			locations[i], errs[i] = locator.RandomLocation(ctx, region)
		}()
	}
	wg.Wait()

	var failed error
	for _, err := range errs {
		if err != nil {
			failed = err
			break
		}
	}

	room := rm.getRoom(code)
	if room == nil {
		return // 加载期间房间已销毁，丢弃结果
	}

	room.mu.Lock()
	if room.State != StateLoading {
		room.mu.Unlock()
		return
	}

	if failed != nil {
		log.Printf("❌ 房间 %s 获取地点失败: %v", code, failed)
		room.State = StateWaiting
		room.broadcastLocked(codec.MustNewMessage(protocol.MsgRoomUpdate, room.snapshotLocked()))
		room.broadcastLocked(codec.NewErrorMessage(protocol.ErrCodeLocateFailed))
		room.mu.Unlock()
		return
	}

	room.Locations = locations
	room.CurrentRound = 0
	room.mu.Unlock()

	rm.startRound(code)
}

// startRound 推进到下一回合
// 重置所有玩家的猜测状态并广播回合信息；配置了限时则武装计时器
func (rm *RoomManager) startRound(code string) {
	room := rm.getRoom(code)
	if room == nil {
		return
	}

	room.mu.Lock()

	if room.State != StateLoading && room.State != StatePlaying {
		room.mu.Unlock()
		return
	}

	room.isFinishing = false
	room.CurrentRound++

	if room.CurrentRound > room.Settings.Rounds {
		room.mu.Unlock()
		rm.finishGame(code)
		return
	}

	room.State = StatePlaying
	for _, p := range room.Players {
		p.HasGuessed = false
		p.Guess = nil
		p.RoundDistance = 0
		p.RoundPoints = 0
	}

	room.broadcastLocked(codec.MustNewMessage(protocol.MsgNewRound, protocol.NewRoundPayload{
		Round:       room.CurrentRound,
		TotalRounds: room.Settings.Rounds,
		Location:    room.Locations[room.CurrentRound-1],
		Players:     room.playerInfosLocked(),
		Settings:    room.settingsInfo(),
	}))

	timeLimit := room.Settings.TimeLimit
	round := room.CurrentRound
	room.mu.Unlock()

	log.Printf("📍 房间 %s 第 %d 回合开始", code, round)

	if timeLimit > 0 {
		rm.scheduler.Schedule(code, time.Duration(timeLimit)*time.Second, func() {
			rm.finishRound(code)
		})
	}
}

// HandleGuess 处理玩家猜测
// 仅在 playing 且回合未结算且该玩家未猜测时生效，其余情况静默忽略
// 最后一个落子的玩家会立刻触发回合结算，不等计时器
func (rm *RoomManager) HandleGuess(client types.ClientInterface, code string, guess geo.Coordinate) {
	room := rm.getRoom(code)
	if room == nil {
		return
	}

	room.mu.Lock()

	player, ok := room.Players[client.GetID()]
	if !ok || room.State != StatePlaying || room.isFinishing || player.HasGuessed {
		room.mu.Unlock()
		return
	}

	actual := room.Locations[room.CurrentRound-1]
	distance := geo.Distance(actual, guess)

	player.HasGuessed = true
	player.Guess = &guess
	player.RoundDistance = distance
	player.RoundPoints = geo.Score(distance)

	room.broadcastLocked(codec.MustNewMessage(protocol.MsgRoomUpdate, room.snapshotLocked()))

	complete := room.allGuessedLocked()
	room.mu.Unlock()

	if complete {
		rm.finishRound(code)
	}
}

// finishRound 结算当前回合
// isFinishing 保证「全员已猜」与「计时器到点」竞争时只结算一次
// 地名解析是外部调用，返回后重新加载房间并校验守卫
func (rm *RoomManager) finishRound(code string) {
	room := rm.getRoom(code)
	if room == nil {
		return
	}

	room.mu.Lock()

	if room.State != StatePlaying || room.isFinishing {
		room.mu.Unlock()
		return
	}
	room.isFinishing = true

	actual := room.Locations[room.CurrentRound-1]
	guesses := make(map[string]*geo.Coordinate, len(room.Players))
	for id, p := range room.Players {
		guesses[id] = p.Guess
	}
	room.mu.Unlock()

	rm.scheduler.Cancel(code)

	// 并发解析实际地点与每个玩家猜测的地名
	geocoder := rm.server.GetGeocoder()
	names := make(map[string]string, len(guesses))
	var actualName string

	var wg sync.WaitGroup
	var namesMu sync.Mutex

	wg.Add(1)
	go func() {
		defer wg.Done()
		actualName = geocoder.PlaceName(context.Background(), &actual)
	}()
	for id, guess := range guesses {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := geocoder.PlaceName(context.Background(), guess)
			namesMu.Lock()
			names[id] = name
			namesMu.Unlock()
		}()
	}
	wg.Wait()

	room = rm.getRoom(code)
	if room == nil {
		return // 解析期间房间已销毁，丢弃结果
	}

	room.mu.Lock()

	if room.State != StatePlaying || !room.isFinishing {
		room.mu.Unlock()
		return
	}

	results := make([]protocol.PlayerRoundResult, 0, len(room.Players))
	for _, id := range room.PlayerOrder {
		p, ok := room.Players[id]
		if !ok {
			continue
		}
		p.Score += p.RoundPoints
		results = append(results, protocol.PlayerRoundResult{
			PlayerID:  id,
			Username:  p.Username,
			Guessed:   p.HasGuessed,
			Guess:     p.Guess,
			GuessName: names[id],
			Distance:  p.RoundDistance,
			Points:    p.RoundPoints,
		})
	}

	// 按距离升序，未猜测的视为无限远排在最后
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Guessed != results[j].Guessed {
			return results[i].Guessed
		}
		return results[i].Distance < results[j].Distance
	})

	room.broadcastLocked(codec.MustNewMessage(protocol.MsgRoundResult, protocol.RoundResultPayload{
		Round:              room.CurrentRound - 1,
		Results:            results,
		ActualLocation:     actual,
		ActualLocationName: actualName,
		PlayerScores:       room.scoreboardLocked(),
	}))

	lastRound := room.CurrentRound >= room.Settings.Rounds
	round := room.CurrentRound
	room.mu.Unlock()

	log.Printf("🏁 房间 %s 第 %d 回合结算完成", code, round)

	delay := rm.server.GetGameConfig().ResultDelayDuration()
	if lastRound {
		rm.scheduler.Schedule(code, delay, func() { rm.finishGame(code) })
	} else {
		rm.scheduler.Schedule(code, delay, func() { rm.startRound(code) })
	}
}

// finishGame 结束游戏（→ finished）
// 广播最终排名，记录排行榜，并安排清理延迟后销毁房间
func (rm *RoomManager) finishGame(code string) {
	room := rm.getRoom(code)
	if room == nil {
		return
	}

	rm.scheduler.Cancel(code)

	room.mu.Lock()

	if room.State == StateFinished {
		room.mu.Unlock()
		return
	}
	room.State = StateFinished

	ranked := room.rankedPlayersLocked()
	room.broadcastLocked(codec.MustNewMessage(protocol.MsgGameOver, protocol.GameOverPayload{
		Players: ranked,
	}))
	room.mu.Unlock()

	log.Printf("🎮 房间 %s 游戏结束，共 %d 名玩家", code, len(ranked))

	go rm.recordGameResults(ranked)

	rm.scheduler.Schedule(code, rm.server.GetGameConfig().CleanupDelayDuration(), func() {
		rm.destroyRoom(code)
	})
}

// recordGameResults 将终局成绩写入排行榜
func (rm *RoomManager) recordGameResults(ranked []protocol.PlayerInfo) {
	if len(ranked) == 0 {
		return
	}

	leaderboard := rm.server.GetLeaderboard()
	if leaderboard == nil {
		return
	}

	ctx := context.Background()
	topScore := ranked[0].Score

	for _, p := range ranked {
		won := p.Score == topScore
		if err := leaderboard.RecordGameResult(ctx, p.ID, p.Username, p.Score, won); err != nil {
			log.Printf("记录游戏结果失败: %v", err)
		}
	}
}
