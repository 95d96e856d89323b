package game

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geodetect/geodetect/internal/geo"
	"github.com/geodetect/geodetect/internal/protocol"
	"github.com/geodetect/geodetect/internal/protocol/codec"
	"github.com/geodetect/geodetect/internal/testutil"
)

var istanbul = geo.Coordinate{Lat: 41.0082, Lng: 28.9784}

// waitForState 等待房间进入指定状态
func waitForState(t *testing.T, rm *RoomManager, code string, state GameState) {
	t.Helper()
	require.Eventually(t, func() bool {
		room := rm.getRoom(code)
		if room == nil {
			return false
		}
		room.mu.Lock()
		defer room.mu.Unlock()
		return room.State == state
	}, time.Second, 5*time.Millisecond)
}

func TestStartGame_OnlyHost(t *testing.T) {
	rm, _ := newTestManager(testutil.NewFixedLocator(istanbul))
	host := newTestClient("p1")
	guest := newTestClient("p2")

	code, err := rm.CreateRoom(host, protocol.SettingsPatch{}, protocol.PlayerProfile{})
	require.NoError(t, err)
	require.NoError(t, rm.JoinRoom(guest, code, protocol.PlayerProfile{}))

	rm.StartGame(guest, code)

	room := rm.getRoom(code)
	room.mu.Lock()
	defer room.mu.Unlock()
	assert.Equal(t, StateWaiting, room.State)
}

func TestStartGame_LocateFailure_RevertsToWaiting(t *testing.T) {
	locator := testutil.NewFixedLocator()
	locator.Err = errors.New("selector exhausted")
	rm, _ := newTestManager(locator)
	host := newTestClient("p1")

	code, err := rm.CreateRoom(host, protocol.SettingsPatch{Rounds: intPtr(1)}, protocol.PlayerProfile{})
	require.NoError(t, err)

	rm.StartGame(host, code)

	waitForState(t, rm, code, StateWaiting)

	// 全房间收到加载失败错误
	require.Eventually(t, func() bool {
		for _, msg := range host.MessagesOfType(protocol.MsgError) {
			payload, err := codec.ParsePayload[protocol.ErrorPayload](msg)
			if err == nil && payload.Code == protocol.ErrCodeLocateFailed {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
}

func TestGameFlow_SingleRound(t *testing.T) {
	rm, lb := newTestManager(testutil.NewFixedLocator(istanbul))
	alice := newTestClient("p1")
	bob := newTestClient("p2")

	code, err := rm.CreateRoom(alice, protocol.SettingsPatch{Rounds: intPtr(1)},
		protocol.PlayerProfile{Username: "Alice"})
	require.NoError(t, err)
	require.NoError(t, rm.JoinRoom(bob, code, protocol.PlayerProfile{Username: "Bob"}))

	rm.StartGame(alice, code)
	waitForState(t, rm, code, StatePlaying)

	// 开局广播携带回合信息与实际地点
	newRounds := alice.MessagesOfType(protocol.MsgNewRound)
	require.Len(t, newRounds, 1)
	roundInfo, err := codec.ParsePayload[protocol.NewRoundPayload](newRounds[0])
	require.NoError(t, err)
	assert.Equal(t, 1, roundInfo.Round)
	assert.Equal(t, 1, roundInfo.TotalRounds)
	assert.Equal(t, istanbul, roundInfo.Location)

	// Alice 精确命中，Bob 猜在远处；Bob 是最后一个落子，立刻触发结算
	rm.HandleGuess(alice, code, istanbul)
	rm.HandleGuess(bob, code, geo.Coordinate{Lat: 0, Lng: 0})

	results := alice.MessagesOfType(protocol.MsgRoundResult)
	require.Len(t, results, 1)
	result, err := codec.ParsePayload[protocol.RoundResultPayload](results[0])
	require.NoError(t, err)

	assert.Equal(t, 0, result.Round)
	assert.Equal(t, istanbul, result.ActualLocation)
	assert.Equal(t, "伊斯坦布尔, 土耳其", result.ActualLocationName)

	// 结果按距离升序：Alice 第一，满分
	require.Len(t, result.Results, 2)
	assert.Equal(t, "p1", result.Results[0].PlayerID)
	assert.Equal(t, 5000, result.Results[0].Points)
	assert.Equal(t, "p2", result.Results[1].PlayerID)
	assert.Less(t, result.Results[1].Points, 5000)

	// 积分榜按累计得分降序
	require.Len(t, result.PlayerScores, 2)
	assert.Equal(t, "Alice", result.PlayerScores[0].Username)
	assert.Equal(t, 5000, result.PlayerScores[0].Score)

	// 最后一回合结算后推进到终局
	waitForState(t, rm, code, StateFinished)

	overs := bob.MessagesOfType(protocol.MsgGameOver)
	require.Len(t, overs, 1)
	over, err := codec.ParsePayload[protocol.GameOverPayload](overs[0])
	require.NoError(t, err)
	require.Len(t, over.Players, 2)
	assert.Equal(t, "Alice", over.Players[0].Username)
	assert.Equal(t, 5000, over.Players[0].Score)

	// 终局成绩写入排行榜，最高分记为胜者
	require.Eventually(t, func() bool {
		return len(lb.Results()) == 2
	}, time.Second, 5*time.Millisecond)
	for _, r := range lb.Results() {
		switch r.PlayerID {
		case "p1":
			assert.True(t, r.Won)
			assert.Equal(t, 5000, r.Points)
		case "p2":
			assert.False(t, r.Won)
		}
	}

	// 清理延迟后房间销毁
	require.Eventually(t, func() bool {
		return rm.getRoom(code) == nil
	}, time.Second, 5*time.Millisecond)
}

func TestGameFlow_MultipleRounds(t *testing.T) {
	rm, _ := newTestManager(testutil.NewFixedLocator(istanbul, istanbul))
	alice := newTestClient("p1")
	bob := newTestClient("p2")

	code, err := rm.CreateRoom(alice, protocol.SettingsPatch{Rounds: intPtr(2)},
		protocol.PlayerProfile{Username: "Alice"})
	require.NoError(t, err)
	require.NoError(t, rm.JoinRoom(bob, code, protocol.PlayerProfile{Username: "Bob"}))

	rm.StartGame(alice, code)
	waitForState(t, rm, code, StatePlaying)

	rm.HandleGuess(alice, code, istanbul)
	rm.HandleGuess(bob, code, istanbul)

	// 结果展示延迟后自动进入第二回合
	require.Eventually(t, func() bool {
		return len(alice.MessagesOfType(protocol.MsgNewRound)) == 2
	}, time.Second, 5*time.Millisecond)

	second, err := codec.ParsePayload[protocol.NewRoundPayload](
		alice.MessagesOfType(protocol.MsgNewRound)[1])
	require.NoError(t, err)
	assert.Equal(t, 2, second.Round)

	// 第二回合玩家猜测状态已重置
	room := rm.getRoom(code)
	room.mu.Lock()
	for _, p := range room.Players {
		assert.False(t, p.HasGuessed)
	}
	room.mu.Unlock()

	rm.HandleGuess(alice, code, istanbul)
	rm.HandleGuess(bob, code, istanbul)

	waitForState(t, rm, code, StateFinished)
	assert.Len(t, alice.MessagesOfType(protocol.MsgRoundResult), 2)

	// 两回合满分
	over, err := codec.ParsePayload[protocol.GameOverPayload](
		alice.MessagesOfType(protocol.MsgGameOver)[0])
	require.NoError(t, err)
	assert.Equal(t, 10000, over.Players[0].Score)
}

func TestFinishRound_Idempotent(t *testing.T) {
	rm, _ := newTestManager(testutil.NewFixedLocator(istanbul))
	alice := newTestClient("p1")
	bob := newTestClient("p2")

	code, err := rm.CreateRoom(alice, protocol.SettingsPatch{Rounds: intPtr(1)}, protocol.PlayerProfile{})
	require.NoError(t, err)
	require.NoError(t, rm.JoinRoom(bob, code, protocol.PlayerProfile{}))

	rm.StartGame(alice, code)
	waitForState(t, rm, code, StatePlaying)

	rm.HandleGuess(alice, code, istanbul)

	// 「计时器到点」与重复触发竞争时只结算一次
	rm.finishRound(code)
	rm.finishRound(code)

	assert.Len(t, alice.MessagesOfType(protocol.MsgRoundResult), 1)
}

func TestFinishRound_NoGuessRanksLast(t *testing.T) {
	rm, _ := newTestManager(testutil.NewFixedLocator(istanbul))
	alice := newTestClient("p1")
	bob := newTestClient("p2")

	code, err := rm.CreateRoom(alice, protocol.SettingsPatch{Rounds: intPtr(1)},
		protocol.PlayerProfile{Username: "Alice"})
	require.NoError(t, err)
	require.NoError(t, rm.JoinRoom(bob, code, protocol.PlayerProfile{Username: "Bob"}))

	rm.StartGame(alice, code)
	waitForState(t, rm, code, StatePlaying)

	// 只有 Bob 远距离命中，Alice 超时未猜
	rm.HandleGuess(bob, code, geo.Coordinate{Lat: 0, Lng: 0})
	rm.finishRound(code)

	result, err := codec.ParsePayload[protocol.RoundResultPayload](
		alice.MessagesOfType(protocol.MsgRoundResult)[0])
	require.NoError(t, err)

	require.Len(t, result.Results, 2)
	assert.Equal(t, "p2", result.Results[0].PlayerID)
	assert.True(t, result.Results[0].Guessed)
	assert.Equal(t, "p1", result.Results[1].PlayerID)
	assert.False(t, result.Results[1].Guessed)
	assert.Nil(t, result.Results[1].Guess)
	assert.Equal(t, 0, result.Results[1].Points)
}

func TestHandleGuess_Guards(t *testing.T) {
	rm, _ := newTestManager(testutil.NewFixedLocator(istanbul))
	alice := newTestClient("p1")
	bob := newTestClient("p2")
	stranger := newTestClient("p3")

	code, err := rm.CreateRoom(alice, protocol.SettingsPatch{Rounds: intPtr(1)}, protocol.PlayerProfile{})
	require.NoError(t, err)
	require.NoError(t, rm.JoinRoom(bob, code, protocol.PlayerProfile{}))

	// 未开局时猜测被忽略
	rm.HandleGuess(alice, code, istanbul)
	room := rm.getRoom(code)
	room.mu.Lock()
	assert.False(t, room.Players["p1"].HasGuessed)
	room.mu.Unlock()

	rm.StartGame(alice, code)
	waitForState(t, rm, code, StatePlaying)

	// 非房间成员的猜测被忽略
	rm.HandleGuess(stranger, code, istanbul)

	// 重复猜测保留首次记录
	rm.HandleGuess(alice, code, istanbul)
	rm.HandleGuess(alice, code, geo.Coordinate{Lat: 0, Lng: 0})

	room.mu.Lock()
	defer room.mu.Unlock()
	assert.Equal(t, 5000, room.Players["p1"].RoundPoints)
	assert.Equal(t, istanbul, *room.Players["p1"].Guess)
}

func TestLeave_DuringPlay_ForcesRoundFinish(t *testing.T) {
	rm, _ := newTestManager(testutil.NewFixedLocator(istanbul))
	alice := newTestClient("p1")
	bob := newTestClient("p2")

	code, err := rm.CreateRoom(alice, protocol.SettingsPatch{Rounds: intPtr(1)},
		protocol.PlayerProfile{Username: "Alice"})
	require.NoError(t, err)
	require.NoError(t, rm.JoinRoom(bob, code, protocol.PlayerProfile{Username: "Bob"}))

	rm.StartGame(alice, code)
	waitForState(t, rm, code, StatePlaying)

	// Alice 已落子，迟迟未猜的 Bob 离开后回合立即结算
	rm.HandleGuess(alice, code, istanbul)
	rm.Leave(bob)

	results := alice.MessagesOfType(protocol.MsgRoundResult)
	require.Len(t, results, 1)
	result, err := codec.ParsePayload[protocol.RoundResultPayload](results[0])
	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "p1", result.Results[0].PlayerID)

	waitForState(t, rm, code, StateFinished)
}

func TestGetActiveGamesCount(t *testing.T) {
	rm, _ := newTestManager(testutil.NewFixedLocator(istanbul))
	alice := newTestClient("p1")
	idle := newTestClient("p2")

	code, err := rm.CreateRoom(alice, protocol.SettingsPatch{Rounds: intPtr(1)}, protocol.PlayerProfile{})
	require.NoError(t, err)
	_, err = rm.CreateRoom(idle, protocol.SettingsPatch{}, protocol.PlayerProfile{})
	require.NoError(t, err)

	assert.Equal(t, 0, rm.GetActiveGamesCount())

	rm.StartGame(alice, code)
	waitForState(t, rm, code, StatePlaying)

	assert.Equal(t, 1, rm.GetActiveGamesCount())
}
