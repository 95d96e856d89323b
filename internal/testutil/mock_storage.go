//go:build !production

package testutil

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/geodetect/geodetect/internal/protocol"
)

// MockLeaderboard 排行榜 mock
type MockLeaderboard struct {
	mock.Mock
}

func (m *MockLeaderboard) RecordGameResult(ctx context.Context, playerID, username string, points int, won bool) error {
	args := m.Called(ctx, playerID, username, points, won)
	return args.Error(0)
}

func (m *MockLeaderboard) GetPlayerStats(ctx context.Context, playerID string) (any, error) {
	args := m.Called(ctx, playerID)
	return args.Get(0), args.Error(1)
}

func (m *MockLeaderboard) GetPlayerRank(ctx context.Context, playerID string) (int64, error) {
	args := m.Called(ctx, playerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLeaderboard) GetLeaderboard(ctx context.Context, limit int) ([]protocol.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]protocol.LeaderboardEntry), args.Error(1)
}

// GameResult 一次战绩上报的记录
type GameResult struct {
	PlayerID string
	Username string
	Points   int
	Won      bool
}

// RecordingLeaderboard 只记录调用的排行榜桩实现
type RecordingLeaderboard struct {
	mu      sync.Mutex
	results []GameResult
}

func (l *RecordingLeaderboard) RecordGameResult(_ context.Context, playerID, username string, points int, won bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.results = append(l.results, GameResult{PlayerID: playerID, Username: username, Points: points, Won: won})
	return nil
}

func (l *RecordingLeaderboard) GetPlayerStats(context.Context, string) (any, error) {
	return nil, nil
}

func (l *RecordingLeaderboard) GetPlayerRank(context.Context, string) (int64, error) {
	return -1, nil
}

func (l *RecordingLeaderboard) GetLeaderboard(context.Context, int) ([]protocol.LeaderboardEntry, error) {
	return nil, nil
}

// Results 返回已记录战绩的副本
func (l *RecordingLeaderboard) Results() []GameResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]GameResult, len(l.results))
	copy(out, l.results)
	return out
}
