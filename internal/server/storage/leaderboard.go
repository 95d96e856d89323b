package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/geodetect/geodetect/internal/protocol"
)

const (
	// Redis key
	playerStatsKey   = "player:stats:"
	leaderboardKey   = "leaderboard:points"
	dailyLeaderboard = "leaderboard:daily:"
)

// PlayerStats 玩家统计数据
type PlayerStats struct {
	PlayerID string `json:"player_id"`
	Username string `json:"username"`

	TotalGames  int `json:"total_games"`  // 总场次
	Wins        int `json:"wins"`         // 夺冠场次
	TotalPoints int `json:"total_points"` // 累计得分
	BestGame    int `json:"best_game"`    // 单局最高得分

	LastPlayedAt int64 `json:"last_played_at"` // 最后游戏时间
	CreatedAt    int64 `json:"created_at"`     // 首次游戏时间
}

// LeaderboardManager 排行榜管理器
type LeaderboardManager struct {
	redis *redis.Client
}

// NewLeaderboardManager 创建排行榜管理器
func NewLeaderboardManager(client *redis.Client) *LeaderboardManager {
	return &LeaderboardManager{redis: client}
}

// GetPlayerStats 获取玩家统计，不存在时返回 nil
func (lm *LeaderboardManager) GetPlayerStats(ctx context.Context, playerID string) (any, error) {
	data, err := lm.redis.Get(ctx, playerStatsKey+playerID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var stats PlayerStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SavePlayerStats 保存玩家统计
func (lm *LeaderboardManager) SavePlayerStats(ctx context.Context, stats *PlayerStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return lm.redis.Set(ctx, playerStatsKey+stats.PlayerID, data, 0).Err()
}

// getOrCreateStats 获取或创建玩家统计
func (lm *LeaderboardManager) getOrCreateStats(ctx context.Context, playerID, username string) (*PlayerStats, error) {
	statsInterface, err := lm.GetPlayerStats(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if statsInterface == nil {
		return &PlayerStats{
			PlayerID:  playerID,
			Username:  username,
			CreatedAt: time.Now().Unix(),
		}, nil
	}

	stats, ok := statsInterface.(*PlayerStats)
	if !ok {
		return nil, fmt.Errorf("invalid stats type")
	}
	return stats, nil
}

// RecordGameResult 记录一局终局成绩
// points 是玩家该局累计得分，won 表示是否为该局最高分
func (lm *LeaderboardManager) RecordGameResult(ctx context.Context, playerID, username string, points int, won bool) error {
	stats, err := lm.getOrCreateStats(ctx, playerID, username)
	if err != nil {
		return err
	}

	stats.Username = username
	stats.TotalGames++
	stats.TotalPoints += points
	stats.LastPlayedAt = time.Now().Unix()
	if won {
		stats.Wins++
	}
	if points > stats.BestGame {
		stats.BestGame = points
	}

	if err := lm.SavePlayerStats(ctx, stats); err != nil {
		return err
	}
	return lm.updateLeaderboard(ctx, stats)
}

// updateLeaderboard 同步总榜与日榜
func (lm *LeaderboardManager) updateLeaderboard(ctx context.Context, stats *PlayerStats) error {
	if err := lm.redis.ZAdd(ctx, leaderboardKey, redis.Z{
		Score:  float64(stats.TotalPoints),
		Member: stats.PlayerID,
	}).Err(); err != nil {
		return err
	}

	// 日榜保留 2 天
	dailyKey := dailyLeaderboard + time.Now().Format("2006-01-02")
	if err := lm.redis.ZAdd(ctx, dailyKey, redis.Z{
		Score:  float64(stats.TotalPoints),
		Member: stats.PlayerID,
	}).Err(); err != nil {
		return err
	}
	lm.redis.Expire(ctx, dailyKey, 48*time.Hour)

	return nil
}

// GetLeaderboard 获取总榜（累计得分从高到低）
func (lm *LeaderboardManager) GetLeaderboard(ctx context.Context, limit int) ([]protocol.LeaderboardEntry, error) {
	results, err := lm.redis.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]protocol.LeaderboardEntry, 0, len(results))
	for i, result := range results {
		playerID, ok := result.Member.(string)
		if !ok {
			continue
		}

		statsInterface, err := lm.GetPlayerStats(ctx, playerID)
		if err != nil || statsInterface == nil {
			continue
		}
		stats := statsInterface.(*PlayerStats)

		entries = append(entries, protocol.LeaderboardEntry{
			Rank:        i + 1,
			PlayerID:    playerID,
			Username:    stats.Username,
			TotalPoints: int(result.Score),
			Wins:        stats.Wins,
		})
	}

	return entries, nil
}

// GetPlayerRank 获取玩家总榜排名，未上榜返回 -1
func (lm *LeaderboardManager) GetPlayerRank(ctx context.Context, playerID string) (int64, error) {
	rank, err := lm.redis.ZRevRank(ctx, leaderboardKey, playerID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return -1, nil
		}
		return -1, err
	}
	return rank + 1, nil // Redis 排名从 0 开始
}
