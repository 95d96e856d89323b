package handlers

import (
	"context"
	"log"
	"time"

	"github.com/geodetect/geodetect/internal/protocol"
	"github.com/geodetect/geodetect/internal/protocol/codec"
	"github.com/geodetect/geodetect/internal/server/storage"
	"github.com/geodetect/geodetect/internal/server/types"
)

const statsQueryTimeout = 3 * time.Second

// handleGetStats 处理个人战绩查询
func (h *Handler) handleGetStats(client types.ClientInterface) {
	ctx, cancel := context.WithTimeout(context.Background(), statsQueryTimeout)
	defer cancel()

	result, err := h.server.GetLeaderboard().GetPlayerStats(ctx, client.GetID())
	if err != nil {
		log.Printf("查询战绩失败 (%s): %v", client.GetName(), err)
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeUnknown))
		return
	}

	payload := protocol.StatsPayload{
		PlayerID: client.GetID(),
		Username: client.GetName(),
		Rank:     -1,
	}

	if stats, ok := result.(*storage.PlayerStats); ok && stats != nil {
		payload.Username = stats.Username
		payload.TotalGames = stats.TotalGames
		payload.Wins = stats.Wins
		payload.TotalPoints = stats.TotalPoints
		payload.BestGame = stats.BestGame

		if rank, err := h.server.GetLeaderboard().GetPlayerRank(ctx, client.GetID()); err == nil {
			payload.Rank = rank
		}
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgStats, payload))
}

// handleGetLeaderboard 处理排行榜查询
func (h *Handler) handleGetLeaderboard(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.GetLeaderboardPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	limit := payload.Limit
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	ctx, cancel := context.WithTimeout(context.Background(), statsQueryTimeout)
	defer cancel()

	entries, err := h.server.GetLeaderboard().GetLeaderboard(ctx, limit)
	if err != nil {
		log.Printf("查询排行榜失败: %v", err)
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeUnknown))
		return
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgLeaderboard, protocol.LeaderboardPayload{
		Entries: entries,
	}))
}
