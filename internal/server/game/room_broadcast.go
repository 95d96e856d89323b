package game

import (
	"sort"

	"github.com/geodetect/geodetect/internal/protocol"
)

// broadcastLocked 发送消息给房间内所有成员，调用方须持有 room.mu
func (r *Room) broadcastLocked(msg *protocol.Message) {
	for _, p := range r.Players {
		p.Client.SendMessage(msg)
	}
}

// snapshotLocked 生成房间状态快照，调用方须持有 room.mu
func (r *Room) snapshotLocked() protocol.RoomUpdatePayload {
	return protocol.RoomUpdatePayload{
		RoomCode:     r.Code,
		HostID:       r.Host,
		State:        string(r.State),
		Settings:     r.settingsInfo(),
		Players:      r.playerInfosLocked(),
		CurrentRound: r.CurrentRound,
	}
}

// settingsInfo 设置的传输表示
func (r *Room) settingsInfo() protocol.SettingsInfo {
	return protocol.SettingsInfo{
		Rounds:    r.Settings.Rounds,
		TimeLimit: r.Settings.TimeLimit,
		GameMode:  r.Settings.GameMode,
		Region:    string(r.Settings.Region),
	}
}

// playerInfosLocked 按入座顺序导出玩家信息，调用方须持有 room.mu
func (r *Room) playerInfosLocked() []protocol.PlayerInfo {
	infos := make([]protocol.PlayerInfo, 0, len(r.Players))
	for _, id := range r.PlayerOrder {
		p, ok := r.Players[id]
		if !ok {
			continue
		}
		infos = append(infos, protocol.PlayerInfo{
			ID:         id,
			Username:   p.Username,
			Avatar:     p.Avatar,
			Score:      p.Score,
			HasGuessed: p.HasGuessed,
		})
	}
	return infos
}

// rankedPlayersLocked 按累计得分降序导出玩家信息，调用方须持有 room.mu
func (r *Room) rankedPlayersLocked() []protocol.PlayerInfo {
	infos := r.playerInfosLocked()
	sort.SliceStable(infos, func(i, j int) bool {
		return infos[i].Score > infos[j].Score
	})
	return infos
}

// scoreboardLocked 按累计得分降序导出积分榜，调用方须持有 room.mu
func (r *Room) scoreboardLocked() []protocol.ScoreEntry {
	entries := make([]protocol.ScoreEntry, 0, len(r.Players))
	for _, id := range r.PlayerOrder {
		p, ok := r.Players[id]
		if !ok {
			continue
		}
		entries = append(entries, protocol.ScoreEntry{
			PlayerID: id,
			Username: p.Username,
			Score:    p.Score,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return entries
}
