package game

import (
	"sync"
	"time"
)

// RoundScheduler 回合调度器，每个房间同一时刻最多持有一个计时器
// 计时器用于回合限时自动结算、回合间隔推进和终局房间清理
type RoundScheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewRoundScheduler 创建回合调度器
func NewRoundScheduler() *RoundScheduler {
	return &RoundScheduler{
		timers: make(map[string]*time.Timer),
	}
}

// Schedule 为房间安排一次延迟回调，会隐式取消该房间已有的计时器
func (s *RoundScheduler) Schedule(code string, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[code]; ok {
		t.Stop()
	}
	s.timers[code] = time.AfterFunc(d, fn)
}

// Cancel 取消房间的计时器
func (s *RoundScheduler) Cancel(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[code]; ok {
		t.Stop()
		delete(s.timers, code)
	}
}

// CancelAll 取消所有计时器（服务器关闭时）
func (s *RoundScheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for code, t := range s.timers {
		t.Stop()
		delete(s.timers, code)
	}
}

// Active 返回当前持有计时器的房间数（用于测试与监控）
func (s *RoundScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
