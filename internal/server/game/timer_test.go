package game

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundScheduler_Schedule(t *testing.T) {
	s := NewRoundScheduler()
	var fired atomic.Int32

	s.Schedule("A1B2C3", 10*time.Millisecond, func() { fired.Add(1) })
	assert.Equal(t, 1, s.Active())

	require.Eventually(t, func() bool {
		return fired.Load() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestRoundScheduler_ScheduleReplacesExisting(t *testing.T) {
	s := NewRoundScheduler()
	var first, second atomic.Int32

	// 同一房间的新计时器隐式取消旧计时器
	s.Schedule("A1B2C3", 50*time.Millisecond, func() { first.Add(1) })
	s.Schedule("A1B2C3", 10*time.Millisecond, func() { second.Add(1) })
	assert.Equal(t, 1, s.Active())

	require.Eventually(t, func() bool {
		return second.Load() == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), first.Load())
}

func TestRoundScheduler_Cancel(t *testing.T) {
	s := NewRoundScheduler()
	var fired atomic.Int32

	s.Schedule("A1B2C3", 20*time.Millisecond, func() { fired.Add(1) })
	s.Cancel("A1B2C3")
	assert.Equal(t, 0, s.Active())

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestRoundScheduler_CancelAll(t *testing.T) {
	s := NewRoundScheduler()
	var fired atomic.Int32

	s.Schedule("A1B2C3", 20*time.Millisecond, func() { fired.Add(1) })
	s.Schedule("D4E5F6", 20*time.Millisecond, func() { fired.Add(1) })
	assert.Equal(t, 2, s.Active())

	s.CancelAll()
	assert.Equal(t, 0, s.Active())

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestRoundScheduler_CancelUnknownRoom(t *testing.T) {
	s := NewRoundScheduler()
	s.Cancel("ZZZZZZ") // 没有计时器时取消是安全的
	assert.Equal(t, 0, s.Active())
}
