//go:build !production

package testutil

import (
	"github.com/stretchr/testify/mock"

	"github.com/geodetect/geodetect/internal/server/types"
)

// MockServer 实现 types.ServerContext 的 mock
type MockServer struct {
	mock.Mock
}

func (m *MockServer) GetRoomManager() types.RoomManagerInterface {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(types.RoomManagerInterface)
}

func (m *MockServer) GetLeaderboard() types.LeaderboardInterface {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(types.LeaderboardInterface)
}

func (m *MockServer) GetLocator() types.Locator {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(types.Locator)
}

func (m *MockServer) GetGeocoder() types.Geocoder {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(types.Geocoder)
}

func (m *MockServer) GetGameConfig() types.GameConfigInterface {
	args := m.Called()
	return args.Get(0).(types.GameConfigInterface)
}

func (m *MockServer) IsMaintenanceMode() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockServer) GetOnlineCount() int {
	args := m.Called()
	return args.Int(0)
}

// StubServerContext 不做断言的 ServerContext 桩实现
// RoomManager 字段在构造完成后回填
type StubServerContext struct {
	RoomManager types.RoomManagerInterface
	Leaderboard types.LeaderboardInterface
	Locator     types.Locator
	Geocoder    types.Geocoder
	GameCfg     types.GameConfigInterface
	Maintenance bool
	Online      int
}

func (s *StubServerContext) GetRoomManager() types.RoomManagerInterface { return s.RoomManager }
func (s *StubServerContext) GetLeaderboard() types.LeaderboardInterface { return s.Leaderboard }
func (s *StubServerContext) GetLocator() types.Locator                  { return s.Locator }
func (s *StubServerContext) GetGeocoder() types.Geocoder                { return s.Geocoder }
func (s *StubServerContext) GetGameConfig() types.GameConfigInterface   { return s.GameCfg }
func (s *StubServerContext) IsMaintenanceMode() bool                    { return s.Maintenance }
func (s *StubServerContext) GetOnlineCount() int                        { return s.Online }
