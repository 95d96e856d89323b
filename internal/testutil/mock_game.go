//go:build !production

package testutil

import (
	"github.com/stretchr/testify/mock"

	"github.com/geodetect/geodetect/internal/geo"
	"github.com/geodetect/geodetect/internal/protocol"
	"github.com/geodetect/geodetect/internal/server/types"
)

// MockRoomManager 实现 types.RoomManagerInterface 的 mock
type MockRoomManager struct {
	mock.Mock
}

func (m *MockRoomManager) CreateRoom(client types.ClientInterface, patch protocol.SettingsPatch, profile protocol.PlayerProfile) (string, error) {
	args := m.Called(client, patch, profile)
	return args.String(0), args.Error(1)
}

func (m *MockRoomManager) JoinRoom(client types.ClientInterface, code string, profile protocol.PlayerProfile) error {
	args := m.Called(client, code, profile)
	return args.Error(0)
}

func (m *MockRoomManager) Leave(client types.ClientInterface) {
	m.Called(client)
}

func (m *MockRoomManager) UpdateSettings(client types.ClientInterface, code string, patch protocol.SettingsPatch) {
	m.Called(client, code, patch)
}

func (m *MockRoomManager) StartGame(client types.ClientInterface, code string) {
	m.Called(client, code)
}

func (m *MockRoomManager) HandleGuess(client types.ClientInterface, code string, guess geo.Coordinate) {
	m.Called(client, code, guess)
}

func (m *MockRoomManager) GetActiveGamesCount() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockRoomManager) Shutdown() {
	m.Called()
}
