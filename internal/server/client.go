package server

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/geodetect/geodetect/internal/protocol"
	"github.com/geodetect/geodetect/internal/protocol/codec"
)

const (
	// 写超时
	writeWait = 10 * time.Second
	// Pong 等待时间
	pongWait = 60 * time.Second
	// Ping 发送周期，必须小于 pongWait
	pingPeriod = (pongWait * 9) / 10
	// 最大消息大小
	maxMessageSize = 4096
	// 发送缓冲区大小
	sendBufferSize = 256
)

// Client 代表一个 WebSocket 客户端连接
type Client struct {
	ID     string
	Name   string
	RoomID string
	IP     string

	server *Server
	conn   *websocket.Conn
	send   chan []byte

	closeOnce sync.Once
	closed    chan struct{}
}

// NewClient 创建客户端实例
func NewClient(s *Server, conn *websocket.Conn) *Client {
	return &Client{
		ID:     uuid.New().String(),
		Name:   GenerateNickname(),
		server: s,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		closed: make(chan struct{}),
	}
}

// ReadPump 读取客户端消息
func (c *Client) ReadPump() {
	defer func() {
		c.handleDisconnect()
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("读取消息错误 (%s): %v", c.Name, err)
			}
			return
		}
		c.server.handler.HandleMessage(c, data)
	}
}

// WritePump 向客户端写入消息
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.closed:
			return
		}
	}
}

// SendMessage 发送消息给客户端（非阻塞，缓冲区满则丢弃）
func (c *Client) SendMessage(msg *protocol.Message) {
	data, err := codec.Encode(msg)
	if err != nil {
		log.Printf("消息编码失败: %v", err)
		return
	}

	select {
	case c.send <- data:
	case <-c.closed:
	default:
		log.Printf("⚠️ 客户端 %s 发送缓冲区已满，丢弃消息", c.Name)
	}
}

// handleDisconnect 处理断开连接时的清理
func (c *Client) handleDisconnect() {
	c.server.roomManager.Leave(c)
	c.server.unregisterClient(c)
}

// Close 关闭客户端连接
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		_ = c.conn.Close()
	})
}

// GetID 获取客户端 ID
func (c *Client) GetID() string { return c.ID }

// GetName 获取客户端昵称
func (c *Client) GetName() string { return c.Name }

// GetRoom 获取所在房间号
func (c *Client) GetRoom() string { return c.RoomID }

// SetRoom 设置所在房间号
func (c *Client) SetRoom(roomID string) { c.RoomID = roomID }
