package hub

import (
	"sync"
	"time"

	"collaborative-workspace/internal/dto"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Client 代表一个连接到 Hub 的 WebSocket 客户端。
// 身份在连接建立时绑定，之后只读。
type Client struct {
	hub    *Hub
	conn   *websocket.Conn // 测试中可为 nil
	id     string          // 连接 ID，同一用户可有多个连接
	userID string

	send     chan []byte      // 发往此客户端的缓冲通道
	commands chan dto.Command // 待执行的命令，按到达顺序逐条处理

	// channels 记录此客户端订阅的频道，只在持有 hub.mu 时读写
	channels map[string]bool
	// files 记录此客户端 joinFile 过的文件，只在命令协程和注销清理中访问
	files map[string]string // fileID -> roomID

	mu     sync.Mutex
	closed bool
}

// NewClient 创建一个新的 Client 实例
func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		id:       uuid.NewString(),
		userID:   userID,
		send:     make(chan []byte, 256),
		commands: make(chan dto.Command, 64),
		channels: make(map[string]bool),
		files:    make(map[string]string),
	}
}

// Run 启动客户端的读写 goroutine
func (c *Client) Run() {
	go c.WritePump()
	go c.ReadPump()
}

// ReadPump 从 WebSocket 读取文本帧，解码为命令后交给 Hub。
func (c *Client) ReadPump() {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": c.userID, "conn_id": c.id})
	defer func() {
		// 请求 Hub 注销此客户端
		select {
		case c.hub.messageChan <- HubMessage{Type: "unregister", UserID: c.userID, Client: c}:
		case <-time.After(1 * time.Second):
			logCtx.Warn("Timeout sending unregister message to Hub channel")
		}
		c.conn.Close()
		logCtx.Info("readPump exited, unregistered client")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logCtx.WithError(err).Warn("WebSocket read error (unexpected close)")
			} else {
				logCtx.Debug("WebSocket connection closed normally or read error")
			}
			break
		}
		if messageType != websocket.TextMessage {
			logCtx.Debugf("Received non-text message type: %d", messageType)
			continue
		}

		cmd, err := dto.DecodeCommand(message)
		if err != nil {
			logCtx.WithError(err).Debug("Rejected malformed frame")
			c.emit(dto.ErrorEvent{Message: "Invalid message format"})
			continue
		}
		c.submit(cmd)
	}
}

// submit 把命令交给 Hub。Hub 的消息通道已满时命令被丢弃，直接回复调用者。
func (c *Client) submit(cmd dto.Command) {
	if !c.hub.QueueMessage(HubMessage{Type: "command", UserID: c.userID, Client: c, Command: cmd}) {
		c.emit(dto.ErrorEvent{Message: "Server busy, please retry"})
	}
}

// WritePump 将 send 通道中的消息写入 WebSocket 连接，并定期发送 Ping。
func (c *Client) WritePump() {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": c.userID, "conn_id": c.id})
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		logCtx.Info("writePump exited")
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// send 通道被关闭（注销完成）
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logCtx.WithError(err).Warn("Failed to write message to websocket")
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logCtx.WithError(err).Warn("Failed to send ping message")
				return
			}
		}
	}
}

// trySend 非阻塞地把帧放入发送队列。客户端已关闭或队列已满时返回 false。
func (c *Client) trySend(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// emit 编码事件并发送给此客户端。
func (c *Client) emit(ev dto.Event) {
	c.hub.sendTo(c, ev)
}

// enqueue 把命令放入此客户端的命令队列。队列已满时返回 false。
func (c *Client) enqueue(cmd dto.Command) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.commands <- cmd:
		return true
	default:
		return false
	}
}

// close 标记客户端已关闭并关闭两个通道，可重复调用。
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.commands)
	close(c.send)
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Client) ID() string     { return c.id }
func (c *Client) UserID() string { return c.userID }
