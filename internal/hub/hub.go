package hub

import (
	"context"
	"sync"
	"time"

	"collaborative-workspace/internal/dto"
	"collaborative-workspace/internal/metrics"
	"collaborative-workspace/internal/presence"
	"collaborative-workspace/internal/service"

	"github.com/sirupsen/logrus"
)

// 包级别的 WebSocket 常量，供 hub 和 client 包内使用
const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// 整份文件内容随 fileContentChange 上行，上限需要覆盖较大的源文件
	maxMessageSize = 2 << 20

	defaultCommandTimeout = 10 * time.Second
)

// HubMessage 定义了在 Hub 内部通道传递的消息类型
type HubMessage struct {
	Type    string      // "register", "unregister", "command"
	UserID  string      // 来源用户 ID
	Client  *Client
	Command dto.Command // 仅用于 command
}

// Services 是 Hub 分发命令时调用的业务服务。
type Services struct {
	Auth  *service.AuthService
	Rooms *service.RoomService
	Tree  *service.TreeService
	Docs  *service.DocumentService
	Chat  *service.ChatService
}

// Hub 维护活跃客户端及其频道订阅，并把命令分发给业务服务。
// 频道名：房间 "room:<id>"，文件 "file-<id>"，私聊收件箱 "privatechat:<roomId>:<userId>"。
type Hub struct {
	messageChan chan HubMessage

	// clients 是全部已注册的客户端，channels 是频道 -> 订阅者
	clients  map[*Client]bool
	channels map[string]map[*Client]bool
	mu       sync.RWMutex

	presence *presence.Store

	auth  *service.AuthService
	rooms *service.RoomService
	tree  *service.TreeService
	docs  *service.DocumentService
	chat  *service.ChatService

	commandTimeout time.Duration
	done           chan struct{}
}

// NewHub 创建并返回一个新的 Hub 实例
func NewHub(svcs Services, store *presence.Store, commandTimeout time.Duration) *Hub {
	if svcs.Auth == nil {
		panic("AuthService cannot be nil for Hub")
	}
	if svcs.Rooms == nil {
		panic("RoomService cannot be nil for Hub")
	}
	if svcs.Tree == nil {
		panic("TreeService cannot be nil for Hub")
	}
	if svcs.Docs == nil {
		panic("DocumentService cannot be nil for Hub")
	}
	if svcs.Chat == nil {
		panic("ChatService cannot be nil for Hub")
	}
	if store == nil {
		panic("presence.Store cannot be nil for Hub")
	}
	if commandTimeout <= 0 {
		commandTimeout = defaultCommandTimeout
	}
	return &Hub{
		messageChan:    make(chan HubMessage, 512),
		clients:        make(map[*Client]bool),
		channels:       make(map[string]map[*Client]bool),
		presence:       store,
		auth:           svcs.Auth,
		rooms:          svcs.Rooms,
		tree:           svcs.Tree,
		docs:           svcs.Docs,
		chat:           svcs.Chat,
		commandTimeout: commandTimeout,
		done:           make(chan struct{}),
	}
}

// Run 启动 Hub 的主事件处理循环。
// 它应该在一个单独的 goroutine 中运行，Stop 后返回。
func (h *Hub) Run() {
	log := logrus.WithField("component", "hub")
	log.Info("Hub is running...")

	for {
		select {
		case msg := <-h.messageChan:
			switch msg.Type {
			case "register":
				if h.registerClient(msg.Client) {
					go h.serveClient(msg.Client)
				}
			case "unregister":
				h.unregisterClient(msg.Client)
			case "command":
				if msg.Client != nil && !msg.Client.enqueue(msg.Command) {
					log.WithField("user_id", msg.UserID).Warn("Client command queue full or closed, dropping command")
					msg.Client.emit(dto.ErrorEvent{Message: "Server busy, please retry"})
				}
			default:
				log.Warnf("Hub: Received unknown message type: %s from user %s", msg.Type, msg.UserID)
			}
		case <-h.done:
			h.closeAll()
			log.Info("Hub is shutting down...")
			return
		}
	}
}

// Stop 结束 Run 循环并关闭所有客户端。
func (h *Hub) Stop() {
	select {
	case <-h.done:
	default:
		close(h.done)
	}
}

// registerClient 处理客户端注册逻辑
func (h *Hub) registerClient(client *Client) bool {
	if client == nil {
		logrus.Error("Hub: Attempted to register a nil client")
		return false
	}
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()

	metrics.ConnectedClients.Inc()
	logrus.WithFields(logrus.Fields{"user_id": client.userID, "conn_id": client.id}).Info("Client registered to Hub")
	return true
}

// unregisterClient 退订客户端的全部频道并关闭它。在线状态的清理由 serveClient 在命令队列排空后完成。
func (h *Hub) unregisterClient(client *Client) {
	if client == nil {
		logrus.Error("Hub: Attempted to unregister a nil client")
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{"user_id": client.userID, "conn_id": client.id, "action": "unregisterClient"})

	h.mu.Lock()
	if !h.clients[client] {
		h.mu.Unlock()
		logCtx.Warn("Client not found during unregister")
		return
	}
	delete(h.clients, client)
	for channel := range client.channels {
		h.removeFromChannelLocked(channel, client)
	}
	h.mu.Unlock()

	client.close()
	metrics.ConnectedClients.Dec()
	logCtx.Info("Client unregistered from Hub")
}

// serveClient 逐条执行某个客户端的命令，保证同一客户端的命令按到达顺序执行。
// 客户端关闭后丢弃剩余命令，并清理它留下的在线状态。
func (h *Hub) serveClient(c *Client) {
	for cmd := range c.commands {
		if c.isClosed() {
			continue
		}
		h.handleCommand(c, cmd)
	}
	h.releasePresence(c)
}

// closeAll 在 Hub 停止时关闭所有客户端。
func (h *Hub) closeAll() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.unregisterClient(c)
	}
}

// --- 频道 ---

func roomChannel(roomID string) string { return "room:" + roomID }
func fileChannel(fileID string) string { return "file-" + fileID }
func inboxChannel(roomID, userID string) string {
	return "privatechat:" + roomID + ":" + userID
}

// subscribe 把客户端加入频道。已注销的客户端不会被重新加入。
func (h *Hub) subscribe(c *Client, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.clients[c] {
		return
	}
	subs, ok := h.channels[channel]
	if !ok {
		subs = make(map[*Client]bool)
		h.channels[channel] = subs
	}
	subs[c] = true
	c.channels[channel] = true
}

func (h *Hub) unsubscribe(c *Client, channel string) {
	h.mu.Lock()
	h.removeFromChannelLocked(channel, c)
	h.mu.Unlock()
}

// removeFromChannelLocked 调用方必须持有 h.mu 写锁。
func (h *Hub) removeFromChannelLocked(channel string, c *Client) {
	delete(c.channels, channel)
	if subs, ok := h.channels[channel]; ok {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.channels, channel)
		}
	}
}

// isSubscribed 判断客户端是否订阅了频道。
func (h *Hub) isSubscribed(c *Client, channel string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return c.channels[channel]
}

// userSubscribed 判断用户是否还有其他连接订阅着频道，except 不计入。
func (h *Hub) userSubscribed(userID, channel string, except *Client) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.channels[channel] {
		if c != except && c.userID == userID {
			return true
		}
	}
	return false
}

// unsubscribeUser 让用户在频道上的所有连接退订，返回受影响的客户端。
func (h *Hub) unsubscribeUser(userID, channel string) []*Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	var affected []*Client
	for c := range h.channels[channel] {
		if c.userID == userID {
			affected = append(affected, c)
		}
	}
	for _, c := range affected {
		h.removeFromChannelLocked(channel, c)
	}
	return affected
}

// --- 发送 ---

// sendTo 编码事件并非阻塞地发送给单个客户端。
func (h *Hub) sendTo(c *Client, ev dto.Event) {
	frame, err := dto.Encode(ev)
	if err != nil {
		logrus.WithError(err).WithField("event", ev.EventName()).Error("Failed to encode event")
		return
	}
	if !c.trySend(frame) {
		metrics.DroppedEvents.Inc()
		logrus.WithFields(logrus.Fields{"user_id": c.userID, "event": ev.EventName()}).Warn("Client send channel full or closed, event dropped")
	}
}

// broadcast 将事件发送给频道内的所有客户端，排除 except（可为 nil）。
func (h *Hub) broadcast(channel string, ev dto.Event, except *Client) {
	h.mu.RLock()
	subs := h.channels[channel]
	// 复制接收者列表，避免长时间持有锁
	recipients := make([]*Client, 0, len(subs))
	for c := range subs {
		if c != except {
			recipients = append(recipients, c)
		}
	}
	h.mu.RUnlock()

	if len(recipients) == 0 {
		return
	}
	frame, err := dto.Encode(ev)
	if err != nil {
		logrus.WithError(err).WithField("event", ev.EventName()).Error("Failed to encode event for broadcast")
		return
	}

	logCtx := logrus.WithFields(logrus.Fields{
		"channel":         channel,
		"event":           ev.EventName(),
		"recipient_count": len(recipients),
	})
	logCtx.Debug("Broadcasting event to clients")

	for _, c := range recipients {
		// 非阻塞发送，单个慢客户端不影响其他人
		if !c.trySend(frame) {
			metrics.DroppedEvents.Inc()
			logCtx.WithField("receiver_user_id", c.userID).Warn("Client send channel full during broadcast, skipping this client")
		}
	}
}

// --- 公共方法 ---

// QueueMessage 将消息放入 Hub 的处理队列 (非阻塞)。
// 返回 true 如果消息成功入队，false 如果队列已满。
func (h *Hub) QueueMessage(msg HubMessage) bool {
	select {
	case h.messageChan <- msg:
		return true
	default:
		logrus.WithFields(logrus.Fields{
			"message_type": msg.Type,
			"user_id":      msg.UserID,
		}).Warn("Hub message channel full, dropping message")
		return false
	}
}

// Register 把新连接交给 Hub，阻塞直到 Hub 接收或 ctx 结束。
func (h *Hub) Register(ctx context.Context, c *Client) error {
	select {
	case h.messageChan <- HubMessage{Type: "register", UserID: c.userID, Client: c}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ConnectedClients 返回当前已注册的连接数。
func (h *Hub) ConnectedClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
