package websocket

import (
	"context"
	"net/http"
	"strings"
	"time"

	"collaborative-workspace/internal/dto"
	"collaborative-workspace/internal/hub"
	"collaborative-workspace/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const authCloseWait = time.Second

// WebSocketHandler 负责 WebSocket 升级、连接身份绑定和客户端注册
type WebSocketHandler struct {
	upgrader websocket.Upgrader
	hub      *hub.Hub
	verifier middleware.TokenVerifier
}

// NewWebSocketHandler 创建 WebSocketHandler 实例。
// allowedOrigin 为空或 "*" 时接受任意来源。
func NewWebSocketHandler(h *hub.Hub, verifier middleware.TokenVerifier, allowedOrigin string) *WebSocketHandler {
	if h == nil {
		panic("Hub cannot be nil for WebSocketHandler")
	}
	if verifier == nil {
		panic("TokenVerifier cannot be nil for WebSocketHandler")
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" || allowedOrigin == "*" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return &WebSocketHandler{upgrader: upgrader, hub: h, verifier: verifier}
}

// tokenFromRequest 优先读取 ?token=，其次是 Authorization: Bearer 头。
func tokenFromRequest(c *gin.Context) string {
	if token := strings.TrimSpace(c.Query("token")); token != "" {
		return token
	}
	token, err := middleware.ExtractToken(c)
	if err != nil {
		return ""
	}
	return token
}

// HandleConnection 处理 WebSocket 连接请求，URL 格式: /ws?token=<jwt>
// 身份只在这里绑定一次；token 无效时先升级、发送 auth_error 再关闭连接。
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	logCtx := logrus.WithField("remote_addr", c.ClientIP())

	userID, verifyErr := h.verifier.VerifyToken(tokenFromRequest(c))

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 已经写回 HTTP 错误响应
		logCtx.WithError(err).Error("WS Handler: Failed to upgrade connection")
		return
	}

	if verifyErr != nil || userID == "" {
		logCtx.WithError(verifyErr).Warn("WS Handler: Rejected connection with invalid token")
		rejectConnection(conn, dto.AuthError{Message: "Invalid token"}, websocket.ClosePolicyViolation)
		return
	}
	logCtx = logCtx.WithField("user_id", userID)

	client := hub.NewClient(h.hub, conn, userID)
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()
	if err := h.hub.Register(ctx, client); err != nil {
		logCtx.WithError(err).Error("WS Handler: Failed to register client with hub")
		rejectConnection(conn, dto.ErrorEvent{Message: "Server busy, please retry"}, websocket.CloseTryAgainLater)
		return
	}

	client.Run()
	logCtx.WithField("conn_id", client.ID()).Info("WS Handler: Client connected")
}

// rejectConnection 发送一条事件后以 closeCode 关闭连接。
func rejectConnection(conn *websocket.Conn, ev dto.Event, closeCode int) {
	defer conn.Close()

	frame, err := dto.Encode(ev)
	if err != nil {
		logrus.WithError(err).WithField("event", ev.EventName()).Error("WS Handler: Failed to encode rejection")
		return
	}
	deadline := time.Now().Add(authCloseWait)
	_ = conn.SetWriteDeadline(deadline)
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(closeCode, ""), deadline)
}
