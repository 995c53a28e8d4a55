package http

import (
	"net/http"

	"collaborative-workspace/internal/dto"
	"collaborative-workspace/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RoomHandler 提供房间的只读 HTTP 接口，房间的增删改都走 WebSocket 命令。
type RoomHandler struct {
	roomService *service.RoomService
}

// NewRoomHandler 创建 RoomHandler 实例
func NewRoomHandler(roomService *service.RoomService) *RoomHandler {
	if roomService == nil {
		panic("RoomService cannot be nil for RoomHandler")
	}
	return &RoomHandler{roomService: roomService}
}

// ListMyRooms 返回调用者所在的全部房间。
func (h *RoomHandler) ListMyRooms(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		logrus.Warn("Handler.ListMyRooms: User ID not found in context, middleware missing or failed?")
		ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	rooms, err := h.roomService.GetMyRooms(c.Request.Context(), userID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"rooms": dto.NewRoomViews(rooms)})
}
