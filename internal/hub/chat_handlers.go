package hub

import (
	"context"

	"collaborative-workspace/internal/dto"
	"collaborative-workspace/internal/service"
)

// onJoinPrivateChat 订阅调用者自己的私聊收件箱，不能订阅别人的。
func (h *Hub) onJoinPrivateChat(c *Client, cmd *dto.JoinPrivateChat) error {
	if cmd.RoomID == "" || cmd.UserID == "" {
		return service.ErrMissingFields
	}
	if cmd.UserID != c.userID {
		return service.ErrForbidden
	}
	h.subscribe(c, inboxChannel(cmd.RoomID, c.userID))
	return nil
}

// onSendPrivateMessage 的发送者只取自命令携带的 token，且必须与连接身份一致。
func (h *Hub) onSendPrivateMessage(ctx context.Context, c *Client, cmd *dto.SendPrivateMessage) error {
	senderID, err := h.auth.VerifyToken(cmd.Token)
	if err != nil || senderID != c.userID {
		return service.ErrInvalidToken
	}
	sent, err := h.chat.SendMessage(ctx, senderID, cmd.RoomID, cmd.ToUserID, cmd.Message)
	if err != nil {
		return err
	}

	msg := dto.NewPrivateMessage{
		ID:        sent.Message.ID,
		Sender:    senderID,
		Message:   sent.Message.Text,
		CreatedAt: sent.Message.CreatedAt,
		Username:  sent.SenderName,
	}
	senderInbox := inboxChannel(cmd.RoomID, senderID)
	recipientInbox := inboxChannel(cmd.RoomID, cmd.ToUserID)

	h.broadcast(senderInbox, msg, nil)
	h.broadcast(recipientInbox, msg, nil)
	h.broadcast(senderInbox, dto.UnreadCountUpdate{UserID: cmd.ToUserID, Count: sent.SenderUnread}, nil)
	h.broadcast(recipientInbox, dto.UnreadCountUpdate{UserID: senderID, Count: sent.RecipientUnread}, nil)
	c.emit(dto.MessageDelivered{MessageID: sent.Message.ID, Delivered: true})
	return nil
}

// onFetchPrivateChat 返回调用者与另一方的历史消息，并把调用者的水位线推进到现在。
func (h *Hub) onFetchPrivateChat(ctx context.Context, c *Client, cmd *dto.FetchPrivateChat) error {
	if cmd.RoomID == "" || cmd.UserA == "" || cmd.UserB == "" {
		return service.ErrMissingFields
	}
	var other string
	switch c.userID {
	case cmd.UserA:
		other = cmd.UserB
	case cmd.UserB:
		other = cmd.UserA
	default:
		return service.ErrForbidden
	}

	msgs, unread, err := h.chat.FetchHistory(ctx, cmd.RoomID, c.userID, other)
	if err != nil {
		return err
	}
	c.emit(dto.PrivateChatHistory{RoomID: cmd.RoomID, OtherUserID: other, Messages: dto.NewMessageViews(msgs)})
	h.toInbox(c, cmd.RoomID, dto.UnreadCountUpdate{UserID: other, Count: unread})
	return nil
}

func (h *Hub) onMarkAsRead(ctx context.Context, c *Client, cmd *dto.MarkAsRead) error {
	if cmd.RoomID == "" || cmd.UserID == "" || cmd.OtherUserID == "" {
		return service.ErrMissingFields
	}
	if cmd.UserID != c.userID {
		return service.ErrForbidden
	}
	mine, theirs, err := h.chat.MarkAsRead(ctx, cmd.RoomID, c.userID, cmd.OtherUserID)
	if err != nil {
		return err
	}
	h.toInbox(c, cmd.RoomID, dto.UnreadCountUpdate{UserID: cmd.OtherUserID, Count: mine})
	h.broadcast(inboxChannel(cmd.RoomID, cmd.OtherUserID), dto.UnreadCountUpdate{UserID: c.userID, Count: theirs}, nil)
	c.emit(dto.MarkAsReadSuccess{RoomID: cmd.RoomID, UserID: c.userID, OtherUserID: cmd.OtherUserID})
	return nil
}

func (h *Hub) onGetUnreadCounts(ctx context.Context, c *Client, cmd *dto.GetUnreadCounts) error {
	if cmd.UserID != "" && cmd.UserID != c.userID {
		return service.ErrForbidden
	}
	counts, err := h.chat.UnreadCounts(ctx, cmd.RoomID, c.userID)
	if err != nil {
		return err
	}
	c.emit(dto.UnreadCounts(counts))
	return nil
}

// toInbox 把事件发到调用者的收件箱频道；当前连接未订阅收件箱时直接发给它。
func (h *Hub) toInbox(c *Client, roomID string, ev dto.Event) {
	channel := inboxChannel(roomID, c.userID)
	h.broadcast(channel, ev, nil)
	if !h.isSubscribed(c, channel) {
		c.emit(ev)
	}
}
