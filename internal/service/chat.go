package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"collaborative-workspace/internal/domain"
	"collaborative-workspace/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SentMessage 是 SendMessage 的结果：已追加的消息以及双方重新计算的未读数。
type SentMessage struct {
	Conversation    *domain.Conversation
	Message         *domain.Message
	SenderName      string
	SenderUnread    int64 // 发送者来自接收者的未读数
	RecipientUnread int64 // 接收者来自发送者的未读数
}

// ChatService 负责房间内两人私聊：会话的查找或创建、消息追加、已读水位线和未读计数。
type ChatService struct {
	convRepo repository.ConversationRepository
	userRepo repository.UserRepository
	now      func() time.Time
}

func NewChatService(convRepo repository.ConversationRepository, userRepo repository.UserRepository) *ChatService {
	if convRepo == nil {
		panic("ConversationRepository cannot be nil for ChatService")
	}
	if userRepo == nil {
		panic("UserRepository cannot be nil for ChatService")
	}
	return &ChatService{
		convRepo: convRepo,
		userRepo: userRepo,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// FindOrCreateChat 按规范化的用户对查找会话，不存在时创建。
// 并发创建撞上唯一索引时重新读取对方创建的记录。created 表示本次调用创建了会话。
func (s *ChatService) FindOrCreateChat(ctx context.Context, roomID, a, b string) (conv *domain.Conversation, created bool, err error) {
	if roomID == "" || a == "" || b == "" {
		return nil, false, ErrMissingFields
	}
	conv, err = s.convRepo.FindByPair(ctx, roomID, a, b)
	if err == nil {
		return conv, false, nil
	}
	if !errors.Is(err, repository.ErrConversationNotFound) {
		return nil, false, internalError(err)
	}

	userA, userB := domain.CanonicalPair(a, b)
	conv = &domain.Conversation{ID: uuid.NewString(), RoomID: roomID, UserA: userA, UserB: userB}
	if err := s.convRepo.Create(ctx, conv); err != nil {
		if !errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, false, internalError(err)
		}
		existing, findErr := s.convRepo.FindByPair(ctx, roomID, userA, userB)
		if findErr != nil {
			return nil, false, internalError(findErr)
		}
		return existing, false, nil
	}
	return conv, true, nil
}

// SendMessage 追加一条私信。消息的 readBy 预置发送者；新建的会话同时记录发送者的水位线。
func (s *ChatService) SendMessage(ctx context.Context, senderID, roomID, toUserID, text string) (*SentMessage, error) {
	if senderID == "" || roomID == "" || toUserID == "" || strings.TrimSpace(text) == "" {
		return nil, ErrMissingFields
	}
	if senderID == toUserID {
		return nil, ErrSelfMessage
	}
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": senderID, "to_user_id": toUserID, "operation": "SendMessage"})

	conv, created, err := s.FindOrCreateChat(ctx, roomID, senderID, toUserID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to resolve conversation")
		return nil, err
	}

	now := s.now()
	if created {
		if err := s.convRepo.SetLastRead(ctx, conv.ID, senderID, now); err != nil {
			logCtx.WithError(err).Error("Failed to record sender watermark")
			return nil, internalError(err)
		}
	}

	msg := &domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		Sender:         senderID,
		Text:           text,
		ReadBy:         []domain.ReadReceipt{{UserID: senderID, ReadAt: now}},
		CreatedAt:      now,
	}
	if err := s.convRepo.AppendMessage(ctx, msg); err != nil {
		logCtx.WithError(err).Error("Failed to append message")
		return nil, internalError(err)
	}

	senderUnread, err := s.unread(ctx, conv.ID, senderID)
	if err != nil {
		return nil, err
	}
	recipientUnread, err := s.unread(ctx, conv.ID, toUserID)
	if err != nil {
		return nil, err
	}

	logCtx.WithField("message_id", msg.ID).Info("Private message delivered")
	return &SentMessage{
		Conversation:    conv,
		Message:         msg,
		SenderName:      s.displayName(ctx, senderID),
		SenderUnread:    senderUnread,
		RecipientUnread: recipientUnread,
	}, nil
}

// MarkAsRead 把 userID 在会话中的水位线推进到当前时间，返回双方的未读数。
func (s *ChatService) MarkAsRead(ctx context.Context, roomID, userID, otherUserID string) (userUnread, otherUnread int64, err error) {
	if roomID == "" || userID == "" || otherUserID == "" {
		return 0, 0, ErrMissingFields
	}
	conv, _, err := s.FindOrCreateChat(ctx, roomID, userID, otherUserID)
	if err != nil {
		return 0, 0, err
	}
	if err := s.convRepo.SetLastRead(ctx, conv.ID, userID, s.now()); err != nil {
		logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID, "operation": "MarkAsRead"}).WithError(err).Error("Failed to update watermark")
		return 0, 0, internalError(err)
	}
	if userUnread, err = s.unread(ctx, conv.ID, userID); err != nil {
		return 0, 0, err
	}
	if otherUnread, err = s.unread(ctx, conv.ID, otherUserID); err != nil {
		return 0, 0, err
	}
	return userUnread, otherUnread, nil
}

// FetchHistory 返回会话的全部消息（按时间升序），并把请求者的水位线推进到读取之前的时间。
// 返回值 unread 是推进之后请求者的未读数。
func (s *ChatService) FetchHistory(ctx context.Context, roomID, requesterID, otherUserID string) (msgs []domain.Message, unread int64, err error) {
	if roomID == "" || requesterID == "" || otherUserID == "" {
		return nil, 0, ErrMissingFields
	}
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": requesterID, "operation": "FetchHistory"})

	conv, _, err := s.FindOrCreateChat(ctx, roomID, requesterID, otherUserID)
	if err != nil {
		return nil, 0, err
	}
	// 水位线取列表之前的时间，列表之后写入的消息仍算未读
	watermark := s.now()
	msgs, err = s.convRepo.ListMessages(ctx, conv.ID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to list messages")
		return nil, 0, internalError(err)
	}
	if err := s.convRepo.SetLastRead(ctx, conv.ID, requesterID, watermark); err != nil {
		logCtx.WithError(err).Error("Failed to update watermark")
		return nil, 0, internalError(err)
	}
	unread, err = s.unread(ctx, conv.ID, requesterID)
	if err != nil {
		return nil, 0, err
	}
	return msgs, unread, nil
}

// UnreadCounts 返回 userID 在房间内每个会话的未读数，以对方 ID 为键，未读为 0 的会话省略。
func (s *ChatService) UnreadCounts(ctx context.Context, roomID, userID string) (map[string]int64, error) {
	if roomID == "" || userID == "" {
		return nil, ErrMissingFields
	}
	convs, err := s.convRepo.ListByParticipant(ctx, roomID, userID)
	if err != nil {
		logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID, "operation": "UnreadCounts"}).WithError(err).Error("Failed to list conversations")
		return nil, internalError(err)
	}
	counts := make(map[string]int64)
	for i := range convs {
		n, err := s.unread(ctx, convs[i].ID, userID)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			counts[convs[i].Counterpart(userID)] = n
		}
	}
	return counts, nil
}

// unread 统计对方发送、晚于 viewer 水位线的消息数。从未读过时水位线为零值时间。
func (s *ChatService) unread(ctx context.Context, conversationID, viewerID string) (int64, error) {
	since, err := s.convRepo.GetLastRead(ctx, conversationID, viewerID)
	if err != nil {
		return 0, internalError(err)
	}
	n, err := s.convRepo.CountUnread(ctx, conversationID, viewerID, since)
	if err != nil {
		return 0, internalError(err)
	}
	return n, nil
}

func (s *ChatService) displayName(ctx context.Context, userID string) string {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil || user == nil || user.Username == "" {
		return userID
	}
	return user.Username
}
