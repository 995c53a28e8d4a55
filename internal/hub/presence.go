package hub

import (
	"context"
	"time"

	"collaborative-workspace/internal/dto"
	"collaborative-workspace/internal/metrics"

	"github.com/sirupsen/logrus"
)

// MembershipChecker 判断用户是否仍是房间成员。
type MembershipChecker func(ctx context.Context, roomID, userID string) (bool, error)

// onTyping 和 onCursorMove 是房间范围内的瞬时信号：不落库，不回发给发送者。
func (h *Hub) onTyping(c *Client, cmd *dto.Typing) {
	channel := roomChannel(cmd.RoomID)
	if cmd.RoomID == "" || !h.isSubscribed(c, channel) {
		return
	}
	h.broadcast(channel, dto.UserTyping{UserID: c.userID, FileID: cmd.FileID, IsTyping: cmd.IsTyping}, c)
}

func (h *Hub) onCursorMove(c *Client, cmd *dto.CursorMove) {
	channel := roomChannel(cmd.RoomID)
	if cmd.RoomID == "" || !h.isSubscribed(c, channel) {
		return
	}
	h.broadcast(channel, dto.UserCursorMoved{UserID: c.userID, FileID: cmd.FileID, Position: cmd.Position}, c)
}

// releasePresence 在连接关闭后清理它加入过的文件。
// 同一用户还有其他连接留在文件上时保留在线状态。
func (h *Hub) releasePresence(c *Client) {
	for fileID := range c.files {
		channel := fileChannel(fileID)
		delete(c.files, fileID)
		if h.userSubscribed(c.userID, channel, c) {
			continue
		}
		active, removed := h.presence.Remove(fileID, c.userID)
		if !removed {
			continue
		}
		h.broadcast(channel, dto.UserLeftFile{
			FileID:      fileID,
			UserID:      c.userID,
			LeftAt:      time.Now().UTC(),
			ActiveUsers: active,
		}, c)
	}
	h.observePresence()
}

// SweepPresence 移除已失效的在线状态：用户已不是房间成员，或没有任何连接留在该文件上。
// 每次移除都会通知文件上的其他人。返回移除的条目数。
func (h *Hub) SweepPresence(ctx context.Context, isMember MembershipChecker) int {
	logCtx := logrus.WithField("operation", "SweepPresence")
	type membershipKey struct{ roomID, userID string }
	memberCache := make(map[membershipKey]bool)

	removedCount := 0
	for _, entry := range h.presence.Snapshot() {
		channel := fileChannel(entry.FileID)
		for _, userID := range entry.Users {
			if ctx.Err() != nil {
				return removedCount
			}

			stale := !h.userSubscribed(userID, channel, nil)
			if !stale {
				key := membershipKey{entry.RoomID, userID}
				member, cached := memberCache[key]
				if !cached {
					var err error
					member, err = isMember(ctx, entry.RoomID, userID)
					if err != nil {
						// 无法确认时保留
						logCtx.WithError(err).WithFields(logrus.Fields{"room_id": entry.RoomID, "user_id": userID}).Warn("Membership check failed, keeping presence")
						continue
					}
					memberCache[key] = member
				}
				stale = !member
			}
			if !stale {
				continue
			}

			h.unsubscribeUser(userID, channel)
			active, removed := h.presence.Remove(entry.FileID, userID)
			if !removed {
				continue
			}
			removedCount++
			h.broadcast(channel, dto.UserLeftFile{
				FileID:      entry.FileID,
				UserID:      userID,
				LeftAt:      time.Now().UTC(),
				ActiveUsers: active,
			}, nil)
			logCtx.WithFields(logrus.Fields{"room_id": entry.RoomID, "file_id": entry.FileID, "user_id": userID}).Info("Removed stale presence")
		}
	}
	h.observePresence()
	return removedCount
}

// observePresence 更新在线条目数指标。
func (h *Hub) observePresence() {
	total := 0
	for _, entry := range h.presence.Snapshot() {
		total += len(entry.Users)
	}
	metrics.ActiveFileEditors.Set(float64(total))
}
