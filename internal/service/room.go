package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"collaborative-workspace/internal/domain"
	"collaborative-workspace/internal/repository"
	"collaborative-workspace/internal/tasks"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

// TaskEnqueuer 投递后台任务，由 *asynq.Client 实现。
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// MemberInfo 是成员 ID 与展示名的组合。
type MemberInfo struct {
	ID       string
	Username string
}

// JoinResult 是 joinRoom 的结果快照。
type JoinResult struct {
	Room    *domain.Room
	Added   bool // 本次调用才成为成员
	Files   []domain.File
	Folders []domain.Folder
	MyRooms []domain.Room
}

// LeaveResult 是 leaveRoom 的结果。
type LeaveResult struct {
	RoomID    string
	Remaining []string
	Deleted   bool // 最后一名成员离开，房间已删除（或已排队删除）
	MyRooms   []domain.Room
}

// RoomService 负责房间成员关系：创建、加入、离开以及空房间的级联删除。
type RoomService struct {
	roomRepo   repository.RoomRepository
	userRepo   repository.UserRepository
	fileRepo   repository.FileRepository
	folderRepo repository.FolderRepository
	enqueuer   TaskEnqueuer
}

// NewRoomService 创建 RoomService 实例。enqueuer 可为 nil，此时级联删除失败只记录日志。
func NewRoomService(roomRepo repository.RoomRepository, userRepo repository.UserRepository, fileRepo repository.FileRepository, folderRepo repository.FolderRepository, enqueuer TaskEnqueuer) *RoomService {
	if roomRepo == nil {
		panic("RoomRepository cannot be nil for RoomService")
	}
	if userRepo == nil {
		panic("UserRepository cannot be nil for RoomService")
	}
	if fileRepo == nil {
		panic("FileRepository cannot be nil for RoomService")
	}
	if folderRepo == nil {
		panic("FolderRepository cannot be nil for RoomService")
	}
	return &RoomService{
		roomRepo:   roomRepo,
		userRepo:   userRepo,
		fileRepo:   fileRepo,
		folderRepo: folderRepo,
		enqueuer:   enqueuer,
	}
}

// CreateRoom 创建房间，调用者成为唯一成员。返回新房间和调用者的房间列表。
func (s *RoomService) CreateRoom(ctx context.Context, userID, name, id string) (*domain.Room, []domain.Room, error) {
	name = strings.TrimSpace(name)
	id = strings.TrimSpace(id)
	if name == "" {
		return nil, nil, ErrRoomNameRequired
	}
	if id == "" {
		return nil, nil, ErrRoomIDRequired
	}
	logCtx := logrus.WithFields(logrus.Fields{"room_id": id, "user_id": userID, "operation": "CreateRoom"})

	// 1. 显式检查 ID 是否已被占用
	if _, err := s.roomRepo.FindByID(ctx, id); err == nil {
		return nil, nil, ErrRoomExists
	} else if !errors.Is(err, repository.ErrRoomNotFound) {
		logCtx.WithError(err).Error("Failed to check room existence")
		return nil, nil, internalError(err)
	}

	// 2. 创建房间。检查与写入之间的竞争由主键兜底
	room := &domain.Room{ID: id, Name: name, Members: []string{userID}}
	if err := s.roomRepo.Create(ctx, room); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, nil, ErrRoomExists
		}
		logCtx.WithError(err).Error("Failed to create room")
		return nil, nil, internalError(err)
	}

	myRooms, err := s.GetMyRooms(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	logCtx.Info("Room created successfully")
	return room, myRooms, nil
}

// JoinRoom 把调用者加入房间（幂等），返回房间快照。
func (s *RoomService) JoinRoom(ctx context.Context, userID, roomID string) (*JoinResult, error) {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return nil, ErrRoomIDRequired
	}
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID, "operation": "JoinRoom"})

	if _, err := s.roomRepo.FindByID(ctx, roomID); err != nil {
		if !errors.Is(err, repository.ErrRoomNotFound) {
			logCtx.WithError(err).Error("Failed to load room")
		}
		return nil, mapRepoError(err, ErrRoomNotFound)
	}

	added, err := s.roomRepo.AddMember(ctx, roomID, userID)
	if err != nil {
		// 查找与加入之间房间被最后一名成员删除
		if !errors.Is(err, repository.ErrRoomNotFound) {
			logCtx.WithError(err).Error("Failed to add room member")
		}
		return nil, mapRepoError(err, ErrRoomNotFound)
	}

	// 重新读取，拿到包含本次加入的成员名单
	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) && added {
			// 撤销本次写入，不给已删除的房间留下成员行
			if _, rmErr := s.roomRepo.RemoveMember(ctx, roomID, userID); rmErr != nil && !errors.Is(rmErr, repository.ErrNotFound) {
				logCtx.WithError(rmErr).Warn("Failed to roll back member row")
			}
		}
		return nil, mapRepoError(err, ErrRoomNotFound)
	}
	files, err := s.fileRepo.ListByRoom(ctx, roomID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to list files")
		return nil, internalError(err)
	}
	folders, err := s.folderRepo.ListByRoom(ctx, roomID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to list folders")
		return nil, internalError(err)
	}
	myRooms, err := s.GetMyRooms(ctx, userID)
	if err != nil {
		return nil, err
	}

	logCtx.WithField("added", added).Info("User joined room")
	return &JoinResult{Room: room, Added: added, Files: files, Folders: folders, MyRooms: myRooms}, nil
}

// LeaveRoom 把调用者移出房间。最后一名成员离开时在一个事务内确认成员仍为空后级联删除房间；
// 期间有人加入则保留房间，删除失败时投递 room:cleanup 任务，让房间最终收敛。
func (s *RoomService) LeaveRoom(ctx context.Context, userID, roomID string) (*LeaveResult, error) {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return nil, ErrRoomIDRequired
	}
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID, "operation": "LeaveRoom"})

	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, mapRepoError(err, ErrRoomNotFound)
	}
	if !room.HasMember(userID) {
		return nil, ErrNotRoomMember
	}

	remaining, err := s.roomRepo.RemoveMember(ctx, roomID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotRoomMember
		}
		logCtx.WithError(err).Error("Failed to remove room member")
		return nil, internalError(err)
	}

	result := &LeaveResult{RoomID: roomID, Remaining: remaining}
	if len(remaining) == 0 {
		deleted, err := s.roomRepo.DeleteIfEmpty(ctx, roomID)
		switch {
		case err != nil:
			logCtx.WithError(err).Error("Cascade delete failed, scheduling cleanup")
			result.Deleted = true
			s.scheduleCleanup(ctx, roomID)
		case deleted:
			result.Deleted = true
			logCtx.Info("Last member left, room deleted")
		default:
			// 离开与删除之间有新成员加入
			members, err := s.roomRepo.ListMembers(ctx, roomID)
			if err != nil {
				logCtx.WithError(err).Error("Failed to reload members")
				return nil, internalError(err)
			}
			result.Remaining = members
			logCtx.WithField("members", len(members)).Info("Room gained a member before deletion, keeping it")
		}
	}

	myRooms, err := s.GetMyRooms(ctx, userID)
	if err != nil {
		return nil, err
	}
	result.MyRooms = myRooms
	return result, nil
}

// GetMyRooms 返回用户所在的全部房间。
func (s *RoomService) GetMyRooms(ctx context.Context, userID string) ([]domain.Room, error) {
	rooms, err := s.roomRepo.FindByMember(ctx, userID)
	if err != nil {
		logrus.WithFields(logrus.Fields{"user_id": userID, "operation": "GetMyRooms"}).WithError(err).Error("Failed to list rooms")
		return nil, internalError(err)
	}
	return rooms, nil
}

// IsMember 判断用户当前是否为房间成员。房间不存在时返回 false。
func (s *RoomService) IsMember(ctx context.Context, roomID, userID string) (bool, error) {
	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return false, nil
		}
		return false, internalError(err)
	}
	return room.HasMember(userID), nil
}

// ResolveMembers 尽力把成员 ID 解析为展示名，查找失败时用 ID 本身代替，从不返回错误。
func (s *RoomService) ResolveMembers(ctx context.Context, memberIDs []string) []MemberInfo {
	names := make(map[string]string, len(memberIDs))
	if len(memberIDs) > 0 {
		users, err := s.userRepo.FindByIDs(ctx, memberIDs)
		if err != nil {
			logrus.WithField("operation", "ResolveMembers").WithError(err).Warn("Failed to resolve member names, falling back to ids")
		}
		for _, u := range users {
			if u.Username != "" {
				names[u.ID] = u.Username
			}
		}
	}

	infos := make([]MemberInfo, 0, len(memberIDs))
	for _, id := range memberIDs {
		name, ok := names[id]
		if !ok {
			name = id
		}
		infos = append(infos, MemberInfo{ID: id, Username: name})
	}
	return infos
}

// CleanupRoom 在成员仍为空时完成房间的级联删除，供 room:cleanup 任务调用。
// 房间已被删除或重新有了成员时直接返回 nil。
func (s *RoomService) CleanupRoom(ctx context.Context, roomID string) error {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "operation": "CleanupRoom"})

	deleted, err := s.roomRepo.DeleteIfEmpty(ctx, roomID)
	if err != nil {
		return internalError(err)
	}
	if !deleted {
		logCtx.Info("Room already deleted or has members again, skipping cleanup")
		return nil
	}
	logCtx.Info("Room cleanup completed")
	return nil
}

func (s *RoomService) scheduleCleanup(ctx context.Context, roomID string) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "operation": "scheduleCleanup"})
	if s.enqueuer == nil {
		logCtx.Warn("No task enqueuer configured, room cleanup not scheduled")
		return
	}
	task, err := tasks.NewRoomCleanupTask(roomID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to build room cleanup task")
		return
	}
	// 命令的 ctx 可能已超时，投递使用独立的期限
	enqueueCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if _, err := s.enqueuer.EnqueueContext(enqueueCtx, task); err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		logCtx.WithError(err).Error("Failed to enqueue room cleanup task")
		return
	}
	logCtx.Info("Room cleanup task enqueued")
}
