package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"collaborative-workspace/internal/dto"
	gormpersistence "collaborative-workspace/internal/infra/persistence/gorm"
	"collaborative-workspace/internal/infra/setup"
	"collaborative-workspace/internal/presence"
	"collaborative-workspace/internal/repository"
	"collaborative-workspace/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// noLimitState 是不做限流的 StateRepository。
type noLimitState struct{}

func (noLimitState) CheckRateLimit(context.Context, string, int, time.Duration) (bool, error) {
	return false, nil
}
func (noLimitState) Ping(context.Context) error { return nil }

type testEnv struct {
	hub   *Hub
	auth  *service.AuthService
	rooms repository.RoomRepository
	files repository.FileRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithRooms(t, nil)
}

// newTestEnvWithRooms 允许测试包装 RoomService 使用的房间存储，env.rooms 仍指向未包装的实现。
func newTestEnvWithRooms(t *testing.T, wrap func(repository.RoomRepository) repository.RoomRepository) *testEnv {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:hub_%s?mode=memory&cache=shared", name)), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, setup.MigrateDB(db))

	userRepo := gormpersistence.NewGormUserRepository(db)
	roomRepo := gormpersistence.NewGormRoomRepository(db)
	folderRepo := gormpersistence.NewGormFolderRepository(db)
	fileRepo := gormpersistence.NewGormFileRepository(db)
	convRepo := gormpersistence.NewGormConversationRepository(db)

	auth, err := service.NewAuthService(userRepo, "hub-test-secret", 1)
	require.NoError(t, err)

	var serviceRooms repository.RoomRepository = roomRepo
	if wrap != nil {
		serviceRooms = wrap(roomRepo)
	}
	h := NewHub(Services{
		Auth:  auth,
		Rooms: service.NewRoomService(serviceRooms, userRepo, fileRepo, folderRepo, nil),
		Tree:  service.NewTreeService(folderRepo, fileRepo),
		Docs:  service.NewDocumentService(fileRepo, noLimitState{}, 0, time.Second),
		Chat:  service.NewChatService(convRepo, userRepo),
	}, presence.NewStore(), 5*time.Second)

	return &testEnv{hub: h, auth: auth, rooms: roomRepo, files: fileRepo}
}

// connect 注册一个不带 socket 的客户端，测试直接读取它的 send 通道。
func (e *testEnv) connect(userID string) *Client {
	c := NewClient(e.hub, nil, userID)
	e.hub.registerClient(c)
	return c
}

type frame struct {
	Event string
	Data  json.RawMessage
}

// drain 取出客户端当前排队的全部帧。
func drain(t *testing.T, c *Client) []frame {
	t.Helper()
	var frames []frame
	for {
		select {
		case raw, ok := <-c.send:
			if !ok {
				return frames
			}
			var f frame
			require.NoError(t, json.Unmarshal(raw, &f))
			frames = append(frames, f)
		default:
			return frames
		}
	}
}

func events(frames []frame) []string {
	names := make([]string, 0, len(frames))
	for _, f := range frames {
		names = append(names, f.Event)
	}
	return names
}

// last 返回最后一个名为 event 的帧并解码到 v。
func last(t *testing.T, frames []frame, event string, v interface{}) bool {
	t.Helper()
	for i := len(frames) - 1; i >= 0; i-- {
		if frames[i].Event == event {
			require.NoError(t, json.Unmarshal(frames[i].Data, v))
			return true
		}
	}
	return false
}

// activeUsers 从在线快照中取出文件的在线用户。
func activeUsers(h *Hub, fileID string) []string {
	for _, entry := range h.presence.Snapshot() {
		if entry.FileID == fileID {
			return entry.Users
		}
	}
	return []string{}
}

func errorMessage(t *testing.T, frames []frame) string {
	t.Helper()
	var ev dto.ErrorEvent
	if !last(t, frames, "error", &ev) {
		return ""
	}
	return ev.Message
}

func TestHub_RoomLifecycle(t *testing.T) {
	env := newTestEnv(t)
	h := env.hub
	alice, bob := env.connect("alice"), env.connect("bob")

	h.handleCommand(alice, &dto.CreateRoom{Name: "Room", ID: "r1"})
	got := drain(t, alice)
	assert.Equal(t, []string{"roomCreated", "myRoomsUpdate", "roomUsers"}, events(got))

	h.handleCommand(alice, &dto.CreateRoom{Name: "Again", ID: "r1"})
	assert.Equal(t, "Room ID already exists", errorMessage(t, drain(t, alice)))

	h.handleCommand(bob, &dto.JoinRoom{ID: "r1"})
	bobFrames := drain(t, bob)
	assert.Equal(t, []string{"roomJoined", "filesUpdate", "foldersUpdate", "roomUsers", "myRoomsUpdate"}, events(bobFrames))
	var joined dto.RoomJoined
	require.True(t, last(t, bobFrames, "roomJoined", &joined))
	assert.ElementsMatch(t, []string{"alice", "bob"}, joined.Users)

	aliceFrames := drain(t, alice)
	assert.Equal(t, []string{"userJoined", "roomUsers"}, events(aliceFrames))

	// 重复加入不再通知其他成员
	h.handleCommand(bob, &dto.JoinRoom{ID: "r1"})
	drain(t, bob)
	assert.NotContains(t, events(drain(t, alice)), "userJoined")

	h.handleCommand(bob, &dto.LeaveRoom{ID: "r1"})
	assert.Equal(t, []string{"myRoomsUpdate"}, events(drain(t, bob)))
	assert.Equal(t, []string{"userLeft", "roomUsers"}, events(drain(t, alice)))

	h.handleCommand(bob, &dto.LeaveRoom{ID: "r1"})
	assert.Equal(t, "You are not a member of this room", errorMessage(t, drain(t, bob)))

	h.handleCommand(alice, &dto.LeaveRoom{ID: "r1"})
	aliceFrames = drain(t, alice)
	assert.Contains(t, events(aliceFrames), "roomDeleted")
	_, err := env.rooms.FindByID(context.Background(), "r1")
	assert.ErrorIs(t, err, repository.ErrRoomNotFound)

	h.handleCommand(bob, &dto.JoinRoom{ID: "r1"})
	assert.Equal(t, "Room does not exist", errorMessage(t, drain(t, bob)))
}

// racingRoomRepo 在下一次 AddMember 写入前执行一次 beforeAdd。
type racingRoomRepo struct {
	repository.RoomRepository
	beforeAdd func(ctx context.Context)
}

func (r *racingRoomRepo) AddMember(ctx context.Context, roomID, userID string) (bool, error) {
	if hook := r.beforeAdd; hook != nil {
		r.beforeAdd = nil
		hook(ctx)
	}
	return r.RoomRepository.AddMember(ctx, roomID, userID)
}

func TestHub_JoinRacingLastLeaveLeavesNoOrphanMember(t *testing.T) {
	racing := &racingRoomRepo{}
	env := newTestEnvWithRooms(t, func(inner repository.RoomRepository) repository.RoomRepository {
		racing.RoomRepository = inner
		return racing
	})
	h := env.hub
	ctx := context.Background()
	alice, bob, carol := env.connect("alice"), env.connect("bob"), env.connect("carol")

	h.handleCommand(alice, &dto.CreateRoom{Name: "Room", ID: "r1"})
	drain(t, alice)

	// bob 的查找已经通过，最后一名成员在插入前离开并删除了房间
	racing.beforeAdd = func(ctx context.Context) {
		res, err := h.rooms.LeaveRoom(ctx, "alice", "r1")
		require.NoError(t, err)
		require.True(t, res.Deleted)
	}
	h.handleCommand(bob, &dto.JoinRoom{ID: "r1"})
	assert.Equal(t, "Room does not exist", errorMessage(t, drain(t, bob)))

	members, err := env.rooms.ListMembers(ctx, "r1")
	require.NoError(t, err)
	assert.Empty(t, members, "no member row may outlive its room")

	h.handleCommand(carol, &dto.CreateRoom{Name: "Fresh", ID: "r1"})
	require.Contains(t, events(drain(t, carol)), "roomCreated")
	room, err := env.rooms.FindByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"carol"}, room.Members)

	h.handleCommand(bob, &dto.GetMyRooms{})
	var mine dto.MyRoomsUpdate
	require.True(t, last(t, drain(t, bob), "myRoomsUpdate", &mine))
	assert.Empty(t, mine)
}

func TestHub_LeaveRacingJoinKeepsRoom(t *testing.T) {
	env := newTestEnv(t)
	h := env.hub
	ctx := context.Background()
	alice, bob := env.connect("alice"), env.connect("bob")

	h.handleCommand(alice, &dto.CreateRoom{Name: "Room", ID: "r1"})
	drain(t, alice)
	_, err := env.rooms.RemoveMember(ctx, "r1", "alice")
	require.NoError(t, err)
	// 成员名单清空之后、删除之前有人加入
	added, err := env.rooms.AddMember(ctx, "r1", "bob")
	require.NoError(t, err)
	require.True(t, added)

	require.NoError(t, h.rooms.CleanupRoom(ctx, "r1"))
	room, err := env.rooms.FindByID(ctx, "r1")
	require.NoError(t, err, "a room that just gained a member must survive")
	assert.Equal(t, []string{"bob"}, room.Members)

	h.handleCommand(bob, &dto.GetMyRooms{})
	var mine dto.MyRoomsUpdate
	require.True(t, last(t, drain(t, bob), "myRoomsUpdate", &mine))
	assert.Len(t, mine, 1)
}

// setupSharedFile 建房间 r1，两人加入并打开同一个文件，返回文件 ID。
func setupSharedFile(t *testing.T, env *testEnv, a, b *Client) string {
	t.Helper()
	h := env.hub
	h.handleCommand(a, &dto.CreateRoom{Name: "Room", ID: "r1"})
	h.handleCommand(b, &dto.JoinRoom{ID: "r1"})
	h.handleCommand(a, &dto.CreateFile{Name: "main.go", RoomID: "r1"})

	var created dto.FileView
	require.True(t, last(t, drain(t, a), "fileCreated", &created))
	assert.Equal(t, "go", created.Language)
	assert.Nil(t, created.FolderID)
	drain(t, b)

	h.handleCommand(a, &dto.JoinFile{FileID: created.ID, RoomID: "r1"})
	h.handleCommand(b, &dto.JoinFile{FileID: created.ID, RoomID: "r1"})
	return created.ID
}

func TestHub_EditPropagationAndLastWriteWins(t *testing.T) {
	env := newTestEnv(t)
	h := env.hub
	alice, bob := env.connect("alice"), env.connect("bob")
	fileID := setupSharedFile(t, env, alice, bob)

	aliceFrames := drain(t, alice)
	var joinedFile dto.UserJoinedFile
	require.True(t, last(t, aliceFrames, "userJoinedFile", &joinedFile))
	assert.Equal(t, []string{"alice", "bob"}, joinedFile.ActiveUsers)
	bobFrames := drain(t, bob)
	var active dto.ActiveUsersInFile
	require.True(t, last(t, bobFrames, "activeUsersInFile", &active))
	assert.Equal(t, []string{"alice", "bob"}, active.ActiveUsers)

	first, second := "package main", "package main\n\nfunc main() {}"
	h.handleCommand(alice, &dto.FileContentChange{FileID: fileID, RoomID: "r1", Content: &first, Timestamp: json.RawMessage(`1`)})

	var change dto.FileContentChanged
	require.True(t, last(t, drain(t, bob), "fileContentChange", &change))
	assert.Equal(t, first, change.Content)
	assert.Equal(t, "alice", change.UserID)
	assert.Equal(t, "alice", change.LastEditedBy)

	aliceFrames = drain(t, alice)
	assert.Equal(t, []string{"fileContentChangeConfirm"}, events(aliceFrames), "发送者只收到确认")

	h.handleCommand(bob, &dto.FileContentChange{FileID: fileID, RoomID: "r1", Content: &second})
	drain(t, bob)
	require.True(t, last(t, drain(t, alice), "fileContentChange", &change))
	assert.Equal(t, second, change.Content)

	stored, err := env.files.FindByID(context.Background(), fileID)
	require.NoError(t, err)
	assert.Equal(t, second, stored.Content, "最后完成的写入生效")
	assert.Equal(t, "bob", stored.LastEditedBy)

	h.handleCommand(alice, &dto.FileContentChange{FileID: "missing", RoomID: "r1", Content: &first})
	assert.Equal(t, "File not found for real-time update", errorMessage(t, drain(t, alice)))
	assert.Empty(t, drain(t, bob))

	h.handleCommand(alice, &dto.FileContentChange{FileID: fileID, RoomID: "r1"})
	assert.Equal(t, "Missing required fields", errorMessage(t, drain(t, alice)))

	saved := "// saved"
	h.handleCommand(alice, &dto.SaveFile{FileID: fileID, RoomID: "r1", Content: &saved})
	assert.Equal(t, []string{"fileSaved", "filesUpdate"}, events(drain(t, alice)))
	bobFrames = drain(t, bob)
	var sync dto.FileContentSync
	require.True(t, last(t, bobFrames, "fileContentSync", &sync))
	assert.True(t, sync.SavedManually)
	assert.Equal(t, saved, sync.Content)
}

func TestHub_DisconnectRemovesPresence(t *testing.T) {
	env := newTestEnv(t)
	h := env.hub
	alice, bob := env.connect("alice"), env.connect("bob")
	fileID := setupSharedFile(t, env, alice, bob)
	drain(t, alice)

	h.unregisterClient(bob)
	h.releasePresence(bob)

	var left dto.UserLeftFile
	require.True(t, last(t, drain(t, alice), "userLeftFile", &left))
	assert.Equal(t, "bob", left.UserID)
	assert.Equal(t, []string{"alice"}, left.ActiveUsers)
	assert.Equal(t, []string{"alice"}, activeUsers(h, fileID))

	// 已关闭的客户端不会被重新订阅
	h.subscribe(bob, roomChannel("r1"))
	assert.False(t, h.isSubscribed(bob, roomChannel("r1")))
}

func TestHub_SecondConnectionKeepsPresence(t *testing.T) {
	env := newTestEnv(t)
	h := env.hub
	alice, bob := env.connect("alice"), env.connect("bob")
	fileID := setupSharedFile(t, env, alice, bob)

	bob2 := env.connect("bob")
	h.handleCommand(bob2, &dto.JoinRoom{ID: "r1"})
	h.handleCommand(bob2, &dto.JoinFile{FileID: fileID, RoomID: "r1"})
	drain(t, alice)

	h.handleCommand(bob, &dto.LeaveFile{FileID: fileID, RoomID: "r1"})
	assert.NotContains(t, events(drain(t, alice)), "userLeftFile")
	assert.Equal(t, []string{"alice", "bob"}, activeUsers(h, fileID))
}

func TestHub_DeleteFileDropsPresence(t *testing.T) {
	env := newTestEnv(t)
	h := env.hub
	alice, bob := env.connect("alice"), env.connect("bob")
	fileID := setupSharedFile(t, env, alice, bob)
	drain(t, alice)
	drain(t, bob)

	h.handleCommand(bob, &dto.DeleteFile{FileID: fileID, RoomID: "r1"})
	assert.Equal(t, []string{"filesUpdate", "fileDeleted"}, events(drain(t, alice)))
	assert.Empty(t, activeUsers(h, fileID))

	h.handleCommand(bob, &dto.DeleteFile{FileID: fileID, RoomID: "r1"})
	assert.Equal(t, "File not found or already deleted", errorMessage(t, drain(t, bob)))
}

func TestHub_TreeOperations(t *testing.T) {
	env := newTestEnv(t)
	h := env.hub
	alice, mallory := env.connect("alice"), env.connect("mallory")
	h.handleCommand(alice, &dto.CreateRoom{Name: "Room", ID: "r1"})
	drain(t, alice)

	h.handleCommand(mallory, &dto.CreateFile{Name: "x.js", RoomID: "r1"})
	assert.Equal(t, "You are not a member of this room", errorMessage(t, drain(t, mallory)))

	h.handleCommand(alice, &dto.CreateFolder{Name: "src", RoomID: "r1"})
	var folder dto.FolderView
	require.True(t, last(t, drain(t, alice), "folderCreated", &folder))

	h.handleCommand(alice, &dto.CreateFile{Name: "a.py", RoomID: "r1", FolderID: folder.ID})
	var file dto.FileView
	require.True(t, last(t, drain(t, alice), "fileCreated", &file))
	assert.Equal(t, "python", file.Language)

	h.handleCommand(alice, &dto.CreateFile{Name: "a.py", RoomID: "r1", FolderID: folder.ID})
	assert.Equal(t, "A file or folder with this name already exists", errorMessage(t, drain(t, alice)))

	h.handleCommand(alice, &dto.CreateFile{Name: "b.py", RoomID: "r1", FolderID: "nope"})
	assert.Equal(t, "Folder not found", errorMessage(t, drain(t, alice)))

	h.handleCommand(alice, &dto.RenameFolder{FolderID: folder.ID, RoomID: "r1", Name: "lib"})
	var renamed dto.FolderRenamed
	require.True(t, last(t, drain(t, alice), "folderRenamed", &renamed))
	assert.Equal(t, "lib", renamed.Name)

	h.handleCommand(mallory, &dto.GetFile{FileID: file.ID})
	assert.Equal(t, "File not found", errorMessage(t, drain(t, mallory)))

	h.handleCommand(alice, &dto.GetFile{FileID: file.ID})
	assert.Contains(t, events(drain(t, alice)), "fileContent")

	h.handleCommand(alice, &dto.DeleteFolder{FolderID: folder.ID, RoomID: "r1"})
	aliceFrames := drain(t, alice)
	assert.Equal(t, []string{"foldersUpdate", "filesUpdate", "folderDeleted"}, events(aliceFrames))
	var files dto.FilesUpdate
	require.True(t, last(t, aliceFrames, "filesUpdate", &files))
	assert.Empty(t, files)

	h.handleCommand(alice, &dto.DeleteFolder{FolderID: folder.ID, RoomID: "r1"})
	assert.Equal(t, "Folder not found or already deleted", errorMessage(t, drain(t, alice)))
}

func TestHub_PrivateChat(t *testing.T) {
	env := newTestEnv(t)
	h := env.hub
	alice, bob := env.connect("alice"), env.connect("bob")

	h.handleCommand(alice, &dto.JoinPrivateChat{RoomID: "r1", UserID: "alice"})
	h.handleCommand(bob, &dto.JoinPrivateChat{RoomID: "r1", UserID: "bob"})
	h.handleCommand(bob, &dto.JoinPrivateChat{RoomID: "r1", UserID: "alice"})
	assert.Equal(t, "You can only act on your own behalf", errorMessage(t, drain(t, bob)))

	h.handleCommand(alice, &dto.SendPrivateMessage{Token: "forged", RoomID: "r1", ToUserID: "bob", Message: "hi"})
	assert.Equal(t, "Invalid token", errorMessage(t, drain(t, alice)))

	token, err := env.auth.GenerateToken("alice")
	require.NoError(t, err)

	h.handleCommand(alice, &dto.SendPrivateMessage{Token: token, RoomID: "r1", ToUserID: "bob", Message: "   "})
	assert.Equal(t, "Missing required fields", errorMessage(t, drain(t, alice)))

	h.handleCommand(alice, &dto.SendPrivateMessage{Token: token, RoomID: "r1", ToUserID: "bob", Message: "hello"})
	aliceFrames := drain(t, alice)
	assert.Equal(t, []string{"newPrivateMessage", "unreadCountUpdate", "messageDelivered"}, events(aliceFrames))

	bobFrames := drain(t, bob)
	var msg dto.NewPrivateMessage
	require.True(t, last(t, bobFrames, "newPrivateMessage", &msg))
	assert.Equal(t, "alice", msg.Sender)
	assert.Equal(t, "hello", msg.Message)
	var unread dto.UnreadCountUpdate
	require.True(t, last(t, bobFrames, "unreadCountUpdate", &unread))
	assert.Equal(t, dto.UnreadCountUpdate{UserID: "alice", Count: 1}, unread)

	h.handleCommand(bob, &dto.GetUnreadCounts{RoomID: "r1", UserID: "bob"})
	var counts dto.UnreadCounts
	require.True(t, last(t, drain(t, bob), "unreadCounts", &counts))
	assert.Equal(t, dto.UnreadCounts{"alice": 1}, counts)

	// 确保水位线严格晚于消息时间
	time.Sleep(5 * time.Millisecond)
	h.handleCommand(bob, &dto.MarkAsRead{RoomID: "r1", UserID: "bob", OtherUserID: "alice"})
	bobFrames = drain(t, bob)
	require.True(t, last(t, bobFrames, "unreadCountUpdate", &unread))
	assert.Equal(t, int64(0), unread.Count)
	assert.Contains(t, events(bobFrames), "markAsReadSuccess")
	require.True(t, last(t, drain(t, alice), "unreadCountUpdate", &unread))
	assert.Equal(t, "bob", unread.UserID)

	h.handleCommand(bob, &dto.GetUnreadCounts{RoomID: "r1", UserID: "bob"})
	// json 解码会合并进已有的 map
	counts = nil
	require.True(t, last(t, drain(t, bob), "unreadCounts", &counts))
	assert.Empty(t, counts)

	h.handleCommand(alice, &dto.FetchPrivateChat{RoomID: "r1", UserA: "bob", UserB: "alice"})
	var history dto.PrivateChatHistory
	require.True(t, last(t, drain(t, alice), "privateChatHistory", &history))
	assert.Equal(t, "bob", history.OtherUserID)
	require.Len(t, history.Messages, 1)
	assert.Equal(t, "hello", history.Messages[0].Message)

	h.handleCommand(alice, &dto.FetchPrivateChat{RoomID: "r1", UserA: "bob", UserB: "carol"})
	assert.Equal(t, "You can only act on your own behalf", errorMessage(t, drain(t, alice)))
}

func TestHub_TypingIsRoomScopedAndExcludesSender(t *testing.T) {
	env := newTestEnv(t)
	h := env.hub
	alice, bob, outsider := env.connect("alice"), env.connect("bob"), env.connect("eve")
	h.handleCommand(alice, &dto.CreateRoom{Name: "Room", ID: "r1"})
	h.handleCommand(bob, &dto.JoinRoom{ID: "r1"})
	drain(t, alice)
	drain(t, bob)

	h.handleCommand(alice, &dto.Typing{RoomID: "r1", FileID: "f1", IsTyping: true})
	assert.Empty(t, drain(t, alice))
	assert.Empty(t, drain(t, outsider))
	var typing dto.UserTyping
	require.True(t, last(t, drain(t, bob), "userTyping", &typing))
	assert.Equal(t, dto.UserTyping{UserID: "alice", FileID: "f1", IsTyping: true}, typing)

	h.handleCommand(outsider, &dto.CursorMove{RoomID: "r1", FileID: "f1", Position: json.RawMessage(`{"line":1}`)})
	assert.Empty(t, drain(t, alice))
}

func TestHub_SweepPresence(t *testing.T) {
	env := newTestEnv(t)
	h := env.hub
	alice, bob := env.connect("alice"), env.connect("bob")
	fileID := setupSharedFile(t, env, alice, bob)
	drain(t, alice)

	allMembers := func(context.Context, string, string) (bool, error) { return true, nil }
	assert.Zero(t, h.SweepPresence(context.Background(), allMembers))

	// bob 失去成员资格后被巡检移除
	notBob := func(_ context.Context, _ string, userID string) (bool, error) { return userID != "bob", nil }
	assert.Equal(t, 1, h.SweepPresence(context.Background(), notBob))
	assert.Equal(t, []string{"alice"}, activeUsers(h, fileID))
	assert.Contains(t, events(drain(t, alice)), "userLeftFile")

	// 没有任何连接的在线条目同样被移除
	h.presence.Add(fileID, "r1", "ghost")
	assert.Equal(t, 1, h.SweepPresence(context.Background(), allMembers))
	assert.Equal(t, []string{"alice"}, activeUsers(h, fileID))
}

func TestHub_RecoversFromPanic(t *testing.T) {
	env := newTestEnv(t)
	alice := env.connect("alice")
	// 未初始化的 Hub 依赖会在分发中 panic
	env.hub.rooms = nil

	assert.NotPanics(t, func() {
		env.hub.handleCommand(alice, &dto.GetMyRooms{})
	})
	assert.Equal(t, "Failed to fetch your rooms", errorMessage(t, drain(t, alice)))
}

func TestHub_FullMessageChannelRepliesBusy(t *testing.T) {
	env := newTestEnv(t)
	h := env.hub
	alice := env.connect("alice")

	// Run 未启动，通道填满后不会被消费
	for len(h.messageChan) < cap(h.messageChan) {
		h.messageChan <- HubMessage{Type: "command"}
	}

	alice.submit(&dto.GetMyRooms{})
	assert.Equal(t, "Server busy, please retry", errorMessage(t, drain(t, alice)))
}
