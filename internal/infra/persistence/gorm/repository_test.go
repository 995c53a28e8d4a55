package gormpersistence_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"collaborative-workspace/internal/domain"
	gormpersistence "collaborative-workspace/internal/infra/persistence/gorm"
	"collaborative-workspace/internal/infra/setup"
	"collaborative-workspace/internal/repository"
)

// newTestDB 为每个测试创建独立的内存 SQLite 数据库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, setup.MigrateDB(db))
	return db
}

func TestGormRoomRepository_Membership(t *testing.T) {
	db := newTestDB(t)
	repo := gormpersistence.NewGormRoomRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.Room{ID: "r1", Name: "R1", Members: []string{"alice"}}))

	err := repo.Create(ctx, &domain.Room{ID: "r1", Name: "again", Members: []string{"bob"}})
	assert.ErrorIs(t, err, repository.ErrDuplicateEntry)

	added, err := repo.AddMember(ctx, "r1", "bob")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.AddMember(ctx, "r1", "bob")
	require.NoError(t, err)
	assert.False(t, added, "adding an existing member is a no-op")

	room, err := repo.FindByID(ctx, "r1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob"}, room.Members)

	rooms, err := repo.FindByMember(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "r1", rooms[0].ID)
	assert.ElementsMatch(t, []string{"alice", "bob"}, rooms[0].Members)

	remaining, err := repo.RemoveMember(ctx, "r1", "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, remaining)

	_, err = repo.RemoveMember(ctx, "r1", "alice")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrRoomNotFound)
}

func TestGormRoomRepository_DeleteIfEmpty(t *testing.T) {
	db := newTestDB(t)
	rooms := gormpersistence.NewGormRoomRepository(db)
	folders := gormpersistence.NewGormFolderRepository(db)
	files := gormpersistence.NewGormFileRepository(db)
	ctx := context.Background()

	require.NoError(t, rooms.Create(ctx, &domain.Room{ID: "r1", Name: "R1", Members: []string{"alice"}}))
	require.NoError(t, rooms.Create(ctx, &domain.Room{ID: "r2", Name: "R2", Members: []string{"bob"}}))
	require.NoError(t, folders.Create(ctx, &domain.Folder{ID: "f1", Name: "src", RoomID: "r1"}))
	require.NoError(t, files.Create(ctx, &domain.File{ID: "a", Name: "a.js", RoomID: "r1", FolderID: "f1", Language: "javascript"}))
	require.NoError(t, files.Create(ctx, &domain.File{ID: "b", Name: "b.js", RoomID: "r2", Language: "javascript"}))

	deleted, err := rooms.DeleteIfEmpty(ctx, "r1")
	require.NoError(t, err)
	assert.False(t, deleted, "a room with members is kept")
	kept, err := rooms.FindByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, kept.Members)

	_, err = rooms.RemoveMember(ctx, "r1", "alice")
	require.NoError(t, err)
	deleted, err = rooms.DeleteIfEmpty(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = rooms.DeleteIfEmpty(ctx, "r1")
	require.NoError(t, err, "deleting twice converges")
	assert.False(t, deleted)

	_, err = rooms.FindByID(ctx, "r1")
	assert.ErrorIs(t, err, repository.ErrRoomNotFound)
	left, err := files.ListByRoom(ctx, "r1")
	require.NoError(t, err)
	assert.Empty(t, left)
	leftFolders, err := folders.ListByRoom(ctx, "r1")
	require.NoError(t, err)
	assert.Empty(t, leftFolders)

	other, err := files.ListByRoom(ctx, "r2")
	require.NoError(t, err)
	assert.Len(t, other, 1, "other rooms are untouched")

	mine, err := rooms.FindByMember(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestGormRoomRepository_AddMemberToDeletedRoom(t *testing.T) {
	db := newTestDB(t)
	rooms := gormpersistence.NewGormRoomRepository(db)
	ctx := context.Background()

	require.NoError(t, rooms.Create(ctx, &domain.Room{ID: "r1", Name: "R1", Members: []string{"alice"}}))
	_, err := rooms.RemoveMember(ctx, "r1", "alice")
	require.NoError(t, err)
	deleted, err := rooms.DeleteIfEmpty(ctx, "r1")
	require.NoError(t, err)
	require.True(t, deleted)

	// 加入请求在房间删除之后才到达存储
	added, err := rooms.AddMember(ctx, "r1", "bob")
	assert.ErrorIs(t, err, repository.ErrRoomNotFound)
	assert.False(t, added)

	var orphans int64
	require.NoError(t, db.Model(&domain.RoomMember{}).Where("room_id = ?", "r1").Count(&orphans).Error)
	assert.Zero(t, orphans, "no member row may outlive its room")

	require.NoError(t, rooms.Create(ctx, &domain.Room{ID: "r1", Name: "R1 again", Members: []string{"carol"}}))
	fresh, err := rooms.FindByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"carol"}, fresh.Members)

	mine, err := rooms.FindByMember(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestGormTree_SiblingNamesAreUnique(t *testing.T) {
	db := newTestDB(t)
	folders := gormpersistence.NewGormFolderRepository(db)
	files := gormpersistence.NewGormFileRepository(db)
	ctx := context.Background()

	require.NoError(t, folders.Create(ctx, &domain.Folder{ID: "f1", Name: "src", RoomID: "r1"}))
	err := folders.Create(ctx, &domain.Folder{ID: "f2", Name: "src", RoomID: "r1"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEntry, "root siblings share a name")

	require.NoError(t, folders.Create(ctx, &domain.Folder{ID: "f3", Name: "src", RoomID: "r1", ParentFolderID: "f1"}))
	require.NoError(t, folders.Create(ctx, &domain.Folder{ID: "f4", Name: "src", RoomID: "r2"}))

	require.NoError(t, files.Create(ctx, &domain.File{ID: "a", Name: "a.js", RoomID: "r1", Language: "javascript"}))
	err = files.Create(ctx, &domain.File{ID: "b", Name: "a.js", RoomID: "r1", Language: "javascript"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEntry)
	require.NoError(t, files.Create(ctx, &domain.File{ID: "c", Name: "a.js", RoomID: "r1", FolderID: "f1", Language: "javascript"}))

	list, err := folders.ListByRoom(ctx, "r1")
	require.NoError(t, err)
	assert.Len(t, list, 2, "rejected insert leaves no row behind")

	_, err = folders.Rename(ctx, "f3", "r1", "lib")
	require.NoError(t, err)
	require.NoError(t, folders.Create(ctx, &domain.Folder{ID: "f5", Name: "lib", RoomID: "r1"}))
	_, err = folders.Rename(ctx, "f5", "r1", "src")
	assert.ErrorIs(t, err, repository.ErrDuplicateEntry)
	_, err = folders.Rename(ctx, "f5", "r2", "x")
	assert.ErrorIs(t, err, repository.ErrFolderNotFound)
}

func TestGormFolderRepository_DeleteTree(t *testing.T) {
	db := newTestDB(t)
	folders := gormpersistence.NewGormFolderRepository(db)
	files := gormpersistence.NewGormFileRepository(db)
	ctx := context.Background()

	// F
	// ├── sub1
	// │   └── sub2  (deep.js)
	// ├── mid.js    (in sub1)
	// └── top.js
	// G (keep.js)
	require.NoError(t, folders.Create(ctx, &domain.Folder{ID: "F", Name: "F", RoomID: "r1"}))
	require.NoError(t, folders.Create(ctx, &domain.Folder{ID: "sub1", Name: "sub1", RoomID: "r1", ParentFolderID: "F"}))
	require.NoError(t, folders.Create(ctx, &domain.Folder{ID: "sub2", Name: "sub2", RoomID: "r1", ParentFolderID: "sub1"}))
	require.NoError(t, folders.Create(ctx, &domain.Folder{ID: "G", Name: "G", RoomID: "r1"}))
	require.NoError(t, files.Create(ctx, &domain.File{ID: "top", Name: "top.js", RoomID: "r1", FolderID: "F", Language: "javascript"}))
	require.NoError(t, files.Create(ctx, &domain.File{ID: "mid", Name: "mid.js", RoomID: "r1", FolderID: "sub1", Language: "javascript"}))
	require.NoError(t, files.Create(ctx, &domain.File{ID: "deep", Name: "deep.js", RoomID: "r1", FolderID: "sub2", Language: "javascript"}))
	require.NoError(t, files.Create(ctx, &domain.File{ID: "keep", Name: "keep.js", RoomID: "r1", FolderID: "G", Language: "javascript"}))
	require.NoError(t, files.Create(ctx, &domain.File{ID: "root", Name: "root.js", RoomID: "r1", Language: "javascript"}))

	deletedFolders, deletedFiles, err := folders.DeleteTree(ctx, "F", "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"sub2", "sub1", "F"}, deletedFolders, "children are removed before their parent")
	assert.ElementsMatch(t, []string{"deep", "mid", "top"}, deletedFiles)

	remainingFolders, err := folders.ListByRoom(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, remainingFolders, 1)
	assert.Equal(t, "G", remainingFolders[0].ID)

	remainingFiles, err := files.ListByRoom(ctx, "r1")
	require.NoError(t, err)
	names := make([]string, 0, len(remainingFiles))
	for _, f := range remainingFiles {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"keep.js", "root.js"}, names)

	again, againFiles, err := folders.DeleteTree(ctx, "F", "r1")
	require.NoError(t, err)
	assert.Empty(t, again)
	assert.Empty(t, againFiles)
}

func TestGormFileRepository_UpdateContent(t *testing.T) {
	db := newTestDB(t)
	files := gormpersistence.NewGormFileRepository(db)
	ctx := context.Background()

	require.NoError(t, files.Create(ctx, &domain.File{ID: "a", Name: "a.js", RoomID: "r1", Language: "javascript", CreatedBy: "alice"}))

	_, err := files.UpdateContent(ctx, "a", "r1", "x=1", "alice")
	require.NoError(t, err)
	updated, err := files.UpdateContent(ctx, "a", "r1", "x=2", "bob")
	require.NoError(t, err)
	assert.Equal(t, "x=2", updated.Content, "last completed write wins")
	assert.Equal(t, "bob", updated.LastEditedBy)

	_, err = files.UpdateContent(ctx, "a", "r2", "nope", "bob")
	assert.ErrorIs(t, err, repository.ErrFileNotFound, "file must belong to the room")

	require.NoError(t, files.Delete(ctx, "a", "r1"))
	assert.ErrorIs(t, files.Delete(ctx, "a", "r1"), repository.ErrFileNotFound)
	_, err = files.UpdateContent(ctx, "a", "r1", "late", "bob")
	assert.ErrorIs(t, err, repository.ErrFileNotFound)
}

func TestGormConversationRepository_PairAndUnread(t *testing.T) {
	db := newTestDB(t)
	repo := gormpersistence.NewGormConversationRepository(db)
	ctx := context.Background()

	userA, userB := domain.CanonicalPair("bob", "alice")
	require.NoError(t, repo.Create(ctx, &domain.Conversation{ID: "c1", RoomID: "r1", UserA: userA, UserB: userB}))
	err := repo.Create(ctx, &domain.Conversation{ID: "c2", RoomID: "r1", UserA: userA, UserB: userB})
	assert.ErrorIs(t, err, repository.ErrDuplicateEntry)

	forward, err := repo.FindByPair(ctx, "r1", "alice", "bob")
	require.NoError(t, err)
	backward, err := repo.FindByPair(ctx, "r1", "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, forward.ID, backward.ID)

	_, err = repo.FindByPair(ctx, "r2", "alice", "bob")
	assert.ErrorIs(t, err, repository.ErrConversationNotFound)

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, text := range []string{"hi", "there"} {
		require.NoError(t, repo.AppendMessage(ctx, &domain.Message{
			ID:             fmt.Sprintf("m%d", i),
			ConversationID: "c1",
			Sender:         "alice",
			Text:           text,
			ReadBy:         []domain.ReadReceipt{{UserID: "alice", ReadAt: base}},
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		}))
	}

	messages, err := repo.ListMessages(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "hi", messages[0].Text)
	assert.Equal(t, "alice", messages[0].ReadBy[0].UserID)

	since, err := repo.GetLastRead(ctx, "c1", "bob")
	require.NoError(t, err)
	assert.True(t, since.IsZero(), "no watermark means epoch")

	count, err := repo.CountUnread(ctx, "c1", "bob", since)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	require.NoError(t, repo.SetLastRead(ctx, "c1", "bob", base))
	since, err = repo.GetLastRead(ctx, "c1", "bob")
	require.NoError(t, err)
	count, err = repo.CountUnread(ctx, "c1", "bob", since)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count, "only messages strictly after the watermark count")

	require.NoError(t, repo.SetLastRead(ctx, "c1", "bob", base.Add(time.Hour)))
	since, err = repo.GetLastRead(ctx, "c1", "bob")
	require.NoError(t, err)
	assert.WithinDuration(t, base.Add(time.Hour), since, time.Second)
	count, err = repo.CountUnread(ctx, "c1", "bob", since)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	count, err = repo.CountUnread(ctx, "c1", "alice", time.Time{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, count, "own messages never count as unread")

	convs, err := repo.ListByParticipant(ctx, "r1", "bob")
	require.NoError(t, err)
	assert.Len(t, convs, 1)
}

func TestGormUserRepository_Save(t *testing.T) {
	db := newTestDB(t)
	repo := gormpersistence.NewGormUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &domain.User{ID: "u1", Username: "alice", Password: "hash"}))
	err := repo.Save(ctx, &domain.User{ID: "u2", Username: "alice", Password: "hash"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEntry)

	user, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	users, err := repo.FindByIDs(ctx, []string{"u1", "ghost"})
	require.NoError(t, err)
	assert.Len(t, users, 1)

	_, err = repo.FindByID(ctx, "ghost")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}
