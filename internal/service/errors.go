package service

import (
	"errors"
	"fmt"

	"collaborative-workspace/internal/repository"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrRegistrationFailed   = errors.New("registration failed: username already exists")
	ErrInvalidToken         = errors.New("invalid token")
	ErrInternalServer       = errors.New("internal server error")
	ErrMissingFields        = errors.New("missing required fields")
	ErrForbidden            = errors.New("identity mismatch")

	ErrRoomNameRequired = errors.New("room name is required")
	ErrRoomIDRequired   = errors.New("room id is required")
	ErrRoomExists       = errors.New("room id already exists")
	ErrRoomNotFound     = errors.New("room not found")
	ErrNotRoomMember    = errors.New("not a member of this room")

	ErrFolderNotFound = errors.New("folder not found")
	ErrFolderGone     = errors.New("folder not found or already deleted")
	ErrFileNotFound   = errors.New("file not found")
	ErrFileGone       = errors.New("file not found or already deleted")
	ErrFileNotLive    = errors.New("file not found for real-time update")
	ErrDuplicateName  = errors.New("a file or folder with this name already exists")

	ErrRateLimited = errors.New("edit rate limit exceeded")
	ErrSelfMessage = errors.New("cannot message yourself")
)

// publicMessages 是发给客户端的固定文案。未列出的错误由调用方给出通用的 "Failed to ..." 文案。
var publicMessages = []struct {
	err error
	msg string
}{
	{ErrInvalidToken, "Invalid token"},
	{ErrMissingFields, "Missing required fields"},
	{ErrForbidden, "You can only act on your own behalf"},
	{ErrRoomNameRequired, "Room name is required"},
	{ErrRoomIDRequired, "Room ID is required"},
	{ErrRoomExists, "Room ID already exists"},
	{ErrRoomNotFound, "Room does not exist"},
	{ErrNotRoomMember, "You are not a member of this room"},
	{ErrFolderNotFound, "Folder not found"},
	{ErrFolderGone, "Folder not found or already deleted"},
	{ErrFileNotFound, "File not found"},
	{ErrFileGone, "File not found or already deleted"},
	{ErrFileNotLive, "File not found for real-time update"},
	{ErrDuplicateName, "A file or folder with this name already exists"},
	{ErrRateLimited, "Too many updates, slow down"},
	{ErrSelfMessage, "Cannot send a private message to yourself"},
}

// PublicMessage 返回 err 对应的客户端文案；未知错误返回 fallback。
func PublicMessage(err error, fallback string) string {
	for _, pm := range publicMessages {
		if errors.Is(err, pm.err) {
			return pm.msg
		}
	}
	return fallback
}

// mapRepoError 把存储层的 ErrNotFound 映射为 notFound，其余错误包装为 ErrInternalServer 并保留原因。
func mapRepoError(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return notFound
	}
	return internalError(err)
}

func internalError(err error) error {
	return fmt.Errorf("%w: %v", ErrInternalServer, err)
}
