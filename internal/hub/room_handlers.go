package hub

import (
	"context"

	"collaborative-workspace/internal/dto"
)

func (h *Hub) roomUsers(ctx context.Context, members []string) dto.RoomUsers {
	infos := h.rooms.ResolveMembers(ctx, members)
	users := make(dto.RoomUsers, 0, len(infos))
	for _, m := range infos {
		users = append(users, dto.UserObject{ID: m.ID, Username: m.Username})
	}
	return users
}

func (h *Hub) onCreateRoom(ctx context.Context, c *Client, cmd *dto.CreateRoom) error {
	room, myRooms, err := h.rooms.CreateRoom(ctx, c.userID, cmd.Name, cmd.ID)
	if err != nil {
		return err
	}
	h.subscribe(c, roomChannel(room.ID))

	c.emit(dto.RoomCreated{ID: room.ID, Name: room.Name})
	c.emit(dto.MyRoomsUpdate(dto.NewRoomViews(myRooms)))
	h.broadcast(roomChannel(room.ID), h.roomUsers(ctx, room.Members), nil)
	return nil
}

func (h *Hub) onJoinRoom(ctx context.Context, c *Client, cmd *dto.JoinRoom) error {
	res, err := h.rooms.JoinRoom(ctx, c.userID, cmd.ID)
	if err != nil {
		return err
	}
	channel := roomChannel(res.Room.ID)
	h.subscribe(c, channel)

	c.emit(dto.RoomJoined{
		ID:      res.Room.ID,
		Name:    res.Room.Name,
		Users:   dto.NewRoomView(*res.Room).Users,
		Files:   dto.NewFileViews(res.Files),
		Folders: dto.NewFolderViews(res.Folders),
	})
	if res.Added {
		h.broadcast(channel, dto.UserJoined{UserID: c.userID, RoomID: res.Room.ID}, c)
	}
	c.emit(dto.FilesUpdate(dto.NewFileViews(res.Files)))
	c.emit(dto.FoldersUpdate(dto.NewFolderViews(res.Folders)))
	h.broadcast(channel, h.roomUsers(ctx, res.Room.Members), nil)
	c.emit(dto.MyRoomsUpdate(dto.NewRoomViews(res.MyRooms)))
	return nil
}

func (h *Hub) onLeaveRoom(ctx context.Context, c *Client, cmd *dto.LeaveRoom) error {
	res, err := h.rooms.LeaveRoom(ctx, c.userID, cmd.ID)
	if err != nil {
		return err
	}
	channel := roomChannel(res.RoomID)
	h.unsubscribe(c, channel)

	// 离开房间同时离开该房间内打开的文件
	for fileID, roomID := range c.files {
		if roomID == res.RoomID {
			h.leaveFile(c, fileID)
		}
	}

	h.broadcast(channel, dto.UserLeft{UserID: c.userID, RoomID: res.RoomID}, nil)
	if res.Deleted {
		c.emit(dto.RoomDeleted{RoomID: res.RoomID})
		// 同一用户的其他连接也收到删除通知
		h.broadcast(channel, dto.RoomDeleted{RoomID: res.RoomID}, nil)
		h.dropRoomPresence(res.RoomID)
	} else {
		h.broadcast(channel, h.roomUsers(ctx, res.Remaining), nil)
	}
	c.emit(dto.MyRoomsUpdate(dto.NewRoomViews(res.MyRooms)))
	return nil
}

func (h *Hub) onGetMyRooms(ctx context.Context, c *Client) error {
	rooms, err := h.rooms.GetMyRooms(ctx, c.userID)
	if err != nil {
		return err
	}
	c.emit(dto.MyRoomsUpdate(dto.NewRoomViews(rooms)))
	return nil
}

// dropRoomPresence 丢弃已删除房间内所有文件的在线状态。
func (h *Hub) dropRoomPresence(roomID string) {
	for _, entry := range h.presence.Snapshot() {
		if entry.RoomID == roomID {
			h.dropFile(entry.FileID)
		}
	}
}
