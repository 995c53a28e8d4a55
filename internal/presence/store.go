// Package presence 记录每个文件当前的在线编辑者。数据只保存在内存中，随连接生灭。
package presence

import (
	"sort"
	"sync"
)

// Entry 是某个文件的在线快照。
type Entry struct {
	FileID string
	RoomID string
	Users  []string
}

type fileSet struct {
	roomID string
	users  map[string]struct{}
}

// Store 维护 fileID -> {roomID, userID 集合}。所有方法并发安全。
type Store struct {
	mu    sync.RWMutex
	files map[string]*fileSet
}

func NewStore() *Store {
	return &Store{files: make(map[string]*fileSet)}
}

// Add 把用户加入文件的在线集合，返回加入后的在线列表。
// added 为 false 表示用户原本就在集合中。
func (s *Store) Add(fileID, roomID, userID string) (active []string, added bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.files[fileID]
	if !ok {
		set = &fileSet{roomID: roomID, users: make(map[string]struct{})}
		s.files[fileID] = set
	}
	if _, exists := set.users[userID]; !exists {
		set.users[userID] = struct{}{}
		added = true
	}
	return sortedUsers(set.users), added
}

// Remove 把用户移出文件的在线集合，返回剩余在线列表。
// removed 为 false 表示用户本来不在集合中。集合为空时整项删除。
func (s *Store) Remove(fileID, userID string) (active []string, removed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.files[fileID]
	if !ok {
		return []string{}, false
	}
	if _, exists := set.users[userID]; exists {
		delete(set.users, userID)
		removed = true
	}
	if len(set.users) == 0 {
		delete(s.files, fileID)
	}
	return sortedUsers(set.users), removed
}

// DropFile 丢弃文件的整个在线集合（文件被删除时调用）。
func (s *Store) DropFile(fileID string) {
	s.mu.Lock()
	delete(s.files, fileID)
	s.mu.Unlock()
}

// Snapshot 返回全部文件在线集合的副本，供巡检任务使用。
func (s *Store) Snapshot() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0, len(s.files))
	for fileID, set := range s.files {
		entries = append(entries, Entry{FileID: fileID, RoomID: set.roomID, Users: sortedUsers(set.users)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].FileID < entries[j].FileID })
	return entries
}

func sortedUsers(users map[string]struct{}) []string {
	list := make([]string, 0, len(users))
	for u := range users {
		list = append(list, u)
	}
	sort.Strings(list)
	return list
}
