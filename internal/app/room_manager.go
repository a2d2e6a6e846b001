package app

import (
	"context"
	"sync"
	"time"

	"github.com/avlasov/Boardroom/internal/core"
)

type RoomInfo struct {
	Name         string `json:"name"`
	Participants int    `json:"participants"`
	Shapes       int    `json:"shapes"`
}

// RoomManager owns every live room, keyed by name. Rooms are created lazily
// and their watchdogs are bound to the manager's context.
type RoomManager struct {
	ctx context.Context

	watchdogThreshold int
	watchdogInterval  time.Duration

	mu    sync.RWMutex
	rooms map[string]*core.Room
}

func NewRoomManager(ctx context.Context, watchdogThreshold int, watchdogInterval time.Duration) *RoomManager {
	return &RoomManager{
		ctx:               ctx,
		watchdogThreshold: watchdogThreshold,
		watchdogInterval:  watchdogInterval,
		rooms:             make(map[string]*core.Room),
	}
}

func (m *RoomManager) GetOrCreate(name string) *core.Room {
	m.mu.RLock()
	room, ok := m.rooms[name]
	m.mu.RUnlock()
	if ok {
		return room
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if room, ok = m.rooms[name]; ok {
		return room
	}
	room = core.NewRoom(name)
	room.StartWatchdog(m.ctx, m.watchdogThreshold, m.watchdogInterval)
	m.rooms[name] = room
	return room
}

func (m *RoomManager) Get(name string) (*core.Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[name]
	return room, ok
}

func (m *RoomManager) List() []RoomInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RoomInfo, 0, len(m.rooms))
	for name, room := range m.rooms {
		out = append(out, RoomInfo{Name: name, Participants: room.ListSize(), Shapes: room.ShapeCount()})
	}
	return out
}

func (m *RoomManager) StopRoom(name string) {
	m.mu.Lock()
	room, ok := m.rooms[name]
	delete(m.rooms, name)
	m.mu.Unlock()
	if ok {
		room.Close()
	}
}

// CloseAll tears down every room, for process shutdown.
func (m *RoomManager) CloseAll() {
	m.mu.Lock()
	rooms := m.rooms
	m.rooms = make(map[string]*core.Room)
	m.mu.Unlock()
	for _, room := range rooms {
		room.Close()
	}
}
