package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avlasov/Boardroom/internal/core"
	"github.com/avlasov/Boardroom/internal/domain"
)

// fakeHandle is the minimal core.Handle for session bookkeeping tests.
type fakeHandle struct {
	mu   sync.Mutex
	name string
	role domain.Role
	id   int
	fail bool
}

func (f *fakeHandle) DisplayName() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.name
}

func (f *fakeHandle) SetDisplayName(name string) {
	f.mu.Lock()
	f.name = name
	f.mu.Unlock()
}

func (f *fakeHandle) Role() domain.Role { return f.role }

func (f *fakeHandle) ID() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.id
}

func (f *fakeHandle) SetID(id int) {
	f.mu.Lock()
	f.id = id
	f.mu.Unlock()
}

func (f *fakeHandle) deliver() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("unreachable")
	}
	return nil
}

func (f *fakeHandle) Notify(string) error { return f.deliver() }
func (f *fakeHandle) PushShape(*domain.ShapeItem) error { return f.deliver() }
func (f *fakeHandle) PushRemoveShape(*domain.ShapeItem) error { return f.deliver() }
func (f *fakeHandle) PushShapeSet([]*domain.ShapeItem) error { return f.deliver() }

func newOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	rooms := NewRoomManager(context.Background(), 0, time.Second)
	t.Cleanup(rooms.CloseAll)
	return &Orchestrator{
		Registry: NewRegistry(),
		Rooms:    rooms,
		Policy:   EvictPolicy{},
	}
}

func bind(o *Orchestrator, sid SessionID, name string, role domain.Role) *fakeHandle {
	h := &fakeHandle{name: name, role: role}
	o.Registry.Bind(sid, h, func() {})
	return h
}

func TestOrchestrator_JoinAndLeave(t *testing.T) {
	o := newOrchestrator(t)
	bind(o, "s1", "alice", domain.RoleOrdinary)

	final, err := o.Join("s1", "board", "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", final)

	roomName, memberName, ok := o.Registry.RoomOf("s1")
	require.True(t, ok)
	assert.Equal(t, "board", roomName)
	assert.Equal(t, "alice", memberName)

	room, found := o.Rooms.Get("board")
	require.True(t, found)
	assert.Equal(t, []string{"alice"}, room.ClientNames())

	o.Leave("s1")
	assert.Empty(t, room.ClientNames())
	_, _, ok = o.Registry.RoomOf("s1")
	assert.False(t, ok)
}

func TestOrchestrator_JoinSwitchesRooms(t *testing.T) {
	o := newOrchestrator(t)
	bind(o, "s1", "alice", domain.RoleOrdinary)

	_, err := o.Join("s1", "board", "alice")
	require.NoError(t, err)
	_, err = o.Join("s1", "sketch", "alice")
	require.NoError(t, err)

	board, _ := o.Rooms.Get("board")
	sketch, _ := o.Rooms.Get("sketch")
	assert.Empty(t, board.ClientNames())
	assert.Equal(t, []string{"alice"}, sketch.ClientNames())
}

func TestOrchestrator_JoinUnboundSession(t *testing.T) {
	o := newOrchestrator(t)
	_, err := o.Join("ghost", "board", "alice")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestOrchestrator_JoinConflictKeepsBinding(t *testing.T) {
	o := newOrchestrator(t)
	bind(o, "s1", "alice", domain.RoleOrdinary)
	bind(o, "s2", "alice", domain.RoleOrdinary)

	_, err := o.Join("s1", "board", "alice")
	require.NoError(t, err)
	_, err = o.Join("s2", "board", "alice")
	require.ErrorIs(t, err, core.ErrNameConflict)

	_, _, ok := o.Registry.RoomOf("s2")
	assert.False(t, ok)
}

func TestOrchestrator_Disconnect(t *testing.T) {
	o := newOrchestrator(t)
	bind(o, "s1", "alice", domain.RoleOrdinary)
	_, err := o.Join("s1", "board", "alice")
	require.NoError(t, err)

	o.Disconnect("s1")

	room, _ := o.Rooms.Get("board")
	assert.Empty(t, room.ClientNames())
	_, ok := o.Registry.Handle("s1")
	assert.False(t, ok)
}

func TestOrchestrator_ApproveBindsSession(t *testing.T) {
	o := newOrchestrator(t)
	manager := bind(o, "mgr", "boss", domain.RoleManager)
	bind(o, "req", "alice", domain.RoleOrdinary)

	_, err := o.Join("mgr", "board", "boss")
	require.NoError(t, err)
	room, _ := o.Rooms.Get("board")
	require.True(t, room.SetManager(manager))

	require.NoError(t, o.RequestJoin("req", "board", "alice"))
	require.NoError(t, o.Approve("mgr", "alice"))

	assert.Contains(t, room.ClientNames(), "alice")
	roomName, memberName, ok := o.Registry.RoomOf("req")
	require.True(t, ok)
	assert.Equal(t, "board", roomName)
	assert.Equal(t, "alice", memberName)
}

func TestOrchestrator_EvictsUnreachableParticipant(t *testing.T) {
	o := newOrchestrator(t)
	healthy := bind(o, "s1", "alice", domain.RoleOrdinary)
	dead := bind(o, "s2", "bob", domain.RoleOrdinary)

	_, err := o.Join("s1", "board", "alice")
	require.NoError(t, err)
	_, err = o.Join("s2", "board", "bob")
	require.NoError(t, err)

	canceled := false
	o.Registry.Bind("s2", dead, func() { canceled = true })
	require.True(t, o.Registry.SetRoom("s2", "board", "bob"))

	dead.mu.Lock()
	dead.fail = true
	dead.mu.Unlock()

	room, _ := o.Rooms.Get("board")
	room.AddShape(healthy, []byte(`"line"`), []byte(`"red"`))

	assert.Equal(t, []string{"alice"}, room.ClientNames())
	assert.True(t, canceled)
	_, _, ok := o.Registry.RoomOf("s2")
	assert.False(t, ok)
}

func TestRegistry_Lifecycle(t *testing.T) {
	r := NewRegistry()
	h := &fakeHandle{name: "alice"}

	canceled := false
	r.Bind("s1", h, func() { canceled = true })

	got, ok := r.Handle("s1")
	require.True(t, ok)
	assert.Equal(t, core.Handle(h), got)

	sid, ok := r.FindByHandle(h)
	require.True(t, ok)
	assert.Equal(t, SessionID("s1"), sid)

	require.True(t, r.SetRoom("s1", "board", "alice"))
	roomName, memberName, ok := r.RoomOf("s1")
	require.True(t, ok)
	assert.Equal(t, "board", roomName)
	assert.Equal(t, "alice", memberName)

	r.ClearRoom("s1")
	_, _, ok = r.RoomOf("s1")
	assert.False(t, ok)

	require.True(t, r.Cancel("s1"))
	assert.True(t, canceled)

	r.Unbind("s1")
	_, ok = r.Handle("s1")
	assert.False(t, ok)
	assert.False(t, r.Cancel("s1"))
}

func TestRegistry_SetRoomUnknownSession(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.SetRoom("ghost", "board", "alice"))
}
