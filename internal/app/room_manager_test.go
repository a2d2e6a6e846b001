package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) *RoomManager {
	t.Helper()
	m := NewRoomManager(context.Background(), 0, time.Second)
	t.Cleanup(m.CloseAll)
	return m
}

func TestRoomManager_GetOrCreate(t *testing.T) {
	m := newManager(t)

	first := m.GetOrCreate("board")
	second := m.GetOrCreate("board")
	assert.Same(t, first, second)

	other := m.GetOrCreate("sketch")
	assert.NotSame(t, first, other)
}

func TestRoomManager_Get(t *testing.T) {
	m := newManager(t)

	_, ok := m.Get("board")
	assert.False(t, ok)

	created := m.GetOrCreate("board")
	got, ok := m.Get("board")
	require.True(t, ok)
	assert.Same(t, created, got)
}

func TestRoomManager_List(t *testing.T) {
	m := newManager(t)
	m.GetOrCreate("board")
	m.GetOrCreate("sketch")

	infos := m.List()
	require.Len(t, infos, 2)
	names := []string{infos[0].Name, infos[1].Name}
	assert.ElementsMatch(t, []string{"board", "sketch"}, names)
	for _, info := range infos {
		assert.Equal(t, 0, info.Participants)
		assert.Equal(t, 0, info.Shapes)
	}
}

func TestRoomManager_StopRoom(t *testing.T) {
	m := newManager(t)
	m.GetOrCreate("board")

	m.StopRoom("board")
	_, ok := m.Get("board")
	assert.False(t, ok)

	// stopping an unknown room is a no-op
	m.StopRoom("ghost")
}
