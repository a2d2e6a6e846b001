package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDisplayName(t *testing.T) {
	require.NoError(t, ValidateDisplayName("alice"))
	require.ErrorIs(t, ValidateDisplayName(""), ErrNameEmpty)
	require.ErrorIs(t, ValidateDisplayName(strings.Repeat("x", MaxDisplayNameLen+1)), ErrNameTooLong)
	require.NoError(t, ValidateDisplayName(strings.Repeat("x", MaxDisplayNameLen)))
}

func TestValidateRoomName(t *testing.T) {
	require.NoError(t, ValidateRoomName("board"))
	require.ErrorIs(t, ValidateRoomName(""), ErrNameEmpty)
	require.ErrorIs(t, ValidateRoomName(strings.Repeat("r", MaxRoomNameLen+1)), ErrNameTooLong)
}

func TestIdentityString(t *testing.T) {
	assert.Equal(t, "alice#4", Identity{Name: "alice", ID: 4}.String())
}

func TestRoleString(t *testing.T) {
	assert.Equal(t, "manager", RoleManager.String())
	assert.Equal(t, "ordinary", RoleOrdinary.String())
	assert.Equal(t, "ordinary", Role(99).String())
}

func TestNewShapeItem(t *testing.T) {
	a := NewShapeItem(Identity{Name: "alice"}, []byte(`"line"`), []byte(`"red"`))
	b := NewShapeItem(Identity{Name: "alice"}, []byte(`"line"`), []byte(`"red"`))
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}
