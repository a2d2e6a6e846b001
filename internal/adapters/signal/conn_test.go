package signal

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avlasov/Boardroom/internal/domain"
)

// fakeWS satisfies WSConn without a network.
type fakeWS struct {
	mu     sync.Mutex
	closed int
}

func (f *fakeWS) ReadMessage() (int, []byte, error) { return 0, nil, nil }
func (f *fakeWS) WriteMessage(int, []byte) error    { return nil }
func (f *fakeWS) SetReadLimit(int64)                {}
func (f *fakeWS) SetWriteDeadline(time.Time) error  { return nil }

func (f *fakeWS) Close() error {
	f.mu.Lock()
	f.closed++
	f.mu.Unlock()
	return nil
}

func TestConn_TrySendBackpressure(t *testing.T) {
	c := NewConn(&fakeWS{}, 2)

	require.NoError(t, c.TrySend([]byte("one")))
	require.NoError(t, c.TrySend([]byte("two")))
	require.ErrorIs(t, c.TrySend([]byte("three")), ErrBackpressure)

	// draining frees the queue again
	<-c.send
	require.NoError(t, c.TrySend([]byte("three")))
}

func TestConn_CloseIdempotent(t *testing.T) {
	ws := &fakeWS{}
	c := NewConn(ws, 1)

	c.Close()
	c.Close()
	assert.Equal(t, 1, ws.closed)
	require.Error(t, c.TrySend([]byte("late")))
}

func collect(t *testing.T, c *Conn) map[string]any {
	t.Helper()
	select {
	case b := <-c.send:
		var out map[string]any
		require.NoError(t, json.Unmarshal(b, &out))
		return out
	default:
		t.Fatal("no frame queued")
		return nil
	}
}

func TestParticipant_Envelopes(t *testing.T) {
	c := NewConn(&fakeWS{}, 8)
	p := NewParticipant(c)
	p.SetDisplayName("alice")
	p.SetRole(domain.RoleOrdinary)
	p.SetID(3)

	require.NoError(t, p.Notify("hello"))
	env := collect(t, c)
	assert.Equal(t, "notice", env["type"])
	assert.Equal(t, "hello", env["message"])

	item := domain.NewShapeItem(
		domain.Identity{Name: "alice", ID: 3},
		json.RawMessage(`{"kind":"line"}`),
		json.RawMessage(`"red"`),
	)

	require.NoError(t, p.PushShape(item))
	env = collect(t, c)
	assert.Equal(t, "shape_added", env["type"])
	got := env["item"].(map[string]any)
	assert.Equal(t, item.ID, got["id"])

	require.NoError(t, p.PushRemoveShape(item))
	env = collect(t, c)
	assert.Equal(t, "shape_removed", env["type"])

	require.NoError(t, p.PushShapeSet(nil))
	env = collect(t, c)
	assert.Equal(t, "shape_sync", env["type"])
	// nil is sent as an empty list, never null
	assert.Equal(t, []any{}, env["items"])
}

func TestParticipant_PushAfterClose(t *testing.T) {
	c := NewConn(&fakeWS{}, 1)
	p := NewParticipant(c)
	c.Close()
	require.Error(t, p.Notify("gone"))
}
