package signal

import (
	"encoding/json"
	"sync"

	"github.com/avlasov/Boardroom/internal/domain"
)

// Participant implements core.Handle over a websocket Conn. Every push is a
// JSON envelope with a "type" discriminator; delivery is non-blocking and a
// saturated queue surfaces as an error to the room.
type Participant struct {
	mu   sync.RWMutex
	name string
	role domain.Role
	id   int

	conn *Conn
}

func NewParticipant(conn *Conn) *Participant {
	return &Participant{conn: conn}
}

func (p *Participant) DisplayName() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.name
}

func (p *Participant) SetDisplayName(name string) {
	p.mu.Lock()
	p.name = name
	p.mu.Unlock()
}

func (p *Participant) Role() domain.Role {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.role
}

func (p *Participant) SetRole(role domain.Role) {
	p.mu.Lock()
	p.role = role
	p.mu.Unlock()
}

func (p *Participant) ID() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.id
}

func (p *Participant) SetID(id int) {
	p.mu.Lock()
	p.id = id
	p.mu.Unlock()
}

func (p *Participant) Notify(msg string) error {
	return p.push(struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}{"notice", msg})
}

func (p *Participant) PushShape(item *domain.ShapeItem) error {
	return p.push(struct {
		Type string            `json:"type"`
		Item *domain.ShapeItem `json:"item"`
	}{"shape_added", item})
}

func (p *Participant) PushRemoveShape(item *domain.ShapeItem) error {
	return p.push(struct {
		Type string            `json:"type"`
		Item *domain.ShapeItem `json:"item"`
	}{"shape_removed", item})
}

func (p *Participant) PushShapeSet(items []*domain.ShapeItem) error {
	if items == nil {
		items = []*domain.ShapeItem{}
	}
	return p.push(struct {
		Type  string              `json:"type"`
		Items []*domain.ShapeItem `json:"items"`
	}{"shape_sync", items})
}

func (p *Participant) push(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.conn.TrySend(b)
}
