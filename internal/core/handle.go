package core

import "github.com/avlasov/Boardroom/internal/domain"

// Handle is the room's callable reference to one connected participant.
// Implementations live in adapters; the room never owns or closes the
// underlying transport. Every push may fail with a delivery error, which
// the room logs and skips without aborting the committed mutation.
type Handle interface {
	DisplayName() string
	SetDisplayName(name string)
	Role() domain.Role
	ID() int
	SetID(id int)

	Notify(msg string) error
	PushShape(item *domain.ShapeItem) error
	PushRemoveShape(item *domain.ShapeItem) error
	PushShapeSet(items []*domain.ShapeItem) error
}

// FanoutResult reports delivery stats/backpressure to the orchestrator.
type FanoutResult struct {
	Delivered int
	Dropped   []Handle
}

func (f *FanoutResult) merge(other FanoutResult) {
	f.Delivered += other.Delivered
	f.Dropped = append(f.Dropped, other.Dropped...)
}
