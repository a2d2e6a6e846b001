package app

import "github.com/avlasov/Boardroom/internal/core"

type DropAction int

const (
	NoAction DropAction = iota
	KickParticipant
)

// Policy decides what to do with a participant whose delivery channel was
// saturated or dead during a room fan-out.
type Policy interface {
	OnDeliveryDrop(room *core.Room, h core.Handle) DropAction
}

type EvictPolicy struct{}

func (EvictPolicy) OnDeliveryDrop(room *core.Room, h core.Handle) DropAction {
	return KickParticipant
}
