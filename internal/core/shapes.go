package core

import (
	"strings"

	"github.com/samber/lo"

	"github.com/avlasov/Boardroom/internal/domain"
)

// shapeStore keeps the room's visible items in insertion order, which makes
// snapshots and resync pushes deterministic. Items are compared by instance:
// removal takes the exact *ShapeItem handed out at creation time.
// Synchronization is provided by the room.
type shapeStore struct {
	items []*domain.ShapeItem
}

func newShapeStore() *shapeStore {
	return &shapeStore{}
}

func (s *shapeStore) add(item *domain.ShapeItem) {
	s.items = append(s.items, item)
}

func (s *shapeStore) remove(item *domain.ShapeItem) bool {
	for i, it := range s.items {
		if it == item {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// removeByOwner drops every item whose owner name matches case-insensitively.
// Collect-then-replace, never mutation during iteration.
func (s *shapeStore) removeByOwner(name string) int {
	kept := lo.Reject(s.items, func(item *domain.ShapeItem, _ int) bool {
		return strings.EqualFold(item.Owner.Name, name)
	})
	removed := len(s.items) - len(kept)
	s.items = kept
	return removed
}

func (s *shapeStore) clear() int {
	n := len(s.items)
	s.items = nil
	return n
}

func (s *shapeStore) byID(id string) (*domain.ShapeItem, bool) {
	item, ok := lo.Find(s.items, func(item *domain.ShapeItem) bool {
		return item.ID == id
	})
	return item, ok
}

// snapshot returns a copy of the item list safe to hand outside the room's lock.
func (s *shapeStore) snapshot() []*domain.ShapeItem {
	out := make([]*domain.ShapeItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *shapeStore) size() int { return len(s.items) }
