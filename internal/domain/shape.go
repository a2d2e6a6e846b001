package domain

import (
	"encoding/json"

	"github.com/google/uuid"
)

// ShapeItem pairs an opaque drawing payload with the identity that drew it.
// The geometry and colour are never inspected by the server; they travel as
// raw JSON between clients. Items are immutable after creation and rooms
// compare them by instance, so two items with equal payloads are distinct.
type ShapeItem struct {
	ID    string          `json:"id"`
	Owner Identity        `json:"owner"`
	Shape json.RawMessage `json:"shape"`
	Color json.RawMessage `json:"color"`
}

func NewShapeItem(owner Identity, shape, color json.RawMessage) *ShapeItem {
	return &ShapeItem{
		ID:    uuid.NewString(),
		Owner: owner,
		Shape: shape,
		Color: color,
	}
}
