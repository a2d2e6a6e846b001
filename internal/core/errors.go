package core

import "errors"

// Expected outcomes of normal contention. They are reported to the calling
// participant via Notify and returned to the local caller; they never
// terminate the room.
var (
	ErrNameConflict = errors.New("display name already taken")
	ErrUnauthorized = errors.New("caller is not the room manager")
	ErrNotFound     = errors.New("not found")
)
