// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strconv"
)

const MaxDisplayNameLen = 36

var (
	ErrNameTooLong = errors.New("display name too long")
	ErrNameEmpty   = errors.New("display name empty")
)

// Role is a participant's self-reported level. Claiming RoleManager grants
// nothing by itself; the room only recognizes a manager accepted via SetManager.
type Role int

const (
	RoleOrdinary Role = iota
	RoleManager
)

func (r Role) String() string {
	switch r {
	case RoleManager:
		return "manager"
	default:
		return "ordinary"
	}
}

// Identity is the room's mapping key for one admitted participant: the
// human-chosen display name plus the server-assigned id.
type Identity struct {
	Name string `json:"name"`
	ID   int    `json:"id"`
}

func (i Identity) String() string {
	return i.Name + "#" + strconv.Itoa(i.ID)
}

func ValidateDisplayName(name string) error {
	if len(name) == 0 {
		return ErrNameEmpty
	}
	if len(name) > MaxDisplayNameLen {
		return ErrNameTooLong
	}
	return nil
}
