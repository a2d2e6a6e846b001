package domain

type RoomName string

const MaxRoomNameLen = 36

func ValidateRoomName(name string) error {
	if len(name) == 0 {
		return ErrNameEmpty
	}
	if len(name) > MaxRoomNameLen {
		return ErrNameTooLong
	}
	return nil
}
