package registry

import "errors"

var (
	ErrRoomFull          = errors.New("room is full")
	ErrConnNotFound      = errors.New("connection not found")
	ErrAlreadyRegistered = errors.New("connection already registered")
	ErrRoomClosing       = errors.New("room is being deleted")
)
