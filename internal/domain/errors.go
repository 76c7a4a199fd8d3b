package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrInvalidUsername = errors.New("invalid username")
	ErrNoActiveProfile = errors.New("no active profile")
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrCorruptState marks persisted data that could not be decoded.
	ErrCorruptState = errors.New("corrupt state")
)
