package repository

import "errors"

var (
	// ErrDuplicateUser is returned when a username or email is already taken.
	ErrDuplicateUser = errors.New("username or email already exists")
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("record not found")
)
