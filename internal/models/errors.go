package models

import "errors"

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUserNotFound    = errors.New("user not found")
	ErrNotFound        = errors.New("not found")
	ErrOwnership       = errors.New("record belongs to another user")
	ErrInvalidArgument = errors.New("invalid argument")
)
