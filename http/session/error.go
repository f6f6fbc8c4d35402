package session

import "errors"

var (
	ErrNotValid = errors.New("not valid")
	ErrNoTarget = errors.New("no target")
)
