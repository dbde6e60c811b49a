package models

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("concurrent update, please retry")
	ErrInvalidInput = errors.New("invalid input")
)
