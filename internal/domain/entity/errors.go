package entity

import "errors"

var (
	ErrNotFound     = errors.New("entity not found")
	ErrIDIsRequired = errors.New("id is required")
)
