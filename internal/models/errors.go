package models

import "errors"

// Article timestamp errors.
var (
	ErrNoTimestamp  = errors.New("article has neither published_at nor created_at")
	ErrBadTimestamp = errors.New("article timestamp is not RFC 3339")
)
