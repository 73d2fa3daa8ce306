package engine

import "errors"

var (
	ErrOutOfBounds      = errors.New("coordinate out of bounds")
	ErrUnknownDirection = errors.New("unknown direction")
)
