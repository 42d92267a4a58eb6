package scene

import "errors"

var (
	ErrInvalidNode = errors.New("scene: invalid node id")
	ErrCycle       = errors.New("scene: node cannot become a descendant of itself")
)
