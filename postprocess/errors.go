package postprocess

import "errors"

var (
	ErrTargetsNotReady = errors.New("postprocess: render targets have not been allocated")
	ErrInvalidOptions  = errors.New("postprocess: invalid options")
)
