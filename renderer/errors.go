package renderer

import "errors"

var (
	ErrInterrupted    = errors.New("renderer: interrupted while rendering")
	ErrNoFrames       = errors.New("renderer: frame count must be greater than zero")
	ErrInvalidContext = errors.New("renderer: could not create opengl context")
)
