package gfx

import (
	"errors"
	"fmt"
)

var (
	ErrFramebufferIncomplete = errors.New("gfx: framebuffer is incomplete")
	ErrInvalidDimensions     = errors.New("gfx: invalid framebuffer dimensions")
	ErrProgramLink           = errors.New("gfx: program link failed")
	ErrMissingUniform        = errors.New("gfx: program does not declare required uniform")
)

// AssertionError reports misuse of the render context such as nested target
// binds, uniform uploads for an inactive material or reuse of an occupied
// texture unit. These are programmer errors.
type AssertionError struct {
	Msg string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("gfx: assertion failed: %s", e.Msg)
}
