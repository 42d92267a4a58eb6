// Package window implements an interactive renderer that displays the demo
// scene in a GLFW window.
package window

import (
	"runtime"

	"github.com/achilleasa/lumen/config"
	"github.com/achilleasa/lumen/gfx/opengl"
	"github.com/achilleasa/lumen/log"
	"github.com/achilleasa/lumen/postprocess"
	"github.com/achilleasa/lumen/renderer"
	"github.com/achilleasa/lumen/scene"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

const (
	// Bloom tuning steps for the +/- and [/] keys.
	thresholdStep  float32 = 0.05
	blurPassesStep         = 1
)

var modeKeys = map[glfw.Key]postprocess.Mode{
	glfw.Key1: postprocess.Default,
	glfw.Key2: postprocess.BrightPass,
	glfw.Key3: postprocess.BlurredBrightPass,
	glfw.Key4: postprocess.Bloom,
}

var moveKeys = map[glfw.Key]scene.CameraDirection{
	glfw.KeyW: scene.Forward,
	glfw.KeyS: scene.Backward,
	glfw.KeyA: scene.Left,
	glfw.KeyD: scene.Right,
	glfw.KeyE: scene.Up,
	glfw.KeyQ: scene.Down,
}

func init() {
	// GLFW event handling must run on the main thread.
	runtime.LockOSThread()
}

// An interactive opengl-based renderer.
type interactiveGLRenderer struct {
	*renderer.Driver

	logger log.Logger

	// opengl handles
	window *glfw.Window
	device *opengl.Device

	watcher *config.Watcher

	// state
	targetsLost   bool
	lastCursorPos mgl32.Vec2
	mousePressed  bool
	lastFrameTime float64
}

// Create a new interactive renderer that opens a window and renders the demo
// scene until the window is closed.
func NewInteractive(opts renderer.Options) (renderer.Renderer, error) {
	r := &interactiveGLRenderer{
		logger: log.New("window"),
	}

	err := r.initGL(opts.Config)
	if err != nil {
		r.Close()
		return nil, err
	}

	if opts.ConfigPath != "" {
		if r.watcher, err = config.Watch(opts.ConfigPath); err != nil {
			// Hot reloading is optional; keep running without it.
			r.logger.Warningf("config hot reload disabled: %v", err)
		}
	}

	return r, nil
}

func (r *interactiveGLRenderer) initGL(cfg *config.Config) error {
	var err error
	if err = glfw.Init(); err != nil {
		return errors.Wrap(renderer.ErrInvalidContext, err.Error())
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	r.window, err = glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title, nil, nil)
	if err != nil {
		return errors.Wrap(renderer.ErrInvalidContext, err.Error())
	}
	r.window.MakeContextCurrent()
	if cfg.Window.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	if r.device, err = opengl.New(); err != nil {
		return err
	}

	// On high-DPI displays the framebuffer is larger than the window.
	fbCfg := *cfg
	fbCfg.Window.Width, fbCfg.Window.Height = r.window.GetFramebufferSize()
	if r.Driver, err = renderer.NewDriver(r.device, &fbCfg); err != nil {
		return err
	}

	// Bind event callbacks
	r.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	r.window.SetKeyCallback(r.onKeyEvent)
	r.window.SetMouseButtonCallback(r.onMouseEvent)
	r.window.SetCursorPosCallback(r.onCursorPosEvent)
	r.window.SetFramebufferSizeCallback(r.onFramebufferSizeEvent)

	return nil
}

func (r *interactiveGLRenderer) Close() {
	if r.watcher != nil {
		r.watcher.Close()
		r.watcher = nil
	}
	if r.Driver != nil {
		r.Driver.Close()
	}
	if r.device != nil {
		r.device.Close()
		r.device = nil
	}
	if r.window != nil {
		r.window.Destroy()
		r.window = nil
	}
	glfw.Terminate()
}

func (r *interactiveGLRenderer) Render() error {
	r.lastFrameTime = glfw.GetTime()
	for !r.window.ShouldClose() {
		glfw.PollEvents()
		r.applyConfigChanges()

		now := glfw.GetTime()
		dt := float32(now - r.lastFrameTime)
		r.lastFrameTime = now

		r.pollMovement(dt)
		if err := r.Frame(dt); err != nil {
			if errors.Cause(err) != postprocess.ErrTargetsNotReady {
				return err
			}
			// Skip presenting and retry the allocation on the next frame.
			if !r.targetsLost {
				r.logger.Warningf("skipping frames until render targets are allocated: %v", err)
				r.targetsLost = true
			}
			if err = r.RecoverTargets(); err != nil {
				r.logger.Debugf("render target allocation failed: %v", err)
			}
			continue
		}
		if r.targetsLost {
			r.logger.Notice("render targets allocated; resuming")
			r.targetsLost = false
		}

		r.window.SwapBuffers()
	}
	return nil
}

// Apply the most recent configuration revision reported by the watcher.
func (r *interactiveGLRenderer) applyConfigChanges() {
	if r.watcher == nil {
		return
	}
	select {
	case cfg := <-r.watcher.Changes():
		if err := r.ApplyConfig(cfg); err != nil {
			r.logger.Errorf("could not apply config: %v", err)
		}
	default:
	}
}

// Move the camera while movement keys are held down.
func (r *interactiveGLRenderer) pollMovement(dt float32) {
	// Double speed if shift is pressed
	if r.window.GetKey(glfw.KeyLeftShift) == glfw.Press || r.window.GetKey(glfw.KeyRightShift) == glfw.Press {
		dt *= 2
	}
	for key, dir := range moveKeys {
		if r.window.GetKey(key) == glfw.Press {
			r.MoveCamera(dir, dt)
		}
	}
}

func (r *interactiveGLRenderer) onKeyEvent(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press && action != glfw.Repeat {
		return
	}

	if mode, ok := modeKeys[key]; ok {
		r.SetMode(mode)
		return
	}

	switch key {
	case glfw.KeyEscape:
		w.SetShouldClose(true)
	case glfw.KeyP:
		r.TogglePause()
	case glfw.KeyEqual, glfw.KeyKPAdd:
		r.AdjustThreshold(thresholdStep)
	case glfw.KeyMinus, glfw.KeyKPSubtract:
		r.AdjustThreshold(-thresholdStep)
	case glfw.KeyRightBracket:
		r.AdjustBlurPasses(blurPassesStep)
	case glfw.KeyLeftBracket:
		r.AdjustBlurPasses(-blurPassesStep)
	}
}

func (r *interactiveGLRenderer) onMouseEvent(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mod glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft {
		return
	}

	if action == glfw.Press {
		xPos, yPos := w.GetCursorPos()
		r.lastCursorPos = mgl32.Vec2{float32(xPos), float32(yPos)}
		r.mousePressed = true
	} else {
		r.mousePressed = false
	}
}

func (r *interactiveGLRenderer) onCursorPosEvent(w *glfw.Window, xPos, yPos float64) {
	if !r.mousePressed {
		return
	}

	newPos := mgl32.Vec2{float32(xPos), float32(yPos)}
	delta := r.lastCursorPos.Sub(newPos)
	r.lastCursorPos = newPos
	r.RotateCamera(delta[0], delta[1])
}

func (r *interactiveGLRenderer) onFramebufferSizeEvent(w *glfw.Window, width, height int) {
	if err := r.Resize(width, height); err != nil {
		r.logger.Errorf("could not resize render targets: %v", err)
	}
}
