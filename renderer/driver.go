package renderer

import (
	"time"

	"github.com/achilleasa/lumen/asset"
	"github.com/achilleasa/lumen/config"
	"github.com/achilleasa/lumen/gfx"
	"github.com/achilleasa/lumen/log"
	"github.com/achilleasa/lumen/postprocess"
	"github.com/achilleasa/lumen/scene"
	"github.com/go-gl/mathgl/mgl32"
)

var sceneClearColour = mgl32.Vec4{0.05, 0.05, 0.08, 1}

// Driver advances the demo scene and renders one frame per Frame call. It
// owns the render context, the asset registry, the scene graph and the
// post-processing pipeline. Both renderer implementations delegate to it.
type Driver struct {
	logger log.Logger

	ctx      *gfx.Context
	reg      *asset.Registry
	graph    *scene.Graph
	camera   *scene.Camera
	pipeline *postprocess.Pipeline
	demo     *Demo
	lit      *gfx.Material
	cfg      config.Config

	mode       postprocess.Mode
	paused     bool
	lightAngle float32

	frames     uint64
	sceneTime  time.Duration
	renderTime time.Duration
	drawCalls  int
	violations int
}

// Create a driver for a device whose default framebuffer matches the
// configured window size.
func NewDriver(dev gfx.Device, cfg *config.Config) (*Driver, error) {
	ctx := gfx.NewContext(dev, int32(cfg.Window.Width), int32(cfg.Window.Height))
	ctx.Debug = cfg.Debug

	d := &Driver{
		logger: log.New("renderer"),
		ctx:    ctx,
		reg:    asset.NewRegistry(ctx),
		graph:  scene.NewGraph(),
		cfg:    *cfg,
		mode:   cfg.PostProcessMode(),
	}

	var err error
	if err = postprocess.RegisterAssets(d.reg); err != nil {
		d.Close()
		return nil, err
	}
	if err = RegisterSceneAssets(d.reg); err != nil {
		d.Close()
		return nil, err
	}
	if d.lit, err = d.reg.Material(DefaultMaterial); err != nil {
		d.Close()
		return nil, err
	}
	if d.pipeline, err = postprocess.New(ctx, d.reg, cfg.PipelineOptions()); err != nil {
		d.Close()
		return nil, err
	}
	if d.demo, err = BuildDemo(d.graph, d.reg, cfg.Scene); err != nil {
		d.Close()
		return nil, err
	}

	d.camera = scene.NewCamera(cfg.Camera.FOV)
	d.camera.Position = mgl32.Vec3(cfg.Camera.Position)
	d.camera.LookAt = mgl32.Vec3{0, 0, 0}
	d.camera.SetupProjection(float32(cfg.Window.Width) / float32(cfg.Window.Height))

	d.logger.Infof("scene ready: %d nodes, mode %s", d.graph.Len(), d.mode)
	return d, nil
}

// Release all device resources.
func (d *Driver) Close() {
	if d.pipeline != nil {
		d.pipeline.Close()
		d.pipeline = nil
	}
	if d.reg != nil {
		d.reg.Close()
		d.reg = nil
	}
}

// Render a single frame. The light advances along its orbit by dt seconds
// unless paused, the scene graph is updated from its roots and drawn into
// the scene target, then the pipeline presents the selected mode.
func (d *Driver) Frame(dt float32) error {
	start := time.Now()
	d.ctx.ResetCounters()

	if !d.paused {
		d.lightAngle += dt * d.cfg.Scene.LightSpeed
	}
	lightPos := LightOrbit(d.lightAngle, d.cfg.Scene.LightRadius)
	d.graph.SetPosition(d.demo.Light, lightPos)

	d.camera.Update()
	d.graph.UpdateRoots(dt)

	if !d.pipeline.Ready() {
		return postprocess.ErrTargetsNotReady
	}
	target := d.pipeline.SceneTarget()
	guard := target.BindForDrawing(d.ctx)
	target.Clear(d.ctx, sceneClearColour)
	d.lit.SetVec4(gfx.UniformLightPos, d.camera.ViewMat.Mul4x1(lightPos.Vec4(1)))
	d.graph.DrawRoots(d.ctx, d.camera)
	guard.Release()
	d.sceneTime += time.Since(start)

	if err := d.pipeline.Render(d.mode); err != nil {
		return err
	}

	d.frames++
	d.drawCalls = d.ctx.DrawCalls()
	d.violations = d.ctx.Violations()
	d.renderTime += time.Since(start)
	return nil
}

// Get the accumulated frame statistics.
func (d *Driver) Stats() FrameStats {
	return FrameStats{
		Frames:      d.frames,
		Mode:        d.mode,
		PostProcess: d.pipeline.Stats(),
		DrawCalls:   d.drawCalls,
		Violations:  d.violations,
		SceneTime:   d.sceneTime,
		RenderTime:  d.renderTime,
	}
}

// Reset the accumulated frame statistics.
func (d *Driver) ResetStats() {
	d.frames = 0
	d.sceneTime = 0
	d.renderTime = 0
	d.pipeline.ResetStats()
}

// Re-create the render targets and the camera projection for a new window size.
func (d *Driver) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		// Minimized window.
		return nil
	}
	d.cfg.Window.Width, d.cfg.Window.Height = width, height
	d.ctx.SetScreenSize(int32(width), int32(height))
	d.camera.SetupProjection(float32(width) / float32(height))
	return d.pipeline.Resize(float32(width), float32(height))
}

// Re-allocate the render targets at the current screen size after an
// allocation failure left the pipeline without them.
func (d *Driver) RecoverTargets() error {
	if d.pipeline.Ready() {
		return nil
	}
	w, h := d.ctx.ScreenSize()
	return d.pipeline.Resize(float32(w), float32(h))
}

// Apply the tuning values of a reloaded configuration. Window settings and
// the scene layout are fixed for the lifetime of the driver. The mode is
// only switched when the file's mode changed, so that a mode picked with
// the keyboard survives unrelated edits.
func (d *Driver) ApplyConfig(cfg *config.Config) error {
	d.cfg.Bloom = cfg.Bloom
	d.cfg.Scene.LightSpeed = cfg.Scene.LightSpeed
	d.cfg.Scene.LightRadius = cfg.Scene.LightRadius
	d.cfg.Camera.MoveSpeed = cfg.Camera.MoveSpeed
	d.cfg.Camera.LookSpeed = cfg.Camera.LookSpeed
	d.demo.RingSpeed = cfg.Scene.RingSpeed
	if mode := cfg.PostProcessMode(); mode != d.cfg.PostProcessMode() {
		d.cfg.Mode = cfg.Mode
		d.SetMode(mode)
	}

	opts := d.cfg.PipelineOptions()
	opts.Width, opts.Height = d.pipeline.Options().Width, d.pipeline.Options().Height
	return d.pipeline.Configure(opts)
}

// Select the post-process mode.
func (d *Driver) SetMode(mode postprocess.Mode) {
	if mode != d.mode {
		d.logger.Noticef("post-process mode: %s", mode)
	}
	d.mode = mode
}

func (d *Driver) Mode() postprocess.Mode {
	return d.mode
}

// Pause or resume the light orbit.
func (d *Driver) TogglePause() {
	d.paused = !d.paused
}

func (d *Driver) Paused() bool {
	return d.paused
}

// Adjust the bright pass threshold.
func (d *Driver) AdjustThreshold(delta float32) {
	d.pipeline.SetThreshold(d.pipeline.Options().Threshold + delta)
	d.logger.Noticef("bloom threshold: %.2f", d.pipeline.Options().Threshold)
}

// Adjust the number of blur passes.
func (d *Driver) AdjustBlurPasses(delta int) {
	d.pipeline.SetBlurPasses(d.pipeline.Options().BlurPasses + delta)
	d.logger.Noticef("blur passes: %d", d.pipeline.Options().BlurPasses)
}

// Move the camera for dt seconds at the configured speed.
func (d *Driver) MoveCamera(dir scene.CameraDirection, dt float32) {
	d.camera.Move(dir, d.cfg.Camera.MoveSpeed*dt)
}

// Rotate the camera by a cursor delta in pixels.
func (d *Driver) RotateCamera(dx, dy float32) {
	d.camera.Pitch = dy * d.cfg.Camera.LookSpeed
	d.camera.Yaw = dx * d.cfg.Camera.LookSpeed
	d.camera.Update()
}

func (d *Driver) Camera() *scene.Camera {
	return d.camera
}

func (d *Driver) Graph() *scene.Graph {
	return d.graph
}

func (d *Driver) Demo() *Demo {
	return d.demo
}

func (d *Driver) Pipeline() *postprocess.Pipeline {
	return d.pipeline
}

func (d *Driver) Context() *gfx.Context {
	return d.ctx
}
