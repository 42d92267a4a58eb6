// Package renderer drives the demo scene: it advances the scene graph each
// frame, draws it into the scene target and runs the post-processing
// pipeline. The headless renderer in this package and the interactive
// renderer in package window share the same frame driver.
package renderer

type Renderer interface {
	// Render frames until the renderer is done.
	Render() error

	// Release the renderer's resources.
	Close()

	// Get render statistics.
	Stats() FrameStats
}
