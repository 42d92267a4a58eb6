package gfx

import (
	"testing"

	"github.com/achilleasa/lumen/log"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.Quiet()
}

func newTestContext(debug bool) (*Context, *Recorder) {
	rec := NewRecorder()
	ctx := NewContext(rec, 1920, 1080)
	ctx.Debug = debug
	return ctx, rec
}

func TestFramebufferCreate(t *testing.T) {
	ctx, rec := newTestContext(true)

	fb := NewFramebuffer("blur")
	require.NoError(t, fb.Create(ctx, 1920.0/16, 1080.0/16, 1, true))
	assert.True(t, fb.IsValid())
	assert.True(t, fb.HasDepth())

	w, h := fb.Size()
	assert.Equal(t, float32(120), w)
	assert.Equal(t, float32(67.5), h)

	pw, ph := fb.PixelSize()
	assert.Equal(t, int32(120), pw)
	assert.Equal(t, int32(68), ph)

	tex, ok := fb.Texture(0)
	require.True(t, ok)
	assert.Equal(t, int32(68), tex.Height)
	_, ok = fb.Texture(1)
	assert.False(t, ok)

	// Re-creating releases the previous allocation
	require.NoError(t, fb.Create(ctx, 64, 64, 2, false))
	assert.Equal(t, 1, rec.LiveFramebuffers())
	assert.Equal(t, 1, rec.Count(OpDeleteFramebuffer))

	fb.Destroy(ctx)
	assert.False(t, fb.IsValid())
	assert.Equal(t, 0, rec.LiveFramebuffers())
	assert.Equal(t, "blur", fb.Name)
}

func TestFramebufferCreateFailure(t *testing.T) {
	ctx, rec := newTestContext(true)
	rec.FailFramebuffers = true

	fb := NewFramebuffer("scene")
	err := fb.Create(ctx, 640, 480, 1, true)
	require.Error(t, err)
	assert.Equal(t, ErrFramebufferIncomplete, errors.Cause(err))
	assert.False(t, fb.IsValid())

	err = NewFramebuffer("empty").Create(ctx, 0, 480, 1, true)
	assert.Equal(t, ErrInvalidDimensions, errors.Cause(err))
}

func TestTexelSize(t *testing.T) {
	ctx, _ := newTestContext(true)

	fb := NewFramebuffer("blur")
	require.NoError(t, fb.Create(ctx, 1920.0/16, 1080.0/16, 1, false))

	texel := fb.TexelSize()
	assert.InDelta(t, 1.0/120.0, texel[0], 1e-7)
	assert.InDelta(t, 1.0/67.5, texel[1], 1e-7)
	assert.Zero(t, texel[2])
	assert.Zero(t, texel[3])

	assert.Equal(t, mgl32.Vec4{}, NewFramebuffer("unallocated").TexelSize())
}

func TestBindForDrawingRestoresScreen(t *testing.T) {
	ctx, rec := newTestContext(true)

	fb := NewFramebuffer("scene")
	require.NoError(t, fb.Create(ctx, 800, 600, 1, true))

	guard := fb.BindForDrawing(ctx)
	require.NotNil(t, guard)
	assert.Equal(t, fb, ctx.DrawTarget())
	assert.Equal(t, fb.ID(), rec.BoundFramebuffer)
	assert.Equal(t, [2]int32{800, 600}, rec.Viewport)

	fb.Clear(ctx, mgl32.Vec4{})
	assert.Equal(t, 1, rec.Count(OpClear))

	guard.Unbind(1024, 768)
	assert.Nil(t, ctx.DrawTarget())
	assert.Equal(t, Screen, rec.BoundFramebuffer)
	assert.Equal(t, [2]int32{1024, 768}, rec.Viewport)
}

func TestNestedBindIsRejected(t *testing.T) {
	ctx, rec := newTestContext(false)

	a, b := NewFramebuffer("a"), NewFramebuffer("b")
	require.NoError(t, a.Create(ctx, 8, 8, 1, false))
	require.NoError(t, b.Create(ctx, 8, 8, 1, false))

	ga := a.BindForDrawing(ctx)
	require.NotNil(t, ga)

	// Binding b without releasing a must not change the bound target.
	gb := b.BindForDrawing(ctx)
	assert.Nil(t, gb)
	assert.Equal(t, a, ctx.DrawTarget())
	assert.Equal(t, a.ID(), rec.BoundFramebuffer)
	assert.Equal(t, 1, ctx.Violations())

	// Releasing a nil guard is harmless.
	gb.Release()
	ga.Release()
	ga.Release()
	assert.Nil(t, ctx.DrawTarget())
	assert.Equal(t, 2, ctx.Violations())
}

func TestNestedBindPanicsInDebugMode(t *testing.T) {
	ctx, _ := newTestContext(true)

	a, b := NewFramebuffer("a"), NewFramebuffer("b")
	require.NoError(t, a.Create(ctx, 8, 8, 1, false))
	require.NoError(t, b.Create(ctx, 8, 8, 1, false))

	a.BindForDrawing(ctx)
	defer func() {
		r := recover()
		require.NotNil(t, r)
		_, ok := r.(*AssertionError)
		assert.True(t, ok, "expected panic value to be an *AssertionError; got %T", r)
	}()
	b.BindForDrawing(ctx)
}

func TestBindTextureForSampling(t *testing.T) {
	ctx, rec := newTestContext(false)

	a, b := NewFramebuffer("a"), NewFramebuffer("b")
	require.NoError(t, a.Create(ctx, 8, 8, 1, false))
	require.NoError(t, b.Create(ctx, 8, 8, 1, false))
	texA, _ := a.Texture(0)

	g := a.BindTextureForSampling(ctx, 0, 1)
	require.NotNil(t, g)
	assert.Equal(t, texA.ID, ctx.BoundTexture(1))
	assert.Equal(t, texA.ID, rec.Units[1])

	// Unit 1 is occupied until the guard is released.
	assert.Nil(t, b.BindTextureForSampling(ctx, 0, 1))
	assert.Equal(t, texA.ID, rec.Units[1])

	g.Release()
	assert.Zero(t, ctx.BoundTexture(1))
	assert.Zero(t, rec.Units[1])
	assert.NotNil(t, b.BindTextureForSampling(ctx, 0, 1))

	// Sampling the active draw target is a feedback loop.
	guard := a.BindForDrawing(ctx)
	assert.Nil(t, a.BindTextureForSampling(ctx, 0, 2))
	guard.Release()

	// Out of range attachment and unit
	assert.Nil(t, a.BindTextureForSampling(ctx, 3, 2))
	assert.Nil(t, a.BindTextureForSampling(ctx, 0, MaxTextureUnits))
	assert.Equal(t, 4, ctx.Violations())
}

func TestBindScreen(t *testing.T) {
	ctx, rec := newTestContext(false)
	ctx.SetScreenSize(800, 600)

	require.True(t, ctx.BindScreen())
	assert.Equal(t, Screen, rec.BoundFramebuffer)
	assert.Equal(t, [2]int32{800, 600}, rec.Viewport)

	fb := NewFramebuffer("scene")
	require.NoError(t, fb.Create(ctx, 800, 600, 1, true))
	guard := fb.BindForDrawing(ctx)
	require.NotNil(t, guard)

	assert.False(t, ctx.BindScreen())
	assert.Equal(t, 1, ctx.Violations())
	assert.Equal(t, fb.ID(), rec.BoundFramebuffer)

	guard.Release()
	assert.True(t, ctx.BindScreen())
}
