package renderer

import (
	"fmt"

	"github.com/achilleasa/lumen/asset"
	"github.com/achilleasa/lumen/config"
	"github.com/achilleasa/lumen/gfx"
	"github.com/achilleasa/lumen/scene"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Rotation applied by every torus around its own X axis (degrees/sec).
const torusSpinSpeed float32 = 45

// Demo holds the node ids of the demo scene.
type Demo struct {
	Floor scene.NodeID
	Light scene.NodeID
	Ring  scene.NodeID
	Tori  []scene.NodeID

	// Spin speed of the ring node (degrees/sec).
	RingSpeed float32
}

// Populate a graph with the demo scene: a floor, an emissive sphere marking
// the light and a spinning ring node whose children are hue-coloured tori.
func BuildDemo(g *scene.Graph, reg *asset.Registry, opts config.Scene) (*Demo, error) {
	defaultMat, err := reg.Material(DefaultMaterial)
	if err != nil {
		return nil, err
	}
	emissiveMat, err := reg.Material(EmissiveMaterial)
	if err != nil {
		return nil, err
	}

	var meshes [3]gfx.MeshID
	for i, name := range []string{FloorMesh, SphereMesh, TorusMesh} {
		if meshes[i], err = reg.Mesh(name); err != nil {
			return nil, err
		}
	}
	floorMesh, sphereMesh, torusMesh := meshes[0], meshes[1], meshes[2]

	demo := &Demo{
		Floor: g.Create("floor", mgl32.Vec3{}, floorMesh, defaultMat),
		Light: g.Create("light", mgl32.Vec3{0, 5, 0}, sphereMesh, emissiveMat),
		Ring:  g.Create("ring", mgl32.Vec3{}, 0, nil),

		RingSpeed: opts.RingSpeed,
	}
	g.SetColour(demo.Floor, mgl32.Vec4{0.6, 0.6, 0.6, 1})
	g.SetColour(demo.Light, mgl32.Vec4{1, 1, 1, 1})

	g.SetUpdateFunc(demo.Ring, func(g *scene.Graph, id scene.NodeID, dt float32) {
		angles := g.RotationAngles(id)
		g.SetRotationAngleY(id, math32.Mod(angles[1]+demo.RingSpeed*dt, 360))
	})

	spin := func(g *scene.Graph, id scene.NodeID, dt float32) {
		angles := g.RotationAngles(id)
		g.SetRotationAngleX(id, math32.Mod(angles[0]+torusSpinSpeed*dt, 360))
	}

	step := 360 / float32(max(opts.TorusCount, 1))
	for i := 0; i < opts.TorusCount; i++ {
		angle := mgl32.DegToRad(step * float32(i))
		pos := mgl32.Vec3{
			math32.Cos(angle) * opts.RingRadius,
			opts.RingHeight,
			math32.Sin(angle) * opts.RingRadius,
		}

		id := g.Create(fmt.Sprintf("torus%d", i), pos, torusMesh, defaultMat)
		g.SetColour(id, HueToRGBA(float32(i)/float32(opts.TorusCount)))
		g.SetUpdateFunc(id, spin)
		if err = g.AddChild(demo.Ring, id); err != nil {
			return nil, err
		}
		demo.Tori = append(demo.Tori, id)
	}

	return demo, nil
}

// Get the light position on its orbit for an angle (radians).
func LightOrbit(angle, radius float32) mgl32.Vec3 {
	return mgl32.Vec3{
		math32.Cos(angle) * radius,
		math32.Cos(angle*4)*2 + 15,
		math32.Sin(angle) * radius,
	}
}

// Convert a hue in [0, 1) to a fully saturated RGBA colour.
func HueToRGBA(hue float32) mgl32.Vec4 {
	h := math32.Mod(hue, 1)
	if h < 0 {
		h++
	}
	h *= 6
	x := 1 - math32.Abs(math32.Mod(h, 2)-1)

	var r, g, b float32
	switch {
	case h < 1:
		r, g, b = 1, x, 0
	case h < 2:
		r, g, b = x, 1, 0
	case h < 3:
		r, g, b = 0, 1, x
	case h < 4:
		r, g, b = 0, x, 1
	case h < 5:
		r, g, b = x, 0, 1
	default:
		r, g, b = 1, 0, x
	}
	return mgl32.Vec4{r, g, b, 1}
}
