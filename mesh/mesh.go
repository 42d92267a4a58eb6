// Package mesh generates the procedural geometry drawn by the renderer.
package mesh

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// The number of float32 values per interleaved vertex (position, normal, uv).
const VertexStride = 3 + 3 + 2

type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

// Data holds an indexed triangle list.
type Data struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
}

// Interleave packs vertex attributes into a single float slice suitable for
// uploading into a vertex buffer.
func (d *Data) Interleave() []float32 {
	out := make([]float32, 0, len(d.Vertices)*VertexStride)
	for _, v := range d.Vertices {
		out = append(out,
			v.Position[0], v.Position[1], v.Position[2],
			v.Normal[0], v.Normal[1], v.Normal[2],
			v.UV[0], v.UV[1],
		)
	}
	return out
}

// Get the number of triangles in the mesh.
func (d *Data) Triangles() int {
	return len(d.Indices) / 3
}

// Quad returns a two-triangle mesh covering clip space. It is drawn with an
// identity MVP to run a fragment shader once per target pixel.
func Quad() *Data {
	return &Data{
		Name: "quad",
		Vertices: []Vertex{
			{mgl32.Vec3{-1, -1, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec2{0, 0}},
			{mgl32.Vec3{1, -1, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec2{1, 0}},
			{mgl32.Vec3{1, 1, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec2{1, 1}},
			{mgl32.Vec3{-1, 1, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec2{0, 1}},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}

// Plane returns a square on the XZ plane centered at the origin.
func Plane(size float32) *Data {
	h := size * 0.5
	up := mgl32.Vec3{0, 1, 0}
	return &Data{
		Name: "floor",
		Vertices: []Vertex{
			{mgl32.Vec3{-h, 0, -h}, up, mgl32.Vec2{0, 0}},
			{mgl32.Vec3{-h, 0, h}, up, mgl32.Vec2{0, 1}},
			{mgl32.Vec3{h, 0, h}, up, mgl32.Vec2{1, 1}},
			{mgl32.Vec3{h, 0, -h}, up, mgl32.Vec2{1, 0}},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}

// Cube returns an axis aligned cube with per-face normals.
func Cube(size float32) *Data {
	h := size * 0.5
	faces := []struct {
		normal, u, v mgl32.Vec3
	}{
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	}

	d := &Data{Name: "cube"}
	for _, f := range faces {
		base := uint32(len(d.Vertices))
		c := f.normal.Mul(h)
		u := f.u.Mul(h)
		v := f.v.Mul(h)
		d.Vertices = append(d.Vertices,
			Vertex{c.Sub(u).Sub(v), f.normal, mgl32.Vec2{0, 0}},
			Vertex{c.Add(u).Sub(v), f.normal, mgl32.Vec2{1, 0}},
			Vertex{c.Add(u).Add(v), f.normal, mgl32.Vec2{1, 1}},
			Vertex{c.Sub(u).Add(v), f.normal, mgl32.Vec2{0, 1}},
		)
		d.Indices = append(d.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return d
}

// Sphere returns a UV sphere. Rings and sectors are clamped to sane minimums.
func Sphere(radius float32, rings, sectors int) *Data {
	if rings < 2 {
		rings = 2
	}
	if sectors < 3 {
		sectors = 3
	}

	d := &Data{Name: "sphere"}
	for r := 0; r <= rings; r++ {
		phi := math32.Pi * float32(r) / float32(rings)
		for s := 0; s <= sectors; s++ {
			theta := 2 * math32.Pi * float32(s) / float32(sectors)
			n := mgl32.Vec3{
				math32.Sin(phi) * math32.Cos(theta),
				math32.Cos(phi),
				math32.Sin(phi) * math32.Sin(theta),
			}
			d.Vertices = append(d.Vertices, Vertex{
				Position: n.Mul(radius),
				Normal:   n,
				UV:       mgl32.Vec2{float32(s) / float32(sectors), float32(r) / float32(rings)},
			})
		}
	}
	d.Indices = gridIndices(rings, sectors)
	return d
}

// Torus returns a torus lying on the XZ plane.
func Torus(majorRadius, minorRadius float32, rings, sides int) *Data {
	if rings < 3 {
		rings = 3
	}
	if sides < 3 {
		sides = 3
	}

	d := &Data{Name: "torus"}
	for r := 0; r <= rings; r++ {
		u := 2 * math32.Pi * float32(r) / float32(rings)
		center := mgl32.Vec3{math32.Cos(u) * majorRadius, 0, math32.Sin(u) * majorRadius}
		for s := 0; s <= sides; s++ {
			v := 2 * math32.Pi * float32(s) / float32(sides)
			n := mgl32.Vec3{
				math32.Cos(v) * math32.Cos(u),
				math32.Sin(v),
				math32.Cos(v) * math32.Sin(u),
			}
			d.Vertices = append(d.Vertices, Vertex{
				Position: center.Add(n.Mul(minorRadius)),
				Normal:   n,
				UV:       mgl32.Vec2{float32(r) / float32(rings), float32(s) / float32(sides)},
			})
		}
	}
	d.Indices = gridIndices(rings, sides)
	return d
}

// Triangulate a (rows+1) x (cols+1) vertex grid.
func gridIndices(rows, cols int) []uint32 {
	out := make([]uint32, 0, rows*cols*6)
	stride := uint32(cols + 1)
	for r := uint32(0); r < uint32(rows); r++ {
		for c := uint32(0); c < uint32(cols); c++ {
			i0 := r*stride + c
			i1 := i0 + stride
			out = append(out, i0, i1, i0+1, i0+1, i1, i1+1)
		}
	}
	return out
}
