package scene

import (
	"github.com/achilleasa/lumen/gfx"
	"github.com/go-gl/mathgl/mgl32"
)

// NodeID addresses a node inside a Graph. The low bits hold the arena slot
// and the high bits the generation of that slot, so an id kept after its
// node was destroyed never resolves to a node created later in the same slot.
type NodeID int32

// Nil is the id of "no node"; a node whose parent is Nil is a root.
const Nil NodeID = -1

const (
	indexBits = 20
	indexMask = 1<<indexBits - 1
	genMask   = 1<<(31-indexBits) - 1
)

func makeID(index int, gen uint32) NodeID {
	return NodeID(gen&genMask)<<indexBits | NodeID(index)
}

func (id NodeID) index() int {
	return int(id & indexMask)
}

func (id NodeID) gen() uint32 {
	return uint32(id>>indexBits) & genMask
}

// UpdateFunc is invoked for a node before its matrices are recomputed
// during an update traversal.
type UpdateFunc func(g *Graph, id NodeID, dt float32)

type node struct {
	alive bool
	gen   uint32
	name  string

	position mgl32.Vec3
	angles   [3]float32 // degrees
	scale    float32

	colour   mgl32.Vec4
	mesh     gfx.MeshID
	material *gfx.Material
	onUpdate UpdateFunc

	local mgl32.Mat4
	world mgl32.Mat4
	dirty bool

	parent   NodeID
	children []NodeID
	updates  uint64
}

func newNode(name string, position mgl32.Vec3, mesh gfx.MeshID, material *gfx.Material) node {
	n := node{
		alive:    true,
		name:     name,
		position: position,
		scale:    1,
		colour:   mgl32.Vec4{1, 1, 1, 1},
		mesh:     mesh,
		material: material,
		parent:   Nil,
		dirty:    true,
	}
	n.world = n.localTransform()
	return n
}

// Get the local transform (T * Rz * Ry * Rx * S), recomputing it if any of
// its inputs changed since the last call.
func (n *node) localTransform() mgl32.Mat4 {
	if !n.dirty {
		return n.local
	}

	rot := mgl32.HomogRotate3DZ(mgl32.DegToRad(n.angles[2])).
		Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(n.angles[1]))).
		Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(n.angles[0])))

	n.local = mgl32.Translate3D(n.position[0], n.position[1], n.position[2]).
		Mul4(rot).
		Mul4(mgl32.Scale3D(n.scale, n.scale, n.scale))
	n.dirty = false
	return n.local
}

func (n *node) removeChild(child NodeID) bool {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return true
		}
	}
	return false
}
