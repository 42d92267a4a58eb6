// Package scene implements the forward-kinematics scene graph and the camera
// used to render it.
package scene

import (
	"github.com/achilleasa/lumen/gfx"
	"github.com/achilleasa/lumen/log"
	"github.com/go-gl/mathgl/mgl32"
)

var logger = log.New("scene")

// Graph is a forest of transform nodes stored in a contiguous arena.
// Parent/child links are node ids rather than pointers so that nodes can be
// destroyed, and reparenting can be checked for cycles, without dangling
// references.
//
// Only root nodes are visited by UpdateRoots and DrawRoots; every other node
// is reached exactly once through its root.
type Graph struct {
	nodes []node
	free  []int
	names map[string]NodeID
}

func NewGraph() *Graph {
	return &Graph{
		names: make(map[string]NodeID),
	}
}

func (g *Graph) get(id NodeID) *node {
	if id < 0 || id.index() >= len(g.nodes) {
		return nil
	}
	n := &g.nodes[id.index()]
	if !n.alive || n.gen != id.gen() {
		return nil
	}
	return n
}

// Create a new root node. If name is not empty, the node can be retrieved
// via Find; creating a node with a name that is already in use shadows the
// previous node.
func (g *Graph) Create(name string, position mgl32.Vec3, mesh gfx.MeshID, material *gfx.Material) NodeID {
	n := newNode(name, position, mesh, material)

	var index int
	if len(g.free) != 0 {
		index = g.free[len(g.free)-1]
		g.free = g.free[:len(g.free)-1]
		n.gen = g.nodes[index].gen
		g.nodes[index] = n
	} else {
		index = len(g.nodes)
		g.nodes = append(g.nodes, n)
	}
	id := makeID(index, n.gen)

	if name != "" {
		g.names[name] = id
	}
	return id
}

// Destroy a node. Its children are promoted to roots and it is detached
// from its parent.
func (g *Graph) Destroy(id NodeID) error {
	n := g.get(id)
	if n == nil {
		return ErrInvalidNode
	}

	if n.parent != Nil {
		g.get(n.parent).removeChild(id)
	}
	for _, child := range n.children {
		c := g.get(child)
		c.parent = Nil
		logger.Debugf("promoting %q to root after destroying %q", c.name, n.name)
	}

	if n.name != "" && g.names[n.name] == id {
		delete(g.names, n.name)
	}
	index := id.index()
	g.nodes[index] = node{parent: Nil, gen: (n.gen + 1) & genMask}
	g.free = append(g.free, index)
	return nil
}

// Lookup a node by name.
func (g *Graph) Find(name string) (NodeID, bool) {
	id, ok := g.names[name]
	return id, ok
}

// Get the number of live nodes.
func (g *Graph) Len() int {
	return len(g.nodes) - len(g.free)
}

// Returns true if id refers to a live node.
func (g *Graph) Valid(id NodeID) bool {
	return g.get(id) != nil
}

// Get the name of a node.
func (g *Graph) Name(id NodeID) string {
	if n := g.get(id); n != nil {
		return n.name
	}
	return ""
}

// Get the ids of all root nodes in id order.
func (g *Graph) Roots() []NodeID {
	var out []NodeID
	for i := range g.nodes {
		if g.nodes[i].alive && g.nodes[i].parent == Nil {
			out = append(out, makeID(i, g.nodes[i].gen))
		}
	}
	return out
}

// Returns true if the node has no parent.
func (g *Graph) IsRoot(id NodeID) bool {
	n := g.get(id)
	return n != nil && n.parent == Nil
}

// Get the parent of a node or Nil for roots and invalid ids.
func (g *Graph) Parent(id NodeID) NodeID {
	if n := g.get(id); n != nil {
		return n.parent
	}
	return Nil
}

// Get a copy of the node's children in insertion order.
func (g *Graph) Children(id NodeID) []NodeID {
	n := g.get(id)
	if n == nil {
		return nil
	}
	return append([]NodeID(nil), n.children...)
}

// Returns true if ancestor is found while walking up from id.
func (g *Graph) IsAncestor(ancestor, id NodeID) bool {
	for cur := g.Parent(id); cur != Nil; cur = g.Parent(cur) {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// Reassign the parent of a node. Passing Nil promotes the node to a root.
// Attempting to parent a node to itself or to one of its descendants
// returns ErrCycle and leaves the graph unchanged.
func (g *Graph) SetParent(id, parent NodeID) error {
	n := g.get(id)
	if n == nil {
		return ErrInvalidNode
	}
	if parent != Nil {
		if g.get(parent) == nil {
			return ErrInvalidNode
		}
		if parent == id || g.IsAncestor(id, parent) {
			return ErrCycle
		}
	}
	if n.parent == parent {
		return nil
	}

	if n.parent != Nil {
		g.get(n.parent).removeChild(id)
	}
	n.parent = parent
	if parent != Nil {
		p := g.get(parent)
		p.children = append(p.children, id)
	}
	return nil
}

// Attach child to parent. Equivalent to SetParent(child, parent).
func (g *Graph) AddChild(parent, child NodeID) error {
	if g.get(parent) == nil {
		return ErrInvalidNode
	}
	return g.SetParent(child, parent)
}

// Detach child from parent, promoting it to a root. Removing a node that is
// not a child of parent is a no-op.
func (g *Graph) RemoveChild(parent, child NodeID) error {
	if g.get(parent) == nil || g.get(child) == nil {
		return ErrInvalidNode
	}
	if g.get(child).parent != parent {
		return nil
	}
	return g.SetParent(child, Nil)
}

func (g *Graph) SetPosition(id NodeID, position mgl32.Vec3) {
	if n := g.get(id); n != nil {
		n.position = position
		n.dirty = true
	}
}

func (g *Graph) SetRotationAngleX(id NodeID, degrees float32) { g.setAngle(id, 0, degrees) }
func (g *Graph) SetRotationAngleY(id NodeID, degrees float32) { g.setAngle(id, 1, degrees) }
func (g *Graph) SetRotationAngleZ(id NodeID, degrees float32) { g.setAngle(id, 2, degrees) }

func (g *Graph) setAngle(id NodeID, axis int, degrees float32) {
	if n := g.get(id); n != nil {
		n.angles[axis] = degrees
		n.dirty = true
	}
}

func (g *Graph) SetScale(id NodeID, scale float32) {
	if n := g.get(id); n != nil {
		n.scale = scale
		n.dirty = true
	}
}

// Get the local position of a node.
func (g *Graph) Position(id NodeID) mgl32.Vec3 {
	if n := g.get(id); n != nil {
		return n.position
	}
	return mgl32.Vec3{}
}

// Get the local rotation angles (degrees) of a node.
func (g *Graph) RotationAngles(id NodeID) mgl32.Vec3 {
	if n := g.get(id); n != nil {
		return mgl32.Vec3(n.angles)
	}
	return mgl32.Vec3{}
}

func (g *Graph) SetColour(id NodeID, colour mgl32.Vec4) {
	if n := g.get(id); n != nil {
		n.colour = colour
	}
}

func (g *Graph) SetMaterial(id NodeID, material *gfx.Material) {
	if n := g.get(id); n != nil {
		n.material = material
	}
}

// Get the material assigned to a node.
func (g *Graph) Material(id NodeID) *gfx.Material {
	if n := g.get(id); n != nil {
		return n.material
	}
	return nil
}

// Assign the same material to every node in the graph.
func (g *Graph) SetMaterialForAll(material *gfx.Material) {
	for i := range g.nodes {
		if g.nodes[i].alive {
			g.nodes[i].material = material
		}
	}
}

// Set a callback that runs for this node on every update traversal.
func (g *Graph) SetUpdateFunc(id NodeID, fn UpdateFunc) {
	if n := g.get(id); n != nil {
		n.onUpdate = fn
	}
}

// Get the local transform of a node.
func (g *Graph) LocalTransform(id NodeID) mgl32.Mat4 {
	if n := g.get(id); n != nil {
		return n.localTransform()
	}
	return mgl32.Ident4()
}

// Get the local-to-world matrix of a node computed from the current inputs
// of the node and all of its ancestors.
func (g *Graph) LocalToWorld(id NodeID) mgl32.Mat4 {
	n := g.get(id)
	if n == nil {
		return mgl32.Ident4()
	}
	local := n.localTransform()
	if n.parent == Nil {
		return local
	}
	return g.LocalToWorld(n.parent).Mul4(local)
}

// Get the world space position of a node.
func (g *Graph) WorldPosition(id NodeID) mgl32.Vec3 {
	return g.LocalToWorld(id).Col(3).Vec3()
}

// Get the world space rotation of a node with translation and scale removed.
func (g *Graph) WorldRotation(id NodeID) mgl32.Mat4 {
	m := g.LocalToWorld(id)
	out := mgl32.Ident4()
	for c := 0; c < 3; c++ {
		axis := m.Col(c).Vec3()
		if l := axis.Len(); l > 0 {
			axis = axis.Mul(1 / l)
		}
		out.SetCol(c, axis.Vec4(0))
	}
	return out
}

// Get the number of times a node's matrices were recomputed by an update
// traversal.
func (g *Graph) UpdateCount(id NodeID) uint64 {
	if n := g.get(id); n != nil {
		return n.updates
	}
	return 0
}

// Update a node and, depth-first, its whole subtree.
func (g *Graph) Update(id NodeID, dt float32) {
	n := g.get(id)
	if n == nil {
		return
	}
	parentWorld := mgl32.Ident4()
	if n.parent != Nil {
		parentWorld = g.LocalToWorld(n.parent)
	}
	g.update(id, parentWorld, dt)
}

func (g *Graph) update(id NodeID, parentWorld mgl32.Mat4, dt float32) {
	if fn := g.get(id).onUpdate; fn != nil {
		fn(g, id, dt)
	}

	// The callback may have grown the arena; re-resolve the node.
	n := g.get(id)
	n.world = parentWorld.Mul4(n.localTransform())
	n.updates++

	world := n.world
	for i := 0; i < len(g.get(id).children); i++ {
		g.update(g.get(id).children[i], world, dt)
	}
}

// Update every root node and their subtrees.
func (g *Graph) UpdateRoots(dt float32) {
	for _, id := range g.Roots() {
		g.update(id, mgl32.Ident4(), dt)
	}
}

// Draw a node and its subtree using the world matrices computed by the last
// update traversal. Nodes without a mesh or material are not drawn but
// their children are.
func (g *Graph) Draw(ctx *gfx.Context, id NodeID, cam *Camera) {
	if g.get(id) == nil {
		return
	}
	g.draw(ctx, id, cam.ViewMat, cam.ViewProjection())
}

func (g *Graph) draw(ctx *gfx.Context, id NodeID, view, viewProj mgl32.Mat4) {
	n := g.get(id)
	if n.mesh != 0 && n.material != nil {
		m := n.material
		m.SetMat4(gfx.UniformModel, n.world)
		m.SetMat4(gfx.UniformView, view)
		m.SetMat4(gfx.UniformViewProj, viewProj)
		m.SetMat4(gfx.UniformMVP, viewProj.Mul4(n.world))
		m.SetVec4(gfx.UniformColour, n.colour)
		m.Bind()
		m.SendUniforms()
		ctx.Draw(n.mesh)
	}

	for _, child := range n.children {
		g.draw(ctx, child, view, viewProj)
	}
}

// Draw every root node and their subtrees.
func (g *Graph) DrawRoots(ctx *gfx.Context, cam *Camera) {
	viewProj := cam.ViewProjection()
	for _, id := range g.Roots() {
		g.draw(ctx, id, cam.ViewMat, viewProj)
	}
}
