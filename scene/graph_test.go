package scene

import (
	"testing"

	"github.com/achilleasa/lumen/gfx"
	"github.com/achilleasa/lumen/log"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.Quiet()
}

func assertMatEqual(t *testing.T, exp, got mgl32.Mat4, what string) {
	t.Helper()
	assert.Truef(t, exp.ApproxEqualThreshold(got, 1e-4), "%s: expected\n%v\ngot\n%v", what, exp, got)
}

func newChain(t *testing.T) (*Graph, NodeID, NodeID, NodeID) {
	g := NewGraph()
	a := g.Create("a", mgl32.Vec3{1, 0, 0}, 0, nil)
	b := g.Create("b", mgl32.Vec3{0, 2, 0}, 0, nil)
	c := g.Create("c", mgl32.Vec3{0, 0, 3}, 0, nil)
	require.NoError(t, g.SetParent(b, a))
	require.NoError(t, g.SetParent(c, b))
	return g, a, b, c
}

func TestIsRootMatchesParent(t *testing.T) {
	g, a, b, c := newChain(t)

	for _, id := range []NodeID{a, b, c} {
		assert.Equal(t, g.Parent(id) == Nil, g.IsRoot(id), "node %s", g.Name(id))
	}
	assert.Equal(t, []NodeID{a}, g.Roots())
	assert.False(t, g.IsRoot(NodeID(42)))
}

func TestWorldMatrixComposition(t *testing.T) {
	g, a, b, c := newChain(t)
	g.SetRotationAngleY(a, 90)
	g.SetScale(b, 2)
	g.SetRotationAngleX(c, 45)

	g.Update(a, 0.016)

	for _, id := range []NodeID{b, c} {
		exp := g.LocalToWorld(g.Parent(id)).Mul4(g.LocalTransform(id))
		assertMatEqual(t, exp, g.LocalToWorld(id), "local to world of "+g.Name(id))
		assertMatEqual(t, exp, g.nodes[id].world, "cached world of "+g.Name(id))
	}

	// a rotated 90deg around Y maps b's +Y offset unchanged and c's +Z offset
	// (scaled by 2 through b) onto +X.
	pos := g.WorldPosition(c)
	assert.InDelta(t, 1+6, pos[0], 1e-4)
	assert.InDelta(t, 2, pos[1], 1e-4)
	assert.InDelta(t, 0, pos[2], 1e-4)
}

func TestLocalToWorldReflectsLatestInputs(t *testing.T) {
	g, a, _, c := newChain(t)
	g.UpdateRoots(0)

	g.SetPosition(a, mgl32.Vec3{10, 0, 0})
	assert.InDelta(t, 10, g.WorldPosition(c)[0], 1e-5)
}

func TestReparentRoundTrip(t *testing.T) {
	g := NewGraph()
	p := g.Create("p", mgl32.Vec3{5, 5, 5}, 0, nil)
	n := g.Create("n", mgl32.Vec3{1, 2, 3}, 0, nil)
	g.SetRotationAngleZ(n, 30)

	require.NoError(t, g.SetParent(n, p))
	assert.False(t, g.IsRoot(n))
	assert.Equal(t, []NodeID{n}, g.Children(p))

	require.NoError(t, g.SetParent(n, Nil))
	assert.True(t, g.IsRoot(n))
	assert.Empty(t, g.Children(p))

	g.UpdateRoots(0)
	assertMatEqual(t, g.LocalTransform(n), g.LocalToWorld(n), "root world")
}

func TestAddRemoveChild(t *testing.T) {
	g := NewGraph()
	p := g.Create("p", mgl32.Vec3{}, 0, nil)
	c1 := g.Create("c1", mgl32.Vec3{}, 0, nil)
	c2 := g.Create("c2", mgl32.Vec3{}, 0, nil)
	extra := g.Create("extra", mgl32.Vec3{}, 0, nil)

	require.NoError(t, g.AddChild(p, c1))
	require.NoError(t, g.AddChild(p, c2))
	before := g.Children(p)

	require.NoError(t, g.AddChild(p, extra))
	require.NoError(t, g.RemoveChild(p, extra))
	assert.ElementsMatch(t, before, g.Children(p))
	assert.True(t, g.IsRoot(extra))

	// Removing a non-member is a no-op.
	require.NoError(t, g.RemoveChild(p, extra))
	require.NoError(t, g.RemoveChild(c1, c2))
	assert.ElementsMatch(t, before, g.Children(p))
	assert.Equal(t, p, g.Parent(c2))

	assert.Equal(t, ErrInvalidNode, g.RemoveChild(p, NodeID(99)))
	assert.Equal(t, ErrInvalidNode, g.AddChild(NodeID(99), c1))
}

func TestMovingChildBetweenParents(t *testing.T) {
	g := NewGraph()
	p1 := g.Create("p1", mgl32.Vec3{}, 0, nil)
	p2 := g.Create("p2", mgl32.Vec3{}, 0, nil)
	c := g.Create("c", mgl32.Vec3{}, 0, nil)

	require.NoError(t, g.SetParent(c, p1))
	require.NoError(t, g.SetParent(c, p2))
	assert.Empty(t, g.Children(p1))
	assert.Equal(t, []NodeID{c}, g.Children(p2))

	// Setting the same parent again must not duplicate the child entry.
	require.NoError(t, g.SetParent(c, p2))
	assert.Equal(t, []NodeID{c}, g.Children(p2))
}

func TestCycleRejected(t *testing.T) {
	g, a, b, c := newChain(t)

	type spec struct {
		node   NodeID
		parent NodeID
	}
	specs := []spec{
		{a, a},
		{a, b},
		{a, c},
		{b, c},
	}

	for index, s := range specs {
		err := g.SetParent(s.node, s.parent)
		if err != ErrCycle {
			t.Fatalf("[spec %d] expected ErrCycle; got %v", index, err)
		}
	}

	// Graph is untouched
	assert.True(t, g.IsRoot(a))
	assert.Equal(t, a, g.Parent(b))
	assert.Equal(t, b, g.Parent(c))
	assert.Equal(t, []NodeID{b}, g.Children(a))
	assert.Equal(t, []NodeID{c}, g.Children(b))
}

func TestUpdateVisitsEachNodeOnce(t *testing.T) {
	g, a, b, c := newChain(t)
	orphan := g.Create("orphan", mgl32.Vec3{}, 0, nil)

	for frame := uint64(1); frame <= 3; frame++ {
		g.UpdateRoots(1.0 / 60)
		for _, id := range []NodeID{a, b, c, orphan} {
			assert.Equal(t, frame, g.UpdateCount(id), "node %s in frame %d", g.Name(id), frame)
		}
	}
}

func TestUpdateFunc(t *testing.T) {
	g, a, _, c := newChain(t)

	var elapsed float32
	g.SetUpdateFunc(a, func(g *Graph, id NodeID, dt float32) {
		elapsed += dt
		g.SetRotationAngleY(id, elapsed*90)
	})

	g.UpdateRoots(0.5)
	g.UpdateRoots(0.5)

	assert.InDelta(t, 90, g.RotationAngles(a)[1], 1e-5)
	assert.InDelta(t, 1+3, g.WorldPosition(c)[0], 1e-4)
}

func TestWorldPositionRoundTrip(t *testing.T) {
	g := NewGraph()
	n := g.Create("n", mgl32.Vec3{}, 0, nil)

	for _, pos := range []mgl32.Vec3{{1, 2, 3}, {-4.5, 0, 1e3}, {0, 0, 0}} {
		g.SetPosition(n, pos)
		assert.Equal(t, pos, g.Position(n))
		got := g.WorldPosition(n)
		for i := 0; i < 3; i++ {
			assert.InDelta(t, pos[i], got[i], 1e-5)
		}
	}
}

func TestWorldRotation(t *testing.T) {
	g := NewGraph()
	n := g.Create("n", mgl32.Vec3{3, 4, 5}, 0, nil)
	g.SetScale(n, 4)
	g.SetRotationAngleZ(n, 90)

	assertMatEqual(t, mgl32.HomogRotate3DZ(mgl32.DegToRad(90)), g.WorldRotation(n), "world rotation")
}

func TestDestroyPromotesChildren(t *testing.T) {
	g, a, b, c := newChain(t)

	require.NoError(t, g.Destroy(b))
	assert.False(t, g.Valid(b))
	assert.Empty(t, g.Children(a))
	assert.True(t, g.IsRoot(c))
	assert.ElementsMatch(t, []NodeID{a, c}, g.Roots())
	assert.Equal(t, 2, g.Len())

	_, found := g.Find("b")
	assert.False(t, found)
	assert.Equal(t, ErrInvalidNode, g.Destroy(b))

	// Freed slots are reused under a new generation
	d := g.Create("d", mgl32.Vec3{}, 0, nil)
	assert.Equal(t, b.index(), d.index())
	assert.NotEqual(t, b, d)
	assert.True(t, g.IsRoot(d))
	id, found := g.Find("d")
	assert.True(t, found)
	assert.Equal(t, d, id)
}

func TestStaleIDDoesNotResolve(t *testing.T) {
	g := NewGraph()
	parent := g.Create("parent", mgl32.Vec3{}, 0, nil)
	stale := g.Create("a", mgl32.Vec3{}, 0, nil)
	require.NoError(t, g.Destroy(stale))

	fresh := g.Create("b", mgl32.Vec3{1, 2, 3}, 0, nil)
	require.Equal(t, stale.index(), fresh.index())

	assert.False(t, g.Valid(stale))
	assert.True(t, g.Valid(fresh))
	assert.Empty(t, g.Name(stale))
	assert.False(t, g.IsRoot(stale))

	g.SetPosition(stale, mgl32.Vec3{9, 9, 9})
	g.SetScale(stale, 4)
	assert.Equal(t, ErrInvalidNode, g.SetParent(stale, parent))
	assert.Equal(t, ErrInvalidNode, g.AddChild(stale, parent))
	assert.Equal(t, ErrInvalidNode, g.Destroy(stale))

	g.UpdateRoots(0)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, g.Position(fresh))
	assert.True(t, g.WorldPosition(fresh).ApproxEqual(mgl32.Vec3{1, 2, 3}))
	assert.ElementsMatch(t, []NodeID{parent, fresh}, g.Roots())
	assert.Empty(t, g.Children(parent))
}

func TestGenerationsWrapWithinMask(t *testing.T) {
	g := NewGraph()
	first := g.Create("n", mgl32.Vec3{}, 0, nil)
	id := first
	for i := 0; i < genMask+1; i++ {
		require.NoError(t, g.Destroy(id))
		id = g.Create("n", mgl32.Vec3{}, 0, nil)
		require.GreaterOrEqual(t, int32(id), int32(0))
		require.Equal(t, first.index(), id.index())
	}
	// After a full cycle the generation wraps back to the first one.
	assert.Equal(t, first, id)
	assert.True(t, g.Valid(id))
}

const drawVertexShader = `
uniform mat4 u_mvp;
uniform mat4 u_model;
uniform mat4 u_viewProj;
uniform vec4 u_colour;
`

func TestDrawRoots(t *testing.T) {
	rec := gfx.NewRecorder()
	ctx := gfx.NewContext(rec, 640, 480)
	ctx.Debug = true

	mat, err := gfx.CompileMaterial(ctx, "default", drawVertexShader, "", gfx.UniformMVP)
	require.NoError(t, err)

	g := NewGraph()
	root := g.Create("root", mgl32.Vec3{}, 0, mat) // no mesh
	child := g.Create("child", mgl32.Vec3{0, 1, 0}, gfx.MeshID(7), mat)
	other := g.Create("other", mgl32.Vec3{2, 0, 0}, gfx.MeshID(8), mat)
	require.NoError(t, g.SetParent(child, root))
	g.SetColour(other, mgl32.Vec4{1, 0, 0, 1})

	cam := NewCamera(45)
	cam.Position = mgl32.Vec3{0, 0, 10}
	cam.SetupProjection(640.0 / 480.0)

	g.UpdateRoots(0)
	g.DrawRoots(ctx, cam)

	draws := rec.Filter(gfx.OpDrawMesh)
	require.Len(t, draws, 2)
	assert.Equal(t, gfx.MeshID(7), draws[0].Mesh)
	assert.Equal(t, gfx.MeshID(8), draws[1].Mesh)

	mvp, ok := rec.UniformValue(mat.Program(), "u_mvp")
	require.True(t, ok)
	assertMatEqual(t, cam.ViewProjection().Mul4(g.LocalToWorld(other)), mvp.(mgl32.Mat4), "mvp")
	colour, _ := rec.UniformValue(mat.Program(), "u_colour")
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, colour)
}

func TestSetMaterialForAll(t *testing.T) {
	ctx := gfx.NewContext(gfx.NewRecorder(), 1, 1)
	mat, err := gfx.CompileMaterial(ctx, "unlit", drawVertexShader, "")
	require.NoError(t, err)

	g, a, b, c := newChain(t)
	g.SetMaterialForAll(mat)
	for _, id := range []NodeID{a, b, c} {
		assert.Equal(t, mat, g.Material(id))
	}
}
