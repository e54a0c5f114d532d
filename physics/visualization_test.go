package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enable(t *testing.T, scene *Scene, params ...VisualizationParameter) {
	t.Helper()
	require.NoError(t, scene.SetVisualizationParameter(VisualizeScale, 1))
	for _, p := range params {
		require.NoError(t, scene.SetVisualizationParameter(p, 1))
	}
}

func TestRenderBuffer_EmptyWithoutScale(t *testing.T) {
	scene, _ := newGroundAndSphere(t)
	for _, p := range VisualizationParameters() {
		require.NoError(t, scene.SetVisualizationParameter(p, 1))
	}
	require.NoError(t, scene.SetVisualizationParameter(VisualizeScale, 0))

	require.NoError(t, scene.Simulate(1.0/60.0))
	assert.Equal(t, 0, scene.RenderBuffer().Len())
}

func TestRenderBuffer_WorldAxes(t *testing.T) {
	scene := NewScene(SceneDesc{})
	enable(t, scene, VisualizeWorldAxes)

	require.NoError(t, scene.Simulate(1.0/60.0))

	lines := scene.RenderBuffer().Lines
	require.Len(t, lines, 3)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, lines[0].Pos1)
	assert.Equal(t, ColorRed, lines[0].Color0)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, lines[1].Pos1)
	assert.Equal(t, ColorGreen, lines[1].Color0)
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, lines[2].Pos1)
	assert.Equal(t, ColorBlue, lines[2].Color0)
}

func TestRenderBuffer_ScaleMultipliesLength(t *testing.T) {
	scene := NewScene(SceneDesc{})
	enable(t, scene, VisualizeWorldAxes)
	require.NoError(t, scene.SetVisualizationParameter(VisualizeScale, 2.5))

	require.NoError(t, scene.Simulate(1.0/60.0))

	lines := scene.RenderBuffer().Lines
	require.Len(t, lines, 3)
	assert.Equal(t, mgl32.Vec3{2.5, 0, 0}, lines[0].Pos1)
}

func TestRenderBuffer_CollisionShapes(t *testing.T) {
	scene, _ := newGroundAndSphere(t)
	enable(t, scene, VisualizeCollisionShapes)

	require.NoError(t, scene.Simulate(1.0/60.0))
	rb := scene.RenderBuffer()

	// 8 rings x 12 segments, single triangles at both poles
	assert.Len(t, rb.Triangles, 168)
	// plane grid: 21 lines per direction
	assert.Len(t, rb.Lines, 42)
	assert.Empty(t, rb.Points)

	for _, tri := range rb.Triangles {
		assert.Equal(t, ColorGreen, tri.Color0)
		assert.Equal(t, ColorGreen, tri.Color2)
	}
	for _, l := range rb.Lines {
		assert.Equal(t, ColorMagenta, l.Color0)
		assert.InDelta(t, 0, l.Pos0.Y(), 1e-6)
		assert.InDelta(t, 0, l.Pos1.Y(), 1e-6)
	}
}

func TestRenderBuffer_SphereMeshOnSurface(t *testing.T) {
	scene, h := newGroundAndSphere(t)
	enable(t, scene, VisualizeCollisionShapes)

	require.NoError(t, scene.Simulate(1.0/60.0))
	sphere, _ := scene.Actor(h)

	for _, tri := range scene.RenderBuffer().Triangles {
		for _, p := range []mgl32.Vec3{tri.Pos0, tri.Pos1, tri.Pos2} {
			assert.InDelta(t, sphere.Radius, p.Sub(sphere.Position).Len(), 1e-3)
		}
	}
}

func TestRenderBuffer_AABBs(t *testing.T) {
	scene, h := newGroundAndSphere(t)
	enable(t, scene, VisualizeCollisionAABBs)

	require.NoError(t, scene.Simulate(1.0/60.0))
	sphere, _ := scene.Actor(h)
	min, max, ok := sphere.Bounds()
	require.True(t, ok)

	lines := scene.RenderBuffer().Lines
	require.Len(t, lines, 12)
	for _, l := range lines {
		assert.Equal(t, ColorYellow, l.Color0)
		// every edge runs along exactly one axis
		d := l.Pos1.Sub(l.Pos0)
		nonZero := 0
		for _, c := range d {
			if c != 0 {
				nonZero++
			}
		}
		assert.Equal(t, 1, nonZero)
		for i := 0; i < 3; i++ {
			assert.GreaterOrEqual(t, l.Pos0[i], min[i])
			assert.LessOrEqual(t, l.Pos1[i], max[i])
		}
	}
}

func TestRenderBuffer_Contacts(t *testing.T) {
	scene, _ := newGroundAndSphere(t)
	enable(t, scene, VisualizeContactPoint, VisualizeContactNormal, VisualizeContactForce)

	for i := 0; i < 60*30; i++ {
		require.NoError(t, scene.Simulate(1.0/60.0))
	}

	rb := scene.RenderBuffer()
	require.Len(t, rb.Points, 1)
	assert.Equal(t, ColorRed, rb.Points[0].Color)
	assert.InDelta(t, 0, rb.Points[0].Pos.Y(), 0.01)

	require.Len(t, rb.Lines, 2)
	normal, force := rb.Lines[0], rb.Lines[1]
	assert.Equal(t, ColorBlue, normal.Color0)
	assert.InDelta(t, 1, normal.Pos1.Sub(normal.Pos0).Len(), 1e-4)
	assert.Equal(t, ColorYellow, force.Color0)
	assert.Greater(t, force.Pos1.Y(), force.Pos0.Y())
}

func TestRenderBuffer_VelocityLines(t *testing.T) {
	scene, _ := newGroundAndSphere(t)
	enable(t, scene, VisualizeBodyLinearVelocity, VisualizeBodyAxes)

	require.NoError(t, scene.Simulate(0.5))

	lines := scene.RenderBuffer().Lines
	require.Len(t, lines, 4)
	assert.Equal(t, ColorWhite, lines[3].Color0)
	assert.Less(t, lines[3].Pos1.Y(), lines[3].Pos0.Y())
}

func TestRenderBuffer_ResetBetweenSteps(t *testing.T) {
	scene := NewScene(SceneDesc{})
	enable(t, scene, VisualizeWorldAxes)

	require.NoError(t, scene.Simulate(1.0/60.0))
	require.NoError(t, scene.Simulate(1.0/60.0))
	assert.Len(t, scene.RenderBuffer().Lines, 3)
}

func TestVisualizationParameter_Names(t *testing.T) {
	for _, p := range VisualizationParameters() {
		parsed, err := ParseVisualizationParameter(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
	}

	p, err := ParseVisualizationParameter("  Contact_Force ")
	require.NoError(t, err)
	assert.Equal(t, VisualizeContactForce, p)

	_, err = ParseVisualizationParameter("joint_limits")
	assert.Error(t, err)

	assert.Equal(t, "VisualizationParameter(42)", VisualizationParameter(42).String())
	assert.Error(t, NewScene(SceneDesc{}).SetVisualizationParameter(VisualizationParameter(-1), 1))
}
