package physlines

import (
	"testing"

	"github.com/gekko3d/physlines/colorconv"
	"github.com/gekko3d/physlines/physics"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebugLines_DrawAndClear(t *testing.T) {
	lines := &DebugLines{}
	red := colorconv.New(1, 0, 0, 1)

	lines.DrawLine(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, red)
	lines.DrawDirection(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{0, 2, 0}, red)

	require.Equal(t, 2, lines.Len())
	assert.Equal(t, mgl32.Vec3{1, 3, 1}, lines.Lines()[1].End)

	lines.Clear()
	assert.Zero(t, lines.Len())
}

func TestDebugLinesComponent_AddDirection(t *testing.T) {
	c := NewDebugLinesComponent(4)
	c.AddDirection(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 5}, colorconv.New(0, 1, 0, 1))

	require.Len(t, c.Lines, 1)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, c.Lines[0].Start)
	assert.Equal(t, mgl32.Vec3{1, 0, 5}, c.Lines[0].End)
}

func TestBuildReferenceGrid(t *testing.T) {
	main := colorconv.New(0.4, 0.4, 0.4, 1)
	grid := BuildReferenceGrid(10, 10, main)

	require.Len(t, grid.Lines, 40)

	var mainLines, subLines int
	for _, l := range grid.Lines {
		switch l.Color {
		case main:
			mainLines++
			assert.Zero(t, l.Start.Y())
		case subGridColor:
			subLines++
			assert.InDelta(t, -0.001, l.Start.Y(), 1e-7)
		default:
			t.Fatalf("unexpected color %v", l.Color)
		}
	}
	assert.Equal(t, 22, mainLines)
	assert.Equal(t, 18, subLines)

	first := grid.Lines[0]
	assert.Equal(t, mgl32.Vec3{-5, 0, -5}, first.Start)
	assert.Equal(t, mgl32.Vec3{-5, 0, 5}, first.End)

	// first sub-grid line follows the last main line along X
	sub := grid.Lines[11]
	assert.Equal(t, subGridColor, sub.Color)
	assert.InDelta(t, 5.1, sub.Start.X(), 1e-5)
	assert.InDelta(t, -5, sub.Start.Z(), 1e-5)
}

func TestExtractRenderBuffer(t *testing.T) {
	red := colorconv.RGBA(255, 0, 0, 255)
	green := colorconv.RGBA(0, 255, 0, 255)
	blue := colorconv.RGBA(0, 0, 255, 255)

	rb := &physics.RenderBuffer{
		Points: []physics.DebugPoint{{Pos: mgl32.Vec3{1, 2, 3}, Color: red}},
		Lines: []physics.DebugLine{{
			Pos0: mgl32.Vec3{0, 0, 0}, Pos1: mgl32.Vec3{0, 1, 0},
			Color0: green, Color1: blue,
		}},
		Triangles: []physics.DebugTriangle{{
			Pos0: mgl32.Vec3{0, 0, 0}, Pos1: mgl32.Vec3{1, 0, 0}, Pos2: mgl32.Vec3{0, 0, 1},
			Color0: red, Color1: green, Color2: blue,
		}},
	}

	lines := &DebugLines{}
	ExtractRenderBuffer(rb, lines)
	got := lines.Lines()
	require.Len(t, got, 5)

	assert.Equal(t, mgl32.Vec3{1, 2, 3}, got[0].Start)
	assert.InDelta(t, 1.01, got[0].End.X(), 1e-6)
	assert.Equal(t, colorconv.Unpack(red), got[0].Color)

	// a line keeps its first color
	assert.Equal(t, colorconv.Unpack(green), got[1].Color)

	tri := got[2:]
	assert.Equal(t, NewLine(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, colorconv.Unpack(red)), tri[0])
	assert.Equal(t, NewLine(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}, colorconv.Unpack(green)), tri[1])
	assert.Equal(t, NewLine(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, 1}, colorconv.Unpack(blue)), tri[2])
}

func TestExtractRenderBuffer_FromScene(t *testing.T) {
	scene := physics.NewScene(physics.DefaultSceneDesc())
	require.NoError(t, scene.SetVisualizationParameter(physics.VisualizeScale, 1))
	require.NoError(t, scene.SetVisualizationParameter(physics.VisualizeWorldAxes, 1))
	require.NoError(t, scene.Simulate(1.0/60.0))

	lines := &DebugLines{}
	ExtractRenderBuffer(scene.RenderBuffer(), lines)
	require.Equal(t, 3, lines.Len())
	assert.Equal(t, colorconv.New(1, 0, 0, 1), lines.Lines()[0].Color)
}
