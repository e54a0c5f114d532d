package physlines

import (
	"github.com/gekko3d/physlines/colorconv"
	"github.com/go-gl/mathgl/mgl32"
)

// Line is one colored segment handed to the line renderer.
type Line struct {
	Start mgl32.Vec3
	End   mgl32.Vec3
	Color colorconv.Normalized
}

func NewLine(start, end mgl32.Vec3, color colorconv.Normalized) Line {
	return Line{Start: start, End: end, Color: color}
}

// DebugLines is the per-frame line resource. The renderer draws and clears
// it every frame, so producers refill it each frame.
type DebugLines struct {
	lines []Line
}

func (d *DebugLines) DrawLine(start, end mgl32.Vec3, color colorconv.Normalized) {
	d.lines = append(d.lines, NewLine(start, end, color))
}

// DrawDirection draws a segment from origin to origin+direction.
func (d *DebugLines) DrawDirection(origin, direction mgl32.Vec3, color colorconv.Normalized) {
	d.DrawLine(origin, origin.Add(direction), color)
}

func (d *DebugLines) Lines() []Line {
	return d.lines
}

func (d *DebugLines) Len() int {
	return len(d.lines)
}

// Clear drops the lines but keeps the backing array for the next frame.
func (d *DebugLines) Clear() {
	d.lines = d.lines[:0]
}

// DebugLinesComponent holds lines that persist on an entity, drawn every
// frame until the entity goes away.
type DebugLinesComponent struct {
	Lines []Line
}

func NewDebugLinesComponent(capacity int) DebugLinesComponent {
	return DebugLinesComponent{Lines: make([]Line, 0, capacity)}
}

func (c *DebugLinesComponent) AddLine(start, end mgl32.Vec3, color colorconv.Normalized) {
	c.Lines = append(c.Lines, NewLine(start, end, color))
}

func (c *DebugLinesComponent) AddDirection(origin, direction mgl32.Vec3, color colorconv.Normalized) {
	c.AddLine(origin, origin.Add(direction), color)
}
