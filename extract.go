package physlines

import (
	"github.com/gekko3d/physlines/colorconv"
	"github.com/gekko3d/physlines/physics"
	"github.com/go-gl/mathgl/mgl32"
)

// pointSize is the length of the short segment standing in for a point.
var pointSize = mgl32.Vec3{0.01, 0, 0}

// ExtractRenderBuffer appends the physics debug geometry to lines. Points
// become short segments, lines keep their first color and triangles become
// their three edges.
func ExtractRenderBuffer(rb *physics.RenderBuffer, lines *DebugLines) {
	for _, p := range rb.Points {
		lines.DrawLine(p.Pos, p.Pos.Add(pointSize), colorconv.Unpack(p.Color))
	}
	for _, l := range rb.Lines {
		lines.DrawLine(l.Pos0, l.Pos1, colorconv.Unpack(l.Color0))
	}
	for _, t := range rb.Triangles {
		lines.DrawLine(t.Pos0, t.Pos1, colorconv.Unpack(t.Color0))
		lines.DrawLine(t.Pos1, t.Pos2, colorconv.Unpack(t.Color1))
		lines.DrawLine(t.Pos0, t.Pos2, colorconv.Unpack(t.Color2))
	}
}
