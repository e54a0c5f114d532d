package physlines

import (
	"github.com/gekko3d/physlines/colorconv"
	"github.com/go-gl/mathgl/mgl32"
)

var subGridColor = colorconv.New(0.1, 0.1, 0.1, 0.2)

// subGridLines is the number of faint lines drawn inside the last cell.
const subGridLines = 9

// BuildReferenceGrid lays out a width x depth grid on the XZ plane centered
// on the origin. The last column and row also get a faint sub-grid just
// below the main lines.
func BuildReferenceGrid(width, depth int, color colorconv.Normalized) DebugLinesComponent {
	w, d := float32(width), float32(depth)
	grid := NewDebugLinesComponent(2*(width+1) + 2*subGridLines)

	for x := 0; x <= width; x++ {
		origin := mgl32.Vec3{float32(x) - w/2, 0, -d / 2}
		direction := mgl32.Vec3{0, 0, d}
		grid.AddDirection(origin, direction, color)

		if x == width {
			for i := 1; i <= subGridLines; i++ {
				offset := mgl32.Vec3{0.1 * float32(i), -0.001, 0}
				grid.AddDirection(origin.Add(offset), direction, subGridColor)
			}
		}
	}

	for z := 0; z <= depth; z++ {
		origin := mgl32.Vec3{-w / 2, 0, float32(z) - d/2}
		direction := mgl32.Vec3{w, 0, 0}
		grid.AddDirection(origin, direction, color)

		if z == depth {
			for i := 1; i <= subGridLines; i++ {
				offset := mgl32.Vec3{0, -0.001, 0.1 * float32(i)}
				grid.AddDirection(origin.Add(offset), direction, subGridColor)
			}
		}
	}

	return grid
}
