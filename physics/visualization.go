package physics

import (
	"fmt"
	"math"
	"strings"

	"github.com/gekko3d/physlines/colorconv"
	"github.com/go-gl/mathgl/mgl32"
)

type VisualizationParameter int

const (
	VisualizeScale VisualizationParameter = iota
	VisualizeWorldAxes
	VisualizeBodyAxes
	VisualizeBodyLinearVelocity
	VisualizeBodyAngularVelocity
	VisualizeContactPoint
	VisualizeContactNormal
	VisualizeContactForce
	VisualizeCollisionShapes
	VisualizeCollisionAABBs
	visualizationParameterCount
)

var visualizationNames = [visualizationParameterCount]string{
	"scale",
	"world_axes",
	"body_axes",
	"body_linear_velocity",
	"body_angular_velocity",
	"contact_point",
	"contact_normal",
	"contact_force",
	"collision_shapes",
	"collision_aabbs",
}

func (p VisualizationParameter) String() string {
	if p < 0 || p >= visualizationParameterCount {
		return fmt.Sprintf("VisualizationParameter(%d)", int(p))
	}
	return visualizationNames[p]
}

// ParseVisualizationParameter accepts the snake_case names used in config files.
func ParseVisualizationParameter(name string) (VisualizationParameter, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range visualizationNames {
		if n == name {
			return VisualizationParameter(i), nil
		}
	}
	return 0, fmt.Errorf("physics: unknown visualization parameter %q", name)
}

// VisualizationParameters lists every parameter in declaration order.
func VisualizationParameters() []VisualizationParameter {
	res := make([]VisualizationParameter, 0, visualizationParameterCount)
	for p := VisualizationParameter(0); p < visualizationParameterCount; p++ {
		res = append(res, p)
	}
	return res
}

func (s *Scene) SetVisualizationParameter(p VisualizationParameter, value float32) error {
	if s.released {
		return ErrReleased
	}
	if p < 0 || p >= visualizationParameterCount {
		return fmt.Errorf("physics: unknown visualization parameter %d", int(p))
	}
	s.params[p] = value
	return nil
}

func (s *Scene) VisualizationParameter(p VisualizationParameter) float32 {
	if p < 0 || p >= visualizationParameterCount {
		return 0
	}
	return s.params[p]
}

// Debug palette, packed red-in-low-byte.
var (
	ColorRed     = colorconv.RGBA(255, 0, 0, 255)
	ColorGreen   = colorconv.RGBA(0, 255, 0, 255)
	ColorBlue    = colorconv.RGBA(0, 0, 255, 255)
	ColorYellow  = colorconv.RGBA(255, 255, 0, 255)
	ColorMagenta = colorconv.RGBA(255, 0, 255, 255)
	ColorCyan    = colorconv.RGBA(0, 255, 255, 255)
	ColorWhite   = colorconv.RGBA(255, 255, 255, 255)
	ColorGrey    = colorconv.RGBA(128, 128, 128, 255)
)

type DebugPoint struct {
	Pos   mgl32.Vec3
	Color uint32
}

type DebugLine struct {
	Pos0, Pos1     mgl32.Vec3
	Color0, Color1 uint32
}

type DebugTriangle struct {
	Pos0, Pos1, Pos2       mgl32.Vec3
	Color0, Color1, Color2 uint32
}

type RenderBuffer struct {
	Points    []DebugPoint
	Lines     []DebugLine
	Triangles []DebugTriangle
}

func (rb *RenderBuffer) Reset() {
	rb.Points = rb.Points[:0]
	rb.Lines = rb.Lines[:0]
	rb.Triangles = rb.Triangles[:0]
}

func (rb *RenderBuffer) Len() int {
	return len(rb.Points) + len(rb.Lines) + len(rb.Triangles)
}

func (rb *RenderBuffer) addLine(p0, p1 mgl32.Vec3, color uint32) {
	rb.Lines = append(rb.Lines, DebugLine{Pos0: p0, Pos1: p1, Color0: color, Color1: color})
}

func (rb *RenderBuffer) addTriangle(p0, p1, p2 mgl32.Vec3, color uint32) {
	rb.Triangles = append(rb.Triangles, DebugTriangle{
		Pos0: p0, Pos1: p1, Pos2: p2,
		Color0: color, Color1: color, Color2: color,
	})
}

const (
	sphereRings       = 8
	sphereSegments    = 12
	planeGridHalfSize = 20
	planeGridStep     = 2
	contactForceScale = 0.001
)

func (s *Scene) buildRenderBuffer() {
	rb := &s.buffer
	rb.Reset()

	scale := s.params[VisualizeScale]
	if scale == 0 {
		return
	}
	param := func(p VisualizationParameter) float32 { return s.params[p] * scale }

	if l := param(VisualizeWorldAxes); l != 0 {
		rb.addLine(mgl32.Vec3{}, mgl32.Vec3{l, 0, 0}, ColorRed)
		rb.addLine(mgl32.Vec3{}, mgl32.Vec3{0, l, 0}, ColorGreen)
		rb.addLine(mgl32.Vec3{}, mgl32.Vec3{0, 0, l}, ColorBlue)
	}

	for _, a := range s.actors {
		if l := param(VisualizeCollisionShapes); l != 0 {
			color := ColorMagenta
			if a.Kind == ActorDynamic {
				color = ColorGreen
			}
			switch a.Shape {
			case ShapeSphere:
				addSphereMesh(rb, a, color)
			case ShapePlane:
				addPlaneGrid(rb, a, color)
			}
		}

		if a.Kind != ActorDynamic {
			continue
		}

		if l := param(VisualizeBodyAxes); l != 0 {
			rb.addLine(a.Position, a.Position.Add(a.Rotation.Rotate(mgl32.Vec3{l, 0, 0})), ColorRed)
			rb.addLine(a.Position, a.Position.Add(a.Rotation.Rotate(mgl32.Vec3{0, l, 0})), ColorGreen)
			rb.addLine(a.Position, a.Position.Add(a.Rotation.Rotate(mgl32.Vec3{0, 0, l})), ColorBlue)
		}
		if l := param(VisualizeBodyLinearVelocity); l != 0 {
			rb.addLine(a.Position, a.Position.Add(a.LinearVelocity.Mul(l)), ColorWhite)
		}
		if l := param(VisualizeBodyAngularVelocity); l != 0 {
			rb.addLine(a.Position, a.Position.Add(a.AngularVelocity.Mul(l)), ColorGrey)
		}
		if l := param(VisualizeCollisionAABBs); l != 0 {
			if min, max, ok := a.Bounds(); ok {
				addBox(rb, min, max, ColorYellow)
			}
		}
	}

	for _, c := range s.contacts {
		if l := param(VisualizeContactPoint); l != 0 {
			rb.Points = append(rb.Points, DebugPoint{Pos: c.Point, Color: ColorRed})
		}
		if l := param(VisualizeContactNormal); l != 0 {
			rb.addLine(c.Point, c.Point.Add(c.Normal.Mul(l)), ColorBlue)
		}
		if l := param(VisualizeContactForce); l != 0 && c.Force != 0 {
			rb.addLine(c.Point, c.Point.Add(c.Normal.Mul(c.Force*contactForceScale*l)), ColorYellow)
		}
	}
}

func addSphereMesh(rb *RenderBuffer, a *Actor, color uint32) {
	vertex := func(ring, seg int) mgl32.Vec3 {
		theta := math.Pi * float64(ring) / sphereRings
		phi := 2 * math.Pi * float64(seg) / sphereSegments
		unit := mgl32.Vec3{
			float32(math.Sin(theta) * math.Cos(phi)),
			float32(math.Cos(theta)),
			float32(math.Sin(theta) * math.Sin(phi)),
		}
		return a.Position.Add(a.Rotation.Rotate(unit.Mul(a.Radius)))
	}

	for ring := 0; ring < sphereRings; ring++ {
		for seg := 0; seg < sphereSegments; seg++ {
			p00 := vertex(ring, seg)
			p10 := vertex(ring+1, seg)
			p11 := vertex(ring+1, seg+1)
			p01 := vertex(ring, seg+1)

			if ring != 0 {
				rb.addTriangle(p00, p10, p01, color)
			}
			if ring != sphereRings-1 {
				rb.addTriangle(p01, p10, p11, color)
			}
		}
	}
}

func addPlaneGrid(rb *RenderBuffer, a *Actor, color uint32) {
	n := a.PlaneNormal
	ref := mgl32.Vec3{1, 0, 0}
	if math.Abs(float64(n.X())) > 0.9 {
		ref = mgl32.Vec3{0, 0, 1}
	}
	u := n.Cross(ref).Normalize()
	v := n.Cross(u)
	center := n.Mul(a.PlaneDistance)

	const half = float32(planeGridHalfSize)
	for i := -planeGridHalfSize; i <= planeGridHalfSize; i += planeGridStep {
		o := float32(i)
		rb.addLine(center.Add(u.Mul(o)).Sub(v.Mul(half)), center.Add(u.Mul(o)).Add(v.Mul(half)), color)
		rb.addLine(center.Add(v.Mul(o)).Sub(u.Mul(half)), center.Add(v.Mul(o)).Add(u.Mul(half)), color)
	}
}

func addBox(rb *RenderBuffer, min, max mgl32.Vec3, color uint32) {
	corner := func(i int) mgl32.Vec3 {
		c := min
		if i&1 != 0 {
			c[0] = max[0]
		}
		if i&2 != 0 {
			c[1] = max[1]
		}
		if i&4 != 0 {
			c[2] = max[2]
		}
		return c
	}

	for i := 0; i < 8; i++ {
		for bit := 1; bit < 8; bit <<= 1 {
			if i&bit == 0 {
				rb.addLine(corner(i), corner(i|bit), color)
			}
		}
	}
}
