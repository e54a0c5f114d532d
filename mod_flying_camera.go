package physlines

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	AxisMoveX = "move_x"
	AxisMoveY = "move_y"
	AxisMoveZ = "move_z"
)

const maxPitch = 89.0

// CameraComponent is a perspective camera. Yaw and Pitch are in degrees;
// zero yaw looks down -Z. Fovy is in radians.
type CameraComponent struct {
	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32

	Fovy   float32
	Aspect float32
	Near   float32
	Far    float32
}

func NewPerspectiveCamera(position mgl32.Vec3, aspect, fovy, near, far float32) CameraComponent {
	return CameraComponent{
		Position: position,
		Fovy:     fovy,
		Aspect:   aspect,
		Near:     near,
		Far:      far,
	}
}

func (c *CameraComponent) Forward() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	return mgl32.Vec3{
		float32(math.Sin(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(-math.Cos(yaw) * math.Cos(pitch)),
	}.Normalize()
}

func (c *CameraComponent) Right() mgl32.Vec3 {
	return c.Forward().Cross(mgl32.Vec3{0, 1, 0}).Normalize()
}

// Up is the camera-local up vector, perpendicular to Forward and Right.
func (c *CameraComponent) Up() mgl32.Vec3 {
	return c.Right().Cross(c.Forward()).Normalize()
}

func (c *CameraComponent) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Forward()), mgl32.Vec3{0, 1, 0})
}

func (c *CameraComponent) Projection() mgl32.Mat4 {
	return mgl32.Perspective(c.Fovy, c.Aspect, c.Near, c.Far)
}

func (c *CameraComponent) ViewProjection() mgl32.Mat4 {
	return c.Projection().Mul4(c.View())
}

// ActiveCamera names the camera entity the renderer draws from. Without
// one, the first camera found is used.
type ActiveCamera struct {
	Entity EntityId
	Set    bool
}

// activeViewProjection returns the view-projection of the active camera,
// or identity when there is no camera at all.
func activeViewProjection(cmd *Commands, active *ActiveCamera) mgl32.Mat4 {
	if active.Set {
		if cam, ok := Component[CameraComponent](cmd, active.Entity); ok {
			return cam.ViewProjection()
		}
	}
	viewProj := mgl32.Ident4()
	MakeQuery1[CameraComponent](cmd).Map(func(eid EntityId, cam *CameraComponent) bool {
		viewProj = cam.ViewProjection()
		return false
	})
	return viewProj
}

// FlyControlTag marks cameras driven by keyboard axes and mouse look.
type FlyControlTag struct{}

// FlyControl holds the settings shared by all fly cameras.
type FlyControl struct {
	Speed       float32
	Sensitivity [2]float32 // degrees per pixel of mouse motion
}

type FlyCameraModule struct {
	Speed       float32
	Sensitivity [2]float32
}

func (m FlyCameraModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&FlyControl{Speed: m.Speed, Sensitivity: m.Sensitivity})
	app.UseSystem(
		System(flyCameraSystem).
			InStage(Update).
			RunAlways(),
	)
}

func flyCameraSystem(cmd *Commands, t *Time, input *Input, control *FlyControl) {
	if input.JustPressed[KeyTab] {
		input.MouseCaptured = !input.MouseCaptured
	}

	move := mgl32.Vec3{input.Axis(AxisMoveX), input.Axis(AxisMoveY), input.Axis(AxisMoveZ)}
	look := mgl32.Vec2{float32(input.MouseDeltaX), float32(input.MouseDeltaY)}
	if !input.MouseCaptured {
		look = mgl32.Vec2{}
	}
	dt := t.DeltaSeconds()

	MakeQuery2[CameraComponent, FlyControlTag](cmd).Map(func(eid EntityId, cam *CameraComponent, _ *FlyControlTag) bool {
		flyCamera(cam, control, move, look, dt)
		return true
	})
}

// flyCamera applies one frame of fly control. move holds the move_x, move_y
// and move_z axis values; positive move_z goes backwards.
func flyCamera(cam *CameraComponent, control *FlyControl, move mgl32.Vec3, look mgl32.Vec2, dt float32) {
	cam.Yaw += look[0] * control.Sensitivity[0]
	cam.Pitch -= look[1] * control.Sensitivity[1]
	cam.Pitch = mgl32.Clamp(cam.Pitch, -maxPitch, maxPitch)

	if dt <= 0 {
		return
	}

	forward := cam.Forward()
	right := cam.Right()
	up := cam.Up()

	dir := right.Mul(move[0]).
		Add(up.Mul(move[1])).
		Sub(forward.Mul(move[2]))
	if dir.Len() > 0 {
		cam.Position = cam.Position.Add(dir.Normalize().Mul(control.Speed * dt))
	}
}
