package physlines

import (
	"fmt"

	"github.com/gekko3d/physlines/colorconv"
	"github.com/gekko3d/physlines/physics"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	StateRunning State = iota
	StateQuit
)

// SceneModule sets up the physics scene, the reference grid and the fly
// camera when the app enters StateRunning, and tears the scene down on
// StateQuit.
type SceneModule struct {
	Scene SceneConfig
}

func (m SceneModule) Install(app *App, cmd *Commands) {
	cfg := m.Scene
	cmd.AddResources(&cfg)
	if !cmd.HasResource(ActiveCamera{}) {
		cmd.AddResources(&ActiveCamera{})
	}
	app.UseSystem(
		System(sceneSetupSystem).
			InStage(Prelude).
			InState(OnEnter(StateRunning)),
	)
	app.UseSystem(
		System(quitSystem).
			InStage(Update).
			InState(OnExecute(StateRunning)),
	)
	app.UseSystem(
		System(sceneTeardownSystem).
			InStage(Prelude).
			InState(OnEnter(StateQuit)),
	)
}

func sceneSetupSystem(cmd *Commands, cfg *SceneConfig, handle *PhysicsHandle, active *ActiveCamera) {
	logger := cmd.Logger()
	if !cmd.HasResource(DebugLines{}) {
		cmd.AddResources(&DebugLines{})
	}

	scene, sphere, err := BuildPhysicsScene(*cfg)
	if err != nil {
		logger.Errorf("physics scene: %v", err)
		cmd.ChangeState(StateQuit)
		return
	}
	handle.Set(scene)
	logger.Infof("physics scene ready, sphere %s", sphere)

	grid := cfg.Grid
	color := colorconv.New(grid.Color[0], grid.Color[1], grid.Color[2], grid.Color[3])
	cmd.AddEntity(BuildReferenceGrid(grid.Width, grid.Depth, color))

	cam := cfg.Camera
	active.Entity = cmd.AddEntity(
		NewPerspectiveCamera(mgl32.Vec3(cam.Position), cam.Aspect, cam.Fovy, cam.Near, cam.Far),
		FlyControlTag{},
	)
	active.Set = true
}

// BuildPhysicsScene creates the ground plane and the falling sphere with
// the configured visualization parameters enabled.
func BuildPhysicsScene(cfg SceneConfig) (*physics.Scene, physics.BodyHandle, error) {
	scene := physics.NewScene(physics.SceneDesc{Gravity: mgl32.Vec3(cfg.Gravity)})

	params, err := cfg.VisualizationParameters()
	if err != nil {
		return nil, physics.BodyHandle{}, err
	}
	for _, p := range params {
		if err := scene.SetVisualizationParameter(p, 1); err != nil {
			return nil, physics.BodyHandle{}, err
		}
	}

	mat := physics.NewMaterial(cfg.Material.StaticFriction, cfg.Material.DynamicFriction, cfg.Material.Restitution)
	if _, err := scene.CreatePlane(mgl32.Vec3(cfg.Ground.Normal), cfg.Ground.Distance, mat); err != nil {
		return nil, physics.BodyHandle{}, fmt.Errorf("ground plane: %w", err)
	}

	s := cfg.Sphere
	sphere, err := scene.CreateDynamicSphere(physics.DynamicSphereDesc{
		Transform:      mgl32.Translate3D(s.Position[0], s.Position[1], s.Position[2]),
		Radius:         s.Radius,
		Material:       mat,
		Density:        s.Density,
		LinearDamping:  s.LinearDamping,
		AngularDamping: s.AngularDamping,
	})
	if err != nil {
		return nil, physics.BodyHandle{}, fmt.Errorf("sphere: %w", err)
	}
	return scene, sphere, nil
}

func quitSystem(cmd *Commands, input *Input) {
	if input.JustPressed[KeyEscape] || input.CloseRequested {
		cmd.Logger().Infof("quit requested")
		cmd.ChangeState(StateQuit)
	}
}

func sceneTeardownSystem(cmd *Commands, handle *PhysicsHandle) {
	handle.Clear()
	cmd.Logger().Debugf("physics scene released")
}
