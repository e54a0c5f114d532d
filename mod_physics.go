package physlines

import (
	"sync"

	"github.com/gekko3d/physlines/physics"
)

// PhysicsHandle shares the physics scene between systems. Every access goes
// through With, which holds the lock for the duration of the callback.
type PhysicsHandle struct {
	mu    sync.Mutex
	scene *physics.Scene
}

// With runs fn on the scene under the lock. It returns false when no scene
// is set.
func (h *PhysicsHandle) With(fn func(scene *physics.Scene)) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.scene == nil {
		return false
	}
	fn(h.scene)
	return true
}

// Set replaces the scene. A previous scene is released.
func (h *PhysicsHandle) Set(scene *physics.Scene) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.scene != nil && h.scene != scene {
		h.scene.Release()
	}
	h.scene = scene
}

// Clear releases the scene and leaves the handle empty.
func (h *PhysicsHandle) Clear() {
	h.Set(nil)
}

func (h *PhysicsHandle) HasScene() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.scene != nil
}

// PhysicsModule steps the scene once per frame and copies its debug geometry
// into DebugLines.
type PhysicsModule struct{}

func (m PhysicsModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&PhysicsHandle{})
	if !cmd.HasResource(DebugLines{}) {
		cmd.AddResources(&DebugLines{})
	}
	app.UseSystem(
		System(physicsSystem).
			InStage(Update).
			RunAlways(),
	)
}

func physicsSystem(cmd *Commands, t *Time, handle *PhysicsHandle, lines *DebugLines) {
	stepPhysics(handle, t.DeltaSeconds(), lines, cmd.Logger())
}

// stepPhysics simulates dt seconds and extracts the render buffer. Frames
// without elapsed time are skipped.
func stepPhysics(handle *PhysicsHandle, dt float32, lines *DebugLines, logger Logger) {
	if dt <= 0 {
		return
	}
	handle.With(func(scene *physics.Scene) {
		if err := scene.Simulate(dt); err != nil {
			logger.Errorf("physics step: %v", err)
			return
		}
		ExtractRenderBuffer(scene.RenderBuffer(), lines)
	})
}
