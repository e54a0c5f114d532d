package physlines

import (
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// WindowState owns the glfw window shared by input and the renderer.
type WindowState struct {
	windowGlfw   *glfw.Window
	WindowWidth  int
	WindowHeight int
	windowTitle  string
}

// FramebufferSize is the drawable size in pixels, which differs from the
// window size on high-DPI displays.
func (s *WindowState) FramebufferSize() (int, int) {
	return s.windowGlfw.GetFramebufferSize()
}

func (s *WindowState) Destroy() {
	if s.windowGlfw == nil {
		return
	}
	s.windowGlfw.Destroy()
	s.windowGlfw = nil
	glfw.Terminate()
}

// PlatformWindowModule creates the WindowState resource. Installing it twice
// keeps the first window.
type PlatformWindowModule struct {
	Display DisplayConfig
}

func (m PlatformWindowModule) Install(app *App, cmd *Commands) {
	if cmd.HasResource(WindowState{}) {
		return
	}
	d := m.Display
	ws := createWindowState(d.Dimensions[0], d.Dimensions[1], d.Title)
	app.addResources(ws)
	app.Logger().Infof("window %q %dx%d", d.Title, d.Dimensions[0], d.Dimensions[1])

	app.UseSystem(
		System(windowDestroySystem).
			InStage(Finale).
			InState(OnEnter(StateQuit)),
	)
}

// windowDestroySystem runs in Finale so the renderer has released the
// surface first.
func windowDestroySystem(cmd *Commands, ws *WindowState) {
	ws.Destroy()
	cmd.Logger().Debugf("window destroyed")
}

func createWindowState(width int, height int, title string) *WindowState {
	// glfw calls must stay on the main thread
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		panic(err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		panic(err)
	}

	return &WindowState{
		windowGlfw:   win,
		WindowWidth:  width,
		WindowHeight: height,
		windowTitle:  title,
	}
}
