package physlines

import (
	"fmt"
	"strings"

	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	KeyA int = iota
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeySpace
	KeyEnter
	KeyEscape
	KeyTab
	KeyBackspace
	KeyRight
	KeyLeft
	KeyDown
	KeyUp
	KeyPageUp
	KeyPageDown
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyShift
	KeyControl
	KeyLeftAlt
	MouseButtonLeft
	MouseButtonRight
	MouseButtonMiddle
)

type keyInfo struct {
	name string
	glfw glfw.Key
}

// keyboard lists every key with its config name and glfw code. Letters and
// digits are filled in by init.
var keyboard = map[int]keyInfo{
	KeySpace:     {"space", glfw.KeySpace},
	KeyEnter:     {"enter", glfw.KeyEnter},
	KeyEscape:    {"escape", glfw.KeyEscape},
	KeyTab:       {"tab", glfw.KeyTab},
	KeyBackspace: {"backspace", glfw.KeyBackspace},
	KeyRight:     {"right", glfw.KeyRight},
	KeyLeft:      {"left", glfw.KeyLeft},
	KeyDown:      {"down", glfw.KeyDown},
	KeyUp:        {"up", glfw.KeyUp},
	KeyPageUp:    {"page_up", glfw.KeyPageUp},
	KeyPageDown:  {"page_down", glfw.KeyPageDown},
	KeyF1:        {"f1", glfw.KeyF1},
	KeyF2:        {"f2", glfw.KeyF2},
	KeyF3:        {"f3", glfw.KeyF3},
	KeyF4:        {"f4", glfw.KeyF4},
	KeyF5:        {"f5", glfw.KeyF5},
	KeyF6:        {"f6", glfw.KeyF6},
	KeyF7:        {"f7", glfw.KeyF7},
	KeyF8:        {"f8", glfw.KeyF8},
	KeyF9:        {"f9", glfw.KeyF9},
	KeyF10:       {"f10", glfw.KeyF10},
	KeyF11:       {"f11", glfw.KeyF11},
	KeyF12:       {"f12", glfw.KeyF12},
	KeyShift:     {"shift", glfw.KeyLeftShift},
	KeyControl:   {"control", glfw.KeyLeftControl},
	KeyLeftAlt:   {"alt", glfw.KeyLeftAlt},
}

var keysByName = map[string]int{}

func init() {
	for i := 0; i < 26; i++ {
		keyboard[KeyA+i] = keyInfo{string(rune('a' + i)), glfw.KeyA + glfw.Key(i)}
	}
	for i := 0; i < 10; i++ {
		keyboard[Key0+i] = keyInfo{string(rune('0' + i)), glfw.Key0 + glfw.Key(i)}
	}
	for key, info := range keyboard {
		keysByName[info.name] = key
	}
}

// ParseKey maps a config key name ("w", "space", "f1", "shift") to a key code.
// Names are case-insensitive.
func ParseKey(name string) (int, error) {
	if key, ok := keysByName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return key, nil
	}
	return 0, fmt.Errorf("unknown key %q", name)
}

// KeyName is the config name of key, or "" when it has none.
func KeyName(key int) string {
	return keyboard[key].name
}

// Axis is a virtual input in [-1, 1] driven by two key sets.
type Axis struct {
	Pos []int
	Neg []int
}

type Input struct {
	Pressed      [256]bool
	JustPressed  [256]bool
	JustReleased [256]bool

	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64
	MouseCaptured            bool
	wasCaptured              bool

	WindowWidth, WindowHeight int
	CloseRequested            bool

	axes map[string]Axis
}

func (input *Input) BindAxis(name string, axis Axis) {
	if input.axes == nil {
		input.axes = make(map[string]Axis)
	}
	input.axes[name] = axis
}

// Axis returns +1 while any positive key is held, -1 for negative keys, 0
// for both or neither. Unknown axes read 0.
func (input *Input) Axis(name string) float32 {
	axis, ok := input.axes[name]
	if !ok {
		return 0
	}
	var v float32
	if input.anyPressed(axis.Pos) {
		v++
	}
	if input.anyPressed(axis.Neg) {
		v--
	}
	return v
}

func (input *Input) anyPressed(keys []int) bool {
	for _, k := range keys {
		if input.Pressed[k] {
			return true
		}
	}
	return false
}

// setKey records the key state for this frame and derives the edges.
func (input *Input) setKey(key int, down bool) {
	input.JustPressed[key] = down && !input.Pressed[key]
	input.JustReleased[key] = !down && input.Pressed[key]
	input.Pressed[key] = down
}

// setCursor updates the position; deltas are only reported while captured,
// and never on the frame capture starts.
func (input *Input) setCursor(x, y float64) {
	if input.MouseCaptured && input.wasCaptured {
		input.MouseDeltaX = x - input.MouseX
		input.MouseDeltaY = y - input.MouseY
	} else {
		input.MouseDeltaX = 0
		input.MouseDeltaY = 0
	}
	input.wasCaptured = input.MouseCaptured
	input.MouseX = x
	input.MouseY = y
}

type InputModule struct {
	Axes map[string]Axis
}

func (mod InputModule) Install(app *App, cmd *Commands) {
	input := &Input{}
	for name, axis := range mod.Axes {
		input.BindAxis(name, axis)
	}
	cmd.AddResources(input)
	app.UseSystem(
		System(inputSystem).
			InStage(PreUpdate).
			RunAlways(),
	)
}

var mouseButtons = map[int]glfw.MouseButton{
	MouseButtonLeft:   glfw.MouseButtonLeft,
	MouseButtonRight:  glfw.MouseButtonRight,
	MouseButtonMiddle: glfw.MouseButtonMiddle,
}

func inputSystem(s *WindowState, input *Input) {
	glfw.PollEvents()
	win := s.windowGlfw

	for key, info := range keyboard {
		input.setKey(key, win.GetKey(info.glfw) == glfw.Press)
	}
	for btn, glfwBtn := range mouseButtons {
		input.setKey(btn, win.GetMouseButton(glfwBtn) == glfw.Press)
	}

	input.setCursor(win.GetCursorPos())
	input.WindowWidth, input.WindowHeight = win.GetSize()
	input.CloseRequested = win.ShouldClose()

	if input.MouseCaptured {
		win.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	} else {
		win.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	}
}
