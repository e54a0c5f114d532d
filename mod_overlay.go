package physlines

import (
	"fmt"
	"strings"

	"github.com/gekko3d/physlines/physics"
)

const (
	overlayPaddingX = 8.0
	noticeLifetime  = 2.0
	fpsSmoothing    = 0.1
)

var (
	overlayNormalColor    = [4]float32{1, 1, 1, 1}
	overlayHighlightColor = [4]float32{1, 1, 0, 1}
	overlayEnabledColor   = [4]float32{0.4, 1, 0.4, 1}
	overlayDisabledColor  = [4]float32{0.6, 0.6, 0.6, 1}
)

// OverlayToggle binds a hotkey to a visualization parameter.
type OverlayToggle struct {
	Key     int
	Param   physics.VisualizationParameter
	Enabled bool
}

type OverlayStats struct {
	FPS          float32
	Lines        int
	SphereHeight float32
	HasSphere    bool
	Contacts     int
}

// Overlay is the state of the debug panel. The panel itself is rebuilt from
// it every frame.
type Overlay struct {
	Visible  bool
	Toggles  []OverlayToggle
	Stats    OverlayStats
	Position [2]float32 // pixels, top-left
	Scale    float32
}

// OverlayNotice is a short message shown under the panel, usually paired
// with a LifetimeComponent.
type OverlayNotice struct {
	Text string
}

// DefaultOverlayToggles maps F1..F9 to every parameter but the scale, which
// sits on F10 and switches the whole visualization.
func DefaultOverlayToggles() []OverlayToggle {
	toggles := []OverlayToggle{}
	for i, p := range physics.VisualizationParameters()[1:] {
		toggles = append(toggles, OverlayToggle{Key: KeyF1 + i, Param: p})
	}
	return append(toggles, OverlayToggle{Key: KeyF10, Param: physics.VisualizeScale})
}

type OverlayModule struct{}

func (m OverlayModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Overlay{
		Visible:  true,
		Toggles:  DefaultOverlayToggles(),
		Position: [2]float32{10, 10},
		Scale:    1,
	})
	ensureTextResources(app, cmd)

	app.UseSystem(
		System(overlayInputSystem).
			InStage(Update).
			RunAlways(),
	)
	app.UseSystem(
		System(overlayStatsSystem).
			InStage(PreRender).
			RunAlways(),
	)
	app.UseSystem(
		System(overlayDrawSystem).
			InStage(PreRender).
			RunAlways(),
	)
}

// ensureTextResources adds the text queue and the default glyph atlas unless
// another module already did.
func ensureTextResources(app *App, cmd *Commands) {
	if !cmd.HasResource(TextQueue{}) {
		cmd.AddResources(&TextQueue{})
	}
	if !cmd.HasResource(TextAtlas{}) {
		atlas, err := NewDefaultTextAtlas(DefaultFontSize)
		if err != nil {
			panic(err)
		}
		cmd.AddResources(atlas)
		app.Logger().Debugf("text atlas: %d glyphs", len(atlas.glyphs))
	}
}

func overlayInputSystem(cmd *Commands, input *Input, overlay *Overlay, handle *PhysicsHandle) {
	if input.JustPressed[KeyF12] {
		overlay.Visible = !overlay.Visible
	}
	for _, toggle := range overlay.Toggles {
		if !input.JustPressed[toggle.Key] {
			continue
		}
		enabled, ok := toggleVisualization(handle, toggle.Param)
		if !ok {
			continue
		}
		state := "off"
		if enabled {
			state = "on"
		}
		cmd.AddEntity(
			OverlayNotice{Text: fmt.Sprintf("%s %s", toggle.Param, state)},
			LifetimeComponent{TimeLeft: noticeLifetime},
		)
		cmd.Logger().Debugf("visualization %s %s", toggle.Param, state)
	}
}

// toggleVisualization flips p between 0 and 1 and reports the new state.
// ok is false when there is no scene.
func toggleVisualization(handle *PhysicsHandle, p physics.VisualizationParameter) (enabled bool, ok bool) {
	ok = handle.With(func(scene *physics.Scene) {
		enabled = scene.VisualizationParameter(p) == 0
		value := float32(0)
		if enabled {
			value = 1
		}
		// p comes from the toggle table, so it is always valid
		_ = scene.SetVisualizationParameter(p, value)
	})
	return enabled, ok
}

func overlayStatsSystem(cmd *Commands, t *Time, overlay *Overlay, handle *PhysicsHandle, lines *DebugLines) {
	lineCount := lines.Len()
	MakeQuery1[DebugLinesComponent](cmd).Map(func(eid EntityId, c *DebugLinesComponent) bool {
		lineCount += len(c.Lines)
		return true
	})
	overlay.Stats.Lines = lineCount
	overlay.Stats.FPS = smoothFPS(overlay.Stats.FPS, t.DeltaSeconds())

	handle.With(func(scene *physics.Scene) {
		readSceneStats(scene, overlay)
	})
}

func smoothFPS(prev, dt float32) float32 {
	if dt <= 0 {
		return prev
	}
	fps := 1 / dt
	if prev == 0 {
		return fps
	}
	return prev + (fps-prev)*fpsSmoothing
}

func readSceneStats(scene *physics.Scene, overlay *Overlay) {
	for i := range overlay.Toggles {
		overlay.Toggles[i].Enabled = scene.VisualizationParameter(overlay.Toggles[i].Param) != 0
	}

	overlay.Stats.HasSphere = false
	for _, a := range scene.Actors() {
		if a.Kind == physics.ActorDynamic && a.Shape == physics.ShapeSphere {
			overlay.Stats.SphereHeight = a.Position.Y()
			overlay.Stats.HasSphere = true
			break
		}
	}
	overlay.Stats.Contacts = len(scene.Contacts())
}

type overlayRow struct {
	Text  string
	Color [4]float32
}

// overlayRows lists the panel content: one row per toggle, then the stats.
func overlayRows(overlay *Overlay) []overlayRow {
	rows := make([]overlayRow, 0, len(overlay.Toggles)+4)
	for _, toggle := range overlay.Toggles {
		mark, color := "[ ]", overlayDisabledColor
		if toggle.Enabled {
			mark, color = "[x]", overlayEnabledColor
		}
		rows = append(rows, overlayRow{
			Text:  fmt.Sprintf("%s %-3s %s", mark, strings.ToUpper(KeyName(toggle.Key)), toggle.Param),
			Color: color,
		})
	}

	s := overlay.Stats
	height := "-"
	if s.HasSphere {
		height = fmt.Sprintf("%.2f", s.SphereHeight)
	}
	rows = append(rows,
		overlayRow{Text: fmt.Sprintf("fps: %.1f", s.FPS), Color: overlayNormalColor},
		overlayRow{Text: fmt.Sprintf("lines: %d", s.Lines), Color: overlayNormalColor},
		overlayRow{Text: "sphere height: " + height, Color: overlayNormalColor},
		overlayRow{Text: fmt.Sprintf("contacts: %d", s.Contacts), Color: overlayNormalColor},
	)
	return rows
}

func overlayDrawSystem(cmd *Commands, overlay *Overlay, atlas *TextAtlas, queue *TextQueue) {
	if !overlay.Visible {
		return
	}
	var notices []string
	MakeQuery1[OverlayNotice](cmd).Map(func(eid EntityId, n *OverlayNotice) bool {
		notices = append(notices, n.Text)
		return true
	})
	layoutOverlay(atlas, queue, overlayRows(overlay), notices, overlay.Position[0], overlay.Position[1], overlay.Scale)
}

// layoutOverlay draws the rows inside an ASCII box at (x, y) and the
// notices below it.
func layoutOverlay(m TextMeasurer, q *TextQueue, rows []overlayRow, notices []string, x, y, scale float32) {
	if scale <= 0 {
		scale = 1
	}
	lineH := m.LineHeight(scale)
	pipeW, _ := m.MeasureText("|", scale)
	plusW, _ := m.MeasureText("+", scale)
	dashW, _ := m.MeasureText("-", scale)
	if dashW <= 0 {
		dashW = 10 * scale
	}
	padding := overlayPaddingX * scale

	var inner float32
	for _, row := range rows {
		w, _ := m.MeasureText(row.Text, scale)
		inner = max(inner, w)
	}
	w := pipeW + padding + inner + padding + pipeW

	hline := func(y float32) {
		q.DrawText("+", x, y, scale, overlayNormalColor)
		if interior := w - 2*plusW; interior > 0 {
			q.DrawText(strings.Repeat("-", int(interior/dashW)), x+plusW, y, scale, overlayNormalColor)
		}
		q.DrawText("+", x+w-plusW, y, scale, overlayNormalColor)
	}

	hline(y)
	y += lineH
	for _, row := range rows {
		q.DrawText("|", x, y, scale, overlayNormalColor)
		q.DrawText(row.Text, x+pipeW+padding, y, scale, row.Color)
		q.DrawText("|", x+w-pipeW, y, scale, overlayNormalColor)
		y += lineH
	}
	hline(y)
	y += lineH * 1.2

	for _, notice := range notices {
		q.DrawText(notice, x, y, scale, overlayHighlightColor)
		y += lineH
	}
}
