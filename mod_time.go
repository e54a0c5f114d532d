package physlines

import (
	"time"
)

// Time is refreshed once per frame in the Prelude stage.
type Time struct {
	Start time.Time
	Time  time.Time
	Dt    time.Duration
	Frame uint64
}

func (t *Time) DeltaSeconds() float32 {
	return float32(t.Dt.Seconds())
}

func (t *Time) ElapsedSeconds() float64 {
	return t.Time.Sub(t.Start).Seconds()
}

// advance moves the clock to now. The first frame reports a zero delta.
func (t *Time) advance(now time.Time) {
	if t.Frame > 0 {
		t.Dt = now.Sub(t.Time)
	}
	t.Time = now
	t.Frame++
}

type TimeModule struct{}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	now := time.Now()
	cmd.AddResources(&Time{Start: now, Time: now})
	app.UseSystem(
		System(timeSystem).
			InStage(Prelude).
			RunAlways(),
	)
}

func timeSystem(t *Time) {
	t.advance(time.Now())
}
