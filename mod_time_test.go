package physlines

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTime_Advance(t *testing.T) {
	start := time.Unix(100, 0)
	clock := &Time{Start: start, Time: start}

	clock.advance(start.Add(5 * time.Millisecond))
	assert.Zero(t, clock.Dt, "first frame has no delta")
	assert.Equal(t, uint64(1), clock.Frame)

	clock.advance(start.Add(21 * time.Millisecond))
	assert.Equal(t, 16*time.Millisecond, clock.Dt)
	assert.InDelta(t, 0.016, clock.DeltaSeconds(), 1e-6)
	assert.InDelta(t, 0.021, clock.ElapsedSeconds(), 1e-9)
}

func TestTimeModule_RunsInPrelude(t *testing.T) {
	app := NewAppBuilder().UseModule(TimeModule{}).Build()

	clock, ok := Resource[Time](app)
	if !ok {
		t.Fatal("Time resource missing")
	}

	app.callSystems(app.state, execute)
	app.callSystems(app.state, execute)
	assert.Equal(t, uint64(2), clock.Frame)
	assert.GreaterOrEqual(t, clock.Dt, time.Duration(0))
}
