package physlines

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLifetimeSystem(t *testing.T) {
	app := NewAppBuilder().
		UseModule(TimeModule{}, LifecycleModule{}).
		Build()
	cmd := app.Commands()
	short := cmd.AddEntity(LifetimeComponent{TimeLeft: 1})
	long := cmd.AddEntity(LifetimeComponent{TimeLeft: 5})
	app.FlushCommands()

	alive := func() map[EntityId]float32 {
		res := map[EntityId]float32{}
		MakeQuery1[LifetimeComponent](cmd).Map(func(eid EntityId, lt *LifetimeComponent) bool {
			res[eid] = lt.TimeLeft
			return true
		})
		return res
	}

	clock, _ := Resource[Time](app)

	// no time passed, nothing changes
	app.callSystem(lifetimeSystem)
	app.FlushCommands()
	assert.Len(t, alive(), 2)

	clock.Dt = 500 * time.Millisecond
	app.callSystem(lifetimeSystem)
	app.FlushCommands()
	left := alive()
	assert.InDelta(t, 0.5, left[short], 1e-6)
	assert.InDelta(t, 4.5, left[long], 1e-6)

	clock.Dt = 600 * time.Millisecond
	app.callSystem(lifetimeSystem)
	app.FlushCommands()
	left = alive()
	assert.NotContains(t, left, short)
	assert.Contains(t, left, long)
}
