package physlines

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockResource1 struct {
	name string
}
type MockResource2 struct {
	name string
}

const (
	stateA State = iota
	stateB
	stateC
)

func TestApp_changeState(t *testing.T) {
	app := NewAppBuilder().UseStates(stateA, stateB).Build()

	app.changeState(stateB)
	if app.nextState != stateB {
		t.Errorf("The nextState should be set correctly.")
	}
	if !app.stateTransitioning {
		t.Errorf("The stateTransitioning flag should be true.")
	}

	app.executeChangeState(stateB)
	if app.state != stateB {
		t.Errorf("The app state should change correctly.")
	}
}

func TestApp_addResources(t *testing.T) {
	app := newApp()

	resource1 := &MockResource1{name: "Resource1"}
	app.addResources(resource1)
	assert.Contains(t, app.resources, reflect.TypeOf(resource1).Elem())

	require.PanicsWithValue(t, fmt.Sprintf("%s is already in resources", reflect.TypeOf(resource1)), func() {
		app.addResources(resource1)
	})

	resource2 := &MockResource2{name: "Resource2"}
	app.addResources(resource2)
	got, ok := Resource[MockResource2](app)
	require.True(t, ok)
	assert.Same(t, resource2, got)

	assert.Panics(t, func() { app.addResources(MockResource1{}) }, "non-pointer resources are rejected")
}

func TestApp_callSystemResolvesResources(t *testing.T) {
	app := newApp()
	res := &MockResource1{name: "before"}
	app.addResources(res)

	var sawCommands bool
	app.callSystem(func(r *MockResource1, cmd *Commands) {
		r.name = "after"
		sawCommands = cmd != nil && cmd.app == app
	})

	assert.Equal(t, "after", res.name)
	assert.True(t, sawCommands)
}

func TestApp_callSystemPanicsOnMissingDependency(t *testing.T) {
	app := newApp()
	assert.Panics(t, func() {
		app.callSystem(func(r *MockResource2) {})
	})
	assert.Panics(t, func() {
		app.callSystem(func(n int) {})
	})
}

func TestApp_StatelessExit(t *testing.T) {
	frames := 0
	app := NewAppBuilder().Build()
	app.UseSystem(System(func(cmd *Commands) {
		frames++
		if frames == 3 {
			cmd.Exit()
		}
	}))

	app.Run()
	assert.Equal(t, 3, frames)
}

func TestApp_StatefulLifecycle(t *testing.T) {
	var calls []string
	record := func(s string) func() {
		return func() { calls = append(calls, s) }
	}

	app := NewAppBuilder().UseStates(stateA, stateC).Build()
	app.UseSystem(System(record("a.enter")).InState(OnEnter(stateA)))
	app.UseSystem(System(record("a.exit")).InState(OnExit(stateA)))
	app.UseSystem(System(record("b.enter")).InState(OnEnter(stateB)))
	app.UseSystem(System(record("c.enter")).InState(OnEnter(stateC)))
	app.UseSystem(System(record("c.exit")).InState(OnExit(stateC)))
	app.UseSystem(System(func(cmd *Commands) {
		calls = append(calls, "always")
		switch cmd.State() {
		case stateA:
			cmd.ChangeState(stateB)
		case stateB:
			cmd.Exit()
		}
	}).InStage(PostUpdate))
	app.UseSystem(System(record("b.execute")).InState(OnExecute(stateB)).InStage(PreUpdate))

	app.Run()

	assert.Equal(t, []string{
		"a.enter",
		"always", "a.exit", "b.enter",
		"b.execute", "always", "c.enter", "c.exit",
	}, calls)
}

func TestApp_CommandsAreDeferredUntilStageEnds(t *testing.T) {
	type Marker struct{ n int }

	app := NewAppBuilder().Build()
	var seenInSameStage, seenInNextStage int

	app.UseSystem(System(func(cmd *Commands) {
		cmd.AddEntity(Marker{n: 1})
		MakeQuery1[Marker](cmd).Map(func(EntityId, *Marker) bool { seenInSameStage++; return true })
	}).InStage(Update))
	app.UseSystem(System(func(cmd *Commands) {
		MakeQuery1[Marker](cmd).Map(func(EntityId, *Marker) bool { seenInNextStage++; return true })
		cmd.Exit()
	}).InStage(PostUpdate))

	app.Run()
	assert.Equal(t, 0, seenInSameStage)
	assert.Equal(t, 1, seenInNextStage)
}

func TestApp_RemoveViaCommands(t *testing.T) {
	type A struct{}
	type B struct{}

	app := NewAppBuilder().Build()
	cmd := app.Commands()
	eid := cmd.AddEntity(A{}, B{})
	app.FlushCommands()
	assert.Len(t, cmd.GetAllComponents(eid), 2)

	cmd.RemoveComponents(eid, B{})
	app.FlushCommands()
	assert.Equal(t, []any{A{}}, cmd.GetAllComponents(eid))

	cmd.RemoveEntity(eid)
	app.FlushCommands()
	assert.Nil(t, cmd.GetAllComponents(eid))
}

func TestApp_UseStage(t *testing.T) {
	app := NewAppBuilder().Build()
	overlay := Stage{Name: "Overlay"}
	app.UseStage(overlay, AfterStage(Render))

	names := make([]string, 0, len(app.schedule.stages))
	for _, s := range app.schedule.stages {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Prelude", "PreUpdate", "Update", "PostUpdate", "PreRender", "Render", "Overlay", "PostRender", "Finale"}, names)

	early := Stage{Name: "Early"}
	app.UseStage(early, BeforeStage(Prelude))
	assert.Equal(t, "Early", app.schedule.stages[0].Name)

	assert.Panics(t, func() { app.UseStage(Stage{Name: "X"}, AfterStage(Stage{Name: "Missing"})) })
	assert.Panics(t, func() { app.UseStage(overlay, AfterStage(Update)) })
}

func TestApp_UseSystemValidation(t *testing.T) {
	stateless := NewAppBuilder().Build()
	assert.Panics(t, func() { stateless.UseSystem(System(func() {}).InState(OnEnter(stateA))) })
	assert.Panics(t, func() { stateless.UseSystem(System(func() {}).InStage(Stage{Name: "Missing"})) })

	stateful := NewAppBuilder().UseStates(stateA, stateB).Build()
	assert.Panics(t, func() { stateful.UseSystem(System(func() {}).InState(OnEnter(stateC))) })
	assert.NotPanics(t, func() { stateful.UseSystem(System(func() {}).InState(OnEnter(stateA)).RunAlways()) })
}
