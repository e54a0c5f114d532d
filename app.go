package physlines

import (
	"fmt"
	"reflect"
	"runtime"
)

type systemFn any

type App struct {
	schedule *schedule
	modules  []Module

	state              State
	nextState          State
	stateTransitioning bool
	exitRequested      bool

	resources map[reflect.Type]any
	ecs       *Ecs

	// deferred until the end of the current stage
	pendingAdditions    []pendingAdd
	pendingRemovals     []EntityId
	pendingCompAdds     []pendingComponents
	pendingCompRemovals []pendingComponents
}

type pendingAdd struct {
	eid        EntityId
	components []any
}

type pendingComponents struct {
	eid        EntityId
	components []any
}

func newApp() *App {
	ecs := MakeEcs()
	return &App{
		schedule:  newSchedule(),
		resources: make(map[reflect.Type]any),
		ecs:       &ecs,
	}
}

func (app *App) Commands() *Commands {
	return &Commands{app: app}
}

// State returns the current state. It is meaningless for stateless apps.
func (app *App) State() State {
	return app.state
}

// Run drives frames until the final state is reached, or, for stateless
// apps, until Commands.Exit is called.
func (app *App) Run() {
	logger := app.Logger()
	if app.schedule.hasStates {
		logger.Debugf("running in stateful mode (%d -> %d)", app.schedule.first, app.schedule.last)
		app.state = app.schedule.first
		app.callSystems(app.state, enter)
	} else {
		logger.Debugf("running in stateless mode")
	}

	for !app.frame() {
	}
	logger.Debugf("app finished")
}

// frame runs every stage once and applies a pending state change.
// It reports whether the app is done.
func (app *App) frame() bool {
	app.callSystems(app.state, execute)

	if !app.schedule.hasStates {
		return app.exitRequested
	}

	if app.stateTransitioning {
		app.stateTransitioning = false
		app.executeChangeState(app.nextState)
	}
	if app.state == app.schedule.last {
		app.callSystems(app.state, exit)
		return true
	}
	return false
}

func (app *App) callSystems(state State, phase statePhase) {
	for _, stage := range app.schedule.stages {
		for _, system := range app.schedule.systems(stage, state, phase) {
			app.callSystem(system)
		}
		app.FlushCommands()
	}
}

func (app *App) changeState(newState State) {
	app.nextState = newState
	app.stateTransitioning = true
}

func (app *App) executeChangeState(newState State) {
	if newState == app.state {
		return
	}
	app.Logger().Debugf("state %d -> %d", app.state, newState)
	app.callSystems(app.state, exit)
	app.state = newState
	app.callSystems(app.state, enter)
}

func (app *App) requestExit() {
	if app.schedule.hasStates {
		app.changeState(app.schedule.last)
		return
	}
	app.exitRequested = true
}

// addResources registers pointer resources keyed by their element type.
func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if resourceType == nil || resourceType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("resource must be a pointer, got %v", resourceType))
		}
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}
		app.resources[resourceType.Elem()] = resource
	}
	return app
}

func (app *App) hasResource(t reflect.Type) bool {
	_, ok := app.resources[t]
	return ok
}

// Resource looks up the resource of type *T.
func Resource[T any](app *App) (*T, bool) {
	r, ok := app.resources[reflect.TypeFor[T]()]
	if !ok {
		return nil, false
	}
	return r.(*T), true
}

var typeOfCommands = reflect.TypeOf(Commands{})

// callSystem resolves every pointer parameter of system against the
// resources (or *Commands) and calls it.
func (app *App) callSystem(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)
	if systemType.Kind() != reflect.Func {
		panic(fmt.Sprintf("system must be a func, got %s", systemType))
	}

	args := make([]reflect.Value, systemType.NumIn())
	for i := range args {
		argType := systemType.In(i)
		if argType.Kind() != reflect.Pointer {
			app.unresolved(systemValue, systemType, argType)
		}

		underlyingType := argType.Elem()
		if underlyingType == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
		} else if resource, ok := app.resources[underlyingType]; ok {
			args[i] = reflect.NewAt(underlyingType, reflect.ValueOf(resource).UnsafePointer())
		} else {
			app.unresolved(systemValue, systemType, argType)
		}
	}
	systemValue.Call(args)
}

func (app *App) unresolved(systemValue reflect.Value, systemType, argType reflect.Type) {
	panic(fmt.Sprintf("Unable to resolve System dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
		runtime.FuncForPC(systemValue.Pointer()).Name(),
		systemType,
		argType,
	))
}

// FlushCommands applies deferred entity changes: removals first, then new
// entities, then component additions and removals.
func (app *App) FlushCommands() {
	for _, eid := range app.pendingRemovals {
		app.ecs.removeEntity(eid)
	}
	app.pendingRemovals = app.pendingRemovals[:0]

	for _, add := range app.pendingAdditions {
		app.ecs.insertEntity(add.eid, add.components...)
	}
	app.pendingAdditions = app.pendingAdditions[:0]

	for _, add := range app.pendingCompAdds {
		app.ecs.addComponents(add.eid, add.components...)
	}
	app.pendingCompAdds = app.pendingCompAdds[:0]

	for _, rm := range app.pendingCompRemovals {
		app.ecs.removeComponents(rm.eid, rm.components...)
	}
	app.pendingCompRemovals = app.pendingCompRemovals[:0]
}
