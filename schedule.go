package physlines

import (
	"fmt"
	"slices"
)

type State int

type Stage struct {
	Name string
}

var (
	Prelude    = Stage{Name: "Prelude"}
	PreUpdate  = Stage{Name: "PreUpdate"}
	Update     = Stage{Name: "Update"}
	PostUpdate = Stage{Name: "PostUpdate"}
	PreRender  = Stage{Name: "PreRender"}
	Render     = Stage{Name: "Render"}
	PostRender = Stage{Name: "PostRender"}
	Finale     = Stage{Name: "Finale"}
)

func defaultStages() []Stage {
	return []Stage{Prelude, PreUpdate, Update, PostUpdate, PreRender, Render, PostRender, Finale}
}

type statePhase int

const (
	enter statePhase = iota
	execute
	exit
)

func (p statePhase) String() string {
	switch p {
	case enter:
		return "enter"
	case execute:
		return "execute"
	case exit:
		return "exit"
	}
	return fmt.Sprintf("statePhase(%d)", int(p))
}

type stateScheduleBuilder struct {
	state State
	phase statePhase
}

func OnEnter(state State) stateScheduleBuilder {
	return stateScheduleBuilder{state: state, phase: enter}
}

func OnExecute(state State) stateScheduleBuilder {
	return stateScheduleBuilder{state: state, phase: execute}
}

func OnExit(state State) stateScheduleBuilder {
	return stateScheduleBuilder{state: state, phase: exit}
}

type systemScheduleBuilder struct {
	system        systemFn
	inStage       Stage
	inState       State
	inStatePhase  statePhase
	stateProvided bool
}

// System schedules fn in the Update stage on every frame. Narrow it with
// InStage and InState.
func System(fn systemFn) systemScheduleBuilder {
	return systemScheduleBuilder{system: fn, inStage: Update}
}

func (sched systemScheduleBuilder) InStage(s Stage) systemScheduleBuilder {
	sched.inStage = s
	return sched
}

func (sched systemScheduleBuilder) InState(s stateScheduleBuilder) systemScheduleBuilder {
	sched.inState = s.state
	sched.inStatePhase = s.phase
	sched.stateProvided = true
	return sched
}

// RunAlways drops any state binding: the system runs on every frame.
func (sched systemScheduleBuilder) RunAlways() systemScheduleBuilder {
	sched.stateProvided = false
	return sched
}

type stagePosition int

const (
	stageBefore stagePosition = iota
	stageAfter
)

type stagePositionBuilder struct {
	position stagePosition
	target   Stage
}

func BeforeStage(s Stage) stagePositionBuilder {
	return stagePositionBuilder{position: stageBefore, target: s}
}

func AfterStage(s Stage) stagePositionBuilder {
	return stagePositionBuilder{position: stageAfter, target: s}
}

// schedule holds systems per stage, split into stateless ones and ones bound
// to a (state, phase) pair.
type schedule struct {
	stages    []Stage
	always    map[string][]systemFn
	stateful  map[string]map[State]map[statePhase][]systemFn
	hasStates bool
	first     State
	last      State
}

func newSchedule() *schedule {
	s := &schedule{
		always:   make(map[string][]systemFn),
		stateful: make(map[string]map[State]map[statePhase][]systemFn),
	}
	for _, stage := range defaultStages() {
		s.addStage(len(s.stages), stage)
	}
	return s
}

func (s *schedule) addStage(at int, stage Stage) {
	if s.hasStage(stage) {
		panic(fmt.Sprintf("Stage %v already exists", stage.Name))
	}
	s.stages = slices.Insert(s.stages, at, stage)
	s.always[stage.Name] = nil
	s.stateful[stage.Name] = make(map[State]map[statePhase][]systemFn)
}

func (s *schedule) hasStage(stage Stage) bool {
	return slices.ContainsFunc(s.stages, func(o Stage) bool { return o.Name == stage.Name })
}

func (s *schedule) add(sched systemScheduleBuilder) {
	if !s.hasStage(sched.inStage) {
		panic(fmt.Sprintf("Stage %v doesn't exist", sched.inStage.Name))
	}
	if !sched.stateProvided {
		s.always[sched.inStage.Name] = append(s.always[sched.inStage.Name], sched.system)
		return
	}

	if !s.hasStates {
		panic("Trying to use a stateful system in a stateless app.")
	}
	if sched.inState < s.first || sched.inState > s.last {
		panic(fmt.Sprintf("State %v doesn't exist", sched.inState))
	}
	byState := s.stateful[sched.inStage.Name]
	if byState[sched.inState] == nil {
		byState[sched.inState] = make(map[statePhase][]systemFn)
	}
	byState[sched.inState][sched.inStatePhase] = append(byState[sched.inState][sched.inStatePhase], sched.system)
}

// systems lists what runs in stage for the given state and phase.
// Stateless systems only run in the execute phase, ahead of stateful ones.
func (s *schedule) systems(stage Stage, state State, phase statePhase) []systemFn {
	var res []systemFn
	if phase == execute {
		res = append(res, s.always[stage.Name]...)
	}
	if s.hasStates {
		res = append(res, s.stateful[stage.Name][state][phase]...)
	}
	return res
}

func (app *App) UseStage(stage Stage, where stagePositionBuilder) *App {
	idx := slices.IndexFunc(app.schedule.stages, func(s Stage) bool { return s.Name == where.target.Name })
	if idx == -1 {
		panic(fmt.Sprintf("Stage %v not found", where.target.Name))
	}
	if where.position == stageAfter {
		idx++
	}
	app.schedule.addStage(idx, stage)
	return app
}

func (app *App) UseSystem(system systemScheduleBuilder) *App {
	app.schedule.add(system)
	return app
}
