package physlines

type Module interface {
	Install(app *App, cmd *Commands)
}

type AppBuilder struct {
	app     *App
	modules []Module
}

func NewAppBuilder() *AppBuilder {
	return &AppBuilder{app: newApp()}
}

// UseStates makes the app stateful. States are the integers from initial to
// final inclusive; reaching final ends Run.
func (b *AppBuilder) UseStates(initialState State, finalState State) *AppBuilder {
	if finalState < initialState {
		panic("final state must not precede the initial state")
	}
	s := b.app.schedule
	s.hasStates = true
	s.first = initialState
	s.last = finalState
	b.app.state = initialState
	return b
}

func (b *AppBuilder) UseModule(modules ...Module) *AppBuilder {
	b.modules = append(b.modules, modules...)
	return b
}

// Build installs the modules in order and flushes whatever they queued.
func (b *AppBuilder) Build() *App {
	app := b.app
	commands := app.Commands()

	for _, module := range b.modules {
		module.Install(app, commands)
	}
	app.modules = append(app.modules, b.modules...)
	app.FlushCommands()
	return app
}
