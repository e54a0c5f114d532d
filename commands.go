package physlines

import "reflect"

// Commands is handed to systems and modules. Entity changes are queued and
// applied when the current stage ends.
type Commands struct {
	app *App
}

func (cmd *Commands) ChangeState(newState State) *Commands {
	cmd.app.changeState(newState)
	return cmd
}

// Exit ends the app after the current frame. Stateful apps move to their
// final state instead.
func (cmd *Commands) Exit() {
	cmd.app.requestExit()
}

func (cmd *Commands) State() State {
	return cmd.app.state
}

func (cmd *Commands) Logger() Logger {
	return cmd.app.Logger()
}

// AddResources registers resources immediately so later systems can use them.
func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

func (cmd *Commands) HasResource(resource any) bool {
	t := reflect.TypeOf(resource)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return cmd.app.hasResource(t)
}

func (cmd *Commands) AddEntity(components ...any) EntityId {
	eid := cmd.app.ecs.nextEntityId()
	cmd.app.pendingAdditions = append(cmd.app.pendingAdditions, pendingAdd{
		eid:        eid,
		components: components,
	})
	return eid
}

func (cmd *Commands) AddComponents(entityId EntityId, components ...any) {
	cmd.app.pendingCompAdds = append(cmd.app.pendingCompAdds, pendingComponents{
		eid:        entityId,
		components: components,
	})
}

func (cmd *Commands) RemoveComponents(entityId EntityId, components ...any) {
	cmd.app.pendingCompRemovals = append(cmd.app.pendingCompRemovals, pendingComponents{
		eid:        entityId,
		components: components,
	})
}

func (cmd *Commands) RemoveEntity(entityId EntityId) {
	cmd.app.pendingRemovals = append(cmd.app.pendingRemovals, entityId)
}

// Component returns a pointer to entityId's T. Writes through it land in
// the entity's storage.
func Component[T any](cmd *Commands, entityId EntityId) (*T, bool) {
	c, ok := cmd.app.ecs.component(entityId, reflect.TypeFor[T]())
	if !ok {
		return nil, false
	}
	return c.(*T), true
}

// GetAllComponents returns copies of every component of entityId, in
// archetype key order.
func (cmd *Commands) GetAllComponents(entityId EntityId) []any {
	ecs := cmd.app.ecs
	arch, ok := ecs.archetypeOf(entityId)
	if !ok {
		return nil
	}

	r := arch.entities[entityId]
	res := make([]any, 0, len(arch.key))
	for _, compId := range arch.key {
		res = append(res, reflectSliceGet(arch.columns[compId], int(r)).Interface())
	}
	return res
}
