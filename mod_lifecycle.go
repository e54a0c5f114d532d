package physlines

// LifetimeComponent removes its entity once TimeLeft runs out.
type LifetimeComponent struct {
	TimeLeft float32
}

type LifecycleModule struct{}

func (mod LifecycleModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(lifetimeSystem).
			InStage(PostUpdate).
			RunAlways(),
	)
}

func lifetimeSystem(t *Time, cmd *Commands) {
	dt := t.DeltaSeconds()
	if dt <= 0 {
		return
	}
	MakeQuery1[LifetimeComponent](cmd).Map(func(eid EntityId, lt *LifetimeComponent) bool {
		lt.TimeLeft -= dt
		if lt.TimeLeft <= 0 {
			cmd.Logger().Debugf("entity %d expired", eid)
			cmd.RemoveEntity(eid)
		}
		return true
	})
}
