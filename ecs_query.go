package physlines

import (
	"reflect"
)

// Queries walk archetypes in creation order and rows in storage order, so
// iteration is stable between frames. Components passed as optionals may be
// missing; their pointer is nil then.
type Query1[A any] struct{ ecs *Ecs }
type Query2[A, B any] struct{ ecs *Ecs }
type Query3[A, B, C any] struct{ ecs *Ecs }

func MakeQuery1[A any](cmd *Commands) Query1[A]             { return Query1[A]{ecs: cmd.app.ecs} }
func MakeQuery2[A, B any](cmd *Commands) Query2[A, B]       { return Query2[A, B]{ecs: cmd.app.ecs} }
func MakeQuery3[A, B, C any](cmd *Commands) Query3[A, B, C] { return Query3[A, B, C]{ecs: cmd.app.ecs} }

// column fetches the []T column of arch. ok is false when the archetype
// lacks T and T is not optional.
func column[T any](ecs *Ecs, arch *archetype, opt set[componentId]) (data []T, ok bool) {
	id := componentIdOf[T](ecs)
	if col, found := arch.columns[id]; found {
		return col.([]T), true
	}
	_, optional := opt[id]
	return nil, optional
}

func at[T any](data []T, r row) *T {
	if data == nil {
		return nil
	}
	return &data[r]
}

func (q Query1[A]) Map(m func(EntityId, *A) bool, optionals ...any) {
	opt := identifyOptionals(q.ecs, optionals...)

	for _, arch := range q.ecs.order {
		as, ok := column[A](q.ecs, arch, opt)
		if !ok {
			continue
		}
		for r, eid := range arch.owners {
			if eid == noEntity {
				continue
			}
			if !m(eid, at(as, row(r))) {
				return
			}
		}
	}
}

func (q Query2[A, B]) Map(m func(EntityId, *A, *B) bool, optionals ...any) {
	opt := identifyOptionals(q.ecs, optionals...)

	for _, arch := range q.ecs.order {
		as, okA := column[A](q.ecs, arch, opt)
		bs, okB := column[B](q.ecs, arch, opt)
		if !okA || !okB {
			continue
		}
		for r, eid := range arch.owners {
			if eid == noEntity {
				continue
			}
			if !m(eid, at(as, row(r)), at(bs, row(r))) {
				return
			}
		}
	}
}

func (q Query3[A, B, C]) Map(m func(EntityId, *A, *B, *C) bool, optionals ...any) {
	opt := identifyOptionals(q.ecs, optionals...)

	for _, arch := range q.ecs.order {
		as, okA := column[A](q.ecs, arch, opt)
		bs, okB := column[B](q.ecs, arch, opt)
		cs, okC := column[C](q.ecs, arch, opt)
		if !okA || !okB || !okC {
			continue
		}
		for r, eid := range arch.owners {
			if eid == noEntity {
				continue
			}
			if !m(eid, at(as, row(r)), at(bs, row(r)), at(cs, row(r))) {
				return
			}
		}
	}
}

func componentIdOf[T any](ecs *Ecs) componentId {
	return ecs.getComponentId(reflect.TypeFor[T]())
}

func identifyOptionals(ecs *Ecs, optionals ...any) set[componentId] {
	res := make(set[componentId], len(optionals))
	for _, o := range optionals {
		t := reflect.TypeOf(o)
		if t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		res[ecs.getComponentId(t)] = struct{}{}
	}
	return res
}
