package physlines

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"reflect"
	"slices"
	"sync"
)

type EntityId uint64
type archetypeId uint64
type archetypeKey []componentId
type componentId uint32
type row int
type set[T comparable] = map[T]struct{}

// noEntity marks a recycled row in archetype.owners.
const noEntity = EntityId(^uint64(0))

// Ecs stores entities by archetype: every distinct set of component types
// gets one archetype with one typed column per component.
type Ecs struct {
	archetypes  map[archetypeId]*archetype
	order       []*archetype // creation order, queries walk it
	entityIndex map[EntityId]archetypeId

	idLock   sync.Mutex
	nextId   EntityId
	compLock sync.Mutex
	nextComp componentId
	typeToId map[reflect.Type]componentId
	idToType map[componentId]reflect.Type
}

func MakeEcs() Ecs {
	return Ecs{
		archetypes:  make(map[archetypeId]*archetype),
		entityIndex: make(map[EntityId]archetypeId),
		typeToId:    make(map[reflect.Type]componentId),
		idToType:    make(map[componentId]reflect.Type),
	}
}

type archetype struct {
	id       archetypeId
	key      archetypeKey
	entities map[EntityId]row
	owners   []EntityId
	columns  map[componentId]any // []T per component, built via reflection
	free     []row
}

func (a *archetype) has(id componentId) bool {
	_, ok := a.columns[id]
	return ok
}

func (ecs *Ecs) addEntity(components ...any) EntityId {
	return ecs.insertEntity(ecs.nextEntityId(), components...)
}

func (ecs *Ecs) insertEntity(entityId EntityId, components ...any) EntityId {
	arch := ecs.archetypeFor(ecs.keyOf(components...))

	r := ecs.reserveRow(arch, entityId)
	for _, component := range components {
		ecs.writeComponent(arch, r, component)
	}
	ecs.entityIndex[entityId] = arch.id
	return entityId
}

func (ecs *Ecs) hasEntity(entityId EntityId) bool {
	_, ok := ecs.entityIndex[entityId]
	return ok
}

func (ecs *Ecs) removeEntity(entityId EntityId) {
	if !ecs.hasEntity(entityId) {
		return
	}
	ecs.releaseRow(entityId)
	delete(ecs.entityIndex, entityId)
}

func (ecs *Ecs) addComponents(entityId EntityId, components ...any) {
	src, ok := ecs.archetypeOf(entityId)
	if !ok {
		return
	}
	dst := ecs.archetypeFor(combineArchetypeKeys(src.key, ecs.keyOf(components...)))
	r := ecs.move(entityId, src, dst)
	for _, component := range components {
		ecs.writeComponent(dst, r, component)
	}
}

func (ecs *Ecs) removeComponents(entityId EntityId, components ...any) {
	src, ok := ecs.archetypeOf(entityId)
	if !ok {
		return
	}

	drop := make(set[componentId])
	for _, id := range ecs.keyOf(components...) {
		drop[id] = struct{}{}
	}
	var key archetypeKey
	for _, id := range src.key {
		if _, gone := drop[id]; !gone {
			key = append(key, id)
		}
	}

	ecs.move(entityId, src, ecs.archetypeFor(key))
}

// move copies the columns shared by src and dst into a fresh row of dst.
func (ecs *Ecs) move(entityId EntityId, src, dst *archetype) row {
	srcRow := src.entities[entityId]
	if src == dst {
		return srcRow
	}
	dstRow := ecs.reserveRow(dst, entityId)

	for _, id := range src.key {
		if !dst.has(id) {
			continue
		}
		reflectSliceSet(dst.columns[id], int(dstRow), reflectSliceGet(src.columns[id], int(srcRow)))
	}

	ecs.clearRow(src, srcRow)
	delete(src.entities, entityId)
	ecs.entityIndex[entityId] = dst.id
	return dstRow
}

func (ecs *Ecs) writeComponent(arch *archetype, r row, component any) {
	value := reflect.ValueOf(component)
	if value.Kind() == reflect.Pointer {
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		panic(fmt.Errorf("component must be a struct or a pointer to a struct, got %s", value.Kind()))
	}
	reflectSliceSet(arch.columns[ecs.getComponentId(value.Type())], int(r), value)
}

// component returns a pointer to entityId's component of type t.
func (ecs *Ecs) component(entityId EntityId, t reflect.Type) (any, bool) {
	arch, ok := ecs.archetypeOf(entityId)
	if !ok {
		return nil, false
	}
	id := ecs.getComponentId(t)
	if !arch.has(id) {
		return nil, false
	}
	return reflectSliceGet(arch.columns[id], int(arch.entities[entityId])).Addr().Interface(), true
}

func (ecs *Ecs) archetypeOf(entityId EntityId) (*archetype, bool) {
	archId, ok := ecs.entityIndex[entityId]
	if !ok {
		return nil, false
	}
	return ecs.archetypes[archId], true
}

func (ecs *Ecs) archetypeFor(key archetypeKey) *archetype {
	id := getArchetypeId(key)
	if arch, ok := ecs.archetypes[id]; ok {
		return arch
	}

	arch := &archetype{
		id:       id,
		key:      key,
		entities: make(map[EntityId]row),
		columns:  make(map[componentId]any, len(key)),
	}
	for _, compId := range key {
		arch.columns[compId] = reflectSliceMake(ecs.getComponentType(compId))
	}
	ecs.archetypes[id] = arch
	ecs.order = append(ecs.order, arch)
	return arch
}

func (ecs *Ecs) reserveRow(arch *archetype, entityId EntityId) row {
	var r row
	if n := len(arch.free); n > 0 {
		r = arch.free[n-1]
		arch.free = arch.free[:n-1]
		arch.owners[r] = entityId
	} else {
		r = row(len(arch.owners))
		arch.owners = append(arch.owners, entityId)
		for _, compId := range arch.key {
			arch.columns[compId] = reflectSliceAppend(arch.columns[compId], reflect.Zero(ecs.getComponentType(compId)))
		}
	}
	arch.entities[entityId] = r
	return r
}

func (ecs *Ecs) releaseRow(entityId EntityId) {
	arch, ok := ecs.archetypeOf(entityId)
	if !ok {
		return
	}
	ecs.clearRow(arch, arch.entities[entityId])
	delete(arch.entities, entityId)
}

// clearRow zeroes a row so recycled slots do not keep old references alive.
func (ecs *Ecs) clearRow(arch *archetype, r row) {
	for _, compId := range arch.key {
		reflectSliceZero(arch.columns[compId], int(r))
	}
	arch.owners[r] = noEntity
	arch.free = append(arch.free, r)
}

// keyOf maps component values to their canonical key: sorted, deduplicated ids.
func (ecs *Ecs) keyOf(components ...any) archetypeKey {
	key := make(archetypeKey, 0, len(components))
	for _, component := range components {
		t := reflect.TypeOf(component)
		if t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t.Kind() != reflect.Struct {
			panic("component should be a struct")
		}
		key = append(key, ecs.getComponentId(t))
	}
	return dedupAndSortArchetypeKey(key)
}

func combineArchetypeKeys(a archetypeKey, b archetypeKey) archetypeKey {
	merged := make(archetypeKey, 0, len(a)+len(b))
	merged = append(merged, a...)
	return dedupAndSortArchetypeKey(append(merged, b...))
}

func dedupAndSortArchetypeKey(key archetypeKey) archetypeKey {
	res := slices.Clone(key)
	slices.Sort(res)
	return slices.Compact(res)
}

// getArchetypeId hashes a key. Ids are fast map keys; the key itself stays
// the source of truth.
func getArchetypeId(key archetypeKey) archetypeId {
	hash := fnv.New64a()
	var b [4]byte
	for _, compId := range key {
		binary.LittleEndian.PutUint32(b[:], uint32(compId))
		hash.Write(b[:])
	}
	return archetypeId(hash.Sum64())
}

func (ecs *Ecs) nextEntityId() EntityId {
	ecs.idLock.Lock()
	defer ecs.idLock.Unlock()

	id := ecs.nextId
	ecs.nextId++
	return id
}

func (ecs *Ecs) getComponentId(t reflect.Type) componentId {
	ecs.compLock.Lock()
	defer ecs.compLock.Unlock()

	if id, ok := ecs.typeToId[t]; ok {
		return id
	}
	id := ecs.nextComp
	ecs.nextComp++
	ecs.typeToId[t] = id
	ecs.idToType[id] = t
	return id
}

func (ecs *Ecs) getComponentType(id componentId) reflect.Type {
	ecs.compLock.Lock()
	defer ecs.compLock.Unlock()

	if t, ok := ecs.idToType[id]; ok {
		return t
	}
	panic(fmt.Sprintf("component id %d not registered", id))
}
