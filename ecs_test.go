package physlines

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEcs_MakeEcs(t *testing.T) {
	ecs := MakeEcs()

	if len(ecs.archetypes) != 0 {
		t.Errorf("Expected archetypes to be empty, got %v", ecs.archetypes)
	}
	if len(ecs.entityIndex) != 0 {
		t.Errorf("Expected entityIndex to be empty, got %v", ecs.entityIndex)
	}
	if ecs.nextId != 0 {
		t.Errorf("Expected first entity id to be 0, got %v", ecs.nextId)
	}
}

func TestEcs_AddEntity(t *testing.T) {
	type Tag struct{ name string }

	ecs := MakeEcs()
	empty := ecs.addEntity()
	tagged := ecs.addEntity(Tag{name: "grid"})

	if !ecs.hasEntity(empty) || !ecs.hasEntity(tagged) {
		t.Fatalf("Expected both entities to be indexed")
	}
	if ecs.entityIndex[empty] == ecs.entityIndex[tagged] {
		t.Errorf("Entities with different components ended up in the same archetype")
	}

	c, ok := ecs.component(tagged, reflect.TypeOf(Tag{}))
	require.True(t, ok)
	assert.Equal(t, "grid", c.(*Tag).name)
}

func TestEcs_AddComponents(t *testing.T) {
	type A struct{ a int }
	type B struct{ b string }
	type C struct{ c string }

	ecs := MakeEcs()
	id := ecs.addEntity(A{a: 1337})
	ecs.addComponents(id, B{b: "test"})
	ecs.addComponents(id, &C{c: "pointer"})

	arch, ok := ecs.archetypeOf(id)
	require.True(t, ok)
	assert.Len(t, arch.key, 3)

	a, ok := ecs.component(id, reflect.TypeOf(A{}))
	require.True(t, ok)
	assert.Equal(t, 1337, a.(*A).a, "existing components survive the move")

	cc, ok := ecs.component(id, reflect.TypeOf(C{}))
	require.True(t, ok)
	assert.Equal(t, "pointer", cc.(*C).c)
}

func TestEcs_AddExistingComponentOverwrites(t *testing.T) {
	type A struct{ a int }

	ecs := MakeEcs()
	id := ecs.addEntity(A{a: 1})
	before := ecs.entityIndex[id]
	ecs.addComponents(id, A{a: 2})

	assert.Equal(t, before, ecs.entityIndex[id])
	a, _ := ecs.component(id, reflect.TypeOf(A{}))
	assert.Equal(t, 2, a.(*A).a)
}

func TestEcs_RemoveComponents(t *testing.T) {
	type A struct{ a int }
	type B struct{ b int }

	ecs := MakeEcs()
	id := ecs.addEntity(A{a: 7}, B{b: 8})
	ecs.removeComponents(id, B{})

	arch, _ := ecs.archetypeOf(id)
	assert.Len(t, arch.key, 1)
	_, ok := ecs.component(id, reflect.TypeOf(B{}))
	assert.False(t, ok)
	a, ok := ecs.component(id, reflect.TypeOf(A{}))
	require.True(t, ok)
	assert.Equal(t, 7, a.(*A).a)
}

func TestEcs_AddInvalidComponentShouldPanic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic on invalid component type")
		}
	}()

	ecs := MakeEcs()
	ecs.addEntity(123)
}

func TestEcs_ComponentRegistration(t *testing.T) {
	type Position struct{ x, y float64 }

	ecs := MakeEcs()
	id1 := ecs.getComponentId(reflect.TypeOf(Position{}))
	id2 := ecs.getComponentId(reflect.TypeOf(Position{}))

	if id1 != id2 {
		t.Errorf("expected component IDs to be equal")
	}
	if tp := ecs.getComponentType(id1); tp != reflect.TypeOf(Position{}) {
		t.Errorf("expected Position type, got %s", tp.Name())
	}
}

func TestEcs_ArchetypeKeys(t *testing.T) {
	assert.Equal(t, archetypeKey{1, 2, 3}, dedupAndSortArchetypeKey(archetypeKey{3, 1, 2, 1, 3}))
	assert.Equal(t, archetypeKey{1, 2, 3, 4}, combineArchetypeKeys(archetypeKey{1, 2, 3}, archetypeKey{4, 3, 2, 1}))

	a := archetypeKey{2, 1}
	dedupAndSortArchetypeKey(a)
	assert.Equal(t, archetypeKey{2, 1}, a, "input key must not be modified")

	assert.Equal(t, getArchetypeId(archetypeKey{1, 2}), getArchetypeId(archetypeKey{1, 2}))
	assert.NotEqual(t, getArchetypeId(archetypeKey{1, 2}), getArchetypeId(archetypeKey{2, 1}))
}

func TestEcs_RemoveEntityRecyclesRow(t *testing.T) {
	type Position struct{ X, Y float64 }

	ecs := MakeEcs()
	first := ecs.addEntity(Position{1, 2})
	arch, _ := ecs.archetypeOf(first)
	ecs.removeEntity(first)

	if ecs.hasEntity(first) {
		t.Errorf("entity not removed")
	}
	assert.Equal(t, []row{0}, arch.free)
	assert.Equal(t, noEntity, arch.owners[0])

	second := ecs.addEntity(Position{3, 4})
	assert.Equal(t, row(0), arch.entities[second])
	assert.Empty(t, arch.free)
	assert.Len(t, arch.columns[ecs.getComponentId(reflect.TypeOf(Position{}))].([]Position), 1)

	// removing twice is a no-op
	ecs.removeEntity(first)
}
