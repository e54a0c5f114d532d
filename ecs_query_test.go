package physlines

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuery_Map(t *testing.T) {
	type Comp1 struct{ a int }
	type Comp2 struct{ b float32 }
	type Comp3 struct{}

	ecs := MakeEcs()
	ecs.addEntity(Comp1{a: 1})                                 // comp1 only                       -- shouldn't match
	id2 := ecs.addEntity(Comp1{a: 2}, Comp2{b: 1.37})          // comp1 & comp2                    -- should match
	id3 := ecs.addEntity(Comp1{a: 3}, Comp2{b: 4.20}, Comp3{}) // comp1 & comp2 + something extra  -- should match
	ecs.addEntity(Comp1{a: 4}, Comp3{})                        // comp1 + something extra          -- shouldn't match
	ecs.addEntity(Comp2{b: 3.14})                              // comp2 only                       -- shouldn't match

	query := Query2[Comp1, Comp2]{ecs: &ecs}

	expectedEntityIds := []EntityId{id2, id3}
	expectedComponentsA := []Comp1{{a: 2}, {a: 3}}
	expectedComponentsB := []Comp2{{b: 1.37}, {b: 4.20}}
	numResults := 0

	query.Map(func(entityId EntityId, comp1 *Comp1, comp2 *Comp2) bool {
		if entityId != expectedEntityIds[numResults] {
			t.Errorf("Unexpected EntityId for row %v, expected %v got %v", numResults, expectedEntityIds[numResults], entityId)
		}
		if *comp1 != expectedComponentsA[numResults] {
			t.Errorf("Unexpected A for row %v, expected %v got %v", numResults, expectedComponentsA[numResults], *comp1)
		}
		if *comp2 != expectedComponentsB[numResults] {
			t.Errorf("Unexpected B for row %v, expected %v got %v", numResults, expectedComponentsB[numResults], *comp2)
		}

		numResults += 1
		return true
	})

	if 2 != numResults {
		t.Errorf("Unexpected number of results, got %v", numResults)
	}
}

func TestQuery_MapOptional(t *testing.T) {
	type Camera struct{ fov float32 }
	type Fly struct{}

	ecs := MakeEcs()
	still := ecs.addEntity(Camera{fov: 1})
	flying := ecs.addEntity(Camera{fov: 2}, Fly{})

	seen := map[EntityId]bool{}
	Query2[Camera, Fly]{ecs: &ecs}.Map(func(eid EntityId, cam *Camera, fly *Fly) bool {
		seen[eid] = fly != nil
		return true
	}, Fly{})

	assert.Equal(t, map[EntityId]bool{still: false, flying: true}, seen)
}

func TestQuery_MapStopsEarly(t *testing.T) {
	type Comp struct{ n int }

	ecs := MakeEcs()
	for i := 0; i < 5; i++ {
		ecs.addEntity(Comp{n: i})
	}

	visited := 0
	Query1[Comp]{ecs: &ecs}.Map(func(eid EntityId, c *Comp) bool {
		visited++
		return c.n < 2
	})
	assert.Equal(t, 3, visited)
}

func TestQuery_MapSkipsRemovedRows(t *testing.T) {
	type Comp struct{ n int }

	ecs := MakeEcs()
	a := ecs.addEntity(Comp{n: 1})
	ecs.addEntity(Comp{n: 2})
	ecs.removeEntity(a)

	var got []int
	Query1[Comp]{ecs: &ecs}.Map(func(eid EntityId, c *Comp) bool {
		got = append(got, c.n)
		return true
	})
	assert.Equal(t, []int{2}, got)
}

func TestQuery_MapWritesThrough(t *testing.T) {
	type Comp struct{ n int }

	ecs := MakeEcs()
	ecs.addEntity(Comp{n: 1})

	q := Query1[Comp]{ecs: &ecs}
	q.Map(func(eid EntityId, c *Comp) bool {
		c.n = 10
		return true
	})
	q.Map(func(eid EntityId, c *Comp) bool {
		assert.Equal(t, 10, c.n)
		return true
	})
}
