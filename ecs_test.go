package kite

import (
	"reflect"
	"testing"
)

func TestEcs_MakeEcs(t *testing.T) {
	ecs := MakeEcs()

	// Check if the fields are initialized properly
	if len(ecs.archetypes) != 0 {
		t.Errorf("Expected archetypes to be empty, got %v", ecs.archetypes)
	}

	if len(ecs.entityIndex) != 0 {
		t.Errorf("Expected entityIndex to be empty, got %v", ecs.entityIndex)
	}

	if ecs.entityIdCounter != NoEntity {
		t.Errorf("Expected entityIdCounter to be NoEntity, got %v", ecs.entityIdCounter)
	}

	if ecs.componentIdCounter != 0 {
		t.Errorf("Expected componentIdCounter to be 0, got %v", ecs.componentIdCounter)
	}
}

func TestEcs_AddEntity(t *testing.T) {
	ecs := MakeEcs()

	// Add an entity with no components (can also test with components added)
	entityId := ecs.addEntity()

	if entityId == NoEntity {
		t.Errorf("Valid entity ids must not collide with NoEntity")
	}

	// Check if the entity is added to the entityIndex
	if _, ok := ecs.entityIndex[entityId]; !ok {
		t.Errorf("Expected entityId %v to be in entityIndex", entityId)
	}

	type TestComponent struct {
		x string
	}
	testComp := TestComponent{
		x: "test",
	}

	entityId2 := ecs.addEntity(testComp)
	// Check if the entity is added to the entityIndex
	if _, ok := ecs.entityIndex[entityId2]; !ok {
		t.Errorf("Expected entityId %v to be in entityIndex", entityId2)
	}

	archId1 := ecs.entityIndex[entityId]
	archId2 := ecs.entityIndex[entityId2]
	if archId1 == archId2 {
		t.Errorf("Entities with different components ended up in the same Archetype")
	}
}

func TestEcs_AddComponents(t *testing.T) {
	type TestComponent0 struct{ a int }
	type TestComponent1 struct{ x string }
	type TestComponent2 struct{ y string }
	type TestComponent3 struct{ z string }

	ecs := MakeEcs()

	entityId := ecs.addEntity(TestComponent0{a: 1337})

	ecs.addComponents(entityId, TestComponent1{x: "test"}, TestComponent2{y: "hello"})

	// Test using pointers too
	ecs.addComponents(entityId, &TestComponent3{z: "test-2"})

	archId := ecs.entityIndex[entityId]
	arch := ecs.archetypes[archId]
	if 4 != len(arch.componentData) {
		t.Errorf("Should have ended up in an Archetype with 4 components")
	}
}

func TestEcs_AddInvalidComponentShouldPanic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic on invalid component type")
		}
	}()

	ecs := MakeEcs()
	ecs.addEntity(123) // invalid component
}

func TestEcs_ComponentRegistration(t *testing.T) {
	type Position struct{ x, y float64 }

	ecs := MakeEcs()
	id1 := ecs.getComponentId(reflect.TypeOf(Position{}))
	id2 := ecs.getComponentId(reflect.TypeOf(Position{}))

	if id1 != id2 {
		t.Errorf("expected component IDs to be equal")
	}

	tp := ecs.getComponentType(id1)
	if tp != reflect.TypeOf(Position{}) {
		t.Errorf("expected Position type, got %s", tp.Name())
	}
}

func TestEcs_ArchetypeKeyExtension(t *testing.T) {
	key := dedupAndSortArchetypeKey([]componentId{3, 1, 2, 1, 3})
	expected := archetypeKey{1, 2, 3}

	for i, v := range key {
		if v != expected[i] {
			t.Errorf("dedup: expected %v, got %v", expected, key)
		}
	}
}

func TestEcs_RemoveEntity(t *testing.T) {
	type TestComponent struct{ x int }

	ecs := MakeEcs()
	entityId := ecs.addEntity(TestComponent{x: 1})

	ecs.removeEntity(entityId)

	if ecs.hasEntity(entityId) {
		t.Errorf("Removed entity should not be in the index")
	}

	for _, arch := range ecs.archetypes {
		for _, eid := range arch.rowToEntity {
			if eid == entityId {
				t.Errorf("Removed entity still present in rowToEntity")
			}
		}
	}
}

func TestEcs_RecycledRowsReused(t *testing.T) {
	type TestComponent struct{ x int }

	ecs := MakeEcs()
	e1 := ecs.addEntity(TestComponent{x: 1})
	e2 := ecs.addEntity(TestComponent{x: 2})
	ecs.removeEntity(e1)

	e3 := ecs.addEntity(TestComponent{x: 3})

	arch := ecs.archetypes[ecs.entityIndex[e3]]
	if len(arch.rowToEntity) != 2 {
		t.Errorf("Expected the removed row to be reused, rowToEntity has %d slots", len(arch.rowToEntity))
	}
	if arch.rowToEntity[arch.entities[e3]] != e3 {
		t.Errorf("rowToEntity out of sync after recycling")
	}
	if arch.rowToEntity[arch.entities[e2]] != e2 {
		t.Errorf("Surviving entity lost its row mapping")
	}
}

func TestEcs_EntityIdsAreMonotonic(t *testing.T) {
	ecs := MakeEcs()

	prev := NoEntity
	for i := 0; i < 100; i++ {
		eid := ecs.addEntity()
		if eid <= prev {
			t.Fatalf("Entity ids must be strictly increasing, got %v after %v", eid, prev)
		}
		prev = eid
	}
}
