package kite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetRoundtrip(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "world.json")

	app := NewApp()
	cmd := app.Commands()

	body := NewBody(4)
	body.Velocity = mgl32.Vec2{1, -2}
	col := NewCollider(mgl32.Vec2{2, 1})
	col.SetElasticity(0.3)

	parent := cmd.AddEntity(
		&TransformComponent{Position: mgl32.Vec2{10, 5}, Angle: 0.5},
		&body,
		&col,
	)
	cmd.AddEntity(
		&TransformComponent{},
		&LocalTransformComponent{Position: mgl32.Vec2{1, 0}, Mirror: true},
		&Parent{Entity: parent},
	)
	app.FlushCommands()

	require.NoError(t, SavePreset(cmd, filename))

	// Restore into a fresh world; ids must not carry over.
	app2 := NewApp()
	cmd2 := app2.Commands()
	cmd2.AddEntity(&TransformComponent{}) // occupy an id the preset used
	app2.FlushCommands()

	loaded, err := LoadPreset(cmd2, filename)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	app2.FlushCommands()

	var restoredParent, restoredChild EntityId
	for _, eid := range loaded {
		hasLocal := false
		for _, c := range cmd2.GetAllComponents(eid) {
			if _, ok := c.(LocalTransformComponent); ok {
				hasLocal = true
			}
		}
		if hasLocal {
			restoredChild = eid
		} else {
			restoredParent = eid
		}
	}
	require.NotEqual(t, NoEntity, restoredParent)
	require.NotEqual(t, NoEntity, restoredChild)

	var sawBody, sawCollider bool
	for _, c := range cmd2.GetAllComponents(restoredParent) {
		switch comp := c.(type) {
		case TransformComponent:
			assert.Equal(t, mgl32.Vec2{10, 5}, comp.Position)
			assert.InDelta(t, 0.5, comp.Angle, 1e-6)
		case BodyComponent:
			sawBody = true
			assert.InDelta(t, 4, comp.Mass, 1e-6)
			assert.Equal(t, mgl32.Vec2{1, -2}, comp.Velocity)
			assert.InDelta(t, 1, comp.GravityScale, 1e-6)
		case ColliderComponent:
			sawCollider = true
			assert.Equal(t, mgl32.Vec2{2, 1}, comp.Size)
			assert.InDelta(t, 0.3, comp.Elasticity, 1e-6)
		}
	}
	assert.True(t, sawBody)
	assert.True(t, sawCollider)

	var sawParent bool
	for _, c := range cmd2.GetAllComponents(restoredChild) {
		switch comp := c.(type) {
		case Parent:
			sawParent = true
			assert.Equal(t, restoredParent, comp.Entity, "hierarchy must point at the remapped parent")
		case LocalTransformComponent:
			assert.Equal(t, mgl32.Vec2{1, 0}, comp.Position)
			assert.True(t, comp.Mirror)
		}
	}
	assert.True(t, sawParent)
}

func TestLoadPresetMissingFile(t *testing.T) {
	app := NewApp()
	_, err := LoadPreset(app.Commands(), filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestLoadPresetRejectsGarbage(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(filename, []byte("{not json"), 0644))

	app := NewApp()
	_, err := LoadPreset(app.Commands(), filename)
	require.Error(t, err)
}
