package world_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fable-engine/fable/internal/game/action"
	"github.com/fable-engine/fable/internal/game/entity"
	"github.com/fable-engine/fable/internal/game/player"
	"github.com/fable-engine/fable/internal/game/requirement"
	"github.com/fable-engine/fable/internal/game/world"
)

func exitTo(target entity.RoomID, reqs ...requirement.Requirement) *action.Exit {
	return &action.Exit{
		Shared: action.Base{MenuName: "Leave", Visible: true, Requirements: reqs},
		Target: target,
	}
}

func twoRoomWorld(t *testing.T) *world.Manager {
	t.Helper()
	m, err := world.NewManager([]*world.Room{
		{ID: 0, Name: "Gatehouse", Actions: []action.Action{exitTo(1)}},
		{ID: 1, Name: "Courtyard", Actions: []action.Action{exitTo(0)}},
	}, 0)
	require.NoError(t, err)
	return m
}

func TestNewManager_Empty(t *testing.T) {
	_, err := world.NewManager(nil, 0)
	require.Error(t, err)
}

func TestNewManager_DuplicateRoomID(t *testing.T) {
	_, err := world.NewManager([]*world.Room{
		{ID: 3, Name: "One"},
		{ID: 3, Name: "Two"},
	}, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate room ID 3")
}

func TestNewManager_DanglingStartRoom(t *testing.T) {
	_, err := world.NewManager([]*world.Room{{ID: 0, Name: "Only"}}, 9)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start room 9")
}

func TestValidateExits(t *testing.T) {
	m := twoRoomWorld(t)
	require.NoError(t, m.ValidateExits())

	bad, err := world.NewManager([]*world.Room{
		{ID: 0, Name: "Gatehouse", Actions: []action.Action{exitTo(7)}},
	}, 0)
	require.NoError(t, err)
	err = bad.ValidateExits()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown room 7")
}

func TestRoomByID(t *testing.T) {
	m := twoRoomWorld(t)

	r, err := m.RoomByID(1)
	require.NoError(t, err)
	assert.Equal(t, "Courtyard", r.Name)

	_, err = m.RoomByID(42)
	require.ErrorIs(t, err, world.ErrUnknownRoom)
}

func TestStartRoom(t *testing.T) {
	m := twoRoomWorld(t)
	assert.Equal(t, entity.RoomID(0), m.StartRoom())
}

func TestAllRooms_SortedByID(t *testing.T) {
	m, err := world.NewManager([]*world.Room{
		{ID: 5, Name: "Five"},
		{ID: 1, Name: "One"},
		{ID: 3, Name: "Three"},
	}, 1)
	require.NoError(t, err)

	rooms := m.AllRooms()
	require.Len(t, rooms, 3)
	assert.Equal(t, entity.RoomID(1), rooms[0].ID)
	assert.Equal(t, entity.RoomID(3), rooms[1].ID)
	assert.Equal(t, entity.RoomID(5), rooms[2].ID)
}

func TestIsValidTransition(t *testing.T) {
	m := twoRoomWorld(t)
	st := player.NewState("Zara", 0)

	assert.True(t, m.IsValidTransition(0, 1, st))
	assert.False(t, m.IsValidTransition(1, 42, st), "no exit targets room 42")
	assert.False(t, m.IsValidTransition(42, 0, st), "unknown origin")
}

func TestIsValidTransition_RequirementGated(t *testing.T) {
	m, err := world.NewManager([]*world.Room{
		{ID: 0, Name: "Cave Mouth", Actions: []action.Action{
			exitTo(1, &requirement.ConsumeItemRequirement{Item: 1, Quantity: 1}),
		}},
		{ID: 1, Name: "Cave Depths"},
	}, 0)
	require.NoError(t, err)

	st := player.NewState("Zara", 0)
	assert.False(t, m.IsValidTransition(0, 1, st), "no torch yet")

	st.AddItem(1, 1)
	assert.True(t, m.IsValidTransition(0, 1, st))
}

func TestIsValidTransition_HiddenExit(t *testing.T) {
	hidden := &action.Exit{
		Shared: action.Base{MenuName: "Secret door", Visible: false, Tags: []string{"found_door"}},
		Target: 1,
	}
	m, err := world.NewManager([]*world.Room{
		{ID: 0, Name: "Library", Actions: []action.Action{hidden}},
		{ID: 1, Name: "Vault"},
	}, 0)
	require.NoError(t, err)

	st := player.NewState("Zara", 0)
	assert.False(t, m.IsValidTransition(0, 1, st))

	st.AddTag("found_door")
	assert.True(t, m.IsValidTransition(0, 1, st))

	st.HideAction(0, 0)
	assert.False(t, m.IsValidTransition(0, 1, st), "used-up exits stop counting")
}
