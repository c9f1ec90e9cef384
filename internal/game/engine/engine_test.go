package engine_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fable-engine/fable/internal/game/action"
	"github.com/fable-engine/fable/internal/game/combat"
	"github.com/fable-engine/fable/internal/game/dice"
	"github.com/fable-engine/fable/internal/game/engine"
	"github.com/fable-engine/fable/internal/game/entity"
	"github.com/fable-engine/fable/internal/game/event"
	"github.com/fable-engine/fable/internal/game/player"
	"github.com/fable-engine/fable/internal/game/requirement"
	"github.com/fable-engine/fable/internal/game/world"
)

func testRegistry(t *testing.T) *entity.Registry {
	t.Helper()
	reg := entity.NewRegistry()
	require.NoError(t, reg.RegisterCurrency(&entity.Currency{ID: 0, Name: "copper", Symbol: "c"}))
	require.NoError(t, reg.RegisterItem(&entity.Item{
		ID: 1, Name: "torch", MaxQuantity: 5, Value: map[entity.CurrencyID]int{0: 4},
	}))
	require.NoError(t, reg.RegisterItem(&entity.Item{ID: 2, Name: "glass bead", MaxQuantity: 10}))
	require.NoError(t, reg.RegisterItem(&entity.Item{ID: 3, Name: "iron ore", MaxQuantity: 20}))
	require.NoError(t, reg.RegisterSkill(&entity.Skill{
		ID: 0, Name: "smithing", InitialLevel: 1, LevelUpLimit: 50, NextLevelRatio: 1.5,
	}))
	require.NoError(t, reg.RegisterRecipe(&entity.Recipe{
		ID: 0, Name: "bead necklace",
		Inputs:  []entity.Stack{{Item: 2, Quantity: 3}},
		Outputs: []entity.Stack{{Item: 1, Quantity: 1}},
	}))
	require.NoError(t, reg.RegisterRecipe(&entity.Recipe{
		ID: 1, Name: "ore polish",
		Inputs:  []entity.Stack{{Item: 3, Quantity: 1}},
		Outputs: []entity.Stack{{Item: 2, Quantity: 1}},
	}))
	require.NoError(t, reg.RegisterDialog(&entity.Dialog{
		ID:   0,
		Name: "Maren",
		Nodes: []entity.DialogNode{
			{Speaker: "Maren", Text: "New face."},
			{Speaker: "Maren", Text: "Bring me ore."},
		},
	}))
	require.NoError(t, reg.RegisterCombatant(&entity.Combatant{
		ID: 1, Name: "spider", MaxHP: 1, Attack: 0, Defense: 1, Speed: 0, Damage: "1d2",
	}))
	require.NoError(t, reg.RegisterCombatant(&entity.Combatant{
		ID: 2, Name: "dragon", MaxHP: 500, Attack: 20, Defense: 30, Speed: 20, Damage: "10d10+50",
	}))
	return reg
}

// testWorld lays out the scenario rooms:
//
//	0 Cellar: [0] pick up beads (reveal "found_beads", hide after use)
//	          [1] exit -> 1, consumes a bead
//	          [2] claim prize, tag-gated on "found_beads"
//	          [3] faulty lever, credits then fails mid-chain
//	          [4] check pack
//	          [5] talk to Maren
//	          [6] fight the dragon, reveal "dragon_slain" on victory
//	1 Shop:   [0] shop selling torches
//	          [1] exit -> 0
func testWorld(t *testing.T) *world.Manager {
	t.Helper()
	rooms := []*world.Room{
		{
			ID:   0,
			Name: "Dusty Cellar",
			Actions: []action.Action{
				&action.Wrapper{
					Shared: action.Base{
						MenuName:       "Ooh, shiny!",
						Visible:        true,
						RevealAfterUse: []string{"found_beads"},
						HideAfterUse:   true,
					},
					Events: []event.Event{&event.AddItemEvent{Item: 2, Quantity: 2}},
				},
				&action.Exit{
					Shared: action.Base{
						MenuName: "Climb the stairs",
						Visible:  true,
						Requirements: []requirement.Requirement{
							&requirement.ConsumeItemRequirement{Item: 2, Quantity: 1},
						},
					},
					Target: 1,
				},
				&action.Wrapper{
					Shared: action.Base{MenuName: "Claim a prize", Visible: false, Tags: []string{"found_beads"}},
					Events: []event.Event{&event.AddCurrencyEvent{Currency: 0, Amount: 3}},
				},
				&action.Wrapper{
					Shared: action.Base{MenuName: "Pull the faulty lever", Visible: true},
					Events: []event.Event{
						&event.AddCurrencyEvent{Currency: 0, Amount: 7},
						&event.AddItemEvent{Item: 99, Quantity: 1},
					},
				},
				&action.ManageInventory{
					Shared: action.Base{MenuName: "Check your pack", Visible: true},
				},
				&action.Dialog{
					Shared: action.Base{MenuName: "Talk to Maren", Visible: true},
					Dialog: 0,
				},
				&action.Wrapper{
					Shared: action.Base{
						MenuName:       "Fight the dragon",
						Visible:        true,
						RevealAfterUse: []string{"dragon_slain"},
					},
					Events: []event.Event{
						&event.AddCurrencyEvent{Currency: 0, Amount: 5},
						&event.CombatEvent{Allies: []entity.CombatantID{1}, Enemies: []entity.CombatantID{2},
							OnVictory: []event.Event{&event.AddItemEvent{Item: 3, Quantity: 2}}},
						&event.AddCurrencyEvent{Currency: 0, Amount: 100},
					},
				},
			},
		},
		{
			ID:        1,
			Name:      "The Forge",
			EnterText: "The forge glows.",
			FirstEnterText: "You have never been up here before.",
			Actions: []action.Action{
				&action.Shop{
					Shared:          action.Base{MenuName: "Browse Maren's wares", Visible: true},
					DefaultCurrency: 0,
					Wares:           []entity.ItemID{1},
				},
				&action.Exit{
					Shared: action.Base{MenuName: "Back down", Visible: true},
					Target: 0,
				},
			},
		},
	}
	m, err := world.NewManager(rooms, 0)
	require.NoError(t, err)
	require.NoError(t, m.ValidateExits())
	return m
}

func newEngineWith(t *testing.T, reg *entity.Registry, rooms []*world.Room, start entity.RoomID) *engine.Engine {
	t.Helper()
	w, err := world.NewManager(rooms, start)
	require.NoError(t, err)
	resolver := combat.NewResolver(dice.NewSeededSource(1), 0)
	proc := event.NewProcessor(reg, resolver, zaptest.NewLogger(t))
	return engine.New(w, reg, proc, zaptest.NewLogger(t))
}

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	reg := testRegistry(t)
	resolver := combat.NewResolver(dice.NewSeededSource(1), 0)
	proc := event.NewProcessor(reg, resolver, zaptest.NewLogger(t))
	return engine.New(testWorld(t), reg, proc, zaptest.NewLogger(t))
}

func TestAvailableActions_FiltersAndOrders(t *testing.T) {
	e := newTestEngine(t)
	st := player.NewState("Zara", 0)

	views, err := e.AvailableActions(st, 0)
	require.NoError(t, err)
	// "Claim a prize" (index 2) is tag-gated and hidden.
	require.Len(t, views, 6)
	assert.Equal(t, 0, views[0].ID)
	assert.Equal(t, "Ooh, shiny!", views[0].Name)
	assert.Equal(t, 1, views[1].ID)
	assert.Equal(t, 3, views[2].ID)
	assert.False(t, views[0].Used)

	_, err = e.AvailableActions(st, 42)
	require.ErrorIs(t, err, world.ErrUnknownRoom)
}

func TestExecute_ActionNotFound(t *testing.T) {
	e := newTestEngine(t)
	st := player.NewState("Zara", 0)

	_, err := e.Execute(st, 0, -1, engine.Choice{})
	require.ErrorIs(t, err, engine.ErrActionNotFound)

	_, err = e.Execute(st, 0, 50, engine.Choice{})
	require.ErrorIs(t, err, engine.ErrActionNotFound)

	// Tag-gated and not yet revealed counts as not found, not as forbidden.
	_, err = e.Execute(st, 0, 2, engine.Choice{})
	require.ErrorIs(t, err, engine.ErrActionNotFound)
}

func TestExecute_RequirementsNotMet(t *testing.T) {
	e := newTestEngine(t)
	st := player.NewState("Zara", 0)

	_, err := e.Execute(st, 0, 1, engine.Choice{})
	var reqErr *engine.RequirementsNotMetError
	require.ErrorAs(t, err, &reqErr)
	assert.Contains(t, reqErr.Message, "1 x glass bead")

	assert.Equal(t, entity.RoomID(0), st.RoomID, "failed exit does not move the player")
	assert.Equal(t, 0, st.ItemCount(2), "nothing was consumed")
}

func TestExecute_WrapperRevealsAndHides(t *testing.T) {
	e := newTestEngine(t)
	st := player.NewState("Zara", 0)

	res, err := e.Execute(st, 0, 0, engine.Choice{})
	require.NoError(t, err)
	assert.Equal(t, event.OutcomeSuccess, res.Outcome)
	assert.Equal(t, 2, st.ItemCount(2))
	assert.True(t, st.HasTag("found_beads"))
	assert.Equal(t, []string{"found_beads"}, res.Delta.TagsAdded)
	assert.True(t, st.ActionUsed(0, 0))

	// hide_after_use: the action is gone, and the gated one appeared.
	views, err := e.AvailableActions(st, 0)
	require.NoError(t, err)
	ids := make([]int, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.ID)
	}
	assert.NotContains(t, ids, 0)
	assert.Contains(t, ids, 2)

	_, err = e.Execute(st, 0, 0, engine.Choice{})
	require.ErrorIs(t, err, engine.ErrActionNotFound, "hidden actions cannot be re-run")
}

func TestExecute_ExitConsumesAndMoves(t *testing.T) {
	e := newTestEngine(t)
	st := player.NewState("Zara", 0)
	st.AddItem(2, 2)

	res, err := e.Execute(st, 0, 1, engine.Choice{})
	require.NoError(t, err)
	assert.Equal(t, entity.RoomID(1), st.RoomID)
	assert.Equal(t, 1, st.ItemCount(2), "exit toll consumed one bead")
	require.NotNil(t, res.Delta.Room)
	assert.Equal(t, entity.RoomID(0), res.Delta.Room.From)
	assert.Equal(t, entity.RoomID(1), res.Delta.Room.To)

	joined := strings.Join(res.Text, "\n")
	assert.Contains(t, joined, "You have never been up here before.")
	assert.Contains(t, joined, "The forge glows.")

	// Round trip: first-enter text fires only once.
	_, err = e.Execute(st, 1, 1, engine.Choice{})
	require.NoError(t, err)
	res, err = e.Execute(st, 0, 1, engine.Choice{})
	require.NoError(t, err)
	joined = strings.Join(res.Text, "\n")
	assert.NotContains(t, joined, "never been up here")
	assert.Contains(t, joined, "The forge glows.")
	assert.Equal(t, 0, st.ItemCount(2), "the second climb paid another bead")
}

func TestExecute_AllOrNothing(t *testing.T) {
	e := newTestEngine(t)
	st := player.NewState("Zara", 0)
	st.Credit(0, 10)

	_, err := e.Execute(st, 0, 3, engine.Choice{})
	require.Error(t, err)

	assert.Equal(t, 10, st.Balance(0), "mid-chain failure rolls back the credit")
	assert.False(t, st.ActionUsed(0, 3))
}

func TestExecute_ShopBrowse(t *testing.T) {
	e := newTestEngine(t)
	st := player.NewState("Zara", 1)

	res, err := e.Execute(st, 1, 0, engine.Choice{})
	require.NoError(t, err)
	joined := strings.Join(res.Text, "\n")
	assert.Contains(t, joined, "torch")
	assert.Contains(t, joined, "4")
	assert.Equal(t, 0, st.ItemCount(1), "browsing buys nothing")
	assert.Empty(t, res.Delta.Items)
}

func TestExecute_ShopPurchase(t *testing.T) {
	e := newTestEngine(t)
	st := player.NewState("Zara", 1)
	st.Credit(0, 10)

	torch := entity.ItemID(1)
	res, err := e.Execute(st, 1, 0, engine.Choice{Ware: &torch})
	require.NoError(t, err)
	assert.Equal(t, 1, st.ItemCount(1))
	assert.Equal(t, 6, st.Balance(0))
	assert.Equal(t, []event.ItemDelta{{Item: 1, Change: 1}}, res.Delta.Items)
	assert.Equal(t, []event.CurrencyDelta{{Currency: 0, Change: -4}}, res.Delta.Currencies)
}

func TestExecute_ShopPurchaseInsufficientFunds(t *testing.T) {
	e := newTestEngine(t)
	st := player.NewState("Zara", 1)
	st.Credit(0, 3)

	torch := entity.ItemID(1)
	_, err := e.Execute(st, 1, 0, engine.Choice{Ware: &torch})
	var fundsErr *player.InsufficientFundsError
	require.ErrorAs(t, err, &fundsErr)

	assert.Equal(t, 3, st.Balance(0))
	assert.Equal(t, 0, st.ItemCount(1))
}

func TestExecute_ShopBrowseFiresNoDirectives(t *testing.T) {
	reg := testRegistry(t)
	rooms := []*world.Room{{ID: 0, Name: "Stall", Actions: []action.Action{
		&action.Shop{
			Shared: action.Base{
				MenuName:       "Peek at the stall",
				Visible:        true,
				HideAfterUse:   true,
				RevealAfterUse: []string{"seen_stall"},
				Requirements: []requirement.Requirement{
					&requirement.ConsumeItemRequirement{Item: 2, Quantity: 1},
				},
			},
			DefaultCurrency: 0,
			Wares:           []entity.ItemID{1},
		},
	}}}
	e := newEngineWith(t, reg, rooms, 0)

	st := player.NewState("Zara", 0)
	st.AddItem(2, 2)
	st.Credit(0, 10)

	res, err := e.Execute(st, 0, 0, engine.Choice{})
	require.NoError(t, err)
	assert.Contains(t, strings.Join(res.Text, "\n"), "For sale")
	assert.Equal(t, 2, st.ItemCount(2), "browsing pays no entry fee")
	assert.False(t, st.HasTag("seen_stall"))
	assert.False(t, st.ActionUsed(0, 0))

	views, err := e.AvailableActions(st, 0)
	require.NoError(t, err)
	require.Len(t, views, 1, "browsing does not hide the shop")

	// Buying commits: the fee, the reveal tag, and the hide all land.
	torch := entity.ItemID(1)
	_, err = e.Execute(st, 0, 0, engine.Choice{Ware: &torch})
	require.NoError(t, err)
	assert.Equal(t, 1, st.ItemCount(2))
	assert.True(t, st.HasTag("seen_stall"))
	views, err = e.AvailableActions(st, 0)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestExecute_CraftingBrowseCommitsNothing(t *testing.T) {
	reg := testRegistry(t)
	rooms := []*world.Room{{ID: 0, Name: "Workshop", Actions: []action.Action{
		&action.Wrapper{
			Shared: action.Base{MenuName: "Use the workbench", Visible: true, HideAfterUse: true},
			Events: []event.Event{&event.CraftingEvent{Recipes: []entity.RecipeID{0, 1}}},
		},
	}}}
	e := newEngineWith(t, reg, rooms, 0)

	st := player.NewState("Zara", 0)
	st.AddItem(2, 3)

	res, err := e.Execute(st, 0, 0, engine.Choice{})
	require.NoError(t, err)
	assert.Contains(t, strings.Join(res.Text, "\n"), "You can craft")
	assert.Equal(t, 3, st.ItemCount(2), "listing consumes no inputs")
	assert.False(t, st.ActionUsed(0, 0))
	views, err := e.AvailableActions(st, 0)
	require.NoError(t, err)
	require.Len(t, views, 1, "listing does not hide the workbench")

	necklace := entity.RecipeID(0)
	_, err = e.Execute(st, 0, 0, engine.Choice{Recipe: &necklace})
	require.NoError(t, err)
	assert.Equal(t, 0, st.ItemCount(2))
	assert.Equal(t, 1, st.ItemCount(1))
	assert.True(t, st.ActionUsed(0, 0))
}

func TestExecute_FailedSiblingRequirementConsumesNothing(t *testing.T) {
	reg := testRegistry(t)
	rooms := []*world.Room{{ID: 0, Name: "Shrine", Actions: []action.Action{
		&action.Wrapper{
			Shared: action.Base{
				MenuName: "Offer beads at the shrine",
				Visible:  true,
				Requirements: []requirement.Requirement{
					&requirement.ConsumeItemRequirement{Item: 2, Quantity: 1},
					&requirement.SkillRequirement{Skill: 0, Level: 5},
				},
			},
			Events: []event.Event{&event.TextEvent{Text: "The shrine hums."}},
		},
	}}}
	e := newEngineWith(t, reg, rooms, 0)

	st := player.NewState("Zara", 0)
	st.AddItem(2, 2)

	_, err := e.Execute(st, 0, 0, engine.Choice{})
	var reqErr *engine.RequirementsNotMetError
	require.ErrorAs(t, err, &reqErr)
	assert.IsType(t, &requirement.SkillRequirement{}, reqErr.Failed)
	assert.Equal(t, 2, st.ItemCount(2), "the passing consume requirement spent nothing")
}

func TestExecute_ShopPurchaseNotForSale(t *testing.T) {
	e := newTestEngine(t)
	st := player.NewState("Zara", 1)
	st.Credit(0, 100)

	bead := entity.ItemID(2)
	_, err := e.Execute(st, 1, 0, engine.Choice{Ware: &bead})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not for sale")
	assert.Equal(t, 100, st.Balance(0))
}

func TestExecute_ManageInventory(t *testing.T) {
	e := newTestEngine(t)
	st := player.NewState("Zara", 0)

	res, err := e.Execute(st, 0, 4, engine.Choice{})
	require.NoError(t, err)
	assert.Contains(t, strings.Join(res.Text, "\n"), "pack is empty")

	st.AddItem(1, 2)
	res, err = e.Execute(st, 0, 4, engine.Choice{})
	require.NoError(t, err)
	assert.Contains(t, strings.Join(res.Text, "\n"), "2 x torch")
}

func TestExecute_DialogAdvances(t *testing.T) {
	e := newTestEngine(t)
	st := player.NewState("Zara", 0)

	res, err := e.Execute(st, 0, 5, engine.Choice{})
	require.NoError(t, err)
	assert.Contains(t, strings.Join(res.Text, "\n"), "New face.")

	res, err = e.Execute(st, 0, 5, engine.Choice{})
	require.NoError(t, err)
	assert.Contains(t, strings.Join(res.Text, "\n"), "Bring me ore.")

	// Terminal node repeats.
	res, err = e.Execute(st, 0, 5, engine.Choice{})
	require.NoError(t, err)
	assert.Contains(t, strings.Join(res.Text, "\n"), "Bring me ore.")
}

func TestExecute_DefeatKeepsPreEncounterState(t *testing.T) {
	e := newTestEngine(t)
	st := player.NewState("Zara", 0)

	// A lone spider cannot scratch a defense-30 dragon, so the encounter
	// resolves as a defeat regardless of seed.
	res, err := e.Execute(st, 0, 6, engine.Choice{})
	require.NoError(t, err)
	require.Equal(t, event.OutcomeDefeat, res.Outcome)
	assert.Equal(t, 5, st.Balance(0), "pre-encounter credit survives")
	assert.False(t, st.HasTag("dragon_slain"), "reveal directives suppressed on defeat")
	assert.False(t, st.ActionUsed(0, 6))
	assert.Equal(t, 0, st.ItemCount(3), "victory spoils never granted")
}
