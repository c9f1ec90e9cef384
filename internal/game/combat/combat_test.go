package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/fable-engine/fable/internal/game/dice"
	"github.com/fable-engine/fable/internal/game/entity"
)

func fighter(name string, hp, attack, defense, speed int, damage string) *entity.Combatant {
	return &entity.Combatant{
		Name:    name,
		MaxHP:   hp,
		Attack:  attack,
		Defense: defense,
		Speed:   speed,
		Damage:  damage,
	}
}

func TestResolve_EmptyRosters(t *testing.T) {
	r := NewResolver(dice.NewSeededSource(1), 0)

	_, err := r.Resolve(nil, []*entity.Combatant{fighter("rat", 5, 0, 10, 0, "1d4")})
	assert.Error(t, err)

	_, err = r.Resolve([]*entity.Combatant{fighter("hero", 5, 0, 10, 0, "1d4")}, nil)
	assert.Error(t, err)
}

func TestResolve_OverwhelmingAllyWins(t *testing.T) {
	r := NewResolver(dice.NewSeededSource(7), 0)

	// always hits (attack +20 vs defense 1), massive damage
	hero := fighter("hero", 100, 20, 20, 10, "10d10+50")
	rat := fighter("rat", 1, 0, 1, 0, "1d2")

	res, err := r.Resolve([]*entity.Combatant{hero}, []*entity.Combatant{rat})
	require.NoError(t, err)
	assert.Equal(t, Victory, res.Outcome)
	assert.Equal(t, 1, res.Rounds)
	assert.NotEmpty(t, res.Log)
}

func TestResolve_OverwhelmingEnemyWins(t *testing.T) {
	r := NewResolver(dice.NewSeededSource(7), 0)

	mouse := fighter("mouse", 1, 0, 1, 0, "1d2")
	dragon := fighter("dragon", 200, 20, 25, 20, "10d10+50")

	res, err := r.Resolve([]*entity.Combatant{mouse}, []*entity.Combatant{dragon})
	require.NoError(t, err)
	assert.Equal(t, Defeat, res.Outcome)
}

func TestResolve_RoundCapFlees(t *testing.T) {
	r := NewResolver(dice.NewSeededSource(7), 5)

	// neither side can ever hit: defense far above any possible roll
	turtleA := fighter("turtle a", 10, 0, 99, 0, "1d4")
	turtleB := fighter("turtle b", 10, 0, 99, 0, "1d4")

	res, err := r.Resolve([]*entity.Combatant{turtleA}, []*entity.Combatant{turtleB})
	require.NoError(t, err)
	assert.Equal(t, Flee, res.Outcome)
	assert.Equal(t, 5, res.Rounds)
}

func TestResolve_Deterministic(t *testing.T) {
	allies := []*entity.Combatant{fighter("hound", 14, 4, 12, 3, "1d6+1")}
	enemies := []*entity.Combatant{fighter("spider", 10, 3, 11, 5, "1d4")}

	a, err := NewResolver(dice.NewSeededSource(42), 0).Resolve(allies, enemies)
	require.NoError(t, err)
	b, err := NewResolver(dice.NewSeededSource(42), 0).Resolve(allies, enemies)
	require.NoError(t, err)

	assert.Equal(t, a.Outcome, b.Outcome)
	assert.Equal(t, a.Rounds, b.Rounds)
	assert.Equal(t, a.Log, b.Log)
}

func TestResolve_DoesNotMutateDefinitions(t *testing.T) {
	hound := fighter("hound", 14, 4, 12, 3, "1d6+1")
	spider := fighter("spider", 10, 3, 11, 5, "1d4")

	_, err := NewResolver(dice.NewSeededSource(3), 0).Resolve(
		[]*entity.Combatant{hound}, []*entity.Combatant{spider})
	require.NoError(t, err)

	assert.Equal(t, 14, hound.MaxHP)
	assert.Equal(t, 10, spider.MaxHP)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "victory", Victory.String())
	assert.Equal(t, "defeat", Defeat.String())
	assert.Equal(t, "flee", Flee.String())
}

// Property: every encounter terminates with one of the three outcomes
// within the round cap.
func TestPropertyEncounterTerminates(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Int64().Draw(t, "seed")
		cap := rapid.IntRange(1, 30).Draw(t, "cap")

		mk := func(name string) *entity.Combatant {
			return fighter(name,
				rapid.IntRange(1, 30).Draw(t, name+"_hp"),
				rapid.IntRange(0, 10).Draw(t, name+"_atk"),
				rapid.IntRange(1, 25).Draw(t, name+"_def"),
				rapid.IntRange(0, 10).Draw(t, name+"_spd"),
				"1d6")
		}

		res, err := NewResolver(dice.NewSeededSource(seed), cap).Resolve(
			[]*entity.Combatant{mk("a1"), mk("a2")},
			[]*entity.Combatant{mk("e1"), mk("e2")})
		if err != nil {
			t.Fatalf("resolve failed: %v", err)
		}
		if res.Rounds < 1 || res.Rounds > cap {
			t.Fatalf("rounds %d outside [1, %d]", res.Rounds, cap)
		}
		switch res.Outcome {
		case Victory, Defeat, Flee:
		default:
			t.Fatalf("unexpected outcome %v", res.Outcome)
		}
	})
}
