package combat_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/s76354m/dnd-ai-dm-sub001/internal/game/combat"
	"github.com/s76354m/dnd-ai-dm-sub001/internal/game/effect"
	"github.com/s76354m/dnd-ai-dm-sub001/internal/game/item"
	"github.com/s76354m/dnd-ai-dm-sub001/internal/game/spell"
)

// scriptedSource replays die faces in order: a value v yields face v on any
// die with at least v sides.
type scriptedSource struct {
	values []int
	i      int
}

func (s *scriptedSource) Intn(n int) int {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.i%len(s.values)]
	s.i++
	return (v - 1) % n
}

type captureSink struct {
	events []combat.Event
}

func (s *captureSink) Publish(e combat.Event) { s.events = append(s.events, e) }

func (s *captureSink) types() []combat.EventType {
	out := make([]combat.EventType, len(s.events))
	for i, e := range s.events {
		out[i] = e.Type
	}
	return out
}

func testItems() *item.Catalog {
	c := item.NewCatalog()
	c.Register(&item.Def{
		ID: "longsword", Name: "Longsword", Kind: item.KindWeapon,
		DamageDice: "1d8", Equippable: true,
	})
	c.Register(&item.Def{
		ID: "dagger", Name: "Dagger", Kind: item.KindWeapon,
		DamageDice: "1d4", Properties: []string{"finesse", "light"}, Equippable: true,
	})
	c.Register(&item.Def{
		ID: "healing_potion", Name: "Potion of Healing", Kind: item.KindConsumable,
		HealDice: "2d4+2", CombatUsable: true,
	})
	c.Register(&item.Def{
		ID: "rope", Name: "Rope", Kind: item.KindGear,
	})
	return c
}

func testSpells() *spell.Catalog {
	c := spell.NewCatalog()
	c.Register(&spell.Def{
		ID: "fireball", Name: "Fireball", School: "evocation", Level: 3,
		DamageDice: "8d6", SaveAbility: "dexterity", MaxTargets: 3,
	})
	c.Register(&spell.Def{
		ID: "magic_missile", Name: "Magic Missile", School: "evocation", Level: 1,
		DamageDice: "1d4+1",
	})
	c.Register(&spell.Def{
		ID: "cure_wounds", Name: "Cure Wounds", School: "abjuration", Level: 1,
		HealDice: "1d8",
	})
	c.Register(&spell.Def{
		ID: "hold_person", Name: "Hold Person", School: "enchantment", Level: 2,
		SaveAbility: "wisdom", Status: "paralyzed", StatusRounds: 2,
	})
	return c
}

func hero() *combat.Combatant {
	return &combat.Combatant{
		ID:         "hero",
		Kind:       combat.KindPlayer,
		Name:       "Aldric",
		MaxHP:      18,
		CurrentHP:  18,
		ArmorClass: 16,
		Speed:      30,
		Level:      3,
		Abilities: combat.AbilityScores{
			Strength: 16, Dexterity: 12, Constitution: 14,
			Intelligence: 10, Wisdom: 14, Charisma: 8,
		},
		Spells:    []string{"cure_wounds", "fireball", "hold_person"},
		Equipped:  []string{"longsword"},
		Inventory: []string{"healing_potion"},
	}
}

func goblin(id, name string) *combat.Combatant {
	return &combat.Combatant{
		ID:         id,
		Kind:       combat.KindNPC,
		Name:       name,
		MaxHP:      9,
		CurrentHP:  9,
		ArmorClass: 13,
		Speed:      30,
		Level:      1,
		Abilities: combat.AbilityScores{
			Strength: 8, Dexterity: 14, Constitution: 10,
			Intelligence: 10, Wisdom: 8, Charisma: 8,
		},
		Equipped: []string{"dagger"},
		XPValue:  50,
	}
}

func newTestManager(t *testing.T, src *scriptedSource, sink combat.EventSink) *combat.Manager {
	t.Helper()
	cfg := combat.Config{
		Items:  testItems(),
		Spells: testSpells(),
		Source: src,
		Events: sink,
	}
	m, err := combat.NewManager(cfg)
	require.NoError(t, err)
	return m
}

func TestNewManager_RequiresCatalogs(t *testing.T) {
	_, err := combat.NewManager(combat.Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog is required")

	_, err = combat.NewManager(combat.Config{
		Items: testItems(), Spells: testSpells(), UnarmedDice: "d4",
	})
	require.Error(t, err)
}

func TestInitiateCombat(t *testing.T) {
	// Hero rolls 15 (+1 dex) = 16, goblin rolls 4 (+2 dex) = 6.
	src := &scriptedSource{values: []int{15, 4}}
	m := newTestManager(t, src, nil)

	state, err := m.InitiateCombat(
		[]*combat.Combatant{hero(), goblin("gob1", "Goblin")},
		combat.EncounterOptions{LocationID: "cave", PlayerInitiated: true},
	)
	require.NoError(t, err)
	require.NotNil(t, state)

	assert.NotEmpty(t, state.ID)
	assert.Equal(t, combat.StatusActive, state.Status)
	assert.Equal(t, 1, state.Round)
	assert.Equal(t, "cave", state.LocationID)
	assert.True(t, state.PlayerInitiated)

	require.Len(t, state.Entries, 2)
	assert.Equal(t, "hero", state.Entries[0].Combatant.ID)
	assert.Equal(t, 16, state.Entries[0].Initiative)
	assert.Equal(t, "gob1", state.Entries[1].Combatant.ID)
	assert.Equal(t, 6, state.Entries[1].Initiative)

	current := state.CurrentEntry()
	require.NotNil(t, current)
	assert.Equal(t, "hero", current.Combatant.ID)
	assert.True(t, current.HasAction)
	assert.True(t, current.HasBonusAction)
	assert.True(t, current.HasReaction)
	assert.True(t, current.HasMovement)
}

func TestInitiateCombat_Errors(t *testing.T) {
	m := newTestManager(t, &scriptedSource{values: []int{10}}, nil)

	_, err := m.InitiateCombat([]*combat.Combatant{hero()}, combat.EncounterOptions{})
	assert.ErrorContains(t, err, "at least 2 participants")

	_, err = m.InitiateCombat(
		[]*combat.Combatant{hero(), hero()}, combat.EncounterOptions{})
	assert.ErrorContains(t, err, "duplicate participant")

	downed := goblin("gob1", "Goblin")
	downed.CurrentHP = 0
	_, err = m.InitiateCombat(
		[]*combat.Combatant{hero(), downed}, combat.EncounterOptions{})
	assert.ErrorContains(t, err, "no hit points")

	_, err = m.InitiateCombat(
		[]*combat.Combatant{hero(), goblin("gob1", "Goblin")}, combat.EncounterOptions{})
	require.NoError(t, err)
	_, err = m.InitiateCombat(
		[]*combat.Combatant{hero(), goblin("gob2", "Goblin")}, combat.EncounterOptions{})
	assert.ErrorContains(t, err, "already active")
}

// TestFullEncounter walks a hero and a goblin through a complete fight with
// scripted dice: hit for 8, goblin misses, hit for 6, goblin down.
func TestFullEncounter(t *testing.T) {
	src := &scriptedSource{values: []int{
		15, 4, // initiative: hero 16, goblin 6
		13, 5, // hero attack 13+3+2=18 vs AC 13, damage 5+3=8
		2, // goblin attack 2+2+2=6 vs AC 16, miss
		10, 3, // hero attack 15 vs AC 13, damage 3+3=6
	}}
	sink := &captureSink{}
	m := newTestManager(t, src, sink)

	state, err := m.InitiateCombat(
		[]*combat.Combatant{hero(), goblin("gob1", "Goblin")}, combat.EncounterOptions{})
	require.NoError(t, err)

	atk, err := m.ResolveAttack("hero", "gob1", "Longsword")
	require.NoError(t, err)
	require.Nil(t, atk.Rejection)
	assert.True(t, atk.Hit)
	assert.Equal(t, 18, atk.Check.Total)
	assert.Equal(t, 8, atk.Damage)
	assert.Equal(t, 1, atk.TargetHP)
	assert.False(t, atk.TargetDefeated)
	assert.False(t, atk.EncounterOver)
	assert.False(t, state.Entries[0].HasAction, "attacking spends the action")

	turn, err := m.AdvanceTurn()
	require.NoError(t, err)
	require.Nil(t, turn.Rejection)
	assert.Equal(t, "gob1", turn.ActiveID)
	assert.False(t, turn.NewRound)
	assert.Equal(t, 1, state.Round)

	atk, err = m.ResolveAttack("gob1", "hero", "Dagger")
	require.NoError(t, err)
	require.Nil(t, atk.Rejection)
	assert.False(t, atk.Hit)
	assert.Equal(t, 6, atk.Check.Total, "finesse dagger uses the goblin's dexterity")
	assert.Equal(t, 0, atk.Damage)
	assert.Equal(t, 18, atk.TargetHP)

	turn, err = m.AdvanceTurn()
	require.NoError(t, err)
	assert.True(t, turn.NewRound)
	assert.Equal(t, 2, state.Round)
	assert.Equal(t, "hero", turn.ActiveID)

	atk, err = m.ResolveAttack("hero", "gob1", "Longsword")
	require.NoError(t, err)
	require.Nil(t, atk.Rejection)
	assert.True(t, atk.Hit)
	assert.Equal(t, 6, atk.Damage)
	assert.Equal(t, 0, atk.TargetHP)
	assert.True(t, atk.TargetDefeated)
	assert.True(t, atk.EncounterOver)

	assert.Equal(t, combat.StatusCompleted, state.Status)
	assert.True(t, state.XPAwarded)
	gob := state.EntryFor("gob1")
	assert.True(t, gob.Defeated())

	log := strings.Join(state.Log, "\n")
	assert.Contains(t, log, "Goblin is defeated!")
	assert.Contains(t, log, "The party earns 50 experience.")

	types := sink.types()
	require.NotEmpty(t, types)
	assert.Equal(t, combat.EventCombatStarted, types[0])
	assert.Equal(t, combat.EventCombatEnded, types[len(types)-1])
	last := sink.events[len(sink.events)-1]
	assert.Equal(t, "players", last.Victor)
	assert.Equal(t, 50, last.XP)
}

func TestResolveAttack_CriticalDoublesDamageDice(t *testing.T) {
	src := &scriptedSource{values: []int{
		15, 4, // initiative
		20,   // natural 20
		8, 8, // two damage dice on a crit
	}}
	m := newTestManager(t, src, nil)
	_, err := m.InitiateCombat(
		[]*combat.Combatant{hero(), goblin("gob1", "Goblin")}, combat.EncounterOptions{})
	require.NoError(t, err)

	atk, err := m.ResolveAttack("hero", "gob1", "Longsword")
	require.NoError(t, err)
	require.Nil(t, atk.Rejection)
	assert.True(t, atk.Check.CritSuccess)
	assert.True(t, atk.Hit)
	assert.Equal(t, []int{8, 8}, atk.DamageRolls)
	assert.Equal(t, 19, atk.Damage, "8+8 plus strength, modifiers are not doubled")
}

func TestResolveAttack_NaturalOneAlwaysMisses(t *testing.T) {
	src := &scriptedSource{values: []int{15, 4, 1}}
	m := newTestManager(t, src, nil)
	weak := goblin("gob1", "Goblin")
	weak.ArmorClass = 1
	_, err := m.InitiateCombat(
		[]*combat.Combatant{hero(), weak}, combat.EncounterOptions{})
	require.NoError(t, err)

	atk, err := m.ResolveAttack("hero", "gob1", "Longsword")
	require.NoError(t, err)
	require.Nil(t, atk.Rejection)
	assert.True(t, atk.Check.CritFailure)
	assert.False(t, atk.Hit)
	assert.Equal(t, 9, atk.TargetHP)
}

func TestResolveAttack_Rejections(t *testing.T) {
	src := &scriptedSource{values: []int{15, 4, 13, 5}}
	m := newTestManager(t, src, nil)
	state, err := m.InitiateCombat(
		[]*combat.Combatant{hero(), goblin("gob1", "Goblin")}, combat.EncounterOptions{})
	require.NoError(t, err)

	atk, err := m.ResolveAttack("gob1", "hero", "Dagger")
	require.NoError(t, err)
	require.NotNil(t, atk.Rejection)
	assert.Equal(t, combat.RejectNotYourTurn, atk.Rejection.Code)
	assert.Equal(t, 18, state.EntryFor("hero").Combatant.CurrentHP, "a rejected action changes nothing")
	assert.True(t, state.EntryFor("gob1").HasAction)

	atk, err = m.ResolveAttack("stranger", "gob1", "")
	require.NoError(t, err)
	require.NotNil(t, atk.Rejection)
	assert.Equal(t, combat.RejectUnknownParticipant, atk.Rejection.Code)

	atk, err = m.ResolveAttack("hero", "gob1", "Vorpal Blade")
	require.NoError(t, err)
	require.NotNil(t, atk.Rejection)
	assert.Equal(t, combat.RejectUnknownName, atk.Rejection.Code)

	atk, err = m.ResolveAttack("hero", "gob1", "Rope")
	require.NoError(t, err)
	require.NotNil(t, atk.Rejection)
	assert.Equal(t, combat.RejectItemNotUsable, atk.Rejection.Code)

	atk, err = m.ResolveAttack("hero", "gob1", "Dagger")
	require.NoError(t, err)
	require.NotNil(t, atk.Rejection)
	assert.Equal(t, combat.RejectNotEquipped, atk.Rejection.Code)
	assert.Contains(t, atk.Rejection.Reason, "does not have Dagger equipped")

	// Spend the action, then try again.
	atk, err = m.ResolveAttack("hero", "gob1", "Longsword")
	require.NoError(t, err)
	require.Nil(t, atk.Rejection)
	atk, err = m.ResolveAttack("hero", "gob1", "Longsword")
	require.NoError(t, err)
	require.NotNil(t, atk.Rejection)
	assert.Equal(t, combat.RejectNoResource, atk.Rejection.Code)
	assert.Contains(t, atk.Rejection.Reason, "no action remaining")
}

func TestResolveAttack_DefeatedTargetRejected(t *testing.T) {
	src := &scriptedSource{values: []int{
		15, 10, 4, // initiative: hero, gob A, gob B
		13, 8, // kill goblin A (9 HP, 8+3=11 damage)
	}}
	m := newTestManager(t, src, nil)
	_, err := m.InitiateCombat(
		[]*combat.Combatant{hero(), goblin("gobA", "Goblin A"), goblin("gobB", "Goblin B")},
		combat.EncounterOptions{})
	require.NoError(t, err)

	atk, err := m.ResolveAttack("hero", "gobA", "Longsword")
	require.NoError(t, err)
	require.Nil(t, atk.Rejection)
	require.True(t, atk.TargetDefeated)
	assert.False(t, atk.EncounterOver, "a second goblin still stands")

	_, err = m.AdvanceTurn()
	require.NoError(t, err)

	atk, err = m.ResolveAttack("gobB", "gobA", "Dagger")
	require.NoError(t, err)
	require.NotNil(t, atk.Rejection)
	assert.Equal(t, combat.RejectTargetDefeated, atk.Rejection.Code)
	assert.Contains(t, atk.Rejection.Reason, "already defeated")
}

// Advancing N times through N combatants lands back on the same entry with
// the round incremented exactly once.
func TestAdvanceTurn_RoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(2, 8).Draw(rt, "n")
		faces := rapid.SliceOfN(rapid.IntRange(1, 20), n, n).Draw(rt, "faces")

		src := &scriptedSource{values: faces}
		m := newTestManager(t, src, nil)

		party := []*combat.Combatant{hero()}
		for i := 1; i < n; i++ {
			party = append(party, goblin(
				"gob"+string(rune('a'+i)), "Goblin"))
		}
		state, err := m.InitiateCombat(party, combat.EncounterOptions{})
		require.NoError(rt, err)

		startIndex := state.TurnIndex()
		startRound := state.Round
		startID := state.CurrentEntry().Combatant.ID

		for i := 0; i < n; i++ {
			turn, err := m.AdvanceTurn()
			require.NoError(rt, err)
			require.Nil(rt, turn.Rejection)
		}

		assert.Equal(rt, startIndex, state.TurnIndex())
		assert.Equal(rt, startRound+1, state.Round)
		assert.Equal(rt, startID, state.CurrentEntry().Combatant.ID)
	})
}

func TestAdvanceTurn_SkipsDefeatedAndKeepsThemDown(t *testing.T) {
	src := &scriptedSource{values: []int{
		15, 10, 4, // initiative: hero, gob A, gob B
		13, 8, // hero kills goblin A
		5, // goblin B misses (5+2+2=9 vs AC 16)
	}}
	m := newTestManager(t, src, nil)
	state, err := m.InitiateCombat(
		[]*combat.Combatant{hero(), goblin("gobA", "Goblin A"), goblin("gobB", "Goblin B")},
		combat.EncounterOptions{})
	require.NoError(t, err)

	_, err = m.ResolveAttack("hero", "gobA", "Longsword")
	require.NoError(t, err)
	downed := state.EntryFor("gobA")
	require.True(t, downed.Defeated())

	turn, err := m.AdvanceTurn()
	require.NoError(t, err)
	assert.Equal(t, "gobB", turn.ActiveID, "the defeated entry is skipped")

	_, err = m.ResolveAttack("gobB", "hero", "Dagger")
	require.NoError(t, err)

	// Cycle several full rounds; the defeated entry never gets a turn and
	// its flags never come back.
	for i := 0; i < 6; i++ {
		turn, err = m.AdvanceTurn()
		require.NoError(t, err)
		require.Nil(t, turn.Rejection)
		assert.NotEqual(t, "gobA", turn.ActiveID)
		assert.False(t, downed.HasAction)
		assert.False(t, downed.HasBonusAction)
		assert.False(t, downed.HasReaction)
		assert.False(t, downed.HasMovement)
	}
	assert.True(t, downed.Defeated())
}

func TestAdvanceTurn_NoActiveCombat(t *testing.T) {
	m := newTestManager(t, &scriptedSource{}, nil)
	turn, err := m.AdvanceTurn()
	require.NoError(t, err)
	require.NotNil(t, turn.Rejection)
	assert.Equal(t, combat.RejectNoActiveCombat, turn.Rejection.Code)
}

func TestResolveSpell_SavingThrowHalvesDamage(t *testing.T) {
	src := &scriptedSource{values: []int{
		15, 4, // initiative
		6, 6, 6, 6, 6, 6, 6, 6, // fireball 8d6 = 48
		20, // goblin save 20+2=22 vs DC 12
	}}
	m := newTestManager(t, src, nil)
	_, err := m.InitiateCombat(
		[]*combat.Combatant{hero(), goblin("gob1", "Goblin")}, combat.EncounterOptions{})
	require.NoError(t, err)

	rep, err := m.ResolveSpell("hero", "Fireball", 3, []string{"gob1"})
	require.NoError(t, err)
	require.Nil(t, rep.Rejection)
	assert.Equal(t, 12, rep.SaveDC, "8 + proficiency 2 + wisdom 2")
	require.Len(t, rep.Targets, 1)

	tr := rep.Targets[0]
	assert.True(t, tr.Saved)
	assert.Equal(t, 24, tr.Damage, "a successful save halves the damage")
	assert.Equal(t, 0, tr.TargetHP)
	assert.True(t, tr.TargetDefeated)
	assert.True(t, rep.EncounterOver)
}

func TestResolveSpell_HealingCapsAtMax(t *testing.T) {
	src := &scriptedSource{values: []int{
		15, 4, // initiative
		7, // cure wounds 1d8
	}}
	m := newTestManager(t, src, nil)
	wounded := hero()
	wounded.CurrentHP = 14
	state, err := m.InitiateCombat(
		[]*combat.Combatant{wounded, goblin("gob1", "Goblin")}, combat.EncounterOptions{})
	require.NoError(t, err)

	rep, err := m.ResolveSpell("hero", "Cure Wounds", 1, []string{"hero"})
	require.NoError(t, err)
	require.Nil(t, rep.Rejection)
	require.Len(t, rep.Targets, 1)
	assert.Equal(t, 7, rep.Targets[0].Healing)
	assert.Equal(t, 18, rep.Targets[0].TargetHP, "healing never exceeds max hit points")
	assert.Equal(t, 18, state.EntryFor("hero").Combatant.CurrentHP)
}

func TestResolveSpell_StatusEffectExpires(t *testing.T) {
	// 15, 4 initiative; 2 is the goblin's failed wisdom save (2-1=1 vs DC 12).
	src := &scriptedSource{values: []int{15, 4, 2}}
	m := newTestManager(t, src, nil)
	state, err := m.InitiateCombat(
		[]*combat.Combatant{hero(), goblin("gob1", "Goblin")}, combat.EncounterOptions{})
	require.NoError(t, err)

	rep, err := m.ResolveSpell("hero", "Hold Person", 2, []string{"gob1"})
	require.NoError(t, err)
	require.Nil(t, rep.Rejection)
	assert.False(t, rep.Targets[0].Saved)
	assert.Equal(t, "paralyzed", rep.Targets[0].Status)

	gob := state.EntryFor("gob1")
	assert.True(t, gob.HasCondition("paralyzed"))
	assert.True(t, m.Effects().HasStatus("gob1", "paralyzed"))

	// Two full rounds tick the effect out.
	for i := 0; i < 2; i++ {
		_, err = m.AdvanceTurn() // goblin
		require.NoError(t, err)
		_, err = m.AdvanceTurn() // wrap, round++
		require.NoError(t, err)
	}
	assert.False(t, gob.HasCondition("paralyzed"), "the status wears off after its duration")
	assert.False(t, m.Effects().HasStatus("gob1", "paralyzed"))
}

func TestResolveSpell_StatusSpellSaved(t *testing.T) {
	// 15, 4 initiative; 19 makes the goblin's wisdom save (19-1=18 vs DC 12).
	src := &scriptedSource{values: []int{15, 4, 19}}
	m := newTestManager(t, src, nil)
	state, err := m.InitiateCombat(
		[]*combat.Combatant{hero(), goblin("gob1", "Goblin")}, combat.EncounterOptions{})
	require.NoError(t, err)

	rep, err := m.ResolveSpell("hero", "Hold Person", 2, []string{"gob1"})
	require.NoError(t, err)
	require.Nil(t, rep.Rejection)
	require.Len(t, rep.Targets, 1)
	assert.True(t, rep.Targets[0].Saved)
	assert.Equal(t, 12, rep.SaveDC)
	assert.Empty(t, rep.Targets[0].Status)

	gob := state.EntryFor("gob1")
	assert.False(t, gob.HasCondition("paralyzed"))
	assert.False(t, m.Effects().HasStatus("gob1", "paralyzed"))
	assert.Contains(t, strings.Join(state.Log, "\n"), "Goblin saves against Hold Person.")
}

func TestResolveSpell_Rejections(t *testing.T) {
	src := &scriptedSource{values: []int{15, 4}}
	m := newTestManager(t, src, nil)
	_, err := m.InitiateCombat(
		[]*combat.Combatant{hero(), goblin("gob1", "Goblin")}, combat.EncounterOptions{})
	require.NoError(t, err)

	rep, err := m.ResolveSpell("hero", "Wish", 9, []string{"gob1"})
	require.NoError(t, err)
	require.NotNil(t, rep.Rejection)
	assert.Equal(t, combat.RejectUnknownName, rep.Rejection.Code)
	assert.Contains(t, rep.Rejection.Reason, "no spell called Wish exists")

	rep, err = m.ResolveSpell("hero", "Magic Missile", 1, []string{"gob1"})
	require.NoError(t, err)
	require.NotNil(t, rep.Rejection)
	assert.Equal(t, combat.RejectUnknownSpell, rep.Rejection.Code)
	assert.Contains(t, rep.Rejection.Reason, "doesn't know the spell Magic Missile")

	rep, err = m.ResolveSpell("hero", "Fireball", 2, []string{"gob1"})
	require.NoError(t, err)
	require.NotNil(t, rep.Rejection)
	assert.Equal(t, combat.RejectBadSpellLevel, rep.Rejection.Code)

	rep, err = m.ResolveSpell("hero", "Fireball", 3, nil)
	require.NoError(t, err)
	require.NotNil(t, rep.Rejection)

	rep, err = m.ResolveSpell("hero", "Fireball", 3, []string{"gob1", "gob1", "gob1", "gob1"})
	require.NoError(t, err)
	require.NotNil(t, rep.Rejection)
	assert.Contains(t, rep.Rejection.Reason, "at most 3")

	_, err = m.AdvanceTurn()
	require.NoError(t, err)
	rep, err = m.ResolveSpell("gob1", "Fireball", 3, []string{"hero"})
	require.NoError(t, err)
	require.NotNil(t, rep.Rejection)
	assert.Equal(t, combat.RejectNoSpellcasting, rep.Rejection.Code)
	assert.Contains(t, rep.Rejection.Reason, "no spellcasting capability")
}

func TestResolveItemUse_PotionConsumed(t *testing.T) {
	src := &scriptedSource{values: []int{
		15, 4, // initiative
		4, 4, // potion 2d4+2 = 10
	}}
	m := newTestManager(t, src, nil)
	wounded := hero()
	wounded.CurrentHP = 6
	state, err := m.InitiateCombat(
		[]*combat.Combatant{wounded, goblin("gob1", "Goblin")}, combat.EncounterOptions{})
	require.NoError(t, err)

	rep, err := m.ResolveItemUse("hero", "Potion of Healing", "")
	require.NoError(t, err)
	require.Nil(t, rep.Rejection)
	assert.Equal(t, "hero", rep.TargetID, "healing defaults to the user")
	assert.Equal(t, 10, rep.Healing)
	assert.Equal(t, 16, rep.TargetHP)
	assert.True(t, rep.Consumed)
	assert.False(t, state.EntryFor("hero").Combatant.Holds("healing_potion"))

	// Next turn around, the bottle is gone.
	_, err = m.AdvanceTurn()
	require.NoError(t, err)
	_, err = m.AdvanceTurn()
	require.NoError(t, err)

	rep, err = m.ResolveItemUse("hero", "Potion of Healing", "")
	require.NoError(t, err)
	require.NotNil(t, rep.Rejection)
	assert.Equal(t, combat.RejectItemNotHeld, rep.Rejection.Code)
}

func TestResolveItemUse_Rejections(t *testing.T) {
	src := &scriptedSource{values: []int{15, 4}}
	m := newTestManager(t, src, nil)
	_, err := m.InitiateCombat(
		[]*combat.Combatant{hero(), goblin("gob1", "Goblin")}, combat.EncounterOptions{})
	require.NoError(t, err)

	rep, err := m.ResolveItemUse("hero", "Philter of Love", "")
	require.NoError(t, err)
	require.NotNil(t, rep.Rejection)
	assert.Equal(t, combat.RejectUnknownName, rep.Rejection.Code)

	rep, err = m.ResolveItemUse("hero", "Rope", "")
	require.NoError(t, err)
	require.NotNil(t, rep.Rejection)
	assert.Equal(t, combat.RejectItemNotHeld, rep.Rejection.Code)
}

func TestDodge_ImposesDisadvantageUntilNextTurn(t *testing.T) {
	src := &scriptedSource{values: []int{
		15, 4, // initiative
		18, 3, // goblin attacks with disadvantage, keeps the 3
	}}
	m := newTestManager(t, src, nil)
	state, err := m.InitiateCombat(
		[]*combat.Combatant{hero(), goblin("gob1", "Goblin")}, combat.EncounterOptions{})
	require.NoError(t, err)

	rep, err := m.Dodge("hero")
	require.NoError(t, err)
	require.Nil(t, rep.Rejection)
	heroEntry := state.EntryFor("hero")
	assert.True(t, heroEntry.HasCondition(combat.ConditionDodging))
	assert.False(t, heroEntry.HasAction)

	_, err = m.AdvanceTurn()
	require.NoError(t, err)

	atk, err := m.ResolveAttack("gob1", "hero", "Dagger")
	require.NoError(t, err)
	require.Nil(t, atk.Rejection)
	assert.True(t, atk.Check.Disadvantage)
	assert.Equal(t, 3, atk.Check.Kept, "disadvantage keeps the lower die")
	assert.False(t, atk.Hit)

	_, err = m.AdvanceTurn()
	require.NoError(t, err)
	assert.False(t, heroEntry.HasCondition(combat.ConditionDodging),
		"dodging ends at the start of the dodger's next turn")
}

func TestDisengage(t *testing.T) {
	src := &scriptedSource{values: []int{15, 4}}
	m := newTestManager(t, src, nil)
	state, err := m.InitiateCombat(
		[]*combat.Combatant{hero(), goblin("gob1", "Goblin")}, combat.EncounterOptions{})
	require.NoError(t, err)

	rep, err := m.Disengage("hero")
	require.NoError(t, err)
	require.Nil(t, rep.Rejection)
	assert.True(t, state.EntryFor("hero").HasCondition(combat.ConditionDisengaged))

	rep, err = m.Dodge("hero")
	require.NoError(t, err)
	require.NotNil(t, rep.Rejection)
	assert.Equal(t, combat.RejectNoResource, rep.Rejection.Code)
}

func TestMove(t *testing.T) {
	src := &scriptedSource{values: []int{15, 4}}
	m := newTestManager(t, src, nil)
	state, err := m.InitiateCombat(
		[]*combat.Combatant{hero(), goblin("gob1", "Goblin")}, combat.EncounterOptions{})
	require.NoError(t, err)

	rep, err := m.Move("hero", 45)
	require.NoError(t, err)
	require.NotNil(t, rep.Rejection)
	assert.Equal(t, combat.RejectBadMovement, rep.Rejection.Code)

	rep, err = m.Move("hero", 20)
	require.NoError(t, err)
	require.Nil(t, rep.Rejection)
	assert.Equal(t, 20, rep.Distance)
	heroEntry := state.EntryFor("hero")
	assert.False(t, heroEntry.HasMovement)
	assert.True(t, heroEntry.HasAction, "moving spends movement, not the action")

	rep, err = m.Move("hero", 5)
	require.NoError(t, err)
	require.NotNil(t, rep.Rejection)
	assert.Equal(t, combat.RejectNoResource, rep.Rejection.Code)
}

func TestEffectTicks_DamageOverTime(t *testing.T) {
	src := &scriptedSource{values: []int{15, 4, 2, 2, 2}}
	m := newTestManager(t, src, nil)
	state, err := m.InitiateCombat(
		[]*combat.Combatant{hero(), goblin("gob1", "Goblin")}, combat.EncounterOptions{})
	require.NoError(t, err)

	m.Effects().Add("gob1", effect.ActiveEffect{
		Source:          "Serpent Venom",
		Kind:            effect.KindDamage,
		Amount:          3,
		RoundsRemaining: 2,
	})
	gob := state.EntryFor("gob1").Combatant
	require.Equal(t, 9, gob.CurrentHP)

	_, err = m.AdvanceTurn() // goblin
	require.NoError(t, err)
	_, err = m.AdvanceTurn() // round 2, venom ticks
	require.NoError(t, err)
	assert.Equal(t, 6, gob.CurrentHP)

	_, err = m.AdvanceTurn()
	require.NoError(t, err)
	_, err = m.AdvanceTurn() // round 3, venom ticks and expires
	require.NoError(t, err)
	assert.Equal(t, 3, gob.CurrentHP)
	assert.Empty(t, m.Effects().ActiveFor("gob1"))

	_, err = m.AdvanceTurn()
	require.NoError(t, err)
	_, err = m.AdvanceTurn() // round 4, nothing left to tick
	require.NoError(t, err)
	assert.Equal(t, 3, gob.CurrentHP)
}

func TestAbort(t *testing.T) {
	src := &scriptedSource{values: []int{15, 4}}
	sink := &captureSink{}
	m := newTestManager(t, src, sink)
	state, err := m.InitiateCombat(
		[]*combat.Combatant{hero(), goblin("gob1", "Goblin")}, combat.EncounterOptions{})
	require.NoError(t, err)

	require.NoError(t, m.Abort("the goblin flees into the dark"))
	assert.Equal(t, combat.StatusAborted, state.Status)
	assert.False(t, state.XPAwarded, "no experience for an abandoned fight")

	err = m.Abort("")
	assert.Error(t, err, "aborting twice is refused")

	last := sink.events[len(sink.events)-1]
	assert.Equal(t, combat.EventCombatEnded, last.Type)
	assert.Empty(t, last.Victor)
}
