package ruleset_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s76354m/dnd-ai-dm-sub001/internal/game/ruleset"
)

func writeYAML(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadClasses(t *testing.T) {
	dir := t.TempDir()
	writeYAML(t, dir, "fighter.yaml", `
id: fighter
name: Fighter
description: A master of martial combat.
key_ability: strength
hit_die: 10
starting_equipment: [longsword, chain_mail]
features:
  - name: Second Wind
    level: 1
    description: Recover hit points once per rest.
`)
	writeYAML(t, dir, "cleric.yaml", `
id: cleric
name: Cleric
key_ability: wisdom
hit_die: 8
spell_ability: wisdom
starting_spells: [cure_wounds, sacred_flame]
`)

	classes, err := ruleset.LoadClasses(dir)
	require.NoError(t, err)
	require.Len(t, classes, 2)

	byID := map[string]*ruleset.Class{}
	for _, c := range classes {
		byID[c.ID] = c
	}
	fighter := byID["fighter"]
	require.NotNil(t, fighter)
	assert.Equal(t, 10, fighter.HitDie)
	assert.False(t, fighter.Spellcaster())
	require.Len(t, fighter.Features, 1)
	assert.Equal(t, "Second Wind", fighter.Features[0].Name)

	cleric := byID["cleric"]
	require.NotNil(t, cleric)
	assert.True(t, cleric.Spellcaster())
	assert.Equal(t, []string{"cure_wounds", "sacred_flame"}, cleric.StartingSpells)
}

func TestLoadClasses_InvalidRejected(t *testing.T) {
	cases := map[string]string{
		"bad hit die":              "id: x\nname: X\nkey_ability: strength\nhit_die: 7\n",
		"missing key ability":      "id: x\nname: X\nhit_die: 8\n",
		"spells without an ability": "id: x\nname: X\nkey_ability: wisdom\nhit_die: 8\nstarting_spells: [bless]\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeYAML(t, dir, "bad.yaml", content)
			_, err := ruleset.LoadClasses(dir)
			assert.Error(t, err)
		})
	}
}

func TestLoadRaces(t *testing.T) {
	dir := t.TempDir()
	writeYAML(t, dir, "dwarf.yaml", `
id: dwarf
name: Dwarf
article: a
bonuses:
  constitution: 2
speed: 25
traits: [darkvision, dwarven_resilience]
`)

	races, err := ruleset.LoadRaces(dir)
	require.NoError(t, err)
	require.Len(t, races, 1)
	assert.Equal(t, "a Dwarf", races[0].DisplayName())
	assert.Equal(t, 2, races[0].Bonuses["constitution"])
	assert.Equal(t, 25, races[0].Speed)
}

func TestLoadRaces_MissingSpeedRejected(t *testing.T) {
	dir := t.TempDir()
	writeYAML(t, dir, "ghost.yaml", "id: ghost\nname: Ghost\n")
	_, err := ruleset.LoadRaces(dir)
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	reg := ruleset.NewRegistry()
	reg.RegisterClass(&ruleset.Class{ID: "wizard", Name: "Wizard", KeyAbility: "intelligence", HitDie: 6})
	reg.RegisterRace(&ruleset.Race{ID: "elf", Name: "Elf", Speed: 30})

	c, ok := reg.Class("wizard")
	require.True(t, ok)
	assert.Equal(t, "Wizard", c.Name)

	_, ok = reg.Class("warlock")
	assert.False(t, ok)

	race, ok := reg.Race("elf")
	require.True(t, ok)
	assert.Equal(t, 30, race.Speed)

	assert.Len(t, reg.Classes(), 1)
	assert.Len(t, reg.Races(), 1)

	assert.Panics(t, func() { reg.RegisterClass(&ruleset.Class{}) })
}

func TestLoadInto(t *testing.T) {
	classDir := t.TempDir()
	raceDir := t.TempDir()
	writeYAML(t, classDir, "rogue.yaml", "id: rogue\nname: Rogue\nkey_ability: dexterity\nhit_die: 8\n")
	writeYAML(t, raceDir, "halfling.yaml", "id: halfling\nname: Halfling\nspeed: 25\n")

	reg, err := ruleset.LoadInto(classDir, raceDir)
	require.NoError(t, err)
	_, ok := reg.Class("rogue")
	assert.True(t, ok)
	_, ok = reg.Race("halfling")
	assert.True(t, ok)
}
