package character

import (
	"errors"
	"fmt"
	"strings"

	"github.com/s76354m/dnd-ai-dm-sub001/internal/game/ruleset"
)

// xpThresholds[n] is the experience required to reach level n+1. Levels past
// the table stay at the final entry.
var xpThresholds = [...]int{0, 300, 900, 2700, 6500, 14000, 23000, 34000, 48000, 64000}

// MaxLevel is the highest attainable character level.
const MaxLevel = len(xpThresholds)

// applyBonuses starts all abilities at 10 and adds racial bonus values.
func applyBonuses(bonuses map[string]int) AbilityScores {
	a := AbilityScores{
		Strength: 10, Dexterity: 10, Constitution: 10,
		Intelligence: 10, Wisdom: 10, Charisma: 10,
	}
	for ability, delta := range bonuses {
		switch strings.ToLower(ability) {
		case "strength":
			a.Strength += delta
		case "dexterity":
			a.Dexterity += delta
		case "constitution":
			a.Constitution += delta
		case "intelligence":
			a.Intelligence += delta
		case "wisdom":
			a.Wisdom += delta
		case "charisma":
			a.Charisma += delta
		}
	}
	return a
}

// applyKeyAbilityBoost adds +2 to the class key ability score.
func applyKeyAbilityBoost(a AbilityScores, keyAbility string) AbilityScores {
	switch strings.ToLower(keyAbility) {
	case "strength":
		a.Strength += 2
	case "dexterity":
		a.Dexterity += 2
	case "constitution":
		a.Constitution += 2
	case "intelligence":
		a.Intelligence += 2
	case "wisdom":
		a.Wisdom += 2
	case "charisma":
		a.Charisma += 2
	}
	return a
}

// Build constructs a new level 1 Character from a name, race, and class.
// Ability scores start at 10, racial bonuses are applied, then the class key
// ability receives a +2 boost. HP = max(1, hit die + CON modifier). Armor
// class is 10 + DEX modifier; worn armor adjusts it separately.
//
// Precondition: name must be non-empty; race and class must be non-nil.
// Postcondition: Returns a Character ready for persistence, or a non-nil error.
func Build(name string, race *ruleset.Race, class *ruleset.Class) (*Character, error) {
	if name == "" {
		return nil, errors.New("character name must not be empty")
	}
	if race == nil {
		return nil, errors.New("race must not be nil")
	}
	if class == nil {
		return nil, errors.New("class must not be nil")
	}

	abilities := applyBonuses(race.Bonuses)
	abilities = applyKeyAbilityBoost(abilities, class.KeyAbility)

	conMod := abilities.Modifier(abilities.Constitution)
	maxHP := class.HitDie + conMod
	if maxHP < 1 {
		maxHP = 1
	}

	return &Character{
		Name:       name,
		Race:       race.ID,
		Class:      class.ID,
		Level:      1,
		Abilities:  abilities,
		MaxHP:      maxHP,
		CurrentHP:  maxHP,
		ArmorClass: 10 + abilities.Modifier(abilities.Dexterity),
		Speed:      race.Speed,
		Spells:     append([]string(nil), class.StartingSpells...),
		Equipped:   append([]string(nil), class.StartingEquipment...),
		Inventory:  append([]string(nil), class.StartingInventory...),
	}, nil
}

// LevelFor returns the level earned by xp.
func LevelFor(xp int) int {
	level := 1
	for i := 1; i < len(xpThresholds); i++ {
		if xp >= xpThresholds[i] {
			level = i + 1
		}
	}
	return level
}

// AddExperience grants xp and applies any level-ups: each new level adds the
// average hit die roll plus the CON modifier (minimum 1) to max and current
// hit points.
//
// Precondition: xp must be >= 0; class must match c.Class.
// Postcondition: c.Level == LevelFor(c.Experience).
func (c *Character) AddExperience(xp int, class *ruleset.Class) error {
	if xp < 0 {
		return fmt.Errorf("experience grant must not be negative; got %d", xp)
	}
	if class == nil || class.ID != c.Class {
		return fmt.Errorf("class %v does not match character class %q", class, c.Class)
	}
	c.Experience += xp

	perLevel := class.HitDie/2 + 1 + c.Abilities.Modifier(c.Abilities.Constitution)
	if perLevel < 1 {
		perLevel = 1
	}
	for newLevel := LevelFor(c.Experience); c.Level < newLevel; c.Level++ {
		c.MaxHP += perLevel
		c.CurrentHP += perLevel
	}
	return nil
}
