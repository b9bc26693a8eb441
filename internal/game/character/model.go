// Package character defines the character domain model and pure creation logic.
package character

import (
	"time"

	"github.com/s76354m/dnd-ai-dm-sub001/internal/game/combat"
)

// AbilityScores holds the six ability score values for a character.
type AbilityScores struct {
	Strength     int
	Dexterity    int
	Constitution int
	Intelligence int
	Wisdom       int
	Charisma     int
}

// Modifier returns the ability modifier for a given score: floor((score - 10) / 2).
func (a AbilityScores) Modifier(score int) int {
	return combat.Modifier(score)
}

// Character represents a player character's persistent state.
//
// ID is set by the persistence layer; a zero value indicates an unsaved
// character.
type Character struct {
	ID int64

	Name       string
	Race       string // race ID
	Class      string // class ID
	Level      int
	Experience int

	Location  string // current location ID
	Abilities AbilityScores
	MaxHP     int
	CurrentHP int
	ArmorClass int
	Speed      int

	// Spells holds known spell IDs; empty for martial classes.
	Spells []string
	// Equipped and Inventory hold item IDs.
	Equipped  []string
	Inventory []string
	// Gold is the carried coin, grown by loot after victories.
	Gold int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Combatant builds a combat snapshot of the character. The snapshot shares
// the spell and item slices; combat mutates hit points and inventory on it,
// and the caller syncs survivors back after the encounter.
func (c *Character) Combatant(combatID string) *combat.Combatant {
	return &combat.Combatant{
		ID:         combatID,
		Kind:       combat.KindPlayer,
		Name:       c.Name,
		MaxHP:      c.MaxHP,
		CurrentHP:  c.CurrentHP,
		ArmorClass: c.ArmorClass,
		Speed:      c.Speed,
		Level:      c.Level,
		Abilities: combat.AbilityScores{
			Strength:     c.Abilities.Strength,
			Dexterity:    c.Abilities.Dexterity,
			Constitution: c.Abilities.Constitution,
			Intelligence: c.Abilities.Intelligence,
			Wisdom:       c.Abilities.Wisdom,
			Charisma:     c.Abilities.Charisma,
		},
		Spells:    c.Spells,
		Equipped:  c.Equipped,
		Inventory: c.Inventory,
	}
}

// SyncFromCombat copies the mutable outcome of an encounter back onto the
// character: hit points and inventory, never abilities or level.
func (c *Character) SyncFromCombat(snapshot *combat.Combatant) {
	c.CurrentHP = snapshot.CurrentHP
	c.Inventory = snapshot.Inventory
	c.Equipped = snapshot.Equipped
}
