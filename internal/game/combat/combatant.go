// Package combat implements the turn-based encounter engine: initiative
// ordering, the turn/action economy, attack/spell/item validation, and
// damage and effect application.
package combat

import "strings"

// Kind distinguishes player combatants from NPC combatants.
type Kind int

const (
	KindPlayer Kind = iota
	KindNPC
)

// Ability identifies one of the six ability scores.
type Ability int

const (
	Strength Ability = iota
	Dexterity
	Constitution
	Intelligence
	Wisdom
	Charisma
)

// String returns the lowercase ability name.
func (a Ability) String() string {
	switch a {
	case Strength:
		return "strength"
	case Dexterity:
		return "dexterity"
	case Constitution:
		return "constitution"
	case Intelligence:
		return "intelligence"
	case Wisdom:
		return "wisdom"
	case Charisma:
		return "charisma"
	default:
		return "unknown"
	}
}

// ParseAbility maps an ability name to its Ability, case-insensitively.
// Postcondition: returns (ability, true) on a recognized name.
func ParseAbility(name string) (Ability, bool) {
	switch strings.ToLower(name) {
	case "strength", "str":
		return Strength, true
	case "dexterity", "dex":
		return Dexterity, true
	case "constitution", "con":
		return Constitution, true
	case "intelligence", "int":
		return Intelligence, true
	case "wisdom", "wis":
		return Wisdom, true
	case "charisma", "cha":
		return Charisma, true
	default:
		return Strength, false
	}
}

// AbilityScores holds the six ability score values.
type AbilityScores struct {
	Strength     int
	Dexterity    int
	Constitution int
	Intelligence int
	Wisdom       int
	Charisma     int
}

// Score returns the raw score for a.
func (s AbilityScores) Score(a Ability) int {
	switch a {
	case Strength:
		return s.Strength
	case Dexterity:
		return s.Dexterity
	case Constitution:
		return s.Constitution
	case Intelligence:
		return s.Intelligence
	case Wisdom:
		return s.Wisdom
	case Charisma:
		return s.Charisma
	default:
		return 0
	}
}

// Modifier computes the ability modifier for a raw score using floor
// division: floor((score - 10) / 2).
//
// Postcondition: Modifier(8) == -1, Modifier(10) == 0, Modifier(15) == 2.
func Modifier(score int) int {
	diff := score - 10
	if diff < 0 {
		return (diff - 1) / 2
	}
	return diff / 2
}

// Combatant is the canonical participant snapshot the engine owns for the
// duration of an encounter. Character and NPC registries reconcile their own
// shapes into this one type at ingestion; the engine never reads their live
// state mid-combat.
type Combatant struct {
	ID   string
	Kind Kind
	Name string

	MaxHP      int
	CurrentHP  int
	ArmorClass int
	// Speed is the movement allowance per turn, in feet.
	Speed int
	Level int

	Abilities AbilityScores

	// Spells holds catalog ids of known spells; empty means the combatant
	// has no spellcasting capability.
	Spells []string
	// Equipped holds catalog ids of currently equipped items.
	Equipped []string
	// Inventory holds catalog ids of carried items.
	Inventory []string
	// XPValue is the experience awarded for defeating this combatant (NPCs).
	XPValue int
}

// IsPlayer reports whether this combatant is a player character.
func (c *Combatant) IsPlayer() bool { return c.Kind == KindPlayer }

// AbilityModifier returns the modifier for the given ability.
func (c *Combatant) AbilityModifier(a Ability) int {
	return Modifier(c.Abilities.Score(a))
}

// ProficiencyBonus returns the proficiency bonus for the combatant's level:
// 2 + (level-1)/4, minimum 2.
func (c *Combatant) ProficiencyBonus() int {
	if c.Level < 1 {
		return 2
	}
	return 2 + (c.Level-1)/4
}

// CanCast reports whether the combatant has any spellcasting capability.
func (c *Combatant) CanCast() bool { return len(c.Spells) > 0 }

// Knows reports whether the combatant knows the spell with the given catalog
// id, case-insensitively.
func (c *Combatant) Knows(spellID string) bool {
	for _, s := range c.Spells {
		if strings.EqualFold(s, spellID) {
			return true
		}
	}
	return false
}

// HasEquipped reports whether the item with the given catalog id is
// currently equipped.
func (c *Combatant) HasEquipped(itemID string) bool {
	for _, id := range c.Equipped {
		if strings.EqualFold(id, itemID) {
			return true
		}
	}
	return false
}

// Holds reports whether the item with the given catalog id is in the
// combatant's inventory or equipped.
func (c *Combatant) Holds(itemID string) bool {
	if c.HasEquipped(itemID) {
		return true
	}
	for _, id := range c.Inventory {
		if strings.EqualFold(id, itemID) {
			return true
		}
	}
	return false
}

// Equip marks the item as equipped, adding it to the inventory if absent.
func (c *Combatant) Equip(itemID string) {
	if c.HasEquipped(itemID) {
		return
	}
	c.Equipped = append(c.Equipped, itemID)
}

// RemoveFromInventory drops one instance of the item id from the inventory.
// Postcondition: returns true iff an instance was removed.
func (c *Combatant) RemoveFromInventory(itemID string) bool {
	for i, id := range c.Inventory {
		if strings.EqualFold(id, itemID) {
			c.Inventory = append(c.Inventory[:i], c.Inventory[i+1:]...)
			return true
		}
	}
	return false
}

// ApplyDamage reduces CurrentHP by amount, flooring at zero.
//
// Precondition: amount >= 0.
// Postcondition: CurrentHP >= 0.
func (c *Combatant) ApplyDamage(amount int) {
	c.CurrentHP -= amount
	if c.CurrentHP < 0 {
		c.CurrentHP = 0
	}
}

// Heal raises CurrentHP by amount, capped at MaxHP.
//
// Precondition: amount >= 0.
// Postcondition: CurrentHP <= MaxHP.
func (c *Combatant) Heal(amount int) {
	c.CurrentHP += amount
	if c.CurrentHP > c.MaxHP {
		c.CurrentHP = c.MaxHP
	}
}
