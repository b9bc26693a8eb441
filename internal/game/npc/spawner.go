package npc

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/s76354m/dnd-ai-dm-sub001/internal/game/combat"
)

// Spawner turns templates into live combatants, numbering repeat spawns of
// the same template so "Goblin" and "Goblin 2" are distinguishable in one
// encounter. Spawner is not safe for concurrent use.
type Spawner struct {
	counts map[string]int
}

// NewSpawner returns a Spawner with no spawn history.
func NewSpawner() *Spawner {
	return &Spawner{counts: make(map[string]int)}
}

// Spawn creates a fresh combatant from tmpl at full hit points.
//
// Precondition: tmpl must have passed Validate().
// Postcondition: the returned combatant has a unique ID and a display name
// unique among this Spawner's spawns of tmpl.
func (s *Spawner) Spawn(tmpl *Template) *combat.Combatant {
	s.counts[tmpl.ID]++
	name := tmpl.Name
	if n := s.counts[tmpl.ID]; n > 1 {
		name = fmt.Sprintf("%s %d", tmpl.Name, n)
	}
	return &combat.Combatant{
		ID:         uuid.NewString(),
		Kind:       combat.KindNPC,
		Name:       name,
		MaxHP:      tmpl.MaxHP,
		CurrentHP:  tmpl.MaxHP,
		ArmorClass: tmpl.ArmorClass,
		Speed:      tmpl.Speed,
		Level:      tmpl.Level,
		Abilities: combat.AbilityScores{
			Strength:     tmpl.Abilities.Strength,
			Dexterity:    tmpl.Abilities.Dexterity,
			Constitution: tmpl.Abilities.Constitution,
			Intelligence: tmpl.Abilities.Intelligence,
			Wisdom:       tmpl.Abilities.Wisdom,
			Charisma:     tmpl.Abilities.Charisma,
		},
		Spells:   append([]string(nil), tmpl.Spells...),
		Equipped: append([]string(nil), tmpl.Equipped...),
		XPValue:  tmpl.XPValue,
	}
}

// SpawnGroup creates count combatants from tmpl.
//
// Precondition: count must be >= 1.
func (s *Spawner) SpawnGroup(tmpl *Template, count int) []*combat.Combatant {
	out := make([]*combat.Combatant, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, s.Spawn(tmpl))
	}
	return out
}

// HealthDescription returns a visible health state string for c, suitable
// for examine output.
//
// Postcondition: Returns a non-empty string.
func HealthDescription(c *combat.Combatant) string {
	if c.CurrentHP <= 0 {
		return "dead"
	}
	pct := float64(c.CurrentHP) / float64(c.MaxHP)
	switch {
	case pct >= 1.0:
		return "unharmed"
	case pct >= 0.85:
		return "barely scratched"
	case pct >= 0.60:
		return "lightly wounded"
	case pct >= 0.40:
		return "moderately wounded"
	case pct >= 0.20:
		return "heavily wounded"
	default:
		return "critically wounded"
	}
}
