package combat

import "github.com/s76354m/dnd-ai-dm-sub001/internal/game/dice"

// rollInitiative rolls 1d20 + dexterity modifier for each entry and stores it
// as the entry's Initiative.
//
// Precondition: src must be non-nil.
func rollInitiative(entries []*InitiativeEntry, src dice.Source) {
	for _, e := range entries {
		roll := src.Intn(20) + 1
		e.Initiative = roll + e.Combatant.AbilityModifier(Dexterity)
	}
}

// sortByInitiative orders entries in place, highest initiative first. Ties
// break on dexterity modifier descending, then on submission order. The sort
// is a stable insertion sort, so equal keys keep their submission order.
func sortByInitiative(entries []*InitiativeEntry) {
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && initiativeLess(entries[j-1], entries[j]); j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
}

// initiativeLess reports whether a orders strictly after b: lower initiative,
// then lower dexterity modifier, then later submission.
func initiativeLess(a, b *InitiativeEntry) bool {
	if a.Initiative != b.Initiative {
		return a.Initiative < b.Initiative
	}
	aDex := a.Combatant.AbilityModifier(Dexterity)
	bDex := b.Combatant.AbilityModifier(Dexterity)
	if aDex != bDex {
		return aDex < bDex
	}
	return a.submitted > b.submitted
}
