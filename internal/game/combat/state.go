package combat

import (
	"sort"
	"strings"

	"github.com/s76354m/dnd-ai-dm-sub001/internal/game/effect"
)

// Status is the encounter lifecycle state.
type Status int

const (
	StatusNotStarted Status = iota
	StatusActive
	StatusCompleted
	StatusAborted
)

// String returns a human-readable status label.
func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "not started"
	case StatusActive:
		return "active"
	case StatusCompleted:
		return "completed"
	case StatusAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Condition tags tracked on initiative entries.
const (
	// ConditionDefeated is permanent for the rest of the encounter and keeps
	// all four resource flags false.
	ConditionDefeated = "defeated"
	// ConditionDodging lasts until the start of the entry's next turn.
	ConditionDodging = "dodging"
	// ConditionDisengaged lasts until the start of the entry's next turn.
	ConditionDisengaged = "disengaged"
)

// InitiativeEntry wraps one combatant's turn-scheduling state for an
// encounter. Exactly one entry exists per combatant per encounter.
type InitiativeEntry struct {
	Combatant *Combatant
	// Initiative is the rolled d20 + dexterity modifier.
	Initiative int
	// IsPlayer discriminates the player side for encounter-end checks.
	IsPlayer bool
	// submitted is the original submission index, the final initiative
	// tie-break key.
	submitted int

	// Per-turn resource flags. Set true only by the turn-advance step;
	// cleared only by action resolution or defeat.
	HasAction      bool
	HasBonusAction bool
	HasReaction    bool
	HasMovement    bool

	conditions map[string]struct{}
	// Effects caches the entry's active temporary effects; the ledger is the
	// source of truth.
	Effects []*effect.ActiveEffect
}

// newEntry builds an InitiativeEntry for c with all flags live.
func newEntry(c *Combatant, submitted int) *InitiativeEntry {
	return &InitiativeEntry{
		Combatant:      c,
		IsPlayer:       c.IsPlayer(),
		submitted:      submitted,
		HasAction:      true,
		HasBonusAction: true,
		HasReaction:    true,
		HasMovement:    true,
		conditions:     make(map[string]struct{}),
	}
}

// HasCondition reports whether the entry carries the named condition tag.
func (e *InitiativeEntry) HasCondition(tag string) bool {
	_, ok := e.conditions[tag]
	return ok
}

// AddCondition applies the named condition tag.
func (e *InitiativeEntry) AddCondition(tag string) {
	e.conditions[tag] = struct{}{}
}

// RemoveCondition drops the named condition tag. Removing ConditionDefeated
// is refused: a defeated entry is never re-activated.
func (e *InitiativeEntry) RemoveCondition(tag string) {
	if tag == ConditionDefeated {
		return
	}
	delete(e.conditions, tag)
}

// Conditions returns the active condition tags in sorted order.
func (e *InitiativeEntry) Conditions() []string {
	out := make([]string, 0, len(e.conditions))
	for tag := range e.conditions {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// Defeated reports whether the entry carries the defeated condition.
func (e *InitiativeEntry) Defeated() bool {
	return e.HasCondition(ConditionDefeated)
}

// markDefeated applies the defeated condition and permanently clears all
// four resource flags.
//
// Postcondition: Defeated() is true; no flag is ever set true again.
func (e *InitiativeEntry) markDefeated() {
	e.AddCondition(ConditionDefeated)
	e.clearFlags()
}

// clearFlags sets all four resource flags false.
func (e *InitiativeEntry) clearFlags() {
	e.HasAction = false
	e.HasBonusAction = false
	e.HasReaction = false
	e.HasMovement = false
}

// beginTurn resets the per-turn state at the start of this entry's turn:
// flags back to true and turn-scoped conditions dropped. Defeated entries
// are untouched.
func (e *InitiativeEntry) beginTurn() {
	if e.Defeated() {
		return
	}
	e.HasAction = true
	e.HasBonusAction = true
	e.HasReaction = true
	e.HasMovement = true
	e.RemoveCondition(ConditionDodging)
	e.RemoveCondition(ConditionDisengaged)
}

// CombatState holds the full state of one encounter. It is owned and mutated
// exclusively by the Manager; the validator only reads it.
type CombatState struct {
	// ID uniquely identifies the encounter.
	ID string
	// Status is the lifecycle state.
	Status Status
	// Round is the current round number, starting at 1 when combat begins.
	Round int
	// Entries is the initiative-ordered participant list, highest first.
	Entries []*InitiativeEntry
	// turnIndex is the index of the current actor in Entries.
	turnIndex int
	// Log is the append-only combat log.
	Log []string
	// LocationID references where the encounter takes place.
	LocationID string
	// PlayerInitiated records whether a player triggered the encounter.
	PlayerInitiated bool
	// XPAwarded records whether experience has been granted for this
	// encounter.
	XPAwarded bool
}

// TurnIndex returns the index of the current actor.
func (s *CombatState) TurnIndex() int { return s.turnIndex }

// CurrentEntry returns the entry whose turn it is, or nil when the encounter
// is not active or the index is out of range.
func (s *CombatState) CurrentEntry() *InitiativeEntry {
	if s.Status != StatusActive || s.turnIndex < 0 || s.turnIndex >= len(s.Entries) {
		return nil
	}
	return s.Entries[s.turnIndex]
}

// EntryFor returns the entry for the combatant id, or nil if absent.
func (s *CombatState) EntryFor(id string) *InitiativeEntry {
	for _, e := range s.Entries {
		if strings.EqualFold(e.Combatant.ID, id) {
			return e
		}
	}
	return nil
}

// EntryByName returns the first entry whose combatant name matches,
// case-insensitively. The command layer resolves display names with this.
func (s *CombatState) EntryByName(name string) *InitiativeEntry {
	for _, e := range s.Entries {
		if strings.EqualFold(e.Combatant.Name, name) {
			return e
		}
	}
	return nil
}

// AppendLog adds one entry to the append-only combat log.
func (s *CombatState) AppendLog(line string) {
	s.Log = append(s.Log, line)
}

// PlayersStanding reports whether any player-side entry is not defeated.
func (s *CombatState) PlayersStanding() bool {
	for _, e := range s.Entries {
		if e.IsPlayer && !e.Defeated() {
			return true
		}
	}
	return false
}

// HostilesStanding reports whether any hostile entry is not defeated.
func (s *CombatState) HostilesStanding() bool {
	for _, e := range s.Entries {
		if !e.IsPlayer && !e.Defeated() {
			return true
		}
	}
	return false
}

// livingCount returns the number of non-defeated entries.
func (s *CombatState) livingCount() int {
	n := 0
	for _, e := range s.Entries {
		if !e.Defeated() {
			n++
		}
	}
	return n
}
