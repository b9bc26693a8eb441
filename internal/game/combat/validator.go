package combat

import (
	"fmt"

	"github.com/s76354m/dnd-ai-dm-sub001/internal/game/item"
	"github.com/s76354m/dnd-ai-dm-sub001/internal/game/spell"
)

// RejectCode is a stable machine-readable reason for a rejected action.
type RejectCode string

const (
	RejectNoActiveCombat     RejectCode = "no_active_combat"
	RejectUnknownParticipant RejectCode = "unknown_participant"
	RejectTargetDefeated     RejectCode = "target_defeated"
	RejectNotYourTurn        RejectCode = "not_your_turn"
	RejectNoResource         RejectCode = "no_resource"
	RejectNoSpellcasting     RejectCode = "no_spellcasting"
	RejectUnknownSpell       RejectCode = "unknown_spell"
	RejectBadSpellLevel      RejectCode = "bad_spell_level"
	RejectNotEquipped        RejectCode = "not_equipped"
	RejectItemNotHeld        RejectCode = "item_not_held"
	RejectItemNotUsable      RejectCode = "item_not_usable"
	RejectBadMovement        RejectCode = "bad_movement"
	RejectUnknownName        RejectCode = "unknown_name"
)

// Result is the outcome of one validation predicate. The reason string is
// generated here, once, at the validator boundary; callers surface it
// verbatim and never re-derive it.
type Result struct {
	Valid  bool
	Entry  *InitiativeEntry
	Code   RejectCode
	Reason string
}

func valid(e *InitiativeEntry) Result {
	return Result{Valid: true, Entry: e}
}

func invalid(code RejectCode, format string, args ...any) Result {
	return Result{Code: code, Reason: fmt.Sprintf(format, args...)}
}

// The validator layer is a pure predicate surface over CombatState: every
// function below reads state and returns a Result, never mutating anything.
// The Manager composes these checks before applying an action, and a UI
// layer can pre-flight a command with them without committing it.

// ValidateActiveCombat checks that an encounter exists and is in progress.
func ValidateActiveCombat(state *CombatState) Result {
	if state == nil {
		return invalid(RejectNoActiveCombat, "there is no combat in progress")
	}
	if state.Status != StatusActive {
		return invalid(RejectNoActiveCombat, "combat is %s, not active", state.Status)
	}
	return valid(nil)
}

// ValidateParticipant checks that id names a combatant in the encounter.
func ValidateParticipant(id string, state *CombatState) Result {
	if r := ValidateActiveCombat(state); !r.Valid {
		return r
	}
	if id == "" {
		return invalid(RejectUnknownParticipant, "no combatant specified")
	}
	e := state.EntryFor(id)
	if e == nil {
		return invalid(RejectUnknownParticipant, "%s is not part of this combat", id)
	}
	return valid(e)
}

// ValidateTarget checks that id names a combatant that can still be
// targeted, i.e. one not already defeated.
func ValidateTarget(id string, state *CombatState) Result {
	r := ValidateParticipant(id, state)
	if !r.Valid {
		return r
	}
	if r.Entry.Defeated() {
		return invalid(RejectTargetDefeated, "%s is already defeated", r.Entry.Combatant.Name)
	}
	return r
}

// ValidateParticipantTurn checks that id names a combatant and that it is
// currently that combatant's turn.
func ValidateParticipantTurn(id string, state *CombatState) Result {
	r := ValidateParticipant(id, state)
	if !r.Valid {
		return r
	}
	current := state.CurrentEntry()
	if current == nil || current != r.Entry {
		return invalid(RejectNotYourTurn, "it is not %s's turn", r.Entry.Combatant.Name)
	}
	return r
}

// ValidateAction checks that entry has the resource the action type spends.
// Casting additionally requires spellcasting capability.
func ValidateAction(entry *InitiativeEntry, action ActionType) Result {
	name := entry.Combatant.Name
	if action.consumesAction() {
		if !entry.HasAction {
			return invalid(RejectNoResource, "%s has no action remaining this turn", name)
		}
	} else if action == ActionMove {
		if !entry.HasMovement {
			return invalid(RejectNoResource, "%s has no movement remaining this turn", name)
		}
	} else {
		return invalid(RejectNoResource, "%s cannot take an unknown action", name)
	}

	if action == ActionCast && !entry.Combatant.CanCast() {
		if entry.Combatant.IsPlayer() {
			return invalid(RejectNoSpellcasting, "%s has no spells in their spellbook", name)
		}
		return invalid(RejectNoSpellcasting, "%s has no spellcasting capability", name)
	}
	return valid(entry)
}

// ValidateAttack checks that attacker may attack defender, optionally with
// the named weapon. A nil weapon means an unarmed attack.
func ValidateAttack(attacker, defender *InitiativeEntry, weapon *item.Def) Result {
	if r := ValidateAction(attacker, ActionAttack); !r.Valid {
		return r
	}
	if weapon != nil && !attacker.Combatant.HasEquipped(weapon.ID) {
		return invalid(RejectNotEquipped, "%s does not have %s equipped", attacker.Combatant.Name, weapon.Name)
	}
	return valid(attacker)
}

// ValidateSpell checks that caster may cast sp at the given level against
// the named targets.
func ValidateSpell(caster *InitiativeEntry, sp *spell.Def, level int, targetIDs []string, state *CombatState) Result {
	if r := ValidateAction(caster, ActionCast); !r.Valid {
		return r
	}
	name := caster.Combatant.Name
	if !caster.Combatant.Knows(sp.ID) {
		return invalid(RejectUnknownSpell, "%s doesn't know the spell %s", name, sp.Name)
	}
	if level < 0 || level > spell.MaxLevel {
		return invalid(RejectBadSpellLevel, "spell level %d is outside [0, %d]", level, spell.MaxLevel)
	}
	if level < sp.Level {
		return invalid(RejectBadSpellLevel, "%s cannot be cast below level %d", sp.Name, sp.Level)
	}
	if len(targetIDs) == 0 {
		return invalid(RejectUnknownParticipant, "%s requires a target", sp.Name)
	}
	if len(targetIDs) > sp.TargetCap() {
		return invalid(RejectBadSpellLevel, "%s targets at most %d combatants", sp.Name, sp.TargetCap())
	}
	for _, id := range targetIDs {
		if r := ValidateTarget(id, state); !r.Valid {
			return r
		}
	}
	return valid(caster)
}

// ValidateItem checks that user may use the item, optionally against a
// target.
func ValidateItem(user *InitiativeEntry, def *item.Def, targetID string, state *CombatState) Result {
	if r := ValidateAction(user, ActionUseItem); !r.Valid {
		return r
	}
	name := user.Combatant.Name
	if !user.Combatant.Holds(def.ID) {
		return invalid(RejectItemNotHeld, "%s is not carrying %s", name, def.Name)
	}
	if !def.CombatUsable {
		return invalid(RejectItemNotUsable, "%s cannot be used in combat", def.Name)
	}
	if targetID != "" {
		if r := ValidateTarget(targetID, state); !r.Valid {
			return r
		}
	}
	return valid(user)
}

// ValidateMovement checks that entry may move the given distance in feet.
func ValidateMovement(entry *InitiativeEntry, distance int) Result {
	name := entry.Combatant.Name
	if !entry.HasMovement {
		return invalid(RejectNoResource, "%s has no movement remaining this turn", name)
	}
	if distance <= 0 {
		return invalid(RejectBadMovement, "movement distance must be positive")
	}
	if distance > entry.Combatant.Speed {
		return invalid(RejectBadMovement, "%s can move at most %d feet", name, entry.Combatant.Speed)
	}
	return valid(entry)
}
