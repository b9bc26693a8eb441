// Package narrate turns resolved combat events into prose. The mechanical
// outcome is always decided before narration begins; a narrator renders what
// already happened and can never change it.
package narrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/s76354m/dnd-ai-dm-sub001/internal/game/combat"
)

// Narrator renders one combat event as prose.
type Narrator interface {
	Narrate(ctx context.Context, event combat.Event) (string, error)
}

// TemplateNarrator renders events with fixed templates. It is the fallback
// when no language model is configured and the reference output in tests.
type TemplateNarrator struct{}

// Narrate implements Narrator. It never fails.
func (TemplateNarrator) Narrate(_ context.Context, e combat.Event) (string, error) {
	switch e.Type {
	case combat.EventCombatStarted:
		return fmt.Sprintf("Steel clears leather. %s is first to move.", e.ActorName), nil
	case combat.EventAttack:
		weapon := e.Weapon
		if weapon == "" {
			weapon = "bare fists"
		}
		switch {
		case e.CritFailure:
			return fmt.Sprintf("%s swings wide at %s, the %s finding only air.", e.ActorName, e.TargetName, weapon), nil
		case e.CritSuccess:
			return fmt.Sprintf("%s lands a devastating blow on %s with %s for %d damage!", e.ActorName, e.TargetName, weapon, e.Damage), nil
		case e.Hit:
			return fmt.Sprintf("%s strikes %s with %s for %d damage.", e.ActorName, e.TargetName, weapon, e.Damage), nil
		default:
			return fmt.Sprintf("%s attacks %s but misses.", e.ActorName, e.TargetName), nil
		}
	case combat.EventSpell:
		if e.Healing > 0 {
			return fmt.Sprintf("%s casts %s and %s recovers %d hit points.", e.ActorName, e.Spell, e.TargetName, e.Healing), nil
		}
		if e.Hit {
			return fmt.Sprintf("%s casts %s at %s for %d damage.", e.ActorName, e.Spell, e.TargetName, e.Damage), nil
		}
		return fmt.Sprintf("%s casts %s but %s shrugs it off.", e.ActorName, e.Spell, e.TargetName), nil
	case combat.EventItemUse:
		if e.Healing > 0 {
			return fmt.Sprintf("%s uses %s; %s recovers %d hit points.", e.ActorName, e.Item, e.TargetName, e.Healing), nil
		}
		return fmt.Sprintf("%s uses %s on %s.", e.ActorName, e.Item, e.TargetName), nil
	case combat.EventMovement:
		return fmt.Sprintf("%s repositions, covering %d feet.", e.ActorName, e.Distance), nil
	case combat.EventDodge:
		return fmt.Sprintf("%s weaves defensively, ready for the next blow.", e.ActorName), nil
	case combat.EventDisengage:
		return fmt.Sprintf("%s slips out of reach.", e.ActorName), nil
	case combat.EventTurnAdvanced:
		return fmt.Sprintf("All eyes turn to %s.", e.ActorName), nil
	case combat.EventRoundStarted:
		return fmt.Sprintf("Round %d begins.", e.Round), nil
	case combat.EventDefeat:
		return fmt.Sprintf("%s collapses, out of the fight.", e.TargetName), nil
	case combat.EventCombatEnded:
		if e.Victor == "" {
			return "The fight breaks off before a victor emerges.", nil
		}
		return fmt.Sprintf("The dust settles. The %s have won.", e.Victor), nil
	default:
		return "", fmt.Errorf("narrate: unknown event type %q", e.Type)
	}
}

// promptFor builds the model prompt for one event. The prompt states the
// mechanical facts and asks only for color.
func promptFor(e combat.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Event: %s. Round %d.\n", e.Type, e.Round)
	if e.ActorName != "" {
		fmt.Fprintf(&b, "Actor: %s.\n", e.ActorName)
	}
	if e.TargetName != "" {
		fmt.Fprintf(&b, "Target: %s.\n", e.TargetName)
	}
	switch {
	case e.Weapon != "":
		fmt.Fprintf(&b, "Weapon: %s.\n", e.Weapon)
	case e.Spell != "":
		fmt.Fprintf(&b, "Spell: %s.\n", e.Spell)
	case e.Item != "":
		fmt.Fprintf(&b, "Item: %s.\n", e.Item)
	}
	if e.Roll > 0 {
		fmt.Fprintf(&b, "Attack roll: natural %d, total %d, hit: %t.\n", e.Roll, e.Total, e.Hit)
	}
	if e.CritSuccess {
		b.WriteString("The roll was a critical hit.\n")
	}
	if e.CritFailure {
		b.WriteString("The roll was a critical miss.\n")
	}
	if e.Damage > 0 {
		fmt.Fprintf(&b, "Damage dealt: %d.\n", e.Damage)
	}
	if e.Healing > 0 {
		fmt.Fprintf(&b, "Hit points restored: %d.\n", e.Healing)
	}
	if e.Status != "" {
		fmt.Fprintf(&b, "Condition applied: %s.\n", e.Status)
	}
	if e.Defeated {
		fmt.Fprintf(&b, "%s was defeated by this.\n", e.TargetName)
	}
	if e.Victor != "" {
		fmt.Fprintf(&b, "The %s won the encounter.\n", e.Victor)
	}
	b.WriteString("Narrate this in one or two vivid sentences. Do not change any number or outcome.")
	return b.String()
}
