// Package effect tracks temporary effects applied to combatants: healing and
// damage over time, buffs, and status tags, each with a remaining duration.
//
// Expiry is caller-driven. The ledger never ticks on its own; whichever loop
// advances game time calls TickRound (or Remove) when a duration elapses.
package effect

import (
	"github.com/google/uuid"
)

// Kind classifies what an active effect does.
type Kind int

const (
	// KindStatus marks a categorical status tag, e.g. "blessed".
	KindStatus Kind = iota
	// KindHealing restores hit points.
	KindHealing
	// KindDamage deals hit points of damage.
	KindDamage
)

// String returns the human-readable kind label.
func (k Kind) String() string {
	switch k {
	case KindStatus:
		return "status"
	case KindHealing:
		return "healing"
	case KindDamage:
		return "damage"
	default:
		return "unknown"
	}
}

// ActiveEffect is one temporary effect applied to a combatant.
type ActiveEffect struct {
	// ID uniquely identifies this application; assigned by the ledger.
	ID string
	// Source is the item or spell name that produced the effect.
	Source string
	// Kind classifies the effect.
	Kind Kind
	// Amount is the hit point magnitude for healing/damage kinds.
	Amount int
	// Status is the tag for KindStatus effects, e.g. "shield_of_faith".
	Status string
	// RoundsRemaining is the remaining duration in rounds; -1 = until removed.
	RoundsRemaining int
}

// Ledger tracks active effects per combatant id for one encounter.
// It is not safe for concurrent use; the combat manager serialises access.
type Ledger struct {
	byOwner map[string][]*ActiveEffect
}

// NewLedger creates an empty Ledger.
func NewLedger() *Ledger {
	return &Ledger{byOwner: make(map[string][]*ActiveEffect)}
}

// Add registers e against ownerID, assigning a fresh effect id.
//
// Precondition: ownerID must be non-empty.
// Postcondition: the returned effect has a non-empty ID and appears in
// ActiveFor(ownerID).
func (l *Ledger) Add(ownerID string, e ActiveEffect) *ActiveEffect {
	e.ID = uuid.NewString()
	stored := &e
	l.byOwner[ownerID] = append(l.byOwner[ownerID], stored)
	return stored
}

// ActiveFor returns the live effects for ownerID in application order.
// The slice is a fresh allocation; the pointed-to effects are shared.
func (l *Ledger) ActiveFor(ownerID string) []*ActiveEffect {
	effects := l.byOwner[ownerID]
	out := make([]*ActiveEffect, len(effects))
	copy(out, effects)
	return out
}

// HasStatus reports whether ownerID carries an active status effect with the
// given tag.
func (l *Ledger) HasStatus(ownerID, status string) bool {
	for _, e := range l.byOwner[ownerID] {
		if e.Kind == KindStatus && e.Status == status {
			return true
		}
	}
	return false
}

// Remove deletes the effect with effectID from ownerID's set.
//
// Postcondition: returns true iff the effect was present and is now gone.
func (l *Ledger) Remove(ownerID, effectID string) bool {
	effects := l.byOwner[ownerID]
	for i, e := range effects {
		if e.ID == effectID {
			l.byOwner[ownerID] = append(effects[:i], effects[i+1:]...)
			return true
		}
	}
	return false
}

// TickRound decrements the remaining duration of every finite effect on
// ownerID by one round and removes those that reach zero.
//
// Postcondition: returns the expired effects; none of them appear in
// ActiveFor(ownerID) afterwards. Effects with RoundsRemaining == -1 are
// untouched.
func (l *Ledger) TickRound(ownerID string) []*ActiveEffect {
	var expired []*ActiveEffect
	var kept []*ActiveEffect
	for _, e := range l.byOwner[ownerID] {
		if e.RoundsRemaining < 0 {
			kept = append(kept, e)
			continue
		}
		e.RoundsRemaining--
		if e.RoundsRemaining <= 0 {
			expired = append(expired, e)
			continue
		}
		kept = append(kept, e)
	}
	if len(kept) == 0 {
		delete(l.byOwner, ownerID)
	} else {
		l.byOwner[ownerID] = kept
	}
	return expired
}

// Clear drops every effect for ownerID, e.g. on defeat or encounter end.
func (l *Ledger) Clear(ownerID string) {
	delete(l.byOwner, ownerID)
}
