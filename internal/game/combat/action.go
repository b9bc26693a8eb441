package combat

// ActionType identifies what a combatant intends to do on their turn.
// The zero value (ActionUnknown) is intentionally invalid.
type ActionType int

const (
	ActionUnknown ActionType = iota
	ActionAttack
	ActionCast
	ActionUseItem
	ActionDodge
	ActionDisengage
	ActionMove
)

// String returns the human-readable name of the ActionType.
func (a ActionType) String() string {
	switch a {
	case ActionAttack:
		return "attack"
	case ActionCast:
		return "cast"
	case ActionUseItem:
		return "use item"
	case ActionDodge:
		return "dodge"
	case ActionDisengage:
		return "disengage"
	case ActionMove:
		return "move"
	default:
		return "unknown"
	}
}

// consumesAction reports whether the action spends the entry's main action.
// Movement spends the movement resource instead.
func (a ActionType) consumesAction() bool {
	switch a {
	case ActionAttack, ActionCast, ActionUseItem, ActionDodge, ActionDisengage:
		return true
	default:
		return false
	}
}
