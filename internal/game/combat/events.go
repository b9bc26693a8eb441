package combat

// EventType classifies a post-resolution combat event.
type EventType string

const (
	EventCombatStarted EventType = "combat_started"
	EventAttack        EventType = "attack"
	EventSpell         EventType = "spell"
	EventItemUse       EventType = "item_use"
	EventMovement      EventType = "movement"
	EventDodge         EventType = "dodge"
	EventDisengage     EventType = "disengage"
	EventTurnAdvanced  EventType = "turn_advanced"
	EventRoundStarted  EventType = "round_started"
	EventDefeat        EventType = "defeat"
	EventCombatEnded   EventType = "combat_ended"
)

// Event is the structured record of one resolved combat occurrence. The
// narration layer consumes these asynchronously; combat never blocks on it
// and the payload is plain data, never pre-rendered prose.
type Event struct {
	Type     EventType
	CombatID string
	Round    int

	ActorID    string
	ActorName  string
	TargetID   string
	TargetName string

	// Weapon, Spell, and Item carry the display name of what was used.
	Weapon string
	Spell  string
	Item   string

	// Roll is the kept natural d20; Total includes modifiers.
	Roll        int
	Total       int
	Hit         bool
	CritSuccess bool
	CritFailure bool

	Damage   int
	Healing  int
	Distance int
	Status   string

	// Defeated is true when this event dropped the target.
	Defeated bool
	// Victor is set on EventCombatEnded: "players", "hostiles", or "" on
	// abort. XP is the experience total for defeated hostiles.
	Victor string
	XP     int
}

// EventSink consumes combat events. Publish must not block: sinks that do
// real work buffer internally and drop when full.
type EventSink interface {
	Publish(Event)
}

// NopSink discards all events.
type NopSink struct{}

// Publish implements EventSink.
func (NopSink) Publish(Event) {}
