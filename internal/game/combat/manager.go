package combat

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/s76354m/dnd-ai-dm-sub001/internal/game/dice"
	"github.com/s76354m/dnd-ai-dm-sub001/internal/game/effect"
	"github.com/s76354m/dnd-ai-dm-sub001/internal/game/item"
	"github.com/s76354m/dnd-ai-dm-sub001/internal/game/spell"
)

// HookRunner evaluates the optional Lua hooks attached to item and spell
// definitions. A hook may adjust a rolled effect amount; hook failures must
// never corrupt combat state, so implementations return the original amount
// alongside the error.
type HookRunner interface {
	AdjustAmount(script string, amount int) (int, error)
}

// Config holds the Manager's dependencies. Catalogs are required; everything
// else has a working default.
type Config struct {
	Items  *item.Catalog
	Spells *spell.Catalog
	// Effects is the temporary-effect ledger; defaults to a fresh one.
	Effects *effect.Ledger
	// Source is the randomness provider; defaults to crypto/rand.
	Source dice.Source
	Logger *zap.Logger
	// Events receives post-resolution events; defaults to NopSink.
	Events EventSink
	// Hooks runs item/spell Lua hooks; nil disables them.
	Hooks HookRunner

	// CritSuccessAt / CritFailureAt override the d20 critical thresholds.
	// Zero means the dice package defaults (20 and 1).
	CritSuccessAt int
	CritFailureAt int
	// UnarmedDice is the damage notation for unarmed attacks; defaults to
	// "1d4". Kept configurable because the rules source for improvised
	// damage varies by table.
	UnarmedDice string
}

// Validate checks required dependencies.
func (c *Config) Validate() error {
	var errs []error
	if c.Items == nil {
		errs = append(errs, errors.New("Items catalog is required"))
	}
	if c.Spells == nil {
		errs = append(errs, errors.New("Spells catalog is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("combat manager config: %v", errs)
	}
	return nil
}

// Manager owns the single CombatState for an encounter and is the only
// component that mutates it. All methods are synchronous; an action is
// processed to completion before the next one is accepted.
type Manager struct {
	items   *item.Catalog
	spells  *spell.Catalog
	effects *effect.Ledger
	src     dice.Source
	logger  *zap.Logger
	events  EventSink
	hooks   HookRunner

	critSuccessAt int
	critFailureAt int
	unarmedDice   dice.Notation

	state *CombatState
}

// NewManager creates a Manager from cfg, applying defaults.
//
// Postcondition: returns a ready Manager or a config error.
func NewManager(cfg Config) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Effects == nil {
		cfg.Effects = effect.NewLedger()
	}
	if cfg.Source == nil {
		cfg.Source = dice.NewCryptoSource()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Events == nil {
		cfg.Events = NopSink{}
	}
	if cfg.UnarmedDice == "" {
		cfg.UnarmedDice = "1d4"
	}
	unarmed, err := dice.Parse(cfg.UnarmedDice)
	if err != nil {
		return nil, fmt.Errorf("combat manager config: unarmed dice: %w", err)
	}

	return &Manager{
		items:         cfg.Items,
		spells:        cfg.Spells,
		effects:       cfg.Effects,
		src:           cfg.Source,
		logger:        cfg.Logger,
		events:        cfg.Events,
		hooks:         cfg.Hooks,
		critSuccessAt: cfg.CritSuccessAt,
		critFailureAt: cfg.CritFailureAt,
		unarmedDice:   unarmed,
	}, nil
}

// State returns the current encounter state, or nil before InitiateCombat.
func (m *Manager) State() *CombatState { return m.state }

// Effects returns the manager's effect ledger.
func (m *Manager) Effects() *effect.Ledger { return m.effects }

// Rejection is the structured refusal of an invalid action. The state is
// guaranteed unchanged when a report carries a non-nil Rejection.
type Rejection struct {
	Code   RejectCode
	Reason string
}

func rejectionFrom(r Result) *Rejection {
	return &Rejection{Code: r.Code, Reason: r.Reason}
}

// EncounterOptions configures a new encounter.
type EncounterOptions struct {
	LocationID      string
	PlayerInitiated bool
}

// InitiateCombat builds the initiative order for participants and activates
// the encounter: initiative rolled per combatant (d20 + Dex modifier), ties
// broken by Dex modifier then submission order, status Active, round 1, turn
// index 0.
//
// Precondition: at least two participants with unique, non-empty ids, all
// above zero hit points; no encounter already active on this Manager.
// Postcondition: State() is Active and CurrentEntry() is the highest roller.
func (m *Manager) InitiateCombat(participants []*Combatant, opts EncounterOptions) (*CombatState, error) {
	if m.state != nil && m.state.Status == StatusActive {
		return nil, fmt.Errorf("combat %s is already active", m.state.ID)
	}
	if len(participants) < 2 {
		return nil, fmt.Errorf("combat requires at least 2 participants, got %d", len(participants))
	}
	seen := make(map[string]bool, len(participants))
	entries := make([]*InitiativeEntry, 0, len(participants))
	for i, c := range participants {
		if c == nil || c.ID == "" {
			return nil, fmt.Errorf("participant %d has no id", i)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("duplicate participant id %q", c.ID)
		}
		if c.CurrentHP <= 0 {
			return nil, fmt.Errorf("participant %q has no hit points", c.ID)
		}
		seen[c.ID] = true
		entries = append(entries, newEntry(c, i))
	}

	rollInitiative(entries, m.src)
	sortByInitiative(entries)

	state := &CombatState{
		ID:              uuid.NewString(),
		Status:          StatusActive,
		Round:           1,
		Entries:         entries,
		LocationID:      opts.LocationID,
		PlayerInitiated: opts.PlayerInitiated,
	}
	m.state = state

	state.AppendLog("Combat begins!")
	for _, e := range entries {
		state.AppendLog(fmt.Sprintf("%s rolls initiative: %d", e.Combatant.Name, e.Initiative))
	}
	state.AppendLog(fmt.Sprintf("Round 1: %s acts first.", entries[0].Combatant.Name))

	m.logger.Info("combat initiated",
		zap.String("combat_id", state.ID),
		zap.String("location", opts.LocationID),
		zap.Int("participants", len(entries)),
		zap.Bool("player_initiated", opts.PlayerInitiated),
	)
	m.events.Publish(Event{
		Type:      EventCombatStarted,
		CombatID:  state.ID,
		Round:     1,
		ActorID:   entries[0].Combatant.ID,
		ActorName: entries[0].Combatant.Name,
	})
	return state, nil
}

// AttackReport is the outcome of ResolveAttack.
type AttackReport struct {
	Rejection *Rejection

	AttackerID string
	TargetID   string
	Weapon     string // display name; empty for unarmed
	Check      dice.CheckResult
	Hit        bool
	// DamageRolls holds the individual damage die results on a hit.
	DamageRolls    []int
	Damage         int
	TargetHP       int
	TargetDefeated bool
	EncounterOver  bool
}

// ResolveAttack validates and resolves an attack: a d20 check against the
// target's armor class, then weapon (or unarmed) damage on a hit, clamped at
// zero hit points. A target dropped to zero gains the defeated condition and
// loses all four resource flags for the rest of the encounter.
//
// Postcondition: on rejection, no state change; otherwise the attacker's
// action is spent and the combat log has grown.
func (m *Manager) ResolveAttack(attackerID, targetID, weaponName string) (*AttackReport, error) {
	tr := ValidateParticipantTurn(attackerID, m.state)
	if !tr.Valid {
		return &AttackReport{Rejection: rejectionFrom(tr)}, nil
	}
	attacker := tr.Entry

	dr := ValidateTarget(targetID, m.state)
	if !dr.Valid {
		return &AttackReport{Rejection: rejectionFrom(dr)}, nil
	}
	target := dr.Entry

	var weapon *item.Def
	if weaponName != "" {
		def, ok := m.items.Get(weaponName)
		if !ok {
			def, ok = m.items.GetByName(weaponName)
		}
		if !ok {
			return &AttackReport{Rejection: &Rejection{
				Code:   RejectUnknownName,
				Reason: fmt.Sprintf("there is no weapon called %s", weaponName),
			}}, nil
		}
		if !def.IsWeapon() {
			return &AttackReport{Rejection: &Rejection{
				Code:   RejectItemNotUsable,
				Reason: fmt.Sprintf("%s is not a weapon", def.Name),
			}}, nil
		}
		weapon = def
	}

	if vr := ValidateAttack(attacker, target, weapon); !vr.Valid {
		return &AttackReport{Rejection: rejectionFrom(vr)}, nil
	}

	atk := attacker.Combatant
	def := target.Combatant

	ability := Strength
	if weapon != nil && weapon.HasProperty("finesse") && atk.AbilityModifier(Dexterity) > atk.AbilityModifier(Strength) {
		ability = Dexterity
	}
	check := dice.D20Check(m.src, atk.AbilityModifier(ability), atk.ProficiencyBonus(), dice.CheckOptions{
		Disadvantage:  target.HasCondition(ConditionDodging),
		CritSuccessAt: m.critSuccessAt,
		CritFailureAt: m.critFailureAt,
	})
	hit := !check.CritFailure && (check.CritSuccess || check.Meets(def.ArmorClass))

	attacker.HasAction = false

	report := &AttackReport{
		AttackerID: atk.ID,
		TargetID:   def.ID,
		Check:      check,
		Hit:        hit,
	}
	weaponLabel := "unarmed strike"
	if weapon != nil {
		report.Weapon = weapon.Name
		weaponLabel = weapon.Name
	}

	if hit {
		notation := m.unarmedDice
		if weapon != nil {
			parsed, err := dice.Parse(weapon.DamageDice)
			if err != nil {
				return nil, fmt.Errorf("weapon %q has malformed damage dice: %w", weapon.ID, err)
			}
			notation = parsed
		}
		count := notation.Count
		if check.CritSuccess {
			count *= 2 // critical hits double the damage dice, not the modifiers
		}
		rolls, err := dice.RollMultiple(m.src, count, notation.Sides, dice.DefaultLimits())
		if err != nil {
			return nil, fmt.Errorf("rolling damage for %s: %w", weaponLabel, err)
		}
		damage := notation.Modifier + atk.AbilityModifier(ability)
		for _, r := range rolls {
			damage += r
		}
		if damage < 0 {
			damage = 0
		}
		report.DamageRolls = rolls
		report.Damage = damage

		def.ApplyDamage(damage)
		report.TargetHP = def.CurrentHP

		m.state.AppendLog(fmt.Sprintf("%s hits %s with %s for %d damage (%d vs AC %d).",
			atk.Name, def.Name, weaponLabel, damage, check.Total, def.ArmorClass))

		if def.CurrentHP == 0 {
			m.defeat(target)
			report.TargetDefeated = true
		}
	} else {
		report.TargetHP = def.CurrentHP
		m.state.AppendLog(fmt.Sprintf("%s misses %s with %s (%d vs AC %d).",
			atk.Name, def.Name, weaponLabel, check.Total, def.ArmorClass))
	}

	m.logger.Debug("attack resolved",
		zap.String("combat_id", m.state.ID),
		zap.String("attacker", atk.ID),
		zap.String("target", def.ID),
		zap.String("weapon", weaponLabel),
		zap.Bool("hit", hit),
		zap.Int("damage", report.Damage),
	)
	m.events.Publish(Event{
		Type:        EventAttack,
		CombatID:    m.state.ID,
		Round:       m.state.Round,
		ActorID:     atk.ID,
		ActorName:   atk.Name,
		TargetID:    def.ID,
		TargetName:  def.Name,
		Weapon:      report.Weapon,
		Roll:        check.Kept,
		Total:       check.Total,
		Hit:         hit,
		CritSuccess: check.CritSuccess,
		CritFailure: check.CritFailure,
		Damage:      report.Damage,
		Defeated:    report.TargetDefeated,
	})

	report.EncounterOver = m.CheckEncounterEnd()
	return report, nil
}

// SpellTargetResult records the resolution of one spell target.
type SpellTargetResult struct {
	TargetID string
	// Check is the spell attack roll, or the target's saving throw when the
	// spell allows one.
	Check dice.CheckResult
	// Saved is true when the target made its saving throw (half damage).
	Saved          bool
	Hit            bool
	Damage         int
	Healing        int
	Status         string
	TargetHP       int
	TargetDefeated bool
}

// SpellReport is the outcome of ResolveSpell.
type SpellReport struct {
	Rejection *Rejection

	CasterID      string
	Spell         string
	Level         int
	SaveDC        int
	Targets       []SpellTargetResult
	EncounterOver bool
}

// ResolveSpell validates and resolves a spell cast against one or more
// targets. Damage spells either force a saving throw (half damage on a
// save) or use a spell attack roll against armor class; healing spells
// restore hit points; status spells register a timed effect in the ledger
// and tag the target's entry.
func (m *Manager) ResolveSpell(casterID, spellName string, level int, targetIDs []string) (*SpellReport, error) {
	tr := ValidateParticipantTurn(casterID, m.state)
	if !tr.Valid {
		return &SpellReport{Rejection: rejectionFrom(tr)}, nil
	}
	caster := tr.Entry

	def, ok := m.spells.Get(spellName)
	if !ok {
		def, ok = m.spells.GetByName(spellName)
	}
	if !ok {
		return &SpellReport{Rejection: &Rejection{
			Code:   RejectUnknownName,
			Reason: fmt.Sprintf("no spell called %s exists", spellName),
		}}, nil
	}

	if vr := ValidateSpell(caster, def, level, targetIDs, m.state); !vr.Valid {
		return &SpellReport{Rejection: rejectionFrom(vr)}, nil
	}

	cst := caster.Combatant
	castMod := m.spellcastingModifier(cst)
	saveDC := 8 + cst.ProficiencyBonus() + castMod

	caster.HasAction = false

	report := &SpellReport{
		CasterID: cst.ID,
		Spell:    def.Name,
		Level:    level,
		SaveDC:   saveDC,
	}
	m.state.AppendLog(fmt.Sprintf("%s casts %s (level %d).", cst.Name, def.Name, level))

	for _, targetID := range targetIDs {
		target := m.state.EntryFor(targetID)
		tgt := target.Combatant
		result := SpellTargetResult{TargetID: tgt.ID, Hit: true}

		rollSave := func() {
			saveAbility, _ := ParseAbility(def.SaveAbility)
			result.Check = dice.D20Check(m.src, tgt.AbilityModifier(saveAbility), 0, dice.CheckOptions{
				CritSuccessAt: m.critSuccessAt,
				CritFailureAt: m.critFailureAt,
			})
			result.Saved = result.Check.Meets(saveDC)
		}
		rollSpellAttack := func() {
			result.Check = dice.D20Check(m.src, castMod, cst.ProficiencyBonus(), dice.CheckOptions{
				Disadvantage:  target.HasCondition(ConditionDodging),
				CritSuccessAt: m.critSuccessAt,
				CritFailureAt: m.critFailureAt,
			})
			result.Hit = !result.Check.CritFailure && (result.Check.CritSuccess || result.Check.Meets(tgt.ArmorClass))
		}

		if def.DamageDice != "" {
			damage, err := m.rollAmount(def.DamageDice, def.OnCast)
			if err != nil {
				return nil, fmt.Errorf("rolling damage for %s: %w", def.Name, err)
			}
			if def.SaveAbility != "" {
				rollSave()
				if result.Saved {
					damage /= 2
				}
			} else {
				rollSpellAttack()
				if !result.Hit {
					damage = 0
				}
			}
			result.Damage = damage
			tgt.ApplyDamage(damage)
			if result.Saved {
				m.state.AppendLog(fmt.Sprintf("%s saves against %s and takes %d damage.", tgt.Name, def.Name, damage))
			} else if result.Hit {
				m.state.AppendLog(fmt.Sprintf("%s takes %d damage from %s.", tgt.Name, damage, def.Name))
			} else {
				m.state.AppendLog(fmt.Sprintf("%s evades %s.", tgt.Name, def.Name))
			}
		} else if def.Status != "" {
			// A status spell with no damage still has to land: a declared
			// save gates it, otherwise a spell attack does.
			if def.SaveAbility != "" {
				rollSave()
				if result.Saved {
					m.state.AppendLog(fmt.Sprintf("%s saves against %s.", tgt.Name, def.Name))
				}
			} else {
				rollSpellAttack()
				if !result.Hit {
					m.state.AppendLog(fmt.Sprintf("%s evades %s.", tgt.Name, def.Name))
				}
			}
		}

		if def.HealDice != "" {
			healing, err := m.rollAmount(def.HealDice, def.OnCast)
			if err != nil {
				return nil, fmt.Errorf("rolling healing for %s: %w", def.Name, err)
			}
			tgt.Heal(healing)
			result.Healing = healing
			m.state.AppendLog(fmt.Sprintf("%s regains %d hit points from %s.", tgt.Name, healing, def.Name))
		}

		if def.Status != "" && result.Hit && !result.Saved && !target.Defeated() {
			m.effects.Add(tgt.ID, effect.ActiveEffect{
				Source:          def.Name,
				Kind:            effect.KindStatus,
				Status:          def.Status,
				RoundsRemaining: def.StatusRounds,
			})
			target.AddCondition(def.Status)
			result.Status = def.Status
			m.state.AppendLog(fmt.Sprintf("%s is %s.", tgt.Name, def.Status))
		}

		result.TargetHP = tgt.CurrentHP
		if tgt.CurrentHP == 0 && !target.Defeated() {
			m.defeat(target)
			result.TargetDefeated = true
		}
		report.Targets = append(report.Targets, result)

		m.events.Publish(Event{
			Type:        EventSpell,
			CombatID:    m.state.ID,
			Round:       m.state.Round,
			ActorID:     cst.ID,
			ActorName:   cst.Name,
			TargetID:    tgt.ID,
			TargetName:  tgt.Name,
			Spell:       def.Name,
			Roll:        result.Check.Kept,
			Total:       result.Check.Total,
			Hit:         result.Hit && !result.Saved,
			CritSuccess: result.Check.CritSuccess,
			CritFailure: result.Check.CritFailure,
			Damage:      result.Damage,
			Healing:     result.Healing,
			Status:      result.Status,
			Defeated:    result.TargetDefeated,
		})
	}

	m.logger.Debug("spell resolved",
		zap.String("combat_id", m.state.ID),
		zap.String("caster", cst.ID),
		zap.String("spell", def.Name),
		zap.Int("level", level),
		zap.Int("targets", len(targetIDs)),
	)

	report.EncounterOver = m.CheckEncounterEnd()
	return report, nil
}

// ItemReport is the outcome of ResolveItemUse.
type ItemReport struct {
	Rejection *Rejection

	UserID         string
	Item           string
	TargetID       string
	Rolls          []int
	Healing        int
	Damage         int
	TargetHP       int
	TargetDefeated bool
	// Consumed is true when the item was expended from the inventory.
	Consumed      bool
	EncounterOver bool
}

// ResolveItemUse validates and resolves using an item as a combat action.
// Healing items restore hit points (self when no target is named); damaging
// items apply their dice directly. Consumables are expended on use.
func (m *Manager) ResolveItemUse(userID, itemName, targetID string) (*ItemReport, error) {
	tr := ValidateParticipantTurn(userID, m.state)
	if !tr.Valid {
		return &ItemReport{Rejection: rejectionFrom(tr)}, nil
	}
	user := tr.Entry

	def, ok := m.items.Get(itemName)
	if !ok {
		def, ok = m.items.GetByName(itemName)
	}
	if !ok {
		return &ItemReport{Rejection: &Rejection{
			Code:   RejectUnknownName,
			Reason: fmt.Sprintf("there is no item called %s", itemName),
		}}, nil
	}

	if vr := ValidateItem(user, def, targetID, m.state); !vr.Valid {
		return &ItemReport{Rejection: rejectionFrom(vr)}, nil
	}

	target := user
	if targetID != "" {
		target = m.state.EntryFor(targetID)
	}
	tgt := target.Combatant

	user.HasAction = false

	report := &ItemReport{
		UserID:   user.Combatant.ID,
		Item:     def.Name,
		TargetID: tgt.ID,
	}

	if def.HealDice != "" {
		result, err := dice.Roll(m.src, def.HealDice)
		if err != nil {
			return nil, fmt.Errorf("rolling healing for %s: %w", def.Name, err)
		}
		healing := m.adjust(def.OnUse, result.Total())
		tgt.Heal(healing)
		report.Rolls = result.Dice
		report.Healing = healing
		m.state.AppendLog(fmt.Sprintf("%s uses %s: %s regains %d hit points.",
			user.Combatant.Name, def.Name, tgt.Name, healing))
	}

	if def.DamageDice != "" {
		result, err := dice.Roll(m.src, def.DamageDice)
		if err != nil {
			return nil, fmt.Errorf("rolling damage for %s: %w", def.Name, err)
		}
		damage := m.adjust(def.OnUse, result.Total())
		tgt.ApplyDamage(damage)
		report.Rolls = append(report.Rolls, result.Dice...)
		report.Damage = damage
		m.state.AppendLog(fmt.Sprintf("%s uses %s on %s for %d damage.",
			user.Combatant.Name, def.Name, tgt.Name, damage))
	}

	if def.Kind == item.KindConsumable {
		report.Consumed = user.Combatant.RemoveFromInventory(def.ID)
	}

	report.TargetHP = tgt.CurrentHP
	if tgt.CurrentHP == 0 && !target.Defeated() {
		m.defeat(target)
		report.TargetDefeated = true
	}

	m.logger.Debug("item use resolved",
		zap.String("combat_id", m.state.ID),
		zap.String("user", user.Combatant.ID),
		zap.String("item", def.ID),
		zap.Int("healing", report.Healing),
		zap.Int("damage", report.Damage),
	)
	m.events.Publish(Event{
		Type:       EventItemUse,
		CombatID:   m.state.ID,
		Round:      m.state.Round,
		ActorID:    user.Combatant.ID,
		ActorName:  user.Combatant.Name,
		TargetID:   tgt.ID,
		TargetName: tgt.Name,
		Item:       def.Name,
		Damage:     report.Damage,
		Healing:    report.Healing,
		Defeated:   report.TargetDefeated,
	})

	report.EncounterOver = m.CheckEncounterEnd()
	return report, nil
}

// SimpleReport is the outcome of Dodge, Disengage, and Move.
type SimpleReport struct {
	Rejection *Rejection

	ActorID  string
	Action   ActionType
	Distance int
}

// Dodge spends the actor's action; attacks against them have disadvantage
// until the start of their next turn.
func (m *Manager) Dodge(actorID string) (*SimpleReport, error) {
	return m.simpleAction(actorID, ActionDodge, ConditionDodging, EventDodge)
}

// Disengage spends the actor's action; they withdraw from melee until the
// start of their next turn.
func (m *Manager) Disengage(actorID string) (*SimpleReport, error) {
	return m.simpleAction(actorID, ActionDisengage, ConditionDisengaged, EventDisengage)
}

func (m *Manager) simpleAction(actorID string, action ActionType, condition string, eventType EventType) (*SimpleReport, error) {
	tr := ValidateParticipantTurn(actorID, m.state)
	if !tr.Valid {
		return &SimpleReport{Rejection: rejectionFrom(tr)}, nil
	}
	actor := tr.Entry
	if vr := ValidateAction(actor, action); !vr.Valid {
		return &SimpleReport{Rejection: rejectionFrom(vr)}, nil
	}

	actor.HasAction = false
	actor.AddCondition(condition)
	m.state.AppendLog(fmt.Sprintf("%s takes the %s action.", actor.Combatant.Name, action))
	m.events.Publish(Event{
		Type:      eventType,
		CombatID:  m.state.ID,
		Round:     m.state.Round,
		ActorID:   actor.Combatant.ID,
		ActorName: actor.Combatant.Name,
	})
	return &SimpleReport{ActorID: actor.Combatant.ID, Action: action}, nil
}

// Move spends the actor's movement on a move of the given distance in feet.
func (m *Manager) Move(actorID string, distance int) (*SimpleReport, error) {
	tr := ValidateParticipantTurn(actorID, m.state)
	if !tr.Valid {
		return &SimpleReport{Rejection: rejectionFrom(tr)}, nil
	}
	actor := tr.Entry
	if vr := ValidateMovement(actor, distance); !vr.Valid {
		return &SimpleReport{Rejection: rejectionFrom(vr)}, nil
	}

	actor.HasMovement = false
	m.state.AppendLog(fmt.Sprintf("%s moves %d feet.", actor.Combatant.Name, distance))
	m.events.Publish(Event{
		Type:      EventMovement,
		CombatID:  m.state.ID,
		Round:     m.state.Round,
		ActorID:   actor.Combatant.ID,
		ActorName: actor.Combatant.Name,
		Distance:  distance,
	})
	return &SimpleReport{ActorID: actor.Combatant.ID, Action: ActionMove, Distance: distance}, nil
}

// TurnReport is the outcome of AdvanceTurn.
type TurnReport struct {
	Rejection *Rejection

	Round int
	// NewRound is true when the advance wrapped past the last entry.
	NewRound bool
	// ActiveID is the combatant whose turn has started.
	ActiveID string
}

// AdvanceTurn moves to the next non-defeated entry in initiative order,
// resetting that entry's per-turn resource flags. Wrapping past the last
// entry increments the round, applies per-round effects (damage/healing over
// time), and ticks effect durations.
//
// Postcondition: the current entry is non-defeated, or an InvalidStateError
// is returned when no living entry exists while the encounter is Active.
func (m *Manager) AdvanceTurn() (*TurnReport, error) {
	if r := ValidateActiveCombat(m.state); !r.Valid {
		return &TurnReport{Rejection: rejectionFrom(r)}, nil
	}
	state := m.state
	n := len(state.Entries)
	if state.turnIndex < 0 || state.turnIndex >= n {
		return nil, &InvalidStateError{CombatID: state.ID, Detail: fmt.Sprintf("turn index %d out of range [0, %d)", state.turnIndex, n)}
	}
	if state.livingCount() == 0 {
		return nil, &InvalidStateError{CombatID: state.ID, Detail: "no living entries in an active encounter"}
	}

	next := -1
	wrapped := false
	for k := 1; k <= n; k++ {
		idx := (state.turnIndex + k) % n
		if !state.Entries[idx].Defeated() {
			next = idx
			wrapped = state.turnIndex+k >= n
			break
		}
	}
	if next < 0 {
		return nil, &InvalidStateError{CombatID: state.ID, Detail: "no living entry to advance to"}
	}

	if wrapped {
		state.Round++
		state.AppendLog(fmt.Sprintf("Round %d begins.", state.Round))
		m.tickEffects()
		m.events.Publish(Event{
			Type:     EventRoundStarted,
			CombatID: state.ID,
			Round:    state.Round,
		})
		if over := m.CheckEncounterEnd(); over {
			return &TurnReport{Round: state.Round, NewRound: true}, nil
		}
	}

	state.turnIndex = next
	entry := state.Entries[next]
	entry.beginTurn()
	state.AppendLog(fmt.Sprintf("It is %s's turn.", entry.Combatant.Name))

	m.events.Publish(Event{
		Type:      EventTurnAdvanced,
		CombatID:  state.ID,
		Round:     state.Round,
		ActorID:   entry.Combatant.ID,
		ActorName: entry.Combatant.Name,
	})
	return &TurnReport{Round: state.Round, NewRound: wrapped, ActiveID: entry.Combatant.ID}, nil
}

// tickEffects applies per-round effect amounts and counts down durations for
// every entry at the start of a round, removing expired status tags.
func (m *Manager) tickEffects() {
	for _, entry := range m.state.Entries {
		if entry.Defeated() {
			continue
		}
		c := entry.Combatant
		for _, e := range m.effects.ActiveFor(c.ID) {
			switch e.Kind {
			case effect.KindDamage:
				c.ApplyDamage(e.Amount)
				m.state.AppendLog(fmt.Sprintf("%s takes %d damage from %s.", c.Name, e.Amount, e.Source))
			case effect.KindHealing:
				c.Heal(e.Amount)
				m.state.AppendLog(fmt.Sprintf("%s regains %d hit points from %s.", c.Name, e.Amount, e.Source))
			}
		}
		for _, expired := range m.effects.TickRound(c.ID) {
			if expired.Kind == effect.KindStatus {
				entry.RemoveCondition(expired.Status)
			}
			m.state.AppendLog(fmt.Sprintf("%s on %s wears off.", expired.Source, c.Name))
		}
		if c.CurrentHP == 0 {
			m.defeat(entry)
		}
		entry.Effects = m.effects.ActiveFor(c.ID)
	}
}

// defeat marks the entry defeated: the condition is permanent, all four
// resource flags stay false, and its active effects are dropped.
func (m *Manager) defeat(entry *InitiativeEntry) {
	entry.markDefeated()
	m.effects.Clear(entry.Combatant.ID)
	entry.Effects = nil
	m.state.AppendLog(fmt.Sprintf("%s is defeated!", entry.Combatant.Name))
	m.logger.Info("combatant defeated",
		zap.String("combat_id", m.state.ID),
		zap.String("combatant", entry.Combatant.ID),
	)
	m.events.Publish(Event{
		Type:       EventDefeat,
		CombatID:   m.state.ID,
		Round:      m.state.Round,
		TargetID:   entry.Combatant.ID,
		TargetName: entry.Combatant.Name,
		Defeated:   true,
	})
}

// CheckEncounterEnd completes the encounter when every player-side entry or
// every hostile entry is defeated. Experience for defeated hostiles is
// tallied once, on a player victory.
//
// Postcondition: returns true iff Status is now (or already was) Completed.
func (m *Manager) CheckEncounterEnd() bool {
	state := m.state
	if state == nil {
		return false
	}
	if state.Status == StatusCompleted {
		return true
	}
	if state.Status != StatusActive {
		return false
	}

	players := state.PlayersStanding()
	hostiles := state.HostilesStanding()
	if players && hostiles {
		return false
	}

	state.Status = StatusCompleted
	victor := "players"
	xp := 0
	if !players {
		victor = "hostiles"
	} else {
		for _, e := range state.Entries {
			if !e.IsPlayer && e.Defeated() {
				xp += e.Combatant.XPValue
			}
		}
		state.XPAwarded = true
	}
	state.AppendLog(fmt.Sprintf("Combat is over: the %s prevail.", victor))
	if xp > 0 {
		state.AppendLog(fmt.Sprintf("The party earns %d experience.", xp))
	}

	m.logger.Info("combat completed",
		zap.String("combat_id", state.ID),
		zap.String("victor", victor),
		zap.Int("rounds", state.Round),
		zap.Int("xp", xp),
	)
	m.events.Publish(Event{
		Type:     EventCombatEnded,
		CombatID: state.ID,
		Round:    state.Round,
		Victor:   victor,
		XP:       xp,
	})
	return true
}

// Abort terminates the encounter without a victor (flee / disengage-all).
// Aborting is a terminal state transition, not a cancellation of an
// in-flight action.
func (m *Manager) Abort(reason string) error {
	if r := ValidateActiveCombat(m.state); !r.Valid {
		return errors.New(r.Reason)
	}
	m.state.Status = StatusAborted
	if reason == "" {
		reason = "the combatants scatter"
	}
	m.state.AppendLog(fmt.Sprintf("Combat ends: %s.", reason))
	m.logger.Info("combat aborted",
		zap.String("combat_id", m.state.ID),
		zap.String("reason", reason),
	)
	m.events.Publish(Event{
		Type:     EventCombatEnded,
		CombatID: m.state.ID,
		Round:    m.state.Round,
	})
	return nil
}

// spellcastingModifier returns the best mental ability modifier; the
// snapshot does not record class, so the engine assumes casters use their
// strongest casting stat.
func (m *Manager) spellcastingModifier(c *Combatant) int {
	best := c.AbilityModifier(Intelligence)
	if w := c.AbilityModifier(Wisdom); w > best {
		best = w
	}
	if ch := c.AbilityModifier(Charisma); ch > best {
		best = ch
	}
	return best
}

// rollAmount rolls notation and passes the total through the optional hook.
func (m *Manager) rollAmount(notation, hook string) (int, error) {
	result, err := dice.Roll(m.src, notation)
	if err != nil {
		return 0, err
	}
	return m.adjust(hook, result.Total()), nil
}

// adjust runs the Lua hook over amount when hooks are configured. Hook
// errors are logged and the unadjusted amount is kept.
func (m *Manager) adjust(hook string, amount int) int {
	if hook == "" || m.hooks == nil {
		return amount
	}
	adjusted, err := m.hooks.AdjustAmount(hook, amount)
	if err != nil {
		m.logger.Warn("effect hook failed", zap.Error(err))
		return amount
	}
	return adjusted
}
