package command

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/s76354m/dnd-ai-dm-sub001/internal/game/combat"
	"github.com/s76354m/dnd-ai-dm-sub001/internal/game/spell"
)

// ErrQuit signals that the player asked to leave. The caller owns shutdown.
var ErrQuit = fmt.Errorf("quit requested")

// Dispatcher turns parsed player input into encounter actions and renders
// the outcome as player-facing text. Rejections from the combat manager are
// surfaced verbatim; errors are fatal (dice problems, corrupted state).
type Dispatcher struct {
	manager  *combat.Manager
	spells   *spell.Catalog
	registry *Registry
	logger   *zap.Logger
}

// NewDispatcher creates a Dispatcher over manager using the built-in
// command set.
//
// Precondition: manager and spells must be non-nil.
func NewDispatcher(manager *combat.Manager, spells *spell.Catalog, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		manager:  manager,
		spells:   spells,
		registry: DefaultRegistry(),
		logger:   logger,
	}
}

// Dispatch parses line and executes it as actorID. The returned string is
// the response to show the player.
//
// Postcondition: Returns ErrQuit for the quit command; any other error is
// fatal and the encounter should be considered unusable.
func (d *Dispatcher) Dispatch(actorID, line string) (string, error) {
	parsed := Parse(line)
	if parsed.Command == "" {
		return "", nil
	}

	cmd, ok := d.registry.Resolve(parsed.Command)
	if !ok {
		return fmt.Sprintf("Unknown command %q. Type 'help' for a list.", parsed.Command), nil
	}

	d.logger.Debug("dispatching command",
		zap.String("actor", actorID),
		zap.String("command", cmd.Name),
		zap.Strings("args", parsed.Args))

	switch cmd.Handler {
	case HandlerAttack:
		return d.attack(actorID, parsed.Args)
	case HandlerCast:
		return d.cast(actorID, parsed.Args)
	case HandlerUse:
		return d.useItem(actorID, parsed.Args)
	case HandlerMove:
		return d.move(actorID, parsed.Args)
	case HandlerDodge:
		report, err := d.manager.Dodge(actorID)
		return d.simpleOutcome(report, "You brace yourself and dodge.", err)
	case HandlerDisengage:
		report, err := d.manager.Disengage(actorID)
		return d.simpleOutcome(report, "You disengage and withdraw safely.", err)
	case HandlerPass:
		return d.pass()
	case HandlerStatus:
		return d.status(actorID)
	case HandlerLook:
		return d.look()
	case HandlerLog:
		return d.combatLog()
	case HandlerHelp:
		return d.help(), nil
	case HandlerQuit:
		return "", ErrQuit
	default:
		return "", fmt.Errorf("command %q has no handler %q", cmd.Name, cmd.Handler)
	}
}

// attack handles: attack <target> [with <weapon>].
func (d *Dispatcher) attack(actorID string, args []string) (string, error) {
	targetName, weapon, _ := splitKeyword(args, "with")
	if targetName == "" {
		return "Attack whom? (attack <target> [with <weapon>])", nil
	}
	targetID, reply := d.resolveTarget(targetName)
	if reply != "" {
		return reply, nil
	}

	report, err := d.manager.ResolveAttack(actorID, targetID, weapon)
	if err != nil {
		return "", err
	}
	if report.Rejection != nil {
		return report.Rejection.Reason, nil
	}

	target := d.combatantName(report.TargetID)
	var b strings.Builder
	if !report.Hit {
		fmt.Fprintf(&b, "You miss %s (rolled %d against AC).", target, report.Check.Total)
	} else {
		verb := "hit"
		if report.Check.CritSuccess {
			verb = "critically hit"
		}
		with := "an unarmed strike"
		if report.Weapon != "" {
			with = report.Weapon
		}
		fmt.Fprintf(&b, "You %s %s with %s for %d damage.", verb, target, with, report.Damage)
		if report.TargetDefeated {
			fmt.Fprintf(&b, " %s is defeated!", target)
		}
	}
	if report.EncounterOver {
		b.WriteString("\n" + d.outcomeLine())
	}
	return b.String(), nil
}

// cast handles: cast <spell> [<level>] at <target>[, <target>...].
func (d *Dispatcher) cast(actorID string, args []string) (string, error) {
	spellWords, targetPart, hasAt := splitKeyword(args, "at")
	if spellWords == "" {
		return "Cast what? (cast <spell> [<level>] at <target>)", nil
	}

	// A trailing number on the spell phrase is an explicit slot level.
	level := -1
	words := strings.Fields(spellWords)
	if n, err := strconv.Atoi(words[len(words)-1]); err == nil && len(words) > 1 {
		level = n
		words = words[:len(words)-1]
	}
	spellName := strings.Join(words, " ")

	// Default to the spell's own level when the player names a known spell
	// without a slot. Unknown names fall through so the manager rejects them
	// with its own wording.
	if level < 0 {
		def, ok := d.spells.Get(spellName)
		if !ok {
			def, ok = d.spells.GetByName(spellName)
		}
		if ok {
			level = def.Level
		} else {
			level = 0
		}
	}

	var targetIDs []string
	if hasAt {
		for _, part := range strings.Split(targetPart, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, reply := d.resolveTarget(part)
			if reply != "" {
				return reply, nil
			}
			targetIDs = append(targetIDs, id)
		}
	}

	report, err := d.manager.ResolveSpell(actorID, spellName, level, targetIDs)
	if err != nil {
		return "", err
	}
	if report.Rejection != nil {
		return report.Rejection.Reason, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You cast %s at level %d.", report.Spell, report.Level)
	for _, tr := range report.Targets {
		name := d.combatantName(tr.TargetID)
		switch {
		case tr.Healing > 0:
			fmt.Fprintf(&b, "\n%s regains %d hit points.", name, tr.Healing)
		case !tr.Hit:
			fmt.Fprintf(&b, "\nThe spell misses %s.", name)
		case tr.Damage > 0 && tr.Saved:
			fmt.Fprintf(&b, "\n%s saves and takes %d damage.", name, tr.Damage)
		case tr.Damage > 0:
			fmt.Fprintf(&b, "\n%s takes %d damage.", name, tr.Damage)
		case tr.Status != "":
			fmt.Fprintf(&b, "\n%s is %s.", name, tr.Status)
		}
		if tr.TargetDefeated {
			fmt.Fprintf(&b, " %s is defeated!", name)
		}
	}
	if report.EncounterOver {
		b.WriteString("\n" + d.outcomeLine())
	}
	return b.String(), nil
}

// useItem handles: use <item> [on <target>].
func (d *Dispatcher) useItem(actorID string, args []string) (string, error) {
	itemName, targetName, hasOn := splitKeyword(args, "on")
	if itemName == "" {
		return "Use what? (use <item> [on <target>])", nil
	}

	targetID := ""
	if hasOn && targetName != "" {
		id, reply := d.resolveTarget(targetName)
		if reply != "" {
			return reply, nil
		}
		targetID = id
	}

	report, err := d.manager.ResolveItemUse(actorID, itemName, targetID)
	if err != nil {
		return "", err
	}
	if report.Rejection != nil {
		return report.Rejection.Reason, nil
	}

	target := d.combatantName(report.TargetID)
	var b strings.Builder
	switch {
	case report.Healing > 0 && report.TargetID == actorID:
		fmt.Fprintf(&b, "You use %s and regain %d hit points.", report.Item, report.Healing)
	case report.Healing > 0:
		fmt.Fprintf(&b, "You use %s; %s regains %d hit points.", report.Item, target, report.Healing)
	case report.Damage > 0:
		fmt.Fprintf(&b, "You use %s; %s takes %d damage.", report.Item, target, report.Damage)
		if report.TargetDefeated {
			fmt.Fprintf(&b, " %s is defeated!", target)
		}
	default:
		fmt.Fprintf(&b, "You use %s.", report.Item)
	}
	if report.Consumed {
		fmt.Fprintf(&b, " The %s is used up.", report.Item)
	}
	if report.EncounterOver {
		b.WriteString("\n" + d.outcomeLine())
	}
	return b.String(), nil
}

// move handles: move <feet>.
func (d *Dispatcher) move(actorID string, args []string) (string, error) {
	if len(args) != 1 {
		return "Move how far? (move <feet>)", nil
	}
	distance, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Sprintf("%q is not a distance in feet.", args[0]), nil
	}

	report, err := d.manager.Move(actorID, distance)
	if err != nil {
		return "", err
	}
	if report.Rejection != nil {
		return report.Rejection.Reason, nil
	}
	return fmt.Sprintf("You move %d feet.", report.Distance), nil
}

func (d *Dispatcher) pass() (string, error) {
	report, err := d.manager.AdvanceTurn()
	if err != nil {
		return "", err
	}
	if report.Rejection != nil {
		return report.Rejection.Reason, nil
	}
	state := d.manager.State()
	if state != nil && state.Status != combat.StatusActive {
		return d.outcomeLine(), nil
	}
	next := d.combatantName(report.ActiveID)
	if report.NewRound {
		return fmt.Sprintf("Round %d begins. It is %s's turn.", report.Round, next), nil
	}
	return fmt.Sprintf("It is %s's turn.", next), nil
}

func (d *Dispatcher) status(actorID string) (string, error) {
	state := d.manager.State()
	if state == nil {
		return "You are not in combat.", nil
	}
	entry := state.EntryFor(actorID)
	if entry == nil {
		return "You are not part of this encounter.", nil
	}

	c := entry.Combatant
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d/%d HP, AC %d.", c.Name, c.CurrentHP, c.MaxHP, c.ArmorClass)
	if conds := entry.Conditions(); len(conds) > 0 {
		sort.Strings(conds)
		fmt.Fprintf(&b, " Conditions: %s.", strings.Join(conds, ", "))
	}

	var remaining []string
	if entry.HasAction {
		remaining = append(remaining, "action")
	}
	if entry.HasBonusAction {
		remaining = append(remaining, "bonus action")
	}
	if entry.HasReaction {
		remaining = append(remaining, "reaction")
	}
	if entry.HasMovement {
		remaining = append(remaining, "movement")
	}
	if len(remaining) == 0 {
		b.WriteString(" Nothing left this turn.")
	} else {
		fmt.Fprintf(&b, " Remaining: %s.", strings.Join(remaining, ", "))
	}
	return b.String(), nil
}

func (d *Dispatcher) look() (string, error) {
	state := d.manager.State()
	if state == nil {
		return "You are not in combat.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Round %d. Initiative order:", state.Round)
	current := state.CurrentEntry()
	for _, e := range state.Entries {
		marker := "  "
		if e == current {
			marker = "> "
		}
		c := e.Combatant
		if e.Defeated() {
			fmt.Fprintf(&b, "\n%s%s (%d) - defeated", marker, c.Name, e.Initiative)
			continue
		}
		fmt.Fprintf(&b, "\n%s%s (%d) - %d/%d HP", marker, c.Name, e.Initiative, c.CurrentHP, c.MaxHP)
	}
	return b.String(), nil
}

func (d *Dispatcher) combatLog() (string, error) {
	state := d.manager.State()
	if state == nil || len(state.Log) == 0 {
		return "Nothing has happened yet.", nil
	}
	lines := state.Log
	if len(lines) > 10 {
		lines = lines[len(lines)-10:]
	}
	return strings.Join(lines, "\n"), nil
}

func (d *Dispatcher) help() string {
	byCat := d.registry.CommandsByCategory()
	var b strings.Builder
	for i, cat := range []string{CategoryCombat, CategoryInfo, CategorySystem} {
		cmds := byCat[cat]
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s:\n", strings.ToUpper(cat[:1])+cat[1:])
		for _, cmd := range cmds {
			fmt.Fprintf(&b, "  %-10s %s\n", cmd.Name, cmd.Help)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (d *Dispatcher) simpleOutcome(report *combat.SimpleReport, okText string, err error) (string, error) {
	if err != nil {
		return "", err
	}
	if report.Rejection != nil {
		return report.Rejection.Reason, nil
	}
	return okText, nil
}

// resolveTarget maps a display name to a combatant id. The second return is
// a player-facing reply when resolution fails.
func (d *Dispatcher) resolveTarget(name string) (string, string) {
	state := d.manager.State()
	if state == nil {
		return "", "You are not in combat."
	}
	entry := state.EntryByName(name)
	if entry == nil {
		return "", fmt.Sprintf("There is no one called %s here.", name)
	}
	return entry.Combatant.ID, ""
}

func (d *Dispatcher) combatantName(id string) string {
	state := d.manager.State()
	if state == nil {
		return id
	}
	if entry := state.EntryFor(id); entry != nil {
		return entry.Combatant.Name
	}
	return id
}

// outcomeLine summarizes a finished encounter.
func (d *Dispatcher) outcomeLine() string {
	state := d.manager.State()
	if state == nil {
		return ""
	}
	switch {
	case state.Status == combat.StatusAborted:
		return "The encounter has ended."
	case state.PlayersStanding():
		return "Victory! The encounter is over."
	default:
		return "The party has fallen. The encounter is over."
	}
}
