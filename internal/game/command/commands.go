// Package command provides the command registry, parser, and dispatch from
// player text input to encounter actions.
package command

// Categories for organizing commands.
const (
	CategoryCombat = "combat"
	CategoryInfo   = "info"
	CategorySystem = "system"
)

// Handler identifiers mapping commands to dispatcher methods.
const (
	HandlerAttack    = "attack"
	HandlerCast      = "cast"
	HandlerUse       = "use"
	HandlerMove      = "move"
	HandlerDodge     = "dodge"
	HandlerDisengage = "disengage"
	HandlerPass      = "pass"
	HandlerStatus    = "status"
	HandlerLook      = "look"
	HandlerLog       = "log"
	HandlerHelp      = "help"
	HandlerQuit      = "quit"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command (combat, info, system).
	Category string
	// Handler maps to the dispatcher method that executes the command.
	Handler string
}

// BuiltinCommands returns all built-in commands for the game.
func BuiltinCommands() []Command {
	return []Command{
		// Combat actions
		{Name: "attack", Aliases: []string{"att", "hit"}, Help: "Attack a target (attack <target> [with <weapon>])", Category: CategoryCombat, Handler: HandlerAttack},
		{Name: "cast", Aliases: []string{"c"}, Help: "Cast a spell (cast <spell> [<level>] at <target>[, <target>...])", Category: CategoryCombat, Handler: HandlerCast},
		{Name: "use", Aliases: nil, Help: "Use an item (use <item> [on <target>])", Category: CategoryCombat, Handler: HandlerUse},
		{Name: "move", Aliases: []string{"mv"}, Help: "Move a distance in feet (move <feet>)", Category: CategoryCombat, Handler: HandlerMove},
		{Name: "dodge", Aliases: nil, Help: "Take the dodge action; attacks against you have disadvantage", Category: CategoryCombat, Handler: HandlerDodge},
		{Name: "disengage", Aliases: []string{"dis"}, Help: "Take the disengage action and withdraw safely", Category: CategoryCombat, Handler: HandlerDisengage},
		{Name: "pass", Aliases: []string{"end", "done"}, Help: "End your turn", Category: CategoryCombat, Handler: HandlerPass},

		// Information
		{Name: "status", Aliases: []string{"stat"}, Help: "Show your hit points, conditions, and remaining actions", Category: CategoryInfo, Handler: HandlerStatus},
		{Name: "look", Aliases: []string{"l"}, Help: "Show the initiative order and everyone's condition", Category: CategoryInfo, Handler: HandlerLook},
		{Name: "log", Aliases: nil, Help: "Show the recent combat log", Category: CategoryInfo, Handler: HandlerLog},

		// System
		{Name: "help", Aliases: []string{"?"}, Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit"}, Help: "Leave the game", Category: CategorySystem, Handler: HandlerQuit},
	}
}
