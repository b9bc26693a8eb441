package command

import (
	"fmt"
	"sort"
)

// Registry maps command names and aliases to Command definitions. An alias
// may never shadow a canonical name and every name resolves to exactly one
// command, so "att", "hit" and "attack" all reach the same handler without
// ambiguity at the prompt.
type Registry struct {
	commands map[string]*Command // canonical name → command
	aliases  map[string]string   // alias → canonical name
}

// NewRegistry creates an empty Registry and registers the given commands.
//
// Postcondition: Returns a Registry, or an error on the first name or alias
// collision.
func NewRegistry(cmds []Command) (*Registry, error) {
	r := &Registry{
		commands: make(map[string]*Command, len(cmds)),
		aliases:  make(map[string]string),
	}
	for i := range cmds {
		if err := r.Register(cmds[i]); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds one command to the registry.
//
// Precondition: cmd.Name and all of its aliases must be unused.
func (r *Registry) Register(cmd Command) error {
	if _, taken := r.lookup(cmd.Name); taken {
		return fmt.Errorf("duplicate command name: %q", cmd.Name)
	}
	for _, alias := range cmd.Aliases {
		if existing, taken := r.lookup(alias); taken {
			return fmt.Errorf("duplicate alias %q: used by %q and %q", alias, existing.Name, cmd.Name)
		}
	}

	stored := cmd
	r.commands[cmd.Name] = &stored
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd.Name
	}
	return nil
}

// Resolve looks up a command by name or alias.
//
// Postcondition: Returns (command, true) if found, or (nil, false).
func (r *Registry) Resolve(input string) (*Command, bool) {
	return r.lookup(input)
}

func (r *Registry) lookup(input string) (*Command, bool) {
	if cmd, ok := r.commands[input]; ok {
		return cmd, true
	}
	if canonical, ok := r.aliases[input]; ok {
		return r.commands[canonical], true
	}
	return nil, false
}

// Commands returns all registered commands sorted by name.
func (r *Registry) Commands() []*Command {
	result := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		result = append(result, cmd)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// CommandsByCategory returns commands grouped by category, each group sorted
// by name.
func (r *Registry) CommandsByCategory() map[string][]*Command {
	categories := make(map[string][]*Command)
	for _, cmd := range r.Commands() {
		categories[cmd.Category] = append(categories[cmd.Category], cmd)
	}
	return categories
}

// DefaultRegistry creates a Registry with all built-in commands.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BuiltinCommands())
	if err != nil {
		panic(fmt.Sprintf("building default registry: %v", err))
	}
	return r
}
