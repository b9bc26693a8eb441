package command

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.NotNil(t, r)
	assert.Greater(t, len(r.Commands()), 0)
}

func TestResolve_CanonicalName(t *testing.T) {
	r := DefaultRegistry()

	cmd, ok := r.Resolve("attack")
	require.True(t, ok)
	assert.Equal(t, "attack", cmd.Name)
	assert.Equal(t, HandlerAttack, cmd.Handler)
}

func TestResolve_Alias(t *testing.T) {
	r := DefaultRegistry()

	cmd, ok := r.Resolve("att")
	require.True(t, ok)
	assert.Equal(t, "attack", cmd.Name)

	cmd, ok = r.Resolve("end")
	require.True(t, ok)
	assert.Equal(t, "pass", cmd.Name)
}

func TestResolve_Unknown(t *testing.T) {
	r := DefaultRegistry()

	_, ok := r.Resolve("teleport")
	assert.False(t, ok)
}

func TestNewRegistry_DuplicateName(t *testing.T) {
	_, err := NewRegistry([]Command{
		{Name: "attack", Handler: HandlerAttack},
		{Name: "attack", Handler: HandlerAttack},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate command name")
}

func TestNewRegistry_AliasCollision(t *testing.T) {
	_, err := NewRegistry([]Command{
		{Name: "attack", Aliases: []string{"a"}, Handler: HandlerAttack},
		{Name: "assess", Aliases: []string{"a"}, Handler: HandlerStatus},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate alias "a"`)
}

func TestNewRegistry_AliasShadowsName(t *testing.T) {
	_, err := NewRegistry([]Command{
		{Name: "cast", Handler: HandlerCast},
		{Name: "conjure", Aliases: []string{"cast"}, Handler: HandlerCast},
	})
	require.Error(t, err)
}

func TestRegister_AfterConstruction(t *testing.T) {
	r, err := NewRegistry(nil)
	require.NoError(t, err)

	require.NoError(t, r.Register(Command{Name: "flee", Aliases: []string{"run"}, Category: CategoryCombat, Handler: HandlerPass}))

	cmd, ok := r.Resolve("run")
	require.True(t, ok)
	assert.Equal(t, "flee", cmd.Name)
}

func TestCommands_SortedByName(t *testing.T) {
	r := DefaultRegistry()
	cmds := r.Commands()

	assert.True(t, sort.SliceIsSorted(cmds, func(i, j int) bool {
		return cmds[i].Name < cmds[j].Name
	}))
}

func TestCommandsByCategory(t *testing.T) {
	r := DefaultRegistry()
	byCat := r.CommandsByCategory()

	assert.NotEmpty(t, byCat[CategoryCombat])
	assert.NotEmpty(t, byCat[CategoryInfo])
	assert.NotEmpty(t, byCat[CategorySystem])
}

// Property: every built-in command and every alias resolves to a command
// with a non-empty handler.
func TestPropertyBuiltinsResolve(t *testing.T) {
	r := DefaultRegistry()
	builtins := BuiltinCommands()

	rapid.Check(t, func(t *rapid.T) {
		cmd := rapid.SampledFrom(builtins).Draw(t, "cmd")

		resolved, ok := r.Resolve(cmd.Name)
		if !ok || resolved.Handler == "" {
			t.Fatalf("command %q did not resolve", cmd.Name)
		}
		for _, alias := range cmd.Aliases {
			resolved, ok := r.Resolve(alias)
			if !ok || resolved.Name != cmd.Name {
				t.Fatalf("alias %q did not resolve to %q", alias, cmd.Name)
			}
		}
	})
}
