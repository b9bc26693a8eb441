package command

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestParse_Empty(t *testing.T) {
	result := Parse("")
	assert.Equal(t, "", result.Command)
	assert.Nil(t, result.Args)
}

func TestParse_SingleWord(t *testing.T) {
	result := Parse("dodge")
	assert.Equal(t, "dodge", result.Command)
	assert.Nil(t, result.Args)
	assert.Equal(t, "", result.RawArgs)
}

func TestParse_CommandLowercased(t *testing.T) {
	result := Parse("ATTACK Goblin")
	assert.Equal(t, "attack", result.Command)
	assert.Equal(t, []string{"Goblin"}, result.Args)
}

func TestParse_RawArgsPreservesCase(t *testing.T) {
	result := Parse("use Healing Potion on Aldric")
	assert.Equal(t, "use", result.Command)
	assert.Equal(t, []string{"Healing", "Potion", "on", "Aldric"}, result.Args)
	assert.Equal(t, "Healing Potion on Aldric", result.RawArgs)
}

func TestParse_TrimsWhitespace(t *testing.T) {
	result := Parse("   cast   fireball  at  goblin   ")
	assert.Equal(t, "cast", result.Command)
	assert.Equal(t, []string{"fireball", "at", "goblin"}, result.Args)
}

func TestSplitKeyword(t *testing.T) {
	before, after, found := splitKeyword([]string{"Healing", "Potion", "on", "Goblin", "2"}, "on")
	assert.True(t, found)
	assert.Equal(t, "Healing Potion", before)
	assert.Equal(t, "Goblin 2", after)
}

func TestSplitKeyword_CaseInsensitive(t *testing.T) {
	before, after, found := splitKeyword([]string{"Goblin", "WITH", "Dagger"}, "with")
	assert.True(t, found)
	assert.Equal(t, "Goblin", before)
	assert.Equal(t, "Dagger", after)
}

func TestSplitKeyword_Absent(t *testing.T) {
	before, after, found := splitKeyword([]string{"Goblin"}, "with")
	assert.False(t, found)
	assert.Equal(t, "Goblin", before)
	assert.Equal(t, "", after)
}

// Property: the parsed command is always the lowercased first field of the
// input, and args never contain whitespace.
func TestPropertyParse(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		line := rapid.StringMatching(`[A-Za-z]{1,8}( [A-Za-z0-9]{1,8}){0,4}`).Draw(t, "line")
		result := Parse(line)

		fields := strings.Fields(line)
		if len(fields) == 0 {
			if result.Command != "" {
				t.Fatalf("expected empty command for %q", line)
			}
			return
		}
		if result.Command != strings.ToLower(fields[0]) {
			t.Fatalf("Parse(%q).Command = %q", line, result.Command)
		}
		for _, arg := range result.Args {
			if strings.ContainsAny(arg, " \t") {
				t.Fatalf("arg %q contains whitespace", arg)
			}
		}
	})
}
